// Package imaging derives the placeholder hash and dominant palette color of
// uploaded garment photos.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	"github.com/bbrks/go-blurhash"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

// thumbnailSize bounds the longest side of the image used for analysis.
const thumbnailSize = 64

// Analysis is what a photo tells us about a garment.
type Analysis struct {
	Width    int
	Height   int
	BlurHash string
	// Color is the palette color covering most opaque pixels, empty when the
	// image is fully transparent.
	Color string
}

// Analyze decodes data and computes its BlurHash and dominant palette color.
func Analyze(data []byte) (Analysis, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Analysis{}, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return Analysis{}, fmt.Errorf("image has no pixels")
	}
	thumbnail := resize(img)

	hash, err := blurhash.Encode(4, 3, thumbnail)
	if err != nil {
		return Analysis{}, fmt.Errorf("encode blurhash: %w", err)
	}

	return Analysis{
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		BlurHash: hash,
		Color:    DominantColor(thumbnail),
	}, nil
}

// resize scales img down with nearest-neighbour sampling so that neither side
// exceeds thumbnailSize.
func resize(img image.Image) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()
	if srcWidth <= thumbnailSize && srcHeight <= thumbnailSize {
		return img
	}

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = thumbnailSize
		dstHeight = max(1, (srcHeight*thumbnailSize)/srcWidth)
	} else {
		dstHeight = thumbnailSize
		dstWidth = max(1, (srcWidth*thumbnailSize)/srcHeight)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	xRatio := float64(srcWidth) / float64(dstWidth)
	yRatio := float64(srcHeight) / float64(dstHeight)
	for y := 0; y < dstHeight; y++ {
		for x := 0; x < dstWidth; x++ {
			srcX := int(float64(x) * xRatio)
			srcY := int(float64(y) * yRatio)
			dst.Set(x, y, img.At(bounds.Min.X+srcX, bounds.Min.Y+srcY))
		}
	}
	return dst
}

// DominantColor maps every mostly opaque pixel to its nearest palette color
// and returns the most frequent one. Ties go to the earlier palette entry.
func DominantColor(img image.Image) string {
	counts := make([]int, len(paletteRGB))
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			if c.A < 128 {
				continue
			}
			counts[nearestPaletteIndex(c)]++
		}
	}

	best := -1
	for idx, count := range counts {
		if count == 0 {
			continue
		}
		if best < 0 || count > counts[best] {
			best = idx
		}
	}
	if best < 0 {
		return ""
	}
	return paletteRGB[best].name
}
