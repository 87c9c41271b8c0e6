package imaging

import "image/color"

type paletteColor struct {
	name string
	rgb  color.NRGBA
}

// paletteRGB holds a reference shade for every wardrobe palette color, in
// palette order.
var paletteRGB = []paletteColor{
	{"Black", color.NRGBA{R: 20, G: 20, B: 20, A: 255}},
	{"White", color.NRGBA{R: 245, G: 245, B: 245, A: 255}},
	{"Gray", color.NRGBA{R: 128, G: 128, B: 128, A: 255}},
	{"Navy", color.NRGBA{R: 0, G: 0, B: 128, A: 255}},
	{"Blue", color.NRGBA{R: 30, G: 100, B: 220, A: 255}},
	{"Red", color.NRGBA{R: 200, G: 30, B: 30, A: 255}},
	{"Pink", color.NRGBA{R: 255, G: 170, B: 190, A: 255}},
	{"Yellow", color.NRGBA{R: 250, G: 220, B: 40, A: 255}},
	{"Green", color.NRGBA{R: 40, G: 140, B: 60, A: 255}},
	{"Purple", color.NRGBA{R: 120, G: 50, B: 160, A: 255}},
	{"Brown", color.NRGBA{R: 110, G: 70, B: 40, A: 255}},
	{"Orange", color.NRGBA{R: 245, G: 130, B: 30, A: 255}},
	{"Beige", color.NRGBA{R: 220, G: 200, B: 165, A: 255}},
	{"Cream", color.NRGBA{R: 255, G: 250, B: 220, A: 255}},
	{"Gold", color.NRGBA{R: 212, G: 175, B: 55, A: 255}},
	{"Silver", color.NRGBA{R: 192, G: 192, B: 200, A: 255}},
}

// nearestPaletteIndex weights the squared channel distances 2:4:3.
func nearestPaletteIndex(c color.NRGBA) int {
	best := 0
	bestDist := -1
	for idx, p := range paletteRGB {
		dr := int(c.R) - int(p.rgb.R)
		dg := int(c.G) - int(p.rgb.G)
		db := int(c.B) - int(p.rgb.B)
		dist := 2*dr*dr + 4*dg*dg + 3*db*db
		if bestDist < 0 || dist < bestDist {
			best = idx
			bestDist = dist
		}
	}
	return best
}
