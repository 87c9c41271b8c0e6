package api

import (
	"closet/internal/entity"
	"fmt"
	"strings"
)

func (h *HTTPHandler) publicURL(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return trimmed
	}
	base := h.storagePublicBase
	if base == "" {
		base = "/files"
	}
	return fmt.Sprintf("%s/%s", strings.TrimRight(base, "/"), strings.TrimLeft(trimmed, "/"))
}

func (h *HTTPHandler) makeGarment(g entity.DbGarment) entity.Garment {
	return entity.Garment{
		ID:         g.ID,
		Category:   g.Category,
		Color:      g.Color,
		ImageURL:   h.publicURL(g.ImagePath),
		BlurHash:   g.BlurHash,
		Favorite:   g.Favorite,
		TimesWorn:  g.TimesWorn,
		LastWornAt: g.LastWornAt,
		AddedAt:    g.AddedAt,
	}
}

func (h *HTTPHandler) makeGarments(items []entity.DbGarment) []entity.Garment {
	out := make([]entity.Garment, 0, len(items))
	for _, item := range items {
		out = append(out, h.makeGarment(item))
	}
	return out
}

func (h *HTTPHandler) makeOutfitEntry(e entity.DbOutfitEntry) entity.OutfitEntry {
	return entity.OutfitEntry{
		ID:       e.ID,
		WornAt:   e.WornAt,
		Mood:     e.Mood,
		Notes:    e.Notes,
		ImageURL: h.publicURL(e.ImagePath),
		Garments: h.makeGarments(e.Garments),
	}
}

func (h *HTTPHandler) makeOutfitEntries(entries []entity.DbOutfitEntry) []entity.OutfitEntry {
	out := make([]entity.OutfitEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, h.makeOutfitEntry(e))
	}
	return out
}

func (h *HTTPHandler) makeCalendarSlot(s entity.DbCalendarSlot) entity.CalendarSlot {
	return entity.CalendarSlot{
		ID:       s.ID,
		Date:     s.Date,
		Occasion: s.Occasion,
		Notes:    s.Notes,
		Garments: h.makeGarments(s.Garments),
	}
}
