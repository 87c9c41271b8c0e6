package wardrobe

import (
	"closet/internal/entity"
	"time"
)

// ApplyWear returns copies of items with one more wear recorded at at. Every
// returned garment shares the same instant, except that LastWornAt never
// moves backwards: a back-dated wear keeps a later LastWornAt. A garment
// listed twice is worn once.
func ApplyWear(items []entity.DbGarment, at time.Time) []entity.DbGarment {
	out := make([]entity.DbGarment, 0, len(items))
	seen := make(map[uint]struct{}, len(items))
	for _, item := range items {
		if item.ID != 0 {
			if _, dup := seen[item.ID]; dup {
				continue
			}
			seen[item.ID] = struct{}{}
		}
		worn := item
		worn.TimesWorn = item.TimesWorn + 1
		if item.LastWornAt == nil || item.LastWornAt.Before(at) {
			wornAt := at
			worn.LastWornAt = &wornAt
		}
		out = append(out, worn)
	}
	return out
}

// ToggleFavorite returns a copy of item with the favorite flag flipped.
func ToggleFavorite(item entity.DbGarment) entity.DbGarment {
	item.Favorite = !item.Favorite
	return item
}

// UniqueIDs drops zero and repeated ids while keeping the first-seen order.
func UniqueIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
