package wardrobe

import (
	"closet/internal/entity"
	"math/rand/v2"
	"strings"
	"sync"
	"time"
)

// SuggestRequest carries the optional occasion and mood. A nil field is
// absent; an unknown value is ignored.
type SuggestRequest struct {
	Occasion *string
	Mood     *string
}

// Recommender assembles balanced outfits from a wardrobe snapshot.
type Recommender struct {
	tables Tables

	mu  sync.Mutex
	rng *rand.Rand
}

// NewRecommender builds a recommender over tables. A zero seed picks a
// time-based one; any other seed makes the picks reproducible.
func NewRecommender(tables Tables, seed uint64) *Recommender {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &Recommender{
		tables: tables,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Tables returns the lookup tables the recommender was built with.
func (r *Recommender) Tables() Tables {
	return r.tables
}

// Candidates returns the garments of snapshot that pass the occasion OR the
// mood predicate. With no known key the whole snapshot is returned.
func (r *Recommender) Candidates(req SuggestRequest, snapshot []entity.DbGarment) []entity.DbGarment {
	var (
		categories []string
		colors     []string
		hasOcc     bool
		hasMood    bool
	)
	if req.Occasion != nil {
		categories, hasOcc = r.tables.CategoriesForOccasion(*req.Occasion)
	}
	if req.Mood != nil {
		colors, hasMood = r.tables.ColorsForMood(*req.Mood)
	}

	out := make([]entity.DbGarment, 0, len(snapshot))
	for _, garment := range snapshot {
		if !hasOcc && !hasMood {
			out = append(out, garment)
			continue
		}
		if hasOcc && matchesAnyCategory(garment.Category, categories) {
			out = append(out, garment)
			continue
		}
		if hasMood && matchesAnyColor(garment.Color, colors) {
			out = append(out, garment)
		}
	}
	return out
}

// Suggest returns at most one garment per essential category, chosen
// uniformly at random among the candidates. Categories without a candidate
// are left out, so the result may be empty.
func (r *Recommender) Suggest(req SuggestRequest, snapshot []entity.DbGarment) []entity.DbGarment {
	return r.balance(r.Candidates(req, snapshot))
}

func (r *Recommender) balance(candidates []entity.DbGarment) []entity.DbGarment {
	outfit := make([]entity.DbGarment, 0, len(r.tables.EssentialCategories))
	picked := make(map[int]struct{}, len(r.tables.EssentialCategories))

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, essential := range r.tables.EssentialCategories {
		matches := make([]int, 0)
		for i, garment := range candidates {
			if _, used := picked[i]; used {
				continue
			}
			if containsFold(garment.Category, essential) {
				matches = append(matches, i)
			}
		}
		if len(matches) == 0 {
			continue
		}
		choice := matches[r.rng.IntN(len(matches))]
		picked[choice] = struct{}{}
		outfit = append(outfit, candidates[choice])
	}
	return outfit
}

func matchesAnyCategory(category string, tokens []string) bool {
	for _, token := range tokens {
		if containsFold(category, token) {
			return true
		}
	}
	return false
}

func matchesAnyColor(color string, colors []string) bool {
	trimmed := strings.TrimSpace(color)
	for _, candidate := range colors {
		if strings.EqualFold(trimmed, candidate) {
			return true
		}
	}
	return false
}
