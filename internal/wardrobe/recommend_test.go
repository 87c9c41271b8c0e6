package wardrobe

import (
	"closet/internal/entity"
	"strings"
	"testing"
	"time"
)

func strPtr(v string) *string { return &v }

func garment(id uint, category, color string) entity.DbGarment {
	return entity.DbGarment{ID: id, Category: category, Color: color}
}

func sampleWardrobe() []entity.DbGarment {
	return []entity.DbGarment{
		garment(1, "Tops", "Black"),
		garment(2, "Tops", "Yellow"),
		garment(3, "Bottoms", "Navy"),
		garment(4, "Bottoms", "Blue"),
		garment(5, "Shoes", "White"),
		garment(6, "Accessories", "Gold"),
		garment(7, "Dresses", "Red"),
	}
}

func TestCandidatesFilters(t *testing.T) {
	snapshot := []entity.DbGarment{
		garment(1, "T-Shirt", "Blue"),
		garment(2, "Jeans", "Blue"),
		garment(3, "Sneakers", "White"),
		garment(4, "Blazer", "Black"),
		garment(5, "Tops", "Red"),
		garment(6, "Tops", "Green"),
	}

	tests := []struct {
		name     string
		req      SuggestRequest
		expected []uint
	}{
		{name: "仅场合", req: SuggestRequest{Occasion: strPtr("casual")}, expected: []uint{1, 2, 3}},
		{name: "场合大小写不敏感", req: SuggestRequest{Occasion: strPtr("  CASUAL ")}, expected: []uint{1, 2, 3}},
		{name: "仅心情", req: SuggestRequest{Mood: strPtr("glamorous")}, expected: []uint{5}},
		{name: "场合或心情", req: SuggestRequest{Occasion: strPtr("work"), Mood: strPtr("Glamorous")}, expected: []uint{4, 5}},
		{name: "未知场合与心情", req: SuggestRequest{Occasion: strPtr("space"), Mood: strPtr("bored")}, expected: []uint{1, 2, 3, 4, 5, 6}},
		{name: "均缺省", req: SuggestRequest{}, expected: []uint{1, 2, 3, 4, 5, 6}},
		{name: "未知场合加已知心情", req: SuggestRequest{Occasion: strPtr("space"), Mood: strPtr("casual")}, expected: []uint{1, 2, 6}},
	}

	rec := NewRecommender(DefaultTables(), 1)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rec.Candidates(tt.req, snapshot)
			if len(got) != len(tt.expected) {
				t.Fatalf("expected %d candidates, got %d (%v)", len(tt.expected), len(got), ids(got))
			}
			for i, id := range tt.expected {
				if got[i].ID != id {
					t.Errorf("candidate %d: expected id %d, got %d", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestSuggestReturnsBalancedOutfit(t *testing.T) {
	rec := NewRecommender(DefaultTables(), 7)
	essentials := DefaultTables().EssentialCategories

	for run := 0; run < 50; run++ {
		outfit := rec.Suggest(SuggestRequest{}, sampleWardrobe())
		if len(outfit) != 4 {
			t.Fatalf("expected a full outfit of 4, got %d", len(outfit))
		}
		seen := make(map[uint]bool)
		for i, item := range outfit {
			if seen[item.ID] {
				t.Fatalf("garment %d picked twice", item.ID)
			}
			seen[item.ID] = true
			if !strings.Contains(strings.ToLower(item.Category), strings.ToLower(essentials[i])) {
				t.Errorf("slot %d expected %s, got %s", i, essentials[i], item.Category)
			}
		}
	}
}

func TestSuggestCasualExample(t *testing.T) {
	snapshot := []entity.DbGarment{
		garment(1, "T-Shirt", "Blue"),
		garment(2, "Jeans", "Blue"),
		garment(3, "Sneakers", "White"),
		garment(4, "Blazer", "Black"),
	}
	rec := NewRecommender(DefaultTables(), 3)

	outfit := rec.Suggest(SuggestRequest{Occasion: strPtr("casual")}, snapshot)
	if len(outfit) > 4 {
		t.Fatalf("expected at most 4 items, got %d", len(outfit))
	}
	for _, item := range outfit {
		if item.ID == 4 {
			t.Fatalf("blazer does not match the casual occasion")
		}
		if !matchesAnyCategory(item.Category, DefaultTables().EssentialCategories) {
			t.Errorf("unexpected category %s", item.Category)
		}
	}
}

func TestSuggestMoodOnly(t *testing.T) {
	rec := NewRecommender(DefaultTables(), 11)
	outfit := rec.Suggest(SuggestRequest{Mood: strPtr("professional")}, sampleWardrobe())

	got := ids(outfit)
	expected := []uint{1, 3, 5}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, got)
		}
	}
}

func TestSuggestEmptyPool(t *testing.T) {
	rec := NewRecommender(DefaultTables(), 5)

	if outfit := rec.Suggest(SuggestRequest{Occasion: strPtr("casual")}, nil); len(outfit) != 0 {
		t.Fatalf("expected empty outfit, got %d items", len(outfit))
	}

	onlyDresses := []entity.DbGarment{garment(1, "Dresses", "Red")}
	if outfit := rec.Suggest(SuggestRequest{}, onlyDresses); len(outfit) != 0 {
		t.Fatalf("expected empty outfit without essential categories, got %d items", len(outfit))
	}
}

func TestSuggestSeededIsReproducible(t *testing.T) {
	wardrobe := append(sampleWardrobe(),
		garment(8, "Tops", "White"),
		garment(9, "Shoes", "Black"),
		garment(10, "Accessories", "Silver"),
	)

	first := NewRecommender(DefaultTables(), 99)
	second := NewRecommender(DefaultTables(), 99)
	for run := 0; run < 20; run++ {
		a := ids(first.Suggest(SuggestRequest{}, wardrobe))
		b := ids(second.Suggest(SuggestRequest{}, wardrobe))
		if len(a) != len(b) {
			t.Fatalf("run %d: %v != %v", run, a, b)
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("run %d: %v != %v", run, a, b)
			}
		}
	}
}

func TestSuggestPicksEveryCandidateEventually(t *testing.T) {
	rec := NewRecommender(DefaultTables(), 2024)
	wardrobe := []entity.DbGarment{garment(1, "Tops", "Black"), garment(2, "Tops", "White")}

	picked := make(map[uint]int)
	for run := 0; run < 200; run++ {
		outfit := rec.Suggest(SuggestRequest{}, wardrobe)
		if len(outfit) != 1 {
			t.Fatalf("expected one top, got %d", len(outfit))
		}
		picked[outfit[0].ID]++
	}
	if picked[1] == 0 || picked[2] == 0 {
		t.Fatalf("expected both tops to be picked, got %v", picked)
	}
}

func TestSuggestDoesNotMutateSnapshot(t *testing.T) {
	rec := NewRecommender(DefaultTables(), 1)
	snapshot := sampleWardrobe()
	before := ids(snapshot)

	rec.Suggest(SuggestRequest{Mood: strPtr("happy")}, snapshot)

	after := ids(snapshot)
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("snapshot order changed: %v -> %v", before, after)
		}
	}
}

func TestSuggestFillsEachGarmentIntoOneSlotOnly(t *testing.T) {
	// "Shoes Accessories" matches two essential categories but is one garment
	snapshot := []entity.DbGarment{garment(1, "Shoes Accessories", "Black")}

	for seed := uint64(1); seed <= 50; seed++ {
		outfit := NewRecommender(DefaultTables(), seed).Suggest(SuggestRequest{}, snapshot)
		if len(outfit) != 1 {
			t.Fatalf("seed %d: expected the garment once, got %d items", seed, len(outfit))
		}
	}
}

func TestApplyWear(t *testing.T) {
	last := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	items := []entity.DbGarment{
		{ID: 1, TimesWorn: 0},
		{ID: 2, TimesWorn: 4, LastWornAt: &last},
		{ID: 1, TimesWorn: 0},
	}
	at := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)

	worn := ApplyWear(items, at)

	if len(worn) != 2 {
		t.Fatalf("expected duplicates to be worn once, got %d items", len(worn))
	}
	if worn[0].TimesWorn != 1 || worn[1].TimesWorn != 5 {
		t.Fatalf("expected counters 1 and 5, got %d and %d", worn[0].TimesWorn, worn[1].TimesWorn)
	}
	for _, item := range worn {
		if item.LastWornAt == nil || !item.LastWornAt.Equal(at) {
			t.Fatalf("expected last worn %v, got %v", at, item.LastWornAt)
		}
	}
	if items[1].TimesWorn != 4 || !items[1].LastWornAt.Equal(last) {
		t.Fatal("input garments must not be modified")
	}
}

func TestApplyWearBackdatedKeepsLaterLastWorn(t *testing.T) {
	later := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	items := []entity.DbGarment{
		{ID: 1, TimesWorn: 2, LastWornAt: &later},
		{ID: 2, TimesWorn: 0},
	}
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	worn := ApplyWear(items, at)

	if worn[0].TimesWorn != 3 || worn[1].TimesWorn != 1 {
		t.Fatalf("expected counters 3 and 1, got %d and %d", worn[0].TimesWorn, worn[1].TimesWorn)
	}
	if !worn[0].LastWornAt.Equal(later) {
		t.Fatalf("expected last worn to stay at %v, got %v", later, worn[0].LastWornAt)
	}
	if worn[1].LastWornAt == nil || !worn[1].LastWornAt.Equal(at) {
		t.Fatalf("expected never-worn garment to get %v, got %v", at, worn[1].LastWornAt)
	}
}

func TestToggleFavoriteTwiceRestoresFlag(t *testing.T) {
	for _, initial := range []bool{true, false} {
		item := entity.DbGarment{ID: 1, Favorite: initial}
		once := ToggleFavorite(item)
		if once.Favorite == initial {
			t.Fatalf("expected flag to flip from %v", initial)
		}
		if twice := ToggleFavorite(once); twice.Favorite != initial {
			t.Fatalf("expected flag %v after two toggles, got %v", initial, twice.Favorite)
		}
	}
}

func TestOccasionForHour(t *testing.T) {
	tests := []struct {
		hour     int
		expected string
	}{
		{0, "cozy"}, {5, "cozy"}, {6, "casual"}, {9, "casual"}, {10, "work"},
		{16, "work"}, {17, "casual"}, {19, "casual"}, {20, "cozy"}, {23, "cozy"},
	}
	for _, tt := range tests {
		if got := OccasionForHour(tt.hour); got != tt.expected {
			t.Errorf("hour %d: expected %s, got %s", tt.hour, tt.expected, got)
		}
	}
}

func TestCanonicalColor(t *testing.T) {
	if color, ok := CanonicalColor(" navy "); !ok || color != "Navy" {
		t.Fatalf("expected Navy, got %q %v", color, ok)
	}
	if IsPaletteColor("Teal") {
		t.Fatal("teal is not in the palette")
	}
}

func TestNewTablesNormalisesKeys(t *testing.T) {
	tables := NewTables(map[string][]string{"Happy": {"Yellow"}}, map[string][]string{" Work ": {"Blazer"}}, nil)
	if _, ok := tables.ColorsForMood("HAPPY"); !ok {
		t.Fatal("expected mood lookup to ignore case")
	}
	if _, ok := tables.CategoriesForOccasion("work"); !ok {
		t.Fatal("expected occasion lookup to ignore surrounding spaces")
	}
}

func TestKnownOccasionsAndMoods(t *testing.T) {
	tables := DefaultTables()
	if got := strings.Join(tables.KnownOccasions(), ","); got != "casual,cozy,formal,work" {
		t.Fatalf("occasions = %q", got)
	}
	if got := strings.Join(tables.KnownMoods(), ","); got != "casual,cozy,glamorous,happy,professional" {
		t.Fatalf("moods = %q", got)
	}
	if _, ok := tables.CategoriesForOccasion("Party"); ok {
		t.Fatal("party has no occasion table")
	}
}

func ids(items []entity.DbGarment) []uint {
	out := make([]uint, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
