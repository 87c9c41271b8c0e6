package service

import (
	"closet/internal/entity"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiaryCreateMarksGarmentsWorn(t *testing.T) {
	env := newTestEnv(t)
	closet := NewClosetService(env.deps, 0)
	diary := NewDiaryService(env.deps, 0)
	events := &eventLog{}
	diary.SetNotifyFunc(events.record)
	ctx := context.Background()

	top := env.addGarment(t, closet, "Tops", "Black")
	shoes := env.addGarment(t, closet, "Shoes", "White")

	wornAt := testNow.Add(-48 * time.Hour)
	entry, err := diary.Create(ctx, env.ownerID, entity.OutfitEntryCreateRequest{
		Mood:       " Happy ",
		Notes:      "brunch",
		WornAt:     &wornAt,
		GarmentIDs: []uint{top.ID, shoes.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Happy", entry.Mood)
	assert.True(t, entry.WornAt.Equal(wornAt))
	assert.Len(t, entry.Garments, 2)

	reloaded, err := closet.Get(ctx, env.ownerID, top.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, reloaded.TimesWorn)
	require.NotNil(t, reloaded.LastWornAt)
	assert.True(t, reloaded.LastWornAt.Equal(wornAt))

	assert.Equal(t, []string{"diary_saved"}, events.actions())
}

func TestDiaryCreateValidation(t *testing.T) {
	env := newTestEnv(t)
	diary := NewDiaryService(env.deps, 0)
	ctx := context.Background()

	future := testNow.Add(time.Hour)
	tests := []struct {
		name string
		req  entity.OutfitEntryCreateRequest
		want error
	}{
		{name: "缺少心情", req: entity.OutfitEntryCreateRequest{Mood: " "}, want: ErrInvalidInput},
		{name: "未来时间", req: entity.OutfitEntryCreateRequest{Mood: "Happy", WornAt: &future}, want: ErrInvalidInput},
		{name: "未知衣物", req: entity.OutfitEntryCreateRequest{Mood: "Happy", GarmentIDs: []uint{4242}}, want: ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := diary.Create(ctx, env.ownerID, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	history, err := diary.History(ctx, env.ownerID)
	require.NoError(t, err)
	assert.Empty(t, history.Entries)
}

func TestDiaryListUpdateDelete(t *testing.T) {
	env := newTestEnv(t)
	closet := NewClosetService(env.deps, 0)
	diary := NewDiaryService(env.deps, 0)
	ctx := context.Background()

	top := env.addGarment(t, closet, "Tops", "Black")

	older := testNow.Add(-72 * time.Hour)
	first, err := diary.Create(ctx, env.ownerID, entity.OutfitEntryCreateRequest{Mood: "Cozy", WornAt: &older, GarmentIDs: []uint{top.ID}})
	require.NoError(t, err)
	second, err := diary.Create(ctx, env.ownerID, entity.OutfitEntryCreateRequest{Mood: "Happy"})
	require.NoError(t, err)

	history, err := diary.History(ctx, env.ownerID)
	require.NoError(t, err)
	require.Len(t, history.Entries, 2)
	assert.Equal(t, second.ID, history.Entries[0].ID)

	cozy, err := diary.List(ctx, env.ownerID, "cozy")
	require.NoError(t, err)
	require.Len(t, cozy.Entries, 1)
	assert.Equal(t, first.ID, cozy.Entries[0].ID)

	mood := "Confident"
	notes := "new shoes"
	updated, err := diary.Update(ctx, env.ownerID, first.ID, entity.OutfitEntryUpdateRequest{Mood: &mood, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "Confident", updated.Mood)
	assert.Equal(t, "new shoes", updated.Notes)

	require.NoError(t, diary.Delete(ctx, env.ownerID, first.ID))
	_, err = diary.Get(ctx, env.ownerID, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	reloaded, err := closet.Get(ctx, env.ownerID, top.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, reloaded.TimesWorn)
}

func TestDiaryHistoryFallsBackToCache(t *testing.T) {
	env := newTestEnv(t)
	diary := NewDiaryService(env.deps, 0)
	ctx := context.Background()

	_, err := diary.Create(ctx, env.ownerID, entity.OutfitEntryCreateRequest{Mood: "Happy"})
	require.NoError(t, err)
	_, err = diary.History(ctx, env.ownerID)
	require.NoError(t, err)

	env.repo.failReads.Store(true)
	history, err := diary.History(ctx, env.ownerID)
	assert.ErrorIs(t, err, ErrStoreRead)
	assert.True(t, history.Stale)
	assert.Len(t, history.Entries, 1)

	filtered, err := diary.List(ctx, env.ownerID, "Cozy")
	assert.ErrorIs(t, err, ErrStoreRead)
	assert.True(t, filtered.Stale)
	assert.Empty(t, filtered.Entries)
}
