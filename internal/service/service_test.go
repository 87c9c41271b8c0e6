package service

import (
	"bytes"
	"closet/internal/entity"
	"closet/internal/model"
	"closet/internal/storage"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var (
	testNow = time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC)
	errBoom = errors.New("disk on fire")
)

// flakyRepo wraps a real repository and fails reads or writes on demand.
type flakyRepo struct {
	model.Repository
	failReads  atomic.Bool
	failWrites atomic.Bool
}

func (r *flakyRepo) ListGarments(ctx context.Context, query entity.GarmentQuery) ([]entity.DbGarment, error) {
	if r.failReads.Load() {
		return nil, errBoom
	}
	return r.Repository.ListGarments(ctx, query)
}

func (r *flakyRepo) ListOutfitEntries(ctx context.Context, query entity.OutfitEntryQuery) ([]entity.DbOutfitEntry, error) {
	if r.failReads.Load() {
		return nil, errBoom
	}
	return r.Repository.ListOutfitEntries(ctx, query)
}

func (r *flakyRepo) CreateGarment(ctx context.Context, garment *entity.DbGarment) error {
	if r.failWrites.Load() {
		return errBoom
	}
	return r.Repository.CreateGarment(ctx, garment)
}

func (r *flakyRepo) MarkGarmentsWorn(ctx context.Context, ownerID uint, ids []uint, at time.Time) ([]entity.DbGarment, error) {
	if r.failWrites.Load() {
		return nil, errBoom
	}
	return r.Repository.MarkGarmentsWorn(ctx, ownerID, ids, at)
}

type testEnv struct {
	repo    *flakyRepo
	store   *storage.LocalStorage
	deps    Deps
	ownerID uint
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	base, err := model.NewSQLiteRepository(filepath.Join(dir, "closet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = base.Close() })
	store, err := storage.NewLocalStorage(filepath.Join(dir, "images"))
	require.NoError(t, err)

	repo := &flakyRepo{Repository: base}
	user := &entity.DbUser{Email: "owner@example.com", PasswordHash: "hash", IsActive: true}
	require.NoError(t, repo.CreateUser(context.Background(), user))

	return &testEnv{
		repo:    repo,
		store:   store,
		ownerID: user.ID,
		deps: Deps{
			Repo:    repo,
			Storage: store,
			Clock:   func() time.Time { return testNow },
		},
	}
}

func (e *testEnv) addGarment(t *testing.T, closet *ClosetService, category, color string) *entity.DbGarment {
	t.Helper()
	garment, err := closet.Add(context.Background(), e.ownerID, entity.GarmentCreateRequest{Category: category, Color: color})
	require.NoError(t, err)
	return garment
}

// eventLog collects notifications.
type eventLog struct {
	mu     sync.Mutex
	events []entity.WardrobeEvent
}

func (l *eventLog) record(_ uint, event entity.WardrobeEvent) {
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()
}

func (l *eventLog) actions() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Action)
	}
	return out
}

func solidPNGDataURL(t *testing.T, c color.Color) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 12, 12))
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func garmentIDs(items []entity.DbGarment) []uint {
	out := make([]uint, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}
