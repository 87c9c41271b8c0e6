package api

import (
	"bytes"
	"closet/internal/config"
	"closet/internal/entity"
	"closet/internal/model"
	"closet/internal/service"
	"closet/internal/storage"
	"closet/internal/wardrobe"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 15, 8, 30, 0, 0, time.UTC)

// flakyRepo 按需让衣橱与日记读取失败，用户查询不受影响。
type flakyRepo struct {
	model.Repository
	failReads atomic.Bool
}

func (r *flakyRepo) ListGarments(ctx context.Context, query entity.GarmentQuery) ([]entity.DbGarment, error) {
	if r.failReads.Load() {
		return nil, errors.New("connection reset")
	}
	return r.Repository.ListGarments(ctx, query)
}

func (r *flakyRepo) ListOutfitEntries(ctx context.Context, query entity.OutfitEntryQuery) ([]entity.DbOutfitEntry, error) {
	if r.failReads.Load() {
		return nil, errors.New("connection reset")
	}
	return r.Repository.ListOutfitEntries(ctx, query)
}

type testServer struct {
	router  *gin.Engine
	handler *HTTPHandler
	repo    *flakyRepo
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	base, err := model.NewSQLiteRepository(filepath.Join(dir, "closet.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = base.Close() })
	store, err := storage.NewLocalStorage(filepath.Join(dir, "images"))
	require.NoError(t, err)
	repo := &flakyRepo{Repository: base}

	cfg := config.Config{
		JWTSecret:            "test-secret",
		JWTIssuer:            "closet-test",
		JWTExpirationMinutes: 60,
		StoragePublicBaseURL: "/files",
		RateLimitRPS:         0,
	}
	if mutate != nil {
		mutate(&cfg)
	}

	deps := service.Deps{
		Repo:    repo,
		Storage: store,
		Locks:   service.NewOwnerLocks(),
		Cache:   service.NewSnapshotCache(),
		Clock:   func() time.Time { return testNow },
	}
	closet := service.NewClosetService(deps, 0)
	diary := service.NewDiaryService(deps, 0)
	handler, err := NewHTTPHandler(cfg, repo, Services{
		Closet:      closet,
		Diary:       diary,
		Planner:     service.NewPlannerService(deps, time.UTC),
		Suggestions: service.NewSuggestionService(deps, closet, wardrobe.NewRecommender(wardrobe.DefaultTables(), 7), time.UTC),
		Stats: service.NewStatsService(deps, closet, diary, service.StatsOptions{
			Location:     time.UTC,
			UnwornPeriod: 30 * 24 * time.Hour,
			ColorWindow:  50,
			RecentLimit:  5,
		}),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(handler.Close)

	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/health", handler.Health)
	handler.RegisterRoutes(r)
	return &testServer{router: r, handler: handler, repo: repo}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register(t *testing.T, email string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/auth/register", "", entity.AuthRegisterRequest{
		Email:    email,
		Password: "correct-horse",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp entity.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (s *testServer) addGarment(t *testing.T, token, category, color string) entity.Garment {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/garments", token, entity.GarmentCreateRequest{Category: category, Color: color})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp entity.GarmentDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Garment
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var apiErr APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	return apiErr
}

func TestRegisterLoginAndRegistrationPolicy(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodGet, "/api/auth/status", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status entity.AuthStatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.False(t, status.HasUser)
	assert.True(t, status.RegistrationOpen)

	token := srv.register(t, "Ada@Example.com")

	// 已有用户且未开放注册
	w = srv.do(t, http.MethodPost, "/api/auth/register", "", entity.AuthRegisterRequest{Email: "bob@example.com", Password: "correct-horse"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, ErrCodeRegistrationClosed, decodeError(t, w).Code)

	w = srv.do(t, http.MethodPost, "/api/auth/login", "", entity.AuthLoginRequest{Email: "ada@example.com", Password: "correct-horse"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodPost, "/api/auth/login", "", entity.AuthLoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, ErrCodeInvalidCredentials, decodeError(t, w).Code)

	w = srv.do(t, http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me entity.UserSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &me))
	assert.Equal(t, "ada@example.com", me.Email)
}

func TestRegisterDuplicateEmailWhenOpen(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.AllowRegistration = true })

	srv.register(t, "ada@example.com")
	w := srv.do(t, http.MethodPost, "/api/auth/register", "", entity.AuthRegisterRequest{Email: "ada@example.com", Password: "correct-horse"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, ErrCodeEmailExists, decodeError(t, w).Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodGet, "/api/garments", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = srv.do(t, http.MethodGet, "/api/garments", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, ErrCodeUnauthorized, decodeError(t, w).Code)
}

func TestGarmentLifecycle(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.register(t, "ada@example.com")

	top := srv.addGarment(t, token, "Tops", "blue")
	assert.Equal(t, "Blue", top.Color)
	assert.Zero(t, top.TimesWorn)

	w := srv.do(t, http.MethodPost, "/api/garments", token, entity.GarmentCreateRequest{Category: "Tops", Color: "Chartreuse"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeInvalidRequest, decodeError(t, w).Code)

	w = srv.do(t, http.MethodGet, "/api/garments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list entity.GarmentListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list.Garments, 1)
	assert.False(t, list.Stale)
	assert.Empty(t, w.Header().Get(staleHeader))

	w = srv.do(t, http.MethodGet, "/api/garments/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, ErrCodeInvalidID, decodeError(t, w).Code)

	w = srv.do(t, http.MethodGet, "/api/garments/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrCodeGarmentNotFound, decodeError(t, w).Code)

	w = srv.do(t, http.MethodPost, "/api/garments/1/favorite", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail entity.GarmentDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.True(t, detail.Garment.Favorite)

	w = srv.do(t, http.MethodPost, "/api/outfits/wear", token, entity.WearOutfitRequest{GarmentIDs: []uint{top.ID}})
	require.Equal(t, http.StatusOK, w.Code)
	var worn entity.WearOutfitResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &worn))
	require.Len(t, worn.Garments, 1)
	assert.EqualValues(t, 1, worn.Garments[0].TimesWorn)
	assert.True(t, worn.WornAt.Equal(testNow))

	// 任一衣物不存在时整体失败
	w = srv.do(t, http.MethodPost, "/api/outfits/wear", token, entity.WearOutfitRequest{GarmentIDs: []uint{top.ID, 999}})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = srv.do(t, http.MethodGet, "/api/garments/1", token, nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.EqualValues(t, 1, detail.Garment.TimesWorn)

	w = srv.do(t, http.MethodDelete, "/api/garments/1", token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = srv.do(t, http.MethodGet, "/api/garments/1", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGarmentsAreScopedToOwner(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) { cfg.AllowRegistration = true })
	ada := srv.register(t, "ada@example.com")
	bob := srv.register(t, "bob@example.com")

	top := srv.addGarment(t, ada, "Tops", "Blue")

	w := srv.do(t, http.MethodGet, "/api/garments", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list entity.GarmentListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Empty(t, list.Garments)

	w = srv.do(t, http.MethodDelete, "/api/garments/"+itoa(top.ID), bob, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSuggestionAndStatsEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.register(t, "ada@example.com")

	top := srv.addGarment(t, token, "Tops", "Blue")
	bottom := srv.addGarment(t, token, "Bottoms", "Green")
	shoes := srv.addGarment(t, token, "Shoes", "Gray")

	w := srv.do(t, http.MethodGet, "/api/suggestions", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var suggestion entity.SuggestionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &suggestion))
	categories := make([]string, 0, len(suggestion.Garments))
	for _, g := range suggestion.Garments {
		categories = append(categories, g.Category)
	}
	assert.Equal(t, []string{"Tops", "Bottoms", "Shoes"}, categories)

	w = srv.do(t, http.MethodGet, "/api/suggestions?auto=true", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &suggestion))
	assert.Equal(t, "casual", suggestion.Occasion)

	w = srv.do(t, http.MethodPost, "/api/outfits/wear", token, entity.WearOutfitRequest{GarmentIDs: []uint{top.ID, bottom.ID, shoes.ID}})
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var overview statsOverviewResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &overview))
	assert.Equal(t, 3, overview.TotalItems)
	assert.EqualValues(t, 3, overview.TotalWearCount)
	assert.InDelta(t, 1.0, overview.AverageWearsPerItem, 1e-9)
	assert.Equal(t, 1, overview.CategoryCounts["Tops"])
	assert.Empty(t, overview.Unworn)
	assert.False(t, overview.Stale)

	for _, path := range []string{"/api/stats/unworn", "/api/stats/monthly", "/api/stats/colors", "/api/stats/moods"} {
		w = srv.do(t, http.MethodGet, path, token, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestDiaryAndPlannerEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.register(t, "ada@example.com")
	top := srv.addGarment(t, token, "Tops", "Blue")

	w := srv.do(t, http.MethodPost, "/api/diary", token, entity.OutfitEntryCreateRequest{
		Mood:       "Happy",
		Notes:      "first day",
		GarmentIDs: []uint{top.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created entity.OutfitEntryDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Len(t, created.Entry.Garments, 1)

	w = srv.do(t, http.MethodPost, "/api/diary", token, entity.OutfitEntryCreateRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodGet, "/api/diary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var entries entity.OutfitEntryListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entries))
	assert.Len(t, entries.Entries, 1)

	w = srv.do(t, http.MethodGet, "/api/diary/999", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, ErrCodeEntryNotFound, decodeError(t, w).Code)

	day := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	w = srv.do(t, http.MethodPost, "/api/planner", token, entity.CalendarSlotCreateRequest{
		Date:       day,
		Occasion:   "Work",
		GarmentIDs: []uint{top.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var slot entity.CalendarSlotDetailResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slot))
	assert.Len(t, slot.Slot.Garments, 1)

	w = srv.do(t, http.MethodGet, "/api/planner?date=2026-03-20", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var slots entity.CalendarSlotListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slots))
	assert.Len(t, slots.Slots, 1)

	w = srv.do(t, http.MethodGet, "/api/planner?date=tomorrow", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodDelete, "/api/planner/"+itoa(slot.Slot.ID)+"/garments/"+itoa(top.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &slot))
	assert.Empty(t, slot.Slot.Garments)

	w = srv.do(t, http.MethodDelete, "/api/planner/"+itoa(slot.Slot.ID), token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestStaleSnapshotServedWithHeader(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.register(t, "ada@example.com")
	srv.addGarment(t, token, "Tops", "Blue")

	// 预热缓存
	w := srv.do(t, http.MethodGet, "/api/garments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = srv.do(t, http.MethodGet, "/api/diary", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	srv.repo.failReads.Store(true)

	w = srv.do(t, http.MethodGet, "/api/garments", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get(staleHeader))
	var list entity.GarmentListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.True(t, list.Stale)
	assert.Len(t, list.Garments, 1)

	w = srv.do(t, http.MethodGet, "/api/stats", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get(staleHeader))
}

func TestStoreReadFailureWithoutCache(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.register(t, "ada@example.com")

	srv.repo.failReads.Store(true)

	w := srv.do(t, http.MethodGet, "/api/garments", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, ErrCodeStoreRead, decodeError(t, w).Code)
	assert.Empty(t, w.Header().Get(staleHeader))

	w = srv.do(t, http.MethodGet, "/api/suggestions", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestWriteRateLimit(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.RateLimitRPS = 0.01
		cfg.RateLimitBurst = 1
	})
	token := srv.register(t, "ada@example.com")

	srv.addGarment(t, token, "Tops", "Blue")

	w := srv.do(t, http.MethodPost, "/api/garments", token, entity.GarmentCreateRequest{Category: "Shoes"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, ErrCodeRateLimited, decodeError(t, w).Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// 读取不受限
	w = srv.do(t, http.MethodGet, "/api/garments", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionsAndRequestID(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.register(t, "ada@example.com")

	req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(requestIDHeader, "req-42")
	w := httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", w.Header().Get(requestIDHeader))
	var options entity.OptionsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &options))
	assert.Equal(t, wardrobe.Categories, options.Categories)
	assert.Len(t, options.Palette, len(wardrobe.Palette))
	assert.Equal(t, []string{"casual", "cozy", "formal", "work"}, options.SuggestionOccasions)
	assert.NotContains(t, options.SuggestionOccasions, "party")
	assert.Contains(t, options.SuggestionMoods, "happy")
}

func TestWardrobeEventsArePublishedPerOwner(t *testing.T) {
	srv := newTestServer(t, nil)
	token := srv.register(t, "ada@example.com")

	mine := srv.handler.events.subscribe(1)
	other := srv.handler.events.subscribe(2)
	defer srv.handler.events.unsubscribe(1, mine)
	defer srv.handler.events.unsubscribe(2, other)

	srv.addGarment(t, token, "Tops", "Blue")

	select {
	case msg := <-mine:
		assert.Equal(t, "wardrobe_updated", msg.event)
	case <-time.After(time.Second):
		t.Fatal("expected a wardrobe event")
	}
	assert.Empty(t, other)
}

func TestEventHubDropsForSlowConsumers(t *testing.T) {
	hub := newEventHub()
	ch := hub.subscribe(5)

	for i := 0; i < sseBuffer; i++ {
		assert.Equal(t, 1, hub.publish(5, sseMessage{event: "wardrobe_updated"}))
	}
	assert.Zero(t, hub.publish(5, sseMessage{event: "wardrobe_updated"}))
	assert.Len(t, ch, sseBuffer)

	hub.unsubscribe(5, ch)
	assert.Zero(t, hub.count(5))
	assert.Zero(t, hub.publish(5, sseMessage{event: "wardrobe_updated"}))
}

func TestHealthReportsClosedDatabase(t *testing.T) {
	srv := newTestServer(t, nil)

	w := srv.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, srv.repo.Close())
	w = srv.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "unavailable")
}

func itoa(id uint) string {
	raw, _ := json.Marshal(id)
	return string(raw)
}
