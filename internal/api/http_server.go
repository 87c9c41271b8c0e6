package api

import (
	"closet/internal/auth"
	"closet/internal/config"
	"closet/internal/entity"
	"closet/internal/metrics"
	"closet/internal/model"
	"closet/internal/service"
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Services 汇总 HTTP 层依赖的服务
type Services struct {
	Closet      *service.ClosetService
	Diary       *service.DiaryService
	Planner     *service.PlannerService
	Suggestions *service.SuggestionService
	Stats       *service.StatsService
}

// HTTPHandler HTTP 请求处理器
type HTTPHandler struct {
	cfg               config.Config
	repo              model.Repository
	storagePublicBase string
	authManager       *auth.Manager
	recorder          metrics.Recorder
	limiter           *RateLimiter

	// 服务层
	closet      *service.ClosetService
	diary       *service.DiaryService
	planner     *service.PlannerService
	suggestions *service.SuggestionService
	stats       *service.StatsService

	events *eventHub
}

// NewHTTPHandler 创建 HTTP 处理器实例
func NewHTTPHandler(cfg config.Config, repo model.Repository, services Services, recorder metrics.Recorder) (*HTTPHandler, error) {
	expiry := time.Duration(cfg.JWTExpirationMinutes) * time.Minute
	authManager, err := auth.NewManager(cfg.JWTSecret, cfg.JWTIssuer, expiry)
	if err != nil {
		return nil, err
	}
	if err := RegisterValidators(); err != nil {
		return nil, err
	}
	if recorder == nil {
		recorder = metrics.Nop{}
	}

	handler := &HTTPHandler{
		cfg:               cfg,
		repo:              repo,
		storagePublicBase: normalisePublicBase(cfg.StoragePublicBaseURL),
		authManager:       authManager,
		recorder:          recorder,
		limiter: NewRateLimiter(RateLimiterConfig{
			Rate:            rate.Limit(cfg.RateLimitRPS),
			Burst:           cfg.RateLimitBurst,
			CleanupInterval: 5 * time.Minute,
		}),
		closet:      services.Closet,
		diary:       services.Diary,
		planner:     services.Planner,
		suggestions: services.Suggestions,
		stats:       services.Stats,
		events:      newEventHub(),
	}

	// 设置 SSE 通知回调
	services.Closet.SetNotifyFunc(handler.notifyWardrobeChanged)
	services.Diary.SetNotifyFunc(handler.notifyWardrobeChanged)
	services.Planner.SetNotifyFunc(handler.notifyWardrobeChanged)

	return handler, nil
}

// Close 停止后台任务
func (h *HTTPHandler) Close() {
	if h != nil && h.limiter != nil {
		h.limiter.Stop()
	}
}

// RegisterRoutes 注册全部 API 路由
func (h *HTTPHandler) RegisterRoutes(r gin.IRouter) {
	apiGroup := r.Group("/api")
	apiGroup.Use(h.MetricsMiddleware())

	authGroup := apiGroup.Group("/auth")
	authGroup.GET("/status", h.AuthStatus)
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)
	authGroup.GET("/me", h.AuthMiddleware(), h.Me)
	authGroup.PATCH("/me", h.AuthMiddleware(), h.UpdateProfile)

	protected := apiGroup.Group("")
	protected.Use(h.AuthMiddleware())
	writes := h.limiter.Middleware()

	protected.GET("/options", h.Options)
	protected.GET("/events", h.StreamWardrobeEvents)

	garments := protected.Group("/garments")
	garments.GET("", h.ListGarments)
	garments.POST("", writes, h.CreateGarment)
	garments.DELETE("", writes, h.ResetCloset)
	garments.GET("/:id", h.GetGarment)
	garments.PATCH("/:id", writes, h.UpdateGarment)
	garments.DELETE("/:id", writes, h.DeleteGarment)
	garments.POST("/:id/favorite", writes, h.ToggleFavorite)

	protected.GET("/suggestions", h.SuggestOutfit)
	protected.POST("/outfits/wear", writes, h.WearOutfit)

	diary := protected.Group("/diary")
	diary.GET("", h.ListDiary)
	diary.POST("", writes, h.CreateDiaryEntry)
	diary.GET("/:id", h.GetDiaryEntry)
	diary.PATCH("/:id", writes, h.UpdateDiaryEntry)
	diary.DELETE("/:id", writes, h.DeleteDiaryEntry)

	planner := protected.Group("/planner")
	planner.GET("", h.ListPlannerSlots)
	planner.POST("", writes, h.CreatePlannerSlot)
	planner.GET("/:id", h.GetPlannerSlot)
	planner.PATCH("/:id", writes, h.UpdatePlannerSlot)
	planner.DELETE("/:id", writes, h.DeletePlannerSlot)
	planner.POST("/:id/garments/:garment_id", writes, h.AssignPlannerGarment)
	planner.DELETE("/:id/garments/:garment_id", writes, h.UnassignPlannerGarment)

	stats := protected.Group("/stats")
	stats.GET("", h.StatsOverview)
	stats.GET("/unworn", h.StatsUnworn)
	stats.GET("/monthly", h.StatsMonthly)
	stats.GET("/colors", h.StatsColors)
	stats.GET("/moods", h.StatsMoods)
}

// Health 检查数据库连通性
func (h *HTTPHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.repo.Ping(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// normalisePublicBase 规范化公共 URL 基础路径
func normalisePublicBase(value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = "/files"
	}
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return strings.TrimRight(trimmed, "/")
	}
	if !strings.HasPrefix(trimmed, "/") {
		trimmed = "/" + trimmed
	}
	return strings.TrimRight(trimmed, "/")
}

// notifyWardrobeChanged 推送衣橱变更事件（用于 SSE 推送）
func (h *HTTPHandler) notifyWardrobeChanged(ownerID uint, event entity.WardrobeEvent) {
	if ownerID == 0 {
		return
	}
	h.events.publish(ownerID, sseMessage{event: "wardrobe_updated", data: event})
}
