// Package di 组装服务端依赖。
package di

import (
	"closet/internal/api"
	"closet/internal/config"
	"closet/internal/di/providers"
	"closet/internal/service"

	"github.com/samber/do/v2"
)

// NewContainer 创建并注册全部 provider。
func NewContainer() *do.RootScope {
	injector := do.New()

	// 基础设施
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideRepository)
	do.Provide(injector, providers.ProvideStorage)
	do.Provide(injector, providers.ProvideMetrics)

	// 业务服务
	do.Provide(injector, providers.ProvideServiceDeps)
	do.Provide(injector, providers.ProvideRecommender)
	do.Provide(injector, providers.ProvideClosetService)
	do.Provide(injector, providers.ProvideDiaryService)
	do.Provide(injector, providers.ProvidePlannerService)
	do.Provide(injector, providers.ProvideSuggestionService)
	do.Provide(injector, providers.ProvideStatsService)

	// HTTP
	do.Provide(injector, providers.ProvideHTTPHandler)

	return injector
}

// Bootstrap 触发核心依赖的初始化，任一 provider 失败即返回错误。
func Bootstrap(injector do.Injector) (*providers.HTTPHandlerHandle, error) {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.RepositoryHandle](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*providers.StorageHandle](injector); err != nil {
		return nil, err
	}
	if _, err := do.Invoke[*service.StatsService](injector); err != nil {
		return nil, err
	}
	return do.Invoke[*providers.HTTPHandlerHandle](injector)
}

// Handler 是 Bootstrap 之后取 HTTP 处理器的便捷方法。
func Handler(injector do.Injector) *api.HTTPHandler {
	return do.MustInvoke[*providers.HTTPHandlerHandle](injector).HTTPHandler
}
