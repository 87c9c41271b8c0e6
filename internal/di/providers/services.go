package providers

import (
	"closet/internal/config"
	"closet/internal/service"
	"closet/internal/wardrobe"

	"github.com/samber/do/v2"
)

// ProvideServiceDeps 构造各服务共享的协作者，锁与快照缓存只创建一份。
func ProvideServiceDeps(i do.Injector) (service.Deps, error) {
	repo := do.MustInvoke[*RepositoryHandle](i)
	store := do.MustInvoke[*StorageHandle](i)
	m := do.MustInvoke[*MetricsHandle](i)

	return service.Deps{
		Repo:     repo.Repository,
		Storage:  store.Storage,
		Recorder: m.Recorder,
		Locks:    service.NewOwnerLocks(),
		Cache:    service.NewSnapshotCache(),
	}, nil
}

// ProvideRecommender 使用内置映射表创建推荐器。
func ProvideRecommender(i do.Injector) (*wardrobe.Recommender, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return wardrobe.NewRecommender(wardrobe.DefaultTables(), cfg.SuggestSeed), nil
}

func ProvideClosetService(i do.Injector) (*service.ClosetService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	deps := do.MustInvoke[service.Deps](i)
	return service.NewClosetService(deps, cfg.MaxImageBytes), nil
}

func ProvideDiaryService(i do.Injector) (*service.DiaryService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	deps := do.MustInvoke[service.Deps](i)
	return service.NewDiaryService(deps, cfg.MaxImageBytes), nil
}

func ProvidePlannerService(i do.Injector) (*service.PlannerService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	deps := do.MustInvoke[service.Deps](i)
	return service.NewPlannerService(deps, cfg.Location()), nil
}

func ProvideSuggestionService(i do.Injector) (*service.SuggestionService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	deps := do.MustInvoke[service.Deps](i)
	closet := do.MustInvoke[*service.ClosetService](i)
	recommender := do.MustInvoke[*wardrobe.Recommender](i)
	return service.NewSuggestionService(deps, closet, recommender, cfg.Location()), nil
}

// ProvideStatsService 按配置的时区与窗口创建统计服务。
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	deps := do.MustInvoke[service.Deps](i)
	closet := do.MustInvoke[*service.ClosetService](i)
	diary := do.MustInvoke[*service.DiaryService](i)

	return service.NewStatsService(deps, closet, diary, service.StatsOptions{
		Location:     cfg.Location(),
		UnwornPeriod: cfg.UnwornPeriod(),
		ColorWindow:  cfg.ColorCombinationWindow,
		RecentLimit:  cfg.RecentOutfitsLimit,
	}), nil
}
