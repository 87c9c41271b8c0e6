package providers

import (
	"closet/internal/api"
	"closet/internal/config"
	"closet/internal/service"

	"github.com/samber/do/v2"
)

// HTTPHandlerHandle 包装 HTTP 处理器以便随容器关闭。
type HTTPHandlerHandle struct {
	*api.HTTPHandler
}

// Shutdown implements do.Shutdowner.
func (h *HTTPHandlerHandle) Shutdown() error {
	h.Close()
	return nil
}

// ProvideHTTPHandler 组装 HTTP 处理器。
func ProvideHTTPHandler(i do.Injector) (*HTTPHandlerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	repo := do.MustInvoke[*RepositoryHandle](i)
	m := do.MustInvoke[*MetricsHandle](i)

	handler, err := api.NewHTTPHandler(*cfg, repo.Repository, api.Services{
		Closet:      do.MustInvoke[*service.ClosetService](i),
		Diary:       do.MustInvoke[*service.DiaryService](i),
		Planner:     do.MustInvoke[*service.PlannerService](i),
		Suggestions: do.MustInvoke[*service.SuggestionService](i),
		Stats:       do.MustInvoke[*service.StatsService](i),
	}, m.Recorder)
	if err != nil {
		return nil, err
	}
	return &HTTPHandlerHandle{HTTPHandler: handler}, nil
}
