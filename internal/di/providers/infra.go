package providers

import (
	"closet/internal/config"
	"closet/internal/metrics"
	"closet/internal/model"
	"closet/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"
	"github.com/sirupsen/logrus"
)

// ProvideConfig 从环境变量读取配置。
func ProvideConfig(i do.Injector) (*config.Config, error) {
	cfg, err := config.ParseConfig()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RepositoryHandle 持有数据仓库。
type RepositoryHandle struct {
	model.Repository
}

// Shutdown 关闭数据库连接池，由容器在退出时调用。
func (h *RepositoryHandle) Shutdown() error {
	if h == nil || h.Repository == nil {
		return nil
	}
	return h.Close()
}

// ProvideRepository 按 DBType 打开数据库并迁移表结构。
func ProvideRepository(i do.Injector) (*RepositoryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	repo, err := model.InitRepository(cfg)
	if err != nil {
		return nil, err
	}
	logrus.WithField("db_type", cfg.DBType).Info("repository initialised")
	return &RepositoryHandle{Repository: repo}, nil
}

// StorageHandle 持有图片存储后端。
type StorageHandle struct {
	storage.Storage
}

// ProvideStorage 按 STORAGE_TYPE 创建存储。
func ProvideStorage(i do.Injector) (*StorageHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	store, err := storage.NewStorage(*cfg)
	if err != nil {
		return nil, err
	}
	logrus.WithField("storage_type", cfg.StorageType).Info("storage initialised")
	return &StorageHandle{Storage: store}, nil
}

// MetricsHandle 持有指标记录器；Gatherer 为 nil 表示未启用 /metrics。
type MetricsHandle struct {
	Recorder metrics.Recorder
	Gatherer prometheus.Gatherer
}

// ProvideMetrics 创建独立的 prometheus registry，关闭时返回空实现。
func ProvideMetrics(i do.Injector) (*MetricsHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	if !cfg.MetricsEnabled {
		return &MetricsHandle{Recorder: metrics.Nop{}}, nil
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &MetricsHandle{
		Recorder: metrics.NewCollector(registry),
		Gatherer: registry,
	}, nil
}
