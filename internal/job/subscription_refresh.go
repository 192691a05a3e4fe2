package job

import (
	"context"
	"log/slog"

	"github.com/creamcroissant/sub2xray/internal/service"
)

// SubscriptionRefreshJob 定时重新拉取订阅并发布新快照。
type SubscriptionRefreshJob struct {
	catalog service.CatalogService
	logger  *slog.Logger
}

// NewSubscriptionRefreshJob 创建刷新任务。
func NewSubscriptionRefreshJob(catalog service.CatalogService, logger *slog.Logger) *SubscriptionRefreshJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &SubscriptionRefreshJob{catalog: catalog, logger: logger}
}

func (j *SubscriptionRefreshJob) Name() string { return "subscription.refresh" }

// Run 失败时保留旧快照继续对外服务。
func (j *SubscriptionRefreshJob) Run(ctx context.Context) error {
	snap, err := j.catalog.Refresh(ctx)
	if err != nil {
		return err
	}
	j.logger.Debug("refresh job published snapshot", "snapshot", snap.ID, "servers", len(snap.Servers))
	return nil
}
