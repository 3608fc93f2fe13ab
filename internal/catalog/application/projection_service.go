package application

import (
	"context"
	"log/slog"

	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
)

// ProjectionService 将引擎侧事件投影到目录读模型
type ProjectionService struct {
	runRepo   domain.RunRepository
	batchRepo domain.BatchRepository
	cache     BatchReadCache
	logger    *slog.Logger
}

// NewProjectionService 创建投影服务
func NewProjectionService(runRepo domain.RunRepository, batchRepo domain.BatchRepository, cache BatchReadCache, logger *slog.Logger) *ProjectionService {
	return &ProjectionService{runRepo: runRepo, batchRepo: batchRepo, cache: cache, logger: logger}
}

// ApplyRunStatusChanged 应用运行状态变更事件
func (s *ProjectionService) ApplyRunStatusChanged(ctx context.Context, event *domain.RunStatusChangedEvent) error {
	return s.runRepo.UpdateStatus(ctx, event.RunID, event.Status, event.KPI, event.Warning)
}

// ApplyBatchProgress 应用批次进度事件并使读缓存失效
func (s *ProjectionService) ApplyBatchProgress(ctx context.Context, event *domain.BatchProgressEvent) error {
	if err := s.batchRepo.UpdateProgress(ctx, event.BatchID, event.Status, event.Done, event.Failed, event.Total); err != nil {
		return err
	}
	if err := s.cache.Invalidate(ctx, event.BatchID); err != nil {
		s.logger.Debug("批次缓存失效失败", "batch_id", event.BatchID, "error", err)
	}
	return nil
}
