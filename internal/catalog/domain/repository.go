package domain

import "context"

// RunRepository 目录运行仓储
type RunRepository interface {
	Save(ctx context.Context, run *CatalogRun) error
	GetByID(ctx context.Context, id string) (*CatalogRun, error)
	GetByIDs(ctx context.Context, ids []string) ([]*CatalogRun, error)
	// List 返回当前目录集合；includeArchived 为 false 时过滤归档记录
	List(ctx context.Context, includeArchived bool) ([]*CatalogRun, error)
	UpdateStatus(ctx context.Context, id string, status RunStatus, kpi *RunKPI, warning bool) error
	SetAlias(ctx context.Context, id, alias string) error
	SetPinned(ctx context.Context, id string, pinned bool) error
	// BulkUpdateStatus 批量变更状态，返回受影响行数
	BulkUpdateStatus(ctx context.Context, ids []string, status RunStatus) (int64, error)
	// BulkDelete 物理删除（显式清除），返回删除行数
	BulkDelete(ctx context.Context, ids []string) (int64, error)
}

// BatchRepository 研究批次仓储
type BatchRepository interface {
	Save(ctx context.Context, batch *ResearchBatch) error
	GetByID(ctx context.Context, id string) (*ResearchBatch, error)
	List(ctx context.Context, limit, offset int) ([]*ResearchBatch, int64, error)
	// SaveShortlist 覆盖批次缓存的入围快照，仅由显式保存动作触发
	SaveShortlist(ctx context.Context, batchID string, entries []ShortlistEntry) error
	UpdateProgress(ctx context.Context, id string, status BatchStatus, done, failed, total int) error
}

// VariantRepository 批次变体结果仓储
type VariantRepository interface {
	Save(ctx context.Context, v *VariantResult) error
	GetByIDs(ctx context.Context, batchID string, variantIDs []string) ([]*VariantResult, error)
	// ListByBatch 分页返回批次变体，passingOnly 为 true 时仅返回通过门槛的行
	ListByBatch(ctx context.Context, batchID string, passingOnly bool, offset, limit int) ([]*VariantResult, int64, error)
}
