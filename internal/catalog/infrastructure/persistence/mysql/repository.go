// Package mysql 回测目录的 MySQL 仓储层，基于 GORM。
package mysql

import (
	"context"
	"errors"

	"github.com/wyfcoding/pkg/contextx"
	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
	"gorm.io/gorm"
)

type runRepository struct {
	db *gorm.DB
}

// NewRunRepository 创建回测运行仓储
func NewRunRepository(db *gorm.DB) domain.RunRepository {
	return &runRepository{db: db}
}

func (r *runRepository) Save(ctx context.Context, run *domain.CatalogRun) error {
	db := r.getDB(ctx)
	model := toRunModel(run)

	var existing RunModel
	err := db.Select("id").Where("run_id = ?", run.ID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(model).Error
	}
	if err != nil {
		return err
	}
	model.Model.ID = existing.Model.ID
	return db.Save(model).Error
}

func (r *runRepository) GetByID(ctx context.Context, id string) (*domain.CatalogRun, error) {
	var model RunModel
	if err := r.getDB(ctx).Where("run_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toRun(&model), nil
}

func (r *runRepository) GetByIDs(ctx context.Context, ids []string) ([]*domain.CatalogRun, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var models []*RunModel
	if err := r.getDB(ctx).Where("run_id IN ?", ids).Find(&models).Error; err != nil {
		return nil, err
	}
	runs := make([]*domain.CatalogRun, 0, len(models))
	for _, m := range models {
		runs = append(runs, toRun(m))
	}
	return runs, nil
}

func (r *runRepository) List(ctx context.Context, includeArchived bool) ([]*domain.CatalogRun, error) {
	query := r.getDB(ctx).Model(&RunModel{})
	if !includeArchived {
		query = query.Where("status <> ?", string(domain.RunStatusArchived))
	}
	var models []*RunModel
	if err := query.Order("run_id").Find(&models).Error; err != nil {
		return nil, err
	}
	runs := make([]*domain.CatalogRun, 0, len(models))
	for _, m := range models {
		runs = append(runs, toRun(m))
	}
	return runs, nil
}

func (r *runRepository) UpdateStatus(ctx context.Context, id string, status domain.RunStatus, kpi *domain.RunKPI, warning bool) error {
	updates := map[string]any{
		"status":               string(status),
		"data_quality_warning": warning,
	}
	if kpi != nil {
		updates["sharpe"] = kpi.Sharpe
		updates["sortino"] = kpi.Sortino
		updates["calmar"] = kpi.Calmar
		updates["max_drawdown"] = kpi.MaxDrawdown
		updates["win_rate"] = kpi.WinRate
		updates["profit_factor"] = kpi.ProfitFactor
		updates["trade_count"] = kpi.TradeCount
		updates["costs_ratio"] = kpi.CostsRatio
		updates["net_return"] = kpi.NetReturn
		updates["expectancy"] = kpi.Expectancy
		updates["extra_metrics"] = marshalJSON(kpi.Extra)
	}
	return r.getDB(ctx).Model(&RunModel{}).Where("run_id = ?", id).Updates(updates).Error
}

func (r *runRepository) SetAlias(ctx context.Context, id, alias string) error {
	return r.getDB(ctx).Model(&RunModel{}).Where("run_id = ?", id).Update("alias", alias).Error
}

func (r *runRepository) SetPinned(ctx context.Context, id string, pinned bool) error {
	return r.getDB(ctx).Model(&RunModel{}).Where("run_id = ?", id).Update("pinned", pinned).Error
}

func (r *runRepository) BulkUpdateStatus(ctx context.Context, ids []string, status domain.RunStatus) (int64, error) {
	result := r.getDB(ctx).Model(&RunModel{}).Where("run_id IN ?", ids).Update("status", string(status))
	return result.RowsAffected, result.Error
}

func (r *runRepository) BulkDelete(ctx context.Context, ids []string) (int64, error) {
	// 显式清除为物理删除
	result := r.getDB(ctx).Unscoped().Where("run_id IN ?", ids).Delete(&RunModel{})
	return result.RowsAffected, result.Error
}

func (r *runRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

type batchRepository struct {
	db *gorm.DB
}

// NewBatchRepository 创建研究批次仓储
func NewBatchRepository(db *gorm.DB) domain.BatchRepository {
	return &batchRepository{db: db}
}

func (r *batchRepository) Save(ctx context.Context, batch *domain.ResearchBatch) error {
	db := r.getDB(ctx)
	model := toBatchModel(batch)

	var existing BatchModel
	err := db.Select("id").Where("batch_id = ?", batch.ID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(model).Error
	}
	if err != nil {
		return err
	}
	model.Model.ID = existing.Model.ID
	return db.Save(model).Error
}

func (r *batchRepository) GetByID(ctx context.Context, id string) (*domain.ResearchBatch, error) {
	var model BatchModel
	if err := r.getDB(ctx).Where("batch_id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return toBatch(&model), nil
}

func (r *batchRepository) List(ctx context.Context, limit, offset int) ([]*domain.ResearchBatch, int64, error) {
	db := r.getDB(ctx).Model(&BatchModel{})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var models []*BatchModel
	if err := db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	batches := make([]*domain.ResearchBatch, 0, len(models))
	for _, m := range models {
		batches = append(batches, toBatch(m))
	}
	return batches, total, nil
}

func (r *batchRepository) SaveShortlist(ctx context.Context, batchID string, entries []domain.ShortlistEntry) error {
	return r.getDB(ctx).Model(&BatchModel{}).
		Where("batch_id = ?", batchID).
		Update("shortlist", marshalJSON(entries)).Error
}

func (r *batchRepository) UpdateProgress(ctx context.Context, id string, status domain.BatchStatus, done, failed, total int) error {
	return r.getDB(ctx).Model(&BatchModel{}).Where("batch_id = ?", id).Updates(map[string]any{
		"status": string(status),
		"done":   done,
		"failed": failed,
		"total":  total,
	}).Error
}

func (r *batchRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}

type variantRepository struct {
	db *gorm.DB
}

// NewVariantRepository 创建批次变体仓储
func NewVariantRepository(db *gorm.DB) domain.VariantRepository {
	return &variantRepository{db: db}
}

func (r *variantRepository) Save(ctx context.Context, v *domain.VariantResult) error {
	db := r.getDB(ctx)
	model := toVariantModel(v)

	var existing VariantModel
	err := db.Select("id").Where("batch_id = ? AND variant_id = ?", v.BatchID, v.VariantID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(model).Error
	}
	if err != nil {
		return err
	}
	model.Model.ID = existing.Model.ID
	return db.Save(model).Error
}

func (r *variantRepository) GetByIDs(ctx context.Context, batchID string, variantIDs []string) ([]*domain.VariantResult, error) {
	if len(variantIDs) == 0 {
		return nil, nil
	}
	var models []*VariantModel
	if err := r.getDB(ctx).
		Where("batch_id = ? AND variant_id IN ?", batchID, variantIDs).
		Find(&models).Error; err != nil {
		return nil, err
	}
	variants := make([]*domain.VariantResult, 0, len(models))
	for _, m := range models {
		variants = append(variants, toVariant(m))
	}
	return variants, nil
}

func (r *variantRepository) ListByBatch(ctx context.Context, batchID string, passingOnly bool, offset, limit int) ([]*domain.VariantResult, int64, error) {
	query := r.getDB(ctx).Model(&VariantModel{}).Where("batch_id = ?", batchID)
	if passingOnly {
		query = query.Where("gate_pass = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var models []*VariantModel
	if err := query.Order("score DESC, variant_id").Offset(offset).Limit(limit).Find(&models).Error; err != nil {
		return nil, 0, err
	}
	variants := make([]*domain.VariantResult, 0, len(models))
	for _, m := range models {
		variants = append(variants, toVariant(m))
	}
	return variants, total, nil
}

func (r *variantRepository) getDB(ctx context.Context) *gorm.DB {
	if tx, ok := contextx.GetTx(ctx).(*gorm.DB); ok {
		return tx
	}
	return r.db
}
