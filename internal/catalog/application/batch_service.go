package application

import (
	"context"
	"log/slog"
	"time"

	"github.com/wyfcoding/pkg/messagequeue"
	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
)

// BatchReadCache 批次读缓存。取数失败只影响性能，不影响正确性。
type BatchReadCache interface {
	GetBatch(ctx context.Context, id string) (*domain.ResearchBatch, error)
	PutBatch(ctx context.Context, batch *domain.ResearchBatch) error
	Invalidate(ctx context.Context, id string) error
}

// BatchService 研究批次服务：批次进度、变体结果分页与候选短名单
type BatchService struct {
	batchRepo   domain.BatchRepository
	variantRepo domain.VariantRepository
	cache       BatchReadCache
	publisher   messagequeue.EventPublisher
	logger      *slog.Logger
}

// NewBatchService 创建研究批次服务
func NewBatchService(batchRepo domain.BatchRepository, variantRepo domain.VariantRepository, cache BatchReadCache, publisher messagequeue.EventPublisher, logger *slog.Logger) *BatchService {
	return &BatchService{batchRepo: batchRepo, variantRepo: variantRepo, cache: cache, publisher: publisher, logger: logger}
}

// ListBatches 分页返回批次列表
func (s *BatchService) ListBatches(ctx context.Context, page, pageSize int) ([]*domain.ResearchBatch, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.batchRepo.List(ctx, pageSize, (page-1)*pageSize)
}

// GetBatch 读取单个批次，优先命中缓存；缓存故障静默降级到存储。
// 未找到返回 (nil, nil)。
func (s *BatchService) GetBatch(ctx context.Context, id string) (*domain.ResearchBatch, error) {
	if cached, err := s.cache.GetBatch(ctx, id); err != nil {
		s.logger.Debug("批次缓存读取失败，回源存储", "batch_id", id, "error", err)
	} else if cached != nil {
		return cached, nil
	}

	batch, err := s.batchRepo.GetByID(ctx, id)
	if err != nil || batch == nil {
		return batch, err
	}
	if err := s.cache.PutBatch(ctx, batch); err != nil {
		s.logger.Debug("批次缓存写入失败", "batch_id", id, "error", err)
	}
	return batch, nil
}

// ListVariants 分页返回批次内的变体结果，passingOnly 为真时只返回通过门控的变体
func (s *BatchService) ListVariants(ctx context.Context, batchID string, passingOnly bool, page, pageSize int) ([]*domain.VariantResult, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.variantRepo.ListByBatch(ctx, batchID, passingOnly, (page-1)*pageSize, pageSize)
}

// SaveShortlist 将选中变体固化为批次短名单快照。
// 空选集在本地拒绝，不产生任何存储调用；已失效的变体 id 被静默跳过。
func (s *BatchService) SaveShortlist(ctx context.Context, batchID string, variantIDs []string) ([]domain.ShortlistEntry, error) {
	if len(variantIDs) == 0 {
		return nil, domain.ErrEmptySelection
	}

	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil || batch == nil {
		return nil, err
	}

	variants, err := s.variantRepo.GetByIDs(ctx, batchID, variantIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*domain.VariantResult, len(variants))
	for _, v := range variants {
		byID[v.VariantID] = v
	}

	entries := make([]domain.ShortlistEntry, 0, len(variantIDs))
	for _, id := range variantIDs {
		v, ok := byID[id]
		if !ok {
			continue
		}
		entries = append(entries, domain.ShortlistEntry{
			VariantID:  v.VariantID,
			StrategyID: v.StrategyID,
			Score:      v.Score,
			RunID:      v.RunID,
		})
	}
	if len(entries) == 0 {
		return nil, domain.ErrEmptySelection
	}

	if err := s.batchRepo.SaveShortlist(ctx, batchID, entries); err != nil {
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, batchID); err != nil {
		s.logger.Debug("批次缓存失效失败", "batch_id", batchID, "error", err)
	}

	event := &domain.ShortlistSavedEvent{
		BatchID:   batchID,
		Count:     len(entries),
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, event.EventName(), batchID, event); err != nil {
		s.logger.Warn("短名单事件发布失败", "batch_id", batchID, "error", err)
	}
	return entries, nil
}

// LoadShortlist 读取批次短名单，剔除已不存在的变体。
// 快照损坏或过期只会收缩结果，不会返回错误。
func (s *BatchService) LoadShortlist(ctx context.Context, batchID string) ([]domain.ShortlistEntry, error) {
	batch, err := s.batchRepo.GetByID(ctx, batchID)
	if err != nil || batch == nil {
		return nil, err
	}
	if len(batch.Shortlist) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(batch.Shortlist))
	for _, entry := range batch.Shortlist {
		ids = append(ids, entry.VariantID)
	}
	variants, err := s.variantRepo.GetByIDs(ctx, batchID, ids)
	if err != nil {
		return nil, err
	}
	alive := make(map[string]bool, len(variants))
	for _, v := range variants {
		alive[v.VariantID] = true
	}

	entries := make([]domain.ShortlistEntry, 0, len(batch.Shortlist))
	for _, entry := range batch.Shortlist {
		if alive[entry.VariantID] {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}
