package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
)

// CompareScope 对比选集的会话作用域，受 CompareLimit 约束
const CompareScope = "compare"

// CompareLimit 对比选集上限
const CompareLimit = 10

// ErrInvalidMetric Top-N 请求了非数值指标
var ErrInvalidMetric = errors.New("metric is not numeric")

// SelectionStore 会话选集存储
type SelectionStore interface {
	Get(ctx context.Context, scope string) ([]string, error)
	Put(ctx context.Context, scope string, ids []string) error
	Delete(ctx context.Context, scope string) error
}

// SelectionService 选集服务：维护按作用域隔离的会话选集，并基于选集构建对比预览
type SelectionService struct {
	store   SelectionStore
	runRepo domain.RunRepository
	logger  *slog.Logger
}

// NewSelectionService 创建选集服务
func NewSelectionService(store SelectionStore, runRepo domain.RunRepository, logger *slog.Logger) *SelectionService {
	return &SelectionService{store: store, runRepo: runRepo, logger: logger}
}

func scopeLimit(scope string) int {
	if scope == CompareScope {
		return CompareLimit
	}
	return 0
}

func (s *SelectionService) load(ctx context.Context, scope string) (*domain.SelectionSet, error) {
	ids, err := s.store.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	return domain.RestoreSelection(ids, scopeLimit(scope)), nil
}

// Get 返回作用域内当前选集
func (s *SelectionService) Get(ctx context.Context, scope string) ([]string, error) {
	set, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	return set.IDs(), nil
}

// Toggle 切换单条记录的选中状态，返回切换后的状态与选集大小
func (s *SelectionService) Toggle(ctx context.Context, scope, id string) (bool, int, error) {
	set, err := s.load(ctx, scope)
	if err != nil {
		return false, 0, err
	}
	selected, err := set.Toggle(id)
	if err != nil {
		return false, set.Len(), err
	}
	if err := s.store.Put(ctx, scope, set.IDs()); err != nil {
		return false, 0, err
	}
	return selected, set.Len(), nil
}

// SelectAll 将给定 id 集并入选集，超限时保留已并入的部分并返回错误
func (s *SelectionService) SelectAll(ctx context.Context, scope string, ids []string) (int, error) {
	set, err := s.load(ctx, scope)
	if err != nil {
		return 0, err
	}
	selErr := set.SelectAll(ids)
	if err := s.store.Put(ctx, scope, set.IDs()); err != nil {
		return 0, err
	}
	return set.Len(), selErr
}

// SelectTopN 按指标选出前 N 条记录，替换作用域内的现有选集
func (s *SelectionService) SelectTopN(ctx context.Context, scope string, metric domain.MetricKey, n int) ([]string, error) {
	if !domain.IsNumericMetric(metric) {
		return nil, ErrInvalidMetric
	}
	runs, err := s.runRepo.List(ctx, false)
	if err != nil {
		return nil, err
	}
	set := domain.NewSelectionSet(scopeLimit(scope))
	set.SelectTopN(runs, metric, n)
	if err := s.store.Put(ctx, scope, set.IDs()); err != nil {
		return nil, err
	}
	return set.IDs(), nil
}

// Clear 清空作用域内的选集
func (s *SelectionService) Clear(ctx context.Context, scope string) error {
	return s.store.Delete(ctx, scope)
}

// Comparison 基于当前选集构建对比预览。已失效的 id 被静默剔除并回写存储。
func (s *SelectionService) Comparison(ctx context.Context, scope string) (*domain.ComparisonPreview, error) {
	ids, err := s.store.Get(ctx, scope)
	if err != nil {
		return nil, err
	}
	runs, err := s.runRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]*domain.CatalogRun, len(runs))
	for _, run := range runs {
		catalog[run.ID] = run
	}
	preview := domain.BuildComparison(ids, catalog)

	if len(preview.Items) < len(ids) {
		resolved := make([]string, 0, len(preview.Items))
		for _, item := range preview.Items {
			resolved = append(resolved, item.ID)
		}
		if err := s.store.Put(ctx, scope, resolved); err != nil {
			s.logger.Warn("剔除失效选集条目后回写失败", "scope", scope, "error", err)
		}
	}
	return preview, nil
}
