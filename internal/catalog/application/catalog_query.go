// Package application 回测目录控制台应用层
package application

import (
	"context"
	"errors"
	"log/slog"
	"sort"

	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
	"github.com/wyfcoding/quantconsole/pkg/listview"
)

// ErrUnknownPreset 请求了未配置的排序预设
var ErrUnknownPreset = errors.New("unknown ranking preset")

// ListRunsQuery 目录列表查询
type ListRunsQuery struct {
	Criteria        domain.FilterCriteria
	SortKey         string
	Direction       domain.SortDirection
	Preset          string
	Page            int
	PageSize        int
	IncludeArchived bool
}

// RunListPage 目录列表分页结果，附带实际生效的排序信息
type RunListPage struct {
	listview.Page[*domain.CatalogRun]
	SortKey   string               `json:"sort_key"`
	Direction domain.SortDirection `json:"direction"`
	Preset    string               `json:"preset,omitempty"`
}

// ViewportQuery 虚拟化窗口查询参数
type ViewportQuery struct {
	RowHeight      int
	ViewportHeight int
	ScrollTop      int
	Overscan       int
}

// RunViewport 虚拟化窗口结果：仅物化窗口内的行
type RunViewport struct {
	listview.Viewport
	Total int                  `json:"total"`
	Rows  []*domain.CatalogRun `json:"rows"`
}

// CatalogQueryService 目录查询服务：筛选 → 排序/预设 → 分页或窗口化
type CatalogQueryService struct {
	runRepo domain.RunRepository
	presets map[string]*domain.RankingPreset
	logger  *slog.Logger
}

// NewCatalogQueryService 创建目录查询服务
func NewCatalogQueryService(runRepo domain.RunRepository, presets map[string]*domain.RankingPreset, logger *slog.Logger) *CatalogQueryService {
	if presets == nil {
		presets = domain.DefaultPresets()
	}
	return &CatalogQueryService{runRepo: runRepo, presets: presets, logger: logger}
}

// GetRun 按 ID 获取单条运行记录，未找到返回 (nil, nil)
func (s *CatalogQueryService) GetRun(ctx context.Context, id string) (*domain.CatalogRun, error) {
	return s.runRepo.GetByID(ctx, id)
}

// RunGrades 单条记录的各指标评级
func (s *CatalogQueryService) RunGrades(ctx context.Context, id string) (map[domain.MetricKey]domain.Grade, error) {
	run, err := s.runRepo.GetByID(ctx, id)
	if err != nil || run == nil {
		return nil, err
	}
	return domain.RunGrades(run), nil
}

// ListRuns 分页返回筛选排序后的目录
func (s *CatalogQueryService) ListRuns(ctx context.Context, q ListRunsQuery) (*RunListPage, error) {
	ranked, err := s.pipeline(ctx, &q)
	if err != nil {
		return nil, err
	}
	return &RunListPage{
		Page:      listview.Paginate(ranked, q.PageSize, q.Page),
		SortKey:   q.SortKey,
		Direction: q.Direction,
		Preset:    q.Preset,
	}, nil
}

// ViewportRuns 返回滚动窗口内的行与填充几何，用于超大结果集的虚拟化渲染
func (s *CatalogQueryService) ViewportRuns(ctx context.Context, q ListRunsQuery, vp ViewportQuery) (*RunViewport, error) {
	ranked, err := s.pipeline(ctx, &q)
	if err != nil {
		return nil, err
	}
	window := listview.Window(len(ranked), vp.RowHeight, vp.ViewportHeight, vp.ScrollTop, vp.Overscan)
	return &RunViewport{
		Viewport: window,
		Total:    len(ranked),
		Rows:     ranked[window.Start:window.End],
	}, nil
}

// pipeline 共享的筛选+排序流水线。q 的排序字段会被回填为实际生效值。
func (s *CatalogQueryService) pipeline(ctx context.Context, q *ListRunsQuery) ([]*domain.CatalogRun, error) {
	runs, err := s.runRepo.List(ctx, q.IncludeArchived)
	if err != nil {
		return nil, err
	}
	filtered := domain.FilterRuns(runs, q.Criteria)

	if q.Preset != "" {
		preset, ok := s.presets[q.Preset]
		if !ok {
			return nil, ErrUnknownPreset
		}
		return preset.Apply(filtered), nil
	}

	if q.SortKey == "" {
		q.SortKey = domain.SortKeyID
	}
	if q.Direction == "" {
		q.Direction = domain.DefaultDirection(q.SortKey)
	}
	return domain.RankRuns(filtered, q.SortKey, q.Direction), nil
}

// Presets 当前生效的预设名称集合，供前端展示
func (s *CatalogQueryService) Presets() []string {
	names := make([]string, 0, len(s.presets))
	for name := range s.presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
