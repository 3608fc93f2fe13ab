package domain

import "sort"

// SortDirection 排序方向
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// 字典序排序键
const (
	SortKeyID       = "id"
	SortKeyStrategy = "strategy"
)

// DefaultDirection 排序键的默认方向：
// 字典序键升序；“越小越好”的指标升序；其余指标降序。
func DefaultDirection(key string) SortDirection {
	switch key {
	case SortKeyID, SortKeyStrategy:
		return SortAsc
	}
	if LowerIsBetter(MetricKey(key)) {
		return SortAsc
	}
	return SortDesc
}

// ResolveDirection 计算下一次排序方向：重选当前键翻转方向，切换新键回到该键默认方向
func ResolveDirection(activeKey string, activeDir SortDirection, nextKey string) SortDirection {
	if nextKey == activeKey {
		if activeDir == SortAsc {
			return SortDesc
		}
		return SortAsc
	}
	return DefaultDirection(nextKey)
}

// RankRuns 按指定键与方向排序并赋予名次。
// 主值相等时按运行 ID 升序打破平局，保证同一输入的任意洗牌排序结果一致。
// 返回新切片，不改变输入顺序。
func RankRuns(runs []*CatalogRun, key string, dir SortDirection) []*CatalogRun {
	sorted := make([]*CatalogRun, len(runs))
	copy(sorted, runs)

	less := lessFunc(key, dir)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if eq, l := less(a, b); !eq {
			return l
		}
		return a.ID < b.ID
	})

	for i, run := range sorted {
		run.Rank = i + 1
	}
	return sorted
}

// lessFunc 返回主值比较函数，第一返回值表示主值相等
func lessFunc(key string, dir SortDirection) func(a, b *CatalogRun) (bool, bool) {
	asc := dir == SortAsc
	switch key {
	case SortKeyID:
		return func(a, b *CatalogRun) (bool, bool) {
			if a.ID == b.ID {
				return true, false
			}
			return false, (a.ID < b.ID) == asc
		}
	case SortKeyStrategy:
		return func(a, b *CatalogRun) (bool, bool) {
			if a.StrategyName == b.StrategyName {
				return true, false
			}
			return false, (a.StrategyName < b.StrategyName) == asc
		}
	default:
		metric := MetricKey(key)
		return func(a, b *CatalogRun) (bool, bool) {
			va, vb := MetricValue(a, metric), MetricValue(b, metric)
			if va == vb {
				return true, false
			}
			return false, (va < vb) == asc
		}
	}
}

// PresetConstraints 预设的硬约束，未通过者被排除出该预设的排序输出
type PresetConstraints struct {
	RequireOOSPass   bool `json:"require_oos_pass" mapstructure:"require_oos_pass"`
	RequireCleanData bool `json:"require_clean_data" mapstructure:"require_clean_data"`
}

// RankingPreset 组合排序预设：多指标加权得分 + 可选硬约束。
// 权重可由外部配置覆盖，避免将未经验证的权重写死。
type RankingPreset struct {
	Name        string                `json:"name" mapstructure:"name"`
	Weights     map[MetricKey]float64 `json:"weights" mapstructure:"weights"`
	Constraints PresetConstraints     `json:"constraints" mapstructure:"constraints"`
}

// Score 计算单条记录的组合得分，“越小越好”的指标按负向贡献计入
func (p *RankingPreset) Score(run *CatalogRun) float64 {
	var score float64
	for key, weight := range p.Weights {
		v := MetricValue(run, key)
		if LowerIsBetter(key) {
			score -= weight * v
		} else {
			score += weight * v
		}
	}
	return score
}

// Apply 应用预设：过滤硬约束、写入组合得分、按得分降序排序并赋名次。
// 被约束排除的记录不出现在返回值中，但调用方持有的底层集合不受影响。
func (p *RankingPreset) Apply(runs []*CatalogRun) []*CatalogRun {
	eligible := make([]*CatalogRun, 0, len(runs))
	for _, run := range runs {
		if p.Constraints.RequireOOSPass && !run.OOSPass {
			continue
		}
		if p.Constraints.RequireCleanData && run.DataQualityWarning {
			continue
		}
		run.CompositeScore = p.Score(run)
		eligible = append(eligible, run)
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		return a.ID < b.ID
	})
	for i, run := range eligible {
		run.Rank = i + 1
	}
	return eligible
}

// DefaultPresets 内置排序预设，可被服务配置覆盖
func DefaultPresets() map[string]*RankingPreset {
	return map[string]*RankingPreset{
		"balanced": {
			Name: "balanced",
			Weights: map[MetricKey]float64{
				MetricSharpe:      1.0,
				MetricCalmar:      0.5,
				MetricMaxDrawdown: 2.0,
				MetricWinRate:     0.5,
			},
		},
		"risk_adjusted": {
			Name: "risk_adjusted",
			Weights: map[MetricKey]float64{
				MetricSortino:     1.0,
				MetricMaxDrawdown: 4.0,
				MetricCostsRatio:  1.0,
			},
			Constraints: PresetConstraints{RequireCleanData: true},
		},
		"oos_robust": {
			Name: "oos_robust",
			Weights: map[MetricKey]float64{
				MetricSharpe:       1.0,
				MetricProfitFactor: 0.3,
			},
			Constraints: PresetConstraints{RequireOOSPass: true, RequireCleanData: true},
		},
	}
}
