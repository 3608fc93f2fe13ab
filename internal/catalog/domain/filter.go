package domain

import "strings"

// FilterCriteria 目录筛选条件。零值字段视为未启用，互相独立按 AND 组合。
type FilterCriteria struct {
	Query       string    `json:"query" form:"q"`
	Kind        RunKind   `json:"kind" form:"kind"`
	Status      RunStatus `json:"status" form:"status"`
	StrategyID  string    `json:"strategy_id" form:"strategy_id"`
	Symbol      string    `json:"symbol" form:"symbol"`
	Timeframe   string    `json:"timeframe" form:"timeframe"`
	MinTrades   int       `json:"min_trades" form:"min_trades"`
	MaxDrawdown float64   `json:"max_drawdown" form:"max_drawdown"` // 回撤幅度上限，比例
	MinSharpe   float64   `json:"min_sharpe" form:"min_sharpe"`
}

// IsZero 判断是否为空条件
func (c FilterCriteria) IsZero() bool {
	return c == FilterCriteria{}
}

// FilterRuns 对原始集合应用筛选，返回子集。
// 自由文本在 id/别名/策略/标签/提交哈希/数据集指纹上做大小写不敏感的 OR 匹配；
// 结构化条件按 AND 叠加。纯函数且幂等。
func FilterRuns(runs []*CatalogRun, c FilterCriteria) []*CatalogRun {
	if c.IsZero() {
		return runs
	}

	query := strings.ToLower(strings.TrimSpace(c.Query))
	out := make([]*CatalogRun, 0, len(runs))
	for _, run := range runs {
		if run == nil {
			continue
		}
		if query != "" && !matchesQuery(run, query) {
			continue
		}
		if c.Kind != "" && run.Kind != c.Kind {
			continue
		}
		if c.Status != "" && run.Status != c.Status {
			continue
		}
		if c.StrategyID != "" && run.StrategyID != c.StrategyID {
			continue
		}
		if c.Symbol != "" && run.Symbol != c.Symbol {
			continue
		}
		if c.Timeframe != "" && run.Timeframe != c.Timeframe {
			continue
		}
		if c.MinTrades > 0 && run.KPI.TradeCount < c.MinTrades {
			continue
		}
		if c.MaxDrawdown > 0 && MetricValue(run, MetricMaxDrawdown) > c.MaxDrawdown {
			continue
		}
		if c.MinSharpe != 0 && run.KPI.Sharpe < c.MinSharpe {
			continue
		}
		out = append(out, run)
	}
	return out
}

func matchesQuery(run *CatalogRun, query string) bool {
	fields := []string{
		run.ID,
		run.Alias,
		run.StrategyID,
		run.StrategyName,
		run.CommitHash,
		run.DatasetFingerprint,
	}
	for _, f := range fields {
		if f != "" && strings.Contains(strings.ToLower(f), query) {
			return true
		}
	}
	for _, tag := range run.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}
