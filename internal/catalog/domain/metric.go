package domain

// MetricKey 指标键，覆盖排序与评级两侧使用的全部枚举值
type MetricKey string

const (
	MetricSharpe       MetricKey = "sharpe"
	MetricSortino      MetricKey = "sortino"
	MetricCalmar       MetricKey = "calmar"
	MetricMaxDrawdown  MetricKey = "max_dd"
	MetricWinRate      MetricKey = "winrate"
	MetricProfitFactor MetricKey = "profit_factor"
	MetricExpectancy   MetricKey = "expectancy"
	MetricTrades       MetricKey = "trades"
	MetricCostsRatio   MetricKey = "costs_ratio"
	MetricReturn       MetricKey = "return"
	MetricCAGR         MetricKey = "cagr"
	MetricTurnover     MetricKey = "turnover"
	MetricRobustness   MetricKey = "robustness"
)

// numericMetricKeys 可用于排序的数值指标
var numericMetricKeys = map[MetricKey]bool{
	MetricSharpe:       true,
	MetricSortino:      true,
	MetricCalmar:       true,
	MetricMaxDrawdown:  true,
	MetricWinRate:      true,
	MetricProfitFactor: true,
	MetricExpectancy:   true,
	MetricTrades:       true,
	MetricCostsRatio:   true,
	MetricReturn:       true,
}

// IsNumericMetric 判断键是否为可排序的数值指标
func IsNumericMetric(key MetricKey) bool {
	return numericMetricKeys[key]
}

// LowerIsBetter 指标极性：回撤、成本比、换手率数值越小越好
func LowerIsBetter(key MetricKey) bool {
	switch key {
	case MetricMaxDrawdown, MetricCostsRatio, MetricTurnover:
		return true
	}
	return false
}

// MetricValue 从异构结果记录中提取归一化数值。
// 缺省字段取 0；expectancy 优先取类型化字段，再退回 Extra 中的通用键。
// max_dd 统一返回回撤幅度（绝对值），便于“越小越好”的排序语义。
func MetricValue(run *CatalogRun, key MetricKey) float64 {
	if run == nil {
		return 0
	}
	kpi := run.KPI
	switch key {
	case MetricSharpe:
		return kpi.Sharpe
	case MetricSortino:
		return kpi.Sortino
	case MetricCalmar:
		return kpi.Calmar
	case MetricMaxDrawdown:
		if kpi.MaxDrawdown < 0 {
			return -kpi.MaxDrawdown
		}
		return kpi.MaxDrawdown
	case MetricWinRate:
		return kpi.WinRate
	case MetricProfitFactor:
		return kpi.ProfitFactor
	case MetricTrades:
		return float64(kpi.TradeCount)
	case MetricCostsRatio:
		return kpi.CostsRatio
	case MetricReturn:
		return kpi.NetReturn.InexactFloat64()
	case MetricExpectancy:
		if kpi.Expectancy != nil {
			return kpi.Expectancy.InexactFloat64()
		}
		return kpi.Extra[string(MetricExpectancy)]
	default:
		return kpi.Extra[string(key)]
	}
}
