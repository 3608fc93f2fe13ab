package domain

import "math"

// Grade 定性评级
type Grade string

const (
	GradeNone       Grade = ""
	GradeVeryPoor   Grade = "very_poor"
	GradePoor       Grade = "poor"
	GradeAcceptable Grade = "acceptable"
	GradeGood       Grade = "good"
	GradeExcellent  Grade = "excellent"
)

// gradeLadder 单个指标的评级阶梯。
// steps 依次为 poor / acceptable / good / excellent 的阈值；
// higherBetter 为 true 时数值需严格大于阈值才进入更高档，
// 为 false 时需严格小于阈值，因此边界值总是落入更差的一档。
type gradeLadder struct {
	higherBetter bool
	steps        [4]float64
}

var gradeLadders = map[MetricKey]gradeLadder{
	MetricCAGR:        {higherBetter: true, steps: [4]float64{0, 10, 20, 35}},     // 百分比
	MetricMaxDrawdown: {higherBetter: false, steps: [4]float64{35, 20, 10, 5}},    // 回撤幅度百分比
	MetricSharpe:      {higherBetter: true, steps: [4]float64{0.5, 1.2, 1.8, 2.5}},
	MetricSortino:     {higherBetter: true, steps: [4]float64{0.75, 1.5, 2.5, 3.5}},
	MetricCalmar:      {higherBetter: true, steps: [4]float64{0.5, 1.0, 2.0, 3.0}},
	MetricWinRate:     {higherBetter: true, steps: [4]float64{35, 45, 55, 65}},    // 百分比
	MetricTurnover:    {higherBetter: false, steps: [4]float64{1000, 400, 150, 50}},
	MetricRobustness:  {higherBetter: true, steps: [4]float64{0.3, 0.5, 0.7, 0.85}},
}

// GradeMetric 将单个原始指标值映射为定性评级。
// NaN 或不支持的键返回 GradeNone，纯函数，永不 panic。
func GradeMetric(key MetricKey, value float64) Grade {
	if math.IsNaN(value) {
		return GradeNone
	}
	ladder, ok := gradeLadders[key]
	if !ok {
		return GradeNone
	}
	v := normalizeForGrade(key, value)

	grades := [4]Grade{GradePoor, GradeAcceptable, GradeGood, GradeExcellent}
	result := GradeVeryPoor
	for i, step := range ladder.steps {
		if ladder.higherBetter {
			if v > step {
				result = grades[i]
			}
		} else {
			if v < step {
				result = grades[i]
			}
		}
	}
	return result
}

// normalizeForGrade 评级前的口径归一：
// max_dd 取绝对值并换算为百分比；cagr、winrate 换算为百分比；其余不变。
func normalizeForGrade(key MetricKey, value float64) float64 {
	switch key {
	case MetricMaxDrawdown:
		return math.Abs(value) * 100
	case MetricCAGR, MetricWinRate:
		return value * 100
	default:
		return value
	}
}

// RunGrades 计算一条运行记录在各评级指标上的档位，缺失指标返回 GradeNone
func RunGrades(run *CatalogRun) map[MetricKey]Grade {
	if run == nil {
		return nil
	}
	out := make(map[MetricKey]Grade, len(gradeLadders))
	for key := range gradeLadders {
		out[key] = GradeMetric(key, gradeInput(run, key))
	}
	return out
}

// gradeInput 评级取值：仅存在于 Extra 包中的指标缺失时返回 NaN 以映射为无评级
func gradeInput(run *CatalogRun, key MetricKey) float64 {
	switch key {
	case MetricCAGR, MetricTurnover, MetricRobustness:
		v, ok := run.KPI.Extra[string(key)]
		if !ok {
			return math.NaN()
		}
		return v
	default:
		return MetricValue(run, key)
	}
}
