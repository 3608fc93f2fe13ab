package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMetricValueDefaults(t *testing.T) {
	// 全零记录：任何键都不得 panic，缺省一律取 0
	run := &CatalogRun{ID: "r1"}
	keys := []MetricKey{
		MetricSharpe, MetricSortino, MetricCalmar, MetricMaxDrawdown,
		MetricWinRate, MetricProfitFactor, MetricExpectancy, MetricTrades,
		MetricCostsRatio, MetricReturn, MetricKey("nonexistent"),
	}
	for _, key := range keys {
		assert.Zero(t, MetricValue(run, key), string(key))
	}
	assert.Zero(t, MetricValue(nil, MetricSharpe))
}

func TestMetricValueTypedFields(t *testing.T) {
	run := &CatalogRun{
		ID: "r1",
		KPI: RunKPI{
			Sharpe:      1.4,
			MaxDrawdown: -0.12,
			TradeCount:  250,
			NetReturn:   decimal.NewFromFloat(0.31),
		},
	}
	assert.Equal(t, 1.4, MetricValue(run, MetricSharpe))
	// 回撤统一为幅度
	assert.Equal(t, 0.12, MetricValue(run, MetricMaxDrawdown))
	assert.Equal(t, 250.0, MetricValue(run, MetricTrades))
	assert.InDelta(t, 0.31, MetricValue(run, MetricReturn), 1e-12)
}

func TestMetricValueExpectancyPrefersTypedField(t *testing.T) {
	typed := decimal.NewFromFloat(0.8)
	run := &CatalogRun{
		ID: "r1",
		KPI: RunKPI{
			Expectancy: &typed,
			Extra:      map[string]float64{"expectancy": 99.0},
		},
	}
	assert.InDelta(t, 0.8, MetricValue(run, MetricExpectancy), 1e-12)

	// 类型化字段缺失时退回通用键
	run.KPI.Expectancy = nil
	assert.Equal(t, 99.0, MetricValue(run, MetricExpectancy))
}

func TestLowerIsBetter(t *testing.T) {
	assert.True(t, LowerIsBetter(MetricMaxDrawdown))
	assert.True(t, LowerIsBetter(MetricCostsRatio))
	assert.True(t, LowerIsBetter(MetricTurnover))
	assert.False(t, LowerIsBetter(MetricSharpe))
	assert.False(t, LowerIsBetter(MetricReturn))
}
