package mysql

import (
	"encoding/json"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
	"gorm.io/gorm"
)

// RunModel MySQL 回测运行表映射
type RunModel struct {
	gorm.Model
	RunID              string           `gorm:"column:run_id;type:varchar(64);uniqueIndex;not null;comment:运行ID"`
	Kind               string           `gorm:"column:kind;type:varchar(20);not null;comment:运行类型"`
	Status             string           `gorm:"column:status;type:varchar(32);index;not null;comment:状态"`
	StrategyID         string           `gorm:"column:strategy_id;type:varchar(64);index;not null;comment:策略ID"`
	StrategyName       string           `gorm:"column:strategy_name;type:varchar(128);comment:策略名"`
	Symbol             string           `gorm:"column:symbol;type:varchar(20);index;comment:标的"`
	Timeframe          string           `gorm:"column:timeframe;type:varchar(10);comment:周期"`
	Market             string           `gorm:"column:market;type:varchar(20);comment:市场"`
	DatasetFingerprint string           `gorm:"column:dataset_fingerprint;type:varchar(128);comment:数据集指纹"`
	CommitHash         string           `gorm:"column:commit_hash;type:varchar(64);comment:代码版本"`
	Tags               string           `gorm:"column:tags;type:json;comment:标签"`
	Sharpe             float64          `gorm:"column:sharpe;comment:夏普比率"`
	Sortino            float64          `gorm:"column:sortino;comment:索提诺比率"`
	Calmar             float64          `gorm:"column:calmar;comment:卡玛比率"`
	MaxDrawdown        float64          `gorm:"column:max_drawdown;comment:最大回撤"`
	WinRate            float64          `gorm:"column:win_rate;comment:胜率"`
	ProfitFactor       float64          `gorm:"column:profit_factor;comment:盈亏比"`
	TradeCount         int              `gorm:"column:trade_count;comment:交易笔数"`
	CostsRatio         float64          `gorm:"column:costs_ratio;comment:成本占比"`
	NetReturn          decimal.Decimal  `gorm:"column:net_return;type:decimal(32,18);default:0;comment:净收益"`
	Expectancy         *decimal.Decimal `gorm:"column:expectancy;type:decimal(32,18);comment:期望收益"`
	ExtraMetrics       string           `gorm:"column:extra_metrics;type:json;comment:扩展指标"`
	DataQualityWarning bool             `gorm:"column:data_quality_warning;comment:数据质量告警"`
	OOSPass            bool             `gorm:"column:oos_pass;comment:样本外达标"`
	Alias              string           `gorm:"column:alias;type:varchar(64);comment:别名"`
	Pinned             bool             `gorm:"column:pinned;comment:置顶"`
	BatchID            string           `gorm:"column:batch_id;type:varchar(64);index;comment:所属批次"`
}

func (RunModel) TableName() string {
	return "console_runs"
}

// BatchModel MySQL 研究批次表映射
type BatchModel struct {
	gorm.Model
	BatchID     string `gorm:"column:batch_id;type:varchar(64);uniqueIndex;not null;comment:批次ID"`
	Status      string `gorm:"column:status;type:varchar(20);index;not null;comment:状态"`
	Done        int    `gorm:"column:done;comment:完成计数"`
	Failed      int    `gorm:"column:failed;comment:失败计数"`
	Total       int    `gorm:"column:total;comment:总数"`
	Objective   string `gorm:"column:objective;type:varchar(64);comment:优化目标"`
	Shortlist   string `gorm:"column:shortlist;type:json;comment:入围快照"`
	ChildRunIDs string `gorm:"column:child_run_ids;type:json;comment:子运行ID"`
}

func (BatchModel) TableName() string {
	return "console_batches"
}

// VariantModel MySQL 批次变体结果表映射
type VariantModel struct {
	gorm.Model
	VariantID   string  `gorm:"column:variant_id;type:varchar(64);uniqueIndex:uk_batch_variant;not null;comment:变体ID"`
	BatchID     string  `gorm:"column:batch_id;type:varchar(64);uniqueIndex:uk_batch_variant;index;not null;comment:批次ID"`
	StrategyID  string  `gorm:"column:strategy_id;type:varchar(64);comment:策略ID"`
	Score       float64 `gorm:"column:score;index;comment:综合得分"`
	OOS         string  `gorm:"column:oos_summary;type:json;comment:样本外汇总"`
	Regimes     string  `gorm:"column:regimes;type:json;comment:分状态指标"`
	GatePass    bool    `gorm:"column:gate_pass;index;comment:门槛通过"`
	GateReasons string  `gorm:"column:gate_reasons;type:json;comment:未通过原因"`
	RunID       string  `gorm:"column:run_id;type:varchar(64);comment:关联运行"`
	Rank        int     `gorm:"column:rank_no;comment:批次内排名"`
}

func (VariantModel) TableName() string {
	return "console_batch_variants"
}

// marshalJSON 序列化 JSON 列，nil 与失败均退化为空串
func marshalJSON(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

// unmarshalJSON 反序列化 JSON 列，损坏的数据退化为零值
func unmarshalJSON(raw string, v any) {
	if raw == "" {
		return
	}
	_ = json.Unmarshal([]byte(raw), v)
}

func toRunModel(run *domain.CatalogRun) *RunModel {
	if run == nil {
		return nil
	}
	m := &RunModel{
		RunID:              run.ID,
		Kind:               string(run.Kind),
		Status:             string(run.Status),
		StrategyID:         run.StrategyID,
		StrategyName:       run.StrategyName,
		Symbol:             run.Symbol,
		Timeframe:          run.Timeframe,
		Market:             run.Market,
		DatasetFingerprint: run.DatasetFingerprint,
		CommitHash:         run.CommitHash,
		Tags:               marshalJSON(run.Tags),
		Sharpe:             run.KPI.Sharpe,
		Sortino:            run.KPI.Sortino,
		Calmar:             run.KPI.Calmar,
		MaxDrawdown:        run.KPI.MaxDrawdown,
		WinRate:            run.KPI.WinRate,
		ProfitFactor:       run.KPI.ProfitFactor,
		TradeCount:         run.KPI.TradeCount,
		CostsRatio:         run.KPI.CostsRatio,
		NetReturn:          run.KPI.NetReturn,
		Expectancy:         run.KPI.Expectancy,
		ExtraMetrics:       marshalJSON(run.KPI.Extra),
		DataQualityWarning: run.DataQualityWarning,
		OOSPass:            run.OOSPass,
		Alias:              run.Alias,
		Pinned:             run.Pinned,
		BatchID:            run.BatchID,
	}
	m.CreatedAt = run.CreatedAt
	return m
}

func toRun(m *RunModel) *domain.CatalogRun {
	if m == nil {
		return nil
	}
	run := &domain.CatalogRun{
		ID:                 m.RunID,
		Kind:               domain.RunKind(m.Kind),
		Status:             domain.RunStatus(m.Status),
		CreatedAt:          m.CreatedAt,
		StrategyID:         m.StrategyID,
		StrategyName:       m.StrategyName,
		Symbol:             m.Symbol,
		Timeframe:          m.Timeframe,
		Market:             m.Market,
		DatasetFingerprint: m.DatasetFingerprint,
		CommitHash:         m.CommitHash,
		KPI: domain.RunKPI{
			Sharpe:       m.Sharpe,
			Sortino:      m.Sortino,
			Calmar:       m.Calmar,
			MaxDrawdown:  m.MaxDrawdown,
			WinRate:      m.WinRate,
			ProfitFactor: m.ProfitFactor,
			TradeCount:   m.TradeCount,
			CostsRatio:   m.CostsRatio,
			NetReturn:    m.NetReturn,
			Expectancy:   m.Expectancy,
		},
		DataQualityWarning: m.DataQualityWarning,
		OOSPass:            m.OOSPass,
		Alias:              m.Alias,
		Pinned:             m.Pinned,
		BatchID:            m.BatchID,
	}
	unmarshalJSON(m.Tags, &run.Tags)
	unmarshalJSON(m.ExtraMetrics, &run.KPI.Extra)
	return run
}

func toBatchModel(b *domain.ResearchBatch) *BatchModel {
	if b == nil {
		return nil
	}
	m := &BatchModel{
		BatchID:     b.ID,
		Status:      string(b.Status),
		Done:        b.Done,
		Failed:      b.Failed,
		Total:       b.Total,
		Objective:   b.Objective,
		Shortlist:   marshalJSON(b.Shortlist),
		ChildRunIDs: marshalJSON(b.ChildRunIDs),
	}
	m.CreatedAt = b.CreatedAt
	return m
}

func toBatch(m *BatchModel) *domain.ResearchBatch {
	if m == nil {
		return nil
	}
	b := &domain.ResearchBatch{
		ID:        m.BatchID,
		Status:    domain.BatchStatus(m.Status),
		Done:      m.Done,
		Failed:    m.Failed,
		Total:     m.Total,
		CreatedAt: m.CreatedAt,
		Objective: m.Objective,
	}
	unmarshalJSON(m.Shortlist, &b.Shortlist)
	unmarshalJSON(m.ChildRunIDs, &b.ChildRunIDs)
	return b
}

func toVariantModel(v *domain.VariantResult) *VariantModel {
	if v == nil {
		return nil
	}
	return &VariantModel{
		VariantID:   v.VariantID,
		BatchID:     v.BatchID,
		StrategyID:  v.StrategyID,
		Score:       v.Score,
		OOS:         marshalJSON(v.OOS),
		Regimes:     marshalJSON(v.Regimes),
		GatePass:    v.Gate.Pass,
		GateReasons: marshalJSON(v.Gate.FailReasons),
		RunID:       v.RunID,
		Rank:        v.Rank,
	}
}

func toVariant(m *VariantModel) *domain.VariantResult {
	if m == nil {
		return nil
	}
	v := &domain.VariantResult{
		VariantID:  m.VariantID,
		BatchID:    m.BatchID,
		StrategyID: m.StrategyID,
		Score:      m.Score,
		Gate:       domain.GateResult{Pass: m.GatePass},
		RunID:      m.RunID,
		Rank:       m.Rank,
	}
	unmarshalJSON(m.OOS, &v.OOS)
	unmarshalJSON(m.Regimes, &v.Regimes)
	unmarshalJSON(m.GateReasons, &v.Gate.FailReasons)
	return v
}
