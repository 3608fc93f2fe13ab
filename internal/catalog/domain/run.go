// Package domain 回测目录控制台的核心领域模型。
// 变更说明：定义回测运行记录、研究批次、变体结果等实体，驱动目录的排序、筛选与对比。
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RunKind 运行类型
type RunKind string

const (
	RunKindSingle     RunKind = "SINGLE"      // 单次回测
	RunKindBatchChild RunKind = "BATCH_CHILD" // 批次子任务
)

// RunStatus 运行生命周期状态
type RunStatus string

const (
	RunStatusQueued       RunStatus = "QUEUED"
	RunStatusPreparing    RunStatus = "PREPARING"
	RunStatusRunning      RunStatus = "RUNNING"
	RunStatusCompleted    RunStatus = "COMPLETED"
	RunStatusCompletedWW  RunStatus = "COMPLETED_WITH_WARNINGS"
	RunStatusFailed       RunStatus = "FAILED"
	RunStatusCanceled     RunStatus = "CANCELED"
	RunStatusArchived     RunStatus = "ARCHIVED"
)

// IsTerminal 判断是否为终态
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusCompletedWW, RunStatusFailed, RunStatusCanceled, RunStatusArchived:
		return true
	}
	return false
}

// RunKPI 回测指标包。来自执行引擎的结果记录字段均可能缺省，缺省数值按 0 处理。
type RunKPI struct {
	Sharpe       float64         `json:"sharpe"`
	Sortino      float64         `json:"sortino"`
	Calmar       float64         `json:"calmar"`
	MaxDrawdown  float64         `json:"max_drawdown"` // 比例，可能带符号
	WinRate      float64         `json:"win_rate"`     // 比例 0-1
	ProfitFactor float64         `json:"profit_factor"`
	TradeCount   int             `json:"trade_count"`
	CostsRatio   float64         `json:"costs_ratio"`
	NetReturn    decimal.Decimal `json:"net_return"`
	// Expectancy 类型化的期望收益字段，优先于 Extra 中的通用键
	Expectancy *decimal.Decimal `json:"expectancy,omitempty"`
	// Extra 引擎侧未建模的通用指标键
	Extra map[string]float64 `json:"extra,omitempty"`
}

// CatalogRun 一次持久化的回测执行记录
type CatalogRun struct {
	ID                 string    `json:"id"`
	Kind               RunKind   `json:"kind"`
	Status             RunStatus `json:"status"`
	CreatedAt          time.Time `json:"created_at"`
	StrategyID         string    `json:"strategy_id"`
	StrategyName       string    `json:"strategy_name"`
	Symbol             string    `json:"symbol"`
	Timeframe          string    `json:"timeframe"`
	Market             string    `json:"market"`
	DatasetFingerprint string    `json:"dataset_fingerprint"` // 输入数据+成本模型+代码版本的不透明哈希
	CommitHash         string    `json:"commit_hash"`
	Tags               []string  `json:"tags"`
	KPI                RunKPI    `json:"kpi"`
	DataQualityWarning bool      `json:"data_quality_warning"`
	OOSPass            bool      `json:"oos_pass"`
	Alias              string    `json:"alias,omitempty"`
	Pinned             bool      `json:"pinned"`
	BatchID            string    `json:"batch_id,omitempty"`
	CompositeScore     float64   `json:"composite_score,omitempty"`
	Rank               int       `json:"rank,omitempty"`
}

// BatchStatus 研究批次状态
type BatchStatus string

const (
	BatchStatusRunning   BatchStatus = "RUNNING"
	BatchStatusCompleted BatchStatus = "COMPLETED"
	BatchStatusFailed    BatchStatus = "FAILED"
	BatchStatusCanceled  BatchStatus = "CANCELED"
)

// ShortlistEntry 批次缓存的入围快照条目
type ShortlistEntry struct {
	VariantID  string  `json:"variant_id"`
	StrategyID string  `json:"strategy_id"`
	Score      float64 `json:"score"`
	RunID      string  `json:"run_id,omitempty"`
}

// ResearchBatch 一次多变体研究请求的容器。
// Done 与 Failed 计数相互独立，不保证 Done >= Failed。
type ResearchBatch struct {
	ID          string           `json:"id"`
	Status      BatchStatus      `json:"status"`
	Done        int              `json:"done"`
	Failed      int              `json:"failed"`
	Total       int              `json:"total"`
	CreatedAt   time.Time        `json:"created_at"`
	Objective   string           `json:"objective"`
	Shortlist   []ShortlistEntry `json:"shortlist,omitempty"` // 仅由显式保存动作覆盖
	ChildRunIDs []string         `json:"child_run_ids"`
}

// GateResult 变体的门槛评估结果
type GateResult struct {
	Pass        bool     `json:"pass"`
	FailReasons []string `json:"fail_reasons,omitempty"`
}

// RegimeMetrics 单一行情状态下的指标拆分
type RegimeMetrics struct {
	Sharpe      float64 `json:"sharpe"`
	Return      float64 `json:"return"`
	MaxDrawdown float64 `json:"max_drawdown"`
	TradeCount  int     `json:"trade_count"`
}

// VariantResult 批次内单个候选变体的结果行
type VariantResult struct {
	VariantID  string                   `json:"variant_id"`
	BatchID    string                   `json:"batch_id"`
	StrategyID string                   `json:"strategy_id"`
	Score      float64                  `json:"score"`
	OOS        map[string]float64       `json:"oos_summary,omitempty"` // 样本外汇总指标
	Regimes    map[string]RegimeMetrics `json:"regimes,omitempty"`
	Gate       GateResult               `json:"gate"`
	RunID      string                   `json:"run_id,omitempty"` // 关联的目录运行
	Rank       int                      `json:"rank,omitempty"`
}
