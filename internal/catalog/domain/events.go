// Package domain 回测目录领域事件
package domain

import "time"

// 事件主题
const (
	RunStatusChangedEventType = "console.run_status_changed"
	BatchProgressEventType    = "console.batch_progress"
	ShortlistSavedEventType   = "console.shortlist_saved"
	BulkActionEventType       = "console.bulk_action"
)

// DomainEvent 领域事件
type DomainEvent interface {
	EventName() string
	OccurredAt() time.Time
}

// RunStatusChangedEvent 运行状态变更事件，由执行引擎发出
type RunStatusChangedEvent struct {
	RunID     string    `json:"run_id"`
	Status    RunStatus `json:"status"`
	KPI       *RunKPI   `json:"kpi,omitempty"`
	Warning   bool      `json:"data_quality_warning,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *RunStatusChangedEvent) EventName() string     { return RunStatusChangedEventType }
func (e *RunStatusChangedEvent) OccurredAt() time.Time { return e.Timestamp }

// BatchProgressEvent 批次进度事件。Done 与 Failed 独立计数。
type BatchProgressEvent struct {
	BatchID   string      `json:"batch_id"`
	Status    BatchStatus `json:"status"`
	Done      int         `json:"done"`
	Failed    int         `json:"failed"`
	Total     int         `json:"total"`
	Timestamp time.Time   `json:"timestamp"`
}

func (e *BatchProgressEvent) EventName() string     { return BatchProgressEventType }
func (e *BatchProgressEvent) OccurredAt() time.Time { return e.Timestamp }

// ShortlistSavedEvent 入围快照保存事件
type ShortlistSavedEvent struct {
	BatchID   string    `json:"batch_id"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *ShortlistSavedEvent) EventName() string     { return ShortlistSavedEventType }
func (e *ShortlistSavedEvent) OccurredAt() time.Time { return e.Timestamp }

// BulkActionEvent 批量操作事件
type BulkActionEvent struct {
	Action    string    `json:"action"`
	RunIDs    []string  `json:"run_ids"`
	Affected  int64     `json:"affected"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *BulkActionEvent) EventName() string     { return BulkActionEventType }
func (e *BulkActionEvent) OccurredAt() time.Time { return e.Timestamp }
