package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
)

// JobState 跟踪中任务的本地状态机
type JobState string

const (
	JobStateIdle      JobState = "idle"
	JobStateSubmitted JobState = "submitted"
	JobStatePolling   JobState = "polling"
	JobStateCompleted JobState = "completed"
	JobStateFailed    JobState = "failed"
)

// JobStatus 引擎侧任务进度快照
type JobStatus struct {
	JobID   string   `json:"job_id"`
	State   JobState `json:"state"`
	Done    int      `json:"done"`
	Failed  int      `json:"failed"`
	Total   int      `json:"total"`
	Message string   `json:"message,omitempty"`
}

// JobResult 任务终态后的一次性完整结果
type JobResult struct {
	JobID    string                  `json:"job_id"`
	Variants []*domain.VariantResult `json:"variants,omitempty"`
	Run      *domain.CatalogRun      `json:"run,omitempty"`
}

// StatusSource 任务状态数据源（执行引擎）
type StatusSource interface {
	FetchStatus(ctx context.Context, jobID string) (*JobStatus, error)
	FetchResult(ctx context.Context, jobID string) (*JobResult, error)
}

// TrackedJob 当前被跟踪任务的快照
type TrackedJob struct {
	JobID     string     `json:"job_id"`
	State     JobState   `json:"state"`
	Status    *JobStatus `json:"status,omitempty"`
	Result    *JobResult `json:"result,omitempty"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// JobTracker 单任务轮询编排器。同一时刻只跟踪一个任务：
// 新任务会取消并作废前一个任务的轮询循环，过期循环的迟到响应不会写入状态。
type JobTracker struct {
	mu         sync.Mutex
	source     StatusSource
	interval   time.Duration
	logger     *slog.Logger
	generation uint64
	cancel     context.CancelFunc
	current    TrackedJob
}

// NewJobTracker 创建轮询编排器，interval 非正时取 1.5s
func NewJobTracker(source StatusSource, interval time.Duration, logger *slog.Logger) *JobTracker {
	if interval <= 0 {
		interval = 1500 * time.Millisecond
	}
	return &JobTracker{source: source, interval: interval, logger: logger}
}

// Track 开始跟踪新任务，取消此前跟踪中的任务
func (t *JobTracker) Track(jobID string) {
	t.mu.Lock()
	if t.cancel != nil {
		t.cancel()
	}
	t.generation++
	gen := t.generation
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.current = TrackedJob{JobID: jobID, State: JobStateSubmitted, UpdatedAt: time.Now()}
	t.mu.Unlock()

	go t.poll(ctx, gen, jobID)
}

// Stop 停止跟踪并作废未落地的轮询响应
func (t *JobTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.generation++
}

// Snapshot 返回当前跟踪状态副本，未跟踪任何任务时 ok 为 false
func (t *JobTracker) Snapshot() (TrackedJob, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current.JobID == "" {
		return TrackedJob{}, false
	}
	return t.current, true
}

func (t *JobTracker) poll(ctx context.Context, gen uint64, jobID string) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.transition(gen, func(j *TrackedJob) { j.State = JobStatePolling })

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		status, err := t.source.FetchStatus(ctx, jobID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// 单次状态查询失败不终止轮询，下个周期重试
			t.logger.Warn("任务状态查询失败", "job_id", jobID, "error", err)
			continue
		}

		terminal := status.State == JobStateCompleted || status.State == JobStateFailed
		if !t.transition(gen, func(j *TrackedJob) {
			j.Status = status
			if !terminal {
				j.State = JobStatePolling
			}
		}) {
			return
		}
		if !terminal {
			continue
		}

		// 终态后做一次完整结果拉取，失败只留进度快照
		result, err := t.source.FetchResult(ctx, jobID)
		if err != nil && ctx.Err() == nil {
			t.logger.Warn("任务结果拉取失败", "job_id", jobID, "error", err)
		}
		t.transition(gen, func(j *TrackedJob) {
			j.State = status.State
			j.Result = result
		})
		return
	}
}

// transition 在代际匹配时原子更新快照；被新任务取代后返回 false
func (t *JobTracker) transition(gen uint64, fn func(*TrackedJob)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.generation {
		return false
	}
	fn(&t.current)
	t.current.UpdatedAt = time.Now()
	return true
}
