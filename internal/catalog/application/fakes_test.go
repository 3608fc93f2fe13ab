package application

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
)

// 内存仓储与协作方替身，供应用层测试使用。

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type memRunRepo struct {
	mu    sync.Mutex
	runs  map[string]*domain.CatalogRun
	calls int
}

func newMemRunRepo(runs ...*domain.CatalogRun) *memRunRepo {
	r := &memRunRepo{runs: make(map[string]*domain.CatalogRun)}
	for _, run := range runs {
		r.runs[run.ID] = run
	}
	return r
}

func (r *memRunRepo) Save(_ context.Context, run *domain.CatalogRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.runs[run.ID] = run
	return nil
}

func (r *memRunRepo) GetByID(_ context.Context, id string) (*domain.CatalogRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.runs[id], nil
}

func (r *memRunRepo) GetByIDs(_ context.Context, ids []string) ([]*domain.CatalogRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	var out []*domain.CatalogRun
	for _, id := range ids {
		if run, ok := r.runs[id]; ok {
			out = append(out, run)
		}
	}
	return out, nil
}

func (r *memRunRepo) List(_ context.Context, includeArchived bool) ([]*domain.CatalogRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	var out []*domain.CatalogRun
	for _, run := range r.runs {
		if !includeArchived && run.Status == domain.RunStatusArchived {
			continue
		}
		out = append(out, run)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memRunRepo) UpdateStatus(_ context.Context, id string, status domain.RunStatus, kpi *domain.RunKPI, warning bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if run, ok := r.runs[id]; ok {
		run.Status = status
		run.DataQualityWarning = warning
		if kpi != nil {
			run.KPI = *kpi
		}
	}
	return nil
}

func (r *memRunRepo) SetAlias(_ context.Context, id, alias string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if run, ok := r.runs[id]; ok {
		run.Alias = alias
	}
	return nil
}

func (r *memRunRepo) SetPinned(_ context.Context, id string, pinned bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if run, ok := r.runs[id]; ok {
		run.Pinned = pinned
	}
	return nil
}

func (r *memRunRepo) BulkUpdateStatus(_ context.Context, ids []string, status domain.RunStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	var affected int64
	for _, id := range ids {
		if run, ok := r.runs[id]; ok {
			run.Status = status
			affected++
		}
	}
	return affected, nil
}

func (r *memRunRepo) BulkDelete(_ context.Context, ids []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	var affected int64
	for _, id := range ids {
		if _, ok := r.runs[id]; ok {
			delete(r.runs, id)
			affected++
		}
	}
	return affected, nil
}

func (r *memRunRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type memBatchRepo struct {
	mu      sync.Mutex
	batches map[string]*domain.ResearchBatch
	calls   int
}

func newMemBatchRepo(batches ...*domain.ResearchBatch) *memBatchRepo {
	r := &memBatchRepo{batches: make(map[string]*domain.ResearchBatch)}
	for _, b := range batches {
		r.batches[b.ID] = b
	}
	return r
}

func (r *memBatchRepo) Save(_ context.Context, batch *domain.ResearchBatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.batches[batch.ID] = batch
	return nil
}

func (r *memBatchRepo) GetByID(_ context.Context, id string) (*domain.ResearchBatch, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.batches[id], nil
}

func (r *memBatchRepo) List(_ context.Context, limit, offset int) ([]*domain.ResearchBatch, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	var all []*domain.ResearchBatch
	for _, b := range r.batches {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (r *memBatchRepo) SaveShortlist(_ context.Context, batchID string, entries []domain.ShortlistEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if b, ok := r.batches[batchID]; ok {
		b.Shortlist = entries
	}
	return nil
}

func (r *memBatchRepo) UpdateProgress(_ context.Context, id string, status domain.BatchStatus, done, failed, total int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if b, ok := r.batches[id]; ok {
		b.Status = status
		b.Done = done
		b.Failed = failed
		b.Total = total
	}
	return nil
}

func (r *memBatchRepo) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type memVariantRepo struct {
	mu       sync.Mutex
	variants map[string]*domain.VariantResult
}

func newMemVariantRepo(variants ...*domain.VariantResult) *memVariantRepo {
	r := &memVariantRepo{variants: make(map[string]*domain.VariantResult)}
	for _, v := range variants {
		r.variants[v.BatchID+"/"+v.VariantID] = v
	}
	return r
}

func (r *memVariantRepo) Save(_ context.Context, v *domain.VariantResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.variants[v.BatchID+"/"+v.VariantID] = v
	return nil
}

func (r *memVariantRepo) GetByIDs(_ context.Context, batchID string, variantIDs []string) ([]*domain.VariantResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.VariantResult
	for _, id := range variantIDs {
		if v, ok := r.variants[batchID+"/"+id]; ok {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *memVariantRepo) ListByBatch(_ context.Context, batchID string, passingOnly bool, offset, limit int) ([]*domain.VariantResult, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*domain.VariantResult
	for _, v := range r.variants {
		if v.BatchID != batchID {
			continue
		}
		if passingOnly && !v.Gate.Pass {
			continue
		}
		all = append(all, v)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Score != all[j].Score {
			return all[i].Score > all[j].Score
		}
		return all[i].VariantID < all[j].VariantID
	})
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

type memSelectionStore struct {
	mu     sync.Mutex
	scopes map[string][]string
}

func newMemSelectionStore() *memSelectionStore {
	return &memSelectionStore{scopes: make(map[string][]string)}
}

func (s *memSelectionStore) Get(_ context.Context, scope string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.scopes[scope]...), nil
}

func (s *memSelectionStore) Put(_ context.Context, scope string, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scopes[scope] = append([]string(nil), ids...)
	return nil
}

func (s *memSelectionStore) Delete(_ context.Context, scope string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scopes, scope)
	return nil
}

type memBatchCache struct {
	mu      sync.Mutex
	batches map[string]*domain.ResearchBatch
	puts    int
	invals  int
}

func newMemBatchCache() *memBatchCache {
	return &memBatchCache{batches: make(map[string]*domain.ResearchBatch)}
}

func (c *memBatchCache) GetBatch(_ context.Context, id string) (*domain.ResearchBatch, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.batches[id], nil
}

func (c *memBatchCache) PutBatch(_ context.Context, batch *domain.ResearchBatch) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.puts++
	c.batches[batch.ID] = batch
	return nil
}

func (c *memBatchCache) Invalidate(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invals++
	delete(c.batches, id)
	return nil
}

type memPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *memPublisher) Publish(_ context.Context, topic, _ string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

func (p *memPublisher) PublishInTx(ctx context.Context, _ any, topic, key string, event any) error {
	return p.Publish(ctx, topic, key, event)
}

func (p *memPublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.topics...)
}
