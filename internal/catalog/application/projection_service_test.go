package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
)

func TestApplyRunStatusChanged(t *testing.T) {
	repo := newMemRunRepo(&domain.CatalogRun{ID: "r1", Status: domain.RunStatusRunning})
	svc := NewProjectionService(repo, newMemBatchRepo(), newMemBatchCache(), testLogger())

	kpi := &domain.RunKPI{Sharpe: 1.4, TradeCount: 88}
	err := svc.ApplyRunStatusChanged(context.Background(), &domain.RunStatusChangedEvent{
		RunID:     "r1",
		Status:    domain.RunStatusCompletedWW,
		KPI:       kpi,
		Warning:   true,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	run, _ := repo.GetByID(context.Background(), "r1")
	assert.Equal(t, domain.RunStatusCompletedWW, run.Status)
	assert.True(t, run.DataQualityWarning)
	assert.Equal(t, 1.4, run.KPI.Sharpe)
}

func TestApplyBatchProgressInvalidatesCache(t *testing.T) {
	batchRepo := newMemBatchRepo(&domain.ResearchBatch{ID: "b1", Status: domain.BatchStatusRunning})
	cache := newMemBatchCache()
	require.NoError(t, cache.PutBatch(context.Background(), &domain.ResearchBatch{ID: "b1"}))

	svc := NewProjectionService(newMemRunRepo(), batchRepo, cache, testLogger())

	err := svc.ApplyBatchProgress(context.Background(), &domain.BatchProgressEvent{
		BatchID:   "b1",
		Status:    domain.BatchStatusRunning,
		Done:      7,
		Failed:    1,
		Total:     20,
		Timestamp: time.Now(),
	})
	require.NoError(t, err)

	batch, _ := batchRepo.GetByID(context.Background(), "b1")
	assert.Equal(t, 7, batch.Done)
	assert.Equal(t, 1, batch.Failed)
	assert.Equal(t, 1, cache.invals)

	cached, _ := cache.GetBatch(context.Background(), "b1")
	assert.Nil(t, cached)
}
