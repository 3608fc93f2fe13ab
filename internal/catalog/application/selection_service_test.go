package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
)

func selectionFixture() (*SelectionService, *memSelectionStore) {
	store := newMemSelectionStore()
	repo := newMemRunRepo(
		&domain.CatalogRun{ID: "r1", Status: domain.RunStatusCompleted, DatasetFingerprint: "H1", KPI: domain.RunKPI{Sharpe: 2.0}},
		&domain.CatalogRun{ID: "r2", Status: domain.RunStatusCompleted, DatasetFingerprint: "H1", KPI: domain.RunKPI{Sharpe: 1.0}},
		&domain.CatalogRun{ID: "r3", Status: domain.RunStatusCompleted, DatasetFingerprint: "H2", KPI: domain.RunKPI{Sharpe: 3.0}},
	)
	return NewSelectionService(store, repo, testLogger()), store
}

func TestSelectionToggleRoundTrip(t *testing.T) {
	svc, _ := selectionFixture()
	ctx := context.Background()

	selected, count, err := svc.Toggle(ctx, "shortlist", "r1")
	require.NoError(t, err)
	assert.True(t, selected)
	assert.Equal(t, 1, count)

	selected, count, err = svc.Toggle(ctx, "shortlist", "r1")
	require.NoError(t, err)
	assert.False(t, selected)
	assert.Equal(t, 0, count)
}

func TestSelectionScopesAreIsolated(t *testing.T) {
	svc, _ := selectionFixture()
	ctx := context.Background()

	_, _, err := svc.Toggle(ctx, "shortlist", "r1")
	require.NoError(t, err)

	ids, err := svc.Get(ctx, CompareScope)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCompareScopeEnforcesLimit(t *testing.T) {
	svc, store := selectionFixture()
	ctx := context.Background()

	full := make([]string, CompareLimit)
	for i := range full {
		full[i] = string(rune('a' + i))
	}
	require.NoError(t, store.Put(ctx, CompareScope, full))

	_, _, err := svc.Toggle(ctx, CompareScope, "overflow")
	assert.ErrorIs(t, err, domain.ErrSelectionFull)

	ids, err := svc.Get(ctx, CompareScope)
	require.NoError(t, err)
	assert.Len(t, ids, CompareLimit)
}

func TestSelectTopNReplacesSelection(t *testing.T) {
	svc, _ := selectionFixture()
	ctx := context.Background()

	_, _, err := svc.Toggle(ctx, "shortlist", "r2")
	require.NoError(t, err)

	ids, err := svc.SelectTopN(ctx, "shortlist", domain.MetricSharpe, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r1"}, ids)
}

func TestSelectTopNRejectsNonNumericMetric(t *testing.T) {
	svc, _ := selectionFixture()

	_, err := svc.SelectTopN(context.Background(), "shortlist", domain.MetricKey("strategy"), 3)
	assert.ErrorIs(t, err, ErrInvalidMetric)
}

func TestComparisonPrunesStaleIDs(t *testing.T) {
	svc, store := selectionFixture()
	ctx := context.Background()

	// r9 已被删除，仍残留在会话选集中
	require.NoError(t, store.Put(ctx, CompareScope, []string{"r1", "r9", "r3"}))

	preview, err := svc.Comparison(ctx, CompareScope)
	require.NoError(t, err)
	require.Len(t, preview.Items, 2)
	assert.Equal(t, "r1", preview.Items[0].ID)
	assert.Equal(t, "r3", preview.Items[1].ID)

	// 失效 id 已从存储回写剔除
	ids, err := store.Get(ctx, CompareScope)
	require.NoError(t, err)
	assert.Equal(t, []string{"r1", "r3"}, ids)
}

func TestComparisonCrossDatasetWarning(t *testing.T) {
	svc, store := selectionFixture()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, CompareScope, []string{"r1", "r3"}))

	preview, err := svc.Comparison(ctx, CompareScope)
	require.NoError(t, err)
	assert.False(t, preview.AllSameDataset)
	assert.Contains(t, preview.Warnings, domain.WarnCrossDataset)
}

func TestSelectionClear(t *testing.T) {
	svc, _ := selectionFixture()
	ctx := context.Background()

	_, err := svc.SelectAll(ctx, "shortlist", []string{"r1", "r2"})
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, "shortlist"))

	ids, err := svc.Get(ctx, "shortlist")
	require.NoError(t, err)
	assert.Empty(t, ids)
}
