package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/quantconsole/internal/catalog/application"
)

func TestFetchStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/jobs/job-1/status", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"job_id":"job-1","state":"polling","done":4,"failed":1,"total":20}`))
	}))
	defer srv.Close()

	cli := NewEngineClient(srv.URL, time.Second)
	status, err := cli.FetchStatus(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, application.JobStatePolling, status.State)
	assert.Equal(t, 4, status.Done)
	assert.Equal(t, 1, status.Failed)
}

func TestFetchStatusErrorExtraction(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail key", `{"detail":"job not found"}`, "job not found"},
		{"message key", `{"message":"rate limited"}`, "rate limited"},
		{"flat error key", `{"error":"bad gateway"}`, "bad gateway"},
		{"nested error object", `{"error":{"message":"engine overloaded"}}`, "engine overloaded"},
		{"reason key", `{"reason":"dataset missing"}`, "dataset missing"},
		{"unrecognized shape", `{"oops":true}`, "执行引擎暂时不可用"},
		{"non-json body", `<html>502</html>`, "执行引擎暂时不可用"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			cli := NewEngineClient(srv.URL, time.Second)
			_, err := cli.FetchStatus(context.Background(), "job-1")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Contains(t, err.Error(), "502")
		})
	}
}

func TestFetchResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/jobs/job-9/result", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"job_id":"job-9","variants":[{"variant_id":"v1","batch_id":"job-9","score":0.8,"gate":{"pass":true}}]}`))
	}))
	defer srv.Close()

	cli := NewEngineClient(srv.URL, time.Second)
	result, err := cli.FetchResult(context.Background(), "job-9")
	require.NoError(t, err)
	require.Len(t, result.Variants, 1)
	assert.Equal(t, "v1", result.Variants[0].VariantID)
	assert.True(t, result.Variants[0].Gate.Pass)
}

func TestFetchStatusMalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	cli := NewEngineClient(srv.URL, time.Second)
	_, err := cli.FetchStatus(context.Background(), "job-1")
	assert.Error(t, err)
}
