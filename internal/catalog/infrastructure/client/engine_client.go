// Package client 执行引擎 HTTP 客户端。
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/wyfcoding/quantconsole/internal/catalog/application"
)

// EngineClient 回测执行引擎客户端，提供任务状态与结果查询
type EngineClient struct {
	baseURL string
	client  *http.Client
}

// NewEngineClient 创建执行引擎客户端
func NewEngineClient(baseURL string, timeout time.Duration) *EngineClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &EngineClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

var _ application.StatusSource = (*EngineClient)(nil)

// FetchStatus 查询任务进度
func (c *EngineClient) FetchStatus(ctx context.Context, jobID string) (*application.JobStatus, error) {
	var status application.JobStatus
	if err := c.getJSON(ctx, fmt.Sprintf("%s/api/v1/jobs/%s/status", c.baseURL, jobID), &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// FetchResult 拉取任务终态后的完整结果
func (c *EngineClient) FetchResult(ctx context.Context, jobID string) (*application.JobResult, error) {
	var result application.JobResult
	if err := c.getJSON(ctx, fmt.Sprintf("%s/api/v1/jobs/%s/result", c.baseURL, jobID), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *EngineClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("请求执行引擎失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("读取引擎响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("引擎返回 %d: %s", resp.StatusCode, extractErrorMessage(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("解析引擎响应失败: %w", err)
	}
	return nil
}

// extractErrorMessage 从引擎错误响应中提取可读信息。
// 依次尝试 detail、message、error、reason 键，error 可能是嵌套对象。
func extractErrorMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "执行引擎暂时不可用"
	}
	for _, key := range []string{"detail", "message", "error", "reason"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && s != "" {
			return s
		}
		// error 键可能嵌套 {"error": {"message": "..."}}
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(raw, &nested); err == nil {
			for _, nestedKey := range []string{"message", "detail", "reason"} {
				if nestedRaw, ok := nested[nestedKey]; ok {
					if err := json.Unmarshal(nestedRaw, &s); err == nil && s != "" {
						return s
					}
				}
			}
		}
	}
	return "执行引擎暂时不可用"
}
