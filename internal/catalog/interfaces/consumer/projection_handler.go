// Package consumer 回测目录的事件消费端，把引擎事件投影到读模型。
package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/quantconsole/internal/catalog/application"
	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
)

// ProjectionHandler 消费运行状态与批次进度事件
type ProjectionHandler struct {
	projector *application.ProjectionService
	logger    *slog.Logger
}

// NewProjectionHandler 创建投影消费处理器
func NewProjectionHandler(projector *application.ProjectionService, logger *slog.Logger) *ProjectionHandler {
	return &ProjectionHandler{projector: projector, logger: logger}
}

// Handle 按主题分发事件
func (h *ProjectionHandler) Handle(ctx context.Context, msg kafka.Message) error {
	switch msg.Topic {
	case domain.RunStatusChangedEventType:
		var event domain.RunStatusChangedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal run status event", "error", err)
			return err
		}
		if event.RunID == "" {
			return nil
		}
		return h.projector.ApplyRunStatusChanged(ctx, &event)

	case domain.BatchProgressEventType:
		var event domain.BatchProgressEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			h.logger.ErrorContext(ctx, "failed to unmarshal batch progress event", "error", err)
			return err
		}
		if event.BatchID == "" {
			return nil
		}
		return h.projector.ApplyBatchProgress(ctx, &event)

	default:
		h.logger.WarnContext(ctx, "unknown console event topic", "topic", msg.Topic)
		return nil
	}
}
