package application

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/wyfcoding/pkg/messagequeue"
	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
)

// 批量操作动作
const (
	BulkArchive   = "archive"
	BulkUnarchive = "unarchive"
	BulkDelete    = "delete"
)

var (
	// ErrEmptyBulkSelection 批量操作的选集为空，在触达存储前拒绝
	ErrEmptyBulkSelection = errors.New("bulk action requires a non-empty selection")
	// ErrUnknownBulkAction 未知的批量操作动作
	ErrUnknownBulkAction = errors.New("unknown bulk action")
)

// CatalogCommandService 目录写操作服务：批量归档/恢复/删除与单条标注
type CatalogCommandService struct {
	runRepo   domain.RunRepository
	publisher messagequeue.EventPublisher
	logger    *slog.Logger
}

// NewCatalogCommandService 创建目录写操作服务
func NewCatalogCommandService(runRepo domain.RunRepository, publisher messagequeue.EventPublisher, logger *slog.Logger) *CatalogCommandService {
	return &CatalogCommandService{runRepo: runRepo, publisher: publisher, logger: logger}
}

// BulkAction 对选中的运行记录执行批量操作，返回受影响的行数。
// 空选集与未知动作在本地拒绝，不产生任何存储调用。
func (s *CatalogCommandService) BulkAction(ctx context.Context, action string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrEmptyBulkSelection
	}

	var (
		affected int64
		err      error
	)
	switch action {
	case BulkArchive:
		affected, err = s.runRepo.BulkUpdateStatus(ctx, ids, domain.RunStatusArchived)
	case BulkUnarchive:
		affected, err = s.runRepo.BulkUpdateStatus(ctx, ids, domain.RunStatusCompleted)
	case BulkDelete:
		affected, err = s.runRepo.BulkDelete(ctx, ids)
	default:
		return 0, ErrUnknownBulkAction
	}
	if err != nil {
		return 0, err
	}

	event := &domain.BulkActionEvent{
		Action:    action,
		RunIDs:    ids,
		Affected:  affected,
		Timestamp: time.Now(),
	}
	if err := s.publisher.Publish(ctx, event.EventName(), action, event); err != nil {
		s.logger.Warn("批量操作事件发布失败", "action", action, "error", err)
	}
	return affected, nil
}

// SetAlias 设置运行记录别名，空串表示清除
func (s *CatalogCommandService) SetAlias(ctx context.Context, id, alias string) error {
	return s.runRepo.SetAlias(ctx, id, alias)
}

// SetPinned 设置运行记录置顶标记
func (s *CatalogCommandService) SetPinned(ctx context.Context, id string, pinned bool) error {
	return s.runRepo.SetPinned(ctx, id, pinned)
}
