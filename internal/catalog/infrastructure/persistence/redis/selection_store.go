// Package redis 回测目录的 Redis 存储：会话选集与批次读缓存。
package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/quantconsole/internal/catalog/application"
)

type selectionStore struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewSelectionStore 创建会话选集存储。选集是临时工作状态，过期自动丢弃。
func NewSelectionStore(client redis.UniversalClient) application.SelectionStore {
	return &selectionStore{
		client: client,
		prefix: "console:selection:",
		ttl:    24 * time.Hour,
	}
}

func (s *selectionStore) Get(ctx context.Context, scope string) ([]string, error) {
	data, err := s.client.Get(ctx, s.prefix+scope).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		// 损坏的选集按空处理
		return nil, nil
	}
	return ids, nil
}

func (s *selectionStore) Put(ctx context.Context, scope string, ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+scope, data, s.ttl).Err()
}

func (s *selectionStore) Delete(ctx context.Context, scope string) error {
	return s.client.Del(ctx, s.prefix+scope).Err()
}
