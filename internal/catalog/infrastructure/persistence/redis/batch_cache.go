package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/wyfcoding/quantconsole/internal/catalog/application"
	"github.com/wyfcoding/quantconsole/internal/catalog/domain"
)

type batchCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewBatchCache 创建批次读缓存。TTL 较短，进度事件到达时还会主动失效。
func NewBatchCache(client redis.UniversalClient) application.BatchReadCache {
	return &batchCache{
		client: client,
		prefix: "console:batch:",
		ttl:    5 * time.Minute,
	}
}

func (c *batchCache) GetBatch(ctx context.Context, id string) (*domain.ResearchBatch, error) {
	data, err := c.client.Get(ctx, c.prefix+id).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var batch domain.ResearchBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, err
	}
	return &batch, nil
}

func (c *batchCache) PutBatch(ctx context.Context, batch *domain.ResearchBatch) error {
	data, err := json.Marshal(batch)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.prefix+batch.ID, data, c.ttl).Err()
}

func (c *batchCache) Invalidate(ctx context.Context, id string) error {
	return c.client.Del(ctx, c.prefix+id).Err()
}
