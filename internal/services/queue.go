package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"dceo-backend/internal/models"
)

type jobQueue interface {
	Enqueue(ctx context.Context, job models.QueueJob) error
}

// RedisQueue pushes jobs onto per-type Redis lists consumed by the worker
// pool.
type RedisQueue struct {
	redis *redis.Client
}

func NewRedisQueue(redisClient *redis.Client) *RedisQueue {
	return &RedisQueue{redis: redisClient}
}

func (q *RedisQueue) Enqueue(ctx context.Context, job models.QueueJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	job.CreatedAt = time.Now().UTC()

	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.redis.LPush(ctx, "queue:"+job.Type, data).Err()
}
