package services

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"dceo-backend/internal/models"
)

// EventPublisher fans out per-engineer events over Redis pub/sub so every
// websocket hub instance can deliver them. A nil publisher (or nil client)
// drops events, which keeps tests free of Redis.
type EventPublisher struct {
	redis *redis.Client
}

func NewEventPublisher(redisClient *redis.Client) *EventPublisher {
	return &EventPublisher{redis: redisClient}
}

func (p *EventPublisher) Publish(ctx context.Context, engineerID uuid.UUID, msg models.WSMessage) {
	if p == nil || p.redis == nil {
		return
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Failed to marshal event %s: %v", msg.Type, err)
		return
	}

	channel := "engineer_updates:" + engineerID.String()
	if err := p.redis.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("Failed to publish event %s: %v", msg.Type, err)
	}
}
