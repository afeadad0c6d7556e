package services

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/safatanc/tourism-core/internal/infrastructures"
	"github.com/sirupsen/logrus"
)

// Notifier delivers domain events to whatever sends emails or pushes.
type Notifier interface {
	Publish(ctx context.Context, event models.DomainEvent) error
}

// RedisNotifier publishes events as JSON on a pub/sub channel.
type RedisNotifier struct {
	redis   *redis.Client
	channel string
}

func NewRedisNotifier(redis *redis.Client, cfg *infrastructures.AppConfig) *RedisNotifier {
	return &RedisNotifier{
		redis:   redis,
		channel: cfg.EVENT_CHANNEL,
	}
}

func (n *RedisNotifier) Publish(ctx context.Context, event models.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return n.redis.Publish(ctx, n.channel, payload).Err()
}

type NotificationService struct {
	notifier   Notifier
	dispatcher *PostCommitDispatcher
}

func NewNotificationService(notifier Notifier, dispatcher *PostCommitDispatcher) *NotificationService {
	return &NotificationService{
		notifier:   notifier,
		dispatcher: dispatcher,
	}
}

// Emit queues event for delivery after commit.
func (s *NotificationService) Emit(event models.DomainEvent) {
	s.dispatcher.Dispatch("notify:"+event.Type, func(ctx context.Context) error {
		if err := s.notifier.Publish(ctx, event); err != nil {
			logrus.WithFields(logrus.Fields{
				"event":      event.Type,
				"content_id": event.ContentID,
			}).Errorf("failed to publish domain event: %v", err)
			return err
		}
		return nil
	})
}
