package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisSender pushes messages as JSON onto a Redis list that an external
// mailer drains.
type RedisSender struct {
	client redis.Cmdable
	queue  string
	now    func() time.Time
}

func NewRedisSender(client redis.Cmdable, queue string) *RedisSender {
	return &RedisSender{client: client, queue: queue, now: time.Now}
}

func (s *RedisSender) Send(ctx context.Context, msg Message) error {
	if msg.SentAt.IsZero() {
		msg.SentAt = s.now().UTC()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	if err := s.client.RPush(ctx, s.queue, payload).Err(); err != nil {
		return fmt.Errorf("queue message on %q: %w", s.queue, err)
	}
	return nil
}
