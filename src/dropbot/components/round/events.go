package round

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const eventStream = "dropbot.rounds"

// Publisher pushes round lifecycle events onto a redis stream so other
// services can follow the game without touching the database. A nil
// client disables publishing.
type Publisher struct {
	rdb *redis.Client
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{rdb: rdb}
}

// Publish is best-effort: a failed XAdd is logged and dropped.
func (p *Publisher) Publish(ctx context.Context, event string, values map[string]interface{}) {
	if p == nil || p.rdb == nil {
		return
	}
	payload := map[string]interface{}{
		"event_id": uuid.NewString(),
		"event":    event,
	}
	for k, v := range values {
		payload[k] = v
	}
	if _, err := p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: eventStream,
		Values: payload,
	}).Result(); err != nil {
		log.Printf("round: publish %s failed: %v", event, err)
	}
}
