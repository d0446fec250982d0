package notify

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultStream is where the email service reads welcome jobs from.
	DefaultStream = "notifications:email"

	streamMaxLen = 10000
	sendTimeout  = 2 * time.Second
)

// Redis publishes notification jobs onto a Redis stream for the email
// service to consume. The stream is capped so a dead consumer cannot
// grow it without bound.
type Redis struct {
	client redis.UniversalClient
	stream string
}

func NewRedis(client redis.UniversalClient, stream string) *Redis {
	if stream == "" {
		stream = DefaultStream
	}
	return &Redis{client: client, stream: stream}
}

func (n *Redis) Send(ctx context.Context, ownerTaxID string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	return n.client.XAdd(ctx, &redis.XAddArgs{
		Stream: n.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{
			"event":        "account_created",
			"owner_tax_id": ownerTaxID,
			"queued_at":    time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
}
