package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/events"
	"github.com/redis/go-redis/v9"
)

// GroupPubSub carries seat events between instances over redis pub/sub.
// Every instance subscribes to all groups and relays into its local hub.
type GroupPubSub struct {
	rdb    *redis.Client
	logger *slog.Logger
}

func NewGroupPubSub(rdb *redis.Client, logger *slog.Logger) *GroupPubSub {
	return &GroupPubSub{rdb: rdb, logger: logger}
}

// Publish implements events.Publisher.
func (p *GroupPubSub) Publish(ctx context.Context, group domain.GroupID, ev events.Event) error {
	const op = "redis.GroupPubSub.Publish"

	ev.Group = group

	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	if err := p.rdb.Publish(ctx, ChannelGroupEvents(group), b).Err(); err != nil {
		return fmt.Errorf("%s:%w", op, err)
	}

	return nil
}

// Subscribe blocks delivering every group event to handler until ctx is
// done. Malformed payloads are logged and skipped.
func (p *GroupPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, ev events.Event)) error {
	sub := p.rdb.PSubscribe(ctx, PatternGroupEvents())
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev events.Event
			if err := json.Unmarshal([]byte(m.Payload), &ev); err != nil {
				p.logger.Warn("bad group event payload", "channel", m.Channel, "error", err)
				continue
			}
			handler(ctx, ev)
		}
	}
}
