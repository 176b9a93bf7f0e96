// Package notify is the after-commit side of every mutation: it broadcasts
// events to a group's observers, drops cached views of the group and hands
// audit records to the queue.
package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/events"
	"github.com/kirinyoku/seatres/internal/queue"
)

type Invalidator interface {
	InvalidateGroup(ctx context.Context, group domain.GroupID) error
}

// Notifier never fails its caller. By the time it runs the change is
// committed, so delivery problems are only logged.
//
// Events of one seat are published one at a time in version order. An event
// whose commit was overtaken by a newer one on the same seat is not
// published at all.
type Notifier struct {
	pub     events.Publisher
	cache   Invalidator
	auditor queue.Auditor
	logger  *slog.Logger

	mu    sync.Mutex
	seats map[uuid.UUID]*seatSeq
}

type seatSeq struct {
	mu      sync.Mutex
	version int64
}

// New builds a Notifier. cache and auditor may be nil.
func New(pub events.Publisher, cache Invalidator, auditor queue.Auditor, logger *slog.Logger) *Notifier {
	return &Notifier{
		pub:     pub,
		cache:   cache,
		auditor: auditor,
		logger:  logger,
		seats:   make(map[uuid.UUID]*seatSeq),
	}
}

func (n *Notifier) seq(id uuid.UUID) *seatSeq {
	n.mu.Lock()
	defer n.mu.Unlock()

	q, ok := n.seats[id]
	if !ok {
		q = &seatSeq{}
		n.seats[id] = q
	}
	return q
}

// Emit publishes evs to the observers of group in order.
func (n *Notifier) Emit(ctx context.Context, group domain.GroupID, evs ...events.Event) {
	if n.cache != nil {
		if err := n.cache.InvalidateGroup(ctx, group); err != nil {
			n.logger.Warn("invalidate group cache failed", "group", group.String(), "error", err)
		}
	}

	for _, ev := range evs {
		if ev.SeatID == nil || ev.Version == 0 {
			n.publish(ctx, group, ev)
			continue
		}
		n.publishInOrder(ctx, group, ev)
	}
}

func (n *Notifier) publishInOrder(ctx context.Context, group domain.GroupID, ev events.Event) {
	q := n.seq(*ev.SeatID)

	q.mu.Lock()
	defer q.mu.Unlock()

	if ev.Stale(q.version) {
		n.logger.Debug("stale seat event skipped",
			"group", group.String(), "type", string(ev.Type), "label", ev.Label, "version", ev.Version)
		return
	}
	q.version = ev.Version

	n.publish(ctx, group, ev)
}

func (n *Notifier) publish(ctx context.Context, group domain.GroupID, ev events.Event) {
	if err := n.pub.Publish(ctx, group, ev); err != nil {
		n.logger.Warn("publish event failed",
			"group", group.String(), "type", string(ev.Type), "error", err)
	}
}

func (n *Notifier) Audit(ctx context.Context, rec queue.AuditRecord) {
	if n.auditor == nil {
		return
	}

	if err := n.auditor.Audit(ctx, rec); err != nil {
		n.logger.Warn("audit publish failed",
			"action", string(rec.Action), "holder", rec.Holder, "error", err)
	}
}
