package redis

import (
	"fmt"

	"github.com/kirinyoku/seatres/internal/domain"
)

const ns = "seatres:v1"

func groupKey(group domain.GroupID) string {
	return fmt.Sprintf("%s:group:%d:%s", ns, group.TheaterID, group.Showtime)
}

func KeyGroupSummary(group domain.GroupID) string {
	return groupKey(group) + ":summary"
}

func KeyRateLimit(scope, id string) string {
	return fmt.Sprintf("%s:rl:%s:%s", ns, scope, id)
}

// KeyIdemBooking scopes an Idempotency-Key to the group it books in and the
// holder that sent it.
func KeyIdemBooking(group domain.GroupID, holder, idemKey string) string {
	return fmt.Sprintf("%s:idem:bookings:%s:%s", groupKey(group), holder, idemKey)
}

func ChannelGroupEvents(group domain.GroupID) string {
	return groupKey(group) + ":events"
}

// PatternGroupEvents matches ChannelGroupEvents for every group.
func PatternGroupEvents() string {
	return ns + ":group:*:events"
}
