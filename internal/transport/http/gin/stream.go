package httpgin

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
)

// @Summary  Server-sent stream of a group's seat events
// @Description Events published before the stream opens are not replayed;
// @Description fetch /seats after connecting.
// @Param    theater   path  int     true  "Theater ID"
// @Param    showtime  path  string  true  "Showtime"
// @Produce  text/event-stream
// @Success  200
// @Router   /groups/{theater}/{showtime}/events [get]
func (a *api) streamEvents(c *gin.Context) {
	group, ok := a.group(c)
	if !ok {
		return
	}

	sub := a.hub.Subscribe(group)
	defer sub.Close()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	heartbeat := time.NewTicker(a.opts.Heartbeat)
	defer heartbeat.Stop()

	ctx := c.Request.Context()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ev, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Type), ev)
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		}
	})
}
