package httpgin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kirinyoku/seatres/internal/domain"
	"github.com/kirinyoku/seatres/internal/events"
	redisrepo "github.com/kirinyoku/seatres/internal/repository/redis"
	"github.com/kirinyoku/seatres/internal/service"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// IdempotencyStore deduplicates booking requests that carry an
// Idempotency-Key header.
type IdempotencyStore interface {
	Begin(ctx context.Context, key string) (redisrepo.IdemState, string, error)
	SaveResult(ctx context.Context, key string, jsonPayload string) error
	Release(ctx context.Context, key string) error
}

type Options struct {
	Showtimes domain.Showtimes
	// Auth resolves the caller's holder identity; it guards every mutating
	// and per-holder route.
	Auth gin.HandlerFunc
	// Idempotency may be nil.
	Idempotency IdempotencyStore
	Heartbeat   time.Duration
}

type api struct {
	svcs   *service.Services
	hub    *events.Hub
	opts   Options
	logger *slog.Logger
}

func NewRouter(
	svcs *service.Services,
	hub *events.Hub,
	opts Options,
	logger *slog.Logger,
	middlewares ...gin.HandlerFunc,
) *gin.Engine {
	if len(opts.Showtimes) == 0 {
		opts.Showtimes = domain.DefaultShowtimes
	}

	if opts.Heartbeat <= 0 {
		opts.Heartbeat = 15 * time.Second
	}

	a := &api{svcs: svcs, hub: hub, opts: opts, logger: logger}

	r := gin.New()

	r.Use(gin.Recovery(), LoggingMiddleware(logger), RequestIDMiddleware(), CORS())
	for _, m := range middlewares {
		if m != nil {
			r.Use(m)
		}
	}

	// Swagger UI
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	groups := r.Group("/groups/:theater/:showtime")
	{
		groups.GET("/seats", a.getSeats)
		groups.GET("/summary", a.getSummary)
		groups.GET("/events", a.streamEvents)

		groups.POST("/holds", opts.Auth, a.holdSeat)
		groups.DELETE("/holds/:label", opts.Auth, a.releaseSeat)
		groups.POST("/bookings", opts.Auth, a.bookSeats)
	}

	r.GET("/me/bookings", opts.Auth, a.myBookings)
	r.DELETE("/bookings/:id", opts.Auth, a.cancelBooking)

	return r
}

// @Summary  List the seats and confirmed bookings of a group
// @Param    theater   path  int     true  "Theater ID"
// @Param    showtime  path  string  true  "Showtime, e.g. 10:00"
// @Success  200  {object}  query.GroupSeats
// @Failure  400  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Router   /groups/{theater}/{showtime}/seats [get]
func (a *api) getSeats(c *gin.Context) {
	group, ok := a.group(c)
	if !ok {
		return
	}

	gs, err := a.svcs.Query.GetSeats(c.Request.Context(), group)
	if err != nil {
		respondErr(c, a.logger, err)
		return
	}

	writeJSONWithETag(c, http.StatusOK, gs)
}

// @Summary  Count the seats of a group by status
// @Param    theater   path  int     true  "Theater ID"
// @Param    showtime  path  string  true  "Showtime"
// @Success  200  {object}  domain.GroupSummary
// @Router   /groups/{theater}/{showtime}/summary [get]
func (a *api) getSummary(c *gin.Context) {
	group, ok := a.group(c)
	if !ok {
		return
	}

	gs, err := a.svcs.Query.Summary(c.Request.Context(), group)
	if err != nil {
		respondErr(c, a.logger, err)
		return
	}

	writeJSONWithETag(c, http.StatusOK, gs)
}

// @Summary  Hold a seat
// @Param    theater   path  int          true  "Theater ID"
// @Param    showtime  path  string       true  "Showtime"
// @Param    req       body  HoldRequest  true  "payload"
// @Success  201  {object}  HoldResponse  "new hold"
// @Success  200  {object}  HoldResponse  "already held by the caller; expiry unchanged"
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "held by another / already reserved"
// @Failure  429  {object}  ErrorResponse "rate limited"
// @Security BearerAuth
// @Router   /groups/{theater}/{showtime}/holds [post]
func (a *api) holdSeat(c *gin.Context) {
	group, ok := a.group(c)
	if !ok {
		return
	}

	var req HoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	g, err := a.svcs.Hold.RequestHold(
		c.Request.Context(),
		group,
		strings.TrimSpace(req.Label),
		holderFrom(c),
		time.Duration(req.TTLSec)*time.Second,
	)
	if err != nil {
		respondErr(c, a.logger, err)
		return
	}

	status := http.StatusCreated
	if g.Regranted {
		status = http.StatusOK
	}

	c.JSON(status, HoldResponse{
		SeatID:    g.Seat.ID,
		Label:     g.Seat.Label,
		Holder:    g.Seat.Holder,
		Expiry:    g.Expiry,
		Regranted: g.Regranted,
	})
}

// @Summary  Release a held seat; a no-op unless the caller holds it
// @Param    theater   path  int     true  "Theater ID"
// @Param    showtime  path  string  true  "Showtime"
// @Param    label     path  string  true  "Seat label"
// @Success  204
// @Security BearerAuth
// @Router   /groups/{theater}/{showtime}/holds/{label} [delete]
func (a *api) releaseSeat(c *gin.Context) {
	group, ok := a.group(c)
	if !ok {
		return
	}

	if _, err := a.svcs.Hold.ReleaseHold(
		c.Request.Context(),
		group,
		c.Param("label"),
		holderFrom(c),
	); err != nil {
		respondErr(c, a.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// @Summary  Book seats atomically (idempotent with Idempotency-Key)
// @Param    theater   path    int          true   "Theater ID"
// @Param    showtime  path    string       true   "Showtime"
// @Param    Idempotency-Key header string  false  "replays the first result"
// @Param    req       body    BookRequest  true   "payload"
// @Success  201  {object}  BookResponse
// @Failure  401  {object}  ErrorResponse "unknown holder"
// @Failure  404  {object}  ErrorResponse
// @Failure  409  {object}  ErrorResponse "already reserved / key in progress"
// @Failure  503  {object}  ErrorResponse "transaction aborted, retry"
// @Security BearerAuth
// @Router   /groups/{theater}/{showtime}/bookings [post]
func (a *api) bookSeats(c *gin.Context) {
	group, ok := a.group(c)
	if !ok {
		return
	}

	var req BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	holder := holderFrom(c)
	idem := a.opts.Idempotency

	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	var storageKey string
	if idem != nil && idemKey != "" {
		storageKey = redisrepo.KeyIdemBooking(group, holder, idemKey)

		state, payload, err := idem.Begin(ctx, storageKey)
		if err != nil {
			respondErr(c, a.logger, err)
			return
		}

		switch state {
		case redisrepo.IdemReplay:
			c.Header("Idempotency-Key", idemKey)
			c.Data(http.StatusCreated, "application/json; charset=utf-8", []byte(payload))
			return
		case redisrepo.IdemInFlight:
			c.Header("Retry-After", "1")
			c.JSON(http.StatusConflict, errorBody("idempotency key in progress"))
			return
		}
	}

	bookings, err := a.svcs.Booking.Confirm(ctx, group, holder, req.Labels)
	if err != nil {
		if storageKey != "" {
			_ = idem.Release(ctx, storageKey)
		}
		respondErr(c, a.logger, err)
		return
	}

	resp := BookResponse{Bookings: bookings}

	if storageKey != "" {
		b, _ := json.Marshal(resp)
		if err := idem.SaveResult(ctx, storageKey, string(b)); err != nil {
			a.logger.Warn("save idempotent result failed", "error", err)
		}
		c.Header("Idempotency-Key", idemKey)
	}

	c.JSON(http.StatusCreated, resp)
}

// @Summary  List the caller's confirmed bookings, newest first
// @Success  200  {object}  BookingsResponse
// @Security BearerAuth
// @Router   /me/bookings [get]
func (a *api) myBookings(c *gin.Context) {
	out, err := a.svcs.Query.MyBookings(c.Request.Context(), holderFrom(c))
	if err != nil {
		respondErr(c, a.logger, err)
		return
	}

	c.JSON(http.StatusOK, BookingsResponse{Bookings: out})
}

// @Summary  Cancel one of the caller's bookings
// @Param    id  path  string  true  "Booking ID (uuid)"
// @Success  200  {object}  events.Event  "booking_cancelled"
// @Failure  403  {object}  ErrorResponse
// @Failure  404  {object}  ErrorResponse
// @Security BearerAuth
// @Router   /bookings/{id} [delete]
func (a *api) cancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid booking id")
		return
	}

	res, err := a.svcs.Cancellation.Cancel(c.Request.Context(), id, holderFrom(c))
	if err != nil {
		respondErr(c, a.logger, err)
		return
	}

	c.JSON(http.StatusOK, res.Ack)
}

func (a *api) group(c *gin.Context) (domain.GroupID, bool) {
	g, err := a.opts.Showtimes.ParseGroup(c.Param("theater"), c.Param("showtime"))
	if err != nil {
		respondErr(c, a.logger, err)
		return domain.GroupID{}, false
	}
	return g, true
}
