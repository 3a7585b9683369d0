package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/UGONES/church-site-api/internal/model"
	"github.com/UGONES/church-site-api/internal/queue"
	"github.com/UGONES/church-site-api/internal/repository"
	queue_publisher "github.com/UGONES/church-site-api/internal/service"
)

// RegistrationLedger is the slice of the registration repository the
// RSVP endpoints need.  Depending on the interface rather than the
// concrete repository keeps these handlers testable without MySQL.
type RegistrationLedger interface {
	Reserve(ctx context.Context, userID, eventID uint64, guestCount uint32) (*model.Registration, error)
	Cancel(ctx context.Context, userID, eventID uint64) error
	StatusFor(ctx context.Context, userID, eventID uint64) (string, error)
	ListByUser(ctx context.Context, userID uint64) ([]repository.RegistrationDetail, error)
}

// EventGetter provides event details for the confirmation message
// published after an admitted RSVP.
type EventGetter interface {
	GetByID(ctx context.Context, id uint64) (*model.Event, error)
}

// RSVPHandler serves the RSVP endpoints.  All routes require a JWT;
// the user ID always comes from the token, never the request body.
type RSVPHandler struct {
	Ledger RegistrationLedger
	Events EventGetter
}

// NewRSVPHandler constructs an RSVPHandler and panics on nil dependencies.
func NewRSVPHandler(ledger RegistrationLedger, events EventGetter) *RSVPHandler {
	if ledger == nil || events == nil {
		panic("nil dependency passed to NewRSVPHandler")
	}
	return &RSVPHandler{Ledger: ledger, Events: events}
}

// Reserve handles POST /v1/events/:id/rsvp.  The body carries a
// guest_count (defaulted to 1 when omitted).  The ledger answers
// with a definitive outcome which is relayed unchanged: 201 with
// status "admitted" or "waitlisted", 409 when the user already holds
// an active registration or the event has ended, 404 for an unknown
// event, 400 for a bad guest count and 503 when storage contention
// exhausted the retry budget.
func (h *RSVPHandler) Reserve(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var body struct {
		GuestCount *uint32 `json:"guest_count"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	guests := uint32(1)
	if body.GuestCount != nil {
		guests = *body.GuestCount
	}

	reg, err := h.Ledger.Reserve(c.Request().Context(), userID, eventID, guests)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidGuestCount):
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "guest_count must be at least 1"})
		case errors.Is(err, repository.ErrEventNotFound):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		case errors.Is(err, repository.ErrEventClosed):
			return c.JSON(http.StatusConflict, echo.Map{"error": "event has ended"})
		case errors.Is(err, repository.ErrAlreadyRegistered):
			return c.JSON(http.StatusConflict, echo.Map{"error": "already registered for this event"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporary contention, please retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reservation failed"})
	}

	outcome := "waitlisted"
	if reg.Status == model.StatusConfirmed {
		outcome = "admitted"
		h.publishConfirmed(reg)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"registration_id": reg.ID,
		"status":          outcome,
		"guest_count":     reg.GuestCount,
	})
}

// publishConfirmed pushes a registration.confirmed message for an
// admitted RSVP.  Publishing is best effort: a broker outage must
// never fail the reservation that already committed.
func (h *RSVPHandler) publishConfirmed(reg *model.Registration) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	ev, err := h.Events.GetByID(ctx, reg.EventID)
	if err != nil {
		cancel()
		log.Printf("rsvp: load event %d for publish failed: %v", reg.EventID, err)
		return
	}
	msg := queue.RegistrationConfirmedEvent{
		RegistrationID: reg.ID,
		UserID:         reg.UserID,
		EventID:        ev.ID,
		EventTitle:     ev.Title,
		StartsAt:       ev.StartsAt.UTC().Format(time.RFC3339),
		GuestCount:     reg.GuestCount,
		ConfirmedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	go func() {
		defer cancel()
		_ = queue_publisher.PublishRegistrationConfirmed(ctx, msg)
	}()
}

// Cancel handles DELETE /v1/events/:id/rsvp.  Cancelling is a status
// change, not a delete, so the member can RSVP again later and the
// new request is evaluated against capacity from scratch.
func (h *RSVPHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	err = h.Ledger.Cancel(c.Request().Context(), userID, eventID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotRegistered):
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no active registration for this event"})
		case errors.Is(err, repository.ErrConflict):
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "temporary contention, please retry"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "cancel failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "cancelled"})
}

// Status handles GET /v1/events/:id/rsvp.  It reports the caller's
// current status for the event ("confirmed", "waiting" or "none")
// so the client can render the RSVP toggle without guessing.
func (h *RSVPHandler) Status(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}

	status, err := h.Ledger.StatusFor(c.Request().Context(), userID, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "status lookup failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": strings.ToLower(status)})
}

// ListMine handles GET /v1/my-registrations.  It returns the
// member's active registrations with event details, newest first.
func (h *RSVPHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Ledger.ListByUser(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load registrations"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
