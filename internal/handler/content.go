package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/UGONES/church-site-api/internal/model"
	"github.com/UGONES/church-site-api/internal/repository"
)

// ContentHandler serves the public content pages of the site: events,
// sermons, ministries and approved testimonials.  These endpoints
// carry no auth and sit behind the redis response cache, so they do
// all their shaping server-side and return plain JSON.
type ContentHandler struct {
	Events        *repository.EventRepo
	Registrations *repository.RegistrationRepo
	Sermons       *repository.SermonRepo
	Ministries    *repository.MinistryRepo
	Testimonials  *repository.TestimonialRepo
}

// NewContentHandler constructs a ContentHandler and panics on nil dependencies.
func NewContentHandler(events *repository.EventRepo, regs *repository.RegistrationRepo, sermons *repository.SermonRepo, ministries *repository.MinistryRepo, testimonials *repository.TestimonialRepo) *ContentHandler {
	if events == nil || regs == nil || sermons == nil || ministries == nil || testimonials == nil {
		panic("nil repository passed to NewContentHandler")
	}
	return &ContentHandler{
		Events:        events,
		Registrations: regs,
		Sermons:       sermons,
		Ministries:    ministries,
		Testimonials:  testimonials,
	}
}

func eventJSON(e *model.Event, seatsLeft *int64) echo.Map {
	m := echo.Map{
		"id":          e.ID,
		"title":       e.Title,
		"description": e.Description,
		"location":    e.Location,
		"capacity":    e.Capacity,
		"starts_at":   e.StartsAt.UTC().Format(time.RFC3339),
		"ends_at":     e.EndsAt.UTC().Format(time.RFC3339),
	}
	if seatsLeft != nil {
		m["seats_left"] = *seatsLeft
	}
	return m
}

// ListEvents handles GET /v1/events: upcoming events, soonest first.
func (h *ContentHandler) ListEvents(c echo.Context) error {
	events, err := h.Events.ListUpcoming(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load events"})
	}
	items := make([]echo.Map, 0, len(events))
	for i := range events {
		items = append(items, eventJSON(&events[i], nil))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetEvent handles GET /v1/events/:id.  The response includes
// seats_left derived from the ledger's confirmed-guest total.  A
// full event reports zero; further RSVPs go to the waitlist.
func (h *ContentHandler) GetEvent(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load event"})
	}
	confirmed, err := h.Registrations.ConfirmedGuests(ctx, eventID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load event"})
	}
	left := int64(ev.Capacity) - int64(confirmed)
	if left < 0 {
		left = 0
	}
	return c.JSON(http.StatusOK, echo.Map{"item": eventJSON(ev, &left)})
}

// ListSermons handles GET /v1/sermons.
func (h *ContentHandler) ListSermons(c echo.Context) error {
	sermons, err := h.Sermons.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load sermons"})
	}
	items := make([]echo.Map, 0, len(sermons))
	for _, s := range sermons {
		items = append(items, echo.Map{
			"id":          s.ID,
			"title":       s.Title,
			"speaker":     s.Speaker,
			"description": s.Description,
			"media_url":   s.MediaURL,
			"preached_at": s.PreachedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetSermon handles GET /v1/sermons/:id.
func (h *ContentHandler) GetSermon(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sermon id"})
	}
	s, err := h.Sermons.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSermonNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sermon not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load sermon"})
	}
	return c.JSON(http.StatusOK, echo.Map{"item": echo.Map{
		"id":          s.ID,
		"title":       s.Title,
		"speaker":     s.Speaker,
		"description": s.Description,
		"media_url":   s.MediaURL,
		"preached_at": s.PreachedAt.UTC().Format(time.RFC3339),
	}})
}

// ListMinistries handles GET /v1/ministries.
func (h *ContentHandler) ListMinistries(c echo.Context) error {
	ministries, err := h.Ministries.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load ministries"})
	}
	items := make([]echo.Map, 0, len(ministries))
	for _, m := range ministries {
		items = append(items, echo.Map{
			"id":          m.ID,
			"name":        m.Name,
			"description": m.Description,
			"leader":      m.Leader,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListTestimonials handles GET /v1/testimonials: approved entries only.
func (h *ContentHandler) ListTestimonials(c echo.Context) error {
	testimonials, err := h.Testimonials.ListApproved(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load testimonials"})
	}
	items := make([]echo.Map, 0, len(testimonials))
	for _, t := range testimonials {
		items = append(items, echo.Map{
			"id":         t.ID,
			"body":       t.Body,
			"created_at": t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// SubmitTestimonial handles POST /v1/testimonials (members only).
// Submissions await admin approval before appearing publicly.
func (h *ContentHandler) SubmitTestimonial(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Body string `json:"body"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Body = strings.TrimSpace(body.Body)
	if body.Body == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "body is required"})
	}
	t := &model.Testimonial{UserID: userID, Body: body.Body}
	if err := h.Testimonials.Create(c.Request().Context(), t); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save testimonial"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": t.ID, "approved": t.Approved})
}
