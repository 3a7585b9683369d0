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

// AdminHandler bundles the repositories admins use to manage content
// and run events: event CRUD, the per-event registration roster,
// check-in, sermon and ministry management and testimonial
// moderation.  All routes require the ADMIN role.
type AdminHandler struct {
	Events        *repository.EventRepo
	Registrations *repository.RegistrationRepo
	Sermons       *repository.SermonRepo
	Ministries    *repository.MinistryRepo
	Testimonials  *repository.TestimonialRepo
}

// NewAdminHandler constructs an AdminHandler and panics on nil dependencies.
func NewAdminHandler(events *repository.EventRepo, regs *repository.RegistrationRepo, sermons *repository.SermonRepo, ministries *repository.MinistryRepo, testimonials *repository.TestimonialRepo) *AdminHandler {
	if events == nil || regs == nil || sermons == nil || ministries == nil || testimonials == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{
		Events:        events,
		Registrations: regs,
		Sermons:       sermons,
		Ministries:    ministries,
		Testimonials:  testimonials,
	}
}

type eventReq struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Capacity    uint32 `json:"capacity"`
	StartsAt    string `json:"starts_at"` // RFC3339
	EndsAt      string `json:"ends_at"`   // RFC3339
}

func (r *eventReq) toModel() (*model.Event, string) {
	r.Title = strings.TrimSpace(r.Title)
	if r.Title == "" {
		return nil, "title is required"
	}
	starts, err := time.Parse(time.RFC3339, r.StartsAt)
	if err != nil {
		return nil, "starts_at must be RFC3339"
	}
	ends, err := time.Parse(time.RFC3339, r.EndsAt)
	if err != nil {
		return nil, "ends_at must be RFC3339"
	}
	if !ends.After(starts) {
		return nil, "ends_at must be after starts_at"
	}
	return &model.Event{
		Title:       r.Title,
		Description: r.Description,
		Location:    strings.TrimSpace(r.Location),
		Capacity:    r.Capacity,
		StartsAt:    starts.UTC(),
		EndsAt:      ends.UTC(),
	}, ""
}

// CreateEvent handles POST /v1/admin/events.
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ev, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Events.Create(c.Request().Context(), ev); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create event"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": ev.ID})
}

// UpdateEvent handles PUT /v1/admin/events/:id.  Capacity edits take
// effect on the next reservation; confirmed registrations are never
// evicted retroactively.
func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	var req eventReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ev, msg := req.toModel()
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	ev.ID = id
	if err := h.Events.Update(c.Request().Context(), ev); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update event"})
	}
	return c.JSON(http.StatusOK, echo.Map{"id": ev.ID})
}

// DeleteEvent handles DELETE /v1/admin/events/:id.  Events with any
// registration history are protected by a restricting foreign key
// and surface as a 409.
func (h *AdminHandler) DeleteEvent(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	if err := h.Events.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusConflict, echo.Map{"error": "event has registrations"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListRegistrations handles GET /v1/admin/events/:id/registrations.
// The roster includes cancelled rows for audit; waitlisted rows come
// out in arrival order so manual promotion is first-come-first-served.
func (h *AdminHandler) ListRegistrations(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	ctx := c.Request().Context()
	if _, err := h.Events.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load event"})
	}
	regs, err := h.Registrations.ListByEvent(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load registrations"})
	}
	items := make([]echo.Map, 0, len(regs))
	for _, r := range regs {
		items = append(items, echo.Map{
			"id":          r.ID,
			"user_id":     r.UserID,
			"status":      r.Status,
			"guest_count": r.GuestCount,
			"checked_in":  r.CheckedIn,
			"created_at":  r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// CheckIn handles POST /v1/admin/events/:id/registrations/:rid/checkin.
// Check-in opens once the event has started and only applies to
// confirmed registrations.
func (h *AdminHandler) CheckIn(c echo.Context) error {
	eventID, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid event id"})
	}
	regID, ok := pathID(c, "rid")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid registration id"})
	}
	ctx := c.Request().Context()
	ev, err := h.Events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "event not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load event"})
	}
	if !ev.Started(time.Now().UTC()) {
		return c.JSON(http.StatusConflict, echo.Map{"error": "event has not started"})
	}
	if err := h.Registrations.CheckIn(ctx, regID); err != nil {
		if errors.Is(err, repository.ErrNotRegistered) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "no confirmed registration"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "check-in failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"checked_in": true})
}

// CreateSermon handles POST /v1/admin/sermons.
func (h *AdminHandler) CreateSermon(c echo.Context) error {
	var req struct {
		Title       string `json:"title"`
		Speaker     string `json:"speaker"`
		Description string `json:"description"`
		MediaURL    string `json:"media_url"`
		PreachedAt  string `json:"preached_at"` // RFC3339
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
	}
	preached, err := time.Parse(time.RFC3339, req.PreachedAt)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "preached_at must be RFC3339"})
	}
	s := &model.Sermon{
		Title:       req.Title,
		Speaker:     strings.TrimSpace(req.Speaker),
		Description: req.Description,
		MediaURL:    strings.TrimSpace(req.MediaURL),
		PreachedAt:  preached.UTC(),
	}
	if err := h.Sermons.Create(c.Request().Context(), s); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create sermon"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": s.ID})
}

// DeleteSermon handles DELETE /v1/admin/sermons/:id.
func (h *AdminHandler) DeleteSermon(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sermon id"})
	}
	if err := h.Sermons.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrSermonNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "sermon not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete sermon"})
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateMinistry handles POST /v1/admin/ministries.
func (h *AdminHandler) CreateMinistry(c echo.Context) error {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Leader      string `json:"leader"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	m := &model.Ministry{
		Name:        req.Name,
		Description: req.Description,
		Leader:      strings.TrimSpace(req.Leader),
	}
	if err := h.Ministries.Create(c.Request().Context(), m); err != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "ministry name already exists"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": m.ID})
}

// DeleteMinistry handles DELETE /v1/admin/ministries/:id.
func (h *AdminHandler) DeleteMinistry(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid ministry id"})
	}
	if err := h.Ministries.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrMinistryNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "ministry not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete ministry"})
	}
	return c.NoContent(http.StatusNoContent)
}

// ListAllTestimonials handles GET /v1/admin/testimonials: the
// moderation queue, including unapproved entries.
func (h *AdminHandler) ListAllTestimonials(c echo.Context) error {
	testimonials, err := h.Testimonials.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load testimonials"})
	}
	items := make([]echo.Map, 0, len(testimonials))
	for _, t := range testimonials {
		items = append(items, echo.Map{
			"id":         t.ID,
			"user_id":    t.UserID,
			"body":       t.Body,
			"approved":   t.Approved,
			"created_at": t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ApproveTestimonial handles POST /v1/admin/testimonials/:id/approve.
func (h *AdminHandler) ApproveTestimonial(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid testimonial id"})
	}
	if err := h.Testimonials.Approve(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrTestimonialNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "testimonial not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to approve testimonial"})
	}
	return c.JSON(http.StatusOK, echo.Map{"approved": true})
}

// DeleteTestimonial handles DELETE /v1/admin/testimonials/:id.
func (h *AdminHandler) DeleteTestimonial(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid testimonial id"})
	}
	if err := h.Testimonials.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrTestimonialNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "testimonial not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete testimonial"})
	}
	return c.NoContent(http.StatusNoContent)
}
