package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/UGONES/church-site-api/internal/model"
	"github.com/UGONES/church-site-api/internal/repository"
)

// fakeLedger implements RegistrationLedger in memory so the RSVP
// handlers can be exercised without MySQL.
type fakeLedger struct {
	reserveReg    *model.Registration
	reserveErr    error
	gotGuestCount uint32

	cancelErr error

	status    string
	statusErr error

	items   []repository.RegistrationDetail
	listErr error
}

func (f *fakeLedger) Reserve(_ context.Context, userID, eventID uint64, guestCount uint32) (*model.Registration, error) {
	f.gotGuestCount = guestCount
	if f.reserveErr != nil {
		return nil, f.reserveErr
	}
	return f.reserveReg, nil
}

func (f *fakeLedger) Cancel(_ context.Context, userID, eventID uint64) error {
	return f.cancelErr
}

func (f *fakeLedger) StatusFor(_ context.Context, userID, eventID uint64) (string, error) {
	return f.status, f.statusErr
}

func (f *fakeLedger) ListByUser(_ context.Context, userID uint64) ([]repository.RegistrationDetail, error) {
	return f.items, f.listErr
}

type fakeEvents struct {
	event *model.Event
	err   error
}

func (f *fakeEvents) GetByID(_ context.Context, id uint64) (*model.Event, error) {
	return f.event, f.err
}

func testEvent() *model.Event {
	start := time.Date(2026, 4, 5, 9, 0, 0, 0, time.UTC)
	return &model.Event{ID: 5, Title: "Easter Service", Capacity: 100, StartsAt: start, EndsAt: start.Add(2 * time.Hour)}
}

// newRSVPRequest builds an echo context for a request against the
// /v1/events/:id/rsvp route with the JWT-derived user id preset.
func newRSVPRequest(method, body string, eventID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, "/v1/events/"+eventID+"/rsvp", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, "/v1/events/"+eventID+"/rsvp", nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(eventID)
	c.Set("user_id", uint64(7))
	return c, rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m))
	return m
}

func TestReserveAdmitted(t *testing.T) {
	ledger := &fakeLedger{reserveReg: &model.Registration{ID: 42, UserID: 7, EventID: 5, Status: model.StatusConfirmed, GuestCount: 3}}
	h := NewRSVPHandler(ledger, &fakeEvents{event: testEvent()})

	c, rec := newRSVPRequest(http.MethodPost, `{"guest_count":3}`, "5")
	assert.NoError(t, h.Reserve(c))
	assert.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "admitted", body["status"])
	assert.Equal(t, float64(42), body["registration_id"])
	assert.Equal(t, float64(3), body["guest_count"])
	assert.Equal(t, uint32(3), ledger.gotGuestCount)
}

func TestReserveWaitlisted(t *testing.T) {
	ledger := &fakeLedger{reserveReg: &model.Registration{ID: 43, UserID: 7, EventID: 5, Status: model.StatusWaiting, GuestCount: 1}}
	h := NewRSVPHandler(ledger, &fakeEvents{event: testEvent()})

	c, rec := newRSVPRequest(http.MethodPost, `{"guest_count":1}`, "5")
	assert.NoError(t, h.Reserve(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "waitlisted", decodeBody(t, rec)["status"])
}

func TestReserveDefaultsGuestCount(t *testing.T) {
	ledger := &fakeLedger{reserveReg: &model.Registration{ID: 44, Status: model.StatusWaiting, GuestCount: 1}}
	h := NewRSVPHandler(ledger, &fakeEvents{event: testEvent()})

	c, rec := newRSVPRequest(http.MethodPost, "", "5")
	assert.NoError(t, h.Reserve(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, uint32(1), ledger.gotGuestCount)
}

func TestReserveErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"zero guests", repository.ErrInvalidGuestCount, http.StatusBadRequest},
		{"unknown event", repository.ErrEventNotFound, http.StatusNotFound},
		{"event ended", repository.ErrEventClosed, http.StatusConflict},
		{"duplicate rsvp", repository.ErrAlreadyRegistered, http.StatusConflict},
		{"contention", repository.ErrConflict, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewRSVPHandler(&fakeLedger{reserveErr: tc.err}, &fakeEvents{event: testEvent()})
			c, rec := newRSVPRequest(http.MethodPost, `{"guest_count":1}`, "5")
			assert.NoError(t, h.Reserve(c))
			assert.Equal(t, tc.code, rec.Code)
		})
	}
}

func TestReserveRejectsBadEventID(t *testing.T) {
	h := NewRSVPHandler(&fakeLedger{}, &fakeEvents{event: testEvent()})
	c, rec := newRSVPRequest(http.MethodPost, "", "abc")
	assert.NoError(t, h.Reserve(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReserveRequiresUser(t *testing.T) {
	h := NewRSVPHandler(&fakeLedger{}, &fakeEvents{event: testEvent()})
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/events/5/rsvp", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("5")
	// no user_id in context
	assert.NoError(t, h.Reserve(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCancel(t *testing.T) {
	h := NewRSVPHandler(&fakeLedger{}, &fakeEvents{event: testEvent()})
	c, rec := newRSVPRequest(http.MethodDelete, "", "5")
	assert.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", decodeBody(t, rec)["status"])
}

func TestCancelWithoutRegistration(t *testing.T) {
	h := NewRSVPHandler(&fakeLedger{cancelErr: repository.ErrNotRegistered}, &fakeEvents{event: testEvent()})
	c, rec := newRSVPRequest(http.MethodDelete, "", "5")
	assert.NoError(t, h.Cancel(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusLowercased(t *testing.T) {
	cases := []struct {
		stored string
		want   string
	}{
		{model.StatusConfirmed, "confirmed"},
		{model.StatusWaiting, "waiting"},
		{model.StatusNone, "none"},
	}
	for _, tc := range cases {
		h := NewRSVPHandler(&fakeLedger{status: tc.stored}, &fakeEvents{event: testEvent()})
		c, rec := newRSVPRequest(http.MethodGet, "", "5")
		assert.NoError(t, h.Status(c))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, tc.want, decodeBody(t, rec)["status"])
	}
}

func TestListMine(t *testing.T) {
	items := []repository.RegistrationDetail{
		{ID: 1, EventID: 5, EventTitle: "Easter Service", Status: model.StatusConfirmed, GuestCount: 2},
		{ID: 2, EventID: 9, EventTitle: "Bible Study", Status: model.StatusWaiting, GuestCount: 1},
	}
	h := NewRSVPHandler(&fakeLedger{items: items}, &fakeEvents{event: testEvent()})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/my-registrations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(7))

	assert.NoError(t, h.ListMine(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody(t, rec)["items"].([]any)
	assert.Len(t, got, 2)
}
