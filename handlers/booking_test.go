package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carebook/models"
	"carebook/services/schedule"
)

// stubScheduleService returns canned errors so handler status mapping can be
// tested without storage.
type stubScheduleService struct {
	lockErr    error
	releaseErr error

	gotProvider    string
	gotDate        string
	gotStart       int
	gotAppointment string
}

func (s *stubScheduleService) GetRule(context.Context, string) (*models.AvailabilityRule, error) {
	return nil, schedule.ErrRuleNotFound
}

func (s *stubScheduleService) SetRule(_ context.Context, _ string, rule models.AvailabilityRule) (*models.AvailabilityRule, error) {
	return &rule, nil
}

func (s *stubScheduleService) PreviewMonth(context.Context, string, int, int) ([]models.SlotView, error) {
	return nil, nil
}

func (s *stubScheduleService) SlotsForDate(context.Context, string, string) ([]models.Slot, error) {
	return nil, nil
}

func (s *stubScheduleService) Lock(_ context.Context, providerID, date string, start int, appointmentID string) error {
	s.gotProvider = providerID
	s.gotDate = date
	s.gotStart = start
	s.gotAppointment = appointmentID
	return s.lockErr
}

func (s *stubScheduleService) Release(_ context.Context, providerID, date string, start int, appointmentID string) error {
	s.gotProvider = providerID
	s.gotDate = date
	s.gotStart = start
	s.gotAppointment = appointmentID
	return s.releaseErr
}

func (s *stubScheduleService) AddCustomSlot(context.Context, string, string, int, int) (*models.Slot, error) {
	return nil, schedule.ErrSlotConflict
}

func (s *stubScheduleService) CancelCustomSlot(context.Context, string, string, int) error {
	return nil
}

func (s *stubScheduleService) SetLeave(context.Context, string, string, models.LeaveType, []models.RecurringBreak, string) error {
	return nil
}

func (s *stubScheduleService) RemoveLeave(context.Context, string, string) error {
	return nil
}

func postJSON(t *testing.T, handler gin.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, err := http.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	handler(c)
	return w
}

func TestLockSlotHandler(t *testing.T) {
	stub := &stubScheduleService{}
	h := NewBookingHandler(stub)

	w := postJSON(t, h.LockSlotHandler,
		`{"providerId":"prov-1","date":"2025-03-03","start":"09:30","appointmentId":"appt-1"}`)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "prov-1", stub.gotProvider)
	assert.Equal(t, "2025-03-03", stub.gotDate)
	assert.Equal(t, 570, stub.gotStart)
	assert.Equal(t, "appt-1", stub.gotAppointment)
}

func TestLockSlotHandlerConflict(t *testing.T) {
	stub := &stubScheduleService{lockErr: schedule.ErrSlotUnavailable}
	h := NewBookingHandler(stub)

	w := postJSON(t, h.LockSlotHandler,
		`{"providerId":"prov-1","date":"2025-03-03","start":"09:30","appointmentId":"appt-1"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLockSlotHandlerBadPayload(t *testing.T) {
	h := NewBookingHandler(&stubScheduleService{})

	// Missing appointmentId.
	w := postJSON(t, h.LockSlotHandler,
		`{"providerId":"prov-1","date":"2025-03-03","start":"09:30"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Unparseable clock value.
	w = postJSON(t, h.LockSlotHandler,
		`{"providerId":"prov-1","date":"2025-03-03","start":"9am","appointmentId":"appt-1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReleaseSlotHandlerOwnerMismatch(t *testing.T) {
	stub := &stubScheduleService{releaseErr: schedule.ErrOwnerMismatch}
	h := NewBookingHandler(stub)

	w := postJSON(t, h.ReleaseSlotHandler,
		`{"providerId":"prov-1","date":"2025-03-03","start":"09:30","appointmentId":"appt-2"}`)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestReleaseSlotHandlerNotFound(t *testing.T) {
	stub := &stubScheduleService{releaseErr: schedule.ErrSlotNotFound}
	h := NewBookingHandler(stub)

	w := postJSON(t, h.ReleaseSlotHandler,
		`{"providerId":"prov-1","date":"2025-03-03","start":"09:30","appointmentId":"appt-1"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
