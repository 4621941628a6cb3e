package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carebook/services/schedule"
	"carebook/utils"
)

// BookingHandler is the surface the booking flow calls to take and give back
// slots. It reflects the reconciler's lock/release operations; everything else
// about an appointment (payment, notification) lives outside this service.
type BookingHandler struct {
	Service schedule.ScheduleService
}

func NewBookingHandler(svc schedule.ScheduleService) *BookingHandler {
	return &BookingHandler{Service: svc}
}

type slotRequest struct {
	ProviderID    string `json:"providerId" binding:"required"`
	Date          string `json:"date" binding:"required"`
	Start         string `json:"start" binding:"required"` // "HH:MM"
	AppointmentID string `json:"appointmentId" binding:"required"`
}

// LockSlotHandler reserves a slot for an appointment. Losing a race returns
// 409 so the booking UI can refresh and offer another slot.
func (h *BookingHandler) LockSlotHandler(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}
	start, err := utils.ParseClock(req.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	if err := h.Service.Lock(c.Request.Context(), req.ProviderID, req.Date, start, req.AppointmentID); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot locked"})
}

// ReleaseSlotHandler frees a booked slot for the occupant appointment.
func (h *BookingHandler) ReleaseSlotHandler(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}
	start, err := utils.ParseClock(req.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	if err := h.Service.Release(c.Request.Context(), req.ProviderID, req.Date, start, req.AppointmentID); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot released"})
}
