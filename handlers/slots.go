package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carebook/models"
	"carebook/services/schedule"
	"carebook/utils"
)

// GetMonthSlotsHandler returns the flattened month preview used for calendar
// rendering.
func (h *ScheduleHandler) GetMonthSlotsHandler(c *gin.Context) {
	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}

	year, err1 := strconv.Atoi(c.Query("year"))
	month, err2 := strconv.Atoi(c.Query("month"))
	if err1 != nil || err2 != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid year/month query parameters"})
		return
	}

	views, err := h.Service.PreviewMonth(c.Request.Context(), providerID, year, month)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"slots": views})
}

// GetDateSlotsHandler returns the authoritative slot list for one date.
func (h *ScheduleHandler) GetDateSlotsHandler(c *gin.Context) {
	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}

	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing date query parameter"})
		return
	}

	slots, err := h.Service.SlotsForDate(c.Request.Context(), providerID, date)
	if err != nil {
		var verr *schedule.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": verr.Error()})
			return
		}
		utils.GetLogger().Warn("failed to fetch slots for date", zap.String("date", date), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to fetch slots"})
		return
	}

	views := make([]models.SlotView, 0, len(slots))
	for _, slot := range slots {
		views = append(views, slot.View())
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "slots": views})
}

// CustomSlotHandler adds an ad-hoc slot with a custom duration.
func (h *ScheduleHandler) CustomSlotHandler(c *gin.Context) {
	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}

	var body struct {
		Date     string `json:"date" binding:"required"`
		Start    string `json:"start" binding:"required"` // "HH:MM"
		Duration int    `json:"duration" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}
	start, err := utils.ParseClock(body.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	slot, err := h.Service.AddCustomSlot(c.Request.Context(), providerID, body.Date, start, body.Duration)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Custom slot created", "slot": slot.View()})
}

// CancelCustomSlotHandler cancels one available slot.
func (h *ScheduleHandler) CancelCustomSlotHandler(c *gin.Context) {
	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}

	var body struct {
		Date  string `json:"date" binding:"required"`
		Start string `json:"start" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}
	start, err := utils.ParseClock(body.Start)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	if err := h.Service.CancelCustomSlot(c.Request.Context(), providerID, body.Date, start); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Slot cancelled"})
}

// SetLeaveHandler records a day override: full leave or extra break windows.
func (h *ScheduleHandler) SetLeaveHandler(c *gin.Context) {
	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}

	var body struct {
		Date      string                  `json:"date" binding:"required"`
		LeaveType models.LeaveType        `json:"leaveType" binding:"required"`
		Slots     []models.RecurringBreak `json:"slots,omitempty"`
		Reason    string                  `json:"reason,omitempty"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	err := h.Service.SetLeave(c.Request.Context(), providerID, body.Date, body.LeaveType, body.Slots, body.Reason)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Leave recorded"})
}

// RemoveLeaveHandler drops a day override, reverting the date to the
// recurring pattern.
func (h *ScheduleHandler) RemoveLeaveHandler(c *gin.Context) {
	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}

	date := c.Param("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing date in path"})
		return
	}

	if err := h.Service.RemoveLeave(c.Request.Context(), providerID, date); err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Leave removed"})
}
