package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"carebook/models"
	"carebook/services/schedule"
	"carebook/utils"
)

// ScheduleHandler exposes the availability engine to providers.
type ScheduleHandler struct {
	Service schedule.ScheduleService
}

func NewScheduleHandler(svc schedule.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{Service: svc}
}

// providerFromContext reads the provider ID set by JWTAuthProviderMiddleware.
func providerFromContext(c *gin.Context) (string, bool) {
	providerIDValue, exists := c.Get("providerID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Provider not authenticated"})
		return "", false
	}
	providerID, ok := providerIDValue.(string)
	if !ok || providerID == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid provider ID in context"})
		return "", false
	}
	return providerID, true
}

// respondScheduleError maps the engine's error taxonomy onto HTTP statuses.
// Conflict and validation errors pass through unmodified; anything else is a
// transient storage failure and stays opaque to the client.
func respondScheduleError(c *gin.Context, err error) {
	var verr *schedule.ValidationError
	var lerr *schedule.LeaveConflictError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "message": verr.Error()})
	case errors.As(err, &lerr):
		conflicts := make([]models.SlotView, 0, len(lerr.Booked))
		for _, slot := range lerr.Booked {
			conflicts = append(conflicts, slot.View())
		}
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Leave conflict",
			"message":   lerr.Error(),
			"conflicts": conflicts,
		})
	case errors.Is(err, schedule.ErrRuleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No availability rule", "message": err.Error()})
	case errors.Is(err, schedule.ErrSlotNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Slot not found", "message": err.Error()})
	case errors.Is(err, schedule.ErrSlotUnavailable),
		errors.Is(err, schedule.ErrOwnerMismatch),
		errors.Is(err, schedule.ErrSlotConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Slot conflict", "message": err.Error()})
	default:
		utils.GetLogger().Error("schedule operation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "message": "Please try again later."})
	}
}

// GetRuleHandler returns the provider's current availability rule, or an
// empty body when none is saved yet.
func (h *ScheduleHandler) GetRuleHandler(c *gin.Context) {
	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}

	rule, err := h.Service.GetRule(c.Request.Context(), providerID)
	if err != nil {
		if errors.Is(err, schedule.ErrRuleNotFound) {
			c.JSON(http.StatusOK, gin.H{"rule": nil})
			return
		}
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rule": rule})
}

// SetRuleHandler validates and stores the availability rule.
func (h *ScheduleHandler) SetRuleHandler(c *gin.Context) {
	logger := utils.GetLogger()

	providerID, ok := providerFromContext(c)
	if !ok {
		return
	}

	var rule models.AvailabilityRule
	if err := c.ShouldBindJSON(&rule); err != nil {
		logger.Error("Invalid rule payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "message": err.Error()})
		return
	}

	stored, err := h.Service.SetRule(c.Request.Context(), providerID, rule)
	if err != nil {
		respondScheduleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Availability rule saved", "rule": stored})
}
