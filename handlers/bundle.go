// File: carebook/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all your endpoint handlers into one struct.
type HandlerBundle struct {
	// Availability rule endpoints
	GetRuleHandler gin.HandlerFunc
	SetRuleHandler gin.HandlerFunc

	// Slot query endpoints
	GetMonthSlotsHandler gin.HandlerFunc
	GetDateSlotsHandler  gin.HandlerFunc

	// Schedule edit endpoints
	CustomSlotHandler       gin.HandlerFunc
	CancelCustomSlotHandler gin.HandlerFunc
	SetLeaveHandler         gin.HandlerFunc
	RemoveLeaveHandler      gin.HandlerFunc

	// Booking endpoints
	LockSlotHandler    gin.HandlerFunc
	ReleaseSlotHandler gin.HandlerFunc
}
