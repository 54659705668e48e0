package api

import (
	"errors"
	"net/http"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"facility-booking-backend/internal/booking"
	"facility-booking-backend/internal/recurrence"
	"facility-booking-backend/internal/reporting"
	"facility-booking-backend/internal/store"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store    store.Store
	bookings *booking.Service
	rules    *recurrence.Materializer
	reports  *reporting.Service
	clock    booking.Clock
	webpush  *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(s store.Store, bookings *booking.Service, rules *recurrence.Materializer, reports *reporting.Service, clock booking.Clock, webpushOptions *webpush.Options) *Handler {
	if clock == nil {
		clock = booking.SystemClock()
	}
	return &Handler{
		store:    s,
		bookings: bookings,
		rules:    rules,
		reports:  reports,
		clock:    clock,
		webpush:  webpushOptions,
	}
}

// writeError maps domain errors onto HTTP statuses. The detail keeps the
// offending parameters so clients can render an actionable message.
func writeError(c *gin.Context, err error) {
	kind := "internal"
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, store.ErrValidation):
		kind, status = "validation", http.StatusUnprocessableEntity
	case errors.Is(err, store.ErrSlotConflict):
		kind, status = "slot_conflict", http.StatusConflict
	case errors.Is(err, store.ErrInvalidState):
		kind, status = "invalid_state", http.StatusConflict
	case errors.Is(err, store.ErrPermissionDenied):
		kind, status = "permission_denied", http.StatusForbidden
	case errors.Is(err, store.ErrFacilityNotFound),
		errors.Is(err, store.ErrBookingNotFound),
		errors.Is(err, store.ErrRuleNotFound):
		kind, status = "not_found", http.StatusNotFound
	}

	c.AbortWithStatusJSON(status, gin.H{"error": kind, "detail": err.Error()})
}
