package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"facility-booking-backend/internal/booking"
	"facility-booking-backend/internal/model"
)

type createBookingRequest struct {
	FacilityID string `json:"facility_id" binding:"required"`
	Date       string `json:"date" binding:"required"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	Purpose    string `json:"purpose"`
}

type bookingResponse struct {
	model.Booking
	DisplayStatus model.BookingStatus `json:"display_status"`
}

func (h *Handler) bookingResponse(b *model.Booking) bookingResponse {
	return bookingResponse{Booking: *b, DisplayStatus: b.DisplayStatus(h.clock.Now())}
}

// CreateBooking handles POST /api/bookings.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	facilityID, err := uuid.Parse(req.FacilityID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid facility ID"})
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid date, expected YYYY-MM-DD"})
		return
	}

	b, err := h.bookings.Create(c.Request.Context(), Actor(c), booking.CreateInput{
		FacilityID: facilityID,
		Date:       date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Purpose:    req.Purpose,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.bookingResponse(b))
}

// ListBookings handles GET /api/bookings?facility_id=...&date=YYYY-MM-DD.
func (h *Handler) ListBookings(c *gin.Context) {
	facilityID, err := uuid.Parse(c.Query("facility_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "facility_id is required"})
		return
	}
	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "date is required, expected YYYY-MM-DD"})
		return
	}

	bookings, err := h.store.ListBookings(c.Request.Context(), facilityID, date)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, h.bookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}

// GetBooking handles GET /api/bookings/{booking_id}.
func (h *Handler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid booking ID"})
		return
	}
	b, err := h.store.GetBooking(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.bookingResponse(b))
}

// CancelBooking handles POST /api/bookings/{booking_id}/cancel.
func (h *Handler) CancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid booking ID"})
		return
	}
	b, err := h.bookings.Cancel(c.Request.Context(), Actor(c), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.bookingResponse(b))
}

type decisionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Notes    string `json:"notes"`
}

// DecideBooking handles POST /api/bookings/{booking_id}/decision.
func (h *Handler) DecideBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid booking ID"})
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	b, err := h.bookings.Decide(c.Request.Context(), Actor(c), id, model.ApprovalDecision(req.Decision), req.Notes)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.bookingResponse(b))
}

// ListApprovals handles GET /api/bookings/{booking_id}/approvals.
func (h *Handler) ListApprovals(c *gin.Context) {
	id, err := uuid.Parse(c.Param("booking_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid booking ID"})
		return
	}
	records, err := h.store.ListApprovals(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
