package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"facility-booking-backend/internal/identity"
	"facility-booking-backend/internal/model"
	"facility-booking-backend/internal/store"
)

type facilityRequest struct {
	Name           string          `json:"name" binding:"required"`
	Location       string          `json:"location"`
	Capacity       int             `json:"capacity" binding:"required,gt=0"`
	HourlyRate     decimal.Decimal `json:"hourly_rate"`
	IsAvailable    *bool           `json:"is_available"`
	OperatingHours model.WeekHours `json:"operating_hours" binding:"required"`
	Amenities      []string        `json:"amenities"`
	Rules          []string        `json:"rules"`
}

// ListFacilities handles GET /api/facilities.
func (h *Handler) ListFacilities(c *gin.Context) {
	facilities, err := h.store.ListFacilities(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, facilities)
}

// GetFacility handles GET /api/facilities/{facility_id}.
func (h *Handler) GetFacility(c *gin.Context) {
	id, err := uuid.Parse(c.Param("facility_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid facility ID"})
		return
	}
	facility, err := h.store.GetFacility(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, facility)
}

// CreateFacility handles POST /api/facilities. Manager only.
func (h *Handler) CreateFacility(c *gin.Context) {
	actor := Actor(c)
	if !actor.Has(identity.RoleManager) {
		writeError(c, fmt.Errorf("actor %s may not manage facilities: %w", actor.ID, store.ErrPermissionDenied))
		return
	}

	var req facilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}
	if req.HourlyRate.IsNegative() {
		writeError(c, fmt.Errorf("%w: hourly rate must not be negative", store.ErrValidation))
		return
	}

	facility := &model.Facility{
		Name:           req.Name,
		Location:       req.Location,
		Capacity:       req.Capacity,
		HourlyRate:     req.HourlyRate,
		IsAvailable:    true,
		OperatingHours: datatypes.NewJSONType(req.OperatingHours),
		Amenities:      datatypes.NewJSONSlice(req.Amenities),
		Rules:          datatypes.NewJSONSlice(req.Rules),
	}
	if req.IsAvailable != nil {
		facility.IsAvailable = *req.IsAvailable
	}

	if err := h.store.CreateFacility(c.Request.Context(), facility); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, facility)
}

// UpdateFacility handles PATCH /api/facilities/{facility_id}. Manager only.
// Facilities with bookings are soft-disabled through is_available, never
// deleted.
func (h *Handler) UpdateFacility(c *gin.Context) {
	actor := Actor(c)
	if !actor.Has(identity.RoleManager) {
		writeError(c, fmt.Errorf("actor %s may not manage facilities: %w", actor.ID, store.ErrPermissionDenied))
		return
	}

	id, err := uuid.Parse(c.Param("facility_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid facility ID"})
		return
	}

	facility, err := h.store.GetFacility(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	var req facilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}
	if req.HourlyRate.IsNegative() {
		writeError(c, fmt.Errorf("%w: hourly rate must not be negative", store.ErrValidation))
		return
	}

	facility.Name = req.Name
	facility.Location = req.Location
	facility.Capacity = req.Capacity
	facility.HourlyRate = req.HourlyRate
	facility.OperatingHours = datatypes.NewJSONType(req.OperatingHours)
	facility.Amenities = datatypes.NewJSONSlice(req.Amenities)
	facility.Rules = datatypes.NewJSONSlice(req.Rules)
	if req.IsAvailable != nil {
		facility.IsAvailable = *req.IsAvailable
	}

	if err := h.store.UpdateFacility(c.Request.Context(), facility); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, facility)
}
