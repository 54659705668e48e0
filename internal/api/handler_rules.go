package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"facility-booking-backend/internal/identity"
	"facility-booking-backend/internal/model"
	"facility-booking-backend/internal/recurrence"
	"facility-booking-backend/internal/store"
)

type createRuleRequest struct {
	FacilityID string `json:"facility_id" binding:"required"`
	Title      string `json:"title"`
	Pattern    string `json:"pattern" binding:"required"`
	Interval   int    `json:"interval"`
	DaysOfWeek []int  `json:"days_of_week"`
	StartTime  string `json:"start_time" binding:"required"`
	EndTime    string `json:"end_time" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"`
	EndDate    string `json:"end_date"`
}

// CreateRule handles POST /api/rules.
func (h *Handler) CreateRule(c *gin.Context) {
	var req createRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": err.Error()})
		return
	}

	facilityID, err := uuid.Parse(req.FacilityID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid facility ID"})
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid start_date, expected YYYY-MM-DD"})
		return
	}
	var endDate *time.Time
	if req.EndDate != "" {
		d, err := time.Parse("2006-01-02", req.EndDate)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid end_date, expected YYYY-MM-DD"})
			return
		}
		d = model.DateOnly(d)
		endDate = &d
	}
	if req.Interval == 0 {
		req.Interval = 1
	}

	if _, err := h.store.GetFacility(c.Request.Context(), facilityID); err != nil {
		writeError(c, err)
		return
	}

	rule := &model.RecurringBookingRule{
		FacilityID:  facilityID,
		RequesterID: Actor(c).ID,
		Title:       req.Title,
		Pattern:     model.RecurrencePattern(req.Pattern),
		Interval:    req.Interval,
		DaysOfWeek:  datatypes.NewJSONSlice(req.DaysOfWeek),
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		StartDate:   model.DateOnly(startDate),
		EndDate:     endDate,
		Status:      model.RuleStatusActive,
	}

	if err := recurrence.ValidateRule(rule); err != nil {
		writeError(c, err)
		return
	}
	if err := h.store.CreateRule(c.Request.Context(), rule); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rule)
}

// GetRule handles GET /api/rules/{rule_id}.
func (h *Handler) GetRule(c *gin.Context) {
	rule, ok := h.loadRule(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, rule)
}

// ListOccurrences handles GET /api/rules/{rule_id}/occurrences. It
// previews the expansion without materializing anything.
func (h *Handler) ListOccurrences(c *gin.Context) {
	rule, ok := h.loadRule(c)
	if !ok {
		return
	}

	from := h.clock.Now()
	if v := c.Query("from"); v != "" {
		d, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid from, expected YYYY-MM-DD"})
			return
		}
		from = d
	}
	count := 10
	if v := c.Query("count"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 366 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "count must be between 1 and 366"})
			return
		}
		count = n
	}

	occurrences := recurrence.Occurrences(rule, from, time.Time{}, count)
	c.JSON(http.StatusOK, occurrences)
}

// PauseRule handles POST /api/rules/{rule_id}/pause.
func (h *Handler) PauseRule(c *gin.Context) {
	h.transitionRule(c, model.RuleStatusPaused, model.RuleStatusActive)
}

// ResumeRule handles POST /api/rules/{rule_id}/resume.
func (h *Handler) ResumeRule(c *gin.Context) {
	h.transitionRule(c, model.RuleStatusActive, model.RuleStatusPaused)
}

// CancelRule handles POST /api/rules/{rule_id}/cancel. Cancellation is
// terminal and leaves already-materialized bookings untouched.
func (h *Handler) CancelRule(c *gin.Context) {
	h.transitionRule(c, model.RuleStatusCancelled, model.RuleStatusActive, model.RuleStatusPaused)
}

// MaterializeRule handles POST /api/rules/{rule_id}/materialize. It books
// the next unmaterialized occurrence immediately instead of waiting for
// the scheduler pass.
func (h *Handler) MaterializeRule(c *gin.Context) {
	rule, ok := h.loadRule(c)
	if !ok {
		return
	}
	if !h.ruleActor(c, rule) {
		return
	}

	created, err := h.rules.MaterializeNext(c.Request.Context(), rule.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"materialized": created})
}

func (h *Handler) loadRule(c *gin.Context) (*model.RecurringBookingRule, bool) {
	id, err := uuid.Parse(c.Param("rule_id"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad_request", "detail": "invalid rule ID"})
		return nil, false
	}
	rule, err := h.store.GetRule(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return rule, true
}

// ruleActor checks that the caller owns the rule or manages facilities.
func (h *Handler) ruleActor(c *gin.Context, rule *model.RecurringBookingRule) bool {
	actor := Actor(c)
	if rule.RequesterID == actor.ID || actor.Has(identity.RoleManager) {
		return true
	}
	writeError(c, fmt.Errorf("actor %s does not own rule %s: %w", actor.ID, rule.ID, store.ErrPermissionDenied))
	return false
}

func (h *Handler) transitionRule(c *gin.Context, to model.RuleStatus, allowedFrom ...model.RuleStatus) {
	rule, ok := h.loadRule(c)
	if !ok {
		return
	}
	if !h.ruleActor(c, rule) {
		return
	}

	permitted := false
	for _, from := range allowedFrom {
		if rule.Status == from {
			permitted = true
			break
		}
	}
	if !permitted {
		writeError(c, fmt.Errorf("rule %s is %s: %w", rule.ID, rule.Status, store.ErrInvalidState))
		return
	}

	if err := h.store.UpdateRuleStatus(c.Request.Context(), rule.ID, to); err != nil {
		writeError(c, err)
		return
	}
	rule.Status = to
	c.JSON(http.StatusOK, rule)
}
