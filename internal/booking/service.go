package booking

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"facility-booking-backend/internal/identity"
	"facility-booking-backend/internal/model"
	"facility-booking-backend/internal/parse"
	"facility-booking-backend/internal/store"
)

// Notifier dispatches a queued outbox row for delivery. Delivery is best
// effort; domain operations never wait on it or fail because of it.
type Notifier interface {
	Dispatch(outboxID uuid.UUID)
}

// Service implements booking creation, cancellation, and the approval
// workflow on top of the store.
type Service struct {
	store    store.Store
	roles    identity.RoleChecker
	clock    Clock
	notifier Notifier
}

// NewService wires a booking service. clock may be nil for the system
// clock; notifier may be nil when no delivery channel is configured.
func NewService(s store.Store, roles identity.RoleChecker, clock Clock, notifier Notifier) *Service {
	if clock == nil {
		clock = SystemClock()
	}
	return &Service{store: s, roles: roles, clock: clock, notifier: notifier}
}

// CreateInput carries a booking request.
type CreateInput struct {
	FacilityID uuid.UUID
	Date       time.Time
	StartTime  string
	EndTime    string
	Purpose    string
	RuleID     *uuid.UUID
}

// Create validates the request, prices it, and reserves the slot. The slot
// is taken with status pending; confirmation happens through Decide.
func (s *Service) Create(ctx context.Context, actor identity.Actor, in CreateInput) (*model.Booking, error) {
	startMin, endMin, err := parse.ClockRange(in.StartTime, in.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrValidation, err)
	}

	facility, err := s.store.GetFacility(ctx, in.FacilityID)
	if err != nil {
		return nil, err
	}
	if !facility.IsAvailable {
		return nil, fmt.Errorf("%w: facility %q is not accepting bookings", store.ErrValidation, facility.Name)
	}

	date := model.DateOnly(in.Date)
	if err := checkOperatingHours(facility, date.Weekday(), startMin, endMin); err != nil {
		return nil, err
	}

	minutes := endMin - startMin
	total := facility.HourlyRate.
		Mul(decimal.NewFromInt(int64(minutes))).
		Div(decimal.NewFromInt(60)).
		Round(2)

	b := &model.Booking{
		FacilityID:      facility.ID,
		RequesterID:     actor.ID,
		RuleID:          in.RuleID,
		BookingDate:     date,
		StartTime:       parse.FormatClock(startMin),
		EndTime:         parse.FormatClock(endMin),
		DurationMinutes: minutes,
		Purpose:         in.Purpose,
		Status:          model.BookingStatusPending,
		TotalAmount:     total,
	}
	if err := s.store.ReserveBooking(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func checkOperatingHours(f *model.Facility, day time.Weekday, startMin, endMin int) error {
	hours := f.OperatingHours.Data().For(day)
	if hours.Closed {
		return fmt.Errorf("%w: facility %q is closed on %s", store.ErrValidation, f.Name, day)
	}
	openMin, err := parse.Clock(hours.Open)
	if err != nil {
		return fmt.Errorf("%w: facility %q has malformed hours for %s", store.ErrValidation, f.Name, day)
	}
	closeMin, err := parse.Clock(hours.Close)
	if err != nil {
		return fmt.Errorf("%w: facility %q has malformed hours for %s", store.ErrValidation, f.Name, day)
	}
	if startMin < openMin || endMin > closeMin {
		return fmt.Errorf("%w: requested %s-%s is outside operating hours %s-%s",
			store.ErrValidation, parse.FormatClock(startMin), parse.FormatClock(endMin), hours.Open, hours.Close)
	}
	return nil
}

// Cancel cancels a booking. Only the requester or an approver may cancel,
// and cancelling an already-cancelled booking is a no-op success.
func (s *Service) Cancel(ctx context.Context, actor identity.Actor, id uuid.UUID) (*model.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if b.Status == model.BookingStatusCancelled {
		return b, nil
	}

	if b.RequesterID != actor.ID {
		ok, err := s.roles.HasRole(ctx, actor, []string{identity.RoleApprover, identity.RoleManager}, b.FacilityID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("actor %s may not cancel booking %s: %w", actor.ID, id, store.ErrPermissionDenied)
		}
	}

	if !store.ValidTransition("cancel", b.DisplayStatus(s.clock.Now())) {
		return nil, fmt.Errorf("booking %s is %s: %w", id, b.Status, store.ErrInvalidState)
	}

	now := s.clock.Now()
	if err := s.store.UpdateBookingStatus(ctx, id, model.BookingStatusCancelled, &now); err != nil {
		return nil, err
	}
	b.Status = model.BookingStatusCancelled
	b.CancelledAt = &now
	return b, nil
}

// Decide applies an approval decision to a pending booking: it writes the
// approval record, flips the status, and queues one notification to the
// requester, all in one transaction. A decision on a booking that is no
// longer pending fails with ErrInvalidState, including a retry of a
// decision that already applied.
func (s *Service) Decide(ctx context.Context, actor identity.Actor, bookingID uuid.UUID, decision model.ApprovalDecision, notes string) (*model.Booking, error) {
	if decision != model.DecisionApproved && decision != model.DecisionRejected {
		return nil, fmt.Errorf("%w: unknown decision %q", store.ErrValidation, decision)
	}

	b, err := s.store.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != model.BookingStatusPending {
		return nil, fmt.Errorf("booking %s is %s, not pending: %w", bookingID, b.Status, store.ErrInvalidState)
	}

	ok, err := s.roles.HasRole(ctx, actor, []string{identity.RoleApprover, identity.RoleManager}, b.FacilityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("actor %s may not decide booking %s: %w", actor.ID, bookingID, store.ErrPermissionDenied)
	}

	now := s.clock.Now()
	action := "reject"
	if decision == model.DecisionApproved {
		action = "approve"
		b.Status = model.BookingStatusConfirmed
		b.ApprovedBy = &actor.ID
		b.ApprovedAt = &now
	} else {
		b.Status = model.BookingStatusCancelled
		b.CancelledAt = &now
	}
	if !store.ValidTransition(action, model.BookingStatusPending) {
		return nil, fmt.Errorf("action %s: %w", action, store.ErrInvalidState)
	}

	record := &model.ApprovalRecord{
		BookingID:  b.ID,
		ApproverID: actor.ID,
		Decision:   decision,
		Notes:      notes,
	}
	note := s.decisionNote(b, decision, notes)

	if err := s.store.ApplyDecision(ctx, b, record, note); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.Dispatch(note.ID)
	} else {
		log.Printf("no notifier configured; outbox row %s stays pending", note.ID)
	}
	return b, nil
}

func (s *Service) decisionNote(b *model.Booking, decision model.ApprovalDecision, notes string) *model.NotificationOutbox {
	subject := fmt.Sprintf("Booking %s", decision)
	body := fmt.Sprintf("Your booking on %s from %s to %s was %s.",
		b.BookingDate.Format("2006-01-02"), b.StartTime, b.EndTime, decision)
	if notes != "" {
		body += " Notes: " + notes
	}
	return &model.NotificationOutbox{
		ID:          uuid.New(),
		RecipientID: b.RequesterID,
		Subject:     subject,
		Body:        body,
		ReferenceID: b.ID,
		Status:      model.OutboxStatusPending,
	}
}
