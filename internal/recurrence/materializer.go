package recurrence

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"facility-booking-backend/config"
	"facility-booking-backend/internal/booking"
	"facility-booking-backend/internal/identity"
	"facility-booking-backend/internal/model"
	"facility-booking-backend/internal/store"
)

// Materializer periodically expands active recurring rules into concrete
// bookings inside a rolling horizon. A single rule is never expanded by
// two goroutines at once; different rules may proceed concurrently.
type Materializer struct {
	cfg      *config.SchedulerConfig
	store    store.Store
	bookings *booking.Service
	clock    booking.Clock

	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

// NewMaterializer creates the materialization service.
func NewMaterializer(cfg *config.SchedulerConfig, s store.Store, bookings *booking.Service, clock booking.Clock) *Materializer {
	if clock == nil {
		clock = booking.SystemClock()
	}
	return &Materializer{
		cfg:      cfg,
		store:    s,
		bookings: bookings,
		clock:    clock,
		locks:    make(map[uuid.UUID]*sync.Mutex),
	}
}

// Run starts the materialization loop.
func (m *Materializer) Run(ctx context.Context) {
	if !m.cfg.Enabled {
		log.Println("Materializer is disabled. Not starting.")
		return
	}
	log.Println("Starting recurrence materializer...")

	m.RunOnce(ctx)

	timer := time.NewTimer(m.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Materializer shutting down.")
			return
		case <-timer.C:
			m.RunOnce(ctx)
			timer.Reset(m.cfg.Interval)
		}
	}
}

// RunOnce expands every active rule up to the horizon.
func (m *Materializer) RunOnce(ctx context.Context) {
	rules, err := m.store.ListRulesByStatus(ctx, model.RuleStatusActive)
	if err != nil {
		log.Printf("Error listing active rules: %v", err)
		return
	}

	for i := range rules {
		if ctx.Err() != nil {
			return
		}
		created, skipped, err := m.MaterializeRule(ctx, rules[i].ID)
		if err != nil {
			log.Printf("Error materializing rule %s: %v", rules[i].ID, err)
			continue
		}
		if created > 0 || skipped > 0 {
			log.Printf("Rule %s: materialized %d occurrences, skipped %d", rules[i].ID, created, skipped)
		}
	}
}

// MaterializeRule expands one rule inside the horizon, booking each
// unmaterialized occurrence. An occurrence whose slot conflicts with an
// existing booking, or no longer fits the facility's hours, is skipped
// with a log line; the rule keeps going.
func (m *Materializer) MaterializeRule(ctx context.Context, ruleID uuid.UUID) (created, skipped int, err error) {
	lock := m.ruleLock(ruleID)
	lock.Lock()
	defer lock.Unlock()

	rule, err := m.store.GetRule(ctx, ruleID)
	if err != nil {
		return 0, 0, err
	}
	if rule.Status != model.RuleStatusActive {
		return 0, 0, nil
	}

	today := model.DateOnly(m.clock.Now())
	horizon := today.AddDate(0, 0, m.cfg.HorizonDays)

	from := today
	if last, err := m.store.LastMaterializedDate(ctx, ruleID); err != nil {
		return 0, 0, err
	} else if last != nil && last.AddDate(0, 0, 1).After(from) {
		from = last.AddDate(0, 0, 1)
	}

	actor := identity.Actor{ID: rule.RequesterID, Roles: []string{identity.RoleResident}}

	it := NewIterator(rule, from)
	for created < m.cfg.MaxPerRule {
		occ, ok := it.Next()
		if !ok {
			break
		}
		if occ.Date.After(horizon) {
			break
		}

		exists, err := m.store.RuleHasBookingOn(ctx, ruleID, occ.Date)
		if err != nil {
			return created, skipped, err
		}
		if exists {
			continue
		}

		rid := rule.ID
		_, err = m.bookings.Create(ctx, actor, booking.CreateInput{
			FacilityID: rule.FacilityID,
			Date:       occ.Date,
			StartTime:  occ.StartTime,
			EndTime:    occ.EndTime,
			Purpose:    rule.Title,
			RuleID:     &rid,
		})
		switch {
		case err == nil:
			created++
		case errors.Is(err, store.ErrSlotConflict), errors.Is(err, store.ErrValidation):
			// Degrade gracefully around holidays and double-bookings.
			log.Printf("Rule %s: skipping %s: %v", ruleID, occ.Date.Format("2006-01-02"), err)
			skipped++
		default:
			return created, skipped, err
		}
	}
	return created, skipped, nil
}

// MaterializeNext books only the next unmaterialized occurrence. It
// reports whether a booking was created; conflicting occurrences are
// skipped until one fits or the horizon ends.
func (m *Materializer) MaterializeNext(ctx context.Context, ruleID uuid.UUID) (bool, error) {
	lock := m.ruleLock(ruleID)
	lock.Lock()
	defer lock.Unlock()

	rule, err := m.store.GetRule(ctx, ruleID)
	if err != nil {
		return false, err
	}
	if rule.Status != model.RuleStatusActive {
		return false, nil
	}

	today := model.DateOnly(m.clock.Now())
	horizon := today.AddDate(0, 0, m.cfg.HorizonDays)

	actor := identity.Actor{ID: rule.RequesterID, Roles: []string{identity.RoleResident}}

	it := NewIterator(rule, today)
	for {
		occ, ok := it.Next()
		if !ok || occ.Date.After(horizon) {
			return false, nil
		}

		exists, err := m.store.RuleHasBookingOn(ctx, ruleID, occ.Date)
		if err != nil {
			return false, err
		}
		if exists {
			continue
		}

		rid := rule.ID
		_, err = m.bookings.Create(ctx, actor, booking.CreateInput{
			FacilityID: rule.FacilityID,
			Date:       occ.Date,
			StartTime:  occ.StartTime,
			EndTime:    occ.EndTime,
			Purpose:    rule.Title,
			RuleID:     &rid,
		})
		switch {
		case err == nil:
			return true, nil
		case errors.Is(err, store.ErrSlotConflict), errors.Is(err, store.ErrValidation):
			log.Printf("Rule %s: skipping %s: %v", ruleID, occ.Date.Format("2006-01-02"), err)
		default:
			return false, err
		}
	}
}

func (m *Materializer) ruleLock(id uuid.UUID) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		m.locks[id] = lock
	}
	return lock
}
