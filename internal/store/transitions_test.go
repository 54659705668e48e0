package store

import (
	"testing"

	"facility-booking-backend/internal/model"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		action string
		from   model.BookingStatus
		valid  bool
	}{
		{"approve", model.BookingStatusPending, true},
		{"approve", model.BookingStatusConfirmed, false},
		{"approve", model.BookingStatusCancelled, false},
		{"reject", model.BookingStatusPending, true},
		{"reject", model.BookingStatusConfirmed, false},
		{"reject", model.BookingStatusCancelled, false},
		{"cancel", model.BookingStatusPending, true},
		{"cancel", model.BookingStatusConfirmed, true},
		{"cancel", model.BookingStatusCancelled, false},
		{"cancel", model.BookingStatusCompleted, false},
		{"unknown", model.BookingStatusPending, false},
	}

	for _, tt := range cases {
		if got := ValidTransition(tt.action, tt.from); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %q)=%v, want %v", tt.action, tt.from, got, tt.valid)
		}
	}
}
