package store

import "facility-booking-backend/internal/model"

var transitionMap = map[string][]model.BookingStatus{
	"approve": {model.BookingStatusPending},
	"reject":  {model.BookingStatusPending},
	"cancel":  {model.BookingStatusPending, model.BookingStatusConfirmed},
}

// ValidTransition reports whether the given action may be applied to a
// booking currently in fromStatus.
func ValidTransition(action string, fromStatus model.BookingStatus) bool {
	allowed, ok := transitionMap[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == fromStatus {
			return true
		}
	}
	return false
}
