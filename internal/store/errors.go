package store

import "errors"

var (
	ErrValidation       = errors.New("validation failed")
	ErrSlotConflict     = errors.New("slot conflict")
	ErrInvalidState     = errors.New("invalid state transition")
	ErrPermissionDenied = errors.New("permission denied")
	ErrFacilityNotFound = errors.New("facility not found")
	ErrBookingNotFound  = errors.New("booking not found")
	ErrRuleNotFound     = errors.New("rule not found")
)
