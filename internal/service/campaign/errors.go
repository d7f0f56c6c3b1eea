package campaign

import "errors"

// Sentinel errors for the campaign service layer.
var (
	ErrNotFound        = errors.New("campaign not found")
	ErrNoCategory      = errors.New("campaign has no confirmed category")
	ErrNoPrediction    = errors.New("campaign has no predicted category")
	ErrNoPrograms      = errors.New("campaign has no selected programs")
	ErrInvalidBookings = errors.New("one or more bookings failed validation")
)
