package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound          = errors.New("entity not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrExpired           = errors.New("session expired")
	ErrInvalidTransition = errors.New("task already in a terminal state")
	ErrUnfillableField   = errors.New("required field could not be filled")
	ErrDailyLimitReached = errors.New("daily send limit reached")
	ErrDeliveryFailed    = errors.New("result delivery failed")
	ErrAccountBusy       = errors.New("account already has an automation session in flight")
	ErrQueueSaturated    = errors.New("worker queue full")
)
