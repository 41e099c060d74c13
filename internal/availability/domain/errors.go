package domain

import "errors"

var (
	ErrInvalidSpan = errors.New("booking end must be after start")

	// Reconciliation stop conditions. All of them abort the current run,
	// are reported to the diagnostic sink only, and never retry.
	ErrBookingNotFound    = errors.New("booking not found")
	ErrNoResource         = errors.New("no resource attached to product")
	ErrAmbiguousResource  = errors.New("more than one resource attached to product")
	ErrAutomationDisabled = errors.New("automation disabled for resource")
	ErrNothingToReconcile = errors.New("no sibling products to reconcile")
)
