package domain

import "errors"

var (
	// ErrIllegalTransition: the requested status is not in the legal
	// successor set for the order's current status and fulfillment kind.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrAlreadyTerminal: the order is completed or cancelled.
	ErrAlreadyTerminal = errors.New("order already in a terminal status")

	ErrNotFound = errors.New("order not found")

	// ErrConflict: the caller's expected version is stale; another
	// mutation was committed first. Refetch and retry with the new
	// version if still applicable.
	ErrConflict = errors.New("version conflict")

	ErrUnknownCourier = errors.New("unknown courier")
)
