package sim

import "errors"

var (
	// ErrInvalidConfig covers bad tick rates, unknown modes, and malformed
	// pad layouts at construction time.
	ErrInvalidConfig = errors.New("invalid arena config")

	// ErrCarNotFound is returned by RemoveCar for an unknown id.
	ErrCarNotFound = errors.New("car not found")

	// ErrModeUnsupported is returned when registering a goal or boost-pickup
	// callback on a mode that has no goals or pads.
	ErrModeUnsupported = errors.New("callback not supported in this game mode")

	// ErrSerialization covers truncated or version-mismatched snapshot input.
	ErrSerialization = errors.New("arena snapshot malformed")

	// ErrCallbackFault wraps a panic raised by a user callback; Step returns
	// it after the faulting sub-tick completes.
	ErrCallbackFault = errors.New("callback fault")
)
