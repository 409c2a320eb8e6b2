package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a uniqueness constraint was hit.
	ErrAlreadyExists = errors.New("already exists")

	// ErrEmptyCart is returned when checking out a cart without lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrUnauthenticated is returned when no owner could be resolved.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrOrderNotFound is returned when an order id is unknown.
	ErrOrderNotFound = errors.New("order not found")
	// ErrInvalidTransition is returned for a status change absent from the transition table.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrStoragePersist wraps failures writing cart lines to durable storage.
	ErrStoragePersist = errors.New("cart storage persist failed")
)
