package domain

import "errors"

// Common domain errors
var (
	// ErrNotFound is returned when a requested resource is not found
	ErrNotFound = errors.New("resource not found")
	// ErrAlreadyExists is returned when trying to create a resource that already exists
	ErrAlreadyExists = errors.New("resource already exists")
	// ErrValidation is returned when input validation fails
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized is returned when a user is not authorized to perform an action
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when a user is not allowed to perform an action
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidAmount is returned for zero, negative or over-precise amounts
	ErrInvalidAmount = errors.New("amount must be positive with at most two decimal places")
	// ErrInsufficientFunds is returned when a debit would take a ledger field below zero
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrInvalidTransition is returned when a state machine refuses a move,
	// e.g. approving a payment that is no longer pending
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrConcurrentUpdate is returned when an optimistic version check fails
	ErrConcurrentUpdate = errors.New("resource was modified concurrently")
	// ErrInactive is returned when operating on a disabled resource
	ErrInactive = errors.New("resource is inactive")
	// ErrInUse is returned when deleting a resource other rows still reference
	ErrInUse = errors.New("resource is still in use")
)
