package services

import "errors"

// Listing service errors
var (
	// ErrNoTable is returned when a service is built without a loaded table
	ErrNoTable = errors.New("listings table not loaded")

	// ErrInvalidView is returned for a view name a session does not know
	ErrInvalidView = errors.New("invalid view")

	// ErrInvalidQuery is the cause of every rejected recommendation query
	ErrInvalidQuery = errors.New("invalid recommendation query")
)
