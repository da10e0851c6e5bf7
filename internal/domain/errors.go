package domain

import "errors"

var (
	// ErrUSDAAPIFailure is returned when a USDA API request fails
	ErrUSDAAPIFailure = errors.New("USDA API request failed")

	// ErrMissingCredential is returned when the USDA API key is not configured
	ErrMissingCredential = errors.New("USDA API key is required")

	// ErrInvalidItem is returned when a normalized item fails schema validation
	ErrInvalidItem = errors.New("grocery item failed schema validation")

	// ErrSnapshotNotFound is returned when no prior snapshot has been written
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
