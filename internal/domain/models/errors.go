package models

import "errors"

var (
	// ErrNotFound indicates the product ID is not present in the store consulted.
	ErrNotFound = errors.New("product not found")
	// ErrSizeUnavailable indicates the requested size has no remaining stock or was never offered.
	ErrSizeUnavailable = errors.New("size not available")
	// ErrInvalidInput indicates a value could not be coerced (cost, price, date, empty fields).
	ErrInvalidInput = errors.New("invalid input")
	// ErrStorageUnreadable indicates a backing table exists but cannot be decoded.
	ErrStorageUnreadable = errors.New("storage unreadable")
)
