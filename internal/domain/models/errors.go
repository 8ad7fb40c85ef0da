package models

import "errors"

var (
	// ErrDataUnavailable means the upstream returned no bars for every window tried.
	ErrDataUnavailable = errors.New("market data unavailable")

	// ErrInsufficientData means a series is too short for the requested computation.
	ErrInsufficientData = errors.New("insufficient price data")

	// ErrZeroPreviousClose means the percent change would divide by zero.
	ErrZeroPreviousClose = errors.New("previous close is zero")

	// ErrModelNotLoaded means no prediction model artifact is available.
	ErrModelNotLoaded = errors.New("prediction model not loaded")
)
