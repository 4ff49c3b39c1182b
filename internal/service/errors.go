package service

import "errors"

var (
	// ErrActivityRequired is returned when a manual event has no activity.
	ErrActivityRequired = errors.New("activity is required")

	// ErrEmptyText is returned when there is no text to extract from.
	ErrEmptyText = errors.New("no text to analyze")

	// ErrExtractionUnavailable is returned when no extractor is wired.
	ErrExtractionUnavailable = errors.New("extraction is not available")
)
