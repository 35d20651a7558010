package database

import (
	"context"
	"time"
)

// Common timeout durations for database operations
const (
	// ShortTimeout for single document reads and writes
	ShortTimeout = 5 * time.Second

	// MediumTimeout for queries that return many documents
	MediumTimeout = 10 * time.Second

	// LongTimeout for bulk updates such as season-wide locks or resets
	LongTimeout = 30 * time.Second
)

// withTimeout bounds a repository call while still honouring the caller's cancellation
func withTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, timeout)
}

// WithShortTimeout creates a context with ShortTimeout (5 seconds)
func WithShortTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(parent, ShortTimeout)
}

// WithMediumTimeout creates a context with MediumTimeout (10 seconds)
func WithMediumTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(parent, MediumTimeout)
}

// WithLongTimeout creates a context with LongTimeout (30 seconds)
func WithLongTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return withTimeout(parent, LongTimeout)
}
