// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Context keys for logging.
type contextKey string

// correlationIDKey is the context key for correlation IDs.
const correlationIDKey contextKey = "correlation_id"

// GenerateCorrelationID creates a new unique correlation ID.
// Returns the first 8 characters of a UUID for readability.
func GenerateCorrelationID() string {
	return uuid.New().String()[:8]
}

// contextWithCorrelationID returns a new context with the given correlation ID.
func contextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextWithNewCorrelationID returns a context with a newly generated correlation ID.
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return contextWithCorrelationID(ctx, GenerateCorrelationID())
}

// EnsureCorrelationID returns ctx unchanged if it already carries a
// correlation ID, and a context with a new one otherwise.
func EnsureCorrelationID(ctx context.Context) context.Context {
	if CorrelationIDFromContext(ctx) != "" {
		return ctx
	}
	return ContextWithNewCorrelationID(ctx)
}

// CorrelationIDFromContext retrieves the correlation ID from context.
// Returns empty string if not present.
//
//	meta.BuildID = logging.CorrelationIDFromContext(ctx)
func CorrelationIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

// Ctx returns the global logger with the context's correlation_id added.
//
//	logging.Ctx(ctx).Info().Msg("Build started")
//	// Output: {"level":"info","correlation_id":"abc12345","message":"Build started"}
func Ctx(ctx context.Context) *zerolog.Logger {
	l := current()
	if id := CorrelationIDFromContext(ctx); id != "" {
		l = l.With().Str("correlation_id", id).Logger()
	}
	return &l
}

// WithComponent creates a child logger with a component field.
//
//	l := logging.WithComponent("itemitem")
func WithComponent(component string) zerolog.Logger {
	return With().Str("component", component).Logger()
}
