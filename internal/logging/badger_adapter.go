// ItemKNN - Sparse Item Similarity Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/itemknn

package logging

import (
	"strings"

	"github.com/rs/zerolog"
)

// BadgerLogger routes BadgerDB's printf-style logging into zerolog.
// It satisfies badger.Logger without importing badger.
//
// Badger is chatty at info level (compactions, value log GC), so Infof is
// logged at debug.
//
//	opts := badger.DefaultOptions(dir).WithLogger(logging.NewBadgerLogger())
type BadgerLogger struct {
	logger zerolog.Logger
}

// NewBadgerLogger returns a BadgerLogger on the global logger, tagged with
// component=badger.
func NewBadgerLogger() *BadgerLogger {
	return &BadgerLogger{logger: WithComponent("badger")}
}

// NewBadgerLoggerWithLogger returns a BadgerLogger writing to logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewBadgerLoggerWithLogger(logger zerolog.Logger) *BadgerLogger {
	return &BadgerLogger{logger: logger}
}

func (b *BadgerLogger) Errorf(format string, args ...interface{}) {
	b.logger.Error().Msgf(trimFormat(format), args...)
}

func (b *BadgerLogger) Warningf(format string, args ...interface{}) {
	b.logger.Warn().Msgf(trimFormat(format), args...)
}

func (b *BadgerLogger) Infof(format string, args ...interface{}) {
	b.logger.Debug().Msgf(trimFormat(format), args...)
}

func (b *BadgerLogger) Debugf(format string, args ...interface{}) {
	b.logger.Trace().Msgf(trimFormat(format), args...)
}

// Badger terminates most of its format strings with a newline.
func trimFormat(format string) string {
	return strings.TrimRight(format, "\n")
}
