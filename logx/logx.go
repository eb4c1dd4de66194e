// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package logx is the UMB logging facade: a thin adapter over
// github.com/luxfi/log that names UMB's loggers by component
// (archive, manifest, umbio, ats) and resolves the CLI's
// --log-level flag to a slog.Level.
package logx

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/luxfi/log"
)

// New returns a named component logger, mirroring the teacher's
// log.NewLogger("ringtail") constructor call.
func New(component string) log.Logger {
	return log.NewLogger(component)
}

// NoOp returns a logger that discards everything, used by library
// callers (and tests) that have not configured a component logger.
func NoOp() log.Logger {
	return log.NewNoOpLogger()
}

// ParseLevel maps the CLI's --log-level string to a slog.Level,
// matching the level names github.com/luxfi/log already recognizes.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace", "verbo":
		return slog.LevelDebug - 4, nil
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error", "crit", "fatal":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("logx: unknown log level %q", s)
	}
}

// WarnUnread logs one warning line per archive member or manifest key
// that a load left unconsumed, per spec.md §7's "UnknownMember" policy
// (a warning, never a fatal error).
func WarnUnread(logger log.Logger, kind string, names []string) {
	for _, name := range names {
		logger.Warn(fmt.Sprintf("unread %s member", kind), "name", name)
	}
}
