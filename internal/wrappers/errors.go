// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package wrappers holds small error-aggregation helpers shared by the
// layers that must report every violation found during a single pass
// rather than bailing out on the first one (the ATS façade's
// invariant checks in spec.md §3.4).
package wrappers

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

// Errs collects zero or more errors from a validation pass and reduces
// them to a single error. Safe for concurrent use, since independent
// invariant checks may run in parallel over distinct ATS sections.
type Errs struct {
	mu   sync.RWMutex
	errs []error
}

// Add appends err to the collection. A nil err is a no-op, so callers
// can write Add(check()) unconditionally.
func (e *Errs) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, err)
}

// Errored reports whether any error has been added.
func (e *Errs) Errored() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.errs) > 0
}

// Err reduces the collection to a single error: nil if empty, the sole
// error if exactly one was added, or a combined multi-line error
// otherwise.
func (e *Errs) Err() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	switch len(e.errs) {
	case 0:
		return nil
	case 1:
		return e.errs[0]
	default:
		return errors.New(e.string())
	}
}

// string renders every collected error as a numbered list. Caller must
// hold at least a read lock.
func (e *Errs) string() string {
	if len(e.errs) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d invariant violation", len(e.errs)))
	if len(e.errs) != 1 {
		sb.WriteString("s")
	}
	sb.WriteString(" found:")

	for _, err := range e.errs {
		sb.WriteString("\n\t* ")
		sb.WriteString(err.Error())
	}

	return sb.String()
}

// Len returns the number of errors collected so far.
func (e *Errs) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.errs)
}
