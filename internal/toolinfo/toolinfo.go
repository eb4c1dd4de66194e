// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package toolinfo holds the process-wide tool identification and format
// version/revision embedded in every UMB write. It is loaded once, at
// process start, and is immutable thereafter.
package toolinfo

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// Info identifies the tool writing a UMB file and the container format
// revision it targets.
type Info struct {
	Name           string `json:"name"`
	Version        string `json:"version"`
	FormatVersion  uint   `json:"format-version"`
	FormatRevision uint   `json:"format-revision"`
}

// defaults used until Load or Set is called.
var defaults = Info{
	Name:           "umb",
	Version:        "0.1.0",
	FormatVersion:  1,
	FormatRevision: 0,
}

var (
	mu          sync.RWMutex
	current     = defaults
	initialized bool
)

// Get returns the current process-wide tool info. If it has not been
// initialized by Load or Set, it returns the built-in defaults.
func Get() Info {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Set fixes the process-wide tool info. It may only be called once;
// subsequent calls return an error so the value stays immutable for the
// lifetime of the process, per the concurrency model's "write once" rule.
func Set(info Info) error {
	mu.Lock()
	defer mu.Unlock()
	if initialized {
		return fmt.Errorf("toolinfo: already initialized")
	}
	current = info
	initialized = true
	return nil
}

// Load reads Info from a JSON file at path and fixes it as the
// process-wide value via Set. A missing file is not an error: the
// built-in defaults remain in effect.
func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("toolinfo: read config: %w", err)
	}

	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return fmt.Errorf("toolinfo: parse config: %w", err)
	}
	if info.Name == "" {
		info.Name = defaults.Name
	}
	if info.Version == "" {
		info.Version = defaults.Version
	}
	if info.FormatVersion == 0 {
		info.FormatVersion = defaults.FormatVersion
	}
	return Set(info)
}
