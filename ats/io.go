// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ats

import (
	"github.com/luxfi/umb/archive"
	"github.com/luxfi/umb/metrics"
	"github.com/luxfi/umb/umbio"
)

// ReadATS opens the UMB container at path, decodes its raw member
// table, and returns the validated structured façade. mc may be nil.
func ReadATS(path string, mc *metrics.Collectors) (*ATS, []string, error) {
	raw, warnings, err := umbio.Load(path, mc)
	if err != nil {
		return nil, warnings, err
	}
	a, err := FromRaw(raw)
	if err != nil {
		return nil, warnings, err
	}
	return a, warnings, nil
}

// WriteATS validates a and writes it to path as an UMB container under
// compression. mc may be nil.
func WriteATS(a *ATS, path string, compression archive.Compression, mc *metrics.Collectors) error {
	raw, err := a.ToRaw()
	if err != nil {
		return err
	}
	return umbio.Store(raw, path, compression, mc)
}
