// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ats

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/umb/archive"
)

func TestWriteReadATSRoundTrip(t *testing.T) {
	a := buildRandomWalk(t)
	path := filepath.Join(t.TempDir(), "random-walk.umb")

	require.NoError(t, WriteATS(a, path, archive.Gzip, nil))

	got, warnings, err := ReadATS(path, nil)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, a.NumStates, got.NumStates)
	require.Equal(t, a.NumBranches, got.NumBranches)
}
