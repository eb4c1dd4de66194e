// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package archive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadRoundTrip(t *testing.T) {
	members := map[string][]byte{
		"index.json":           []byte(`{"format-version":1}`),
		"initial-states.bin":   {0x01, 0x00, 0x00},
		"branch-to-target.bin": {0x02, 0x03, 0x04, 0x05},
	}

	for _, compression := range []Compression{Gzip, Xz, None} {
		t.Run(string(compression), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteTo(&buf, members, compression))

			a, err := ReadFrom(&buf)
			require.NoError(t, err)
			for name, want := range members {
				got, ok := a.Get(name)
				require.True(t, ok, "missing member %s", name)
				require.Equal(t, want, got)
			}
			require.Empty(t, a.Unread())
		})
	}
}

func TestUnreadTracksUnconsumedMembers(t *testing.T) {
	members := map[string][]byte{
		"index.json":         []byte(`{}`),
		"initial-states.bin": {0x00},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, members, None))

	a, err := ReadFrom(&buf)
	require.NoError(t, err)
	_, _ = a.Get("index.json")

	unread := a.Unread()
	require.Equal(t, []string{"initial-states.bin"}, unread)
}

func TestDefaultCompressionDetectedOnRead(t *testing.T) {
	members := map[string][]byte{"index.json": []byte(`{"a":1}`)}
	var buf bytes.Buffer
	require.NoError(t, WriteTo(&buf, members, Gzip))

	a, err := ReadFrom(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	got, ok := a.Get("index.json")
	require.True(t, ok)
	require.Equal(t, members["index.json"], got)
}

func TestWriteRejectsBzip2(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTo(&buf, map[string][]byte{"a": {1}}, Bzip2)
	require.Error(t, err)
}
