// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package archive implements the UMB container's tape-archive layer
// (spec.md §4.6): a name→bytes mapping written as a single-pass tar
// stream, optionally compressed, and read back with any of gzip, bzip2,
// xz, or no compression at all.
package archive

import (
	"archive/tar"
	"bytes"
	"compress/bzip2"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/ulikunitz/xz"

	"github.com/luxfi/umb/utils/set"
)

// Compression selects the write-side codec. Read auto-detects the
// format from the stream's magic bytes regardless of this type.
type Compression string

// Supported compression backends.
const (
	None  Compression = "none"
	Gzip  Compression = "gzip"
	Bzip2 Compression = "bzip2"
	Xz    Compression = "xz"
)

// Archive is an in-memory name→bytes mapping loaded from a tape
// archive, tracking which member names a reader has consumed so the
// caller can surface a warning for any left over (spec.md §4.6, §4.8).
type Archive struct {
	members map[string][]byte
	read    set.Set[string]
}

// Read loads every member of the tape archive at path eagerly into
// memory, auto-detecting gzip, bzip2, xz, or no compression.
func Read(path string) (*Archive, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("archive: open %s: %w", path, err)
	}
	defer f.Close()
	return ReadFrom(f)
}

// ReadFrom loads every member from an already-open reader, useful for
// tests and for embedding the archive in a larger stream.
func ReadFrom(r io.Reader) (*Archive, error) {
	buffered := bufferAll(r)
	decompressed, err := detectAndDecompress(buffered)
	if err != nil {
		return nil, err
	}

	tr := tar.NewReader(decompressed)
	a := &Archive{members: map[string][]byte{}, read: set.NewSet[string](0)}
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("archive: tar: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, fmt.Errorf("archive: read member %s: %w", hdr.Name, err)
		}
		a.members[hdr.Name] = data
	}
	return a, nil
}

func bufferAll(r io.Reader) *bytes.Reader {
	data, _ := io.ReadAll(r)
	return bytes.NewReader(data)
}

func detectAndDecompress(r *bytes.Reader) (io.Reader, error) {
	magic := make([]byte, 6)
	n, _ := r.Read(magic)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("archive: seek: %w", err)
	}
	magic = magic[:n]

	switch {
	case len(magic) >= 2 && magic[0] == 0x1f && magic[1] == 0x8b:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("archive: gzip: %w", err)
		}
		return gr, nil
	case len(magic) >= 3 && magic[0] == 'B' && magic[1] == 'Z' && magic[2] == 'h':
		return bzip2.NewReader(r), nil
	case len(magic) >= 6 && magic[0] == 0xFD && magic[1] == '7' && magic[2] == 'z' && magic[3] == 'X' && magic[4] == 'Z' && magic[5] == 0x00:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("archive: xz: %w", err)
		}
		return xr, nil
	default:
		return r, nil
	}
}

// Get returns a member's bytes and marks it as consumed, so a
// subsequent call to Unread omits it.
func (a *Archive) Get(name string) ([]byte, bool) {
	data, ok := a.members[name]
	if ok {
		a.read.Add(name)
	}
	return data, ok
}

// Has reports whether a member with this name exists, without marking
// it as consumed.
func (a *Archive) Has(name string) bool {
	_, ok := a.members[name]
	return ok
}

// Unread returns the names of every member that has not yet been
// retrieved via Get, in no particular order.
func (a *Archive) Unread() []string {
	out := make([]string, 0, len(a.members))
	for name := range a.members {
		if !a.read.Contains(name) {
			out = append(out, name)
		}
	}
	return out
}

// Names returns every member name present in the archive.
func (a *Archive) Names() []string {
	out := make([]string, 0, len(a.members))
	for name := range a.members {
		out = append(out, name)
	}
	return out
}

// Write emits members as a single-pass tar stream to path, compressed
// per the given Compression backend. Member order in the output is the
// range order of the map and is not guaranteed to match on read.
func Write(path string, members map[string][]byte, compression Compression) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("archive: create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTo(f, members, compression)
}

// WriteTo writes members as a compressed tar stream to w.
func WriteTo(w io.Writer, members map[string][]byte, compression Compression) error {
	compressed, closeFn, err := wrapWriter(w, compression)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(compressed)
	for name, data := range members {
		hdr := &tar.Header{
			Name:     name,
			Mode:     0o644,
			Size:     int64(len(data)),
			Typeflag: tar.TypeReg,
		}
		if err := tw.WriteHeader(hdr); err != nil {
			return fmt.Errorf("archive: write header %s: %w", name, err)
		}
		if _, err := tw.Write(data); err != nil {
			return fmt.Errorf("archive: write member %s: %w", name, err)
		}
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("archive: close tar: %w", err)
	}
	return closeFn()
}

func wrapWriter(w io.Writer, compression Compression) (io.Writer, func() error, error) {
	switch compression {
	case Gzip, "":
		gw := gzip.NewWriter(w)
		return gw, gw.Close, nil
	case Xz:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, nil, fmt.Errorf("archive: xz writer: %w", err)
		}
		return xw, xw.Close, nil
	case None:
		return w, func() error { return nil }, nil
	case Bzip2:
		return nil, nil, fmt.Errorf("archive: bzip2 write is not supported; bzip2 archives can only be read")
	default:
		return nil, nil, fmt.Errorf("archive: unknown compression %q", compression)
	}
}
