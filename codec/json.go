// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package codec

import "encoding/json"

// EncodeJSON serializes v to compact UTF-8 JSON bytes.
func EncodeJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// DecodeJSON parses UTF-8 JSON bytes into a generic value (a
// json.RawMessage is returned unmodified so callers can defer typed
// decoding to the ATS layer).
func DecodeJSON(b []byte) (json.RawMessage, error) {
	if !json.Valid(b) {
		return nil, ErrUnsupportedValue
	}
	out := make(json.RawMessage, len(b))
	copy(out, b)
	return out, nil
}
