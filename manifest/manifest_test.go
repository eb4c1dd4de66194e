// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package manifest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/umb/types"
)

func minimalIndex() *Index {
	return &Index{
		FormatVersion:  1,
		FormatRevision: 0,
		TransitionSystem: TransitionSystem{
			Time:             Discrete,
			NumStates:        3,
			NumInitialStates: 1,
			NumChoices:       3,
		},
	}
}

func TestParseEmitRoundTrip(t *testing.T) {
	idx := minimalIndex()
	data, err := Emit(idx)
	require.NoError(t, err)

	parsed, warnings, err := Parse(data)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, idx.FormatVersion, parsed.FormatVersion)
	require.Equal(t, idx.TransitionSystem.Time, parsed.TransitionSystem.Time)
	require.Equal(t, idx.TransitionSystem.NumStates, parsed.TransitionSystem.NumStates)
}

func TestParseRejectsUnknownEnum(t *testing.T) {
	data := []byte(`{"format-version":1,"format-revision":0,"transition-system":{"time":"quantum","#players":0,"#states":1,"#initial-states":1,"#choices":0,"#choice-actions":0,"#branches":0,"#branch-actions":0,"#observations":0}}`)
	_, _, err := Parse(data)
	require.ErrorIs(t, err, ErrInvalidEnum)
}

func TestParseRequiresTransitionSystem(t *testing.T) {
	data := []byte(`{"format-version":1,"format-revision":0}`)
	_, _, err := Parse(data)
	require.ErrorIs(t, err, ErrMissingKey)
}

// S6 — Manifest unknown key: the loader warns but preserves the key
// through a write-back.
func TestUnknownTopLevelKeyIsPreservedAndWarned(t *testing.T) {
	data := []byte(`{"format-version":1,"format-revision":0,"foo":{"bar":1},"transition-system":{"time":"discrete","#players":0,"#states":1,"#initial-states":1,"#choices":0,"#choice-actions":0,"#branches":0,"#branch-actions":0,"#observations":0}}`)

	idx, warnings, err := Parse(data)
	require.NoError(t, err)
	require.Len(t, warnings, 1)
	require.Contains(t, warnings[0], `"foo"`)
	require.Contains(t, idx.Extra, "foo")

	out, err := Emit(idx)
	require.NoError(t, err)
	require.Contains(t, string(out), `"foo"`)

	reparsed, _, err := Parse(out)
	require.NoError(t, err)
	require.Contains(t, reparsed.Extra, "foo")
}

func TestEmitDropsNullKeys(t *testing.T) {
	idx := minimalIndex()
	out, err := Emit(idx)
	require.NoError(t, err)
	require.NotContains(t, string(out), `"model-data"`)
	require.NotContains(t, string(out), `"file-data"`)
	require.NotContains(t, string(out), `"annotations"`)
}

func TestAnnotationValidation(t *testing.T) {
	tests := []struct {
		name    string
		ann     Annotation
		wantErr bool
	}{
		{name: "empty applies-to rejected", ann: Annotation{AppliesTo: []ObservationsApplyTo{}}, wantErr: true},
		{name: "valid applies-to", ann: Annotation{AppliesTo: []ObservationsApplyTo{AppliesToStates}}, wantErr: false},
		{name: "invalid applies-to entry", ann: Annotation{AppliesTo: []ObservationsApplyTo{"weird"}}, wantErr: true},
		{name: "valid type", ann: Annotation{Type: typePtr(types.Bool)}, wantErr: false},
		{name: "struct type rejected", ann: Annotation{Type: typePtr(types.Struct)}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ann.validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestVariableFieldRoundTrip(t *testing.T) {
	fields := []types.Field{
		types.Padding{Bits: 4},
		types.Attribute{Name: "x", Type: types.Int32, Size: 32},
	}
	for _, f := range fields {
		v, err := VariableFromField(f)
		require.NoError(t, err)
		back, err := v.ToField()
		require.NoError(t, err)
		require.Equal(t, f, back)
	}
}

func typePtr(t types.CommonType) *types.CommonType {
	return &t
}
