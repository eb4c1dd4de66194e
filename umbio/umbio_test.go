// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package umbio

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/umb/archive"
	"github.com/luxfi/umb/manifest"
	"github.com/luxfi/umb/types"
)

func minimalTransitionSystem() manifest.TransitionSystem {
	return manifest.TransitionSystem{
		Time:             manifest.Discrete,
		NumStates:        3,
		NumInitialStates: 1,
		NumChoices:       2,
	}
}

func roundTrip(t *testing.T, raw *Raw) *Raw {
	t.Helper()
	members, err := StoreMembers(raw)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, archive.WriteTo(&buf, members, archive.None))

	a, err := archive.ReadFrom(&buf)
	require.NoError(t, err)

	got, warnings, err := LoadArchive(a, nil)
	require.NoError(t, err)
	require.Empty(t, warnings)
	return got
}

func TestLoadStoreMinimalRoundTrip(t *testing.T) {
	raw := &Raw{
		Index: &manifest.Index{
			FormatVersion:    1,
			TransitionSystem: minimalTransitionSystem(),
		},
		InitialStates: []bool{true, false, false},
	}

	got := roundTrip(t, raw)
	require.Equal(t, raw.InitialStates, got.InitialStates)
	require.Equal(t, raw.Index.TransitionSystem.NumStates, got.Index.TransitionSystem.NumStates)
}

func TestLoadStoreStructuralCsrRoundTrip(t *testing.T) {
	ts := minimalTransitionSystem()
	ts.NumBranches = 3

	raw := &Raw{
		Index: &manifest.Index{
			FormatVersion:    1,
			TransitionSystem: ts,
		},
		InitialStates:  []bool{true, false, false},
		StateToChoice:  []uint64{0, 1, 2, 2},
		ChoiceToBranch: []uint64{0, 2, 3},
		BranchToTarget: []uint64{1, 2, 0},
	}

	got := roundTrip(t, raw)
	require.Equal(t, raw.StateToChoice, got.StateToChoice)
	require.Equal(t, raw.ChoiceToBranch, got.ChoiceToBranch)
	require.Equal(t, raw.BranchToTarget, got.BranchToTarget)
}

// S4 — probabilities use a rational type, forcing a chunk CSR since not
// every rational term is the standard width.
func TestLoadStoreBranchProbabilitiesWithCsr(t *testing.T) {
	ts := minimalTransitionSystem()
	ts.NumBranches = 3
	rationalType := types.Rational
	ts.BranchProbabilityType = &rationalType

	raw := &Raw{
		Index: &manifest.Index{
			FormatVersion:    1,
			TransitionSystem: ts,
		},
		InitialStates: []bool{true, false, false},
		BranchProbabilities: []interface{}{
			big.NewRat(1, 2),
			big.NewRat(1, 3),
			new(big.Rat).SetFrac(new(big.Int).Lsh(big.NewInt(1), 70), big.NewInt(3)),
		},
	}

	members, err := StoreMembers(raw)
	require.NoError(t, err)
	require.Contains(t, members, pathBranchProbabilities)
	require.Contains(t, members, pathBranchToProbability, "variable-width rationals require a chunk CSR")

	got := roundTrip(t, raw)
	require.Len(t, got.BranchProbabilities, 3)
	for i, want := range raw.BranchProbabilities {
		require.Equal(t, want.(*big.Rat).RatString(), got.BranchProbabilities[i].(*big.Rat).RatString())
	}
}

func TestLoadStoreExitRatesRespectsMarkovianStates(t *testing.T) {
	ts := minimalTransitionSystem()
	doubleType := types.Double
	ts.ExitRateType = &doubleType

	raw := &Raw{
		Index: &manifest.Index{
			FormatVersion:    1,
			TransitionSystem: ts,
		},
		InitialStates:   []bool{true, false, false},
		MarkovianStates: []bool{true, false, true},
		ExitRates:       []interface{}{1.5, 2.5},
	}

	got := roundTrip(t, raw)
	require.Equal(t, raw.MarkovianStates, got.MarkovianStates)
	require.Equal(t, raw.ExitRates, got.ExitRates)
}

func TestLoadStoreAnnotationsRoundTrip(t *testing.T) {
	boolType := types.Bool
	raw := &Raw{
		Index: &manifest.Index{
			FormatVersion:    1,
			TransitionSystem: minimalTransitionSystem(),
			Annotations: &manifest.Annotations{
				Aps: map[string]manifest.Annotation{
					"goal": {
						AppliesTo: []manifest.ObservationsApplyTo{manifest.AppliesToStates},
						Type:      &boolType,
					},
				},
			},
		},
		InitialStates: []bool{true, false, false},
		Annotations: map[string]map[string]map[string][]interface{}{
			"aps": {
				"goal": {
					"states": {true, false, true},
				},
			},
		},
	}

	got := roundTrip(t, raw)
	require.Equal(t, raw.Annotations["aps"]["goal"]["states"], got.Annotations["aps"]["goal"]["states"])
}

func TestLoadMissingRequiredFileFails(t *testing.T) {
	members := map[string][]byte{pathIndex: mustEmit(t, minimalTransitionSystem())}
	var buf bytes.Buffer
	require.NoError(t, archive.WriteTo(&buf, members, archive.None))
	a, err := archive.ReadFrom(&buf)
	require.NoError(t, err)

	_, _, err = LoadArchive(a, nil)
	require.ErrorIs(t, err, ErrMissingFile)
}

func TestLoadWarnsOnUnknownMember(t *testing.T) {
	raw := &Raw{
		Index: &manifest.Index{
			FormatVersion:    1,
			TransitionSystem: minimalTransitionSystem(),
		},
		InitialStates: []bool{true, false, false},
	}
	members, err := StoreMembers(raw)
	require.NoError(t, err)
	members["mystery.bin"] = []byte{0xff}

	var buf bytes.Buffer
	require.NoError(t, archive.WriteTo(&buf, members, archive.None))
	a, err := archive.ReadFrom(&buf)
	require.NoError(t, err)

	_, warnings, err := LoadArchive(a, nil)
	require.NoError(t, err)
	require.Contains(t, warnings, "mystery.bin")
}

func mustEmit(t *testing.T, ts manifest.TransitionSystem) []byte {
	t.Helper()
	data, err := manifest.Emit(&manifest.Index{FormatVersion: 1, TransitionSystem: ts})
	require.NoError(t, err)
	return data
}
