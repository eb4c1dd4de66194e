// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ats

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/umb/manifest"
	"github.com/luxfi/umb/types"
)

// buildLinearChain builds a 3-state discrete chain 0 -> 1 -> 2 (self
// loop at 2), one choice and one branch per state, matching the shape
// of scenario S2's grid (simplified to a line).
func buildLinearChain(t *testing.T) *ATS {
	t.Helper()
	b := NewBuilder().WithTime(manifest.Discrete)
	b.AddState(true).AddChoice().AddBranch(1, nil)
	b.AddState(false).AddChoice().AddBranch(2, nil)
	b.AddState(false).AddChoice().AddBranch(2, nil)
	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func TestBuilderLinearChain(t *testing.T) {
	a := buildLinearChain(t)
	require.Equal(t, uint64(3), a.NumStates)
	require.Equal(t, uint64(3), a.NumChoices)
	require.Equal(t, uint64(3), a.NumBranches)
	require.Equal(t, []uint64{0}, a.InitialStates())

	r, err := a.ChoiceRange(1)
	require.NoError(t, err)
	require.Equal(t, uint64(1), r.Start)
	require.Equal(t, uint64(2), r.End)

	target, err := a.BranchTarget(2)
	require.NoError(t, err)
	require.Equal(t, uint64(2), target)

	require.Equal(t, big.NewRat(1, 1), a.BranchProbabilityOf(0))
}

func TestBuilderRejectsChoiceWithoutState(t *testing.T) {
	b := NewBuilder()
	b.AddChoice()
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInvariantViolated)
}

func TestBuilderMultiPlayerGame(t *testing.T) {
	b := NewBuilder().WithPlayers(2)
	b.AddState(true).AddPlayer(0).AddChoice().AddBranch(1, nil)
	b.AddState(false).AddPlayer(1).AddChoice().AddBranch(0, nil)
	a, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, []uint32{0, 1}, a.StateToPlayer)
}

func TestBuilderMultiPlayerRejectsOutOfRangePlayer(t *testing.T) {
	b := NewBuilder().WithPlayers(2)
	b.AddState(true).AddPlayer(5)
	_, err := b.Build()
	require.ErrorIs(t, err, ErrInvariantViolated)
}

func TestBuilderRationalBranchProbabilities(t *testing.T) {
	rationalType := types.Rational
	b := NewBuilder().WithBranchProbabilityType(rationalType)
	b.AddState(true).AddChoice().
		AddBranch(1, big.NewRat(1, 2)).
		AddBranch(2, big.NewRat(1, 2))
	b.AddState(false).AddChoice().AddBranch(1, big.NewRat(1, 1))
	b.AddState(false).AddChoice().AddBranch(2, big.NewRat(1, 1))
	a, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, big.NewRat(1, 2), a.BranchProbabilityOf(0))
	require.Equal(t, big.NewRat(1, 1), a.BranchProbabilityOf(2))
}

func TestBuilderExitRatesRequireMarkovianStates(t *testing.T) {
	doubleType := types.Double
	b := NewBuilder().WithTime(manifest.UrgentStochastic).WithExitRateType(doubleType)
	b.AddState(true).AddMarkovian(true).AddExitRate(1.5).AddChoice().AddBranch(1, nil)
	b.AddState(false).AddMarkovian(false).AddChoice().AddBranch(0, nil)
	a, err := b.Build()
	require.NoError(t, err)
	require.Equal(t, []bool{true, false}, a.StateIsMarkovian)
	require.Equal(t, []interface{}{1.5}, a.StateExitRate)
}

func TestBuilderAnnotationsValidateEntityCount(t *testing.T) {
	b := NewBuilder()
	b.AddState(true).AddChoice().AddBranch(0, nil)
	b.AddState(false).AddChoice().AddBranch(1, nil)

	ann, err := NewAtomicPropositionAnnotation("goal", map[manifest.ObservationsApplyTo][]interface{}{
		manifest.AppliesToStates: {false, true, false}, // wrong length: 3 vs 2 states
	})
	require.NoError(t, err)
	b.AddAP(ann)

	_, err = b.Build()
	require.ErrorIs(t, err, ErrInvariantViolated)
}

func TestBuilderObservationAnnotationRejectsOutOfRangeValue(t *testing.T) {
	_, err := NewObservationAnnotation(3, map[manifest.ObservationsApplyTo][]uint64{
		manifest.AppliesToStates: {0, 1, 3},
	})
	require.Error(t, err)
}
