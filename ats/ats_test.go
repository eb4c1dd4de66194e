// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ats

import (
	"bytes"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/umb/archive"
	"github.com/luxfi/umb/manifest"
	"github.com/luxfi/umb/types"
	"github.com/luxfi/umb/umbio"
)

func roundTripViaArchive(t *testing.T, a *ATS) *ATS {
	t.Helper()
	raw, err := a.ToRaw()
	require.NoError(t, err)

	members, err := umbio.StoreMembers(raw)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, archive.WriteTo(&buf, members, archive.None))

	arc, err := archive.ReadFrom(&buf)
	require.NoError(t, err)

	loaded, warnings, err := umbio.LoadArchive(arc, nil)
	require.NoError(t, err)
	require.Empty(t, warnings)

	got, err := FromRaw(loaded)
	require.NoError(t, err)
	return got
}

// S3-flavored random walk: 5 states in a line, uniform choice of two
// branches (left/right), with an "is_terminal" AP and an "is_odd" AP,
// plus a POMDP-style observation annotation (state mod 3).
func buildRandomWalk(t *testing.T) *ATS {
	t.Helper()
	rationalType := types.Rational
	b := NewBuilder().WithTime(manifest.Stochastic).WithBranchProbabilityType(rationalType)

	const n = 5
	for i := 0; i < n; i++ {
		b.AddState(i == n/2) // middle state is initial
		b.AddChoice()
		left, right := i-1, i+1
		if left < 0 {
			left = 0
		}
		if right >= n {
			right = n - 1
		}
		b.AddBranch(uint64(left), big.NewRat(1, 2))
		b.AddBranch(uint64(right), big.NewRat(1, 2))
	}

	terminal := make([]interface{}, n)
	odd := make([]interface{}, n)
	observations := make([]uint64, n)
	slipPenalty := make([]interface{}, n)
	for i := 0; i < n; i++ {
		terminal[i] = i == 0 || i == n-1
		odd[i] = i%2 == 1
		observations[i] = uint64(i % 3)
		if i == 0 || i == n-1 {
			slipPenalty[i] = -10.0
		} else {
			slipPenalty[i] = 0.0
		}
	}
	isTerminal, err := NewAtomicPropositionAnnotation("is_terminal", map[manifest.ObservationsApplyTo][]interface{}{
		manifest.AppliesToStates: terminal,
	})
	require.NoError(t, err)
	isOdd, err := NewAtomicPropositionAnnotation("is_odd", map[manifest.ObservationsApplyTo][]interface{}{
		manifest.AppliesToStates: odd,
	})
	require.NoError(t, err)
	wallPenalty, err := NewRewardAnnotation("wall_penalty", types.Double, map[manifest.ObservationsApplyTo][]interface{}{
		manifest.AppliesToStates: slipPenalty,
	})
	require.NoError(t, err)
	obs, err := NewObservationAnnotation(3, map[manifest.ObservationsApplyTo][]uint64{
		manifest.AppliesToStates: observations,
	})
	require.NoError(t, err)

	b.AddAP(isTerminal).AddAP(isOdd).AddReward(wallPenalty).SetObservations(obs)

	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func TestRandomWalkRoundTrip(t *testing.T) {
	a := buildRandomWalk(t)
	got := roundTripViaArchive(t, a)

	require.Equal(t, a.NumStates, got.NumStates)
	require.Equal(t, a.StateIsInitial, got.StateIsInitial)
	require.Equal(t, a.Aps["is_terminal"].Values[manifest.AppliesToStates], got.Aps["is_terminal"].Values[manifest.AppliesToStates])
	require.Equal(t, a.Aps["is_odd"].Values[manifest.AppliesToStates], got.Aps["is_odd"].Values[manifest.AppliesToStates])
	require.Equal(t, a.Rewards["wall_penalty"].Values[manifest.AppliesToStates], got.Rewards["wall_penalty"].Values[manifest.AppliesToStates])

	// Observation values never round-trip through the container (see
	// DESIGN.md "Open Questions resolved (v)"); only the count does.
	require.NotNil(t, got.Observations)
	require.Equal(t, uint64(3), got.Observations.NumObservations)
	require.Empty(t, got.Observations.Values)

	for i := 0; i < int(a.NumBranches); i++ {
		want := a.BranchProbabilityOf(uint64(i)).(*big.Rat)
		gotP := got.BranchProbabilityOf(uint64(i)).(*big.Rat)
		require.Equal(t, want.RatString(), gotP.RatString())
	}
}

// S4-flavored multi-player game: three players, explicit state-to-player
// vector, mixed branch probabilities where one rational's numerator
// overflows the standard 8-byte term width, forcing a chunk CSR rather
// than the standard fixed 16-byte element width.
func buildMultiPlayerGame(t *testing.T) *ATS {
	t.Helper()
	rationalType := types.Rational
	b := NewBuilder().WithTime(manifest.Discrete).WithPlayers(3).WithBranchProbabilityType(rationalType)

	b.AddState(true).AddPlayer(0)
	b.AddChoice().AddBranch(1, big.NewRat(1, 2)).AddBranch(2, big.NewRat(1, 2))
	b.AddState(false).AddPlayer(1)
	huge, ok := new(big.Rat).SetString("123456789012345678901234567890/99999999999999")
	require.True(t, ok)
	b.AddChoice().AddBranch(2, huge)
	b.AddState(false).AddPlayer(2)
	b.AddChoice().AddBranch(0, big.NewRat(1, 1))

	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func TestMultiPlayerGameRoundTrip(t *testing.T) {
	a := buildMultiPlayerGame(t)

	raw, err := a.ToRaw()
	require.NoError(t, err)
	members, err := umbio.StoreMembers(raw)
	require.NoError(t, err)
	require.Contains(t, members, "branch-probabilities.bin")
	require.Contains(t, members, "branch-to-probability.bin")

	got := roundTripViaArchive(t, a)
	require.Equal(t, a.StateToPlayer, got.StateToPlayer)
	for i := 0; i < int(a.NumBranches); i++ {
		want := a.BranchProbabilityOf(uint64(i)).(*big.Rat)
		gotP := got.BranchProbabilityOf(uint64(i)).(*big.Rat)
		require.Equal(t, want.RatString(), gotP.RatString())
	}
}

// S5-flavored urgent-stochastic CTMC: three states, one non-Markovian
// (an urgent, instantaneous state), exit rates of type rational
// recorded only for the Markovian states. The rates fit the standard
// width, so no state-to-exit-rate CSR is written.
func buildUrgentStochastic(t *testing.T) *ATS {
	t.Helper()
	rationalType := types.Rational
	b := NewBuilder().WithTime(manifest.UrgentStochastic).WithExitRateType(rationalType)

	b.AddState(true).AddMarkovian(true).AddExitRate(big.NewRat(2, 1))
	b.AddChoice().AddBranch(1, nil)
	b.AddState(false).AddMarkovian(false)
	b.AddChoice().AddBranch(2, nil)
	b.AddState(false).AddMarkovian(true).AddExitRate(big.NewRat(1, 2))
	b.AddChoice().AddBranch(2, nil)

	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func TestUrgentStochasticRoundTrip(t *testing.T) {
	a := buildUrgentStochastic(t)
	got := roundTripViaArchive(t, a)

	require.Equal(t, a.StateIsMarkovian, got.StateIsMarkovian)
	require.Equal(t, a.StateExitRate, got.StateExitRate)
}

// S2-flavored grid ATS: a 3x3 grid, "i" marks the single initial cell,
// "g" a goal cell, "x" an obstacle. Every non-obstacle cell gets four
// directional choices (up/down/left/right), each a successor branch of
// probability 9/10 plus a self-loop of 1/10, or an all-self-loop choice
// (probability 1) when the target is obstructed or out of bounds. Adds
// an AP "goal" and a reward "step_cost" of 1 per choice.
func buildGridATS(t *testing.T) *ATS {
	t.Helper()
	grid := []string{
		"i.x",
		"...",
		".xg",
	}
	rows, cols := len(grid), len(grid[0])
	idx := func(r, c int) int { return r*cols + c }
	n := rows * cols

	rationalType := types.Rational
	b := NewBuilder().WithTime(manifest.Stochastic).WithBranchProbabilityType(rationalType)

	type delta struct{ dr, dc int }
	dirs := []delta{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} // up, down, left, right

	goal := make([]interface{}, n)
	stepCost := make([]interface{}, 0)
	var initial int
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cell := grid[r][c]
			goal[idx(r, c)] = cell == 'g'
			if cell == 'i' {
				initial = idx(r, c)
			}
		}
	}

	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			self := idx(r, c)
			obstacle := grid[r][c] == 'x'
			b.AddState(self == initial)
			if obstacle {
				b.AddChoice().AddBranch(uint64(self), big.NewRat(1, 1))
				stepCost = append(stepCost, 1.0)
				continue
			}
			for _, d := range dirs {
				nr, nc := r+d.dr, c+d.dc
				target := self
				if nr >= 0 && nr < rows && nc >= 0 && nc < cols && grid[nr][nc] != 'x' {
					target = idx(nr, nc)
				}
				b.AddChoice()
				if target == self {
					b.AddBranch(uint64(self), big.NewRat(1, 1))
				} else {
					b.AddBranch(uint64(target), big.NewRat(9, 10)).AddBranch(uint64(self), big.NewRat(1, 10))
				}
				stepCost = append(stepCost, 1.0)
			}
		}
	}

	goalAP, err := NewAtomicPropositionAnnotation("goal", map[manifest.ObservationsApplyTo][]interface{}{
		manifest.AppliesToStates: goal,
	})
	require.NoError(t, err)
	stepCostReward, err := NewRewardAnnotation("step_cost", types.Double, map[manifest.ObservationsApplyTo][]interface{}{
		manifest.AppliesToChoices: stepCost,
	})
	require.NoError(t, err)
	b.AddAP(goalAP).AddReward(stepCostReward)

	a, err := b.Build()
	require.NoError(t, err)
	return a
}

func TestGridATSRoundTrip(t *testing.T) {
	a := buildGridATS(t)
	got := roundTripViaArchive(t, a)

	require.Equal(t, a.NumStates, got.NumStates)
	require.Equal(t, a.NumChoices, got.NumChoices)
	require.Equal(t, a.StateIsInitial, got.StateIsInitial)
	require.Equal(t, a.Aps["goal"].Values[manifest.AppliesToStates], got.Aps["goal"].Values[manifest.AppliesToStates])
	require.Equal(t, a.Rewards["step_cost"].Values[manifest.AppliesToChoices], got.Rewards["step_cost"].Values[manifest.AppliesToChoices])

	for i := 0; i < int(a.NumBranches); i++ {
		want := a.BranchProbabilityOf(uint64(i)).(*big.Rat)
		gotP := got.BranchProbabilityOf(uint64(i)).(*big.Rat)
		require.Equal(t, want.RatString(), gotP.RatString())
	}
}

func TestValidateCatchesMultipleViolations(t *testing.T) {
	a := &ATS{
		NumStates:      2,
		StateIsInitial: []bool{true, false, false}, // wrong length
		NumPlayers:     2,
		StateToPlayer:  []uint32{9}, // wrong length AND out of range
	}
	err := a.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "2 invariant violations found")
	require.Contains(t, err.Error(), "state-is-initial")
	require.Contains(t, err.Error(), "state-to-player")
}
