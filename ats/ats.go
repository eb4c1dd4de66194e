// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ats implements the structured façade over an annotated
// transition system (spec.md §3.4, §4.9): a validated, strongly-typed
// in-memory model plus the converters to and from the raw member table
// umbio reads and writes. Grounded on the reference implementation's
// ExplicitAts dataclass (_examples/original_source/umbi/ats/explicit_ats.py)
// for field shape and accessor defaults, and on the teacher's dag.DAG
// (_examples/luxfi-consensus/dag/dag.go) for the constructor+accessor
// surface. Unlike dag.DAG, ATS carries no mutex: spec.md §5 makes the
// in-memory ATS exclusively owned by its holder, so there is no
// concurrent-mutation case to guard against.
package ats

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/luxfi/umb/csr"
	"github.com/luxfi/umb/internal/wrappers"
	"github.com/luxfi/umb/manifest"
	"github.com/luxfi/umb/types"
)

// ModelInfo is the optional descriptive metadata of spec.md §4.7's
// model-data section.
type ModelInfo struct {
	Name        *string
	Version     *string
	Authors     []string
	Description *string
	Comment     *string
	Doi         *string
	URL         *string
}

// ATS is the structured, invariant-checked annotated transition system
// (spec.md §3.4). Zero value is not useful; build one with NewBuilder
// or ReadATS.
type ATS struct {
	ModelInfo  *ModelInfo
	Time       manifest.TimeKind
	NumPlayers uint64

	NumStates   uint64
	NumChoices  uint64
	NumBranches uint64

	StateIsInitial []bool
	StateToPlayer  []uint32 // nil unless NumPlayers > 1

	// StateToChoice/ChoiceToBranch are structural CSRs (spec.md §4.5).
	// Nil means the identity 1:1 range per entity (spec.md §3.4's
	// "defaults to a one-to-one range" fallback, ported from
	// ExplicitAts.state_choice_range/choice_branch_range).
	StateToChoice  []uint64
	ChoiceToBranch []uint64

	StateIsMarkovian []bool          // nil outside urgent-stochastic models
	ExitRateType     *types.CommonType
	StateExitRate    []interface{} // one entry per markovian state (or per state, absent markovian-states)

	NumChoiceActions uint64
	NumBranchActions uint64
	ChoiceToAction   []uint32
	ActionStrings    []string // choice-actions first, then branch-actions

	BranchToTarget        []uint64
	BranchProbabilityType *types.CommonType
	BranchProbability     []interface{} // defaults to 1 per branch when nil (ExplicitAts.get_branch_probability)

	Rewards map[string]*Annotation
	Aps     map[string]*Annotation

	Observations *ObservationAnnotation

	StateValuationType   *types.StructType
	StateValuations      []types.StructValue
}

// NumInitialStates returns the number of states flagged initial.
func (a *ATS) NumInitialStates() int {
	n := 0
	for _, b := range a.StateIsInitial {
		if b {
			n++
		}
	}
	return n
}

// InitialStates returns the indices of every initial state, in order.
func (a *ATS) InitialStates() []uint64 {
	out := make([]uint64, 0, a.NumInitialStates())
	for i, b := range a.StateIsInitial {
		if b {
			out = append(out, uint64(i))
		}
	}
	return out
}

// ChoiceRange returns the half-open range of choice ids belonging to
// state. Falls back to the identity range [state, state+1) when
// StateToChoice is absent, matching ExplicitAts.state_choice_range.
func (a *ATS) ChoiceRange(state uint64) (csr.Range, error) {
	if a.StateToChoice == nil {
		return csr.Range{Start: state, End: state + 1}, nil
	}
	return csr.RangeAt(a.StateToChoice, int(state))
}

// BranchRange returns the half-open range of branch ids belonging to
// choice, with the same identity fallback as ChoiceRange.
func (a *ATS) BranchRange(choice uint64) (csr.Range, error) {
	if a.ChoiceToBranch == nil {
		return csr.Range{Start: choice, End: choice + 1}, nil
	}
	return csr.RangeAt(a.ChoiceToBranch, int(choice))
}

// BranchTarget returns the target state of branch. Unlike probability,
// there is no default: a branch without a recorded target is a
// malformed model (ExplicitAts.get_branch_target: "branches must have
// targets").
func (a *ATS) BranchTarget(branch uint64) (uint64, error) {
	if a.BranchToTarget == nil || branch >= uint64(len(a.BranchToTarget)) {
		return 0, fmt.Errorf("%w: branch %d has no recorded target", ErrMissingTarget, branch)
	}
	return a.BranchToTarget[branch], nil
}

// BranchProbabilityOf returns the probability of branch, defaulting to
// the exact rational 1 when none was recorded (ExplicitAts.get_branch_probability).
func (a *ATS) BranchProbabilityOf(branch uint64) interface{} {
	if a.BranchProbability == nil || branch >= uint64(len(a.BranchProbability)) {
		return big.NewRat(1, 1)
	}
	return a.BranchProbability[branch]
}

// Reward returns the named reward annotation, or nil if undeclared.
func (a *ATS) Reward(name string) *Annotation { return a.Rewards[name] }

// AP returns the named atomic-proposition annotation, or nil if
// undeclared.
func (a *ATS) AP(name string) *Annotation { return a.Aps[name] }

// MarkovianStates reports, per state, whether it is a Markovian state
// (urgent-stochastic models only). Returns nil when the model declares
// no markovian-states bitvector (every state is Markovian, per
// spec.md §3.4's urgent-stochastic default).
func (a *ATS) MarkovianStates() []bool { return a.StateIsMarkovian }

// Sentinel errors for accessor/validation failures, named after
// spec.md §7's SchemaViolation category.
var (
	ErrMissingTarget     = errors.New("branch target missing")
	ErrInvariantViolated = errors.New("structural invariant violated")
)

// Validate checks every structural invariant of spec.md §3.4, collecting
// every violation found (not just the first) via internal/wrappers.Errs,
// mirroring ExplicitAts.validate()'s "raise with every broken check"
// style.
func (a *ATS) Validate() error {
	var errs wrappers.Errs

	ns, nc, nb := int(a.NumStates), int(a.NumChoices), int(a.NumBranches)

	if ns <= 0 {
		errs.Add(fmt.Errorf("%w: num-states must be positive, got %d", ErrInvariantViolated, ns))
	}
	if len(a.StateIsInitial) != ns {
		errs.Add(fmt.Errorf("%w: state-is-initial has %d entries, want %d", ErrInvariantViolated, len(a.StateIsInitial), ns))
	}

	if a.NumPlayers > 1 {
		if len(a.StateToPlayer) != ns {
			errs.Add(fmt.Errorf("%w: multi-player model requires state-to-player of length %d, got %d", ErrInvariantViolated, ns, len(a.StateToPlayer)))
		} else {
			for i, p := range a.StateToPlayer {
				if uint64(p) >= a.NumPlayers {
					errs.Add(fmt.Errorf("%w: state %d assigned to player %d, have %d players", ErrInvariantViolated, i, p, a.NumPlayers))
				}
			}
		}
	}

	if a.StateToChoice != nil {
		if err := csr.ValidateCsr(a.StateToChoice); err != nil {
			errs.Add(fmt.Errorf("state-to-choice: %w", err))
		} else if csr.Len(a.StateToChoice) != ns {
			errs.Add(fmt.Errorf("%w: state-to-choice describes %d states, want %d", ErrInvariantViolated, csr.Len(a.StateToChoice), ns))
		} else if last := a.StateToChoice[len(a.StateToChoice)-1]; int(last) != nc {
			errs.Add(fmt.Errorf("%w: state-to-choice ends at %d, want #choices %d", ErrInvariantViolated, last, nc))
		}
	}
	if a.ChoiceToBranch != nil {
		if err := csr.ValidateCsr(a.ChoiceToBranch); err != nil {
			errs.Add(fmt.Errorf("choice-to-branch: %w", err))
		} else if csr.Len(a.ChoiceToBranch) != nc {
			errs.Add(fmt.Errorf("%w: choice-to-branch describes %d choices, want %d", ErrInvariantViolated, csr.Len(a.ChoiceToBranch), nc))
		} else if last := a.ChoiceToBranch[len(a.ChoiceToBranch)-1]; int(last) != nb {
			errs.Add(fmt.Errorf("%w: choice-to-branch ends at %d, want #branches %d", ErrInvariantViolated, last, nb))
		}
	}

	if a.BranchToTarget != nil {
		if len(a.BranchToTarget) != nb {
			errs.Add(fmt.Errorf("%w: branch-to-target has %d entries, want %d", ErrInvariantViolated, len(a.BranchToTarget), nb))
		} else {
			for i, t := range a.BranchToTarget {
				if int(t) >= ns {
					errs.Add(fmt.Errorf("%w: branch %d targets state %d, have %d states", ErrInvariantViolated, i, t, ns))
				}
			}
		}
	}

	if a.StateIsMarkovian != nil && len(a.StateIsMarkovian) != ns {
		errs.Add(fmt.Errorf("%w: markovian-states has %d entries, want %d", ErrInvariantViolated, len(a.StateIsMarkovian), ns))
	}

	if a.ExitRateType != nil {
		want := ns
		if a.StateIsMarkovian != nil {
			want = 0
			for _, b := range a.StateIsMarkovian {
				if b {
					want++
				}
			}
		}
		if len(a.StateExitRate) != want {
			errs.Add(fmt.Errorf("%w: state-exit-rate has %d entries, want %d", ErrInvariantViolated, len(a.StateExitRate), want))
		}
	}

	if a.BranchProbabilityType != nil && a.BranchProbability != nil && len(a.BranchProbability) != nb {
		errs.Add(fmt.Errorf("%w: branch-probability has %d entries, want %d", ErrInvariantViolated, len(a.BranchProbability), nb))
	}

	for kind, set := range map[string]map[string]*Annotation{"rewards": a.Rewards, "aps": a.Aps} {
		for name, ann := range set {
			for apply, vs := range ann.Values {
				n, err := entityCountFor(apply, ns, nc, nb)
				if err != nil {
					errs.Add(fmt.Errorf("%s annotation %q: %w", kind, name, err))
					continue
				}
				if len(vs) != n {
					errs.Add(fmt.Errorf("%w: %s annotation %q for %s has %d entries, want %d", ErrInvariantViolated, kind, name, apply, len(vs), n))
				}
			}
		}
	}

	if a.Observations != nil {
		for apply, vs := range a.Observations.Values {
			n, err := entityCountFor(apply, ns, nc, nb)
			if err != nil {
				errs.Add(fmt.Errorf("observation annotation: %w", err))
				continue
			}
			if len(vs) != n {
				errs.Add(fmt.Errorf("%w: observation annotation for %s has %d entries, want %d", ErrInvariantViolated, apply, len(vs), n))
			}
		}
	}

	if a.StateValuationType != nil && len(a.StateValuations) != ns {
		errs.Add(fmt.Errorf("%w: state-valuations has %d entries, want %d", ErrInvariantViolated, len(a.StateValuations), ns))
	}

	return errs.Err()
}

func entityCountFor(apply manifest.ObservationsApplyTo, ns, nc, nb int) (int, error) {
	switch apply {
	case manifest.AppliesToStates:
		return ns, nil
	case manifest.AppliesToChoices:
		return nc, nil
	case manifest.AppliesToBranches:
		return nb, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvariantViolated, apply)
	}
}
