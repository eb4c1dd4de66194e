// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ats

import (
	"fmt"

	"github.com/luxfi/umb/internal/wrappers"
	"github.com/luxfi/umb/manifest"
	"github.com/luxfi/umb/types"
)

// Builder incrementally assembles an ATS, states/choices/branches at a
// time, the way a model generator walks its own state space. Every
// Add* method appends to a "current" cursor (the most recently added
// state/choice) and returns Builder itself for chaining; malformed
// calls (e.g. AddChoice before any AddState) are recorded as sticky
// errors via internal/wrappers.Errs and surfaced together at Build.
type Builder struct {
	errs wrappers.Errs

	modelInfo  *ModelInfo
	time       manifest.TimeKind
	numPlayers uint64

	stateIsInitial   []bool
	stateToPlayer    []uint32
	stateIsMarkovian []bool
	exitRateType     *types.CommonType
	stateExitRate    []interface{}

	stateChoiceCount  []uint64 // choices added per state so far
	choiceBranchCount []uint64 // branches added per choice so far

	numChoiceActions uint64
	numBranchActions uint64
	choiceToAction   []uint32
	actionStrings    []string

	branchToTarget        []uint64
	branchProbabilityType *types.CommonType
	branchProbability     []interface{}

	rewards      map[string]*Annotation
	aps          map[string]*Annotation
	observations *ObservationAnnotation

	stateValuationType *types.StructType
	stateValuations    []types.StructValue

	currentState  int
	currentChoice int
}

// NewBuilder returns an empty Builder. It takes no arguments; the time
// semantics default to manifest.Discrete and are changed with WithTime.
func NewBuilder() *Builder {
	return &Builder{time: manifest.Discrete, currentState: -1, currentChoice: -1}
}

// WithModelInfo attaches descriptive metadata and returns b.
func (b *Builder) WithModelInfo(info *ModelInfo) *Builder {
	b.modelInfo = info
	return b
}

// WithTime sets the transition-system time semantics and returns b.
func (b *Builder) WithTime(t manifest.TimeKind) *Builder {
	b.time = t
	return b
}

// WithPlayers declares the model as an n-player game and returns b.
func (b *Builder) WithPlayers(n uint64) *Builder {
	b.numPlayers = n
	return b
}

// WithExitRateType declares the weight type exit rates are recorded in
// and returns b; required before AddExitRate.
func (b *Builder) WithExitRateType(t types.CommonType) *Builder {
	b.exitRateType = &t
	return b
}

// WithBranchProbabilityType declares the weight type branch
// probabilities are recorded in and returns b.
func (b *Builder) WithBranchProbabilityType(t types.CommonType) *Builder {
	b.branchProbabilityType = &t
	return b
}

// WithStateValuationType declares the per-state struct layout and
// returns b; required before AddStateValuation.
func (b *Builder) WithStateValuationType(st *types.StructType) *Builder {
	b.stateValuationType = st
	return b
}

// AddState appends a new state, making it the current state for
// subsequent AddChoice/AddExitRate/AddPlayer/AddStateValuation calls.
// Returns b for chaining.
func (b *Builder) AddState(isInitial bool) *Builder {
	b.stateIsInitial = append(b.stateIsInitial, isInitial)
	b.stateChoiceCount = append(b.stateChoiceCount, 0)
	b.currentState = len(b.stateIsInitial) - 1
	return b
}

// AddPlayer assigns the current state to player, for multi-player
// models. Returns b.
func (b *Builder) AddPlayer(player uint32) *Builder {
	if err := b.requireState(); err != nil {
		b.errs.Add(err)
		return b
	}
	b.fillStateToPlayer()
	b.stateToPlayer[b.currentState] = player
	return b
}

// AddMarkovian flags the current state as Markovian (urgent-stochastic
// models). Returns b.
func (b *Builder) AddMarkovian(markovian bool) *Builder {
	if err := b.requireState(); err != nil {
		b.errs.Add(err)
		return b
	}
	b.fillStateIsMarkovian()
	b.stateIsMarkovian[b.currentState] = markovian
	return b
}

// AddExitRate records the current state's exit rate. WithExitRateType
// must be called first. Returns b.
func (b *Builder) AddExitRate(rate interface{}) *Builder {
	if err := b.requireState(); err != nil {
		b.errs.Add(err)
		return b
	}
	if b.exitRateType == nil {
		b.errs.Add(fmt.Errorf("%w: AddExitRate before WithExitRateType", ErrInvariantViolated))
		return b
	}
	b.stateExitRate = append(b.stateExitRate, rate)
	return b
}

// AddStateValuation records the current state's attribute valuation.
// WithStateValuationType must be called first. Returns b.
func (b *Builder) AddStateValuation(v types.StructValue) *Builder {
	if err := b.requireState(); err != nil {
		b.errs.Add(err)
		return b
	}
	if b.stateValuationType == nil {
		b.errs.Add(fmt.Errorf("%w: AddStateValuation before WithStateValuationType", ErrInvariantViolated))
		return b
	}
	b.stateValuations = append(b.stateValuations, v)
	return b
}

// AddChoice appends a new choice under the current state, making it the
// current choice for subsequent AddBranch calls. Returns b.
func (b *Builder) AddChoice() *Builder {
	if err := b.requireState(); err != nil {
		b.errs.Add(err)
		return b
	}
	b.stateChoiceCount[b.currentState]++
	b.choiceBranchCount = append(b.choiceBranchCount, 0)
	b.choiceToAction = append(b.choiceToAction, 0)
	b.currentChoice = len(b.choiceBranchCount) - 1
	return b
}

// AddChoiceAction sets the current choice's action id (an index into
// the shared choice/branch action-string space). Returns b.
func (b *Builder) AddChoiceAction(actionID uint32) *Builder {
	if err := b.requireChoice(); err != nil {
		b.errs.Add(err)
		return b
	}
	b.choiceToAction[b.currentChoice] = actionID
	return b
}

// SetActionStrings declares the action-id → display-string table,
// choice-actions first then branch-actions (spec.md §4.8), alongside
// the split between the two counts. Returns b.
func (b *Builder) SetActionStrings(strings []string, numChoiceActions, numBranchActions uint64) *Builder {
	b.actionStrings = strings
	b.numChoiceActions = numChoiceActions
	b.numBranchActions = numBranchActions
	return b
}

// AddBranch appends a branch under the current choice, targeting
// target with the given probability (nil defaults to 1 at read time).
// Returns b.
func (b *Builder) AddBranch(target uint64, probability interface{}) *Builder {
	if err := b.requireChoice(); err != nil {
		b.errs.Add(err)
		return b
	}
	b.choiceBranchCount[b.currentChoice]++
	b.branchToTarget = append(b.branchToTarget, target)
	if probability != nil {
		if b.branchProbabilityType == nil {
			b.errs.Add(fmt.Errorf("%w: AddBranch with probability before WithBranchProbabilityType", ErrInvariantViolated))
		} else {
			b.fillBranchProbability()
			b.branchProbability[len(b.branchToTarget)-1] = probability
		}
	}
	return b
}

// AddReward attaches ann to the model under the rewards section.
// Returns b.
func (b *Builder) AddReward(ann *Annotation) *Builder {
	if b.rewards == nil {
		b.rewards = map[string]*Annotation{}
	}
	b.rewards[ann.Name] = ann
	return b
}

// AddAP attaches ann to the model under the atomic-propositions
// section. Returns b.
func (b *Builder) AddAP(ann *Annotation) *Builder {
	if b.aps == nil {
		b.aps = map[string]*Annotation{}
	}
	b.aps[ann.Name] = ann
	return b
}

// SetObservations attaches the model's single observation annotation.
// Returns b.
func (b *Builder) SetObservations(o *ObservationAnnotation) *Builder {
	b.observations = o
	return b
}

func (b *Builder) requireState() error {
	if b.currentState < 0 {
		return fmt.Errorf("%w: no current state (call AddState first)", ErrInvariantViolated)
	}
	return nil
}

func (b *Builder) requireChoice() error {
	if b.currentChoice < 0 {
		return fmt.Errorf("%w: no current choice (call AddChoice first)", ErrInvariantViolated)
	}
	return nil
}

func (b *Builder) fillStateToPlayer() {
	if b.stateToPlayer == nil {
		b.stateToPlayer = make([]uint32, len(b.stateIsInitial))
	}
	for len(b.stateToPlayer) < len(b.stateIsInitial) {
		b.stateToPlayer = append(b.stateToPlayer, 0)
	}
}

func (b *Builder) fillStateIsMarkovian() {
	for len(b.stateIsMarkovian) < len(b.stateIsInitial) {
		b.stateIsMarkovian = append(b.stateIsMarkovian, true)
	}
}

func (b *Builder) fillBranchProbability() {
	for len(b.branchProbability) < len(b.branchToTarget) {
		b.branchProbability = append(b.branchProbability, nil)
	}
}

// csrFromCounts folds the per-state running counts into a CSR.
func csrFromCounts(counts []uint64) []uint64 {
	c := make([]uint64, len(counts)+1)
	for i, n := range counts {
		c[i+1] = c[i] + n
	}
	return c
}

// Build validates and returns the assembled ATS. Any error recorded by
// an Add*/With* call, plus every structural invariant violation found
// by (*ATS).Validate, is returned together.
func (b *Builder) Build() (*ATS, error) {
	a := &ATS{
		ModelInfo:  b.modelInfo,
		Time:       b.time,
		NumPlayers: b.numPlayers,

		NumStates:   uint64(len(b.stateIsInitial)),
		NumChoices:  uint64(len(b.choiceBranchCount)),
		NumBranches: uint64(len(b.branchToTarget)),

		StateIsInitial: b.stateIsInitial,
		StateToPlayer:  b.stateToPlayer,

		StateIsMarkovian: b.stateIsMarkovian,
		ExitRateType:     b.exitRateType,
		StateExitRate:    b.stateExitRate,

		NumChoiceActions: b.numChoiceActions,
		NumBranchActions: b.numBranchActions,
		ChoiceToAction:   b.choiceToAction,
		ActionStrings:    b.actionStrings,

		BranchToTarget:        b.branchToTarget,
		BranchProbabilityType: b.branchProbabilityType,
		BranchProbability:     b.branchProbability,

		Rewards:      b.rewards,
		Aps:          b.aps,
		Observations: b.observations,

		StateValuationType: b.stateValuationType,
		StateValuations:    b.stateValuations,
	}
	if len(b.stateChoiceCount) > 0 {
		a.StateToChoice = csrFromCounts(b.stateChoiceCount)
	}
	if len(b.choiceBranchCount) > 0 {
		a.ChoiceToBranch = csrFromCounts(b.choiceBranchCount)
	}

	if b.errs.Errored() {
		return nil, b.errs.Err()
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
