// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package manifest implements the index.json schema of spec.md §4.7:
// strict parsing of the known shape with enum validation, an escape
// hatch that preserves unknown keys verbatim, and null-pruning
// emission.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/luxfi/umb/types"
)

// Sentinel error kinds, named after the *SchemaViolation* row of spec.md §7.
var (
	ErrMissingKey  = errors.New("missing required manifest key")
	ErrInvalidEnum = errors.New("invalid enumerated value")
)

// TimeKind enumerates transition-system.time.
type TimeKind string

// Allowed TimeKind values.
const (
	Discrete         TimeKind = "discrete"
	Stochastic       TimeKind = "stochastic"
	UrgentStochastic TimeKind = "urgent-stochastic"
)

func (t TimeKind) valid() bool {
	switch t {
	case Discrete, Stochastic, UrgentStochastic:
		return true
	}
	return false
}

// ObservationsApplyTo enumerates transition-system.observations-apply-to.
type ObservationsApplyTo string

// Allowed ObservationsApplyTo values.
const (
	AppliesToStates   ObservationsApplyTo = "states"
	AppliesToChoices  ObservationsApplyTo = "choices"
	AppliesToBranches ObservationsApplyTo = "branches"
)

func (a ObservationsApplyTo) valid() bool {
	switch a {
	case AppliesToStates, AppliesToChoices, AppliesToBranches:
		return true
	}
	return false
}

// weightTypes are the common types allowed for branch-probability-type
// and exit-rate-type.
var weightTypes = map[types.CommonType]bool{
	types.Double:           true,
	types.Rational:         true,
	types.DoubleInterval:   true,
	types.RationalInterval: true,
}

// annotationTypes are the common types allowed for Annotation.Type.
var annotationTypes = map[types.CommonType]bool{
	types.Bool:             true,
	types.Double:           true,
	types.Rational:         true,
	types.DoubleInterval:   true,
	types.RationalInterval: true,
	types.String:           true,
}

// ModelData is the optional model-data top-level section.
type ModelData struct {
	Name        *string  `json:"name,omitempty"`
	Version     *string  `json:"version,omitempty"`
	Authors     []string `json:"authors,omitempty"`
	Description *string  `json:"description,omitempty"`
	Comment     *string  `json:"comment,omitempty"`
	Doi         *string  `json:"doi,omitempty"`
	URL         *string  `json:"url,omitempty"`
}

// FileData is the optional file-data top-level section.
type FileData struct {
	Tool         *string         `json:"tool,omitempty"`
	ToolVersion  *string         `json:"tool-version,omitempty"`
	CreationDate *uint64         `json:"creation-date,omitempty"`
	Parameters   json.RawMessage `json:"parameters,omitempty"`
}

// TransitionSystem is the required transition-system top-level section.
type TransitionSystem struct {
	Time                  TimeKind             `json:"time"`
	NumPlayers            uint64               `json:"#players"`
	NumStates             uint64               `json:"#states"`
	NumInitialStates      uint64               `json:"#initial-states"`
	NumChoices            uint64               `json:"#choices"`
	NumChoiceActions      uint64               `json:"#choice-actions"`
	NumBranches           uint64               `json:"#branches"`
	NumBranchActions      uint64               `json:"#branch-actions"`
	NumObservations       uint64               `json:"#observations"`
	ObservationsApplyTo   *ObservationsApplyTo `json:"observations-apply-to,omitempty"`
	BranchProbabilityType *types.CommonType    `json:"branch-probability-type,omitempty"`
	ExitRateType          *types.CommonType    `json:"exit-rate-type,omitempty"`
}

// Annotation describes one reward or atomic-proposition annotation
// under the manifest's annotations section.
type Annotation struct {
	Alias       *string               `json:"alias,omitempty"`
	Description *string               `json:"description,omitempty"`
	AppliesTo   []ObservationsApplyTo `json:"applies-to,omitempty"`
	Type        *types.CommonType     `json:"type,omitempty"`
	Lower       *float64              `json:"lower,omitempty"`
	Upper       *float64              `json:"upper,omitempty"`
}

// Annotations is the optional annotations top-level section.
type Annotations struct {
	Rewards map[string]Annotation `json:"rewards,omitempty"`
	Aps     map[string]Annotation `json:"aps,omitempty"`
}

// Variable is one element of state-valuations.variables: either a
// Padding or an Attribute, distinguished on the wire by a "kind" tag.
type Variable struct {
	Kind   string           `json:"kind"`
	Bits   uint             `json:"bits,omitempty"`
	Name   string           `json:"name,omitempty"`
	Type   types.CommonType `json:"type,omitempty"`
	Size   uint             `json:"size,omitempty"`
	Lower  *float64         `json:"lower,omitempty"`
	Upper  *float64         `json:"upper,omitempty"`
	Offset uint             `json:"offset,omitempty"`
}

const (
	variableKindPadding   = "padding"
	variableKindAttribute = "attribute"
)

// ToField converts a manifest Variable into a types.Field for
// construction of a types.StructType.
func (v Variable) ToField() (types.Field, error) {
	switch v.Kind {
	case variableKindPadding:
		return types.Padding{Bits: v.Bits}, nil
	case variableKindAttribute:
		return types.Attribute{Name: v.Name, Type: v.Type, Size: v.Size, Lower: v.Lower, Upper: v.Upper, Offset: v.Offset}, nil
	default:
		return nil, fmt.Errorf("%w: state-valuations variable kind %q", ErrInvalidEnum, v.Kind)
	}
}

// VariableFromField is the inverse of ToField.
func VariableFromField(f types.Field) (Variable, error) {
	switch v := f.(type) {
	case types.Padding:
		return Variable{Kind: variableKindPadding, Bits: v.Bits}, nil
	case types.Attribute:
		return Variable{Kind: variableKindAttribute, Name: v.Name, Type: v.Type, Size: v.Size, Lower: v.Lower, Upper: v.Upper, Offset: v.Offset}, nil
	default:
		return Variable{}, fmt.Errorf("%w: unrecognized struct field kind %T", ErrInvalidEnum, f)
	}
}

// StateValuations is the optional state-valuations top-level section.
type StateValuations struct {
	Alignment uint       `json:"alignment"`
	Variables []Variable `json:"variables"`
}

// Index is the full index.json document of spec.md §4.7.
type Index struct {
	FormatVersion    uint64           `json:"format-version"`
	FormatRevision   uint64           `json:"format-revision"`
	ModelData        *ModelData       `json:"model-data,omitempty"`
	FileData         *FileData        `json:"file-data,omitempty"`
	TransitionSystem TransitionSystem `json:"transition-system"`
	Annotations      *Annotations     `json:"annotations,omitempty"`
	StateValuations  *StateValuations `json:"state-valuations,omitempty"`

	// Extra holds unknown top-level keys, preserved verbatim across a
	// parse/emit round-trip per spec.md §4.7 ("unknown top-level keys
	// log a warning and are preserved").
	Extra map[string]json.RawMessage `json:"-"`
}

// knownTopLevelKeys mirrors the json tags above, used to split an
// incoming object into known fields and an Extra bag.
var knownTopLevelKeys = map[string]bool{
	"format-version":    true,
	"format-revision":   true,
	"model-data":        true,
	"file-data":         true,
	"transition-system": true,
	"annotations":       true,
	"state-valuations":  true,
}

// Parse decodes raw index.json bytes into an Index, validating
// enumerations and non-negativity, and returns human-readable warnings
// for unknown top-level keys (spec.md §4.7, §7 "UnknownMember"-style
// policy applied to manifest keys instead of archive members).
func Parse(data []byte) (*Index, []string, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("manifest: %w", err)
	}

	var out Index
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, nil, fmt.Errorf("manifest: %w", err)
	}

	var warnings []string
	extra := map[string]json.RawMessage{}
	for k, v := range raw {
		if !knownTopLevelKeys[k] {
			extra[k] = v
			warnings = append(warnings, fmt.Sprintf("manifest: unknown top-level key %q preserved", k))
		}
	}
	if len(extra) > 0 {
		out.Extra = extra
	}

	if _, ok := raw["transition-system"]; !ok {
		return nil, warnings, fmt.Errorf("%w: transition-system", ErrMissingKey)
	}
	if err := out.Validate(); err != nil {
		return nil, warnings, err
	}
	return &out, warnings, nil
}

// Validate checks the enum constraints spec.md §4.7 calls "strict"
// parsing. Non-negativity of the counts is enforced for free by their
// uint64 Go type: json.Unmarshal rejects a negative literal before
// Validate ever runs.
func (idx *Index) Validate() error {
	ts := idx.TransitionSystem
	if !ts.Time.valid() {
		return fmt.Errorf("%w: transition-system.time = %q", ErrInvalidEnum, ts.Time)
	}
	if ts.ObservationsApplyTo != nil && !ts.ObservationsApplyTo.valid() {
		return fmt.Errorf("%w: transition-system.observations-apply-to = %q", ErrInvalidEnum, *ts.ObservationsApplyTo)
	}
	if ts.BranchProbabilityType != nil && !weightTypes[*ts.BranchProbabilityType] {
		return fmt.Errorf("%w: transition-system.branch-probability-type = %q", ErrInvalidEnum, *ts.BranchProbabilityType)
	}
	if ts.ExitRateType != nil && !weightTypes[*ts.ExitRateType] {
		return fmt.Errorf("%w: transition-system.exit-rate-type = %q", ErrInvalidEnum, *ts.ExitRateType)
	}

	if idx.Annotations != nil {
		for name, a := range idx.Annotations.Rewards {
			if err := a.validate(); err != nil {
				return fmt.Errorf("annotations.rewards[%s]: %w", name, err)
			}
		}
		for name, a := range idx.Annotations.Aps {
			if err := a.validate(); err != nil {
				return fmt.Errorf("annotations.aps[%s]: %w", name, err)
			}
		}
	}
	return nil
}

func (a Annotation) validate() error {
	if a.AppliesTo != nil && len(a.AppliesTo) == 0 {
		return fmt.Errorf("%w: applies-to must be non-empty when present", ErrInvalidEnum)
	}
	for _, v := range a.AppliesTo {
		if !v.valid() {
			return fmt.Errorf("%w: applies-to entry %q", ErrInvalidEnum, v)
		}
	}
	if a.Type != nil && !annotationTypes[*a.Type] {
		return fmt.Errorf("%w: annotation type %q", ErrInvalidEnum, *a.Type)
	}
	return nil
}

// Emit serializes idx back to JSON, dropping null-valued keys
// recursively from objects (null elements inside arrays are preserved,
// per spec.md §4.7) and re-injecting any preserved Extra keys.
func Emit(idx *Index) ([]byte, error) {
	plain, err := json.Marshal(*idx)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(plain, &generic); err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	pruneNulls(generic)

	for k, v := range idx.Extra {
		var decoded interface{}
		if err := json.Unmarshal(v, &decoded); err != nil {
			return nil, fmt.Errorf("manifest: re-emitting extra key %q: %w", k, err)
		}
		generic[k] = decoded
	}

	out, err := json.Marshal(generic)
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return out, nil
}

// pruneNulls deletes null-valued keys from v (and nested objects)
// in place. Objects held in arrays are pruned too; null array
// elements themselves are kept.
func pruneNulls(v interface{}) {
	switch node := v.(type) {
	case map[string]interface{}:
		for k, val := range node {
			if val == nil {
				delete(node, k)
				continue
			}
			pruneNulls(val)
		}
	case []interface{}:
		for _, elem := range node {
			if m, ok := elem.(map[string]interface{}); ok {
				pruneNulls(m)
			}
		}
	}
}
