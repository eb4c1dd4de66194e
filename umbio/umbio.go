// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package umbio

import (
	"fmt"
	"math/big"

	"github.com/luxfi/umb/archive"
	"github.com/luxfi/umb/logx"
	"github.com/luxfi/umb/manifest"
	"github.com/luxfi/umb/metrics"
	"github.com/luxfi/umb/types"
	"github.com/luxfi/umb/vector"
)

// Raw is the decoded content of an UMB container: the manifest plus
// every declared member, resolved against the member-path table of
// spec.md §4.8. A nil slice/map means the member was absent from the
// archive and the manifest did not declare it.
type Raw struct {
	Index *manifest.Index

	InitialStates   []bool
	MarkovianStates []bool

	StateToChoice  []uint64 // structural CSR, domain states, range choice ids
	ChoiceToBranch []uint64 // structural CSR, domain choices, range branch ids

	StateToPlayer  []uint32
	ChoiceToAction []uint32
	BranchToTarget []uint64

	// ExitRates has one entry per markovian state (or per state, if
	// markovian-states is absent), typed per TransitionSystem.ExitRateType.
	ExitRates []interface{}

	// ActionStrings has one entry per declared action (choice- and
	// branch-actions combined, choice-actions first).
	ActionStrings []string

	// BranchProbabilities has one entry per branch, typed per
	// TransitionSystem.BranchProbabilityType.
	BranchProbabilities []interface{}

	// StateValuations has one entry per state, laid out per the
	// manifest's state-valuations struct type.
	StateValuations []types.StructValue

	// Annotations[kind][name][apply] holds one value per entity of the
	// apply target ("states", "choices", or "branches"), kind being
	// "rewards" or "aps".
	Annotations map[string]map[string]map[string][]interface{}
}

// Load reads an UMB container from path and decodes every member the
// manifest declares. Unknown archive members produce warnings, never a
// fatal error, per spec.md §7's UnknownMember policy.
func Load(path string, mc *metrics.Collectors) (*Raw, []string, error) {
	a, err := archive.Read(path)
	if err != nil {
		return nil, nil, err
	}
	return LoadArchive(a, mc)
}

// LoadArchive is Load over an already-opened *archive.Archive, split
// out so tests can build an in-memory archive without touching disk.
func LoadArchive(a *archive.Archive, mc *metrics.Collectors) (*Raw, []string, error) {
	logger := logx.New("umbio")

	data, ok := a.Get(pathIndex)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingFile, pathIndex)
	}
	idx, warnings, err := manifest.Parse(data)
	if err != nil {
		return nil, warnings, err
	}
	ts := idx.TransitionSystem

	raw := &Raw{Index: idx}

	raw.InitialStates, err = decodeRequiredBitvector(a, pathInitialStates, int(ts.NumStates))
	if err != nil {
		return nil, warnings, err
	}

	if a.Has(pathMarkovianStates) {
		raw.MarkovianStates, err = decodeRequiredBitvector(a, pathMarkovianStates, int(ts.NumStates))
		if err != nil {
			return nil, warnings, err
		}
	}

	if a.Has(pathStateToChoice) {
		raw.StateToChoice, err = decodeStructuralCsr(a, pathStateToChoice, int(ts.NumStates))
		if err != nil {
			return nil, warnings, err
		}
	}
	if a.Has(pathChoiceToBranch) {
		raw.ChoiceToBranch, err = decodeStructuralCsr(a, pathChoiceToBranch, int(ts.NumChoices))
		if err != nil {
			return nil, warnings, err
		}
	}

	if a.Has(pathStateToPlayer) {
		raw.StateToPlayer, err = decodeUint32Vector(a, pathStateToPlayer, int(ts.NumStates))
		if err != nil {
			return nil, warnings, err
		}
	}
	if a.Has(pathChoiceToAction) {
		raw.ChoiceToAction, err = decodeUint32Vector(a, pathChoiceToAction, int(ts.NumChoices))
		if err != nil {
			return nil, warnings, err
		}
	}
	if a.Has(pathBranchToTarget) {
		raw.BranchToTarget, err = decodeUint64Vector(a, pathBranchToTarget, int(ts.NumBranches))
		if err != nil {
			return nil, warnings, err
		}
	}

	if ts.ExitRateType != nil {
		n := int(ts.NumStates)
		if raw.MarkovianStates != nil {
			n = countTrue(raw.MarkovianStates)
		}
		raw.ExitRates, err = decodePairedVector(a, pathStateToExitRate, pathExitRates, n, *ts.ExitRateType)
		if err != nil {
			return nil, warnings, err
		}
	}

	if a.Has(pathActionStrings) || a.Has(pathActionToActionString) {
		n := int(ts.NumChoiceActions + ts.NumBranchActions)
		values, err := decodePairedVector(a, pathActionToActionString, pathActionStrings, n, types.String)
		if err != nil {
			return nil, warnings, err
		}
		raw.ActionStrings = make([]string, len(values))
		for i, v := range values {
			raw.ActionStrings[i] = v.(string)
		}
	}

	if ts.BranchProbabilityType != nil {
		raw.BranchProbabilities, err = decodePairedVector(a, pathBranchToProbability, pathBranchProbabilities, int(ts.NumBranches), *ts.BranchProbabilityType)
		if err != nil {
			return nil, warnings, err
		}
	}

	if idx.StateValuations != nil {
		st, err := structTypeFromManifest(idx.StateValuations)
		if err != nil {
			return nil, warnings, err
		}
		raw.StateValuations, err = decodeStructPairedVector(a, pathStateToValuation, pathStateValuations, int(ts.NumStates), st)
		if err != nil {
			return nil, warnings, err
		}
	}

	if idx.Annotations != nil {
		raw.Annotations = map[string]map[string]map[string][]interface{}{}
		for kind, set := range map[string]map[string]manifest.Annotation{
			annotationKindRewards: idx.Annotations.Rewards,
			annotationKindAps:     idx.Annotations.Aps,
		} {
			decoded, err := decodeAnnotationSet(a, kind, set, ts)
			if err != nil {
				return nil, warnings, err
			}
			if len(decoded) > 0 {
				raw.Annotations[kind] = decoded
			}
		}
	}

	unread := a.Unread()
	logx.WarnUnread(logger, "archive", unread)
	warnings = append(warnings, unread...)
	mc.ObserveUnreadMembers(len(unread))

	return raw, warnings, nil
}

func decodeAnnotationSet(a *archive.Archive, kind string, set map[string]manifest.Annotation, ts manifest.TransitionSystem) (map[string]map[string][]interface{}, error) {
	out := map[string]map[string][]interface{}{}
	for name, ann := range set {
		applies := ann.AppliesTo
		if len(applies) == 0 {
			continue
		}
		if ann.Type == nil {
			return nil, fmt.Errorf("%w: annotation %q has applies-to but no declared type", ErrMissingFile, name)
		}
		perApply := map[string][]interface{}{}
		for _, apply := range applies {
			n, err := entityCount(ts, apply)
			if err != nil {
				return nil, err
			}
			valuesPath := annotationValuesPath(kind, name, string(apply))
			csrPath := annotationCsrPath(kind, name, string(apply))
			values, err := decodePairedVector(a, csrPath, valuesPath, n, *ann.Type)
			if err != nil {
				return nil, err
			}
			perApply[string(apply)] = values
		}
		out[name] = perApply
	}
	return out, nil
}

func entityCount(ts manifest.TransitionSystem, apply manifest.ObservationsApplyTo) (int, error) {
	switch apply {
	case manifest.AppliesToStates:
		return int(ts.NumStates), nil
	case manifest.AppliesToChoices:
		return int(ts.NumChoices), nil
	case manifest.AppliesToBranches:
		return int(ts.NumBranches), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEntityCount, apply)
	}
}

func structTypeFromManifest(sv *manifest.StateValuations) (*types.StructType, error) {
	fields := make([]types.Field, len(sv.Variables))
	for i, v := range sv.Variables {
		f, err := v.ToField()
		if err != nil {
			return nil, err
		}
		fields[i] = f
	}
	return types.NewStructType(sv.Alignment, fields)
}

func countTrue(bits []bool) int {
	n := 0
	for _, b := range bits {
		if b {
			n++
		}
	}
	return n
}

// --- fixed-type vector helpers, all grounded on vector.Encode/Decode ---

func decodeRequiredBitvector(a *archive.Archive, path string, n int) ([]bool, error) {
	payload, ok := a.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}
	values, err := vector.Decode(payload, nil, n, types.Bool)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = v.(bool)
	}
	return out, nil
}

func decodeUint32Vector(a *archive.Archive, path string, n int) ([]uint32, error) {
	payload, ok := a.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}
	values, err := vector.Decode(payload, nil, n, types.Uint32)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make([]uint32, len(values))
	for i, v := range values {
		out[i] = uint32(v.(*big.Int).Uint64())
	}
	return out, nil
}

func decodeUint64Vector(a *archive.Archive, path string, n int) ([]uint64, error) {
	payload, ok := a.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}
	values, err := vector.Decode(payload, nil, n, types.Uint64)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	out := make([]uint64, len(values))
	for i, v := range values {
		out[i] = v.(*big.Int).Uint64()
	}
	return out, nil
}

// decodeStructuralCsr decodes a plain vector<uint64> of length
// n+1 describing the CSR of a structural indirection axis
// (state-to-choice.bin, choice-to-branch.bin — spec.md §4.5, §4.8).
func decodeStructuralCsr(a *archive.Archive, path string, n int) ([]uint64, error) {
	return decodeUint64Vector(a, path, n+1)
}

// decodePairedVector decodes one of the "CSR / typed bytes" paired
// members of spec.md §4.8. The CSR file is mandatory when t always
// requires one (vector.HasCsr — string), optional when t's element
// width can vary (vector.MaybeCsr — rational, rational-interval: read
// it when present, fall back to equal-width chunking of the standard
// size when absent, per scenario S4 — "the probabilities payload uses
// a CSR because not all rationals are the standard 16-byte width" —
// versus S2/S3, whose standard-width rationals carry none), and
// otherwise must never be present. Struct-typed members go through
// decodeStructPairedVector instead, which carries its own layout.
func decodePairedVector(a *archive.Archive, csrPath, payloadPath string, n int, t types.CommonType) ([]interface{}, error) {
	payload, ok := a.Get(payloadPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, payloadPath)
	}

	var chunkCsr []uint64
	switch {
	case vector.HasCsr(t, nil):
		var err error
		chunkCsr, err = decodeUint64Vector(a, csrPath, n+1)
		if err != nil {
			return nil, err
		}
	case vector.MaybeCsr(t):
		if a.Has(csrPath) {
			var err error
			chunkCsr, err = decodeUint64Vector(a, csrPath, n+1)
			if err != nil {
				return nil, err
			}
		}
	case a.Has(csrPath):
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedCsr, csrPath)
	}

	values, err := vector.Decode(payload, chunkCsr, n, t)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", payloadPath, err)
	}
	return values, nil
}

func decodeStructPairedVector(a *archive.Archive, csrPath, payloadPath string, n int, st *types.StructType) ([]types.StructValue, error) {
	payload, ok := a.Get(payloadPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, payloadPath)
	}

	var chunkCsr []uint64
	if st.HasVariableSize() {
		if !a.Has(csrPath) {
			return nil, fmt.Errorf("%w: %s", ErrMissingFile, csrPath)
		}
		var err error
		chunkCsr, err = decodeUint64Vector(a, csrPath, n+1)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", csrPath, err)
		}
	} else if a.Has(csrPath) {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedCsr, csrPath)
	}

	values, err := vector.DecodeStruct(payload, chunkCsr, n, st)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", payloadPath, err)
	}
	return values, nil
}
