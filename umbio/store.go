// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package umbio

import (
	"fmt"

	"github.com/luxfi/umb/archive"
	"github.com/luxfi/umb/manifest"
	"github.com/luxfi/umb/metrics"
	"github.com/luxfi/umb/types"
	"github.com/luxfi/umb/vector"
)

// Store writes raw to path as an UMB container, using compression as
// the tar layer's codec (spec.md §4.6). It is the inverse of Load: the
// manifest decides which files are emitted, exactly mirroring the
// fields Load would have populated from the same manifest shape.
func Store(raw *Raw, path string, compression archive.Compression, mc *metrics.Collectors) error {
	members, err := StoreMembers(raw)
	if err != nil {
		return err
	}
	if err := archive.Write(path, members, compression); err != nil {
		return err
	}
	size := 0
	for _, b := range members {
		size += len(b)
	}
	mc.ObserveArchiveWrite(size)
	return nil
}

// StoreMembers renders raw into the archive member map Store writes,
// split out so tests can inspect the members before they hit disk.
func StoreMembers(raw *Raw) (map[string][]byte, error) {
	idx := raw.Index
	ts := idx.TransitionSystem
	members := map[string][]byte{}

	indexBytes, err := manifest.Emit(idx)
	if err != nil {
		return nil, err
	}
	members[pathIndex] = indexBytes

	if err := encodeRequiredBitvector(members, pathInitialStates, raw.InitialStates, int(ts.NumStates)); err != nil {
		return nil, err
	}
	if raw.MarkovianStates != nil {
		if err := encodeRequiredBitvector(members, pathMarkovianStates, raw.MarkovianStates, int(ts.NumStates)); err != nil {
			return nil, err
		}
	}

	if raw.StateToChoice != nil {
		if err := encodeStructuralCsr(members, pathStateToChoice, raw.StateToChoice, int(ts.NumStates)); err != nil {
			return nil, err
		}
	}
	if raw.ChoiceToBranch != nil {
		if err := encodeStructuralCsr(members, pathChoiceToBranch, raw.ChoiceToBranch, int(ts.NumChoices)); err != nil {
			return nil, err
		}
	}

	if raw.StateToPlayer != nil {
		if err := encodeUint32Vector(members, pathStateToPlayer, raw.StateToPlayer); err != nil {
			return nil, err
		}
	}
	if raw.ChoiceToAction != nil {
		if err := encodeUint32Vector(members, pathChoiceToAction, raw.ChoiceToAction); err != nil {
			return nil, err
		}
	}
	if raw.BranchToTarget != nil {
		if err := encodeUint64Vector(members, pathBranchToTarget, raw.BranchToTarget); err != nil {
			return nil, err
		}
	}

	if ts.ExitRateType != nil {
		if err := encodePairedVector(members, pathStateToExitRate, pathExitRates, raw.ExitRates, *ts.ExitRateType); err != nil {
			return nil, err
		}
	}

	if raw.ActionStrings != nil {
		values := make([]interface{}, len(raw.ActionStrings))
		for i, s := range raw.ActionStrings {
			values[i] = s
		}
		if err := encodePairedVector(members, pathActionToActionString, pathActionStrings, values, types.String); err != nil {
			return nil, err
		}
	}

	if ts.BranchProbabilityType != nil {
		if err := encodePairedVector(members, pathBranchToProbability, pathBranchProbabilities, raw.BranchProbabilities, *ts.BranchProbabilityType); err != nil {
			return nil, err
		}
	}

	if idx.StateValuations != nil {
		st, err := structTypeFromManifest(idx.StateValuations)
		if err != nil {
			return nil, err
		}
		if err := encodeStructPairedVector(members, pathStateToValuation, pathStateValuations, raw.StateValuations, st); err != nil {
			return nil, err
		}
	}

	if idx.Annotations != nil {
		for kind, set := range map[string]map[string]manifest.Annotation{
			annotationKindRewards: idx.Annotations.Rewards,
			annotationKindAps:     idx.Annotations.Aps,
		} {
			if err := encodeAnnotationSet(members, kind, set, raw.Annotations[kind]); err != nil {
				return nil, err
			}
		}
	}

	return members, nil
}

func encodeAnnotationSet(members map[string][]byte, kind string, declared map[string]manifest.Annotation, values map[string]map[string][]interface{}) error {
	for name, ann := range declared {
		if len(ann.AppliesTo) == 0 {
			continue
		}
		if ann.Type == nil {
			return fmt.Errorf("%w: annotation %q has applies-to but no declared type", ErrMissingFile, name)
		}
		for _, apply := range ann.AppliesTo {
			vs := values[name][string(apply)]
			valuesPath := annotationValuesPath(kind, name, string(apply))
			csrPath := annotationCsrPath(kind, name, string(apply))
			if err := encodePairedVector(members, csrPath, valuesPath, vs, *ann.Type); err != nil {
				return err
			}
		}
	}
	return nil
}

// --- fixed-type vector helpers, mirrors of the decode side ---

func encodeRequiredBitvector(members map[string][]byte, path string, bits []bool, n int) error {
	if len(bits) != n {
		return fmt.Errorf("%s: %d bits, want %d", path, len(bits), n)
	}
	values := make([]interface{}, len(bits))
	for i, b := range bits {
		values[i] = b
	}
	payload, _, err := vector.Encode(values, types.Bool)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	members[path] = payload
	return nil
}

func encodeUint32Vector(members map[string][]byte, path string, vs []uint32) error {
	values := make([]interface{}, len(vs))
	for i, v := range vs {
		values[i] = v
	}
	payload, _, err := vector.Encode(values, types.Uint32)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	members[path] = payload
	return nil
}

func encodeUint64Vector(members map[string][]byte, path string, vs []uint64) error {
	values := make([]interface{}, len(vs))
	for i, v := range vs {
		values[i] = v
	}
	payload, _, err := vector.Encode(values, types.Uint64)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	members[path] = payload
	return nil
}

// encodeStructuralCsr emits a plain vector<uint64> of length n+1 for a
// structural indirection axis (state-to-choice.bin, choice-to-branch.bin).
func encodeStructuralCsr(members map[string][]byte, path string, c []uint64, n int) error {
	if len(c) != n+1 {
		return fmt.Errorf("%s: CSR of length %d, want %d", path, len(c), n+1)
	}
	return encodeUint64Vector(members, path, c)
}

// encodePairedVector is the inverse of decodePairedVector: it calls
// vector.Encode directly and writes the resulting chunk CSR only when
// the type actually needs one.
func encodePairedVector(members map[string][]byte, csrPath, payloadPath string, values []interface{}, t types.CommonType) error {
	payload, chunkCsr, err := vector.Encode(values, t)
	if err != nil {
		return fmt.Errorf("%s: %w", payloadPath, err)
	}
	members[payloadPath] = payload
	if chunkCsr != nil {
		if err := encodeUint64Vector(members, csrPath, chunkCsr); err != nil {
			return err
		}
	}
	return nil
}

func encodeStructPairedVector(members map[string][]byte, csrPath, payloadPath string, values []types.StructValue, st *types.StructType) error {
	payload, chunkCsr, err := vector.EncodeStruct(values, st)
	if err != nil {
		return fmt.Errorf("%s: %w", payloadPath, err)
	}
	members[payloadPath] = payload
	if chunkCsr != nil {
		if err := encodeUint64Vector(members, csrPath, chunkCsr); err != nil {
			return err
		}
	}
	return nil
}
