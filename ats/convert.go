// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ats

import (
	"fmt"
	"time"

	"github.com/luxfi/umb/internal/toolinfo"
	"github.com/luxfi/umb/manifest"
	"github.com/luxfi/umb/types"
	"github.com/luxfi/umb/umbio"
)

// ToRaw converts a validated ATS into the raw member table umbio
// writes. Observation annotations are intentionally dropped: spec.md
// §4.8's fixed member-path table has no observation-values path, and
// the reference converter (umbi.io.umb_ats_converter) only ever passes
// #observations through as a count, never the values themselves (see
// DESIGN.md "Open Questions resolved").
func (a *ATS) ToRaw() (*umbio.Raw, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}

	ts := manifest.TransitionSystem{
		Time:             a.Time,
		NumPlayers:       a.NumPlayers,
		NumStates:        a.NumStates,
		NumInitialStates: uint64(a.NumInitialStates()),
		NumChoices:       a.NumChoices,
		NumChoiceActions: a.NumChoiceActions,
		NumBranches:      a.NumBranches,
		NumBranchActions: a.NumBranchActions,
	}
	if a.Observations != nil {
		ts.NumObservations = a.Observations.NumObservations
		for apply := range a.Observations.Values {
			apply := apply
			ts.ObservationsApplyTo = &apply
			break
		}
	}
	if a.ExitRateType != nil {
		t := *a.ExitRateType
		ts.ExitRateType = &t
	}
	if a.BranchProbabilityType != nil {
		t := *a.BranchProbabilityType
		ts.BranchProbabilityType = &t
	}

	tool := toolinfo.Get()
	idx := &manifest.Index{
		FormatVersion:    uint64(tool.FormatVersion),
		FormatRevision:   uint64(tool.FormatRevision),
		TransitionSystem: ts,
		ModelData:        modelDataFromInfo(a.ModelInfo),
		FileData:         fileDataFromTool(tool),
	}

	if a.Rewards != nil || a.Aps != nil {
		idx.Annotations = &manifest.Annotations{
			Rewards: annotationsToManifest(a.Rewards),
			Aps:     annotationsToManifest(a.Aps),
		}
	}

	if a.StateValuationType != nil {
		sv, err := stateValuationsToManifest(a.StateValuationType)
		if err != nil {
			return nil, err
		}
		idx.StateValuations = sv
	}

	raw := &umbio.Raw{
		Index:           idx,
		InitialStates:   a.StateIsInitial,
		MarkovianStates: a.StateIsMarkovian,
		StateToChoice:   a.StateToChoice,
		ChoiceToBranch:  a.ChoiceToBranch,
		StateToPlayer:   a.StateToPlayer,
		ChoiceToAction:  a.ChoiceToAction,
		BranchToTarget:  a.BranchToTarget,
		ExitRates:       a.StateExitRate,
		ActionStrings:   a.ActionStrings,
		BranchProbabilities: a.BranchProbability,
		StateValuations: a.StateValuations,
	}
	if a.BranchProbability == nil && a.BranchProbabilityType != nil {
		raw.BranchProbabilities = make([]interface{}, a.NumBranches)
		for i := range raw.BranchProbabilities {
			raw.BranchProbabilities[i] = a.BranchProbabilityOf(uint64(i))
		}
	}

	if a.Rewards != nil || a.Aps != nil {
		raw.Annotations = map[string]map[string]map[string][]interface{}{
			"rewards": annotationValuesToRaw(a.Rewards),
			"aps":     annotationValuesToRaw(a.Aps),
		}
	}

	return raw, nil
}

// fileDataFromTool embeds the process-wide tool identity (spec.md §6:
// "{name, version, format-version, format-revision}" is embedded into
// every write's file-data) plus a write-time creation date, the way
// umb_ats_converter's writer stamps its own tool/tool-version pair.
func fileDataFromTool(tool toolinfo.Info) *manifest.FileData {
	name := tool.Name
	version := tool.Version
	creation := uint64(time.Now().Unix())
	return &manifest.FileData{
		Tool:         &name,
		ToolVersion:  &version,
		CreationDate: &creation,
	}
}

func modelDataFromInfo(info *ModelInfo) *manifest.ModelData {
	if info == nil {
		return nil
	}
	return &manifest.ModelData{
		Name:        info.Name,
		Version:     info.Version,
		Authors:     info.Authors,
		Description: info.Description,
		Comment:     info.Comment,
		Doi:         info.Doi,
		URL:         info.URL,
	}
}

func annotationsToManifest(set map[string]*Annotation) map[string]manifest.Annotation {
	if len(set) == 0 {
		return nil
	}
	out := make(map[string]manifest.Annotation, len(set))
	for name, ann := range set {
		t := ann.Type
		out[name] = manifest.Annotation{
			Alias:       ann.Alias,
			Description: ann.Description,
			AppliesTo:   ann.appliesTo(),
			Type:        &t,
			Lower:       ann.Lower,
			Upper:       ann.Upper,
		}
	}
	return out
}

func annotationValuesToRaw(set map[string]*Annotation) map[string]map[string][]interface{} {
	out := map[string]map[string][]interface{}{}
	for name, ann := range set {
		perApply := map[string][]interface{}{}
		for apply, vs := range ann.Values {
			perApply[string(apply)] = vs
		}
		out[name] = perApply
	}
	return out
}

func stateValuationsToManifest(st *types.StructType) (*manifest.StateValuations, error) {
	vars := make([]manifest.Variable, len(st.Fields))
	for i, f := range st.Fields {
		v, err := manifest.VariableFromField(f)
		if err != nil {
			return nil, err
		}
		vars[i] = v
	}
	return &manifest.StateValuations{Alignment: st.Alignment, Variables: vars}, nil
}

// FromRaw converts raw (as decoded by umbio.Load/LoadArchive) into a
// validated ATS.
func FromRaw(raw *umbio.Raw) (*ATS, error) {
	idx := raw.Index
	ts := idx.TransitionSystem

	a := &ATS{
		ModelInfo:  modelInfoFromData(idx.ModelData),
		Time:       ts.Time,
		NumPlayers: ts.NumPlayers,

		NumStates:   ts.NumStates,
		NumChoices:  ts.NumChoices,
		NumBranches: ts.NumBranches,

		StateIsInitial: raw.InitialStates,
		StateToPlayer:  raw.StateToPlayer,

		StateToChoice:  raw.StateToChoice,
		ChoiceToBranch: raw.ChoiceToBranch,

		StateIsMarkovian: raw.MarkovianStates,
		ExitRateType:     ts.ExitRateType,
		StateExitRate:    raw.ExitRates,

		NumChoiceActions: ts.NumChoiceActions,
		NumBranchActions: ts.NumBranchActions,
		ChoiceToAction:   raw.ChoiceToAction,
		ActionStrings:    raw.ActionStrings,

		BranchToTarget:        raw.BranchToTarget,
		BranchProbabilityType: ts.BranchProbabilityType,
		BranchProbability:     raw.BranchProbabilities,

		StateValuations: raw.StateValuations,
	}

	if idx.StateValuations != nil {
		st, err := structTypeFromManifest(idx.StateValuations)
		if err != nil {
			return nil, err
		}
		a.StateValuationType = st
	}

	if idx.Annotations != nil {
		a.Rewards = annotationsFromManifest(idx.Annotations.Rewards, raw.Annotations["rewards"])
		a.Aps = annotationsFromManifest(idx.Annotations.Aps, raw.Annotations["aps"])
	}

	if ts.NumObservations > 0 {
		a.Observations = &ObservationAnnotation{NumObservations: ts.NumObservations}
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func modelInfoFromData(md *manifest.ModelData) *ModelInfo {
	if md == nil {
		return nil
	}
	return &ModelInfo{
		Name:        md.Name,
		Version:     md.Version,
		Authors:     md.Authors,
		Description: md.Description,
		Comment:     md.Comment,
		Doi:         md.Doi,
		URL:         md.URL,
	}
}

func annotationsFromManifest(declared map[string]manifest.Annotation, values map[string]map[string][]interface{}) map[string]*Annotation {
	if len(declared) == 0 {
		return nil
	}
	out := make(map[string]*Annotation, len(declared))
	for name, ann := range declared {
		valuesByApply := map[manifest.ObservationsApplyTo][]interface{}{}
		for _, apply := range ann.AppliesTo {
			if perApply, ok := values[name]; ok {
				valuesByApply[apply] = perApply[string(apply)]
			}
		}
		t := types.Bool
		if ann.Type != nil {
			t = *ann.Type
		}
		out[name] = &Annotation{
			Name:        name,
			Type:        t,
			Alias:       ann.Alias,
			Description: ann.Description,
			Lower:       ann.Lower,
			Upper:       ann.Upper,
			Values:      valuesByApply,
		}
	}
	return out
}

func structTypeFromManifest(sv *manifest.StateValuations) (*types.StructType, error) {
	fields := make([]types.Field, len(sv.Variables))
	for i, v := range sv.Variables {
		f, err := v.ToField()
		if err != nil {
			return nil, fmt.Errorf("state-valuations: %w", err)
		}
		fields[i] = f
	}
	return types.NewStructType(sv.Alignment, fields)
}
