// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package umbio implements the fixed member-path registry of
// spec.md §4.8: it orchestrates archive (C6), manifest (C7), and the
// vector/csr/codec layers (C4/C5/C2/C3) into a single load/store pass
// over an UMB container.
package umbio

import "fmt"

// Fixed member paths, spec.md §4.8.
const (
	pathIndex                = "index.json"
	pathInitialStates        = "initial-states.bin"
	pathStateToChoice        = "state-to-choice.bin"
	pathStateToPlayer        = "state-to-player.bin"
	pathMarkovianStates      = "markovian-states.bin"
	pathStateToExitRate      = "state-to-exit-rate.bin"
	pathExitRates            = "exit-rates.bin"
	pathChoiceToBranch       = "choice-to-branch.bin"
	pathChoiceToAction       = "choice-to-action.bin"
	pathActionToActionString = "action-to-action-string.bin"
	pathActionStrings        = "action-strings.bin"
	pathBranchToTarget       = "branch-to-target.bin"
	pathBranchToProbability  = "branch-to-probability.bin"
	pathBranchProbabilities  = "branch-probabilities.bin"
	pathStateValuations      = "state-valuations.bin"
	pathStateToValuation     = "state-to-valuation.bin"
)

// annotationValuesPath and annotationCsrPath build the path of an
// annotation's value file and its optional paired chunk-CSR file
// (spec.md §4.8: "annotations/<kind>/<name>/for-<apply>/values.bin
// (+ to-values.bin)").
func annotationValuesPath(kind, name, apply string) string {
	return fmt.Sprintf("annotations/%s/%s/for-%s/values.bin", kind, name, apply)
}

func annotationCsrPath(kind, name, apply string) string {
	return fmt.Sprintf("annotations/%s/%s/for-%s/to-values.bin", kind, name, apply)
}

const (
	annotationKindRewards = "rewards"
	annotationKindAps     = "aps"
)
