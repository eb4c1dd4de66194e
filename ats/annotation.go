// Copyright (C) 2026, UMB Authors. All rights reserved.
// See the file LICENSE for licensing terms.

package ats

import (
	"fmt"

	"github.com/luxfi/umb/manifest"
	"github.com/luxfi/umb/types"
)

// annotationValueTypes mirrors manifest's own enum restriction for the
// annotations.rewards/aps sections (spec.md §4.7): no integer tag is a
// legal annotation type, since an annotation's "type" is the weight
// lattice a reward/AP lives in, not a raw count.
var annotationValueTypes = map[types.CommonType]bool{
	types.Bool:             true,
	types.Double:           true,
	types.Rational:         true,
	types.DoubleInterval:   true,
	types.RationalInterval: true,
	types.String:           true,
}

// Annotation is a single named reward or atomic-proposition annotation:
// a declared type plus, for each entity kind it applies to, one value
// per entity of that kind. This is the in-memory counterpart of
// manifest.Annotation + its umbio.Raw.Annotations[kind][name] values,
// merged into a single struct the way the original Python reference
// (umbi.ats.annotation.Annotation and its RewardAnnotation/
// AtomicPropositionAnnotation subclasses) keeps them.
type Annotation struct {
	Name        string
	Type        types.CommonType
	Alias       *string
	Description *string
	Lower       *float64
	Upper       *float64

	// Values holds one slice per applies-to target actually populated.
	// A target present in the map must have exactly the entity count
	// for that target (checked by (*ATS).Validate).
	Values map[manifest.ObservationsApplyTo][]interface{}
}

func (ann *Annotation) appliesTo() []manifest.ObservationsApplyTo {
	applies := make([]manifest.ObservationsApplyTo, 0, len(ann.Values))
	for k := range ann.Values {
		applies = append(applies, k)
	}
	return applies
}

// NewRewardAnnotation builds a reward annotation. t must be one of the
// weight types (double, rational, double-interval, rational-interval).
func NewRewardAnnotation(name string, t types.CommonType, values map[manifest.ObservationsApplyTo][]interface{}) (*Annotation, error) {
	switch t {
	case types.Double, types.Rational, types.DoubleInterval, types.RationalInterval:
	default:
		return nil, fmt.Errorf("%w: reward annotation %q: type %s is not a weight type", types.ErrUnsupportedType, name, t)
	}
	return newAnnotation(name, t, values)
}

// NewAtomicPropositionAnnotation builds a boolean atomic-proposition
// annotation.
func NewAtomicPropositionAnnotation(name string, values map[manifest.ObservationsApplyTo][]interface{}) (*Annotation, error) {
	return newAnnotation(name, types.Bool, values)
}

func newAnnotation(name string, t types.CommonType, values map[manifest.ObservationsApplyTo][]interface{}) (*Annotation, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: annotation name must not be empty", types.ErrUnsupportedType)
	}
	if !annotationValueTypes[t] {
		return nil, fmt.Errorf("%w: annotation %q: type %s not allowed for annotations", types.ErrUnsupportedType, name, t)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: annotation %q declares no applies-to target", types.ErrUnsupportedType, name)
	}
	return &Annotation{Name: name, Type: t, Values: values}, nil
}

// WithAlias sets the annotation's display alias and returns ann, for
// chaining onto one of the New*Annotation constructors.
func (ann *Annotation) WithAlias(alias string) *Annotation {
	ann.Alias = &alias
	return ann
}

// WithDescription sets the annotation's description and returns ann.
func (ann *Annotation) WithDescription(description string) *Annotation {
	ann.Description = &description
	return ann
}

// WithBounds sets the annotation's declared [lower, upper] range and
// returns ann. Only meaningful for numeric types.
func (ann *Annotation) WithBounds(lower, upper float64) *Annotation {
	ann.Lower = &lower
	ann.Upper = &upper
	return ann
}

// ObservationAnnotation records, for a POMDP-style model, the discrete
// observation each entity emits. Unlike Annotation, it has no archive
// member path of its own: the original reference implementation
// (umbi.io.umb_ats_converter) passes transition-system.#observations
// through as a manifest count but never persists observation values to
// the container, so ObservationAnnotation exists purely as an in-memory
// convenience and is dropped by (*ATS).ToRaw.
type ObservationAnnotation struct {
	NumObservations uint64
	Values          map[manifest.ObservationsApplyTo][]uint64
}

// NewObservationAnnotation builds an observation annotation, checking
// that every value lies in [0, numObservations).
func NewObservationAnnotation(numObservations uint64, values map[manifest.ObservationsApplyTo][]uint64) (*ObservationAnnotation, error) {
	if numObservations == 0 {
		return nil, fmt.Errorf("%w: observation annotation requires a positive observation count", types.ErrUnsupportedType)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: observation annotation declares no applies-to target", types.ErrUnsupportedType)
	}
	for apply, vs := range values {
		for i, v := range vs {
			if v >= numObservations {
				return nil, fmt.Errorf("%w: observation annotation: %s[%d] = %d out of range [0, %d)", types.ErrUnsupportedType, apply, i, v, numObservations)
			}
		}
	}
	return &ObservationAnnotation{NumObservations: numObservations, Values: values}, nil
}
