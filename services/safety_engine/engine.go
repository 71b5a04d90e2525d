// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package safety_engine validates a batch of scheduled synthetic
// conversations against the configured safety and quality policies.
//
// The engine is a pure function of its two inputs: it holds no mutable
// state between calls, performs no I/O, and given identical inputs
// produces byte-identical reports. Policy violations are never errors;
// they surface as Findings inside a normally returned SafetyReport so an
// editor sees the full set of issues rather than a first-failure abort.
// The only data-shape problem the engine raises is a content item that
// references a persona absent from the supplied set.
package safety_engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/seedpost/sentinel/services/safety_engine/limits"
	"golang.org/x/sync/errgroup"
)

// Engine runs the five detection and scoring components over a batch and
// merges their findings into one SafetyReport. Safe for concurrent use;
// all per-call state lives on the stack of Validate.
type Engine struct {
	limits   *limits.Limits
	criteria []Criterion
}

// Option customizes engine construction.
type Option func(*Engine)

// WithCriteria replaces the default quality heuristics. Every supplied
// criterion must have a weight in the configured weight table.
func WithCriteria(criteria []Criterion) Option {
	return func(e *Engine) { e.criteria = criteria }
}

// NewEngine validates the limit set and returns a ready engine.
// Configuration problems (weights not summing to 1.0, inverted windows,
// a criterion without a weight) fail here, fast, and are not recoverable
// per call.
func NewEngine(l *limits.Limits, opts ...Option) (*Engine, error) {
	if l == nil {
		return nil, fmt.Errorf("limits must not be nil")
	}
	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("invalid limits: %w", err)
	}
	e := &Engine{limits: l, criteria: DefaultCriteria()}
	for _, opt := range opts {
		opt(e)
	}
	for _, criterion := range e.criteria {
		if _, ok := l.QualityWeights[criterion.Name()]; !ok {
			return nil, fmt.Errorf("criterion %q has no entry in the quality weight table", criterion.Name())
		}
	}
	return e, nil
}

// Validate inspects the batch and returns the safety report.
//
// The five components are mutually independent and run concurrently; each
// writes into its own slot and the results are merged and sorted after
// the join, so report ordering never depends on scheduling. Returns a
// *DanglingReferenceError if any content references an unknown persona
// id; no report is produced in that case.
func (e *Engine) Validate(ctx context.Context, convs []ScheduledConversation, personas []Persona) (*SafetyReport, error) {
	if err := resolveReferences(convs, personas); err != nil {
		return nil, err
	}

	var (
		repetition, similarity, collusion, volume, timing, quality []Finding
		phrasesChecked, pairsCompared                              int
		scores                                                     map[string]float64
		aggregate                                                  float64
	)

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		repetition, phrasesChecked = checkRepetition(convs, e.limits.NgramMin, e.limits.NgramMax, e.limits.MaxRepeatedPhrases)
		return nil
	})
	g.Go(func() error {
		similarity, pairsCompared = checkSimilarity(convs, e.limits.MaxSimilarityPercent)
		return nil
	})
	g.Go(func() error {
		collusion = checkCollusion(convs, e.limits.MaxCollusionPercent)
		return nil
	})
	g.Go(func() error {
		volume = checkVolumeCaps(convs, e.limits)
		timing = checkTiming(convs, e.limits)
		return nil
	})
	g.Go(func() error {
		quality, scores, aggregate = scoreQuality(convs, e.criteria, e.limits)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	findings := mergeFindings(repetition, similarity, collusion, volume, timing, quality)

	risk := SeverityLow
	for _, f := range findings {
		if f.Severity > risk {
			risk = f.Severity
		}
	}

	passed := risk < SeverityHigh && aggregate >= e.limits.MinAggregateQuality

	return &SafetyReport{
		Findings:         findings,
		RiskLevel:        risk,
		Passed:           passed,
		QualityScores:    scores,
		AggregateQuality: aggregate,
		Counts: ReportCounts{
			PhrasesChecked: phrasesChecked,
			PairsCompared:  pairsCompared,
		},
	}, nil
}

// resolveReferences verifies every persona id referenced by content
// exists in the supplied persona set.
func resolveReferences(convs []ScheduledConversation, personas []Persona) error {
	known := make(map[string]struct{}, len(personas))
	for _, p := range personas {
		known[p.ID] = struct{}{}
	}
	for _, conv := range convs {
		if _, ok := known[conv.Post.PersonaID]; !ok {
			return &DanglingReferenceError{PersonaID: conv.Post.PersonaID, ConversationID: conv.ID}
		}
		for _, c := range conv.Comments {
			if _, ok := known[c.PersonaID]; !ok {
				return &DanglingReferenceError{PersonaID: c.PersonaID, ConversationID: conv.ID}
			}
		}
	}
	return nil
}

// mergeFindings flattens the per-component results into one list sorted
// by severity descending, then kind, then description. The sort key is a
// total order, so parallel runs serialize identically.
func mergeFindings(groups ...[]Finding) []Finding {
	merged := make([]Finding, 0)
	for _, g := range groups {
		merged = append(merged, g...)
	}
	sort.Slice(merged, func(i, j int) bool {
		if merged[i].Severity != merged[j].Severity {
			return merged[i].Severity > merged[j].Severity
		}
		if merged[i].Kind != merged[j].Kind {
			return merged[i].Kind < merged[j].Kind
		}
		return merged[i].Description < merged[j].Description
	})
	return merged
}
