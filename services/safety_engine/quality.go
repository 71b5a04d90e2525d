// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package safety_engine

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/seedpost/sentinel/services/safety_engine/limits"
)

// Criterion scores one quality dimension of a conversation on a 0-100
// scale. The engine only aggregates; callers substitute their own
// implementations (an LLM-backed judge, a trained model) without touching
// the weighting logic. Implementations must be deterministic and safe for
// concurrent use.
type Criterion interface {
	// Name returns the weight-table key for this criterion.
	Name() string
	// Score rates the conversation in [0, 100].
	Score(conv ScheduledConversation) float64
}

// DefaultCriteria returns the built-in heuristic scorers, one per entry
// in the quality weight table.
func DefaultCriteria() []Criterion {
	return []Criterion{
		subredditRelevance{},
		specificity{},
		authenticity{},
		valueFirst{},
		engagementPotential{},
	}
}

// scoreQuality computes per-conversation aggregates plus the batch
// aggregate, and flags conversations falling under the quality threshold.
// The weight table is validated at engine construction, so a missing
// weight here would be a programming error, not a data error.
func scoreQuality(convs []ScheduledConversation, criteria []Criterion, l *limits.Limits) ([]Finding, map[string]float64, float64) {
	scores := make(map[string]float64, len(convs))
	var findings []Finding
	total := 0.0

	ordered := make([]ScheduledConversation, len(convs))
	copy(ordered, convs)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	for _, conv := range ordered {
		aggregate := 0.0
		for _, criterion := range criteria {
			aggregate += l.QualityWeights[criterion.Name()] * clampScore(criterion.Score(conv))
		}
		scores[conv.ID] = aggregate
		total += aggregate

		if aggregate < l.QualityThreshold {
			findings = append(findings, Finding{
				Kind:     KindBelowQualityThreshold,
				Severity: SeverityMedium,
				Description: fmt.Sprintf("conversation %q scores %.1f, below the quality threshold %.1f",
					conv.ID, aggregate, l.QualityThreshold),
				ConversationIDs: []string{conv.ID},
				Evidence:        aggregate,
			})
		}
	}

	batchAggregate := 0.0
	if len(convs) > 0 {
		batchAggregate = total / float64(len(convs))
	}
	return findings, scores, batchAggregate
}

func clampScore(s float64) float64 {
	return math.Min(100, math.Max(0, s))
}

// =============================================================================
// Default heuristics
// =============================================================================

var sentenceEnd = regexp.MustCompile(`[.!?]+`)

// subredditRelevance rewards conversations whose text actually mentions
// the community it targets.
type subredditRelevance struct{}

func (subredditRelevance) Name() string { return limits.CriterionSubredditRelevance }

func (subredditRelevance) Score(conv ScheduledConversation) float64 {
	target := tokenize(strings.ReplaceAll(conv.Subreddit, "_", " "))
	if len(target) == 0 {
		return 50
	}
	body := make(map[string]struct{})
	for _, text := range conv.AllContent() {
		for _, w := range tokenize(text) {
			body[w] = struct{}{}
		}
	}
	hits := 0
	for _, w := range target {
		if _, ok := body[w]; ok {
			hits++
		}
	}
	// A neutral baseline plus a bonus per matched community token.
	return 50 + 50*float64(hits)/float64(len(target))
}

// specificity treats numbers and long words as a proxy for concrete
// detail over filler.
type specificity struct{}

func (specificity) Name() string { return limits.CriterionSpecificity }

func (specificity) Score(conv ScheduledConversation) float64 {
	total, concrete := 0, 0
	for _, text := range conv.AllContent() {
		for _, w := range tokenize(text) {
			total++
			if len(w) >= 8 || strings.IndexFunc(w, isDigit) >= 0 {
				concrete++
			}
		}
	}
	if total == 0 {
		return 0
	}
	// ~20% concrete tokens saturates the score.
	return clampScore(500 * float64(concrete) / float64(total))
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// authenticity penalizes monotone writing: human threads vary their
// sentence lengths, generated filler often does not.
type authenticity struct{}

func (authenticity) Name() string { return limits.CriterionAuthenticity }

func (authenticity) Score(conv ScheduledConversation) float64 {
	lengths := make([]float64, 0, 16)
	for _, text := range conv.AllContent() {
		for _, s := range sentenceEnd.Split(text, -1) {
			if n := len(tokenize(s)); n > 0 {
				lengths = append(lengths, float64(n))
			}
		}
	}
	if len(lengths) < 2 {
		return 40
	}
	mean := 0.0
	for _, l := range lengths {
		mean += l
	}
	mean /= float64(len(lengths))
	variance := 0.0
	for _, l := range lengths {
		d := l - mean
		variance += d * d
	}
	sd := math.Sqrt(variance / float64(len(lengths)))
	// Standard deviation of 6+ words across sentences reads as natural.
	return clampScore(100 * sd / 6.0)
}

// valueFirst rewards threads that lead with substance: a sponsored
// mention in the root post scores far lower than one surfacing late in
// the discussion, and no mention at all is best.
type valueFirst struct{}

func (valueFirst) Name() string { return limits.CriterionValueFirst }

func (valueFirst) Score(conv ScheduledConversation) float64 {
	if conv.Post.MentionsProduct {
		return 30
	}
	for i, c := range conv.Comments {
		if c.MentionsProduct {
			depth := float64(i+1) / float64(len(conv.Comments))
			return clampScore(60 + 30*depth)
		}
	}
	return 100
}

// engagementPotential estimates how likely the thread is to draw organic
// replies: questions invite answers, and an active comment section
// signals a live discussion.
type engagementPotential struct{}

func (engagementPotential) Name() string { return limits.CriterionEngagement }

func (engagementPotential) Score(conv ScheduledConversation) float64 {
	questions := 0
	for _, text := range conv.AllContent() {
		questions += strings.Count(text, "?")
	}
	score := 30.0
	score += math.Min(40, 10*float64(questions))
	score += math.Min(30, 6*float64(len(conv.Comments)))
	return clampScore(score)
}
