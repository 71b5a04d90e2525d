// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package limits holds the injected threshold configuration for the
// safety engine. Defaults are embedded in the binary; deployments
// override individual values with SENTINEL_* environment variables.
// Configuration problems are construction-time failures, never
// per-request findings.
package limits

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Criterion names used as keys in the quality weight table. The quality
// scorer resolves its per-criterion weights through these.
const (
	CriterionSubredditRelevance = "subreddit_relevance"
	CriterionSpecificity        = "specificity"
	CriterionAuthenticity       = "authenticity"
	CriterionValueFirst         = "value_first"
	CriterionEngagement         = "engagement_potential"
)

// Window is an inclusive offset range in minutes.
type Window struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Contains reports whether the offset lies inside the window.
func (w Window) Contains(minutes float64) bool {
	return minutes >= w.Min && minutes <= w.Max
}

// Limits is the full threshold set consumed by the engine. All values are
// injected; the engine never hardcodes a threshold.
type Limits struct {
	MaxRepeatedPhrases   int                `yaml:"max_repeated_phrases"`
	MaxSimilarityPercent float64            `yaml:"max_similarity_percent"`
	MaxCollusionPercent  float64            `yaml:"max_collusion_percent"`
	MaxPostsPerPersona   int                `yaml:"max_posts_per_persona"`
	MaxPostsPerSubreddit int                `yaml:"max_posts_per_subreddit"`
	MaxProductMentions   int                `yaml:"max_product_mentions_per_persona"`
	MinGapBetweenPosts   float64            `yaml:"min_gap_between_posts"`
	MaxGapBetweenPosts   float64            `yaml:"max_gap_between_posts"`
	CommentWindow        Window             `yaml:"comment_window"`
	ReplyWindow          Window             `yaml:"reply_window"`
	NgramMin             int                `yaml:"ngram_min"`
	NgramMax             int                `yaml:"ngram_max"`
	QualityThreshold     float64            `yaml:"quality_threshold"`
	MinAggregateQuality  float64            `yaml:"min_aggregate_quality"`
	QualityWeights       map[string]float64 `yaml:"quality_weights"`
}

// weightSumTolerance absorbs float representation noise when checking the
// weight table. 0.9 and 1.1 must still fail loudly.
const weightSumTolerance = 1e-6

// Load builds the limit set from the embedded defaults plus environment
// overrides, then validates it. Returns an error for malformed YAML, an
// unparseable override, or an invalid threshold combination.
func Load() (*Limits, error) {
	var l Limits
	if err := yaml.Unmarshal(DefaultLimitsYAML, &l); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the embedded limits file: %w", err)
	}
	if err := l.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

func (l *Limits) applyEnvOverrides() error {
	intOverrides := map[string]*int{
		"SENTINEL_MAX_REPEATED_PHRASES":             &l.MaxRepeatedPhrases,
		"SENTINEL_MAX_POSTS_PER_PERSONA":            &l.MaxPostsPerPersona,
		"SENTINEL_MAX_POSTS_PER_SUBREDDIT":          &l.MaxPostsPerSubreddit,
		"SENTINEL_MAX_PRODUCT_MENTIONS_PER_PERSONA": &l.MaxProductMentions,
		"SENTINEL_NGRAM_MIN":                        &l.NgramMin,
		"SENTINEL_NGRAM_MAX":                        &l.NgramMax,
	}
	for key, dst := range intOverrides {
		raw := os.Getenv(key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid integer in %s: %q", key, raw)
		}
		*dst = v
	}

	floatOverrides := map[string]*float64{
		"SENTINEL_MAX_SIMILARITY_PERCENTAGE": &l.MaxSimilarityPercent,
		"SENTINEL_MAX_COLLUSION_PERCENTAGE":  &l.MaxCollusionPercent,
		"SENTINEL_MIN_GAP_BETWEEN_POSTS":     &l.MinGapBetweenPosts,
		"SENTINEL_MAX_GAP_BETWEEN_POSTS":     &l.MaxGapBetweenPosts,
		"SENTINEL_COMMENT_WINDOW_MIN":        &l.CommentWindow.Min,
		"SENTINEL_COMMENT_WINDOW_MAX":        &l.CommentWindow.Max,
		"SENTINEL_REPLY_WINDOW_MIN":          &l.ReplyWindow.Min,
		"SENTINEL_REPLY_WINDOW_MAX":          &l.ReplyWindow.Max,
		"SENTINEL_QUALITY_THRESHOLD":         &l.QualityThreshold,
		"SENTINEL_MIN_AGGREGATE_QUALITY":     &l.MinAggregateQuality,
	}
	for key, dst := range floatOverrides {
		raw := os.Getenv(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid number in %s: %q", key, raw)
		}
		*dst = v
	}
	return nil
}

// Validate checks the structural invariants of the limit set. The weight
// table must cover the five criteria and sum to 1.0; windows and gaps must
// be well-ordered; the n-gram range must be usable.
func (l *Limits) Validate() error {
	if l.NgramMin < 2 || l.NgramMax < l.NgramMin {
		return fmt.Errorf("invalid ngram range [%d, %d]", l.NgramMin, l.NgramMax)
	}
	if l.MinGapBetweenPosts < 0 || l.MaxGapBetweenPosts < l.MinGapBetweenPosts {
		return fmt.Errorf("invalid post gap range [%v, %v]", l.MinGapBetweenPosts, l.MaxGapBetweenPosts)
	}
	if l.CommentWindow.Max < l.CommentWindow.Min {
		return fmt.Errorf("invalid comment window [%v, %v]", l.CommentWindow.Min, l.CommentWindow.Max)
	}
	if l.ReplyWindow.Max < l.ReplyWindow.Min {
		return fmt.Errorf("invalid reply window [%v, %v]", l.ReplyWindow.Min, l.ReplyWindow.Max)
	}

	required := []string{
		CriterionSubredditRelevance,
		CriterionSpecificity,
		CriterionAuthenticity,
		CriterionValueFirst,
		CriterionEngagement,
	}
	sum := 0.0
	for _, name := range required {
		w, ok := l.QualityWeights[name]
		if !ok {
			return fmt.Errorf("quality weight for %q is missing", name)
		}
		if w < 0 {
			return fmt.Errorf("quality weight for %q is negative: %v", name, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("quality weights sum to %v, want 1.0", sum)
	}
	return nil
}
