// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package safety_engine

import (
	"fmt"
	"time"
)

// Severity ranks how serious a finding is. The ordering of the constants
// matters: risk derivation takes the maximum severity across findings.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{"low", "medium", "high", "critical"}

func (s Severity) String() string {
	if s < SeverityLow || s > SeverityCritical {
		return fmt.Sprintf("severity(%d)", int(s))
	}
	return severityNames[s]
}

// MarshalJSON serializes the severity as its lowercase name so reports are
// readable by the dashboard without a lookup table.
func (s Severity) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// FindingKind identifies which policy a finding violates.
type FindingKind string

const (
	KindRepeatedPhrase        FindingKind = "repeated-phrase"
	KindContentSimilarity     FindingKind = "content-similarity"
	KindPersonaCollusion      FindingKind = "persona-collusion"
	KindPersonaOveruse        FindingKind = "persona-overuse"
	KindSubredditOveruse      FindingKind = "subreddit-overuse"
	KindExcessProductMentions FindingKind = "excess-product-mentions"
	KindTimingGapViolation    FindingKind = "timing-gap-violation"
	KindTimingWindowViolation FindingKind = "timing-window-violation"
	KindBelowQualityThreshold FindingKind = "below-quality-threshold"
)

// Persona is one synthetic author identity. Engine inputs are read-only;
// nothing here is mutated during a validation run.
type Persona struct {
	ID           string   `json:"id" yaml:"id"`
	DisplayName  string   `json:"display_name" yaml:"display_name"`
	Archetype    string   `json:"archetype" yaml:"archetype"`
	Vocabulary   []string `json:"vocabulary,omitempty" yaml:"vocabulary,omitempty"`
	AvoidedWords []string `json:"avoided_words,omitempty" yaml:"avoided_words,omitempty"`
	Formality    float64  `json:"formality" yaml:"formality"`

	// Descriptive metadata carried through from the generation pipeline.
	// The engine does not consume these.
	Frustrations []string `json:"frustrations,omitempty" yaml:"frustrations,omitempty"`
	Aspirations  []string `json:"aspirations,omitempty" yaml:"aspirations,omitempty"`
}

// Post is the root item of a conversation.
type Post struct {
	PersonaID       string `json:"persona_id" yaml:"persona_id"`
	Content         string `json:"content" yaml:"content"`
	MentionsProduct bool   `json:"mentions_product,omitempty" yaml:"mentions_product,omitempty"`
}

// Comment is a comment or reply inside a conversation. ParentID is empty
// for top-level comments (replying to the post) and names another comment's
// ID for replies. OffsetMinutes is measured from the post's scheduled time
// for comments, and from the parent comment's time for replies.
type Comment struct {
	ID              string  `json:"id" yaml:"id"`
	PersonaID       string  `json:"persona_id" yaml:"persona_id"`
	Content         string  `json:"content" yaml:"content"`
	ParentID        string  `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	OffsetMinutes   float64 `json:"offset_minutes" yaml:"offset_minutes"`
	MentionsProduct bool    `json:"mentions_product,omitempty" yaml:"mentions_product,omitempty"`
}

// IsReply reports whether the comment replies to another comment rather
// than to the post.
func (c Comment) IsReply() bool { return c.ParentID != "" }

// ScheduledConversation is one synthetic thread queued for posting.
type ScheduledConversation struct {
	ID          string    `json:"id" yaml:"id"`
	Subreddit   string    `json:"subreddit" yaml:"subreddit"`
	ScheduledAt time.Time `json:"scheduled_at" yaml:"scheduled_at"`
	Post        Post      `json:"post" yaml:"post"`
	Comments    []Comment `json:"comments,omitempty" yaml:"comments,omitempty"`
}

// PersonaIDs returns the distinct persona ids that author content in the
// conversation, in first-appearance order.
func (sc ScheduledConversation) PersonaIDs() []string {
	seen := make(map[string]struct{}, len(sc.Comments)+1)
	ids := make([]string, 0, len(sc.Comments)+1)
	add := func(id string) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	add(sc.Post.PersonaID)
	for _, c := range sc.Comments {
		add(c.PersonaID)
	}
	return ids
}

// AllContent returns every text body in the conversation: the post first,
// then comments in order.
func (sc ScheduledConversation) AllContent() []string {
	out := make([]string, 0, len(sc.Comments)+1)
	out = append(out, sc.Post.Content)
	for _, c := range sc.Comments {
		out = append(out, c.Content)
	}
	return out
}

// Finding is one detected policy violation. Evidence holds the measured
// number that triggered the finding (a ratio, a count, a gap in minutes)
// so reports stay auditable.
type Finding struct {
	Kind            FindingKind `json:"kind"`
	Severity        Severity    `json:"severity"`
	Description     string      `json:"description"`
	ConversationIDs []string    `json:"conversation_ids,omitempty"`
	PersonaIDs      []string    `json:"persona_ids,omitempty"`
	Evidence        float64     `json:"evidence"`
}

// ReportCounts carries transparency counters for the report consumer.
type ReportCounts struct {
	PhrasesChecked int `json:"phrases_checked"`
	PairsCompared  int `json:"pairs_compared"`
}

// SafetyReport is the engine's sole output: an immutable verdict over one
// batch. Findings are ordered by severity descending, then kind, then
// description, so identical inputs serialize byte-identically. Nothing
// run-specific (ids, wall-clock times) lives here; correlation metadata
// belongs to the hosting envelope.
type SafetyReport struct {
	Findings         []Finding          `json:"findings"`
	RiskLevel        Severity           `json:"risk_level"`
	Passed           bool               `json:"passed"`
	QualityScores    map[string]float64 `json:"quality_scores"`
	AggregateQuality float64            `json:"aggregate_quality"`
	Counts           ReportCounts       `json:"counts"`
}

// DanglingReferenceError reports content that names a persona id absent
// from the supplied persona set. It aborts the validation call: the rest
// of the report would be meaningless over malformed input.
type DanglingReferenceError struct {
	PersonaID      string
	ConversationID string
}

func (e *DanglingReferenceError) Error() string {
	return fmt.Sprintf("conversation %q references unknown persona %q",
		e.ConversationID, e.PersonaID)
}
