// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes provides request and response types for the validator
// service. Request shapes are the wire contract shared by the dashboard's
// re-validation flow and the generation pipeline's pre-flight check; both
// submit the same batch envelope.
//
// All structural validation happens here, before the engine runs: missing
// arrays, out-of-range fields, and unparseable timestamps are client
// errors (HTTP 400), never engine findings.
package datatypes

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/seedpost/sentinel/services/safety_engine"
)

// MaxContentBytes caps a single content body. Generated posts run a few
// kilobytes at most; anything bigger is a malformed or hostile payload.
const MaxContentBytes = 32 * 1024

// MaxConversationsPerBatch bounds a single validation call. Batch sizes
// are bounded upstream by the weekly post caps, so this is a backstop,
// not a tuning knob.
const MaxConversationsPerBatch = 500

// batchValidate is the shared validator instance for request datatypes.
var batchValidate *validator.Validate

func init() {
	batchValidate = validator.New()
	_ = batchValidate.RegisterValidation("maxbytes", validateMaxBytes)
}

// validateMaxBytes enforces MaxContentBytes on a string field, checking
// byte length rather than rune count.
func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxContentBytes
}

// PersonaRecord is one synthetic author identity on the wire.
type PersonaRecord struct {
	ID           string   `json:"id" validate:"required"`
	DisplayName  string   `json:"display_name" validate:"required"`
	Archetype    string   `json:"archetype"`
	Vocabulary   []string `json:"vocabulary,omitempty"`
	AvoidedWords []string `json:"avoided_words,omitempty"`
	Formality    float64  `json:"formality" validate:"gte=0,lte=1"`
	Frustrations []string `json:"frustrations,omitempty"`
	Aspirations  []string `json:"aspirations,omitempty"`
}

// PostRecord is the root post of a conversation on the wire.
type PostRecord struct {
	PersonaID       string `json:"persona_id" validate:"required"`
	Content         string `json:"content" validate:"maxbytes"`
	MentionsProduct bool   `json:"mentions_product"`
}

// CommentRecord is a comment or reply on the wire. ParentID is empty for
// top-level comments; OffsetMinutes is relative to the post for comments
// and to the parent comment for replies.
type CommentRecord struct {
	ID              string  `json:"id" validate:"required"`
	PersonaID       string  `json:"persona_id" validate:"required"`
	Content         string  `json:"content" validate:"maxbytes"`
	ParentID        string  `json:"parent_id,omitempty"`
	OffsetMinutes   float64 `json:"offset_minutes"`
	MentionsProduct bool    `json:"mentions_product"`
}

// ConversationRecord is one scheduled thread on the wire. ScheduledAt is
// an RFC3339 timestamp string; parsing happens in ToEngine so a malformed
// value surfaces as a request error before the engine is invoked.
type ConversationRecord struct {
	ID          string          `json:"id" validate:"required"`
	Subreddit   string          `json:"subreddit" validate:"required"`
	ScheduledAt string          `json:"scheduled_at" validate:"required"`
	Post        PostRecord      `json:"post" validate:"required"`
	Comments    []CommentRecord `json:"comments" validate:"dive"`
}

// ValidateBatchRequest is the body of POST /v1/validate.
type ValidateBatchRequest struct {
	Conversations []ConversationRecord `json:"conversations" validate:"required,min=1,dive"`
	Personas      []PersonaRecord      `json:"personas" validate:"required,min=1,dive"`
}

// Validate runs the structural checks over the bound request. The batch
// size cap lives here rather than in a struct tag so MaxConversationsPerBatch
// stays the single source of truth.
func (r *ValidateBatchRequest) Validate() error {
	if len(r.Conversations) > MaxConversationsPerBatch {
		return fmt.Errorf("batch has %d conversations, limit is %d",
			len(r.Conversations), MaxConversationsPerBatch)
	}
	return batchValidate.Struct(r)
}

// ToEngine converts the wire batch into engine values, parsing scheduled
// timestamps. Returns an error naming the first conversation with an
// unparseable timestamp.
func (r *ValidateBatchRequest) ToEngine() ([]safety_engine.ScheduledConversation, []safety_engine.Persona, error) {
	convs := make([]safety_engine.ScheduledConversation, 0, len(r.Conversations))
	for _, rec := range r.Conversations {
		scheduledAt, err := time.Parse(time.RFC3339, rec.ScheduledAt)
		if err != nil {
			return nil, nil, fmt.Errorf("conversation %q: invalid scheduled_at %q: %w",
				rec.ID, rec.ScheduledAt, err)
		}
		conv := safety_engine.ScheduledConversation{
			ID:          rec.ID,
			Subreddit:   rec.Subreddit,
			ScheduledAt: scheduledAt.UTC(),
			Post: safety_engine.Post{
				PersonaID:       rec.Post.PersonaID,
				Content:         rec.Post.Content,
				MentionsProduct: rec.Post.MentionsProduct,
			},
		}
		for _, c := range rec.Comments {
			conv.Comments = append(conv.Comments, safety_engine.Comment{
				ID:              c.ID,
				PersonaID:       c.PersonaID,
				Content:         c.Content,
				ParentID:        c.ParentID,
				OffsetMinutes:   c.OffsetMinutes,
				MentionsProduct: c.MentionsProduct,
			})
		}
		convs = append(convs, conv)
	}

	personas := make([]safety_engine.Persona, 0, len(r.Personas))
	for _, rec := range r.Personas {
		personas = append(personas, safety_engine.Persona{
			ID:           rec.ID,
			DisplayName:  rec.DisplayName,
			Archetype:    rec.Archetype,
			Vocabulary:   rec.Vocabulary,
			AvoidedWords: rec.AvoidedWords,
			Formality:    rec.Formality,
			Frustrations: rec.Frustrations,
			Aspirations:  rec.Aspirations,
		})
	}
	return convs, personas, nil
}

// ValidateBatchResponse wraps the engine report with per-call correlation
// metadata. The report itself is deterministic; the envelope is not.
type ValidateBatchResponse struct {
	RequestID   string                      `json:"request_id"`
	ValidatedAt time.Time                   `json:"validated_at"`
	Report      *safety_engine.SafetyReport `json:"report"`
}
