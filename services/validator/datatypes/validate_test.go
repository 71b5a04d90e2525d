// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package datatypes

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() ValidateBatchRequest {
	return ValidateBatchRequest{
		Conversations: []ConversationRecord{
			{
				ID:          "c1",
				Subreddit:   "homelab",
				ScheduledAt: "2026-03-01T09:00:00Z",
				Post:        PostRecord{PersonaID: "alice", Content: "post body"},
				Comments: []CommentRecord{
					{ID: "cm1", PersonaID: "bob", Content: "comment body", OffsetMinutes: 30},
				},
			},
		},
		Personas: []PersonaRecord{
			{ID: "alice", DisplayName: "Alice", Formality: 0.4},
			{ID: "bob", DisplayName: "Bob", Formality: 0.7},
		},
	}
}

func TestValidateAcceptsWellFormedRequest(t *testing.T) {
	req := validRequest()
	assert.NoError(t, req.Validate())
}

func TestValidateRejectsStructuralProblems(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ValidateBatchRequest)
	}{
		{"no conversations", func(r *ValidateBatchRequest) { r.Conversations = nil }},
		{"no personas", func(r *ValidateBatchRequest) { r.Personas = nil }},
		{"conversation without id", func(r *ValidateBatchRequest) { r.Conversations[0].ID = "" }},
		{"conversation without subreddit", func(r *ValidateBatchRequest) { r.Conversations[0].Subreddit = "" }},
		{"comment without persona", func(r *ValidateBatchRequest) { r.Conversations[0].Comments[0].PersonaID = "" }},
		{"persona formality out of range", func(r *ValidateBatchRequest) { r.Personas[0].Formality = 1.5 }},
		{"oversized content", func(r *ValidateBatchRequest) {
			r.Conversations[0].Post.Content = strings.Repeat("x", MaxContentBytes+1)
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestValidateEnforcesBatchCap(t *testing.T) {
	req := validRequest()
	base := req.Conversations[0]
	req.Conversations = make([]ConversationRecord, 0, MaxConversationsPerBatch+1)
	for i := 0; i <= MaxConversationsPerBatch; i++ {
		conv := base
		conv.ID = fmt.Sprintf("c%d", i)
		req.Conversations = append(req.Conversations, conv)
	}

	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit is 500")

	req.Conversations = req.Conversations[:MaxConversationsPerBatch]
	assert.NoError(t, req.Validate(), "a batch at the cap is accepted")
}

func TestToEngineParsesTimestamps(t *testing.T) {
	req := validRequest()
	convs, personas, err := req.ToEngine()
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Len(t, personas, 2)

	want := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	assert.True(t, convs[0].ScheduledAt.Equal(want))
	assert.Equal(t, "bob", convs[0].Comments[0].PersonaID)
	assert.Equal(t, 30.0, convs[0].Comments[0].OffsetMinutes)
}

func TestToEngineRejectsMalformedTimestamp(t *testing.T) {
	req := validRequest()
	req.Conversations[0].ScheduledAt = "next tuesday"
	_, _, err := req.ToEngine()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"c1"`)
}

func TestToEngineNormalizesToUTC(t *testing.T) {
	req := validRequest()
	req.Conversations[0].ScheduledAt = "2026-03-01T10:00:00+01:00"
	convs, _, err := req.ToEngine()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, convs[0].ScheduledAt.Location())
	assert.Equal(t, 9, convs[0].ScheduledAt.Hour())
}
