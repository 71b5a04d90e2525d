// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package safety_engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convWithPost(id, subreddit, content string) ScheduledConversation {
	return ScheduledConversation{
		ID:        id,
		Subreddit: subreddit,
		Post:      Post{PersonaID: "p-" + id, Content: content},
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "punctuation stripped and lowercased",
			input: "Hello, World!  It's FINE.",
			want:  []string{"hello", "world", "it's", "fine"},
		},
		{
			name:  "whitespace only",
			input: "   \t\n ",
			want:  nil,
		},
		{
			name:  "empty",
			input: "",
			want:  nil,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tokenize(tc.input))
		})
	}
}

func TestCheckRepetitionThresholdBoundary(t *testing.T) {
	const phrase = "best mechanical keyboard under budget"
	maxRepeated := 3

	makeBatch := func(n int) []ScheduledConversation {
		convs := make([]ScheduledConversation, 0, n)
		for i := 0; i < n; i++ {
			content := fmt.Sprintf("thread %d talks about the %s today", i, phrase)
			convs = append(convs, convWithPost(fmt.Sprintf("c%d", i), "keyboards", content))
		}
		return convs
	}

	// Appearing in exactly maxRepeated conversations is allowed.
	findings, _ := checkRepetition(makeBatch(maxRepeated), 3, 6, maxRepeated)
	assert.Empty(t, findings)

	// One more conversation tips it over.
	findings, _ = checkRepetition(makeBatch(maxRepeated+1), 3, 6, maxRepeated)
	require.NotEmpty(t, findings)
	for _, f := range findings {
		assert.Equal(t, KindRepeatedPhrase, f.Kind)
		assert.Equal(t, float64(maxRepeated+1), f.Evidence)
		assert.Len(t, f.ConversationIDs, maxRepeated+1)
	}
}

func TestCheckRepetitionCountsConversationsNotOccurrences(t *testing.T) {
	// One verbose thread repeats the phrase five times; that is still a
	// single distinct conversation and must not trip the limit.
	verbose := "switch tester kit is great. switch tester kit is great. " +
		"switch tester kit is great. switch tester kit is great. switch tester kit is great."
	findings, _ := checkRepetition([]ScheduledConversation{
		convWithPost("c1", "keyboards", verbose),
	}, 3, 6, 2)
	assert.Empty(t, findings)
}

func TestCheckRepetitionEmptyContent(t *testing.T) {
	findings, phrases := checkRepetition([]ScheduledConversation{
		convWithPost("c1", "keyboards", ""),
		convWithPost("c2", "keyboards", "   \n "),
	}, 3, 6, 1)
	assert.Empty(t, findings)
	assert.Zero(t, phrases)
}

func TestSeverityForExcess(t *testing.T) {
	tests := []struct {
		measured  float64
		threshold float64
		want      Severity
	}{
		{10, 10, SeverityLow},
		{12, 10, SeverityLow},
		{14, 10, SeverityMedium},
		{18, 10, SeverityHigh},
		{25, 10, SeverityCritical},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%.0f_over_%.0f", tc.measured, tc.threshold), func(t *testing.T) {
			assert.Equal(t, tc.want, severityForExcess(tc.measured, tc.threshold))
		})
	}
}
