// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package safety_engine

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var wordPattern = regexp.MustCompile(`[a-z0-9']+`)

// tokenize lowercases the text, strips punctuation, and collapses
// whitespace into a deterministic token stream.
func tokenize(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// phraseStats records, for one distinct phrase, which conversations
// contain it. Counting distinct conversations rather than raw occurrences
// keeps one verbose thread from dominating the tally.
type phraseStats struct {
	conversations map[string]struct{}
}

// lexicalIndex is the per-call accumulation structure for phrase
// frequency. Built fresh for every validation run and discarded after the
// findings are merged.
type lexicalIndex struct {
	ngramMin int
	ngramMax int
	phrases  map[string]*phraseStats
}

func newLexicalIndex(ngramMin, ngramMax int) *lexicalIndex {
	return &lexicalIndex{
		ngramMin: ngramMin,
		ngramMax: ngramMax,
		phrases:  make(map[string]*phraseStats),
	}
}

// addDocument indexes every n-gram of one text body under the owning
// conversation id. Empty or whitespace-only content contributes nothing.
func (ix *lexicalIndex) addDocument(conversationID, text string) {
	words := tokenize(text)
	for n := ix.ngramMin; n <= ix.ngramMax; n++ {
		for i := 0; i+n <= len(words); i++ {
			phrase := strings.Join(words[i:i+n], " ")
			st, ok := ix.phrases[phrase]
			if !ok {
				st = &phraseStats{conversations: make(map[string]struct{})}
				ix.phrases[phrase] = st
			}
			st.conversations[conversationID] = struct{}{}
		}
	}
}

// distinctPhrases returns how many distinct phrases the index tracks.
func (ix *lexicalIndex) distinctPhrases() int { return len(ix.phrases) }

// checkRepetition flags every phrase whose distinct-conversation count
// exceeds maxRepeated. Findings come back sorted by phrase so repeated
// runs over the same batch produce identical output.
func checkRepetition(convs []ScheduledConversation, ngramMin, ngramMax, maxRepeated int) ([]Finding, int) {
	ix := newLexicalIndex(ngramMin, ngramMax)
	for _, conv := range convs {
		for _, text := range conv.AllContent() {
			ix.addDocument(conv.ID, text)
		}
	}

	overused := make([]string, 0)
	for phrase, st := range ix.phrases {
		if len(st.conversations) > maxRepeated {
			overused = append(overused, phrase)
		}
	}
	sort.Strings(overused)

	findings := make([]Finding, 0, len(overused))
	for _, phrase := range overused {
		st := ix.phrases[phrase]
		ids := make([]string, 0, len(st.conversations))
		for id := range st.conversations {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		count := len(st.conversations)
		findings = append(findings, Finding{
			Kind:     KindRepeatedPhrase,
			Severity: severityForExcess(float64(count), float64(maxRepeated)),
			Description: fmt.Sprintf("phrase %q appears in %d conversations (limit %d)",
				phrase, count, maxRepeated),
			ConversationIDs: ids,
			Evidence:        float64(count),
		})
	}
	return findings, ix.distinctPhrases()
}

// severityForExcess maps how far a measurement overshoots its threshold to
// a severity. Shared by every over-threshold finding kind so scaling stays
// consistent across the report.
func severityForExcess(measured, threshold float64) Severity {
	if threshold <= 0 {
		return SeverityCritical
	}
	ratio := measured / threshold
	switch {
	case ratio <= 1.25:
		return SeverityLow
	case ratio <= 1.5:
		return SeverityMedium
	case ratio <= 2.0:
		return SeverityHigh
	default:
		return SeverityCritical
	}
}
