// Copyright (C) 2026 Seedpost Labs (eng@seedpost.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
package safety_engine

import (
	"fmt"
	"sort"
	"strings"
)

// trigramSet builds the set of token trigrams for one document. Documents
// shorter than three tokens produce an empty set.
func trigramSet(text string) map[string]struct{} {
	words := tokenize(text)
	set := make(map[string]struct{})
	for i := 0; i+3 <= len(words); i++ {
		set[words[i]+" "+words[i+1]+" "+words[i+2]] = struct{}{}
	}
	return set
}

// jaccard computes intersection-over-union of two trigram sets. Symmetric
// by construction; two empty sets score 0.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	inter := 0
	for g := range small {
		if _, ok := large[g]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

// Similarity returns the trigram-overlap ratio in [0,1] between two text
// bodies. Set overlap is O(tokens) after tokenization and symmetric, which
// is why it is used over edit distance here.
func Similarity(a, b string) float64 {
	return jaccard(trigramSet(a), trigramSet(b))
}

// checkSimilarity concatenates each conversation into one representative
// document and compares every unique pair. Self-pairs are never compared.
// Findings come back sorted ascending by the lower conversation id, then
// the higher, so repeated runs serialize identically. Returns the findings
// and the number of pairs compared.
func checkSimilarity(convs []ScheduledConversation, maxSimilarityPercent float64) ([]Finding, int) {
	docs := make([]map[string]struct{}, len(convs))
	for i, conv := range convs {
		docs[i] = trigramSet(strings.Join(conv.AllContent(), " "))
	}

	var findings []Finding
	pairs := 0
	for i := 0; i < len(convs); i++ {
		for j := i + 1; j < len(convs); j++ {
			pairs++
			ratio := jaccard(docs[i], docs[j])
			percent := ratio * 100
			if percent <= maxSimilarityPercent {
				continue
			}
			lo, hi := convs[i].ID, convs[j].ID
			if hi < lo {
				lo, hi = hi, lo
			}
			findings = append(findings, Finding{
				Kind:     KindContentSimilarity,
				Severity: severityForExcess(percent, maxSimilarityPercent),
				Description: fmt.Sprintf("conversations %q and %q are %.1f%% similar (limit %.1f%%)",
					lo, hi, percent, maxSimilarityPercent),
				ConversationIDs: []string{lo, hi},
				Evidence:        ratio,
			})
		}
	}
	sort.Slice(findings, func(a, b int) bool {
		if findings[a].ConversationIDs[0] != findings[b].ConversationIDs[0] {
			return findings[a].ConversationIDs[0] < findings[b].ConversationIDs[0]
		}
		return findings[a].ConversationIDs[1] < findings[b].ConversationIDs[1]
	})
	return findings, pairs
}
