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
)

// personaPair is an unordered persona pair, stored with A < B so a pair
// has exactly one map key.
type personaPair struct {
	A, B string
}

func makePersonaPair(x, y string) personaPair {
	if y < x {
		x, y = y, x
	}
	return personaPair{A: x, B: y}
}

// checkCollusion builds a co-occurrence model over personas and flags
// pairs that appear together suspiciously often. For each pair the
// fraction is (conversations containing both) / (conversations containing
// either). Pairs co-occurring in fewer than two conversations are exempt
// regardless of fraction: one shared thread cannot establish a pattern.
func checkCollusion(convs []ScheduledConversation, maxCollusionPercent float64) []Finding {
	appearances := make(map[string]map[string]struct{}) // persona -> conversation set
	together := make(map[personaPair]map[string]struct{})

	for _, conv := range convs {
		ids := conv.PersonaIDs()
		for _, id := range ids {
			if appearances[id] == nil {
				appearances[id] = make(map[string]struct{})
			}
			appearances[id][conv.ID] = struct{}{}
		}
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pair := makePersonaPair(ids[i], ids[j])
				if together[pair] == nil {
					together[pair] = make(map[string]struct{})
				}
				together[pair][conv.ID] = struct{}{}
			}
		}
	}

	pairs := make([]personaPair, 0, len(together))
	for pair := range together {
		pairs = append(pairs, pair)
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].A != pairs[j].A {
			return pairs[i].A < pairs[j].A
		}
		return pairs[i].B < pairs[j].B
	})

	var findings []Finding
	for _, pair := range pairs {
		shared := together[pair]
		if len(shared) < 2 {
			continue
		}
		either := len(appearances[pair.A]) + len(appearances[pair.B]) - len(shared)
		fraction := float64(len(shared)) / float64(either)
		percent := fraction * 100
		if percent <= maxCollusionPercent {
			continue
		}
		convIDs := make([]string, 0, len(shared))
		for id := range shared {
			convIDs = append(convIDs, id)
		}
		sort.Strings(convIDs)
		findings = append(findings, Finding{
			Kind:     KindPersonaCollusion,
			Severity: severityForExcess(percent, maxCollusionPercent),
			Description: fmt.Sprintf("personas %q and %q co-occur in %d of %d conversations (%.1f%%, limit %.1f%%)",
				pair.A, pair.B, len(shared), either, percent, maxCollusionPercent),
			ConversationIDs: convIDs,
			PersonaIDs:      []string{pair.A, pair.B},
			Evidence:        fraction,
		})
	}
	return findings
}
