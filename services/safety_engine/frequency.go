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

	"github.com/seedpost/sentinel/services/safety_engine/limits"
)

// checkVolumeCaps enforces the per-persona and per-subreddit volume
// limits plus the product-mention cap. Counts accumulate in maps built
// fresh per call; findings come back sorted by the flagged id.
func checkVolumeCaps(convs []ScheduledConversation, l *limits.Limits) []Finding {
	postsByPersona := make(map[string]int)
	postsBySubreddit := make(map[string]int)
	mentionsByPersona := make(map[string]map[string]struct{}) // persona -> conversations with a product mention

	for _, conv := range convs {
		postsByPersona[conv.Post.PersonaID]++
		postsBySubreddit[conv.Subreddit]++

		recordMention := func(personaID string) {
			if mentionsByPersona[personaID] == nil {
				mentionsByPersona[personaID] = make(map[string]struct{})
			}
			mentionsByPersona[personaID][conv.ID] = struct{}{}
		}
		if conv.Post.MentionsProduct {
			recordMention(conv.Post.PersonaID)
		}
		for _, c := range conv.Comments {
			if c.MentionsProduct {
				recordMention(c.PersonaID)
			}
		}
	}

	var findings []Finding
	for _, personaID := range sortedKeys(postsByPersona) {
		count := postsByPersona[personaID]
		if count <= l.MaxPostsPerPersona {
			continue
		}
		findings = append(findings, Finding{
			Kind:     KindPersonaOveruse,
			Severity: severityForExcess(float64(count), float64(l.MaxPostsPerPersona)),
			Description: fmt.Sprintf("persona %q authors %d posts (limit %d)",
				personaID, count, l.MaxPostsPerPersona),
			PersonaIDs: []string{personaID},
			Evidence:   float64(count),
		})
	}
	for _, subreddit := range sortedKeys(postsBySubreddit) {
		count := postsBySubreddit[subreddit]
		if count <= l.MaxPostsPerSubreddit {
			continue
		}
		findings = append(findings, Finding{
			Kind:     KindSubredditOveruse,
			Severity: severityForExcess(float64(count), float64(l.MaxPostsPerSubreddit)),
			Description: fmt.Sprintf("subreddit %q receives %d posts (limit %d)",
				subreddit, count, l.MaxPostsPerSubreddit),
			Evidence: float64(count),
		})
	}
	personaIDs := make([]string, 0, len(mentionsByPersona))
	for id := range mentionsByPersona {
		personaIDs = append(personaIDs, id)
	}
	sort.Strings(personaIDs)
	for _, personaID := range personaIDs {
		count := len(mentionsByPersona[personaID])
		if count <= l.MaxProductMentions {
			continue
		}
		convIDs := make([]string, 0, count)
		for id := range mentionsByPersona[personaID] {
			convIDs = append(convIDs, id)
		}
		sort.Strings(convIDs)
		findings = append(findings, Finding{
			Kind:     KindExcessProductMentions,
			Severity: severityForExcess(float64(count), float64(l.MaxProductMentions)),
			Description: fmt.Sprintf("persona %q mentions the product in %d conversations (limit %d)",
				personaID, count, l.MaxProductMentions),
			ConversationIDs: convIDs,
			PersonaIDs:      []string{personaID},
			Evidence:        float64(count),
		})
	}
	return findings
}

// checkTiming validates post gaps per subreddit and comment/reply offsets
// against the configured windows.
func checkTiming(convs []ScheduledConversation, l *limits.Limits) []Finding {
	var findings []Finding

	// Posts to the same subreddit must keep a sane distance. Scheduled
	// order is by timestamp, not input order.
	bySubreddit := make(map[string][]ScheduledConversation)
	for _, conv := range convs {
		bySubreddit[conv.Subreddit] = append(bySubreddit[conv.Subreddit], conv)
	}
	for _, subreddit := range sortedSliceKeys(bySubreddit) {
		group := bySubreddit[subreddit]
		sort.Slice(group, func(i, j int) bool {
			if !group[i].ScheduledAt.Equal(group[j].ScheduledAt) {
				return group[i].ScheduledAt.Before(group[j].ScheduledAt)
			}
			return group[i].ID < group[j].ID
		})
		for i := 1; i < len(group); i++ {
			gap := group[i].ScheduledAt.Sub(group[i-1].ScheduledAt).Minutes()
			if gap >= l.MinGapBetweenPosts && gap <= l.MaxGapBetweenPosts {
				continue
			}
			findings = append(findings, Finding{
				Kind:     KindTimingGapViolation,
				Severity: SeverityMedium,
				Description: fmt.Sprintf("posts %q and %q in r/%s are %.0f minutes apart (allowed %.0f-%.0f)",
					group[i-1].ID, group[i].ID, subreddit, gap, l.MinGapBetweenPosts, l.MaxGapBetweenPosts),
				ConversationIDs: []string{group[i-1].ID, group[i].ID},
				Evidence:        gap,
			})
		}
	}

	// Comment offsets run from the post, reply offsets from the parent
	// comment; both must stay inside their configured window.
	for _, conv := range convs {
		for _, c := range conv.Comments {
			window := l.CommentWindow
			label := "comment"
			if c.IsReply() {
				window = l.ReplyWindow
				label = "reply"
			}
			if window.Contains(c.OffsetMinutes) {
				continue
			}
			findings = append(findings, Finding{
				Kind:     KindTimingWindowViolation,
				Severity: SeverityMedium,
				Description: fmt.Sprintf("%s %q in conversation %q is offset %.0f minutes (allowed %.0f-%.0f)",
					label, c.ID, conv.ID, c.OffsetMinutes, window.Min, window.Max),
				ConversationIDs: []string{conv.ID},
				PersonaIDs:      []string{c.PersonaID},
				Evidence:        c.OffsetMinutes,
			})
		}
	}
	return findings
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedSliceKeys(m map[string][]ScheduledConversation) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
