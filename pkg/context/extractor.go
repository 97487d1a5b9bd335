// Package context implements the meeting-chain context extractor: a
// lightweight keyword-based retrieval over prior meeting transcripts used
// to seed a new meeting's round-1 prompt.
package context

import (
	"context"
	"fmt"
	"strings"
)

// Summary is one prior meeting's contribution to the context block,
// injected at round 1 wrapped with begin/end summary markers.
type Summary struct {
	Title   string
	Excerpt string
}

// TranscriptSource supplies a prior meeting's ordered assistant messages
// and title. Implemented by the repository gateway in production, by a
// fake in tests.
type TranscriptSource interface {
	MeetingTitle(ctx context.Context, meetingID string) (string, error)
	AssistantMessages(ctx context.Context, meetingID string) ([]string, error)
}

// Extractor builds the context summaries for a new meeting's agenda from a
// list of prior meeting ids.
type Extractor struct {
	source      TranscriptSource
	budgetChars int
}

// NewExtractor builds an Extractor reading from source, truncating its
// total output to budgetChars (the spec's default is 3000).
func NewExtractor(source TranscriptSource, budgetChars int) *Extractor {
	if budgetChars <= 0 {
		budgetChars = 3000
	}
	return &Extractor{source: source, budgetChars: budgetChars}
}

// Extract returns one Summary per prior meeting id, in order, truncated to
// fit the character budget as a whole.
func (e *Extractor) Extract(ctx context.Context, meetingIDs []string, agenda string, questions []string) ([]Summary, error) {
	keywords := ExtractKeywords(agenda, questions)

	summaries := make([]Summary, 0, len(meetingIDs))
	for _, id := range meetingIDs {
		title, err := e.source.MeetingTitle(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("context: meeting title for %s: %w", id, err)
		}
		messages, err := e.source.AssistantMessages(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("context: assistant messages for %s: %w", id, err)
		}
		excerpt := excerptFor(messages, keywords)
		summaries = append(summaries, Summary{Title: title, Excerpt: excerpt})
	}

	return truncateToBudget(summaries, e.budgetChars), nil
}

// ExtractKeywords builds a deduplicated, order-preserving keyword set from
// free text and a question list: alphanumeric tokens longer than 2
// characters, lower-cased, with built-in stop words filtered out.
func ExtractKeywords(agenda string, questions []string) []string {
	var all strings.Builder
	all.WriteString(agenda)
	for _, q := range questions {
		all.WriteString(" ")
		all.WriteString(q)
	}

	seen := make(map[string]bool)
	var keywords []string
	for _, tok := range tokenize(all.String()) {
		word := strings.ToLower(tok)
		if len(word) <= 2 || isStopWord(word) || seen[word] {
			continue
		}
		seen[word] = true
		keywords = append(keywords, word)
	}
	return keywords
}

func tokenize(s string) []string {
	var tokens []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			tokens = append(tokens, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return tokens
}

// excerptFor splits each assistant message on blank lines into paragraphs,
// keeps paragraphs containing at least one keyword, and falls back to the
// last assistant message when nothing matches.
func excerptFor(messages []string, keywords []string) string {
	var matched []string
	for _, msg := range messages {
		for _, para := range splitParagraphs(msg) {
			if paragraphMatches(para, keywords) {
				matched = append(matched, strings.TrimSpace(para))
			}
		}
	}
	if len(matched) > 0 {
		return strings.Join(matched, "\n\n")
	}
	if len(messages) > 0 {
		return strings.TrimSpace(messages[len(messages)-1])
	}
	return ""
}

func splitParagraphs(text string) []string {
	return strings.Split(text, "\n\n")
}

func paragraphMatches(para string, keywords []string) bool {
	lower := strings.ToLower(para)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// truncateToBudget enforces a global character budget across all
// summaries' excerpts combined, truncating the last summary that would
// overflow it and marking it with an ellipsis.
func truncateToBudget(summaries []Summary, budget int) []Summary {
	used := 0
	out := make([]Summary, 0, len(summaries))
	for _, s := range summaries {
		remaining := budget - used
		if remaining <= 0 {
			break
		}
		if len(s.Excerpt) > remaining {
			s.Excerpt = s.Excerpt[:remaining] + "…"
		}
		used += len(s.Excerpt)
		out = append(out, s)
	}
	return out
}
