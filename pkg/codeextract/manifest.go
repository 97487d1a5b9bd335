// Package codeextract parses assistant output into a file tree after a
// meeting completes: a JSON manifest takes priority, falling back to
// fenced-code-block scanning with filename inference.
package codeextract

import "encoding/json"

// manifestEntry is one file in a JSON code manifest emitted by an agent
// following the composer's code-output instruction.
type manifestEntry struct {
	Path     string `json:"path"`
	Language string `json:"language"`
	Content  string `json:"content"`
	Code     string `json:"code"` // accepted alias for Content
}

// parseManifest attempts to decode text as a JSON manifest ([]manifestEntry
// or {"files": [...]}). Returns ok=false if text is not a recognizable
// manifest so the caller falls through to fenced-block scanning.
func parseManifest(text string) (entries []manifestEntry, ok bool) {
	var direct []manifestEntry
	if err := json.Unmarshal([]byte(text), &direct); err == nil && len(direct) > 0 {
		return direct, true
	}

	var wrapped struct {
		Files []manifestEntry `json:"files"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil && len(wrapped.Files) > 0 {
		return wrapped.Files, true
	}

	return nil, false
}

func (e manifestEntry) content() string {
	if e.Content != "" {
		return e.Content
	}
	return e.Code
}
