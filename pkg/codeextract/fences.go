package codeextract

import (
	"regexp"
	"strings"
)

// fencedBlock is one ```lang\n...\n``` block found in a transcript, along
// with the handful of lines immediately preceding it (used for hint scans).
type fencedBlock struct {
	Lang         string
	Content      string
	PrecedingText string
}

var fenceRe = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)\\n(.*?)```")

// scanFencedBlocks finds every fenced code block in text, in order of
// appearance, along with up to 5 preceding lines of context for each.
func scanFencedBlocks(text string) []fencedBlock {
	var blocks []fencedBlock
	matches := fenceRe.FindAllStringSubmatchIndex(text, -1)
	for _, m := range matches {
		lang := text[m[2]:m[3]]
		content := text[m[4]:m[5]]
		preceding := precedingLines(text[:m[0]], 5)
		blocks = append(blocks, fencedBlock{Lang: lang, Content: content, PrecedingText: preceding})
	}
	return blocks
}

func precedingLines(text string, n int) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// hintRe matches the handful of filepath-hint conventions the spec names:
// "# filename: X", "Save as `X`", "File: X", "### X", "**X**".
var hintRe = regexp.MustCompile(
	"(?i)(?:#\\s*filename:\\s*|save as `|file:\\s*|###\\s*|\\*\\*)([\\w./-]+\\.[\\w]+)",
)

// filenameHint inspects the lines preceding a code block for a filepath
// hint. Returns "" if none found or the candidate lacks a dot (extension).
func filenameHint(precedingText string) string {
	m := hintRe.FindStringSubmatch(precedingText)
	if m == nil {
		return ""
	}
	candidate := m[1]
	if !strings.Contains(candidate, ".") {
		return ""
	}
	return candidate
}

// pathTokenRe matches path-like tokens anywhere in the transcript:
// one-or-more "word/" segments followed by "word.ext".
var pathTokenRe = regexp.MustCompile(`\b(?:[\w-]+/)+[\w-]+\.[\w]+\b`)

// scanPathTokens returns every path-like token in the transcript, in
// encounter order, used to assign unhinted code blocks by position.
func scanPathTokens(text string) []string {
	return pathTokenRe.FindAllString(text, -1)
}
