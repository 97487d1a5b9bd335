package codeextract

import (
	"fmt"
	"strings"

	"github.com/conclave-run/conclave/pkg/models"
)

// SourceMessage is the minimal view of a meeting transcript message this
// package needs: who said it and what it contained.
type SourceMessage struct {
	AgentName string
	Content   string
}

// Extract walks a meeting's assistant messages looking for code output: a
// JSON manifest inside a fenced block takes priority over scanning
// individual fenced code blocks. Returns one CodeArtifact per file found,
// plus a synthesized requirements.txt when any Python file imports a
// third-party package. Never returns an error — a message with no
// recognizable code simply contributes no artifacts.
func Extract(messages []SourceMessage) []models.CodeArtifact {
	var artifacts []models.CodeArtifact
	blockCounter := 0
	var pythonSources []string

	var transcript strings.Builder
	for _, msg := range messages {
		transcript.WriteString(msg.Content)
		transcript.WriteString("\n")
	}
	pathTokens := scanPathTokens(transcript.String())
	tokenIdx := 0

	for _, msg := range messages {
		fileEntries, ok := manifestFromMessage(msg.Content)
		if ok {
			for _, e := range fileEntries {
				artifacts = append(artifacts, models.CodeArtifact{
					Filename:    withExtension(e.Path, e.Language),
					Language:    e.Language,
					Content:     e.content(),
					SourceAgent: msg.AgentName,
				})
				if isPython(e.Language, e.Path) {
					pythonSources = append(pythonSources, e.content())
				}
			}
			continue
		}

		blocks := scanFencedBlocks(msg.Content)
		if len(blocks) == 0 {
			continue
		}
		for _, b := range blocks {
			blockCounter++
			filename := filenameHint(b.PrecedingText)
			if filename == "" && tokenIdx < len(pathTokens) {
				filename = pathTokens[tokenIdx]
				tokenIdx++
			}
			ext := extensionFor(b.Lang)
			if filename == "" {
				if name := inferNameFromContent(b.Lang, b.Content); name != "" {
					filename = name + "." + ext
				}
			}
			if filename == "" {
				filename = fmt.Sprintf("code_%d.%s", blockCounter, ext)
			}

			artifacts = append(artifacts, models.CodeArtifact{
				Filename:    filename,
				Language:    b.Lang,
				Content:     strings.TrimRight(b.Content, "\n"),
				SourceAgent: msg.AgentName,
			})
			if isPython(b.Lang, filename) {
				pythonSources = append(pythonSources, b.Content)
			}
		}
	}

	if reqs := GenerateRequirements(pythonSources); len(reqs) > 0 {
		artifacts = append(artifacts, models.CodeArtifact{
			Filename:    "requirements.txt",
			Language:    "text",
			Content:     requirementsText(reqs),
			SourceAgent: "system",
		})
	}

	return artifacts
}

// manifestFromMessage looks for a JSON manifest either as the message's
// entire content or inside one of its fenced blocks.
func manifestFromMessage(content string) ([]manifestEntry, bool) {
	if entries, ok := parseManifest(strings.TrimSpace(content)); ok {
		return entries, true
	}
	for _, b := range scanFencedBlocks(content) {
		if entries, ok := parseManifest(strings.TrimSpace(b.Content)); ok {
			return entries, true
		}
	}
	return nil, false
}

func isPython(lang, filename string) bool {
	l := strings.ToLower(lang)
	return l == "python" || l == "py" || strings.HasSuffix(filename, ".py")
}
