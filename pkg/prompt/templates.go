package prompt

import "github.com/conclave-run/conclave/pkg/models"

// CODING_RULES, REPORT_RULES, and PAPER_RULES are the default agenda rules
// auto-injected when a meeting's creator supplies none, keyed by output
// type. CONCISENESS_RULE is appended regardless of output type.
var (
	CODING_RULES = []string{
		"Emit all code as a JSON manifest of {path, language, content} objects inside a single fenced block.",
		"Prefer small, composable functions over large monoliths.",
		"Every file must be complete and runnable as written — no ellipses or \"rest of code unchanged\".",
		"State any assumptions about unspecified interfaces explicitly before the manifest.",
	}

	REPORT_RULES = []string{
		"Organize findings under clear headings that mirror the agenda questions.",
		"Cite which prior meeting (if any) a claim was drawn from.",
		"Flag open questions rather than guessing at unverified facts.",
	}

	PAPER_RULES = []string{
		"Write in the register of a technical paper: abstract, methods, results, discussion.",
		"Support every claim with a specific observation or citation from the transcript.",
		"Avoid first-person framing of the conversation itself.",
	}

	CONCISENESS_RULE = "Be concise: prefer the shortest response that fully answers the question."
)

// defaultRulesFor returns the built-in rule set for an output type, used
// when the meeting's own AgendaRules is empty.
func defaultRulesFor(outputType models.OutputType) []string {
	switch outputType {
	case models.OutputTypeCode:
		return append(append([]string{}, CODING_RULES...), CONCISENESS_RULE)
	case models.OutputTypePaper:
		return append(append([]string{}, PAPER_RULES...), CONCISENESS_RULE)
	default:
		return append(append([]string{}, REPORT_RULES...), CONCISENESS_RULE)
	}
}

// codeManifestInstruction is appended to a code-meeting agent's system
// prompt, constraining output to the JSON manifest format the code
// extractor expects.
const codeManifestInstruction = `When you produce code, emit it as a JSON manifest inside a single fenced block:
` + "```" + `json
{"files":[{"path":"relative/path.ext","language":"python","content":"..."}]}
` + "```" + `
Every path must include a file extension. Do not split code across multiple manifests.`

// noCodeInstruction is appended instead of codeManifestInstruction for
// non-coding agents participating in a code-output meeting.
const noCodeInstruction = "This meeting produces code, but your role is non-technical: contribute analysis, requirements, or review — do not emit source code yourself."

// finalTemplateFor returns the output-type-specific instruction appended to
// the lead's final-round prompt.
func finalTemplateFor(outputType models.OutputType) string {
	switch outputType {
	case models.OutputTypeCode:
		return "This is the final round. Produce the complete code manifest covering every file discussed, with no open TODOs."
	case models.OutputTypePaper:
		return "This is the final round. Produce the complete paper: abstract, methods, results, discussion, conclusion."
	default:
		return "This is the final round. Produce the complete report covering every agenda question."
	}
}
