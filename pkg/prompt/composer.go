// Package prompt composes the exact strings sent to the LLM client: agent
// personas, phase-specific instructions, and the meeting-start context
// block. It holds no state — given identical inputs it produces identical
// output, which is what lets tests pin on exact substrings.
package prompt

import (
	"fmt"
	"strings"

	"github.com/conclave-run/conclave/pkg/models"
)

// HumanFeedbackPrefix marks a user-role message with no originating agent
// so models treat it as a high-priority instruction when it resurfaces in
// later turns' history.
const HumanFeedbackPrefix = "**Human feedback:** "

// Composer turns (agents, round, agenda, history, language hint) into the
// payload sent to the LLM client. It is intentionally stateless.
type Composer struct{}

// NewComposer returns a ready-to-use Composer.
func NewComposer() *Composer { return &Composer{} }

// SystemPromptFor builds an agent's persona prompt, appending the code
// manifest instruction for code-output meetings (or the no-code
// instruction for non-coding agents participating in one).
func (c *Composer) SystemPromptFor(agent *models.Agent, outputType models.OutputType) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s", agent.DisplayName)
	if agent.Title != "" {
		fmt.Fprintf(&b, ", %s", agent.Title)
	}
	b.WriteString(".\n")
	if agent.Expertise != "" {
		fmt.Fprintf(&b, "Expertise: %s\n", agent.Expertise)
	}
	if agent.Goal != "" {
		fmt.Fprintf(&b, "Goal: %s\n", agent.Goal)
	}
	if agent.Role != "" {
		fmt.Fprintf(&b, "Role: %s\n", agent.Role)
	}

	if outputType == models.OutputTypeCode {
		if isCodingAgent(agent) {
			b.WriteString("\n" + codeManifestInstruction)
		} else {
			b.WriteString("\n" + noCodeInstruction)
		}
	}
	return b.String()
}

// MeetingStartPrompt is injected as a pseudo-user message at round 1 of
// every structured meeting.
func (c *Composer) MeetingStartPrompt(leadName string, memberNames []string, agenda string, questions, rules []string, numRounds int, preferredLang string, criticName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Meeting agenda: %s\n", agenda)
	if len(questions) > 0 {
		b.WriteString("Questions to address:\n")
		for i, q := range questions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q)
		}
	}
	if len(rules) > 0 {
		b.WriteString("Rules:\n")
		for _, r := range rules {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	fmt.Fprintf(&b, "Team lead: %s\n", leadName)
	if len(memberNames) > 0 {
		fmt.Fprintf(&b, "Members: %s\n", strings.Join(memberNames, ", "))
	}
	if criticName != "" {
		fmt.Fprintf(&b, "Critic: %s\n", criticName)
	}
	fmt.Fprintf(&b, "This meeting will run for %d round(s).\n", numRounds)
	if preferredLang != "" {
		fmt.Fprintf(&b, "Respond in %s.\n", preferredLang)
	}
	return b.String()
}

// IndividualMeetingStartPrompt is the round-1 context for an individual
// meeting, where a single agent is cross-examined by a synthetic critic.
func (c *Composer) IndividualMeetingStartPrompt(agentName string, agenda string, questions []string, numRounds int, preferredLang string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Individual consultation with %s.\n", agentName)
	fmt.Fprintf(&b, "Agenda: %s\n", agenda)
	for i, q := range questions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	fmt.Fprintf(&b, "This consultation will run for %d round(s).\n", numRounds)
	if preferredLang != "" {
		fmt.Fprintf(&b, "Respond in %s.\n", preferredLang)
	}
	return b.String()
}

// InitialPrompt is the lead's round-1 instruction.
func (c *Composer) InitialPrompt(round, numRounds int) string {
	return fmt.Sprintf("Round %d of %d: open the discussion, set direction, and pose the first concrete question to the team.", round, numRounds)
}

// SynthesisPrompt is the lead's instruction for any middle round.
func (c *Composer) SynthesisPrompt(round, numRounds int) string {
	return fmt.Sprintf("Round %d of %d: synthesize what the team has said so far and steer toward the remaining open questions.", round, numRounds)
}

// FinalPrompt is the lead's last-round instruction, including the
// output-type-specific template.
func (c *Composer) FinalPrompt(round, numRounds int, outputType models.OutputType) string {
	return fmt.Sprintf("Round %d of %d (final). %s", round, numRounds, finalTemplateFor(outputType))
}

// MemberPrompt asks a member to contribute; middle/final rounds permit PASS.
func (c *Composer) MemberPrompt(name string, round, numRounds int) string {
	if round == 1 && round < numRounds {
		return fmt.Sprintf("%s: contribute your perspective on the lead's opening point.", name)
	}
	if round < numRounds {
		return fmt.Sprintf("%s: contribute your perspective on the lead's latest point, or respond \"PASS\" if you have nothing to add.", name)
	}
	return fmt.Sprintf("%s: offer any final perspective, or respond \"PASS\".", name)
}

// CriticPrompt asks the critic to review the round's contributions so far.
func (c *Composer) CriticPrompt(name string) string {
	return fmt.Sprintf("%s: critically review the discussion so far. Identify gaps, risks, or unsupported claims.", name)
}

// IntegratorPrompt asks the integrator to consolidate member contributions
// into a single coherent artifact (used in code meetings).
func (c *Composer) IntegratorPrompt(name string) string {
	return fmt.Sprintf("%s: integrate the contributions so far into one consistent, non-duplicated result.", name)
}

// RewritePrompt seeds a rewrite meeting with the parent meeting's feedback.
func (c *Composer) RewritePrompt(feedback string) string {
	return fmt.Sprintf("This meeting refines a prior output under the following feedback:\n%s", feedback)
}

// MergePrompt asks the lead to synthesize source-meeting summaries into a
// single output.
func (c *Composer) MergePrompt(numSources int) string {
	return fmt.Sprintf("Synthesize the %d source meeting summaries above into a single coherent output.", numSources)
}

// WrapHumanFeedback prefixes a user-role message with no originating agent
// so it is recognized as high-priority when re-inserted into history.
func (c *Composer) WrapHumanFeedback(content string) string {
	if strings.HasPrefix(content, HumanFeedbackPrefix) {
		return content
	}
	return HumanFeedbackPrefix + content
}

// WrapContextSummary wraps a prior-meeting excerpt with explicit begin/end
// markers so the model can distinguish injected context from live turns.
func WrapContextSummary(index int, title, summary string) string {
	return fmt.Sprintf("[begin summary %d] %s: %s [end summary %d]", index, title, summary, index)
}

// PhaseTemperature returns the sampling temperature for exploration
// (round 1), synthesis (middle rounds), or final (last round) phases. A
// single-round meeting's round 1 is also its final round; final wins,
// since the last round always emits the output-type template and that
// output benefits more from a low temperature than round 1's framing would.
func (c *Composer) PhaseTemperature(round, numRounds int) float64 {
	switch {
	case round == numRounds:
		return 0.2
	case round == 1:
		return 0.8
	default:
		return 0.4
	}
}

func isCodingAgent(agent *models.Agent) bool {
	for _, needle := range []string{"engineer", "developer", "programmer", "software engineer", "ml engineer"} {
		if strings.Contains(strings.ToLower(agent.Role), needle) || strings.Contains(strings.ToLower(agent.Title), needle) {
			return true
		}
	}
	return false
}

// DefaultRulesFor exposes the package-level default rule sets for callers
// assembling a meeting's AgendaRules when the creator supplied none.
func DefaultRulesFor(outputType models.OutputType) []string {
	return defaultRulesFor(outputType)
}
