package prompt

import (
	"strings"
	"testing"

	"github.com/conclave-run/conclave/pkg/models"
)

func TestSystemPromptForCodeMeetingAppendsManifestInstructionForEngineer(t *testing.T) {
	c := NewComposer()
	agent := &models.Agent{DisplayName: "Ada", Title: "Software Engineer"}
	out := c.SystemPromptFor(agent, models.OutputTypeCode)
	if !strings.Contains(out, "JSON manifest") {
		t.Errorf("expected manifest instruction in prompt, got: %s", out)
	}
}

func TestSystemPromptForCodeMeetingSuppressesManifestForNonCoder(t *testing.T) {
	c := NewComposer()
	agent := &models.Agent{DisplayName: "Dr. X", Title: "Principal Investigator"}
	out := c.SystemPromptFor(agent, models.OutputTypeCode)
	if strings.Contains(out, "JSON manifest") {
		t.Errorf("did not expect manifest instruction for non-coding agent, got: %s", out)
	}
	if !strings.Contains(out, "non-technical") {
		t.Errorf("expected no-code instruction, got: %s", out)
	}
}

func TestPhaseTemperatureSchedule(t *testing.T) {
	c := NewComposer()
	if got := c.PhaseTemperature(1, 3); got != 0.8 {
		t.Errorf("round 1 expected 0.8, got %v", got)
	}
	if got := c.PhaseTemperature(2, 3); got != 0.4 {
		t.Errorf("middle round expected 0.4, got %v", got)
	}
	if got := c.PhaseTemperature(3, 3); got != 0.2 {
		t.Errorf("final round expected 0.2, got %v", got)
	}
}

func TestWrapHumanFeedbackIsIdempotent(t *testing.T) {
	c := NewComposer()
	once := c.WrapHumanFeedback("please slow down")
	twice := c.WrapHumanFeedback(once)
	if once != twice {
		t.Errorf("expected prefixing to be idempotent, got %q then %q", once, twice)
	}
	if !strings.HasPrefix(once, HumanFeedbackPrefix) {
		t.Errorf("expected prefix, got %q", once)
	}
}

func TestComposerIsDeterministic(t *testing.T) {
	c := NewComposer()
	agent := &models.Agent{DisplayName: "Ada", Title: "Engineer"}
	a := c.SystemPromptFor(agent, models.OutputTypeReport)
	b := c.SystemPromptFor(agent, models.OutputTypeReport)
	if a != b {
		t.Errorf("expected identical output for identical input, got %q vs %q", a, b)
	}
}

func TestDefaultRulesForIncludesConciseness(t *testing.T) {
	rules := DefaultRulesFor(models.OutputTypeCode)
	if rules[len(rules)-1] != CONCISENESS_RULE {
		t.Errorf("expected conciseness rule appended last, got %v", rules)
	}
}
