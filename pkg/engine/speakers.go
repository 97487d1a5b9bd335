// Package engine runs a meeting as a bounded sequence of rounds: it orders
// speakers, assembles each one's prompt, dispatches the LLM call, and
// returns the resulting messages. It never touches the store or the event
// bus directly — callers inject onAgentStart/onAgentDone callbacks so the
// engine stays reusable by both the background runner and a synchronous
// run-to-completion adapter.
package engine

import (
	"strings"

	"github.com/conclave-run/conclave/pkg/models"
)

var leadKeywords = []string{
	"principal investigator", "pi", "team lead", "lead scientist", "director",
	"head of", "chief", "supervisor", "coordinator",
}

var criticKeywords = []string{
	"critic", "reviewer", "evaluator", "scientific critic", "peer review",
}

var integratorKeywords = []string{"integrator", "integration", "consolidat"}

var codingKeywords = []string{"engineer", "developer", "programmer", "software engineer", "ml engineer"}

func classify(a *models.Agent) models.SpeakerClass {
	fields := strings.ToLower(a.DisplayName + " " + a.Title + " " + a.Role)
	for _, kw := range leadKeywords {
		if strings.Contains(fields, kw) {
			return models.SpeakerClassLead
		}
	}
	for _, kw := range criticKeywords {
		if strings.Contains(fields, kw) {
			return models.SpeakerClassCritic
		}
	}
	return models.SpeakerClassMember
}

func isIntegratorCandidate(a *models.Agent) bool {
	fields := strings.ToLower(a.DisplayName + " " + a.Title + " " + a.Role)
	for _, kw := range integratorKeywords {
		if strings.Contains(fields, kw) {
			return true
		}
	}
	return false
}

func isCodingAgent(a *models.Agent) bool {
	fields := strings.ToLower(a.DisplayName + " " + a.Title + " " + a.Role)
	for _, kw := range codingKeywords {
		if strings.Contains(fields, kw) {
			return true
		}
	}
	return false
}

// speakerOrder is the result of sortAgentsForMeeting: the lead, the
// optional critic, the ordered member list, and (for code meetings) the
// chosen integrator.
type speakerOrder struct {
	Lead       *models.Agent
	Critic     *models.Agent
	Members    []*models.Agent
	Integrator *models.Agent
}

// sortAgentsForMeeting classifies each agent by keyword match over
// {name, title, role} and resolves the lead/critic/member/integrator
// roles, applying the spec's fallback rules: first match wins within a
// class; if no lead is found the first non-critic agent becomes lead; if
// only a critic exists it acts as lead.
func sortAgentsForMeeting(agents []*models.Agent) speakerOrder {
	var lead, critic *models.Agent
	var members []*models.Agent

	for _, a := range agents {
		switch classify(a) {
		case models.SpeakerClassLead:
			if lead == nil {
				lead = a
			} else {
				members = append(members, a)
			}
		case models.SpeakerClassCritic:
			if critic == nil {
				critic = a
			} else {
				members = append(members, a)
			}
		default:
			members = append(members, a)
		}
	}

	if lead == nil {
		for i, m := range members {
			if classify(m) != models.SpeakerClassCritic {
				lead = m
				members = append(members[:i:i], members[i+1:]...)
				break
			}
		}
		if lead == nil && critic != nil {
			lead = critic
			critic = nil
		}
	}

	so := speakerOrder{Lead: lead, Critic: critic, Members: members}
	so.Integrator = chooseIntegrator(lead, members)
	return so
}

func chooseIntegrator(lead *models.Agent, members []*models.Agent) *models.Agent {
	for _, m := range members {
		if isIntegratorCandidate(m) {
			return m
		}
	}
	for _, m := range members {
		if isCodingAgent(m) {
			return m
		}
	}
	return lead
}
