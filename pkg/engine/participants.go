package engine

import "github.com/conclave-run/conclave/pkg/models"

// SyntheticScientificCritic builds the synthetic critic persona paired
// with the chosen agent in an individual meeting. It is not a persisted
// team agent — it exists only for the duration of the run.
func SyntheticScientificCritic(model string) *models.Agent {
	return &models.Agent{
		ID:          "synthetic-scientific-critic",
		DisplayName: "Scientific Critic",
		Title:       "Scientific Critic",
		Role:        "Reviews the chosen agent's reasoning for gaps, risks, and unsupported claims.",
		Model:       model,
	}
}

// FilterParticipants resolves a meeting's speaker pool from a team's full
// agent roster: non-empty participant_agent_ids (or individual_agent_id
// for individual meetings) restricts the pool to those ids; otherwise
// every non-mirror agent on the team participates.
func FilterParticipants(teamAgents []*models.Agent, meeting *models.Meeting) []*models.Agent {
	if meeting.MeetingType == models.MeetingTypeIndividual && meeting.IndividualAgentID != nil {
		var chosen *models.Agent
		for _, a := range teamAgents {
			if a.ID == *meeting.IndividualAgentID {
				chosen = a
				break
			}
		}
		if chosen == nil {
			return nil
		}
		return []*models.Agent{chosen}
	}

	if len(meeting.ParticipantAgentIDs) > 0 {
		allowed := make(map[string]bool, len(meeting.ParticipantAgentIDs))
		for _, id := range meeting.ParticipantAgentIDs {
			allowed[id] = true
		}
		var filtered []*models.Agent
		for _, a := range teamAgents {
			if allowed[a.ID] {
				filtered = append(filtered, a)
			}
		}
		return filtered
	}

	var filtered []*models.Agent
	for _, a := range teamAgents {
		if !a.IsMirror {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
