package api

// RunMeetingRequest is the HTTP request body for POST /meetings/:id/run
// and POST /meetings/:id/run-background.
type RunMeetingRequest struct {
	Rounds int    `json:"rounds,omitempty"`
	Topic  string `json:"topic,omitempty"`
	Locale string `json:"locale,omitempty"`
}

// CreateTeamRequest is the HTTP request body for POST /api/v1/teams.
type CreateTeamRequest struct {
	Name            string `json:"name"`
	Description     string `json:"description,omitempty"`
	DefaultLanguage string `json:"default_language,omitempty"`
	Public          bool   `json:"public,omitempty"`
}

// CreateAgentRequest is the HTTP request body for POST /api/v1/teams/:id/agents.
type CreateAgentRequest struct {
	DisplayName  string `json:"display_name"`
	Title        string `json:"title,omitempty"`
	Expertise    string `json:"expertise,omitempty"`
	Goal         string `json:"goal,omitempty"`
	Role         string `json:"role,omitempty"`
	Model        string `json:"model"`
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// RegisterWebhookRequest is the HTTP request body for POST /meetings/:id/webhooks.
type RegisterWebhookRequest struct {
	URL    string   `json:"url"`
	Events []string `json:"events,omitempty"`
	Secret string   `json:"secret,omitempty"`
}

// CreateMeetingRequest is the HTTP request body for POST /meetings.
type CreateMeetingRequest struct {
	TeamID              string   `json:"team_id"`
	Title               string   `json:"title"`
	Agenda              string   `json:"agenda,omitempty"`
	AgendaQuestions     []string `json:"agenda_questions,omitempty"`
	AgendaRules         []string `json:"agenda_rules,omitempty"`
	OutputType          string   `json:"output_type,omitempty"`
	MeetingType         string   `json:"meeting_type,omitempty"`
	MaxRounds           int      `json:"max_rounds"`
	ParticipantAgentIDs []string `json:"participant_agent_ids,omitempty"`
	IndividualAgentID   string   `json:"individual_agent_id,omitempty"`
	SourceMeetingIDs    []string `json:"source_meeting_ids,omitempty"`
	ContextMeetingIDs   []string `json:"context_meeting_ids,omitempty"`
	AgendaStrategy      string   `json:"agenda_strategy,omitempty"`
	Locale              string   `json:"locale,omitempty"`
}
