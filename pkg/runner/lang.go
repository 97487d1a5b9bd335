package runner

import "github.com/conclave-run/conclave/pkg/models"

// resolveLang picks the preferred response language for a run: an
// explicit per-call override (locale passed to start_round) beats the
// meeting's own locale, which beats the owning team's default language.
// Extracting a language signal from the conversation itself ("message"
// priority in the original ordering) is deliberately not implemented —
// see DESIGN.md.
func resolveLang(override string, meeting *models.Meeting, team *models.Team) string {
	if override != "" {
		return override
	}
	if meeting.Locale != "" {
		return meeting.Locale
	}
	if team != nil {
		return team.DefaultLanguage
	}
	return ""
}
