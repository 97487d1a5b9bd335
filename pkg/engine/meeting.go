package engine

import (
	"context"

	"github.com/conclave-run/conclave/pkg/llmclient"
	"github.com/conclave-run/conclave/pkg/models"
	"github.com/conclave-run/conclave/pkg/prompt"
)

// MeetingInput is everything an orchestration strategy needs that the
// engine itself cannot fetch: the meeting, its resolved participant list
// (already filtered by participant_agent_ids/individual_agent_id and
// mirror exclusion), any persisted messages from earlier rounds (to seed
// history on resume), and the context/merge summaries to inject at round 1.
type MeetingInput struct {
	Meeting          *models.Meeting
	Agents           []*models.Agent
	PriorMessages    []*models.MeetingMessage
	ContextSummaries []ContextSummary
	SourceSummaries  []ContextSummary
	Lang             string
}

// RunResult is the full outcome of running a meeting to completion or to
// cancellation: every round executed this invocation, in order.
type RunResult struct {
	Rounds    []RoundResult
	Cancelled bool
}

// RoundCallback, when set, is invoked by the shared round loop after each
// round completes (whether or not it was cancelled mid-round), so the
// runner can persist the round and publish round_complete before the next
// one begins.
type RoundCallback func(round int, result RoundResult)

// runRounds drives rounds [meeting.CurrentRound+1, meeting.MaxRounds],
// building each round's speaker/prompt list via build, stopping early and
// reporting Cancelled if a turn observes context cancellation.
func runRounds(
	ctx context.Context,
	llm llmclient.Client,
	meeting *models.Meeting,
	history *turnHistory,
	build func(round, totalRounds int) []turnSpec,
	cb Callbacks,
	onRound RoundCallback,
) (RunResult, error) {
	composer := prompt.NewComposer()
	var out RunResult

	for round := meeting.CurrentRound + 1; round <= meeting.MaxRounds; round++ {
		specs := build(round, meeting.MaxRounds)
		result, err := runRound(ctx, llm, composer, history, meeting, specs, round, meeting.MaxRounds, cb)
		if err != nil {
			return out, err
		}
		out.Rounds = append(out.Rounds, result)
		if onRound != nil {
			onRound(round, result)
		}
		if result.Cancelled {
			out.Cancelled = true
			return out, nil
		}
	}
	return out, nil
}

// RunStructuredMeeting runs a team meeting with a non-empty agenda: round
// 1 is lead-initial then members (critic between members and the lead),
// middle rounds are lead-synthesis then members, the final round is lead
// only with the output-type template.
func RunStructuredMeeting(ctx context.Context, llm llmclient.Client, in MeetingInput, cb Callbacks, onRound RoundCallback) (RunResult, error) {
	composer := prompt.NewComposer()
	order := sortAgentsForMeeting(in.Agents)

	history := newTurnHistory()
	seedFromPersisted(history, in.PriorMessages)
	if in.Meeting.CurrentRound == 0 {
		memberNames := agentNames(order.Members)
		criticName := ""
		if order.Critic != nil {
			criticName = order.Critic.DisplayName
		}
		leadName := ""
		if order.Lead != nil {
			leadName = order.Lead.DisplayName
		}
		start := composer.MeetingStartPrompt(leadName, memberNames, in.Meeting.Agenda, in.Meeting.AgendaQuestions, in.Meeting.AgendaRules, in.Meeting.MaxRounds, in.Lang, criticName)
		if in.Meeting.ParentMeetingID != nil && in.Meeting.RewriteFeedback != "" {
			start = composer.RewritePrompt(in.Meeting.RewriteFeedback) + "\n\n" + start
		}
		seedMeetingStart(history, start, in.ContextSummaries)
	}

	build := func(round, total int) []turnSpec {
		var specs []turnSpec
		// Departs from §4.2's literal "final round — lead only": a
		// multi-round code meeting's final speaker is the resolved
		// integrator instead, so the glossary's "integrates the
		// contributions so far into one consistent, non-duplicated
		// result" role actually gets exercised (see DESIGN.md Open Q #8).
		if round == total && total > 1 && in.Meeting.OutputType == models.OutputTypeCode && order.Integrator != nil {
			prompt := composer.IntegratorPrompt(order.Integrator.DisplayName) + "\n" + composer.FinalPrompt(round, total, in.Meeting.OutputType)
			return []turnSpec{{Agent: order.Integrator, UserPrompt: prompt}}
		}
		if order.Lead != nil {
			specs = append(specs, turnSpec{Agent: order.Lead, UserPrompt: leadPromptFor(composer, round, total, in.Meeting.OutputType)})
		}
		if round == total && total > 1 {
			return specs
		}
		for _, m := range order.Members {
			specs = append(specs, turnSpec{Agent: m, UserPrompt: composer.MemberPrompt(m.DisplayName, round, total)})
		}
		if order.Critic != nil {
			specs = append(specs, turnSpec{Agent: order.Critic, UserPrompt: composer.CriticPrompt(order.Critic.DisplayName)})
		}
		return specs
	}

	return runRounds(ctx, llm, in.Meeting, history, build, cb, onRound)
}

func leadPromptFor(composer *prompt.Composer, round, total int, outputType models.OutputType) string {
	switch {
	case round == total:
		return composer.FinalPrompt(round, total, outputType)
	case round == 1:
		return composer.InitialPrompt(round, total)
	default:
		return composer.SynthesisPrompt(round, total)
	}
}

// RunMeeting is the legacy round-robin strategy used when a team meeting
// has an empty agenda: every agent speaks every round, in roster order.
func RunMeeting(ctx context.Context, llm llmclient.Client, in MeetingInput, cb Callbacks, onRound RoundCallback) (RunResult, error) {
	composer := prompt.NewComposer()
	history := newTurnHistory()
	seedFromPersisted(history, in.PriorMessages)

	build := func(round, total int) []turnSpec {
		specs := make([]turnSpec, 0, len(in.Agents))
		for _, a := range in.Agents {
			specs = append(specs, turnSpec{Agent: a, UserPrompt: composer.MemberPrompt(a.DisplayName, round, total)})
		}
		return specs
	}

	return runRounds(ctx, llm, in.Meeting, history, build, cb, onRound)
}

// RunIndividualMeeting consults a single chosen agent alongside a
// synthetic scientific critic: non-final rounds are (agent, critic), the
// final round is the agent alone.
func RunIndividualMeeting(ctx context.Context, llm llmclient.Client, in MeetingInput, cb Callbacks, onRound RoundCallback) (RunResult, error) {
	composer := prompt.NewComposer()
	if len(in.Agents) == 0 {
		return RunResult{}, nil
	}
	chosen := in.Agents[0]
	var critic *models.Agent
	if len(in.Agents) > 1 {
		critic = in.Agents[1]
	}

	history := newTurnHistory()
	seedFromPersisted(history, in.PriorMessages)
	if in.Meeting.CurrentRound == 0 {
		start := composer.IndividualMeetingStartPrompt(chosen.DisplayName, in.Meeting.Agenda, in.Meeting.AgendaQuestions, in.Meeting.MaxRounds, in.Lang)
		if in.Meeting.ParentMeetingID != nil && in.Meeting.RewriteFeedback != "" {
			start = composer.RewritePrompt(in.Meeting.RewriteFeedback) + "\n\n" + start
		}
		seedMeetingStart(history, start, in.ContextSummaries)
	}

	build := func(round, total int) []turnSpec {
		specs := []turnSpec{{Agent: chosen, UserPrompt: leadPromptFor(composer, round, total, in.Meeting.OutputType)}}
		if round < total && critic != nil {
			specs = append(specs, turnSpec{Agent: critic, UserPrompt: composer.CriticPrompt(critic.DisplayName)})
		}
		return specs
	}

	return runRounds(ctx, llm, in.Meeting, history, build, cb, onRound)
}

// RunMergeMeeting synthesizes the last assistant message of each source
// meeting (already summarized into in.SourceSummaries) into a single
// output via the lead; members may comment in non-final rounds.
func RunMergeMeeting(ctx context.Context, llm llmclient.Client, in MeetingInput, cb Callbacks, onRound RoundCallback) (RunResult, error) {
	composer := prompt.NewComposer()
	order := sortAgentsForMeeting(in.Agents)

	history := newTurnHistory()
	seedFromPersisted(history, in.PriorMessages)
	if in.Meeting.CurrentRound == 0 {
		seedMeetingStart(history, composer.MergePrompt(len(in.SourceSummaries)), in.SourceSummaries)
	}

	build := func(round, total int) []turnSpec {
		var specs []turnSpec
		if order.Lead != nil {
			specs = append(specs, turnSpec{Agent: order.Lead, UserPrompt: leadPromptFor(composer, round, total, in.Meeting.OutputType)})
		}
		if round < total {
			for _, m := range order.Members {
				specs = append(specs, turnSpec{Agent: m, UserPrompt: composer.MemberPrompt(m.DisplayName, round, total)})
			}
		}
		return specs
	}

	return runRounds(ctx, llm, in.Meeting, history, build, cb, onRound)
}

// Run dispatches to the correct orchestration strategy for in.Meeting's
// type, falling back to the legacy round-robin strategy for team meetings
// with an empty agenda.
func Run(ctx context.Context, llm llmclient.Client, in MeetingInput, cb Callbacks, onRound RoundCallback) (RunResult, error) {
	switch in.Meeting.MeetingType {
	case models.MeetingTypeIndividual:
		return RunIndividualMeeting(ctx, llm, in, cb, onRound)
	case models.MeetingTypeMerge:
		return RunMergeMeeting(ctx, llm, in, cb, onRound)
	default:
		if in.Meeting.Agenda == "" {
			return RunMeeting(ctx, llm, in, cb, onRound)
		}
		return RunStructuredMeeting(ctx, llm, in, cb, onRound)
	}
}

func agentNames(agents []*models.Agent) []string {
	names := make([]string, 0, len(agents))
	for _, a := range agents {
		names = append(names, a.DisplayName)
	}
	return names
}
