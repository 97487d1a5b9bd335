package engine

import (
	"context"

	"github.com/conclave-run/conclave/pkg/llmclient"
	"github.com/conclave-run/conclave/pkg/models"
	"github.com/conclave-run/conclave/pkg/prompt"
)

// RoundResult is the outcome of running one round: its messages in speaker
// order, plus whether the caller-supplied cancellation signal fired before
// the round finished (in which case the partial turns still returned are
// the only ones to persist).
type RoundResult struct {
	Messages   []*models.MeetingMessage
	Cancelled  bool
}

// runRound executes turns sequentially in the given order, threading
// in-memory history between them so each speaker sees everyone before it.
// It stops after the current turn completes if ctx is cancelled, returning
// the turns produced so far — callers persist exactly those and leave the
// meeting pending, never failed, on cancellation.
func runRound(
	ctx context.Context,
	llm llmclient.Client,
	composer *prompt.Composer,
	history *turnHistory,
	meeting *models.Meeting,
	specs []turnSpec,
	round, totalRounds int,
	cb Callbacks,
) (RoundResult, error) {
	var result RoundResult
	for _, spec := range specs {
		msg, err := executeTurn(ctx, llm, composer, history, meeting, spec, round, totalRounds, cb)
		if err != nil {
			return result, err
		}
		result.Messages = append(result.Messages, msg)

		select {
		case <-ctx.Done():
			result.Cancelled = true
			return result, nil
		default:
		}
	}
	return result, nil
}
