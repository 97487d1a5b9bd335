package runner

import "errors"

// ErrAlreadyCompleted is returned when a run is requested on a meeting that
// has already finished every round.
var ErrAlreadyCompleted = errors.New("runner: meeting already completed")

// ErrNoRoundsRemaining is returned when current_round has already reached
// max_rounds even though status never settled on completed (shouldn't
// normally happen, but callers must not run negative/zero rounds).
var ErrNoRoundsRemaining = errors.New("runner: no rounds remaining")

// ErrNoAgents is returned when a meeting's resolved speaker pool is empty.
var ErrNoAgents = errors.New("runner: meeting has no participating agents")

// ErrAlreadyRunning is returned by StartBackground when a worker is already
// executing the requested meeting; callers surface this as started=false
// rather than an HTTP error, per spec.md §6.
var ErrAlreadyRunning = errors.New("runner: meeting already has an active run")
