package auth

import (
	"context"
	"log/slog"

	"github.com/cockroachdb/errors"
	lfsm "github.com/looplab/fsm"
)

// State is a token lifecycle state.
type State string

const (
	StateUnauthenticated       State = "unauthenticated"
	StateAwaitingAuthorization State = "awaiting_authorization"
	StateAwaitingCallback      State = "awaiting_callback"
	StateAuthenticated         State = "authenticated"
	StateExpired               State = "expired"
	StateRefreshing            State = "refreshing"
)

// Lifecycle events.
const (
	eventBegin     = "begin"
	eventListen    = "listen"
	eventFail      = "fail"
	eventExchanged = "exchanged"
	eventExpire    = "expire"
	eventRefresh   = "refresh"
	eventRefreshed = "refreshed"
	eventAbort     = "abort"
	eventRevoke    = "revoke"
	eventLoad      = "load"
)

func states(s ...State) []string {
	out := make([]string, len(s))
	for i, st := range s {
		out[i] = string(st)
	}
	return out
}

// newMachine builds the token lifecycle state machine.
func newMachine(initial State, logger *slog.Logger) *lfsm.FSM {
	events := lfsm.Events{
		{Name: eventBegin, Src: states(StateUnauthenticated, StateAwaitingAuthorization, StateAwaitingCallback, StateAuthenticated, StateExpired), Dst: string(StateAwaitingAuthorization)},
		{Name: eventListen, Src: states(StateAwaitingAuthorization), Dst: string(StateAwaitingCallback)},
		{Name: eventFail, Src: states(StateAwaitingAuthorization, StateAwaitingCallback), Dst: string(StateUnauthenticated)},
		{Name: eventExchanged, Src: states(StateUnauthenticated, StateAwaitingAuthorization, StateAwaitingCallback, StateAuthenticated, StateExpired), Dst: string(StateAuthenticated)},
		{Name: eventExpire, Src: states(StateAuthenticated), Dst: string(StateExpired)},
		{Name: eventRefresh, Src: states(StateExpired), Dst: string(StateRefreshing)},
		{Name: eventRefreshed, Src: states(StateRefreshing), Dst: string(StateAuthenticated)},
		{Name: eventAbort, Src: states(StateRefreshing), Dst: string(StateExpired)},
		{Name: eventRevoke, Src: states(StateAuthenticated, StateExpired, StateRefreshing), Dst: string(StateUnauthenticated)},
		{Name: eventLoad, Src: states(StateUnauthenticated, StateExpired), Dst: string(StateAuthenticated)},
	}

	callbacks := lfsm.Callbacks{
		"enter_state": func(_ context.Context, e *lfsm.Event) {
			logger.Debug("auth state changed", "event", e.Event, "from", e.Src, "to", e.Dst)
		},
	}

	return lfsm.NewFSM(string(initial), events, callbacks)
}

// fire triggers event. Re-entering the current state is not an error.
// Transitions are in-memory and never observe caller cancellation.
func fire(machine *lfsm.FSM, event string) error {
	err := machine.Event(context.Background(), event)
	if err == nil {
		return nil
	}
	var noTransition lfsm.NoTransitionError
	if errors.As(err, &noTransition) {
		return nil
	}
	return errors.Wrapf(err, "invalid auth transition %q from %q", event, machine.Current())
}
