// Package fsm provides a generic finite state machine built on looplab/fsm.
// file: internal/fsm/fsm.go
package fsm

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
	lfsm "github.com/looplab/fsm"

	"github.com/dkoosis/ouramcp/internal/logging"
)

// State represents a state in the FSM.
type State string

// Event represents an event that can trigger a state transition.
type Event string

// TransitionAction defines the function signature for actions executed
// during transitions. It receives the context, the triggering event, and
// optional data.
type TransitionAction func(ctx context.Context, event Event, data interface{}) error

// GuardCondition defines the function signature for guard conditions on
// transitions, returning true if the transition is allowed.
type GuardCondition func(ctx context.Context, event Event, data interface{}) bool

// Transition defines a transition rule between states. Multiple 'From'
// states may share the same event and destination.
type Transition struct {
	From      []State          // Source states for this transition.
	To        State            // The destination state.
	Event     Event            // The event triggering the transition.
	Action    TransitionAction // Optional action executed on entering 'To' via this event.
	Condition GuardCondition   // Optional guard checked before allowing the event.
}

// FSM defines the interface for the finite state machine wrapper.
type FSM interface {
	// AddTransition stores a transition definition. Call Build() after adding all transitions.
	AddTransition(transition Transition) FSM
	// Build finalizes the FSM configuration and creates the underlying machine.
	Build() error
	// CurrentState returns the current state. Requires Build().
	CurrentState() State
	// CanTransition checks if the event is defined for the current state. Requires Build().
	CanTransition(event Event) bool
	// Transition attempts to trigger a state transition. Requires Build().
	Transition(ctx context.Context, event Event, data interface{}) error
	// SetState allows manually setting the FSM state. Requires Build().
	SetState(state State) error
	// Reset sets the state back to the initial state. Requires Build().
	Reset() error
}

// loopFSM implements the FSM interface using looplab/fsm.
type loopFSM struct {
	initialState State
	logger       logging.Logger
	transitions  []Transition
	fsm          *lfsm.FSM // Underlying instance, nil until Build() is called.
	buildErr     error
	mu           sync.RWMutex

	// Populated only during Build().
	callbackMap  lfsm.Callbacks
	eventDescMap map[string]lfsm.EventDesc
}

// NewFSM creates a new FSM builder instance with the specified initial state
// and logger. Call AddTransition() to define transitions, then Build().
func NewFSM(initialState State, logger logging.Logger) FSM {
	if logger == nil {
		logger = logging.GetNoopLogger()
	}
	return &loopFSM{
		initialState: initialState,
		logger:       logger.WithField("component", "fsm_wrapper"),
		transitions:  make([]Transition, 0),
	}
}

// AddTransition stores a transition definition to be used during Build().
func (l *loopFSM) AddTransition(t Transition) FSM {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fsm != nil {
		l.logger.Error("Cannot AddTransition after Build() has been called.")
		if l.buildErr == nil {
			l.buildErr = errors.New("cannot AddTransition after Build")
		}
		return l
	}
	if len(t.From) == 0 {
		l.logger.Error("Transition definition missing 'From' states.", "event", t.Event, "to", t.To)
		if l.buildErr == nil {
			l.buildErr = errors.New("transition definition missing 'From' states")
		}
		return l
	}
	l.transitions = append(l.transitions, t)
	l.logger.Debug("Stored transition definition.", "event", t.Event, "from", t.From, "to", t.To)
	return l
}

// Build finalizes the FSM configuration and creates the underlying
// looplab/fsm instance.
func (l *loopFSM) Build() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fsm != nil {
		l.logger.Warn("Build() called again on an already built FSM.")
		return l.buildErr
	}
	if l.buildErr != nil {
		l.logger.Error("Attempted to Build() FSM with configuration errors.", "error", l.buildErr)
		return l.buildErr
	}
	if len(l.transitions) == 0 {
		l.logger.Warn("Building FSM with no transitions defined.")
	}

	l.logger.Info("Building FSM instance.", "initialState", l.initialState, "transitionCount", len(l.transitions))

	l.callbackMap = make(lfsm.Callbacks)
	l.eventDescMap = make(map[string]lfsm.EventDesc)
	processedEvents := make(map[Event]struct{})

	for i, t := range l.transitions {
		eventName := string(t.Event)
		toStateStr := string(t.To)
		fromStatesStr := make([]string, len(t.From))
		for j, s := range t.From {
			fromStatesStr[j] = string(s)
		}

		desc, exists := l.eventDescMap[eventName]
		if !exists {
			desc = lfsm.EventDesc{Name: eventName, Dst: toStateStr}
		} else if desc.Dst != toStateStr {
			err := errors.Newf("conflicting destinations ('%s' and '%s') for the same event ('%s')", desc.Dst, toStateStr, eventName)
			l.logger.Error("Invalid FSM configuration.", "error", err)
			l.buildErr = err
			return l.buildErr
		}
		desc.Src = append(desc.Src, fromStatesStr...)
		l.eventDescMap[eventName] = desc

		if _, alreadyProcessed := processedEvents[t.Event]; !alreadyProcessed {
			if t.Condition != nil {
				l.callbackMap["before_"+eventName] = l.createGuardCallback(t)
			}
			processedEvents[t.Event] = struct{}{}
		}

		if t.Action != nil {
			enterCallbackName := "enter_" + toStateStr
			originalEnterCallback := l.callbackMap[enterCallbackName]
			l.callbackMap[enterCallbackName] = l.createActionCallback(i, originalEnterCallback)
		}
	}

	finalEvents := make([]lfsm.EventDesc, 0, len(l.eventDescMap))
	for _, desc := range l.eventDescMap {
		uniqueSrc := make(map[string]struct{})
		dedupedSrc := make([]string, 0, len(desc.Src))
		for _, s := range desc.Src {
			if _, exists := uniqueSrc[s]; !exists {
				uniqueSrc[s] = struct{}{}
				dedupedSrc = append(dedupedSrc, s)
			}
		}
		desc.Src = dedupedSrc
		finalEvents = append(finalEvents, desc)
	}

	l.fsm = lfsm.NewFSM(string(l.initialState), finalEvents, l.callbackMap)
	l.logger.Info("FSM instance built successfully.")
	return nil
}

func (l *loopFSM) createGuardCallback(t Transition) lfsm.Callback {
	return func(ctx context.Context, e *lfsm.Event) {
		if e.Event != string(t.Event) {
			return
		}

		isRelevantSource := false
		for _, srcState := range t.From {
			if e.Src == string(srcState) {
				isRelevantSource = true
				break
			}
		}
		if !isRelevantSource {
			return
		}

		var eventData interface{}
		if len(e.Args) > 0 {
			eventData = e.Args[0]
		}

		if !t.Condition(ctx, t.Event, eventData) {
			l.logger.Debug("Guard condition failed, cancelling transition.", "event", t.Event, "from", e.Src)
			e.Cancel(errors.Newf("guard condition for event '%s' from state '%s' failed", t.Event, e.Src))
		}
	}
}

func (l *loopFSM) createActionCallback(transitionIndex int, nextCallback lfsm.Callback) lfsm.Callback {
	return func(ctx context.Context, e *lfsm.Event) {
		var matchedTransition *Transition
		l.mu.RLock()
		if transitionIndex < len(l.transitions) {
			candidate := &l.transitions[transitionIndex]
			for _, fromState := range candidate.From {
				if string(fromState) == e.Src &&
					string(candidate.Event) == e.Event &&
					string(candidate.To) == e.Dst {
					matchedTransition = candidate
					break
				}
			}
		}
		l.mu.RUnlock()

		if matchedTransition != nil && matchedTransition.Action != nil {
			var eventData interface{}
			if len(e.Args) > 0 {
				eventData = e.Args[0]
			}
			l.logger.Debug("Executing transition action.", "event", matchedTransition.Event, "toState", matchedTransition.To, "fromState", e.Src)
			if err := matchedTransition.Action(ctx, matchedTransition.Event, eventData); err != nil {
				l.logger.Error("Error executing transition action.", "event", matchedTransition.Event, "toState", matchedTransition.To, "error", err)
			}
		}

		if nextCallback != nil {
			nextCallback(ctx, e)
		}
	}
}

// CurrentState returns the current state of the FSM. Requires Build().
func (l *loopFSM) CurrentState() State {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		l.logger.Error("CurrentState() called before Build() or after build error.")
		return ""
	}
	return State(l.fsm.Current())
}

// CanTransition checks if the given event can trigger a transition from the
// current state. Requires Build().
func (l *loopFSM) CanTransition(event Event) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.fsm == nil {
		l.logger.Error("CanTransition() called before Build() or after build error.")
		return false
	}
	return l.fsm.Can(string(event))
}

// Transition triggers a state transition based on the event. Requires Build().
func (l *loopFSM) Transition(ctx context.Context, event Event, data interface{}) error {
	l.mu.RLock()
	if l.fsm == nil {
		l.mu.RUnlock()
		l.logger.Error("Transition() called before Build() or after build error.")
		return l.buildErr
	}
	fsmInstance := l.fsm
	currentState := State(fsmInstance.Current())
	l.mu.RUnlock()

	args := []interface{}{}
	if data != nil {
		args = append(args, data)
	}

	if err := fsmInstance.Event(ctx, string(event), args...); err != nil {
		// looplab/fsm reports self-transitions (Dst == Src) as a
		// NoTransitionError with a nil embedded error; treat that as success.
		var noTransitionErr lfsm.NoTransitionError
		if errors.As(err, &noTransitionErr) && noTransitionErr.Err == nil {
			l.logger.Debug("Self-transition completed.", "event", event, "state", currentState)
			return nil
		}
		var canceledErr lfsm.CanceledError
		if errors.As(err, &canceledErr) {
			l.logger.Debug("Transition canceled by guard condition.", "event", event, "fromState", currentState, "error", err)
		} else {
			l.logger.Debug("Transition failed.", "event", event, "fromState", currentState, "error", err)
		}
		return err
	}

	l.logger.Debug("Transition successful.", "event", event, "oldState", currentState, "newState", fsmInstance.Current())
	return nil
}

// SetState allows manually setting the FSM state. Use with caution. Requires Build().
func (l *loopFSM) SetState(state State) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fsm == nil {
		l.logger.Error("SetState() called before Build() or after build error.")
		return l.buildErr
	}
	l.logger.Warn("Manually setting FSM state.", "targetState", state)
	l.fsm.SetState(string(state))
	return nil
}

// Reset sets the state back to the initial state. Requires Build().
func (l *loopFSM) Reset() error {
	l.logger.Info("Resetting FSM to initial state.", "initialState", l.initialState)
	return l.SetState(l.initialState)
}
