package domain

import (
	"fmt"
	"time"

	apperrors "focusd/internal/platform/errors"
)

const SchemaVersion = 1

// State is the position of the session machine. Exactly one state is
// occupied at a time; on_break and procrastinating are only reachable
// from working, never from each other.
type State string

const (
	StateIdle            State = "idle"
	StateWorking         State = "working"
	StateOnBreak         State = "on_break"
	StateProcrastinating State = "procrastinating"
)

func (s State) Validate() error {
	switch s {
	case StateIdle, StateWorking, StateOnBreak, StateProcrastinating:
		return nil
	default:
		return fmt.Errorf("unknown state: %s", s)
	}
}

type EventKind string

const (
	EventStart            EventKind = "start"
	EventBreakBegin       EventKind = "break_begin"
	EventBreakEnd         EventKind = "break_end"
	EventProcBegin        EventKind = "procrastination_begin"
	EventProcEnd          EventKind = "procrastination_end"
	EventEnd              EventKind = "end"
	EventBurnoutConfirmed EventKind = "burnout_confirmed"
	EventBurnoutDenied    EventKind = "burnout_denied"
)

func (k EventKind) Validate() error {
	switch k {
	case EventStart, EventBreakBegin, EventBreakEnd, EventProcBegin, EventProcEnd, EventEnd, EventBurnoutConfirmed, EventBurnoutDenied:
		return nil
	default:
		return fmt.Errorf("unknown event kind: %s", k)
	}
}

// Transitions is the full lifecycle table. Anything absent here is
// rejected with ErrInvalidTransition before any event is persisted.
var transitions = map[State]map[EventKind]State{
	StateIdle: {
		EventStart: StateWorking,
	},
	StateWorking: {
		EventBreakBegin: StateOnBreak,
		EventProcBegin:  StateProcrastinating,
		EventEnd:        StateIdle,
	},
	StateOnBreak: {
		EventBreakEnd: StateWorking,
		EventEnd:      StateIdle,
	},
	StateProcrastinating: {
		EventProcEnd: StateWorking,
		EventEnd:     StateIdle,
	},
}

// Next resolves the state after applying kind, or ErrInvalidTransition.
// Burnout confirmations annotate an open session without moving it.
func Next(current State, kind EventKind) (State, error) {
	if kind == EventBurnoutConfirmed || kind == EventBurnoutDenied {
		if current == StateIdle {
			return "", fmt.Errorf("%w: %s while %s", apperrors.ErrInvalidTransition, kind, current)
		}
		return current, nil
	}
	next, ok := transitions[current][kind]
	if !ok {
		return "", fmt.Errorf("%w: %s while %s", apperrors.ErrInvalidTransition, kind, current)
	}
	return next, nil
}

type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

type Task struct {
	ID         string
	CategoryID string
	Name       string
	CreatedAt  time.Time
}

// Event is one immutable log record. The event log is append-only and is
// the durable source of truth; session aggregates are a cache over it.
type Event struct {
	ID        string
	SessionID string
	Kind      EventKind
	At        time.Time
}

// Session is one work episode. Aggregates are filled on finalization and
// stay re-derivable from the session's events.
type Session struct {
	ID         string
	CategoryID string
	TaskID     string
	StartedAt  time.Time
	EndedAt    time.Time
	Finalized  bool
	Aggregates Aggregates
}

type Aggregates struct {
	GrossMin                float64
	NetFocusedMin           float64
	BreakMin                float64
	ProcrastinationMin      float64
	LongestFocusBlockMin    float64
	InterruptionCount       int
	FocusRatio              float64
	BurnoutDetected         bool
	ProcrastinationDetected bool
}

// ActiveState is the restart-safe snapshot of the running machine.
type ActiveState struct {
	SchemaVersion     int       `json:"schema_version"`
	SessionID         string    `json:"session_id"`
	CategoryID        string    `json:"category_id"`
	CategoryName      string    `json:"category_name"`
	TaskID            string    `json:"task_id,omitempty"`
	State             State     `json:"state"`
	StartedAt         time.Time `json:"started_at"`
	IntervalStartedAt time.Time `json:"interval_started_at,omitzero"`
}

// ComputeAggregates walks a session's ordered events and derives every
// aggregate. The machine guarantees at most one interval is open at any
// point, so a single pair of open markers is enough.
func ComputeAggregates(events []Event) (Aggregates, error) {
	agg := Aggregates{}
	if len(events) == 0 {
		return agg, fmt.Errorf("no events to aggregate")
	}
	if events[0].Kind != EventStart {
		return agg, fmt.Errorf("first event must be %s, got %s", EventStart, events[0].Kind)
	}
	start := events[0].At
	end := events[len(events)-1].At
	if events[len(events)-1].Kind != EventEnd {
		return agg, fmt.Errorf("last event must be %s, got %s", EventEnd, events[len(events)-1].Kind)
	}
	if end.Before(start) {
		return agg, fmt.Errorf("end %s precedes start %s", end, start)
	}

	var focusStart time.Time
	var openInterval time.Time
	longest := 0.0
	closeFocus := func(at time.Time) {
		if focusStart.IsZero() {
			return
		}
		block := at.Sub(focusStart).Minutes()
		if block > longest {
			longest = block
		}
		focusStart = time.Time{}
	}

	for _, evt := range events {
		switch evt.Kind {
		case EventStart:
			focusStart = evt.At
		case EventBreakBegin, EventProcBegin:
			agg.InterruptionCount++
			closeFocus(evt.At)
			openInterval = evt.At
		case EventBreakEnd:
			agg.BreakMin += evt.At.Sub(openInterval).Minutes()
			openInterval = time.Time{}
			focusStart = evt.At
		case EventProcEnd:
			agg.ProcrastinationMin += evt.At.Sub(openInterval).Minutes()
			openInterval = time.Time{}
			focusStart = evt.At
		case EventEnd:
			closeFocus(evt.At)
		case EventBurnoutConfirmed:
			agg.BurnoutDetected = true
		case EventBurnoutDenied:
		}
	}
	if !openInterval.IsZero() {
		return agg, fmt.Errorf("dangling open interval at %s", openInterval)
	}

	agg.GrossMin = end.Sub(start).Minutes()
	agg.NetFocusedMin = agg.GrossMin - agg.BreakMin - agg.ProcrastinationMin
	if longest == 0 {
		longest = agg.NetFocusedMin
	}
	agg.LongestFocusBlockMin = longest
	if agg.GrossMin > 0 {
		agg.FocusRatio = agg.NetFocusedMin / agg.GrossMin
	}
	agg.ProcrastinationDetected = agg.ProcrastinationMin > 0
	return agg, nil
}

// FirstEventMinutes returns minutes from session start to the first event
// of the given kind, or false when the session never saw one.
func FirstEventMinutes(events []Event, kind EventKind) (float64, bool) {
	if len(events) == 0 {
		return 0, false
	}
	start := events[0].At
	for _, evt := range events {
		if evt.Kind == kind {
			return evt.At.Sub(start).Minutes(), true
		}
	}
	return 0, false
}

// FirstInterruptionMinutes is the time to the first break or
// procrastination; an uninterrupted session counts in full.
func FirstInterruptionMinutes(events []Event) (float64, bool) {
	if len(events) == 0 {
		return 0, false
	}
	start := events[0].At
	for _, evt := range events {
		if evt.Kind == EventBreakBegin || evt.Kind == EventProcBegin {
			return evt.At.Sub(start).Minutes(), true
		}
	}
	last := events[len(events)-1]
	if last.Kind == EventEnd {
		return last.At.Sub(start).Minutes(), true
	}
	return 0, false
}
