package catalog

import (
	"maps"
	"sync"
)

// Phase tells which part of a scripted call an event records.
type Phase string

const (
	PhaseCall  Phase = "call"
	PhaseOpen  Phase = "open"
	PhaseClose Phase = "close"
)

// Event is one recorded step of a scripted call.
type Event struct {
	Type   string
	Member string
	Phase  Phase
	Args   map[string]any
}

// Step returns "Type.member" for calls and "Type.member:phase" otherwise.
func (e Event) Step() string {
	s := e.Type + "." + e.Member
	if e.Phase != PhaseCall {
		s += ":" + string(e.Phase)
	}

	return s
}

// Trace records the scripted calls of one catalogue. It is safe for
// concurrent use.
type Trace struct {
	mu     sync.Mutex
	events []Event
}

func (t *Trace) record(e Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.events = append(t.events, e)
}

// Events returns a copy of the recorded events.
func (t *Trace) Events() []Event {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Event, len(t.events))
	for i, e := range t.events {
		e.Args = maps.Clone(e.Args)
		out[i] = e
	}

	return out
}

// Steps returns the recorded events as step strings.
func (t *Trace) Steps() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.events))
	for i, e := range t.events {
		out[i] = e.Step()
	}

	return out
}

// Reset discards the recorded events.
func (t *Trace) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.events = nil
}
