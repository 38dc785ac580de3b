package resolution

import (
	"errors"
	"fmt"
	"sync"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

var (
	// ErrIncomplete is returned by Submit while some conflict is undecided.
	ErrIncomplete = errors.New("not every conflict is decided")
	// ErrConfirmCancel is returned by Cancel when decisions would be lost.
	ErrConfirmCancel = errors.New("cancel would discard decisions; confirmation required")
	// ErrSessionClosed is returned by any operation after Submit or Cancel.
	ErrSessionClosed = errors.New("session closed")
)

// State is the lifecycle state of a Session.
type State int

const (
	StateAtIndex State = iota
	StateAllResolved
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateAtIndex:
		return "at_index"
	case StateAllResolved:
		return "all_resolved"
	case StateCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// EventType names what happened in a Session.
type EventType string

const (
	EventPresent   EventType = "present"
	EventDecided   EventType = "decided"
	EventSubmitted EventType = "submitted"
	EventCancelled EventType = "cancelled"
)

// Event is delivered to subscribers synchronously, in order.
type Event struct {
	Type     EventType
	Index    int
	Total    int
	Conflict *Conflict
	Decision *Decision
	// Decisions is set on EventSubmitted.
	Decisions []Decision
}

// Listener receives session events.
type Listener func(Event)

// Session walks a human through a list of conflicts. Decisions are kept per
// input name and survive navigation.
type Session struct {
	mu        sync.Mutex
	conflicts []Conflict
	decisions map[string]Decision
	cursor    int
	state     State
	listeners []Listener
}

// NewSession creates a session positioned at the first conflict.
func NewSession(conflicts []Conflict) *Session {
	return &Session{
		conflicts: conflicts,
		decisions: make(map[string]Decision, len(conflicts)),
	}
}

// Subscribe registers l for all future events.
func (s *Session) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Start presents the current conflict.
func (s *Session) Start() error {
	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return err
	}
	events := s.presentLocked()
	s.mu.Unlock()

	s.emit(events...)
	return nil
}

// State returns the lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cursor returns the index of the current conflict.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Len returns the number of conflicts.
func (s *Session) Len() int { return len(s.conflicts) }

// Current returns the conflict under the cursor and its decision, if any.
func (s *Session) Current() (Conflict, *Decision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.conflicts) == 0 {
		return Conflict{}, nil, false
	}
	c := s.conflicts[s.cursor]
	if d, ok := s.decisions[c.InputName]; ok {
		return c, &d, true
	}
	return c, nil, true
}

// Decided returns how many conflicts have a decision.
func (s *Session) Decided() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.decisions)
}

// Decide records d for the current conflict and advances unless the cursor is
// on the last conflict. d.InputName is taken from the current conflict.
func (s *Session) Decide(d Decision) error {
	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return err
	}
	if len(s.conflicts) == 0 {
		s.mu.Unlock()
		return fmt.Errorf("decide: %w", ErrIncomplete)
	}

	c := s.conflicts[s.cursor]
	d.InputName = c.InputName
	if err := d.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	if d.Action == ActionMatch && !c.HasCandidate(d.EmployeeID) {
		s.mu.Unlock()
		return domain.NewValidationError("employee_id", "not a candidate for "+c.InputName)
	}

	s.decisions[c.InputName] = d
	events := []Event{{
		Type:     EventDecided,
		Index:    s.cursor,
		Total:    len(s.conflicts),
		Conflict: &c,
		Decision: &d,
	}}
	if s.cursor < len(s.conflicts)-1 {
		s.cursor++
		events = append(events, s.presentLocked()...)
	}
	s.mu.Unlock()

	s.emit(events...)
	return nil
}

// Next moves to the following conflict.
func (s *Session) Next() error {
	return s.move(func(i int) int { return i + 1 })
}

// Prev moves to the preceding conflict.
func (s *Session) Prev() error {
	return s.move(func(i int) int { return i - 1 })
}

// Goto moves to conflict i.
func (s *Session) Goto(i int) error {
	return s.move(func(int) int { return i })
}

func (s *Session) move(to func(int) int) error {
	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return err
	}
	next := to(s.cursor)
	if next < 0 || next >= len(s.conflicts) {
		s.mu.Unlock()
		return domain.NewValidationError("index", fmt.Sprintf("%d out of range [0, %d)", next, len(s.conflicts)))
	}
	s.cursor = next
	events := s.presentLocked()
	s.mu.Unlock()

	s.emit(events...)
	return nil
}

// Submit completes the session. If any conflict is undecided the cursor jumps
// to the first such conflict and ErrIncomplete is returned.
func (s *Session) Submit() ([]Decision, error) {
	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	out := make([]Decision, 0, len(s.conflicts))
	for i, c := range s.conflicts {
		d, ok := s.decisions[c.InputName]
		if !ok {
			s.cursor = i
			events := s.presentLocked()
			s.mu.Unlock()

			s.emit(events...)
			return nil, fmt.Errorf("%w: %q", ErrIncomplete, c.InputName)
		}
		out = append(out, d)
	}
	s.state = StateAllResolved
	ev := Event{Type: EventSubmitted, Index: s.cursor, Total: len(s.conflicts), Decisions: out}
	s.mu.Unlock()

	s.emit(ev)
	return out, nil
}

// Cancel abandons the session. When decisions exist it requires confirmed.
func (s *Session) Cancel(confirmed bool) error {
	s.mu.Lock()
	if err := s.checkOpen(); err != nil {
		s.mu.Unlock()
		return err
	}
	if len(s.decisions) > 0 && !confirmed {
		s.mu.Unlock()
		return ErrConfirmCancel
	}
	s.state = StateCancelled
	ev := Event{Type: EventCancelled, Index: s.cursor, Total: len(s.conflicts)}
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

func (s *Session) checkOpen() error {
	if s.state != StateAtIndex {
		return fmt.Errorf("%w: %s", ErrSessionClosed, s.state)
	}
	return nil
}

func (s *Session) presentLocked() []Event {
	if len(s.conflicts) == 0 {
		return nil
	}
	c := s.conflicts[s.cursor]
	ev := Event{Type: EventPresent, Index: s.cursor, Total: len(s.conflicts), Conflict: &c}
	if d, ok := s.decisions[c.InputName]; ok {
		ev.Decision = &d
	}
	return []Event{ev}
}

// emit runs listeners outside the lock so they may query the session.
func (s *Session) emit(events ...Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	for _, ev := range events {
		for _, l := range listeners {
			l(ev)
		}
	}
}
