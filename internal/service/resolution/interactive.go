package resolution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// CommandKind is a user action against a Session.
type CommandKind int

const (
	CmdMatch CommandKind = iota
	CmdCreateNew
	CmdNext
	CmdPrev
	CmdGoto
	CmdSubmit
	CmdCancel
)

// Command is one user input. Candidate indexes the current conflict's
// candidates for CmdMatch; Index is the target of CmdGoto; Confirmed applies
// to CmdCancel.
type Command struct {
	Kind      CommandKind
	Candidate int
	Index     int
	Confirmed bool
}

// View is what a Prompter shows to the user.
type View struct {
	Index    int
	Total    int
	Decided  int
	Conflict Conflict
	Decision *Decision
	// Notice explains why the previous command was rejected.
	Notice string
}

// Prompter renders a View and reads the next Command.
type Prompter interface {
	Prompt(ctx context.Context, v View) (Command, error)
}

// Interactive is a Resolver that drives a Session with a Prompter.
type Interactive struct {
	log    *slog.Logger
	prompt Prompter
}

// NewInteractive creates an Interactive resolver.
func NewInteractive(logger *slog.Logger, prompt Prompter) *Interactive {
	return &Interactive{
		log:    logger.With("service", "resolution"),
		prompt: prompt,
	}
}

// Resolve runs a session until the user submits or cancels.
// A cancelled session yields ErrCancelled.
func (r *Interactive) Resolve(ctx context.Context, conflicts []Conflict) ([]Decision, error) {
	if len(conflicts) == 0 {
		return nil, nil
	}

	s := NewSession(conflicts)
	s.Subscribe(func(ev Event) {
		switch ev.Type {
		case EventDecided:
			r.log.DebugContext(ctx, "conflict decided",
				slog.String("name", ev.Decision.InputName),
				slog.String("action", string(ev.Decision.Action)),
			)
		case EventSubmitted:
			r.log.InfoContext(ctx, "resolution submitted", slog.Int("decisions", len(ev.Decisions)))
		case EventCancelled:
			r.log.InfoContext(ctx, "resolution cancelled", slog.Int("conflicts", ev.Total))
		}
	})
	if err := s.Start(); err != nil {
		return nil, err
	}

	var notice string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		c, d, _ := s.Current()
		cmd, err := r.prompt.Prompt(ctx, View{
			Index:    s.Cursor(),
			Total:    s.Len(),
			Decided:  s.Decided(),
			Conflict: c,
			Decision: d,
			Notice:   notice,
		})
		if err != nil {
			return nil, fmt.Errorf("prompt: %w", err)
		}

		decisions, done, err := apply(s, c, cmd)
		if err != nil {
			if errors.Is(err, ErrSessionClosed) {
				return nil, err
			}
			notice = err.Error()
			continue
		}
		notice = ""

		switch {
		case done && s.State() == StateCancelled:
			return nil, ErrCancelled
		case done:
			return decisions, nil
		}
	}
}

// apply executes cmd. done is true once the session is closed.
func apply(s *Session, c Conflict, cmd Command) ([]Decision, bool, error) {
	switch cmd.Kind {
	case CmdMatch:
		if cmd.Candidate < 0 || cmd.Candidate >= len(c.Candidates) {
			return nil, false, fmt.Errorf("no candidate %d", cmd.Candidate+1)
		}
		return nil, false, s.Decide(Match(c.InputName, c.Candidates[cmd.Candidate].EmployeeID))
	case CmdCreateNew:
		return nil, false, s.Decide(CreateNew(c.InputName))
	case CmdNext:
		return nil, false, s.Next()
	case CmdPrev:
		return nil, false, s.Prev()
	case CmdGoto:
		return nil, false, s.Goto(cmd.Index)
	case CmdSubmit:
		decisions, err := s.Submit()
		return decisions, err == nil, err
	case CmdCancel:
		err := s.Cancel(cmd.Confirmed)
		return nil, err == nil, err
	}
	return nil, false, fmt.Errorf("unknown command %d", cmd.Kind)
}
