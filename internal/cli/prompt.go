// Package cli implements the terminal side of interactive name resolution.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/heartmarshall/newsdesk-analytics/internal/service/resolution"
)

// ErrInputClosed is returned when the input ends before the session does.
var ErrInputClosed = errors.New("input closed")

const help = `commands:
  m <n>   match candidate n
  c       create a new employee
  n / p   next / previous conflict
  g <i>   go to conflict i
  s       submit all decisions
  q       cancel (q! to confirm discarding decisions)
`

// Prompter renders conflicts to out and reads commands from in, one per line.
type Prompter struct {
	in  *bufio.Scanner
	out io.Writer
}

// NewPrompter creates a Prompter.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewScanner(in), out: out}
}

// Prompt implements resolution.Prompter. Unparseable input is reported and
// read again without leaving the current conflict.
func (p *Prompter) Prompt(ctx context.Context, v resolution.View) (resolution.Command, error) {
	p.render(v)
	for {
		if err := ctx.Err(); err != nil {
			return resolution.Command{}, err
		}
		fmt.Fprint(p.out, "> ")
		if !p.in.Scan() {
			if err := p.in.Err(); err != nil {
				return resolution.Command{}, fmt.Errorf("read command: %w", err)
			}
			return resolution.Command{}, ErrInputClosed
		}

		line := strings.TrimSpace(p.in.Text())
		if line == "?" || line == "h" {
			fmt.Fprint(p.out, help)
			continue
		}
		cmd, err := ParseCommand(line)
		if err != nil {
			fmt.Fprintf(p.out, "%v (? for help)\n", err)
			continue
		}
		return cmd, nil
	}
}

func (p *Prompter) render(v resolution.View) {
	c := v.Conflict
	fmt.Fprintf(p.out, "\n[%d/%d, %d decided] %q (confidence %s, rows %s)\n",
		v.Index+1, v.Total, v.Decided, c.InputName, c.Confidence, rowList(c.RowNumbers))

	if len(c.Candidates) == 0 {
		fmt.Fprintln(p.out, "  no similar employees")
	}
	for i, cand := range c.Candidates {
		mark := ""
		if cand.ConfirmedByUser {
			mark = " (confirmed alias)"
		}
		fmt.Fprintf(p.out, "  %d) %s  %.0f%%%s\n", i+1, cand.CanonicalName, cand.Score*100, mark)
	}

	if d := v.Decision; d != nil {
		switch d.Action {
		case resolution.ActionCreateNew:
			fmt.Fprintln(p.out, "  decided: create new employee")
		case resolution.ActionMatch:
			fmt.Fprintf(p.out, "  decided: match %s\n", candidateName(c, d))
		}
	}
	if v.Notice != "" {
		fmt.Fprintf(p.out, "  ! %s\n", v.Notice)
	}
}

func candidateName(c resolution.Conflict, d *resolution.Decision) string {
	for _, cand := range c.Candidates {
		if cand.EmployeeID == d.EmployeeID {
			return cand.CanonicalName
		}
	}
	return d.EmployeeID.String()
}

func rowList(rows []int) string {
	const shown = 5
	parts := make([]string, 0, shown)
	for i, r := range rows {
		if i == shown {
			parts = append(parts, fmt.Sprintf("+%d", len(rows)-shown))
			break
		}
		parts = append(parts, strconv.Itoa(r))
	}
	return strings.Join(parts, ",")
}

// ParseCommand parses one line of user input. Numbers are 1-based.
func ParseCommand(line string) (resolution.Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return resolution.Command{}, errors.New("empty command")
	}

	arg := func() (int, error) {
		if len(fields) != 2 {
			return 0, fmt.Errorf("%s needs a number", fields[0])
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return 0, fmt.Errorf("invalid number %q", fields[1])
		}
		return n - 1, nil
	}

	switch strings.ToLower(fields[0]) {
	case "m", "match":
		n, err := arg()
		if err != nil {
			return resolution.Command{}, err
		}
		return resolution.Command{Kind: resolution.CmdMatch, Candidate: n}, nil
	case "c", "create":
		return resolution.Command{Kind: resolution.CmdCreateNew}, nil
	case "n", "next":
		return resolution.Command{Kind: resolution.CmdNext}, nil
	case "p", "prev":
		return resolution.Command{Kind: resolution.CmdPrev}, nil
	case "g", "goto":
		n, err := arg()
		if err != nil {
			return resolution.Command{}, err
		}
		return resolution.Command{Kind: resolution.CmdGoto, Index: n}, nil
	case "s", "submit":
		return resolution.Command{Kind: resolution.CmdSubmit}, nil
	case "q", "quit":
		return resolution.Command{Kind: resolution.CmdCancel}, nil
	case "q!":
		return resolution.Command{Kind: resolution.CmdCancel, Confirmed: true}, nil
	}

	// A bare number picks that candidate.
	if n, err := strconv.Atoi(fields[0]); err == nil && n >= 1 && len(fields) == 1 {
		return resolution.Command{Kind: resolution.CmdMatch, Candidate: n - 1}, nil
	}
	return resolution.Command{}, fmt.Errorf("unknown command %q", fields[0])
}
