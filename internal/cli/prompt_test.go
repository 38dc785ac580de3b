package cli

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/newsdesk-analytics/internal/matching"
	"github.com/heartmarshall/newsdesk-analytics/internal/service/resolution"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		line    string
		want    resolution.Command
		wantErr bool
	}{
		{line: "m 2", want: resolution.Command{Kind: resolution.CmdMatch, Candidate: 1}},
		{line: "match 1", want: resolution.Command{Kind: resolution.CmdMatch, Candidate: 0}},
		{line: "3", want: resolution.Command{Kind: resolution.CmdMatch, Candidate: 2}},
		{line: "c", want: resolution.Command{Kind: resolution.CmdCreateNew}},
		{line: "N", want: resolution.Command{Kind: resolution.CmdNext}},
		{line: "p", want: resolution.Command{Kind: resolution.CmdPrev}},
		{line: "g 4", want: resolution.Command{Kind: resolution.CmdGoto, Index: 3}},
		{line: "s", want: resolution.Command{Kind: resolution.CmdSubmit}},
		{line: "q", want: resolution.Command{Kind: resolution.CmdCancel}},
		{line: "q!", want: resolution.Command{Kind: resolution.CmdCancel, Confirmed: true}},
		{line: "", wantErr: true},
		{line: "m", wantErr: true},
		{line: "m 0", wantErr: true},
		{line: "g x", wantErr: true},
		{line: "delete", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCommand(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrompter_RetriesBadInput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("bogus\n?\nc\n"), &out)

	cmd, err := p.Prompt(context.Background(), resolution.View{
		Total:    1,
		Conflict: resolution.Conflict{InputName: "Dana Ron", Confidence: resolution.ConfidenceLow, RowNumbers: []int{2}},
	})
	require.NoError(t, err)
	assert.Equal(t, resolution.CmdCreateNew, cmd.Kind)
	assert.Contains(t, out.String(), `"Dana Ron"`)
	assert.Contains(t, out.String(), "no similar employees")
	assert.Contains(t, out.String(), `unknown command "bogus"`)
	assert.Contains(t, out.String(), "commands:")
}

func TestPrompter_InputClosed(t *testing.T) {
	t.Parallel()

	p := NewPrompter(strings.NewReader(""), io.Discard)
	_, err := p.Prompt(context.Background(), resolution.View{Total: 1})
	assert.ErrorIs(t, err, ErrInputClosed)
}

func TestPrompter_DrivesInteractiveSession(t *testing.T) {
	t.Parallel()

	levi := uuid.New()
	conflicts := []resolution.Conflict{
		{
			InputName:  "Jonatan Levi",
			Confidence: resolution.ConfidenceMedium,
			Candidates: []matching.Candidate{{EmployeeID: levi, CanonicalName: "Jonathan Levi", Score: 0.8}},
			RowNumbers: []int{2, 3},
		},
		{InputName: "Dana Ron", Confidence: resolution.ConfidenceLow, RowNumbers: []int{4}},
	}

	var out bytes.Buffer
	// "s" before the second conflict is decided is rejected and the session moves on.
	p := NewPrompter(strings.NewReader("m 1\ns\nc\ns\n"), &out)
	r := resolution.NewInteractive(slog.New(slog.NewTextHandler(io.Discard, nil)), p)

	decisions, err := r.Resolve(context.Background(), conflicts)
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, resolution.Match("Jonatan Levi", levi), decisions[0])
	assert.Equal(t, resolution.CreateNew("Dana Ron"), decisions[1])
	assert.Contains(t, out.String(), "1) Jonathan Levi  80%")
}

func TestPrompter_CancelNeedsConfirmation(t *testing.T) {
	t.Parallel()

	conflicts := []resolution.Conflict{
		{InputName: "Dana Ron", Confidence: resolution.ConfidenceLow, RowNumbers: []int{4}},
		{InputName: "Avi Mor", Confidence: resolution.ConfidenceLow, RowNumbers: []int{5}},
	}

	var out bytes.Buffer
	p := NewPrompter(strings.NewReader("c\nq\nq!\n"), &out)
	r := resolution.NewInteractive(slog.New(slog.NewTextHandler(io.Discard, nil)), p)

	_, err := r.Resolve(context.Background(), conflicts)
	assert.ErrorIs(t, err, resolution.ErrCancelled)
	assert.Contains(t, out.String(), "confirmation required")
}
