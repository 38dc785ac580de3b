package roster

import (
	"errors"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestParse(t *testing.T) {
	t.Parallel()

	in := "Full Name,Number,Aliases\n" +
		"  david   cohen ,1001,Dudi Cohen;david cohen; ;D. Cohen\n" +
		"Dana Ron,,\n" +
		",1003,\n" +
		"David Cohen,1004,\n"

	entries, errs, err := Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}

	first := entries[0]
	if first.Row != 2 || first.CanonicalName != "david cohen" {
		t.Errorf("first entry = %+v", first)
	}
	if first.EmployeeNumber == nil || *first.EmployeeNumber != "1001" {
		t.Errorf("employee number = %v, want 1001", first.EmployeeNumber)
	}
	// the canonical spelling and blanks are not aliases
	if len(first.Aliases) != 2 || first.Aliases[0] != "Dudi Cohen" || first.Aliases[1] != "D. Cohen" {
		t.Errorf("aliases = %q", first.Aliases)
	}

	if entries[1].EmployeeNumber != nil || entries[1].Aliases != nil {
		t.Errorf("second entry = %+v, want no number or aliases", entries[1])
	}

	if len(errs) != 2 {
		t.Fatalf("errors = %v, want 2", errs)
	}
	if errs[0].Row != 4 || errs[1].Row != 5 || !strings.Contains(errs[1].Message, "duplicate of row 2") {
		t.Errorf("errors = %v", errs)
	}
}

func TestParse_HebrewWindows1255(t *testing.T) {
	t.Parallel()

	utf := "שם,כינויים\nדוד כהן,דודי\n"
	legacy, err := charmap.Windows1255.NewEncoder().String(utf)
	if err != nil {
		t.Fatal(err)
	}

	entries, errs, err := Parse(strings.NewReader(legacy))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(errs) != 0 || len(entries) != 1 {
		t.Fatalf("entries=%v errs=%v", entries, errs)
	}
	if entries[0].CanonicalName != "דוד כהן" || len(entries[0].Aliases) != 1 || entries[0].Aliases[0] != "דודי" {
		t.Errorf("entry = %+v", entries[0])
	}
}

func TestParse_NoNameColumn(t *testing.T) {
	t.Parallel()

	_, _, err := Parse(strings.NewReader("number,aliases\n1,x\n"))
	if !errors.Is(err, ErrNoNameColumn) {
		t.Fatalf("err = %v, want ErrNoNameColumn", err)
	}
}

func TestParse_Empty(t *testing.T) {
	t.Parallel()

	entries, errs, err := Parse(strings.NewReader(""))
	if err != nil || entries != nil || errs != nil {
		t.Fatalf("got %v %v %v, want all nil", entries, errs, err)
	}
}
