// Package roster parses the employee roster CSV.
// Pure function: reader in, entries out. No database dependencies.
package roster

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/heartmarshall/newsdesk-analytics/internal/adapter/sheet"
	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// Entry is one roster line: a canonical name, an optional employee number and
// any other spellings the person is known by.
type Entry struct {
	Row            int
	CanonicalName  string
	EmployeeNumber *string
	Aliases        []string
}

// ErrNoNameColumn is returned when the header has no name column.
var ErrNoNameColumn = errors.New("roster has no name column")

var headers = map[string]string{
	"name": "name", "full name": "name", "employee": "name", "שם": "name", "שם מלא": "name",
	"employee number": "number", "employee_number": "number", "number": "number", "מספר עובד": "number",
	"aliases": "aliases", "also known as": "aliases", "כינויים": "aliases",
}

// Parse reads a roster. Aliases are separated by ';' or '|'. Rows without a
// name are reported as errors; blank rows are ignored. A name repeated
// under the same normalized form is reported once and skipped.
func Parse(r io.Reader) ([]Entry, []*domain.ParseRowError, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read roster: %w", err)
	}
	data, _, err := sheet.Decode(raw)
	if err != nil {
		return nil, nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int)
	for i, h := range header {
		if key, ok := headers[strings.ToLower(strings.TrimSpace(h))]; ok {
			if _, dup := cols[key]; !dup {
				cols[key] = i
			}
		}
	}
	if _, ok := cols["name"]; !ok {
		return nil, nil, ErrNoNameColumn
	}

	var (
		entries []Entry
		errs    []*domain.ParseRowError
		seen    = make(map[string]int)
		row     = 1
	)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			errs = append(errs, &domain.ParseRowError{Row: row, Message: err.Error()})
			continue
		}

		get := func(key string) string {
			i, ok := cols[key]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		name := get("name")
		if name == "" {
			if get("number") != "" || get("aliases") != "" {
				errs = append(errs, &domain.ParseRowError{Row: row, Message: "name is empty"})
			}
			continue
		}

		normalized := domain.NormalizeName(name)
		if first, dup := seen[normalized]; dup {
			errs = append(errs, &domain.ParseRowError{Row: row, Message: fmt.Sprintf("duplicate of row %d", first)})
			continue
		}
		seen[normalized] = row

		e := Entry{Row: row, CanonicalName: domain.CanonicalDisplayName(name)}
		if n := get("number"); n != "" {
			e.EmployeeNumber = &n
		}
		e.Aliases = splitAliases(get("aliases"), normalized)
		entries = append(entries, e)
	}
	return entries, errs, nil
}

func splitAliases(v, self string) []string {
	if v == "" {
		return nil
	}
	parts := strings.FieldsFunc(v, func(r rune) bool { return r == ';' || r == '|' })
	out := make([]string, 0, len(parts))
	seen := map[string]bool{self: true}
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n := domain.NormalizeName(p)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, p)
	}
	return out
}
