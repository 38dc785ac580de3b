// Package sheet reads hours and article exports (CSV) into parsed rows.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/heartmarshall/newsdesk-analytics/internal/domain"
)

// Result is the outcome of reading one export.
type Result struct {
	Rows     []domain.ParsedRow
	Errors   []*domain.ParseRowError
	Encoding string
}

// column keys
const (
	colName      = "name"
	colDate      = "date"
	colHours     = "hours"
	colStatus    = "status"
	colEntry     = "entry"
	colExit      = "exit"
	colNotes     = "notes"
	colArticleID = "article_id"
	colTitle     = "title"
	colViews     = "views"
	colPublished = "published"
)

// headerAliases maps lowercased header text to a column key. Exports come
// from different tools, some with Hebrew headers.
var headerAliases = map[string]string{
	"name": colName, "full name": colName, "employee": colName, "employee name": colName,
	"author": colName, "writer": colName, "reporter": colName, "שם": colName, "שם עובד": colName, "כותב": colName,

	"date": colDate, "work date": colDate, "day": colDate, "תאריך": colDate,
	"hours": colHours, "total hours": colHours, "worked hours": colHours, "שעות": colHours, "סה\"כ שעות": colHours,
	"status": colStatus, "סטטוס": colStatus,
	"entry": colEntry, "entry time": colEntry, "clock in": colEntry, "כניסה": colEntry,
	"exit": colExit, "exit time": colExit, "clock out": colExit, "יציאה": colExit,
	"notes": colNotes, "note": colNotes, "comments": colNotes, "הערות": colNotes,

	"article id": colArticleID, "article_id": colArticleID, "id": colArticleID, "מזהה": colArticleID,
	"title": colTitle, "headline": colTitle, "כותרת": colTitle,
	"views": colViews, "pageviews": colViews, "page views": colViews, "צפיות": colViews,
	"published": colPublished, "published at": colPublished, "publish date": colPublished, "תאריך פרסום": colPublished,
}

var requiredColumns = map[domain.Source][]string{
	domain.SourceHours:    {colName, colDate, colHours},
	domain.SourceArticles: {colArticleID, colName, colViews},
}

// ErrMissingColumns is returned when the header lacks a required column.
var ErrMissingColumns = errors.New("missing required columns")

// Read parses an export for source. Row numbers are spreadsheet rows: the
// header is row 1. Unparseable rows are reported in Result.Errors and left
// out of Result.Rows; blank rows are ignored.
func Read(r io.Reader, source domain.Source) (*Result, error) {
	if !source.IsValid() {
		return nil, domain.NewValidationError("source", "must be hours or articles")
	}

	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read export: %w", err)
	}
	data, enc, err := Decode(raw)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return &Result{Encoding: enc}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := mapHeader(header)
	var missing []string
	for _, c := range requiredColumns[source] {
		if _, ok := cols[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	res := &Result{Encoding: enc}
	rowNum := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			res.Errors = append(res.Errors, &domain.ParseRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		if blank(record) {
			continue
		}

		get := func(key string) string {
			i, ok := cols[key]
			if !ok || i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		var row domain.ParsedRow
		switch source {
		case domain.SourceHours:
			row, err = hoursRow(rowNum, get)
		case domain.SourceArticles:
			row, err = articleRow(rowNum, get)
		}
		if err != nil {
			res.Errors = append(res.Errors, &domain.ParseRowError{Row: rowNum, Message: err.Error()})
			continue
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func mapHeader(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		key, ok := headerAliases[strings.ToLower(strings.Join(strings.Fields(h), " "))]
		if !ok {
			continue
		}
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// ---------------------------------------------------------------------------
// Row builders
// ---------------------------------------------------------------------------

func hoursRow(n int, get func(string) string) (domain.HoursRow, error) {
	date, err := parseDate(get(colDate))
	if err != nil {
		return domain.HoursRow{}, err
	}
	hours, err := parseHours(get(colHours))
	if err != nil {
		return domain.HoursRow{}, err
	}
	return domain.HoursRow{
		Row:       n,
		Name:      get(colName),
		Date:      date,
		Hours:     hours,
		Status:    optional(get(colStatus)),
		EntryTime: optional(get(colEntry)),
		ExitTime:  optional(get(colExit)),
		Notes:     optional(get(colNotes)),
	}, nil
}

func articleRow(n int, get func(string) string) (domain.ArticleRow, error) {
	id := get(colArticleID)
	if id == "" {
		return domain.ArticleRow{}, errors.New("article id is empty")
	}
	views, err := parseViews(get(colViews))
	if err != nil {
		return domain.ArticleRow{}, err
	}
	row := domain.ArticleRow{
		Row:       n,
		ArticleID: id,
		Name:      get(colName),
		Title:     get(colTitle),
		Views:     views,
	}
	if v := get(colPublished); v != "" {
		t, err := parseTimestamp(v)
		if err != nil {
			return domain.ArticleRow{}, err
		}
		row.PublishedAt = &t
	}
	return row, nil
}

// ---------------------------------------------------------------------------
// Field parsers
// ---------------------------------------------------------------------------

// Day-first layouts: exports come from Israeli locales.
var dateLayouts = []string{time.DateOnly, "02/01/2006", "2/1/2006", "02.01.2006", "2.1.2006"}

var timestampLayouts = []string{
	time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "02/01/2006 15:04:05", "02/01/2006 15:04",
}

func parseDate(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("date is empty")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", v)
}

func parseTimestamp(v string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.UTC(), nil
		}
	}
	if t, err := parseDate(v); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized publish time %q", v)
}

// parseHours accepts decimal hours ("7.5", "7,5") or a duration "H:MM".
func parseHours(v string) (float64, error) {
	if v == "" {
		return 0, errors.New("hours is empty")
	}
	if h, m, ok := strings.Cut(v, ":"); ok {
		hh, err1 := strconv.Atoi(h)
		mm, err2 := strconv.Atoi(m)
		if err1 != nil || err2 != nil || mm < 0 || mm >= 60 || hh < 0 {
			return 0, fmt.Errorf("invalid hours %q", v)
		}
		return float64(hh) + float64(mm)/60, nil
	}
	f, err := strconv.ParseFloat(strings.Replace(v, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid hours %q", v)
	}
	return f, nil
}

// parseViews accepts thousands separators ("1,234"). Empty means zero.
func parseViews(v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.NewReplacer(",", "", " ", "", "_", "").Replace(v), 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid views %q", v)
	}
	return n, nil
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}
