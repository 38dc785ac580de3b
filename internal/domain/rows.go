package domain

import "time"

// ParsedRow is a normalized row produced by the upstream parser.
// It is either a HoursRow or an ArticleRow.
type ParsedRow interface {
	RowNumber() int
	FullName() string
	Source() Source
	isParsedRow()
}

// HoursRow is a row from a work-hours export.
type HoursRow struct {
	Row       int
	Name      string
	Date      time.Time
	Hours     float64
	Status    *string
	EntryTime *string
	ExitTime  *string
	Notes     *string
}

func (r HoursRow) RowNumber() int   { return r.Row }
func (r HoursRow) FullName() string { return r.Name }
func (r HoursRow) Source() Source   { return SourceHours }
func (HoursRow) isParsedRow()       {}

// ArticleRow is a row from a published-articles export.
type ArticleRow struct {
	Row         int
	ArticleID   string
	Name        string
	Title       string
	Views       int64
	PublishedAt *time.Time
}

func (r ArticleRow) RowNumber() int   { return r.Row }
func (r ArticleRow) FullName() string { return r.Name }
func (r ArticleRow) Source() Source   { return SourceArticles }
func (ArticleRow) isParsedRow()       {}

// NameOccurrence is a distinct raw name and the rows it appears on.
type NameOccurrence struct {
	Name       string
	RowNumbers []int
}

// DistinctNames returns the distinct non-empty names of rows in first-seen
// order. Names are compared by their trimmed raw spelling, so two different
// spellings of one person are two occurrences.
func DistinctNames(rows []ParsedRow) []NameOccurrence {
	index := make(map[string]int)
	var out []NameOccurrence
	for _, r := range rows {
		name := CanonicalDisplayName(r.FullName())
		if name == "" {
			continue
		}
		if i, ok := index[name]; ok {
			out[i].RowNumbers = append(out[i].RowNumbers, r.RowNumber())
			continue
		}
		index[name] = len(out)
		out = append(out, NameOccurrence{Name: name, RowNumbers: []int{r.RowNumber()}})
	}
	return out
}
