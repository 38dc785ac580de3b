package ingestion

import "fmt"

// Receipt summarizes one upsert.
type Receipt struct {
	Inserted int      `json:"inserted"`
	Updated  int      `json:"updated"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
	Notices  []string `json:"notices,omitempty"`
}

// ImportResult is the outcome of the single-request pipeline.
type ImportResult struct {
	Receipt   *Receipt `json:"receipt"`
	Created   int      `json:"created"`
	Cancelled bool     `json:"cancelled"`
}

// truncate keeps at most limit messages and appends a tail counting the rest.
func truncate(msgs []string, limit int) []string {
	if limit <= 0 || len(msgs) <= limit {
		return msgs
	}
	out := make([]string, 0, limit+1)
	out = append(out, msgs[:limit]...)
	return append(out, fmt.Sprintf("... and %d more", len(msgs)-limit))
}

// chunks splits n items into [start, end) windows of at most size.
func chunks(n, size int) [][2]int {
	var out [][2]int
	for start := 0; start < n; start += size {
		out = append(out, [2]int{start, min(start+size, n)})
	}
	return out
}
