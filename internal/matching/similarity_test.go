package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{name: "identical", a: "David Cohen", b: "David Cohen", want: 1},
		{name: "normalization noise", a: "  DAVID   Cohen", b: "david cohen", want: 1},
		{name: "both empty", a: "", b: "", want: 1},
		{name: "one empty", a: "abc", b: "", want: 0},
		{name: "one substitution", a: "David Cohon", b: "David Cohen", want: 1 - 1.0/11},
		{name: "two substitutions", a: "David Kohan", b: "David Cohen", want: 1 - 2.0/11},
		{name: "completely different", a: "abc", b: "xyz", want: 0},
		{name: "hebrew counted in runes", a: "דוד כהן", b: "דוד כהו", want: 1 - 1.0/7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, Similarity(tt.a, tt.b), 1e-9)
		})
	}
}

func TestSimilarity_SymmetricAndBounded(t *testing.T) {
	t.Parallel()

	names := []string{"", "a", "David Cohen", "Dana Levi", "Mosheh Cohen", "יוסי כהן", "O'Brien", "Jonatan Levi"}
	for _, a := range names {
		for _, b := range names {
			ab := Similarity(a, b)
			assert.Equal(t, ab, Similarity(b, a), "%q vs %q", a, b)
			assert.GreaterOrEqual(t, ab, 0.0)
			assert.LessOrEqual(t, ab, 1.0)
		}
		assert.Equal(t, 1.0, Similarity(a, a))
	}
}
