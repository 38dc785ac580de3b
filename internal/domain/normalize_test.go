package domain

import "testing"

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "trim and lowercase", input: "  David Cohen ", want: "david cohen"},
		{name: "collapse whitespace", input: "David \t  Cohen", want: "david cohen"},
		{name: "straight apostrophe", input: "D'Angelo Smith", want: "dangelo smith"},
		{name: "curly apostrophe", input: "O’Brien", want: "obrien"},
		{name: "double quotes", input: `"Yossi" Levi`, want: "yossi levi"},
		{name: "backtick and acute", input: "Ja`mes Jo´nes", want: "james jones"},
		{name: "hebrew geresh", input: "ג׳ורג׳", want: "גורג"},
		{name: "hebrew gershayim", input: "צה״ל", want: "צהל"},
		{name: "hebrew apostrophe as geresh", input: "ז'קלין לוי", want: "זקלין לוי"},
		{name: "hebrew niqqud stripped", input: "דָּוִד כֹּהֵן", want: "דוד כהן"},
		{name: "latin diacritics kept", input: "José Núñez", want: "josé núñez"},
		{name: "decomposed input composed", input: "Jose\u0301", want: "jos\u00e9"},
		{name: "empty", input: "", want: ""},
		{name: "only whitespace", input: " \t\n ", want: ""},
		{name: "only quotes", input: `''""`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"  David   Cohen ",
		"O’Brien-Smith",
		"דָּוִד  כֹּהֵן",
		"ג׳ורג׳ לוי",
		"José Núñez",
		"José “Pepe”",
		"",
		"ALL CAPS NAME",
	}
	for _, in := range inputs {
		once := NormalizeName(in)
		if twice := NormalizeName(once); twice != once {
			t.Errorf("NormalizeName not idempotent for %q: %q -> %q", in, once, twice)
		}
	}
}

func TestFirstNameToken(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{"David Cohen", "david"},
		{"  Moshe   Ben David ", "moshe"},
		{"Madonna", "madonna"},
		{"", ""},
		{"דוד כהן", "דוד"},
	}
	for _, tt := range tests {
		if got := FirstNameToken(tt.input); got != tt.want {
			t.Errorf("FirstNameToken(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSplitName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input     string
		wantFirst string
		wantLast  string
	}{
		{"David Cohen", "David", "Cohen"},
		{" Moshe  Ben David ", "Moshe", "Ben David"},
		{"Madonna", "Madonna", ""},
		{"   ", "", ""},
	}
	for _, tt := range tests {
		first, last := SplitName(tt.input)
		if first != tt.wantFirst || last != tt.wantLast {
			t.Errorf("SplitName(%q) = (%q, %q), want (%q, %q)", tt.input, first, last, tt.wantFirst, tt.wantLast)
		}
	}
}
