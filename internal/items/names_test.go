package items

import "testing"

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"123456 Artist - Title.osz":      "Artist - Title",
		"pack/987 Some  Song [Hard].osz": "Some Song [Hard]",
		"plain.osz":                      "plain",
		"2024.osz":                       "2024",
		"1999mix.osz":                    "1999mix",
	}
	for input, want := range tests {
		if got := DisplayName(input); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDisplayNameNormalizesToNFC(t *testing.T) {
	decomposed := "1 Cafe\u0301.osz"
	if got := DisplayName(decomposed); got != "Caf\u00e9" {
		t.Fatalf("DisplayName(%q) = %q, want composed form", decomposed, got)
	}
}
