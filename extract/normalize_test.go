package extract

import "testing"

func TestNumber(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  int
		ok    bool
	}{
		{"plain", "42", 42, true},
		{"dot grouped", "1.234", 1234, true},
		{"comma grouped", "1,234", 1234, true},
		{"space grouped", "1 234", 1234, true},
		{"nbsp grouped", "1 234", 1234, true},
		{"narrow nbsp grouped", "1 234", 1234, true},
		{"two groups", "1.234.567", 1234567, true},
		{"negative", "-5", -5, true},
		{"leading text", "ca. 250", 250, true},
		{"trailing whitespace", " 37 ", 37, true},
		{"letters only", "abc", 0, false},
		{"empty", "", 0, false},
		{"bare minus", "-", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Number(tt.token)
			if ok != tt.ok {
				t.Fatalf("Number(%q) ok = %v, want %v", tt.token, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("Number(%q) = %d, want %d", tt.token, got, tt.want)
			}
		})
	}
}

func TestNumber_DecimalNotGrouped(t *testing.T) {
	// "1.23" is not a thousands group; the separator is dropped with the
	// rest of the non-digit characters, so the digits concatenate.
	got, ok := Number("1.23")
	if !ok || got != 123 {
		t.Errorf("Number(%q) = %d, %v; want 123, true", "1.23", got, ok)
	}
}
