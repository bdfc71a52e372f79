package caption

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Hello", "Hello"},
		{"escaped newline", `Hello\nWorld`, "Hello\nWorld"},
		{"real newline kept", "Hello\nWorld", "Hello\nWorld"},
		{"crlf", "Hello\r\nWorld", "Hello\nWorld"},
		{"lone cr", "Hello\rWorld", "Hello\nWorld"},
		{"several", `a\nb\nc`, "a\nb\nc"},
		{"escaped backslash before n", `a\\nb`, "a\\\nb"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"Hello",
		`Hello\nWorld`,
		`\\n\\\n\n`,
		"mixed\r\nline\\nendings\r",
		`trailing\`,
		"\\\r\n",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestLines(t *testing.T) {
	want := []string{"Hello", "World"}
	if diff := cmp.Diff(want, Lines(`Hello\nWorld`)); diff != "" {
		t.Errorf("Lines() mismatch (-want +got):\n%s", diff)
	}
}
