package pii

import "testing"

func TestRedactor(t *testing.T) {
	redactor := NewRedactor(true)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "email address",
			input: "clicked profile for jane.doe@example.com today",
			want:  "clicked profile for [REDACTED] today",
		},
		{
			name:  "phone number with dashes",
			input: "call 555-867-5309 now",
			want:  "call [REDACTED] now",
		},
		{
			name:  "card-like digit run",
			input: "entered 4111 1111 1111 1111 in field",
			want:  "entered [REDACTED] in field",
		},
		{
			name:  "short digits untouched",
			input: "page 42 of 100",
			want:  "page 42 of 100",
		},
		{
			name:  "no PII",
			input: "Submit order button",
			want:  "Submit order button",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := redactor.Redact(tt.input); got != tt.want {
				t.Errorf("Redact(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRedactorDisabled(t *testing.T) {
	redactor := NewRedactor(false)
	input := "jane.doe@example.com"
	if got := redactor.Redact(input); got != input {
		t.Errorf("disabled redactor modified input: got %q", got)
	}
}
