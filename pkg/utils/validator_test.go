package utils

import "testing"

func TestValidateCalendarDate(t *testing.T) {
	for _, valid := range []string{"2026-01-01", "2026-02-28", "2000-12-31"} {
		if err := ValidateCalendarDate(valid); err != nil {
			t.Errorf("ValidateCalendarDate(%q) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "15/01/2026", "2026-13-01", "2026-02-30", "soon"} {
		if err := ValidateCalendarDate(invalid); err == nil {
			t.Errorf("ValidateCalendarDate(%q) = nil, want error", invalid)
		}
	}
}

func TestValidateDocument(t *testing.T) {
	for _, valid := range []string{"12345678901", "12345678000195"} {
		if err := ValidateDocument(valid); err != nil {
			t.Errorf("ValidateDocument(%q) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"", "123", "1234567890a", "123456789012345"} {
		if err := ValidateDocument(invalid); err == nil {
			t.Errorf("ValidateDocument(%q) = nil, want error", invalid)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"album printing", "album printing"},
		{"line\x00break\x1f", "linebreak"},
		{"tab\tand\nnewline", "tabandnewline"},
		{"acentuação ok", "acentuação ok"},
	}
	for _, tt := range tests {
		if got := SanitizeString(tt.in); got != tt.want {
			t.Errorf("SanitizeString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
