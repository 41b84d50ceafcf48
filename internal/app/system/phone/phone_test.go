package phone

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"972501234567@c.us", "972501234567"},
		{"972501234567@s.whatsapp.net", "972501234567"},
		{"0501234567", "972501234567"},
		{"+972-50-123-4567", "972501234567"},
		{"050 123 4567", "972501234567"},
		{"(050) 123-4567", "972501234567"},
		{"972501234567", "972501234567"},
		{"", ""},
		{"   ", ""},
		{"@c.us", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Normalize(tt.input, "972")
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// All equivalent representations of one number must collapse to the same
// canonical form regardless of which one was stored.
func TestNormalize_Deterministic(t *testing.T) {
	forms := []string{
		"0501234567",
		"+972 50-123-4567",
		"972501234567",
		"972501234567@c.us",
		"050-1234567",
	}
	want := Normalize(forms[0], "972")
	for _, f := range forms[1:] {
		if got := Normalize(f, "972"); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", f, got, want)
		}
	}
}

func TestNormalize_NoCountryCode(t *testing.T) {
	// Without a configured country code the leading zero is preserved.
	if got := Normalize("0501234567", ""); got != "0501234567" {
		t.Errorf("got %q, want %q", got, "0501234567")
	}
}

func TestEqual(t *testing.T) {
	if !Equal("0501234567", "972501234567@c.us", "972") {
		t.Error("expected equivalent numbers to compare equal")
	}
	if Equal("0501234567", "0501234568", "972") {
		t.Error("expected different numbers to compare unequal")
	}
	if Equal("", "", "972") {
		t.Error("empty numbers must never compare equal")
	}
}
