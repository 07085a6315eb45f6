package i18n

import "testing"

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	if msg := T("invalid_type", nil); msg == "invalid_type" || msg == "" {
		t.Fatalf("expected a human message, got %q", msg)
	}

	SetLanguage("ja")
	if msg := T("invalid_type", nil); msg == "invalid type" {
		t.Fatalf("expected japanese message, got %q", msg)
	}

	// reset to en
	SetLanguage("en")
}

func TestTranslator_FillsPlaceholders(t *testing.T) {
	tests := []struct {
		code string
		data map[string]string
		want string
	}{
		{"unknown_key", map[string]string{"field": "c"}, "unknown field 'c'"},
		{"required", map[string]string{"field": "name"}, "required field 'name' missing"},
		{"required", nil, "required field missing"},
		{"discriminator_mismatch", map[string]string{"expected": "foo", "found": "bar"}, "discriminator mismatch (expected 'foo', found 'bar')"},
		{"no_such_code", nil, "no_such_code"},
	}
	for _, tt := range tests {
		if got := T(tt.code, tt.data); got != tt.want {
			t.Errorf("T(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
