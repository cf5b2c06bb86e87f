package instrumentation

import "testing"

func TestExtractUserDomain(t *testing.T) {
	tests := []struct {
		email    string
		expected string
	}{
		{"jane@example.com", "example.com"},
		{"Jane@Example.COM", "example.com"},
		{"test@subdomain.example.com", "subdomain.example.com"},
		{"invalid", "unknown"},
		{"", "unknown"},
		{"@", "unknown"},
		{"user@", "unknown"},
		{"@domain.com", "domain.com"},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			result := ExtractUserDomain(tt.email)
			if result != tt.expected {
				t.Errorf("ExtractUserDomain(%q) = %q, want %q", tt.email, result, tt.expected)
			}
		})
	}
}

func TestNormalizeMode(t *testing.T) {
	tests := []struct {
		mode     string
		expected string
	}{
		{"", ModeOnline},
		{"online", ModeOnline},
		{"in-person", ModeOther},
		{"Online", ModeOther},
		{"phone", ModeOther},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			if got := NormalizeMode(tt.mode); got != tt.expected {
				t.Errorf("NormalizeMode(%q) = %q, want %q", tt.mode, got, tt.expected)
			}
		})
	}
}
