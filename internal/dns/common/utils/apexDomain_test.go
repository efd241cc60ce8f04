package utils

import "testing"

func TestGetApexDomain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"apex", "example.com", "example.com"},
		{"trailing dot", "www.example.com.", "example.com"},
		{"deep subdomain", "api.service.example.com", "example.com"},
		{"multi-label suffix", "www.example.co.uk", "example.co.uk"},
		{"private suffix", "subdomain.user.github.io", "user.github.io"},
		{"single label fallback", "localhost", "localhost"},
		{"unlisted tld", "ads.foo.invalidtld", "foo.invalidtld"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetApexDomain(tt.input); got != tt.expected {
				t.Errorf("GetApexDomain(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
