package server

import (
	"net/http/httptest"
	"testing"
)

func TestOriginValidation(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })

	cfg := NewConfig()
	cfg.AllowedOrigins = []string{"https://Village.Example", "not a url", ""}
	SetConfig(cfg)

	tests := []struct {
		name   string
		origin string
		want   bool
	}{
		{"native client without origin", "", true},
		{"configured origin", "https://village.example", true},
		{"case insensitive", "HTTPS://VILLAGE.EXAMPLE", true},
		{"other host", "https://evil.example", false},
		{"other scheme", "http://village.example", false},
		{"malformed", "://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := checkOrigin(r); got != tt.want {
				t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}

func TestWildcardOrigin(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })

	cfg := NewConfig()
	cfg.AllowedOrigins = []string{"*"}
	SetConfig(cfg)

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "https://anywhere.example")
	if !checkOrigin(r) {
		t.Error("wildcard should allow any origin")
	}
}

func TestOriginPolicy(t *testing.T) {
	policy, kept := newOriginPolicy([]string{" http://LOCALHOST:8080 ", "*", "bogus", "http://localhost:8080"})
	if !policy.any {
		t.Error("expected wildcard flag")
	}
	if len(kept) != 1 || kept[0] != "http://localhost:8080" {
		t.Errorf("unexpected canonical origins %v", kept)
	}

	strict, _ := newOriginPolicy([]string{"https://village.example"})
	if !strict.allows("") {
		t.Error("a missing Origin must be allowed")
	}
	if strict.allows("https://evil.example") || strict.allows("%zz") {
		t.Error("unlisted or unparsable origins must be refused")
	}
}
