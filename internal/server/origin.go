package server

import (
	"log"
	"net/http"
	"net/url"
	"strings"
)

// originPolicy is the browser origin allow-list built from
// Config.AllowedOrigins. Entries are kept as lower-case scheme://host.
type originPolicy struct {
	any     bool
	allowed map[string]struct{}
}

// newOriginPolicy parses the configured origins, dropping blank and invalid
// entries. It returns the policy and the canonical list kept in the config.
func newOriginPolicy(origins []string) (originPolicy, []string) {
	p := originPolicy{allowed: make(map[string]struct{}, len(origins))}
	var kept []string
	for _, raw := range origins {
		switch o := strings.TrimSpace(raw); o {
		case "":
		case "*":
			p.any = true
		default:
			canon, ok := canonicalOrigin(o)
			if !ok {
				log.Printf("Ignoring invalid origin in configuration: %q", raw)
				continue
			}
			if _, dup := p.allowed[canon]; !dup {
				p.allowed[canon] = struct{}{}
				kept = append(kept, canon)
			}
		}
	}
	return p, kept
}

func canonicalOrigin(origin string) (string, bool) {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", false
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host), true
}

// allows reports whether a request carrying header may upgrade. Native game
// clients send no Origin at all and are always let through.
func (p originPolicy) allows(header string) bool {
	if header == "" || p.any {
		return true
	}
	canon, ok := canonicalOrigin(header)
	if !ok {
		return false
	}
	_, ok = p.allowed[canon]
	return ok
}

func checkOrigin(r *http.Request) bool {
	configMu.RLock()
	policy := activeOrigins
	configMu.RUnlock()

	origin := r.Header.Get("Origin")
	if policy.allows(origin) {
		return true
	}
	log.Printf("Blocked WebSocket connection from disallowed origin: %q", origin)
	return false
}
