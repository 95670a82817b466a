// Package auth is the credential injection boundary. The fetch layer
// consumes pre-resolved headers and cookies through the Provider
// interface and never discovers, stores, or refreshes credentials
// itself.
package auth

import (
	"strings"

	"github.com/cmellojr/chessclub/internal/config"
)

// Credentials carries HTTP authentication material. Fetchers apply it
// to outgoing requests without knowing which strategy produced it.
type Credentials struct {
	Headers map[string]string
	Cookies map[string]string
}

type Provider interface {
	// Credentials returns the current authentication material. Must not
	// be called when IsAuthenticated reports false.
	Credentials() Credentials

	// IsAuthenticated reports whether usable credentials are available.
	// Never returns an error; absence is simply false.
	IsAuthenticated() bool
}

// StaticProvider serves credentials resolved once at startup from the
// environment. Cookies use the standard "name=value; name2=value2"
// header form.
type StaticProvider struct {
	creds Credentials
}

func NewStaticProvider(cfg *config.Config) *StaticProvider {
	creds := Credentials{
		Headers: map[string]string{},
		Cookies: parseCookies(cfg.SessionCookies),
	}
	if cfg.AuthToken != "" {
		creds.Headers["Authorization"] = "Bearer " + cfg.AuthToken
	}
	return &StaticProvider{creds: creds}
}

func (p *StaticProvider) Credentials() Credentials {
	return p.creds
}

func (p *StaticProvider) IsAuthenticated() bool {
	return len(p.creds.Cookies) > 0 || len(p.creds.Headers) > 0
}

func parseCookies(raw string) map[string]string {
	cookies := map[string]string{}
	for _, pair := range strings.Split(raw, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		name, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		cookies[name] = value
	}
	return cookies
}
