// Package auth verifies inbound Google credentials for the daybrief API.
//
// Two verifiers ship:
//   - IDTokenVerifier — signed ID token (JWT) verification against the
//     configured OAuth client id
//   - AccessTokenVerifier — opaque access token introspection plus a
//     userinfo lookup for the display fields
//
// The chain tries verifiers in order and the first Identity wins. A verifier
// failure is not fatal; it means "this credential is not mine" and the next
// verifier is tried. Exhausting the chain yields ErrUnauthenticated. Each
// verifier runs at most once per request — this is a fallback, not a retry.
package auth

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/daybrief/daybrief/pkg/models"
)

var (
	// ErrUnauthenticated is returned when no verifier accepts the credential.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrDomainNotAllowed is returned when the identity's hosted-domain claim
	// does not match the configured restriction. Callers surface it as a
	// plain 401; the distinction exists for logging only.
	ErrDomainNotAllowed = errors.New("hosted domain not allowed")
)

// Verifier implements one credential verification strategy.
//
// Contract:
//   - (*Identity, nil) → verified, stop walking
//   - (nil, error) → this verifier cannot accept the credential, try next
type Verifier interface {
	// Name returns the verifier identifier (e.g. "idtoken", "accesstoken").
	Name() string

	// Verify checks the opaque bearer string and produces an Identity.
	Verify(ctx context.Context, token string) (*models.Identity, error)

	// Enabled reports whether this verifier is configured and active.
	Enabled() bool
}

// Chain walks registered verifiers in order until one produces an Identity,
// then applies the optional hosted-domain restriction.
type Chain struct {
	allowedDomain string
	verifiers     []Verifier
}

// NewChain creates a verifier chain. Verifiers are tried in argument order.
func NewChain(allowedDomain string, verifiers ...Verifier) *Chain {
	return &Chain{allowedDomain: allowedDomain, verifiers: verifiers}
}

// Verify resolves a bearer credential to an Identity or fails closed.
func (c *Chain) Verify(ctx context.Context, token string) (*models.Identity, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	for _, v := range c.verifiers {
		if !v.Enabled() {
			continue
		}
		identity, err := v.Verify(ctx, token)
		if err != nil {
			log.Debug().
				Str("verifier", v.Name()).
				Err(err).
				Msg("Verifier rejected credential")
			continue
		}
		if identity == nil {
			continue
		}
		if c.allowedDomain != "" && identity.HostedDomain != c.allowedDomain {
			log.Warn().
				Str("verifier", v.Name()).
				Str("hd", identity.HostedDomain).
				Msg("Hosted domain rejected")
			return nil, ErrDomainNotAllowed
		}
		identity.Verifier = v.Name()
		log.Debug().
			Str("verifier", v.Name()).
			Str("email", identity.Email).
			Msg("Credential verified")
		return identity, nil
	}

	return nil, ErrUnauthenticated
}
