package auth

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/idtoken"

	"github.com/daybrief/daybrief/pkg/models"
)

// IDTokenVerifier validates a signed Google ID token (JWT): signature against
// Google's published certificates and audience against the configured OAuth
// client id. This is the fast path for credentials issued by Google Sign-In.
type IDTokenVerifier struct {
	clientID string

	// validate is idtoken.Validate, swapped in tests.
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

// NewIDTokenVerifier creates the ID token verifier for the given client id.
func NewIDTokenVerifier(clientID string) *IDTokenVerifier {
	return &IDTokenVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (v *IDTokenVerifier) Name() string { return "idtoken" }

func (v *IDTokenVerifier) Enabled() bool { return v.clientID != "" }

// Verify checks the token's signature, expiry and audience. An opaque access
// token fails here (it is not a JWT) and falls through to the next verifier.
func (v *IDTokenVerifier) Verify(ctx context.Context, token string) (*models.Identity, error) {
	payload, err := v.validate(ctx, token, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("id token validation: %w", err)
	}

	return &models.Identity{
		Email:        claimString(payload.Claims, "email"),
		Name:         claimString(payload.Claims, "name"),
		Picture:      claimString(payload.Claims, "picture"),
		HostedDomain: claimString(payload.Claims, "hd"),
		Subject:      payload.Subject,
		Issuer:       payload.Issuer,
		Audience:     payload.Audience,
		IssuedAt:     time.Unix(payload.IssuedAt, 0),
		ExpiresAt:    time.Unix(payload.Expires, 0),
	}, nil
}

func claimString(claims map[string]interface{}, key string) string {
	if v, ok := claims[key].(string); ok {
		return v
	}
	return ""
}
