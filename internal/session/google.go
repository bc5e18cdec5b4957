package session

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"
)

// GoogleVerifier validates Google ID tokens for a single OAuth client id.
type GoogleVerifier struct {
	clientID string
	validate func(ctx context.Context, token, audience string) (*idtoken.Payload, error)
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID, validate: idtoken.Validate}
}

func (g *GoogleVerifier) Verify(ctx context.Context, token string) (FederatedProfile, error) {
	if token == "" {
		return FederatedProfile{}, errors.New("empty id token")
	}
	payload, err := g.validate(ctx, token, g.clientID)
	if err != nil {
		return FederatedProfile{}, fmt.Errorf("validate google id token: %w", err)
	}

	email, _ := payload.Claims["email"].(string)
	name, _ := payload.Claims["name"].(string)
	if payload.Subject == "" || email == "" {
		return FederatedProfile{}, errors.New("google id token lacks subject or email")
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return FederatedProfile{}, errors.New("google account email is not verified")
	}

	return FederatedProfile{
		Provider: ProviderGoogle,
		Subject:  payload.Subject,
		Email:    email,
		Name:     name,
	}, nil
}
