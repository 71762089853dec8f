package service

import (
	"context"
	"errors"

	"google.golang.org/api/idtoken"
)

// Identity is what a third-party sign-in vouches for.
type Identity struct {
	Email string
	Name  string
}

// IdentityVerifier checks a third-party ID token.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// GoogleVerifier validates Google ID tokens issued for clientID.
type GoogleVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) *GoogleVerifier {
	return &GoogleVerifier{clientID: clientID}
}

func (v *GoogleVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, err
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, errors.New("google token carries no email")
	}
	name, _ := payload.Claims["name"].(string)

	return &Identity{Email: email, Name: name}, nil
}
