package session

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var (
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrWeakPassword         = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrFederatedUnavailable = errors.New("federated sign-in is not configured")
)

// FederatedProfile is what an external identity provider vouches for.
type FederatedProfile struct {
	Provider string
	Subject  string
	Email    string
	Name     string
}

// FederatedVerifier checks an identity token issued by an external provider.
type FederatedVerifier interface {
	Verify(ctx context.Context, idToken string) (FederatedProfile, error)
}

// Authenticator turns credentials into identities.
type Authenticator struct {
	accounts AccountStore
	verifier FederatedVerifier
	cost     int
	now      func() time.Time
}

// NewAuthenticator builds an Authenticator. verifier may be nil, in which
// case SignInFederated returns ErrFederatedUnavailable.
func NewAuthenticator(accounts AccountStore, verifier FederatedVerifier) *Authenticator {
	return &Authenticator{
		accounts: accounts,
		verifier: verifier,
		cost:     bcrypt.DefaultCost,
		now:      time.Now,
	}
}

// SignUp registers a password account and returns its identity.
func (a *Authenticator) SignUp(ctx context.Context, email, password, displayName string) (Identity, error) {
	email, err := validEmail(email)
	if err != nil {
		return Identity{}, err
	}
	if len(password) < minPasswordLength {
		return Identity{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
	if err != nil {
		return Identity{}, fmt.Errorf("hash password: %w", err)
	}

	account := Account{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(displayName),
		PasswordHash: string(hash),
		Provider:     ProviderPassword,
		CreatedAt:    a.now().UTC(),
	}
	if err := a.accounts.CreateAccount(ctx, account); err != nil {
		return Identity{}, err
	}
	return account.Identity(), nil
}

// SignIn checks an email and password pair.
func (a *Authenticator) SignIn(ctx context.Context, email, password string) (Identity, error) {
	account, err := a.accounts.AccountByEmail(ctx, email)
	if errors.Is(err, ErrAccountNotFound) {
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, err
	}
	if account.PasswordHash == "" {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return Identity{}, ErrInvalidCredentials
	}
	return account.Identity(), nil
}

// SignInFederated verifies idToken and returns the matching account,
// creating it on first use. An existing account with the same email is
// reused.
func (a *Authenticator) SignInFederated(ctx context.Context, idToken string) (Identity, error) {
	if a.verifier == nil {
		return Identity{}, ErrFederatedUnavailable
	}
	profile, err := a.verifier.Verify(ctx, idToken)
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrInvalidCredentials, err)
	}

	account, err := a.accounts.AccountBySubject(ctx, profile.Provider, profile.Subject)
	if err == nil {
		return account.Identity(), nil
	}
	if !errors.Is(err, ErrAccountNotFound) {
		return Identity{}, err
	}

	account = Account{
		ID:          uuid.NewString(),
		Email:       NormalizeEmail(profile.Email),
		DisplayName: strings.TrimSpace(profile.Name),
		Provider:    profile.Provider,
		Subject:     profile.Subject,
		CreatedAt:   a.now().UTC(),
	}
	err = a.accounts.CreateAccount(ctx, account)
	if errors.Is(err, ErrEmailTaken) {
		existing, lookupErr := a.accounts.AccountByEmail(ctx, account.Email)
		if lookupErr != nil {
			return Identity{}, lookupErr
		}
		return existing.Identity(), nil
	}
	if err != nil {
		return Identity{}, err
	}
	return account.Identity(), nil
}

func validEmail(raw string) (string, error) {
	email := NormalizeEmail(raw)
	if email == "" {
		return "", ErrInvalidEmail
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email, "@") {
		return "", ErrInvalidEmail
	}
	return email, nil
}
