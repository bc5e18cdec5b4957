package session

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"
)

const (
	ProviderPassword = "password"
	ProviderGoogle   = "google"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrEmailTaken      = errors.New("email already registered")
)

// Account is a stored user. PasswordHash is empty for federated accounts.
type Account struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Provider     string
	Subject      string
	CreatedAt    time.Time
}

// Identity derives the session identity of the account.
func (a Account) Identity() Identity {
	label := strings.TrimSpace(a.DisplayName)
	if label == "" {
		label = a.Email
	}
	return Identity{ID: a.ID, DisplayLabel: label}
}

// AccountStore persists accounts. Lookups return ErrAccountNotFound and
// CreateAccount returns ErrEmailTaken on a duplicate email.
type AccountStore interface {
	CreateAccount(ctx context.Context, a Account) error
	AccountByEmail(ctx context.Context, email string) (Account, error)
	AccountBySubject(ctx context.Context, provider, subject string) (Account, error)
}

// NormalizeEmail lowercases and trims an address for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// MemoryAccounts is an in-process AccountStore.
type MemoryAccounts struct {
	mu        sync.Mutex
	byEmail   map[string]Account
	bySubject map[string]string
}

func NewMemoryAccounts() *MemoryAccounts {
	return &MemoryAccounts{
		byEmail:   make(map[string]Account),
		bySubject: make(map[string]string),
	}
}

func (m *MemoryAccounts) CreateAccount(_ context.Context, a Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	email := NormalizeEmail(a.Email)
	if _, ok := m.byEmail[email]; ok {
		return ErrEmailTaken
	}
	a.Email = email
	m.byEmail[email] = a
	if a.Subject != "" {
		m.bySubject[a.Provider+"|"+a.Subject] = email
	}
	return nil
}

func (m *MemoryAccounts) AccountByEmail(_ context.Context, email string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byEmail[NormalizeEmail(email)]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (m *MemoryAccounts) AccountBySubject(_ context.Context, provider, subject string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	email, ok := m.bySubject[provider+"|"+subject]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return m.byEmail[email], nil
}
