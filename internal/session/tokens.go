package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrMissingToken = errors.New("missing session token")
	ErrInvalidToken = errors.New("invalid session token")
	ErrRevokedToken = errors.New("session token revoked")
)

// TokenConfig holds the signing parameters for session tokens.
type TokenConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// Claims is the normalized payload of a session token.
type Claims struct {
	TokenID   string
	Identity  Identity
	ExpiresAt time.Time
}

// Tokens issues and verifies HS256 session tokens.
type Tokens struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokens(cfg TokenConfig) *Tokens {
	if cfg.TTL <= 0 {
		cfg.TTL = 72 * time.Hour
	}
	return &Tokens{cfg: cfg, now: time.Now}
}

// TTL is the lifetime of issued tokens.
func (t *Tokens) TTL() time.Duration { return t.cfg.TTL }

// Issue signs a token for id.
func (t *Tokens) Issue(id Identity) (string, Claims, error) {
	now := t.now()
	claims := Claims{
		TokenID:   uuid.NewString(),
		Identity:  id,
		ExpiresAt: now.Add(t.cfg.TTL),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  id.ID,
		"name": id.DisplayLabel,
		"jti":  claims.TokenID,
		"iss":  t.cfg.Issuer,
		"iat":  now.Unix(),
		"exp":  claims.ExpiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte(t.cfg.Secret))
	if err != nil {
		return "", Claims{}, fmt.Errorf("sign session token: %w", err)
	}
	return signed, claims, nil
}

// Parse validates a token and returns its claims.
func (t *Tokens) Parse(token string) (Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Claims{}, ErrMissingToken
	}

	parsed, err := jwt.Parse(token, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", tok.Header["alg"])
		}
		return []byte(t.cfg.Secret), nil
	},
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	sub, _ := mc["sub"].(string)
	jti, _ := mc["jti"].(string)
	name, _ := mc["name"].(string)
	if sub == "" || jti == "" {
		return Claims{}, ErrInvalidToken
	}
	exp, err := mc.GetExpirationTime()
	if err != nil || exp == nil {
		return Claims{}, ErrInvalidToken
	}

	return Claims{
		TokenID:   jti,
		Identity:  Identity{ID: sub, DisplayLabel: name},
		ExpiresAt: exp.Time,
	}, nil
}
