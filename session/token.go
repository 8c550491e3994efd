package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo describes a session token, read without verifying its signature.
type TokenInfo struct {
	Opaque    bool // not a JWT, nothing more is known
	Subject   string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token is known to be expired at now.
func (i TokenInfo) Expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && !now.Before(i.ExpiresAt)
}

// Remaining returns the token lifetime left at now, 0 when unknown or expired.
func (i TokenInfo) Remaining(now time.Time) time.Duration {
	if i.ExpiresAt.IsZero() || i.Expired(now) {
		return 0
	}
	return i.ExpiresAt.Sub(now)
}

func (i TokenInfo) String() string {
	if i.Opaque {
		return "opaque token"
	}
	s := fmt.Sprintf("subject %q", i.Subject)
	if !i.ExpiresAt.IsZero() {
		s += " expiring " + i.ExpiresAt.Local().Format("2006-01-02 15:04")
	}
	return s
}

// Inspect reads the claims of token. It never verifies the signature, the
// result is for display only.
func Inspect(token string) (TokenInfo, error) {
	if token == "" {
		return TokenInfo{}, errors.New("no token")
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return TokenInfo{Opaque: true}, nil
		}
		return TokenInfo{}, fmt.Errorf("cannot read token: %w", err)
	}
	info := TokenInfo{Subject: claims.Subject, Issuer: claims.Issuer}
	if claims.IssuedAt != nil {
		info.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}
