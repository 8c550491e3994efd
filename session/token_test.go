package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestInspect(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "alice",
		Issuer:    "spectra",
		ExpiresAt: jwt.NewNumericDate(exp),
		IssuedAt:  jwt.NewNumericDate(exp.Add(-30 * time.Minute)),
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	info, err := Inspect(signed)
	if err != nil {
		t.Fatalf("Inspect() error: %v", err)
	}
	if info.Opaque || info.Subject != "alice" || info.Issuer != "spectra" || !info.ExpiresAt.Equal(exp) {
		t.Errorf("Inspect() = %+v", info)
	}
	before := exp.Add(-10 * time.Minute)
	if info.Expired(before) || info.Remaining(before) != 10*time.Minute {
		t.Errorf("Expired/Remaining at %v = %v/%v", before, info.Expired(before), info.Remaining(before))
	}
	if !info.Expired(exp) || info.Remaining(exp.Add(time.Hour)) != 0 {
		t.Errorf("token not expired at its expiry")
	}

	info, err = Inspect("authenticated")
	if err != nil || !info.Opaque {
		t.Errorf("Inspect(opaque) = %+v, %v", info, err)
	}
	if info.Expired(time.Now()) {
		t.Errorf("opaque token reported expired")
	}
	if _, err := Inspect(""); err == nil {
		t.Errorf("Inspect(\"\") succeeded")
	}
}
