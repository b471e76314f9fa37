package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/faithchat/relay/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestIssuer_ResetRoundTrip(t *testing.T) {
	t.Parallel()

	iss := NewIssuer(IssuerConfig{SessionSecret: []byte("s"), ResetSecret: []byte("r")})
	tok, err := iss.IssueReset("a@x.com")
	if err != nil {
		t.Fatalf("IssueReset error: %v", err)
	}
	id, err := iss.ParseReset(tok)
	if err != nil {
		t.Fatalf("ParseReset error: %v", err)
	}
	if id != "a@x.com" {
		t.Fatalf("identity mismatch: %q", id)
	}
}

func TestIssuer_ParseResetRejectsSessionToken(t *testing.T) {
	t.Parallel()

	iss := NewIssuer(IssuerConfig{SessionSecret: []byte("same")})
	tok, err := iss.IssueSession("a@x.com")
	if err != nil {
		t.Fatalf("IssueSession error: %v", err)
	}
	_, err = iss.ParseReset(tok)
	if !errors.Is(err, common.ErrInvalidReset) || !errors.Is(err, common.ErrWrongTokenType) {
		t.Fatalf("want ErrInvalidReset/ErrWrongTokenType, got %v", err)
	}
	if !errors.Is(err, common.ErrorBadRequest) {
		t.Fatalf("reset failures must classify as bad request, got %v", err)
	}
}

func TestIssuer_ParseResetUsesResetSecret(t *testing.T) {
	t.Parallel()

	a := NewIssuer(IssuerConfig{SessionSecret: []byte("s"), ResetSecret: []byte("r1")})
	b := NewIssuer(IssuerConfig{SessionSecret: []byte("s"), ResetSecret: []byte("r2")})
	tok, _ := a.IssueReset("a@x.com")

	if _, err := b.ParseReset(tok); !errors.Is(err, common.ErrInvalidSignature) {
		t.Fatalf("want ErrInvalidSignature, got %v", err)
	}
}

func TestIssuer_ResetSecretFallsBack(t *testing.T) {
	t.Parallel()

	iss := NewIssuer(IssuerConfig{SessionSecret: []byte("only")})
	tok, _ := iss.IssueReset("a@x.com")
	if _, err := Decode(tok, []byte("only"), jwt.SigningMethodHS256, 0); err != nil {
		t.Fatalf("reset token not signed with session secret: %v", err)
	}
}

func TestIssuer_ResetExpires(t *testing.T) {
	t.Parallel()

	clock := &fakeClock{now: t0}
	iss := NewIssuer(IssuerConfig{SessionSecret: []byte("s"), Now: clock.Now})
	tok, _ := iss.IssueReset("a@x.com")

	clock.Set(t0.Add(59 * time.Minute))
	if _, err := iss.ParseReset(tok); err != nil {
		t.Fatalf("reset rejected before expiry: %v", err)
	}
	clock.Set(t0.Add(DefaultResetTTL))
	if _, err := iss.ParseReset(tok); !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("want ErrTokenExpired, got %v", err)
	}
}

func TestIssuer_TTLsAndNonce(t *testing.T) {
	t.Parallel()

	iss := NewIssuer(IssuerConfig{SessionSecret: []byte("s"), Now: fixedClock(t0)})
	sess, _ := iss.IssueSession("a@x.com")
	reset, _ := iss.IssueReset("a@x.com")

	opts := DecodeOptions{Now: fixedClock(t0)}
	sc, err := DecodeWithOptions(sess, staticKey([]byte("s")), []string{"HS256"}, opts)
	if err != nil {
		t.Fatalf("decode session: %v", err)
	}
	rc, err := DecodeWithOptions(reset, staticKey([]byte("s")), []string{"HS256"}, opts)
	if err != nil {
		t.Fatalf("decode reset: %v", err)
	}

	if got := sc.ExpiresAt.Sub(sc.IssuedAt.Time); got != DefaultSessionTTL {
		t.Fatalf("session ttl = %v", got)
	}
	if got := rc.ExpiresAt.Sub(rc.IssuedAt.Time); got != DefaultResetTTL {
		t.Fatalf("reset ttl = %v", got)
	}
	if sc.ID == "" || sc.ID == rc.ID {
		t.Fatalf("expected distinct nonces, got %q and %q", sc.ID, rc.ID)
	}
	if sc.Type != TokenTypeSession || rc.Type != TokenTypePasswordReset {
		t.Fatalf("type tags: %q %q", sc.Type, rc.Type)
	}
}

func TestIssuer_EmptyIdentity(t *testing.T) {
	t.Parallel()

	iss := NewIssuer(IssuerConfig{SessionSecret: []byte("s")})
	if _, err := iss.IssueSession(""); err == nil {
		t.Fatal("expected error for empty identity")
	}
}
