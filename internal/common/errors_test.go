package common

import (
	"errors"
	"testing"
)

func TestValidationErrors_WrapBadRequest(t *testing.T) {
	for _, err := range []error{ErrWeakPassword, ErrInvalidIdentity, ErrUserExists, ErrInvalidReset, ErrEmptyMessage, ErrInvalidRole, ErrInvalidAmount, ErrInvalidWebhook} {
		if !errors.Is(err, ErrorBadRequest) {
			t.Fatalf("%q should wrap ErrorBadRequest", err)
		}
	}
}

func TestValidationErrors_MessageIsUserFacing(t *testing.T) {
	if ErrWeakPassword.Error() != "Password must be at least 8 characters" {
		t.Fatalf("unexpected message: %q", ErrWeakPassword.Error())
	}
	if errors.Is(ErrorUnauthorized, ErrorBadRequest) {
		t.Fatal("unauthorized must not be a bad request")
	}
}
