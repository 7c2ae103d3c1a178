package shared_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/qrserve/qrserve/internal/shared"
	_ "github.com/qrserve/qrserve/testing"
)

func TestEnsureTokenIsStablePerSession(t *testing.T) {
	sm, _ := newSessionManager(t)
	csrf := shared.NewCSRFManager("csrf-secret")
	ctx := context.Background()

	sess, _ := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))
	first, err := csrf.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	if first == "" {
		t.Fatalf("expected non-empty token")
	}
	second, err := csrf.EnsureToken(ctx, sess)
	if err != nil {
		t.Fatalf("ensure token: %v", err)
	}
	if first != second {
		t.Fatalf("token must not rotate within a session")
	}
}

func TestVerifyTokenRejectsMissingAndMismatched(t *testing.T) {
	sm, _ := newSessionManager(t)
	csrf := shared.NewCSRFManager("csrf-secret")
	ctx := context.Background()

	sess, _ := sm.Load(ctx, httptest.NewRequest(http.MethodGet, "/", nil))

	if err := csrf.VerifyToken(ctx, sess, "anything"); !errors.Is(err, shared.ErrCSRFTokenMissing) {
		t.Fatalf("expected missing-token error before issuance, got %v", err)
	}

	token, _ := csrf.EnsureToken(ctx, sess)
	if err := csrf.VerifyToken(ctx, sess, ""); !errors.Is(err, shared.ErrCSRFTokenMissing) {
		t.Fatalf("expected missing-token error for empty input, got %v", err)
	}
	if err := csrf.VerifyToken(ctx, sess, token+"x"); !errors.Is(err, shared.ErrCSRFTokenMismatch) {
		t.Fatalf("expected mismatch error, got %v", err)
	}
	if err := csrf.VerifyToken(ctx, sess, token); err != nil {
		t.Fatalf("expected valid token to verify, got %v", err)
	}
}

func TestVerifyTokenWithoutSession(t *testing.T) {
	csrf := shared.NewCSRFManager("csrf-secret")
	if err := csrf.VerifyToken(context.Background(), nil, "token"); !errors.Is(err, shared.ErrCSRFTokenMissing) {
		t.Fatalf("expected missing-token error for nil session, got %v", err)
	}
}
