package orders_test

import (
	"errors"
	"testing"

	"github.com/qrserve/qrserve/internal/orders"
	"github.com/qrserve/qrserve/internal/shared"
	_ "github.com/qrserve/qrserve/testing"
)

func TestStatusLifecycle(t *testing.T) {
	allowed := []struct {
		from, to orders.Status
	}{
		{orders.StatusPending, orders.StatusConfirmed},
		{orders.StatusPending, orders.StatusCancelled},
		{orders.StatusConfirmed, orders.StatusPreparing},
		{orders.StatusConfirmed, orders.StatusCancelled},
		{orders.StatusPreparing, orders.StatusReady},
		{orders.StatusPreparing, orders.StatusCancelled},
		{orders.StatusReady, orders.StatusServed},
		{orders.StatusReady, orders.StatusCancelled},
	}
	for _, tc := range allowed {
		if err := orders.ValidateTransition(tc.from, tc.to); err != nil {
			t.Fatalf("%s -> %s must be allowed: %v", tc.from, tc.to, err)
		}
	}

	denied := []struct {
		from, to orders.Status
	}{
		{orders.StatusPending, orders.StatusPreparing},
		{orders.StatusPending, orders.StatusServed},
		{orders.StatusConfirmed, orders.StatusServed},
		{orders.StatusServed, orders.StatusReady},
		{orders.StatusServed, orders.StatusCancelled},
		{orders.StatusCancelled, orders.StatusConfirmed},
	}
	for _, tc := range denied {
		err := orders.ValidateTransition(tc.from, tc.to)
		if !errors.Is(err, shared.ErrValidation) {
			t.Fatalf("%s -> %s must be rejected, got %v", tc.from, tc.to, err)
		}
	}
}

func TestValidateTransitionRejectsUnknownStatus(t *testing.T) {
	if err := orders.ValidateTransition(orders.StatusPending, orders.Status("shipped")); !errors.Is(err, shared.ErrValidation) {
		t.Fatalf("unknown target status must fail validation, got %v", err)
	}
}

func TestStatusValid(t *testing.T) {
	for _, s := range []orders.Status{
		orders.StatusPending, orders.StatusConfirmed, orders.StatusPreparing,
		orders.StatusReady, orders.StatusServed, orders.StatusCancelled,
	} {
		if !s.Valid() {
			t.Fatalf("expected %s to be a known status", s)
		}
	}
	if orders.Status("archived").Valid() {
		t.Fatalf("unknown status must not validate")
	}
}

func TestLineTotal(t *testing.T) {
	line := orders.Line{Quantity: 3, UnitPriceCents: 450}
	if got := line.LineTotal(); got != 1350 {
		t.Fatalf("expected 1350, got %d", got)
	}
}
