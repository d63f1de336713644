package service

import (
	"context"
	"errors"
	"testing"

	"github.com/support371/fintech-microservices-core/internal/domain"
	"github.com/support371/fintech-microservices-core/internal/payout"
	"github.com/support371/fintech-microservices-core/internal/rates"
)

func newTestEngine() (*Engine, *payout.Sandbox) {
	sandbox := payout.NewSandbox()
	return NewEngine(rates.NewStatic(), sandbox, 10000), sandbox
}

func TestConvertSuccess(t *testing.T) {
	e, sandbox := newTestEngine()

	res, err := e.Convert(context.Background(), "user-1", 100.50, "USD")
	if err != nil {
		t.Fatal(err)
	}
	if res.BTCAmount != 0.00143571 {
		t.Fatalf("expected 0.00143571 BTC, got %v", res.BTCAmount)
	}
	if res.Satoshis != 143571 {
		t.Fatalf("expected 143571 sats, got %d", res.Satoshis)
	}
	if res.ExchangeRateUsed != 70000.0 {
		t.Fatalf("expected rate 70000.0, got %v", res.ExchangeRateUsed)
	}
	if res.FiatCurrency != "USD" {
		t.Fatalf("expected normalized currency USD, got %s", res.FiatCurrency)
	}
	if res.CompletedAt.IsZero() {
		t.Fatal("expected a completion timestamp")
	}
	if sandbox.Calls() != 1 {
		t.Fatalf("expected exactly one payout, got %d", sandbox.Calls())
	}
}

func TestConvertCurrencyCaseInsensitive(t *testing.T) {
	e, _ := newTestEngine()

	lower, err := e.Convert(context.Background(), "user-1", 100, "usd")
	if err != nil {
		t.Fatal(err)
	}
	upper, err := e.Convert(context.Background(), "user-1", 100, "USD")
	if err != nil {
		t.Fatal(err)
	}
	if lower.ExchangeRateUsed != upper.ExchangeRateUsed {
		t.Fatalf("rate differs by case: %v != %v", lower.ExchangeRateUsed, upper.ExchangeRateUsed)
	}
	if lower.FiatCurrency != "USD" || upper.FiatCurrency != "USD" {
		t.Fatal("currency must normalize to uppercase")
	}
}

func TestConvertInvalidAmount(t *testing.T) {
	e, sandbox := newTestEngine()

	for _, amount := range []float64{0, -5} {
		_, err := e.Convert(context.Background(), "user-1", amount, "USD")
		if !errors.Is(err, domain.ErrInvalidAmount) {
			t.Fatalf("amount %v: expected ErrInvalidAmount, got %v", amount, err)
		}
	}
	if sandbox.Calls() != 0 {
		t.Fatal("validation failure must not reach the payout")
	}
}

func TestConvertUnsupportedCurrency(t *testing.T) {
	e, _ := newTestEngine()

	_, err := e.Convert(context.Background(), "user-1", 100, "XYZ")
	if !errors.Is(err, domain.ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
}

func TestConvertAmountLimitExceeded(t *testing.T) {
	e, sandbox := newTestEngine()

	_, err := e.Convert(context.Background(), "user-1", 15000, "USD")
	if !errors.Is(err, domain.ErrAmountLimitExceeded) {
		t.Fatalf("expected ErrAmountLimitExceeded, got %v", err)
	}
	if sandbox.Calls() != 0 {
		t.Fatal("limit failure must not reach the payout")
	}
}

func TestConvertValidationOrder(t *testing.T) {
	e, _ := newTestEngine()

	// A request that violates everything fails on the amount first.
	_, err := e.Convert(context.Background(), "user-1", -1, "XYZ")
	if !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount first, got %v", err)
	}

	// Unsupported currency is reported before the ceiling.
	_, err = e.Convert(context.Background(), "user-1", 15000, "XYZ")
	if !errors.Is(err, domain.ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency before limit, got %v", err)
	}
}

func TestConvertPayoutFailurePropagates(t *testing.T) {
	e, sandbox := newTestEngine()
	sandbox.FailWith(errors.New("settlement unreachable"))

	_, err := e.Convert(context.Background(), "user-1", 100, "USD")
	if !errors.Is(err, domain.ErrPayoutFailed) {
		t.Fatalf("expected ErrPayoutFailed, got %v", err)
	}
	// Validation errors and payout errors must remain distinguishable.
	if errors.Is(err, domain.ErrInvalidAmount) || errors.Is(err, domain.ErrUnsupportedCurrency) {
		t.Fatal("payout failure conflated with a validation failure")
	}
}
