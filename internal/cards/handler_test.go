package cards

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/support371/fintech-microservices-core/internal/domain"
)

type fakeKYC struct {
	tiers map[string]int
}

func (f *fakeKYC) KycTier(_ context.Context, userID string) (int, error) {
	tier, ok := f.tiers[userID]
	if !ok {
		return 0, domain.ErrUserNotFound
	}
	return tier, nil
}

func newCardFixture(t *testing.T, converterURL string) *Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	issuer, err := NewSandboxIssuer(logger)
	if err != nil {
		t.Fatal(err)
	}
	kyc := &fakeKYC{tiers: map[string]int{"user-approved": 3, "user-pending": 1}}
	return NewHandler(kyc, issuer, NewConverterClient(converterURL, logger), logger)
}

func postJSON(t *testing.T, h http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	h(rec, req)
	return rec
}

func TestIssueCardApproved(t *testing.T) {
	h := newCardFixture(t, "http://unused")

	rec := postJSON(t, h.IssueCardHandler, `{"user_id":"user-approved","first_name":"Ada","last_name":"Lovelace"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["status"] != "Card Issued" {
		t.Fatalf("unexpected status %q", resp["status"])
	}
	if len(resp["card_id"]) < len("card-") {
		t.Fatalf("expected a card id, got %q", resp["card_id"])
	}
}

func TestIssueCardTierTooLow(t *testing.T) {
	h := newCardFixture(t, "http://unused")

	rec := postJSON(t, h.IssueCardHandler, `{"user_id":"user-pending"}`)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestIssueCardUnknownUser(t *testing.T) {
	h := newCardFixture(t, "http://unused")

	rec := postJSON(t, h.IssueCardHandler, `{"user_id":"user-missing"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestLoadFundsPropagatesConverterEnvelope(t *testing.T) {
	var gotTransfer domain.InternalTransferRequest
	converter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/internal/transfer_funds" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&gotTransfer)
		w.Write([]byte(`{"status":"success","data":{"btc_amount_sent":0.00142857}}`))
	}))
	defer converter.Close()

	h := newCardFixture(t, converter.URL)
	rec := postJSON(t, h.LoadFundsHandler, `{"user_id":"user-approved","fiat_amount":100,"fiat_currency":"USD"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if gotTransfer.TraceID == "" {
		t.Fatal("client must mint a trace id per outbound call")
	}
	if gotTransfer.UserID != "user-approved" || gotTransfer.FiatAmount != 100 {
		t.Fatalf("unexpected forwarded transfer: %+v", gotTransfer)
	}

	var resp map[string]any
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["status"] != "Conversion Initiated" {
		t.Fatalf("unexpected status %v", resp["status"])
	}
	details, ok := resp["details"].(map[string]any)
	if !ok || details["status"] != "success" {
		t.Fatalf("converter envelope not propagated: %v", resp)
	}
}

func TestLoadFundsConverterDown(t *testing.T) {
	converter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	converter.Close() // refuse connections

	h := newCardFixture(t, converter.URL)
	rec := postJSON(t, h.LoadFundsHandler, `{"user_id":"user-approved","fiat_amount":100,"fiat_currency":"USD"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestLoadFundsConverterRejects(t *testing.T) {
	converter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"status":"error","error":"Conversion processing failed"}`))
	}))
	defer converter.Close()

	h := newCardFixture(t, converter.URL)
	rec := postJSON(t, h.LoadFundsHandler, `{"user_id":"user-approved","fiat_amount":100,"fiat_currency":"USD"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
