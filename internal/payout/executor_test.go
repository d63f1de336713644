package payout

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTTPExecutorSuccess(t *testing.T) {
	var got payoutRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/payouts" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer key_test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	e := NewHTTPExecutor(srv.URL, "key_test")
	if err := e.Execute(context.Background(), "user-1", 0.00143571); err != nil {
		t.Fatal(err)
	}
	if got.UserID != "user-1" || got.BTCAmount != 0.00143571 {
		t.Fatalf("unexpected payout request: %+v", got)
	}
}

func TestHTTPExecutorErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"error":"wallet frozen"}`))
	}))
	defer srv.Close()

	e := NewHTTPExecutor(srv.URL, "key_test")
	err := e.Execute(context.Background(), "user-1", 0.001)
	if err == nil || err.Error() != "wallet frozen" {
		t.Fatalf("expected upstream error message, got %v", err)
	}
}

func TestHTTPExecutorOpaqueFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	e := NewHTTPExecutor(srv.URL, "key_test")
	err := e.Execute(context.Background(), "user-1", 0.001)
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestSandboxRecordsAndFails(t *testing.T) {
	s := NewSandbox()
	if err := s.Execute(context.Background(), "user-1", 0.001); err != nil {
		t.Fatal(err)
	}
	if s.Calls() != 1 {
		t.Fatalf("expected 1 call, got %d", s.Calls())
	}

	s.FailWith(context.DeadlineExceeded)
	if err := s.Execute(context.Background(), "user-1", 0.001); err == nil {
		t.Fatal("expected injected failure")
	}
	if s.Calls() != 1 {
		t.Fatalf("failed call must not be recorded, got %d", s.Calls())
	}
}
