// Package payout executes crypto payouts against the external settlement API.
package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// HTTPExecutor posts payout instructions to the settlement partner. Every
// call is bounded by the client timeout; money motion hangs on the outcome,
// so a timeout surfaces as an error rather than being swallowed.
type HTTPExecutor struct {
	client  *http.Client
	baseURL string
	apiKey  string
}

type payoutRequest struct {
	UserID    string  `json:"user_id"`
	BTCAmount float64 `json:"btc_amount"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewHTTPExecutor(baseURL, apiKey string) *HTTPExecutor {
	return &HTTPExecutor{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

func (e *HTTPExecutor) Execute(ctx context.Context, userID string, btcAmount float64) error {
	requestBodyBytes, err := json.Marshal(payoutRequest{
		UserID:    userID,
		BTCAmount: btcAmount,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/v1/payouts", e.baseURL), bytes.NewBuffer(requestBodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	response, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	responseBodyBytes, err := io.ReadAll(response.Body)
	if err != nil {
		return err
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return nil
	}

	var errResp errorResponse
	if err := json.Unmarshal(responseBodyBytes, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("payout API returned status %d", response.StatusCode)
	}
	return errors.New(errResp.Error)
}

// Sandbox records payout calls without moving anything. It stands in for the
// live API when no base URL is configured, and doubles as the test spy.
type Sandbox struct {
	mu    sync.Mutex
	calls []payoutRequest
	fail  error
}

func NewSandbox() *Sandbox {
	return &Sandbox{}
}

// FailWith makes every subsequent Execute return err.
func (s *Sandbox) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fail = err
}

func (s *Sandbox) Execute(_ context.Context, userID string, btcAmount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	s.calls = append(s.calls, payoutRequest{UserID: userID, BTCAmount: btcAmount})
	return nil
}

// Calls returns how many payouts have executed.
func (s *Sandbox) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
