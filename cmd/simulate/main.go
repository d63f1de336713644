// Command simulate signs fiat-received webhooks and delivers them to a
// running converter, redelivering each payload to demonstrate that duplicate
// notifications collapse into one conversion.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/support371/fintech-microservices-core/internal/signature"
)

var (
	targetURL   string
	secret      string
	concurrency int
	requests    int
	workload    string
)

// Metrics
var (
	totalRequests uint64
	converted     uint64 // fresh conversions
	replayed      uint64 // idempotent replays
	rejected      uint64 // 4xx/5xx
	failOther     uint64
)

func init() {
	flag.StringVar(&targetURL, "url", "http://localhost:8080", "Converter base URL")
	flag.StringVar(&secret, "secret", os.Getenv("WEBHOOK_SECRET"), "Shared webhook secret")
	flag.IntVar(&concurrency, "workers", 10, "Number of concurrent workers")
	flag.IntVar(&requests, "requests", 100, "Webhook payloads per worker")
	flag.StringVar(&workload, "workload", "duplicate", "Workload type: duplicate | unique")
}

func main() {
	flag.Parse()
	if secret == "" {
		log.Fatal("a webhook secret is required (-secret or WEBHOOK_SECRET)")
	}
	log.Printf("Starting simulation: %s | Workers: %d | Requests/worker: %d", workload, concurrency, requests)

	start := time.Now()
	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go worker(&wg, i)
	}
	wg.Wait()

	printResults(time.Since(start))
}

func worker(wg *sync.WaitGroup, id int) {
	defer wg.Done()
	client := &http.Client{Timeout: 5 * time.Second}

	for i := 0; i < requests; i++ {
		txnID := fmt.Sprintf("sim-%d-%d", id, i)
		if workload == "duplicate" {
			// All workers contend on the same ids; at most one conversion
			// may happen per id across the whole run.
			txnID = fmt.Sprintf("sim-shared-%d", i)
		}

		payload := map[string]interface{}{
			"transaction_id": txnID,
			"amount":         100.50,
			"currency":       "USD",
			"user_id":        fmt.Sprintf("user-%04d", id),
		}
		body, _ := json.Marshal(payload)
		deliver(client, body)
	}
}

func deliver(client *http.Client, body []byte) {
	req, _ := http.NewRequest("POST", targetURL+"/webhook/fiat_received", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	sig := signature.Compute(body, []byte(secret))
	req.Header.Set("X-Signature", fmt.Sprintf("t=%d,v1=%s", time.Now().Unix(), sig))

	resp, err := client.Do(req)
	if err != nil {
		atomic.AddUint64(&failOther, 1)
		return
	}
	defer resp.Body.Close()

	atomic.AddUint64(&totalRequests, 1)
	if resp.StatusCode != http.StatusOK {
		atomic.AddUint64(&rejected, 1)
		return
	}

	var envelope struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		atomic.AddUint64(&failOther, 1)
		return
	}
	if envelope.Message != "" {
		atomic.AddUint64(&replayed, 1)
	} else {
		atomic.AddUint64(&converted, 1)
	}
}

func printResults(d time.Duration) {
	total := atomic.LoadUint64(&totalRequests)

	results := map[string]interface{}{
		"workload":       workload,
		"duration_sec":   d.Seconds(),
		"total_requests": total,
		"throughput_rps": float64(total) / d.Seconds(),
		"converted":      atomic.LoadUint64(&converted),
		"replayed":       atomic.LoadUint64(&replayed),
		"rejected":       atomic.LoadUint64(&rejected),
		"errors":         atomic.LoadUint64(&failOther),
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(results)
}
