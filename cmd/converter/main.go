package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/support371/fintech-microservices-core/internal/api"
	"github.com/support371/fintech-microservices-core/internal/audit"
	"github.com/support371/fintech-microservices-core/internal/config"
	"github.com/support371/fintech-microservices-core/internal/domain"
	"github.com/support371/fintech-microservices-core/internal/ledger"
	"github.com/support371/fintech-microservices-core/internal/payout"
	"github.com/support371/fintech-microservices-core/internal/rates"
	"github.com/support371/fintech-microservices-core/internal/service"
	"github.com/support371/fintech-microservices-core/internal/signature"
	"github.com/support371/fintech-microservices-core/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	cfg, err := config.LoadConverter()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("service", "converter"),
		slog.String("env", cfg.Env),
	)

	// Idempotency ledger: Postgres when a DSN is configured so the dedupe
	// guarantee survives restarts and replicas, in-process otherwise.
	var idemLedger domain.IdempotencyLedger
	if cfg.DBSource != "" {
		pgStore, err := store.NewStore(cfg.DBSource)
		if err != nil {
			log.Fatalf("unable to connect to database: %v", err)
		}
		defer pgStore.Close()
		idemLedger = pgStore
		logger.Info("idempotency ledger backed by postgres")
	} else {
		idemLedger = ledger.NewMemory()
		logger.Warn("idempotency ledger is in-memory; duplicates are only suppressed within this process")
	}

	var quoter domain.RateQuoter
	if cfg.RateSource == "rapira" {
		quoter = rates.NewRapira()
		logger.Info("quoting live rates from rapira")
	} else {
		quoter = rates.NewStatic()
	}

	var executor domain.PayoutExecutor
	if cfg.PayoutBaseURL != "" {
		executor = payout.NewHTTPExecutor(cfg.PayoutBaseURL, cfg.PayoutAPIKey)
	} else {
		executor = payout.NewSandbox()
		logger.Warn("no payout API configured; running with sandbox payouts")
	}

	auditSinks := audit.Multi{audit.NewLog(logger)}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaAudit := audit.NewKafka(cfg.KafkaBrokers, "conversion-events", logger)
		defer kafkaAudit.Close()
		auditSinks = append(auditSinks, kafkaAudit)
		logger.Info("publishing audit events to kafka")
	}

	engine := service.NewEngine(quoter, executor, cfg.MaxAmount)
	handler := api.NewHandler(signature.NewVerifier(cfg.WebhookSecret), idemLedger, engine, auditSinks, logger)

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/webhook/fiat_received", handler.FiatReceivedWebhookHandler).Methods("POST")
	r.HandleFunc("/internal/transfer_funds", handler.InternalTransferHandler).Methods("POST")

	logger.Info("converter listening", slog.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
