package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/support371/fintech-microservices-core/internal/cards"
	"github.com/support371/fintech-microservices-core/internal/config"
	"github.com/support371/fintech-microservices-core/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	cfg, err := config.LoadCardPlatform()
	if err != nil {
		log.Fatal(err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With(
		slog.String("service", "cardplatform"),
		slog.String("env", cfg.Env),
	)

	kycStore, err := store.NewStore(cfg.DBSource)
	if err != nil {
		log.Fatalf("unable to connect to database: %v", err)
	}
	defer kycStore.Close()

	issuer, err := cards.NewSandboxIssuer(logger)
	if err != nil {
		log.Fatal(err)
	}

	converter := cards.NewConverterClient(cfg.ConverterURL, logger)
	handler := cards.NewHandler(kycStore, issuer, converter, logger)

	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.HandleFunc("/health", handler.HealthCheckHandler).Methods("GET")

	apiV1 := r.PathPrefix("/api/v1").Subrouter()
	apiV1.HandleFunc("/cards/issue", handler.IssueCardHandler).Methods("POST")
	apiV1.HandleFunc("/funds/load", handler.LoadFundsHandler).Methods("POST")

	logger.Info("card platform listening", slog.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, r); err != nil {
		log.Fatal(err)
	}
}
