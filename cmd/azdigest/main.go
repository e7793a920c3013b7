package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"azdigest/internal/config"
	"azdigest/internal/dedup"
	"azdigest/internal/digest"
	"azdigest/internal/feed"
	"azdigest/internal/logger"
	"azdigest/internal/metrics"
	"azdigest/internal/retry"
	"azdigest/internal/scraper"
	"azdigest/internal/translate"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("config invalid", "error", err)
		os.Exit(1)
	}

	// A broken store must not stop digests; novelty checks just degrade.
	store, err := dedup.Open(cfg.PostgresDSN, cfg.DedupFilePath)
	if err != nil {
		logger.Warn("dedup store unavailable, continuing without persistence", "error", err)
		store = nil
	}
	if store != nil {
		defer store.Close()
	}

	fetcher := feed.NewFetcher(
		&http.Client{Timeout: cfg.FeedTimeout},
		retry.Config{MaxAttempts: cfg.FeedRetryCount, BaseDelay: cfg.FeedRetryBackoff},
	)
	scr := scraper.New(&http.Client{Timeout: cfg.ScrapeTimeout})
	translator := translate.New(translate.Options{
		Endpoint:     cfg.AOAIEndpoint,
		Deployment:   cfg.AOAIDeployment,
		APIVersion:   cfg.AOAIAPIVersion,
		APIKey:       cfg.AOAIAPIKey,
		GeminiAPIKey: cfg.GeminiAPIKey,
		BulletCount:  cfg.BulletCount,
		Timeout:      cfg.EnrichTimeout,
	})

	asm := digest.NewAssembler(fetcher, scr, store, translator, cfg.BulletCount)

	if os.Getenv("RUN_ONCE") == "true" {
		if err := runOnce(asm, cfg); err != nil {
			logger.Error("one-shot digest failed", "error", err)
			os.Exit(1)
		}
		return
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /digest", digestHandler(asm, cfg))
	mux.HandleFunc("GET /health", healthHandler)
	mux.HandleFunc("GET /metrics", metricsHandler)

	logger.Info("starting digest server", "port", cfg.Port, "enrichment_configured", translator.Configured())
	if err := http.ListenAndServe(":"+cfg.Port, mux); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// runOnce builds a single digest from the YAML feed list and writes the
// result JSON to stdout. Meant for cron-style invocation.
func runOnce(asm *digest.Assembler, cfg *config.Config) error {
	sources, err := config.LoadSources(cfg.FeedsConfigPath)
	if err != nil {
		return err
	}

	res, err := asm.Run(context.Background(), digest.Request{
		FeedSources:        sources,
		RecencyWindowHours: cfg.RecencyWindowHours,
		MaxItems:           cfg.MaxItems,
		LookbackDays:       cfg.LookbackDays,
	})
	if err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

func digestHandler(asm *digest.Assembler, cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req digest.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		if req.RecencyWindowHours <= 0 {
			req.RecencyWindowHours = cfg.RecencyWindowHours
		}
		if req.MaxItems <= 0 {
			req.MaxItems = cfg.MaxItems
		}
		if req.LookbackDays <= 0 {
			req.LookbackDays = cfg.LookbackDays
		}

		res, err := asm.Run(r.Context(), req)
		if err != nil {
			if errors.Is(err, digest.ErrNoFeeds) {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
				return
			}
			metrics.Global.SetError(err.Error())
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	code := http.StatusOK
	if !stats["is_healthy"].(bool) {
		status = "error"
		code = http.StatusServiceUnavailable
	}

	writeJSON(w, code, map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	})
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, metrics.Global.GetStats())
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.Encode(v)
}
