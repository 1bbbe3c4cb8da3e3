package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"company_reviews/internal/adapters/observability"
	"company_reviews/internal/adapters/reviewsapi"
	"company_reviews/internal/domain"
	"company_reviews/internal/shared"
)

func main() {
	cfg := shared.Load()
	file := flag.String("file", "reviews.json", "JSON array of review payloads")
	flag.Parse()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	// outbound call metrics, scrapeable while the import runs
	observability.Serve(cfg.MetricsAddr, observability.InitRegistry())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("base", cfg.APIBase).
		Str("file", *file).
		Int("workers", cfg.ImportWorkers).
		Msg("importer starting")

	payloads, err := readPayloads(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("read payloads failed")
	}

	client, err := reviewsapi.New(cfg.APIBase, cfg.APIToken, cfg.ImportRPS)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize review API client")
	}

	workers := cfg.ImportWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg                sync.WaitGroup
		created, rejected atomic.Int64
		failed            atomic.Int64
	)

	for i, p := range payloads {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Warn().Err(err).Msg("import interrupted")
			break
		}

		wg.Add(1)
		go func(n int, payload map[string]any) {
			defer wg.Done()
			defer sem.Release(1)

			out, err := client.CreateReview(ctx, payload)
			var fe domain.FieldErrors
			switch {
			case err == nil:
				created.Add(1)
				log.Info().Int("item", n).Int64("id", out.ID).Msg("review created")
			case errors.As(err, &fe):
				rejected.Add(1)
				log.Warn().Int("item", n).Interface("errors", fe).Msg("review rejected")
			default:
				failed.Add(1)
				log.Warn().Int("item", n).Err(err).Msg("import failed")
			}
		}(i, p)
	}

	wg.Wait()
	log.Info().
		Int("total", len(payloads)).
		Int64("created", created.Load()).
		Int64("rejected", rejected.Load()).
		Int64("failed", failed.Load()).
		Msg("import completed")
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

func readPayloads(path string) ([]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []map[string]any
	if err := json.NewDecoder(f).Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
