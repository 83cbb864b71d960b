package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/crownjudge/pageant/go/clients/pageant_api_client"
	"github.com/crownjudge/pageant/go/internal/judge/push"
	"github.com/crownjudge/pageant/go/internal/judge/scoring"
	"github.com/crownjudge/pageant/go/internal/judge/tiebreaker"
	"github.com/crownjudge/pageant/go/internal/judge/ws"
)

const tiebreakerPollInterval = 60 * time.Second

func main() {
	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file")
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	apiURL := getEnv("PAGEANT_API_URL", "http://localhost:8080")
	wsURL := getEnv("PAGEANT_WS_URL", "ws://localhost:8080/ws")
	token := os.Getenv("PAGEANT_API_TOKEN")
	if token == "" {
		log.Fatal().Msg("PAGEANT_API_TOKEN environment variable is required")
	}
	judgeID, err := uuid.Parse(os.Getenv("PAGEANT_JUDGE_ID"))
	if err != nil {
		log.Fatal().Err(err).Msg("PAGEANT_JUDGE_ID must be a valid UUID")
	}

	clock := clockwork.NewRealClock()
	client := pageant_api_client.NewPageantApiClient(apiURL, token)
	controller := scoring.NewController(judgeID, client)
	guard := tiebreaker.NewGuard(client, clock)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := hydrate(ctx, client, controller); err != nil {
		log.Fatal().Err(err).Msg("failed to hydrate score store")
	}

	dispatcher := setupDispatcher(controller, guard)
	wsClient := ws.NewClient(ws.DefaultConfig(wsURL, token, judgeID), dispatcher, clock)

	go func() {
		if err := wsClient.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("push channel stopped")
		}
	}()
	go pollTiebreaker(ctx, clock, client, guard)

	log.Info().
		Str("judge_id", judgeID.String()).
		Str("api_url", apiURL).
		Msg("judge console running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan

	log.Info().Str("signal", sig.String()).Msg("shutting down judge console")
	cancel()
	wsClient.Close()
}

// hydrate pulls the three roster fetches and rebuilds the score store
func hydrate(ctx context.Context, client *pageant_api_client.PageantApiClient, controller *scoring.Controller) error {
	events, err := client.Events(ctx)
	if err != nil {
		return fmt.Errorf("fetch events: %w", err)
	}
	candidates, err := client.Candidates(ctx)
	if err != nil {
		return fmt.Errorf("fetch candidates: %w", err)
	}
	myScores, err := client.MyScores(ctx)
	if err != nil {
		return fmt.Errorf("fetch my scores: %w", err)
	}

	controller.Hydrate(events, candidates, myScores)
	return nil
}

func setupDispatcher(controller *scoring.Controller, guard *tiebreaker.Guard) *push.Dispatcher {
	dispatcher := push.NewDispatcher()

	dispatcher.Handle(push.TypeEventUpdated, func(data json.RawMessage) error {
		var payload push.EventUpdatedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("decode event update: %w", err)
		}
		controller.OnEventUpdated(payload.Event)
		return nil
	})

	dispatcher.Handle(push.TypeTiebreakerActivated, func(data json.RawMessage) error {
		var payload push.TiebreakerActivatedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("decode tiebreaker activation: %w", err)
		}
		guard.OnActivated(payload.Tiebreaker)
		return nil
	})

	dispatcher.Handle(push.TypeTiebreakerCompleted, func(data json.RawMessage) error {
		var payload push.TiebreakerCompletedPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("decode tiebreaker completion: %w", err)
		}
		id, err := uuid.Parse(payload.TiebreakerID)
		if err != nil {
			return fmt.Errorf("parse tiebreaker id: %w", err)
		}
		guard.OnCompleted(id)
		return nil
	})

	dispatcher.Handle(push.TypeTiebreakerCleared, func(data json.RawMessage) error {
		guard.OnCleared()
		return nil
	})

	dispatcher.Handle(push.TypeSystemNotification, func(data json.RawMessage) error {
		var payload push.SystemNotificationPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("decode system notification: %w", err)
		}
		log.Info().Str("level", payload.Level).Msg(payload.Message)
		return nil
	})

	return dispatcher
}

// pollTiebreaker is the fallback path for tie-breaker discovery when the
// push channel is down or a notification was missed.
func pollTiebreaker(ctx context.Context, clock clockwork.Clock, client *pageant_api_client.PageantApiClient, guard *tiebreaker.Guard) {
	ticker := clock.NewTicker(tiebreakerPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			resp, err := client.CurrentTiebreaker(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("tiebreaker poll failed")
				continue
			}
			guard.Observe(resp.Tiebreaker, resp.HasActiveTiebreaker)
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
