package main

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/crownjudge/pageant/go/internal/api"
	"github.com/crownjudge/pageant/go/internal/candidates"
	"github.com/crownjudge/pageant/go/internal/events"
	"github.com/crownjudge/pageant/go/internal/realtime"
	"github.com/crownjudge/pageant/go/internal/scores"
	"github.com/crownjudge/pageant/go/internal/tiebreak"
	"github.com/crownjudge/pageant/go/internal/users"
	"github.com/crownjudge/pageant/go/internal/votes"
)

type Services struct {
	Events     *events.App
	Candidates *candidates.App
	Scores     *scores.App
	Votes      *votes.App
	Users      *users.App
	Tiebreak   *tiebreak.App
	API        *api.Server
}

func setupServices(pool *pgxpool.Pool, publisher *realtime.Publisher, hub *realtime.Hub) *Services {
	// Wire up dependency injection chain
	// Database layer → Repository layer → App layer → API layer

	eventsRepo := events.NewRepository(pool)
	eventsApp := events.NewApp(eventsRepo, publisher)

	candidatesRepo := candidates.NewRepository(pool)
	candidatesApp := candidates.NewApp(candidatesRepo, publisher)

	scoresRepo := scores.NewRepository(pool)
	scoresApp := scores.NewApp(scoresRepo, eventsApp, publisher)

	votesRepo := votes.NewRepository(pool)
	votesApp := votes.NewApp(votesRepo, candidatesApp, publisher)

	usersRepo := users.NewRepository(pool)
	usersApp := users.NewApp(usersRepo)

	tiebreakRepo := tiebreak.NewRepository(pool)
	tiebreakApp := tiebreak.NewApp(tiebreakRepo, usersApp, publisher)

	apiServer := api.NewServer(eventsApp, candidatesApp, scoresApp, votesApp, usersApp, tiebreakApp, hub)

	return &Services{
		Events:     eventsApp,
		Candidates: candidatesApp,
		Scores:     scoresApp,
		Votes:      votesApp,
		Users:      usersApp,
		Tiebreak:   tiebreakApp,
		API:        apiServer,
	}
}
