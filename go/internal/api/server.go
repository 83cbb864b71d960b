package api

import (
	"net/http"

	"github.com/crownjudge/pageant/go/internal/candidates"
	"github.com/crownjudge/pageant/go/internal/events"
	"github.com/crownjudge/pageant/go/internal/realtime"
	"github.com/crownjudge/pageant/go/internal/scores"
	"github.com/crownjudge/pageant/go/internal/tiebreak"
	"github.com/crownjudge/pageant/go/internal/users"
	"github.com/crownjudge/pageant/go/internal/votes"
)

// Server exposes the pageant REST API and the WebSocket entrypoint
type Server struct {
	events     *events.App
	candidates *candidates.App
	scores     *scores.App
	votes      *votes.App
	users      *users.App
	tiebreak   *tiebreak.App
	hub        *realtime.Hub
}

// NewServer creates a new API server
func NewServer(
	eventsApp *events.App,
	candidatesApp *candidates.App,
	scoresApp *scores.App,
	votesApp *votes.App,
	usersApp *users.App,
	tiebreakApp *tiebreak.App,
	hub *realtime.Hub,
) *Server {
	return &Server{
		events:     eventsApp,
		candidates: candidatesApp,
		scores:     scoresApp,
		votes:      votesApp,
		users:      usersApp,
		tiebreak:   tiebreakApp,
		hub:        hub,
	}
}

// Routes registers all API routes on a fresh mux
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Events
	mux.HandleFunc("GET /api/events", s.withAuth(s.handleListEvents))
	mux.HandleFunc("POST /api/events", s.withAuth(s.handleCreateEvent, adminRoles...))
	mux.HandleFunc("GET /api/events/{id}", s.withAuth(s.handleGetEvent))
	mux.HandleFunc("PUT /api/events/{id}", s.withAuth(s.handleUpdateEvent, adminRoles...))
	mux.HandleFunc("DELETE /api/events/{id}", s.withAuth(s.handleDeleteEvent, adminRoles...))
	mux.HandleFunc("POST /api/events/{id}/active", s.withAuth(s.handleSetEventActive, adminRoles...))
	mux.HandleFunc("GET /api/events/{id}/results", s.withAuth(s.handleEventResults))

	// Candidates
	mux.HandleFunc("GET /api/candidates", s.withAuth(s.handleListCandidates))
	mux.HandleFunc("POST /api/candidates", s.withAuth(s.handleCreateCandidate, adminRoles...))
	mux.HandleFunc("GET /api/candidates/{id}", s.withAuth(s.handleGetCandidate))
	mux.HandleFunc("PUT /api/candidates/{id}", s.withAuth(s.handleUpdateCandidate, adminRoles...))
	mux.HandleFunc("DELETE /api/candidates/{id}", s.withAuth(s.handleDeleteCandidate, adminRoles...))

	// Judge scores
	mux.HandleFunc("POST /api/scores", s.withAuth(s.handleSubmitScore, judgeOnly...))
	mux.HandleFunc("GET /api/scores/my-scores", s.withAuth(s.handleMyScores, judgeOnly...))
	mux.HandleFunc("GET /api/scores/event/{id}", s.withAuth(s.handleScoresByEvent, staffRoles...))
	mux.HandleFunc("GET /api/judges/voting-status", s.withAuth(s.handleVotingStatus, staffRoles...))
	mux.HandleFunc("DELETE /api/admin/reset-votes", s.withAuth(s.handleResetVotes, superadminOnly...))

	// Public votes
	mux.HandleFunc("POST /api/votes", s.handleCastVote)
	mux.HandleFunc("GET /api/votes", s.handleVoteCounts)

	// Tie-breakers
	mux.HandleFunc("GET /api/judge/tiebreaker/current", s.withAuth(s.handleCurrentTiebreaker, judgeOnly...))
	mux.HandleFunc("POST /api/judge/tiebreaker/vote", s.withAuth(s.handleTiebreakerVote, judgeOnly...))
	mux.HandleFunc("POST /api/admin/tiebreaker/activate", s.withAuth(s.handleActivateTiebreaker, adminRoles...))
	mux.HandleFunc("DELETE /api/admin/tiebreaker", s.withAuth(s.handleClearTiebreakers, adminRoles...))
	mux.HandleFunc("GET /api/admin/tiebreaker/ties", s.withAuth(s.handleDetectTies, adminRoles...))

	// Users
	mux.HandleFunc("GET /api/users", s.withAuth(s.handleListUsers, superadminOnly...))
	mux.HandleFunc("POST /api/users", s.withAuth(s.handleCreateUser, superadminOnly...))
	mux.HandleFunc("PUT /api/users/{id}", s.withAuth(s.handleUpdateUser, superadminOnly...))
	mux.HandleFunc("DELETE /api/users/{id}", s.withAuth(s.handleDeleteUser, superadminOnly...))
	mux.HandleFunc("GET /api/users/me", s.withAuth(s.handleCurrentUser))

	// Realtime
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return mux
}
