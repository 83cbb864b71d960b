package api

import (
	"net/http"

	"github.com/crownjudge/pageant/go/internal/models"
	"github.com/crownjudge/pageant/go/internal/tiebreak"
)

func (s *Server) handleCurrentTiebreaker(w http.ResponseWriter, r *http.Request) {
	judge := userFrom(r)
	session, err := s.tiebreak.CurrentForJudge(r.Context(), judge.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"hasActiveTiebreaker": session != nil,
		"tiebreaker":          session,
	})
}

func (s *Server) handleTiebreakerVote(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TiebreakerVotes []models.TieBreakerVote `json:"tiebreakerVotes"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	judge := userFrom(r)
	result, err := s.tiebreak.SubmitVotes(r.Context(), judge.ID, req.TiebreakerVotes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleActivateTiebreaker(w http.ResponseWriter, r *http.Request) {
	var req tiebreak.ActivateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	admin := userFrom(r)
	session, err := s.tiebreak.Activate(r.Context(), req, admin.FullName)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleClearTiebreakers(w http.ResponseWriter, r *http.Request) {
	if err := s.tiebreak.ClearAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "tiebreakers cleared"})
}

func (s *Server) handleDetectTies(w http.ResponseWriter, r *http.Request) {
	groups, err := s.tiebreak.DetectTies(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, groups)
}
