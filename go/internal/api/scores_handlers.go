package api

import (
	"net/http"

	"github.com/crownjudge/pageant/go/internal/scores"
)

func (s *Server) handleSubmitScore(w http.ResponseWriter, r *http.Request) {
	var req scores.SubmitScoreRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	judge := userFrom(r)
	score, err := s.scores.SubmitScore(r.Context(), judge.ID, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, score)
}

func (s *Server) handleMyScores(w http.ResponseWriter, r *http.Request) {
	judge := userFrom(r)
	myScores, err := s.scores.MyScores(r.Context(), judge.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, myScores)
}

func (s *Server) handleScoresByEvent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid event id")
		return
	}

	eventScores, err := s.scores.ScoresByEvent(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, eventScores)
}

func (s *Server) handleVotingStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.scores.VotingStatus(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleResetVotes(w http.ResponseWriter, r *http.Request) {
	if err := s.scores.ResetAll(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "all votes reset"})
}
