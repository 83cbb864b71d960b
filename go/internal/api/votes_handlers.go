package api

import (
	"net"
	"net/http"

	"github.com/crownjudge/pageant/go/internal/votes"
)

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var req votes.CastVoteRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	vote, err := s.votes.CastVote(r.Context(), req, clientIP(r))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, vote)
}

func (s *Server) handleVoteCounts(w http.ResponseWriter, r *http.Request) {
	counts, err := s.votes.VoteCounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return forwarded
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
