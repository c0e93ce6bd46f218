package http

import (
	"net/http"

	"github.com/gorilla/mux"

	applog "fintrack/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := s.svc.ListTransactions(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	s.respond(w, http.StatusOK, txs)
}

// handleCreateTransaction accepts JSON or form bodies.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}

	tx, err := s.svc.CreateTransaction(r.Context(), p.transactionInput())
	if err != nil {
		s.writeError(w, r, err, applog.OpCreate)
		return
	}
	s.recordCreated()
	s.respond(w, http.StatusCreated, tx)
}

// handleRecentTransactions returns the newest transactions, ?limit= or the
// configured default.
func (s *Server) handleRecentTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query(), maxRecentLimit)
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}

	txs, err := s.svc.RecentTransactions(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	s.respond(w, http.StatusOK, txs)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.svc.DeleteTransaction(r.Context(), id); err != nil {
		s.writeError(w, r, err, applog.OpDelete)
		return
	}
	s.respond(w, http.StatusOK, map[string]bool{"success": true})
}
