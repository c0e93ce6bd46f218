package http

import (
	"net/http"

	applog "fintrack/internal/log"
)

func (s *Server) handleGetBudgets(w http.ResponseWriter, r *http.Request) {
	b, err := s.svc.Budgets(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	s.respond(w, http.StatusOK, b)
}

// handleUpdateBudgets merges a partial budget. A missing or non-object body
// is rejected before anything is written.
func (s *Server) handleUpdateBudgets(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if p.err != nil {
		s.writeError(w, r, p.err, applog.OpUpdate)
		return
	}

	patch, err := parseBudgetPatch(p.body)
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}

	b, err := s.svc.UpdateBudgets(r.Context(), patch)
	if err != nil {
		s.writeError(w, r, err, applog.OpUpdate)
		return
	}
	s.respond(w, http.StatusOK, b)
}

func (s *Server) handleBudgetComparison(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.svc.BudgetComparison(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	s.respond(w, http.StatusOK, cmp)
}
