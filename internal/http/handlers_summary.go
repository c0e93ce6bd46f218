package http

import (
	"net/http"

	applog "fintrack/internal/log"
)

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.svc.Summary(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	s.respond(w, http.StatusOK, sum)
}

// handleMonthlySummary returns months in the order they first appear.
func (s *Server) handleMonthlySummary(w http.ResponseWriter, r *http.Request) {
	series, err := s.svc.MonthlySeries(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	s.respond(w, http.StatusOK, series)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	totals, err := s.svc.CategoryTotals(r.Context())
	if err != nil {
		s.writeError(w, r, err, applog.OpList)
		return
	}
	s.respond(w, http.StatusOK, totals)
}
