package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/etnz/opcoes"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "opcoes",
		"user":    s.user,
	})
}

// snapshot loads the book of the served user, answering the error itself.
func (s *Server) snapshot(w http.ResponseWriter, r *http.Request) (*opcoes.Snapshot, bool) {
	snap, err := s.store.Snapshot(r.Context(), s.user)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, fmt.Errorf("cannot load book: %w", err))
		return nil, false
	}
	return snap, true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, newDashboardView(opcoes.NewDashboard(snap, s.today(), s.alertDays)))
}

func (s *Server) handlePositions(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	open := snap.OpenByExpiration()
	closed := snap.ClosedByDate()
	v := positionsView{
		Open:   make([]openView, 0, len(open)),
		Closed: make([]closedView, 0, len(closed)),
	}
	for _, p := range open {
		v.Open = append(v.Open, newOpenView(p, snap.Coverage(p)))
	}
	for _, c := range closed {
		v.Closed = append(v.Closed, newClosedView(c))
	}
	s.writeJSON(w, http.StatusOK, v)
}

// handleProfits accepts period=month|year, order=asc|desc and an optional year filter.
func (s *Server) handleProfits(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	period := opcoes.Monthly
	if p := q.Get("period"); p != "" {
		var err error
		if period, err = opcoes.ParsePeriod(p); err != nil {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
	}
	var ascending bool
	switch q.Get("order") {
	case "", "desc":
	case "asc":
		ascending = true
	default:
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("unknown order %q, want asc or desc", q.Get("order")))
		return
	}
	year := 0
	if y := q.Get("year"); y != "" {
		var err error
		if year, err = strconv.Atoi(y); err != nil || year <= 0 {
			s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid year %q", y))
			return
		}
	}

	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	bs := snap.Aggregate(period)
	if year > 0 {
		bs = bs.Within(opcoes.Yearly.Range(opcoes.NewDate(year, 1, 1)))
	}
	s.writeJSON(w, http.StatusOK, newProfitsView(bs, ascending))
}

func (s *Server) handleCollateral(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, newCollateralView(snap.Allocation()))
}

func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	progress := snap.Progress(s.today())
	v := make([]goalView, 0, len(progress))
	for _, gp := range progress {
		v = append(v, newGoalView(gp))
	}
	s.writeJSON(w, http.StatusOK, v)
}

// handlePreview values a candidate position against the current book without storing it.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var p opcoes.Position
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&p); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid position: %w", err))
		return
	}
	p = p.Normalize()
	p.ID, p.User = "", s.user
	if err := p.Validate(); err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	snap, ok := s.snapshot(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, newOpenView(p, snap.Coverage(p)))
}
