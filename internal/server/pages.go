package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/emotionmap/internal/dataset"
)

type pageData struct {
	SeatID     string
	Profile    string
	TotalSeats int
	Seats      []dataset.SeatRef
	IntervalMs int64
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, "index.html", pageData{
		TotalSeats: s.snap.TotalSeats(),
		Seats:      s.snap.Seats(),
		IntervalMs: s.snap.IntervalMs(),
	})
}

// handleSeatPage serves the chart page for /auth/{userId} and /user/{userId}.
func (s *Server) handleSeatPage(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("userId")
	data := pageData{
		SeatID:     id,
		TotalSeats: s.snap.TotalSeats(),
		IntervalMs: s.snap.IntervalMs(),
	}

	if _, ok := s.snap.Lookup(id); !ok {
		s.renderPage(w, http.StatusNotFound, "notfound.html", data)
		return
	}
	data.Profile = s.snap.SeatName(id)
	s.renderPage(w, http.StatusOK, "seat.html", data)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("Failed to render page", zap.String("template", name), zap.Error(err))
	}
}
