package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/emotionmap/internal/dataset"
)

const (
	msgUserNotFound = "Utilisateur non trouvé"
	msgBPMNotFound  = "Données BPM non trouvées"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type authResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId"`
	Profile string `json:"profile"`
	QRCode  string `json:"qrCode"`
}

type bpmResponse struct {
	Success   bool       `json:"success"`
	UserID    string     `json:"userId"`
	Profile   string     `json:"profile"`
	BPMData   []int      `json:"bpmData"`
	Time      []int64    `json:"time"`
	Avg       []*float64 `json:"avg"`
	AvgTime   []int64    `json:"avgTime"`
	Timestamp string     `json:"timestamp"`
}

type usersResponse struct {
	Users      []dataset.SeatRef `json:"users"`
	TotalSeats int               `json:"totalSeats"`
}

type globalResponse struct {
	Success  bool      `json:"success"`
	Interval int64     `json:"interval"`
	Data     []float64 `json:"data"`
	Time     []int64   `json:"time"`
}

type summaryResponse struct {
	Success bool            `json:"success"`
	UserID  string          `json:"userId"`
	Profile string          `json:"profile"`
	Summary dataset.Summary `json:"summary"`
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("userId")
	if _, ok := s.snap.Lookup(id); !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Message: msgUserNotFound})
		return
	}
	s.writeJSON(w, http.StatusOK, authResponse{
		Success: true,
		UserID:  id,
		Profile: s.snap.SeatName(id),
		QRCode:  fmt.Sprintf("QR-%s-%d", strings.ToUpper(id), s.now().UnixMilli()),
	})
}

func (s *Server) handleBPM(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("userId")
	seat, ok := s.snap.Lookup(id)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Message: msgBPMNotFound})
		return
	}
	s.writeJSON(w, http.StatusOK, bpmResponse{
		Success:   true,
		UserID:    seat.ID,
		Profile:   seat.Profile,
		BPMData:   seat.BPM,
		Time:      seat.Time,
		Avg:       seat.Avg,
		AvgTime:   seat.AvgTime,
		Timestamp: s.now().UTC().Format(time.RFC3339Nano),
	})
}

func (s *Server) handleUsers(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, usersResponse{
		Users:      s.snap.Seats(),
		TotalSeats: s.snap.TotalSeats(),
	})
}

func (s *Server) handleGlobal(w http.ResponseWriter, _ *http.Request) {
	g := s.snap.Global()
	s.writeJSON(w, http.StatusOK, globalResponse{
		Success:  true,
		Interval: s.snap.IntervalMs(),
		Data:     g.Data,
		Time:     g.Time,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("userId")
	sum, ok := s.snap.Summary(id)
	if !ok {
		s.writeJSON(w, http.StatusNotFound, errorResponse{Message: msgBPMNotFound})
		return
	}
	s.writeJSON(w, http.StatusOK, summaryResponse{
		Success: true,
		UserID:  id,
		Profile: s.snap.SeatName(id),
		Summary: sum,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Warn("Failed to write JSON response", zap.Error(err))
	}
}
