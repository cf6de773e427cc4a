package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/sanspareilsmyn/emotionmap/internal/config"
	"github.com/sanspareilsmyn/emotionmap/internal/dataset"
	"github.com/sanspareilsmyn/emotionmap/internal/record"
)

var fixedNow = time.Date(2025, 6, 12, 13, 37, 15, 400_000_000, time.UTC)

func f(v float64) *float64 { return &v }

func testServer(t *testing.T, cfg config.ServerConfig) *httptest.Server {
	t.Helper()
	set, err := record.BuildSeatSet([]record.Sample{
		{SeatID: "2", BPM: 77, TimestampMs: 1000},
		{SeatID: "1", BPM: 70, TimestampMs: 1200},
		{SeatID: "2", BPM: 79, TimestampMs: 2100},
	})
	if err != nil {
		t.Fatalf("build set: %v", err)
	}
	agg := record.Aggregation{
		IntervalMs: 1000,
		PerSeat: map[string]record.WindowedSeries{
			"2": {Data: []*float64{f(77), f(79)}, Time: []int64{1000, 2000}},
			"1": {Data: []*float64{f(70), nil}, Time: []int64{1000, 2000}},
		},
		Global: record.GlobalSeries{Data: []float64{73.5, 79}, Time: []int64{1000, 2000}},
	}
	snap := dataset.New(set, agg, dataset.Options{NamePattern: "Siège %s"})

	srv, err := New(cfg, snap, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	srv.now = func() time.Time { return fixedNow }

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, wantStatus int, into any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		t.Fatalf("GET %s: status %d, want %d", url, resp.StatusCode, wantStatus)
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp
}

func TestBPMEndpoint(t *testing.T) {
	ts := testServer(t, config.ServerConfig{})

	var body map[string]any
	getJSON(t, ts.URL+"/api/bpm/1", http.StatusOK, &body)

	if body["success"] != true || body["userId"] != "1" || body["profile"] != "Siège 1" {
		t.Fatalf("unexpected identity fields: %v", body)
	}
	if got := body["bpmData"]; !reflect.DeepEqual(got, []any{70.0}) {
		t.Fatalf("bpmData = %v", got)
	}
	if got := body["avg"]; !reflect.DeepEqual(got, []any{70.0, nil}) {
		t.Fatalf("avg = %v, want gap as null", got)
	}
	if got := body["avgTime"]; !reflect.DeepEqual(got, []any{1000.0, 2000.0}) {
		t.Fatalf("avgTime = %v", got)
	}
	if body["timestamp"] != "2025-06-12T13:37:15.4Z" {
		t.Fatalf("timestamp = %v", body["timestamp"])
	}
}

func TestBPMEndpointNotFound(t *testing.T) {
	ts := testServer(t, config.ServerConfig{})

	var body errorResponse
	getJSON(t, ts.URL+"/api/bpm/42", http.StatusNotFound, &body)
	if body.Success || body.Message != msgBPMNotFound {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestAuthEndpoint(t *testing.T) {
	ts := testServer(t, config.ServerConfig{})

	var body authResponse
	getJSON(t, ts.URL+"/api/auth/2", http.StatusOK, &body)
	if want := "QR-2-1749735435400"; body.QRCode != want {
		t.Fatalf("qrCode = %q, want %q", body.QRCode, want)
	}
	if !body.Success || body.Profile != "Siège 2" {
		t.Fatalf("unexpected body %+v", body)
	}

	var missing errorResponse
	getJSON(t, ts.URL+"/api/auth/9", http.StatusNotFound, &missing)
	if missing.Message != msgUserNotFound {
		t.Fatalf("unexpected message %q", missing.Message)
	}
}

func TestUsersEndpoint(t *testing.T) {
	ts := testServer(t, config.ServerConfig{})

	var body usersResponse
	getJSON(t, ts.URL+"/api/users", http.StatusOK, &body)

	want := []dataset.SeatRef{{ID: "2", Name: "Siège 2"}, {ID: "1", Name: "Siège 1"}}
	if !reflect.DeepEqual(body.Users, want) {
		t.Fatalf("users = %v, want %v", body.Users, want)
	}
	if body.TotalSeats != 2 {
		t.Fatalf("totalSeats = %d, want 2", body.TotalSeats)
	}
}

func TestGlobalEndpoint(t *testing.T) {
	ts := testServer(t, config.ServerConfig{})

	var body globalResponse
	getJSON(t, ts.URL+"/api/global", http.StatusOK, &body)
	if body.Interval != 1000 || !reflect.DeepEqual(body.Data, []float64{73.5, 79}) || !reflect.DeepEqual(body.Time, []int64{1000, 2000}) {
		t.Fatalf("unexpected global %+v", body)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	ts := testServer(t, config.ServerConfig{})

	var body summaryResponse
	getJSON(t, ts.URL+"/api/summary/2", http.StatusOK, &body)
	if body.Summary.Count != 2 || body.Summary.Min != 77 || body.Summary.Max != 79 || body.Summary.Mean != 78 {
		t.Fatalf("unexpected summary %+v", body.Summary)
	}
}

func TestPages(t *testing.T) {
	ts := testServer(t, config.ServerConfig{})

	tests := []struct {
		path   string
		status int
		want   string
	}{
		{"/", http.StatusOK, `href="/user/2"`},
		{"/user/1", http.StatusOK, "Siège 1"},
		{"/auth/2", http.StatusOK, `const seatId = "2";`},
		{"/auth/99", http.StatusNotFound, "Identifiants valides : 1 à 2"},
	}
	for _, tt := range tests {
		resp, err := http.Get(ts.URL + tt.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tt.path, err)
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != tt.status {
			t.Fatalf("GET %s: status %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
		if !strings.Contains(string(body), tt.want) {
			t.Fatalf("GET %s: body does not contain %q", tt.path, tt.want)
		}
	}
}

func TestStaticFilesAndRequestID(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "app.css"), []byte("body{}"), 0o600); err != nil {
		t.Fatalf("write static file: %v", err)
	}
	ts := testServer(t, config.ServerConfig{StaticDir: dir})

	resp, err := http.Get(ts.URL + "/app.css")
	if err != nil {
		t.Fatalf("GET static: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("static status %d", resp.StatusCode)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatalf("expected generated request id header")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/users", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET users: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(requestIDHeader); got != "abc-123" {
		t.Fatalf("request id = %q, want propagated value", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	ts := testServer(t, config.ServerConfig{})

	if resp, err := http.Get(ts.URL + "/api/users"); err == nil {
		resp.Body.Close()
	}
	resp, err := http.Get(ts.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "emotionmap_http_requests_total") {
		t.Fatalf("metrics output missing request counter")
	}
}
