package metrics

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/shiftplan/core/metrics"
)

// captureServer records the body of every write request.
func captureServer(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var mu sync.Mutex
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, strings.TrimSpace(string(b)))
		mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), bodies...)
	}
}

func TestInfluxSink_RecordExtraction(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL, Token: "token", Org: "org", Bucket: "bucket"})
	now := time.Now()
	ev := coremetrics.ExtractionEvent{
		Document: "route.txt",
		Contract: "031L0",
		Layout:   "free_text",
		Pages:    2,
		Trips:    3,
		Stops:    7,
		Duration: 1500 * time.Microsecond,
		Time:     now,
	}
	if err := sink.RecordExtraction(ev); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("extraction_run").
		AddTag("document", "route.txt").
		AddTag("layout", "free_text").
		AddTag("outcome", "ok").
		AddTag("contract", "031L0").
		AddField("pages", 2).
		AddField("trips", 3).
		AddField("stops", 7).
		AddField("duration_ms", 1.5).
		SetTime(now)
	exp := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if got := bodies(); len(got) != 1 || got[0] != exp {
		t.Errorf("unexpected bodies: %#v", got)
	}
}

func TestInfluxSink_RecordPackAndSolve(t *testing.T) {
	srv, bodies := captureServer(t)
	sink := NewInfluxSink(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "token", Org: "org", Bucket: "bucket"})
	now := time.Now()
	if err := sink.RecordPack(coremetrics.PackEvent{Contract: "031L0", Stops: 6, Shifts: 2, TotalHours: 22, Time: now}); err != nil {
		t.Fatalf("pack: %v", err)
	}
	if err := sink.RecordSolve(coremetrics.SolveEvent{Status: "optimal", Trips: 5, Drivers: 2, Shifts: 2, Nodes: 9, Objective: 20, Duration: time.Millisecond, Time: now}); err != nil {
		t.Fatalf("solve: %v", err)
	}
	pack := write.NewPointWithMeasurement("pack_run").
		AddTag("contract", "031L0").
		AddField("stops", 6).
		AddField("shifts", 2).
		AddField("under_min", 0).
		AddField("over_max", 0).
		AddField("total_hours", 22.0).
		SetTime(now)
	solve := write.NewPointWithMeasurement("solve_run").
		AddTag("status", "optimal").
		AddField("trips", 5).
		AddField("drivers", 2).
		AddField("shifts", 2).
		AddField("nodes", 9).
		AddField("objective_hours", 20.0).
		AddField("duration_ms", 1.0).
		SetTime(now)
	got := bodies()
	if len(got) != 2 {
		t.Fatalf("expected 2 writes, got %d", len(got))
	}
	if got[0] != strings.TrimSpace(write.PointToLineProtocol(pack, time.Nanosecond)) {
		t.Errorf("pack body: %s", got[0])
	}
	if got[1] != strings.TrimSpace(write.PointToLineProtocol(solve, time.Nanosecond)) {
		t.Errorf("solve body: %s", got[1])
	}
	if err := sink.Flush(context.Background()); err != nil {
		t.Fatalf("flush: %v", err)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(InfluxConfig{URL: srv.URL + "/api/v2/write", Token: "tok", Org: "org", Bucket: "bucket"})
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
