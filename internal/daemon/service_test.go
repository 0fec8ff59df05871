package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/bplan/internal/api"
	"github.com/theirongolddev/bplan/internal/clock"
)

type fakeSource struct {
	mu      sync.Mutex
	budgets []api.Budget
	rows    map[string][]api.CategorySummaryRow
	err     error
}

func (f *fakeSource) ListBudgets(context.Context) ([]api.Budget, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]api.Budget(nil), f.budgets...), nil
}

func (f *fakeSource) CategorySummary(_ context.Context, id string) ([]api.CategorySummaryRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id], nil
}

func newTestService(src Source) (*Service, *clock.Fake) {
	c := clock.NewFake(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	return New(Config{Interval: 10 * time.Second, EventsBuffer: 10}, src, c, nil), c
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Budgets: 2, Planned: 1000, Actual: 400, OverBudget: 0, ids: []string{"a", "b"}}
	curr := Snapshot{Budgets: 2, Planned: 1200, Actual: 1300.5, OverBudget: 1, ids: []string{"b", "c"}}

	delta := diffSnapshots(prev, curr)
	if delta.Budgets != 0 {
		t.Fatalf("Budgets delta = %d, want 0", delta.Budgets)
	}
	if math.Abs(delta.Planned-200) > 1e-9 || math.Abs(delta.Actual-900.5) > 1e-9 {
		t.Fatalf("amount delta = %+v", delta)
	}
	if delta.OverBudget != 1 {
		t.Fatalf("OverBudget delta = %d, want 1", delta.OverBudget)
	}
	if len(delta.Added) != 1 || delta.Added[0] != "c" || len(delta.Removed) != 1 || delta.Removed[0] != "a" {
		t.Fatalf("added %v removed %v", delta.Added, delta.Removed)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots produced a delta")
	}
}

func TestPublishEventRingBuffer(t *testing.T) {
	s, _ := newTestService(&fakeSource{})
	s.cfg.EventsBuffer = 2

	s.publish(Event{ID: 1})
	s.publish(Event{ID: 2})
	s.publish(Event{ID: 3})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollEmitsSnapshotThenDeltas(t *testing.T) {
	src := &fakeSource{
		budgets: []api.Budget{{ID: "b-1", Status: "approved"}, {ID: "b-2", Status: "draft"}},
		rows: map[string][]api.CategorySummaryRow{
			"b-1": {{Category: "Ads", Planned: 100, Actual: 150}},
			"b-2": {{Category: "Ops", Planned: 300, Actual: 10}},
		},
	}
	s, c := newTestService(src)
	ctx := context.Background()

	s.pollOnce(ctx)
	st := s.status()
	if st.Summary.Budgets != 2 || st.Summary.Approved != 1 || st.Summary.Draft != 1 {
		t.Fatalf("summary = %+v", st.Summary)
	}
	if st.Summary.Planned != 400 || st.Summary.Actual != 160 || st.Summary.Variance != -240 || st.Summary.OverBudget != 1 {
		t.Fatalf("totals = %+v", st.Summary)
	}

	// Nothing changed: no new event.
	c.Advance(10 * time.Second)
	s.pollOnce(ctx)
	if n := s.status().EventCount; n != 1 {
		t.Fatalf("events = %d, want 1", n)
	}

	src.mu.Lock()
	src.budgets = src.budgets[:1]
	src.mu.Unlock()
	s.pollOnce(ctx)

	s.mu.RLock()
	last := s.events[len(s.events)-1]
	s.mu.RUnlock()
	if last.Type != "budget_delta" || last.Delta.Budgets != -1 || len(last.Delta.Removed) != 1 || last.Delta.Removed[0] != "b-2" {
		t.Fatalf("last event = %+v", last)
	}
	if s.status().PollCount != 3 {
		t.Fatalf("poll count = %d", s.status().PollCount)
	}
}

func TestPollErrorKeepsSnapshot(t *testing.T) {
	src := &fakeSource{budgets: []api.Budget{{ID: "b-1", Status: "draft"}}}
	s, _ := newTestService(src)
	s.pollOnce(context.Background())

	src.mu.Lock()
	src.err = errors.New("Failed to fetch budgets")
	src.mu.Unlock()
	s.pollOnce(context.Background())

	st := s.status()
	if st.LastError != "Failed to fetch budgets" {
		t.Fatalf("last error = %q", st.LastError)
	}
	if st.Summary.Budgets != 1 {
		t.Fatalf("snapshot lost: %+v", st.Summary)
	}
}

func TestStatusFilter(t *testing.T) {
	src := &fakeSource{budgets: []api.Budget{{ID: "b-1", Status: "approved"}, {ID: "b-2", Status: "draft"}}}
	s, _ := newTestService(src)
	s.cfg.StatusFilter = "approved"
	s.pollOnce(context.Background())
	if got := s.status().Summary; got.Budgets != 1 || got.Draft != 0 {
		t.Fatalf("summary = %+v", got)
	}
}

func TestStatusEndpoint(t *testing.T) {
	src := &fakeSource{budgets: []api.Budget{{ID: "b-1", Status: "closed"}}}
	s, _ := newTestService(src)
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var st Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		t.Fatal(err)
	}
	if st.Summary.Closed != 1 || st.PollCount != 1 || st.PollIntervalSec != 10 {
		t.Fatalf("status = %+v", st)
	}

	resp2, err := http.Get(srv.URL + "/v1/events")
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	var events []Event
	if err := json.NewDecoder(resp2.Body).Decode(&events); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Type != "snapshot" {
		t.Fatalf("events = %+v", events)
	}
}

func TestEventsSince(t *testing.T) {
	s, _ := newTestService(&fakeSource{})
	for id := int64(1); id <= 4; id++ {
		s.publish(Event{ID: id, Type: "budget_delta"})
	}

	got := s.eventsAfter(2)
	if len(got) != 2 || got[0].ID != 3 || got[1].ID != 4 {
		t.Fatalf("eventsAfter(2) = %+v", got)
	}
	if got := s.eventsAfter(4); len(got) != 0 {
		t.Fatalf("eventsAfter(4) = %+v", got)
	}

	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/v1/events?since=3")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var events []Event
	if err := json.NewDecoder(resp.Body).Decode(&events); err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].ID != 4 {
		t.Fatalf("events = %+v", events)
	}

	bad, err := http.Get(srv.URL + "/v1/events?since=x")
	if err != nil {
		t.Fatal(err)
	}
	bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", bad.StatusCode)
	}
}

func TestWriteSSE(t *testing.T) {
	var b strings.Builder
	writeSSE(&b, Event{ID: 7, Type: "budget_delta"})
	out := b.String()
	if !strings.HasPrefix(out, "id: 7\nevent: budget_delta\ndata: {") || !strings.HasSuffix(out, "}\n\n") {
		t.Fatalf("sse frame = %q", out)
	}

	b.Reset()
	writeSSE(&b, Event{Type: "snapshot"})
	if strings.Contains(b.String(), "id:") {
		t.Fatalf("unnumbered event got an id: %q", b.String())
	}
}

// lockedBuffer is a strings.Builder safe for one writer and a polling reader.
type lockedBuffer struct {
	mu sync.Mutex
	b  strings.Builder
}

func (l *lockedBuffer) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.Write(p)
}

func (l *lockedBuffer) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.b.String()
}

func TestStreamSkipsReplayedEvents(t *testing.T) {
	s, _ := newTestService(&fakeSource{})
	ch, unsubscribe := s.subscribe()
	defer unsubscribe()

	// Published after subscribing, so each lands in both the ring and ch.
	for id := int64(1); id <= 3; id++ {
		s.publish(Event{ID: id, Type: "budget_delta"})
	}

	ctx, cancel := context.WithCancel(context.Background())
	var out lockedBuffer
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.stream(ctx, &out, func() {}, ch, 1)
	}()
	s.publish(Event{ID: 4, Type: "budget_delta"})

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "id: 4\n") {
		if time.Now().After(deadline) {
			cancel()
			<-done
			t.Fatalf("event 4 never streamed: %q", out.String())
		}
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	got := out.String()
	if strings.Contains(got, "id: 1\n") {
		t.Errorf("event 1 resent after Last-Event-ID 1: %q", got)
	}
	for _, id := range []string{"2", "3", "4"} {
		if n := strings.Count(got, "id: "+id+"\n"); n != 1 {
			t.Errorf("event %s written %d times, want 1: %q", id, n, got)
		}
	}
}
