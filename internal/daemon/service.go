// Package daemon provides the long-running budget monitor service.
package daemon

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/theirongolddev/bplan/internal/api"
	"github.com/theirongolddev/bplan/internal/clock"
)

// Source is the part of the budget API the monitor polls.
type Source interface {
	ListBudgets(ctx context.Context) ([]api.Budget, error)
	CategorySummary(ctx context.Context, budgetID string) ([]api.CategorySummaryRow, error)
}

// Config controls the daemon runtime behavior.
type Config struct {
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	// StatusFilter limits the totals to budgets with this status.
	StatusFilter string
	Timeout      time.Duration // per poll
}

// Snapshot is a compact budget state for status/event payloads.
type Snapshot struct {
	At         time.Time `json:"at"`
	Budgets    int       `json:"budgets"`
	Draft      int       `json:"draft"`
	Approved   int       `json:"approved"`
	Closed     int       `json:"closed"`
	Planned    float64   `json:"planned"`
	Actual     float64   `json:"actual"`
	Variance   float64   `json:"variance"`
	OverBudget int       `json:"over_budget"`

	ids []string
}

// Delta captures snapshot deltas between polls.
type Delta struct {
	Budgets    int      `json:"budgets"`
	Planned    float64  `json:"planned"`
	Actual     float64  `json:"actual"`
	OverBudget int      `json:"over_budget"`
	Added      []string `json:"added,omitempty"`
	Removed    []string `json:"removed,omitempty"`
}

func (d Delta) isZero() bool {
	return d.Budgets == 0 &&
		d.Planned == 0 &&
		d.Actual == 0 &&
		d.OverBudget == 0 &&
		len(d.Added) == 0 &&
		len(d.Removed) == 0
}

// Event is emitted whenever the snapshot changes.
type Event struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Snapshot  Snapshot  `json:"snapshot"`
	Delta     Delta     `json:"delta"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	StatusFilter    string    `json:"status_filter,omitempty"`
	Summary         Snapshot  `json:"summary"`
	LastError       string    `json:"last_error,omitempty"`
	EventCount      int       `json:"event_count"`
	SubscriberCount int       `json:"subscriber_count"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg   Config
	src   Source
	clock clock.Clock
	log   *slog.Logger

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a new daemon service polling src.
func New(cfg Config, src Source, c clock.Clock, log *slog.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = 30 * time.Second
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		cfg:       cfg,
		src:       src,
		clock:     c,
		log:       log,
		startedAt: c.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Handler returns the HTTP API.
func (s *Service) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/v1/status", s.handleStatus)
	mux.HandleFunc("/v1/events", s.handleEvents)
	mux.HandleFunc("/v1/stream", s.handleStream)
	return mux
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.log.Info("daemon listening", "addr", s.cfg.Addr, "interval", s.cfg.Interval)

	// Seed initial snapshot so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	snap, err := s.collect(ctx)
	now := s.clock.Now()
	if err != nil {
		s.mu.Lock()
		s.lastError = err.Error()
		s.lastPollAt = now
		s.pollCount++
		s.mu.Unlock()
		s.log.Warn("daemon poll failed", "err", err)
		return
	}
	snap.At = now

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""

	if !prevExists {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "snapshot",
			Timestamp: now,
			Snapshot:  snap,
		}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		s.nextEventID++
		ev = Event{
			ID:        s.nextEventID,
			Type:      "budget_delta",
			Timestamp: now,
			Snapshot:  snap,
			Delta:     delta,
		}
		publish = true
	}
	s.mu.Unlock()

	if publish {
		s.log.Debug("daemon event", "type", ev.Type, "id", ev.ID)
		s.publish(ev)
	}
}

// collect lists budgets and sums their category summaries.
func (s *Service) collect(ctx context.Context) (Snapshot, error) {
	budgets, err := s.src.ListBudgets(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	var snap Snapshot
	for _, b := range budgets {
		if s.cfg.StatusFilter != "" && b.Status != s.cfg.StatusFilter {
			continue
		}
		snap.Budgets++
		snap.ids = append(snap.ids, b.ID)
		switch b.Status {
		case "draft":
			snap.Draft++
		case "approved":
			snap.Approved++
		case "closed":
			snap.Closed++
		}

		rows, err := s.src.CategorySummary(ctx, b.ID)
		if err != nil {
			return Snapshot{}, fmt.Errorf("budget %s: %w", b.ID, err)
		}
		var planned, actual float64
		for _, r := range rows {
			planned += r.Planned
			actual += r.Actual
		}
		snap.Planned += planned
		snap.Actual += actual
		if actual > planned {
			snap.OverBudget++
		}
	}
	snap.Variance = snap.Actual - snap.Planned
	slices.Sort(snap.ids)
	return snap, nil
}

func diffSnapshots(prev, curr Snapshot) Delta {
	d := Delta{
		Budgets:    curr.Budgets - prev.Budgets,
		Planned:    curr.Planned - prev.Planned,
		Actual:     curr.Actual - prev.Actual,
		OverBudget: curr.OverBudget - prev.OverBudget,
	}
	for _, id := range curr.ids {
		if _, found := slices.BinarySearch(prev.ids, id); !found {
			d.Added = append(d.Added, id)
		}
	}
	for _, id := range prev.ids {
		if _, found := slices.BinarySearch(curr.ids, id); !found {
			d.Removed = append(d.Removed, id)
		}
	}
	return d
}

// publish appends ev to the ring and fans it out. Slow subscribers miss
// events rather than block polling.
func (s *Service) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = append(s.events, ev)
	if over := len(s.events) - s.cfg.EventsBuffer; over > 0 {
		s.events = slices.Delete(s.events, 0, over)
	}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// eventsAfter returns buffered events with an ID greater than id.
func (s *Service) eventsAfter(id int64) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, _ := slices.BinarySearchFunc(s.events, id+1, func(e Event, target int64) int {
		return cmp.Compare(e.ID, target)
	})
	return slices.Clone(s.events[i:])
}

func (s *Service) status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		StatusFilter:    s.cfg.StatusFilter,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.status())
}

// handleEvents lists buffered events, optionally only those after ?since=ID.
func (s *Service) handleEvents(w http.ResponseWriter, r *http.Request) {
	since, err := parseEventID(r.URL.Query().Get("since"))
	if err != nil {
		http.Error(w, "since: "+err.Error(), http.StatusBadRequest)
		return
	}
	events := s.eventsAfter(since)
	if events == nil {
		events = []Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(events)
}

// handleStream serves events as SSE. A reconnecting client that sends
// Last-Event-ID gets the buffered events it missed; a new client gets
// the current snapshot.
func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	lastID, err := parseEventID(r.Header.Get("Last-Event-ID"))
	if err != nil {
		http.Error(w, "Last-Event-ID: "+err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, unsubscribe := s.subscribe()
	defer unsubscribe()

	s.stream(r.Context(), w, flusher.Flush, ch, lastID)
}

// stream replays buffered events after lastID (or a snapshot when lastID
// is zero), then forwards ch until ctx ends. Events already replayed are
// skipped when they also arrive on ch.
func (s *Service) stream(ctx context.Context, w io.Writer, flush func(), ch <-chan Event, lastID int64) {
	replayed := lastID
	if lastID > 0 {
		for _, ev := range s.eventsAfter(lastID) {
			writeSSE(w, ev)
			replayed = ev.ID
		}
	} else {
		writeSSE(w, Event{Type: "snapshot", Timestamp: s.clock.Now(), Snapshot: s.status().Summary})
	}
	flush()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			if ev.ID > 0 && ev.ID <= replayed {
				continue
			}
			writeSSE(w, ev)
			flush()
		}
	}
}

func parseEventID(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 0 {
		return 0, fmt.Errorf("want a non-negative event id, got %q", s)
	}
	return id, nil
}

func writeSSE(w io.Writer, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
}

func (s *Service) subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}
