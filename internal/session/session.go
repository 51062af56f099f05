// Package session implements the typing attempt state machine.
package session

import (
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/verte-zerg/speedtype/internal/metrics"
)

// DefaultTickInterval is the live update cadence while running.
const DefaultTickInterval = 100 * time.Millisecond

// ErrInputTooLong is returned when an input buffer exceeds the target length.
var ErrInputTooLong = errors.New("input is longer than target text")

// Phase is the lifecycle stage of an attempt.
type Phase int

const (
	// PhaseIdle waits for an explicit start.
	PhaseIdle Phase = iota
	// PhaseRunning accepts input and ticks.
	PhaseRunning
	// PhaseFinished holds the frozen final metrics.
	PhaseFinished
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseRunning:
		return "running"
	case PhaseFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Options configures a Session.
type Options struct {
	TickInterval time.Duration
	Clock        Clock
}

// State is a copy of the session fields.
type State struct {
	Phase     Phase
	Target    string
	Input     string
	Errors    int
	StartedAt *time.Time
	ElapsedMs int64
}

type observerEntry struct {
	id  int
	obs Observer
}

// Session is one typing attempt against a fixed target text.
type Session struct {
	mu       sync.Mutex
	clock    Clock
	interval time.Duration

	target    string
	targetLen int

	phase     Phase
	input     string
	errors    int
	started   bool
	startedAt time.Time
	elapsedMs int64
	last      metrics.Metrics

	tick      *tickHandle
	tickers   sync.WaitGroup
	observers []observerEntry
	nextObsID int
	closed    bool
}

// New creates an idle session for target.
func New(target string, opts Options) *Session {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	return &Session{
		clock:     opts.Clock,
		interval:  opts.TickInterval,
		target:    target,
		targetLen: utf8.RuneCountInString(target),
		phase:     PhaseIdle,
		last:      metrics.Empty(),
	}
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Session) Subscribe(obs Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextObsID++
	id := s.nextObsID
	s.observers = append(s.observers, observerEntry{id: id, obs: obs})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, entry := range s.observers {
			if entry.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// Start moves an idle session with non-empty text to running.
// It reports whether the transition happened.
func (s *Session) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.phase != PhaseIdle || s.targetLen == 0 {
		return false
	}
	s.phase = PhaseRunning
	s.started = true
	s.startedAt = s.clock.Now()
	s.input = ""
	s.errors = 0
	s.elapsedMs = 0
	s.last = metrics.Empty()
	s.startTicking()
	s.publishSnapshot(s.last)
	return true
}

// Input replaces the typed buffer. It is ignored unless the session is running.
func (s *Session) Input(buffer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.phase != PhaseRunning {
		return nil
	}
	n := utf8.RuneCountInString(buffer)
	if n > s.targetLen {
		return ErrInputTooLong
	}
	s.input = buffer
	s.errors = metrics.ComputeErrorCount(buffer, s.target)
	s.elapsedMs = s.sinceStart()
	s.last = metrics.Compute(s.input, s.target, s.elapsedMs)
	s.publishSnapshot(s.last)
	if n == s.targetLen {
		s.phase = PhaseFinished
		s.stopTicking()
		s.publishFinished(s.last)
	}
	return nil
}

// Reset discards progress and returns to idle with the same target.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTicking()
	s.phase = PhaseIdle
	s.input = ""
	s.errors = 0
	s.started = false
	s.startedAt = time.Time{}
	s.elapsedMs = 0
	s.last = metrics.Empty()
}

// Close stops the tick and waits for every tick goroutine to exit. The
// session ignores further events.
func (s *Session) Close() {
	s.mu.Lock()
	s.stopTicking()
	s.closed = true
	s.mu.Unlock()
	s.tickers.Wait()
}

// Snapshot returns the latest metrics.
func (s *Session) Snapshot() metrics.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Target returns the target text.
func (s *Session) Target() string {
	return s.target
}

// State returns a copy of the session fields.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Phase:     s.phase,
		Target:    s.target,
		Input:     s.input,
		Errors:    s.errors,
		ElapsedMs: s.elapsedMs,
	}
	if s.started {
		startedAt := s.startedAt
		st.StartedAt = &startedAt
	}
	return st
}

func (s *Session) sinceStart() int64 {
	elapsed := s.clock.Now().Sub(s.startedAt).Milliseconds()
	if elapsed < 0 {
		return 0
	}
	return elapsed
}

func (s *Session) onTick(h *tickHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tick != h || s.phase != PhaseRunning {
		return
	}
	s.elapsedMs = s.sinceStart()
	s.last = metrics.Compute(s.input, s.target, s.elapsedMs)
	s.publishSnapshot(s.last)
}

func (s *Session) publishSnapshot(m metrics.Metrics) {
	for _, entry := range s.observers {
		entry.obs.SnapshotUpdated(m)
	}
}

func (s *Session) publishFinished(m metrics.Metrics) {
	for _, entry := range s.observers {
		entry.obs.SessionFinished(m)
	}
}
