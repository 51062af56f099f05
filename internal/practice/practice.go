// Package practice drives one user's sequence of typing sessions.
package practice

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/verte-zerg/speedtype/internal/metrics"
	"github.com/verte-zerg/speedtype/internal/model"
	"github.com/verte-zerg/speedtype/internal/recorder"
	"github.com/verte-zerg/speedtype/internal/session"
	"github.com/verte-zerg/speedtype/internal/textsource"
)

const recordTimeout = 10 * time.Second

// ErrNoText is returned when input arrives before any text was loaded.
var ErrNoText = errors.New("no text loaded")

// Options configures a Controller.
type Options struct {
	Username string
	Session  session.Options
	// OnRecorded receives the outcome of each finished session, tagged with the
	// attempt number Attempts reported when it finished. It runs on its own goroutine.
	OnRecorded func(attempt int64, out recorder.Outcome, err error)
}

// Controller owns the current session, loads new text and records finished attempts.
type Controller struct {
	source   textsource.Source
	recorder *recorder.Recorder
	opts     Options

	mu    sync.Mutex
	sess  *session.Session
	quote model.Quote

	obsMu     sync.Mutex
	observers map[int]session.Observer
	nextObsID int

	attempts atomic.Int64
	pending  sync.WaitGroup
}

// New builds a Controller. A nil rec reports results without saving them.
func New(src textsource.Source, rec *recorder.Recorder, opts Options) *Controller {
	return &Controller{
		source:    src,
		recorder:  rec,
		opts:      opts,
		observers: make(map[int]session.Observer),
	}
}

// Load fetches a new passage and replaces the current session with an idle one.
func (c *Controller) Load(ctx context.Context) (model.Quote, error) {
	q, err := c.source.FetchRandomText(ctx)
	if err != nil {
		return model.Quote{}, err
	}
	c.Use(q)
	return q, nil
}

// Use replaces the current session with an idle one for q.
func (c *Controller) Use(q model.Quote) {
	sess := session.New(q.Content, c.opts.Session)
	sess.Subscribe(c.forwarder(q))

	c.mu.Lock()
	old := c.sess
	c.sess = sess
	c.quote = q
	c.mu.Unlock()

	if old != nil {
		old.Close()
	}
}

// Restart returns the current session to idle with the same text.
func (c *Controller) Restart() {
	if sess := c.current(); sess != nil {
		sess.Reset()
	}
}

// Start begins the current session.
func (c *Controller) Start() bool {
	sess := c.current()
	if sess == nil {
		return false
	}
	return sess.Start()
}

// Input forwards the typed buffer to the current session.
func (c *Controller) Input(buffer string) error {
	sess := c.current()
	if sess == nil {
		return ErrNoText
	}
	return sess.Input(buffer)
}

// Quote returns the loaded passage.
func (c *Controller) Quote() model.Quote {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quote
}

// State returns the current session state. ok is false before the first load.
func (c *Controller) State() (session.State, bool) {
	sess := c.current()
	if sess == nil {
		return session.State{}, false
	}
	return sess.State(), true
}

// Snapshot returns the current session metrics.
func (c *Controller) Snapshot() metrics.Metrics {
	sess := c.current()
	if sess == nil {
		return metrics.Empty()
	}
	return sess.Snapshot()
}

// Subscribe registers an observer that follows every session the controller creates.
func (c *Controller) Subscribe(obs session.Observer) func() {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	c.nextObsID++
	id := c.nextObsID
	c.observers[id] = obs
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		delete(c.observers, id)
	}
}

// Attempts returns how many sessions have finished. It is updated before
// Input returns the finishing call.
func (c *Controller) Attempts() int64 {
	return c.attempts.Load()
}

// Close stops the current session and waits for pending recordings.
// In-flight saves run to completion, bounded by their own timeout.
func (c *Controller) Close() {
	c.mu.Lock()
	sess := c.sess
	c.sess = nil
	c.mu.Unlock()
	if sess != nil {
		sess.Close()
	}
	c.pending.Wait()
}

// Wait blocks until every pending recording has completed.
func (c *Controller) Wait() {
	c.pending.Wait()
}

func (c *Controller) current() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

func (c *Controller) forwarder(q model.Quote) session.Observer {
	return session.ObserverFuncs{
		OnSnapshot: func(m metrics.Metrics) {
			c.obsMu.Lock()
			defer c.obsMu.Unlock()
			for _, obs := range c.observers {
				obs.SnapshotUpdated(m)
			}
		},
		OnFinished: func(m metrics.Metrics) {
			c.obsMu.Lock()
			for _, obs := range c.observers {
				obs.SessionFinished(m)
			}
			c.obsMu.Unlock()
			attempt := c.attempts.Add(1)
			c.pending.Add(1)
			go c.record(attempt, q, m)
		},
	}
}

func (c *Controller) record(attempt int64, q model.Quote, m metrics.Metrics) {
	defer c.pending.Done()
	rec := c.recorder
	if rec == nil {
		rec = recorder.New(nil, nil)
	}
	ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
	defer cancel()
	out, err := rec.Record(ctx, recorder.Attempt{
		Username:   c.opts.Username,
		Metrics:    m,
		TextLength: q.Length,
		Source:     q.Source,
		Author:     q.Author,
	})
	if c.opts.OnRecorded != nil {
		c.opts.OnRecorded(attempt, out, err)
	}
}
