package session

import "sync"

// tickHandle owns one running ticker goroutine. Once released it never
// publishes again.
type tickHandle struct {
	ticker Ticker
	stop   chan struct{}
	once   sync.Once
}

func (h *tickHandle) release() {
	h.once.Do(func() {
		h.ticker.Stop()
		close(h.stop)
	})
}

// startTicking must be called with s.mu held.
func (s *Session) startTicking() {
	s.stopTicking()
	h := &tickHandle{
		ticker: s.clock.NewTicker(s.interval),
		stop:   make(chan struct{}),
	}
	s.tick = h
	s.tickers.Add(1)
	go s.runTicker(h)
}

// stopTicking must be called with s.mu held.
func (s *Session) stopTicking() {
	if s.tick == nil {
		return
	}
	s.tick.release()
	s.tick = nil
}

func (s *Session) runTicker(h *tickHandle) {
	defer s.tickers.Done()
	for {
		select {
		case <-h.stop:
			return
		case <-h.ticker.C():
			s.onTick(h)
		}
	}
}
