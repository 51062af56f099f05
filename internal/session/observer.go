package session

import "github.com/verte-zerg/speedtype/internal/metrics"

// Observer receives metrics published by a session.
// Callbacks run while the session is locked and must not call back into it.
type Observer interface {
	// SnapshotUpdated is called after every recomputation while running.
	SnapshotUpdated(m metrics.Metrics)
	// SessionFinished is called once with the frozen final metrics.
	SessionFinished(m metrics.Metrics)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	OnSnapshot func(metrics.Metrics)
	OnFinished func(metrics.Metrics)
}

// SnapshotUpdated implements Observer.
func (o ObserverFuncs) SnapshotUpdated(m metrics.Metrics) {
	if o.OnSnapshot != nil {
		o.OnSnapshot(m)
	}
}

// SessionFinished implements Observer.
func (o ObserverFuncs) SessionFinished(m metrics.Metrics) {
	if o.OnFinished != nil {
		o.OnFinished(m)
	}
}
