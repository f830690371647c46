package assets

import "time"

// Outcome describes how an Inject call was served.
type Outcome string

const (
	// OutcomeReused means an existing artifact was referenced.
	OutcomeReused Outcome = "reused"

	// OutcomeBuilt means a new artifact was written.
	OutcomeBuilt Outcome = "built"

	// OutcomeTags means per-file tags were rendered.
	OutcomeTags Outcome = "tags"

	// OutcomeFallback means the artifact could not be written and per-file
	// tags were rendered instead.
	OutcomeFallback Outcome = "fallback"

	// OutcomeFailed means the call returned an error.
	OutcomeFailed Outcome = "failed"
)

// Event is reported to an Observer after every Inject call.
type Event struct {
	Module   string
	Type     AssetType
	Outcome  Outcome
	Duration time.Duration

	// Bytes is the artifact size for built artifacts.
	Bytes int

	// Err is the returned error, if any.
	Err error
}

// Observer receives an Event for every Inject call.
type Observer interface {
	ObserveInject(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// ObserveInject calls f.
func (f ObserverFunc) ObserveInject(e Event) {
	f(e)
}
