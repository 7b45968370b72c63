package repository

import "time"

// QueryObserver receives the label and elapsed time of every repository
// query. The metrics layer plugs in here without the repositories importing
// it.
type QueryObserver func(label string, duration time.Duration)

// observeQuery starts a timer for one query. The returned func reports the
// elapsed time to the observer and is meant to be deferred.
func observeQuery(fn QueryObserver, label string) func() {
	if fn == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		fn(label, time.Since(start))
	}
}
