/*
Package resilience provides a circuit breaker for calls to external services.

# Overview

The weather provider is the only dependency outside the process. When it
fails repeatedly the breaker opens and calls fail fast with ErrCircuitOpen
until a trial request succeeds.

# Usage

	breaker := resilience.New("weather", resilience.Settings{
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts resilience.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})

	report, err := resilience.Execute(breaker, func() (*Report, error) {
		return fetch(ctx)
	})

# States

	Closed --[failures]-> Open --[timeout]-> Half-Open --[successes]-> Closed
	                                           |
	                                    [failure]
	                                           |
	                                           v
	                                         Open

Settings.Clock may be replaced in tests to drive the timeouts.
*/
package resilience
