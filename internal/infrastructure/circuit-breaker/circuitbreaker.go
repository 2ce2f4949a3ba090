package circuitbreaker

import (
	"time"

	"github.com/alimikegami/astromart/internal/infrastructure/metrics"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker/v2"
)

func stateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

func CreateCircuitBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	var st gobreaker.Settings
	st.Name = name
	st.MaxRequests = 1
	st.Interval = 15 * time.Second
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= 3 && failureRatio >= 0.6
	}
	st.OnStateChange = func(name string, from gobreaker.State, to gobreaker.State) {
		metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
		log.Warn().
			Str("component", "CircuitBreaker").
			Str("circuit", name).
			Str("from", from.String()).
			Str("to", to.String()).
			Msg("circuit breaker state changed")
	}

	cb := gobreaker.NewCircuitBreaker[[]byte](st)
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	return cb
}
