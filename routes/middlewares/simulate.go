package middlewares

import (
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/render"

	"github.com/mbolis/talentflow/config"
	"github.com/mbolis/talentflow/log"
)

// Simulate delays every request by a random latency within the configured
// range, and fails write requests with probability sim.FailureRate.
func Simulate(sim config.Simulation, rnd *rand.Rand) func(http.Handler) http.Handler {
	var mu sync.Mutex
	float := func() float64 {
		mu.Lock()
		defer mu.Unlock()
		return rnd.Float64()
	}

	return func(next http.Handler) http.Handler {
		if !sim.Enabled() {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			delay := sim.LatencyMin + time.Duration(float()*float64(sim.LatencyMax-sim.LatencyMin))
			if delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-timer.C:
				case <-r.Context().Done():
					timer.Stop()
					return
				}
			}

			if isWrite(r.Method) && float() < sim.FailureRate {
				log.Debugf("simulate.failure: %s %s", r.Method, r.URL.Path)
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, map[string]string{"message": "A random server error occurred."})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}
