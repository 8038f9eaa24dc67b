package metrics

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/zenterm/zenbus/json"
	"github.com/zenterm/zenbus/logging"
)

// StatusFunc supplies extra fields for the /healthz response, such as the
// current subscription count.
type StatusFunc func() map[string]interface{}

// Router exposes a Collector over HTTP:
//
//	GET /metrics       Prometheus text format
//	GET /metrics.json  JSON snapshot
//	GET /healthz       liveness plus StatusFunc fields
func Router(collector *Collector, status StatusFunc, logger logging.Logger) chi.Router {
	if logger == nil {
		logger = logging.Named("metrics.http")
	}
	started := time.Now()

	r := chi.NewRouter()
	r.Use(logging.RecoveryMiddleware(logger))
	r.Use(logging.HTTPMiddleware(logger))

	r.Get("/metrics", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(PrometheusFormat(collector)))
	})

	r.Get("/metrics.json", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"metrics": collector.Snapshot(),
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]interface{}{
			"status": "ok",
			"uptime": time.Since(started).Round(time.Second).String(),
		}
		if status != nil {
			for k, v := range status() {
				body[k] = v
			}
		}
		writeJSON(w, http.StatusOK, body)
	})

	return r
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
