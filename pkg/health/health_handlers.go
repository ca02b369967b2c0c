package health

import (
	"encoding/json"
	"net/http"
)

// Handler serves the general health endpoint. Degraded still answers 200.
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := c.Check(r.Context())
		code := http.StatusOK
		if resp.Status == StatusUnhealthy {
			code = http.StatusServiceUnavailable
		}
		writeResponse(w, code, resp)
	}
}

// ReadinessHandler answers 200 only when every readiness probe is healthy
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeBinary(w, c.CheckReadiness(r.Context()))
	}
}

// LivenessHandler answers 200 only when every liveness probe is healthy
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeBinary(w, c.CheckLiveness(r.Context()))
	}
}

// Mount registers /healthz, /readyz and /livez on mux
func (c *Checker) Mount(mux *http.ServeMux) {
	mux.Handle("/healthz", c.Handler())
	mux.Handle("/readyz", c.ReadinessHandler())
	mux.Handle("/livez", c.LivenessHandler())
}

func writeBinary(w http.ResponseWriter, resp Response) {
	code := http.StatusOK
	if resp.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	writeResponse(w, code, resp)
}

func writeResponse(w http.ResponseWriter, code int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
