// Package health provides liveness and readiness handlers for the ops
// listener.
//
//   - /healthz answers 200 whenever the process can serve HTTP.
//   - /readyz answers 200 only while every registered [Probe] passes, and
//     503 with per-probe detail otherwise.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// probeTimeout bounds a single readiness probe.
const probeTimeout = 5 * time.Second

// Probe is a named readiness check. Run returns nil while the dependency is
// usable and an error describing the failure otherwise.
type Probe struct {
	// Name labels this probe in the JSON response (e.g. "telegram").
	Name string

	// Run checks the dependency. It must respect context cancellation.
	Run func(ctx context.Context) error
}

// status is the JSON body served by both endpoints.
type status struct {
	Status string            `json:"status"`
	Probes map[string]string `json:"probes,omitempty"`
}

// Endpoints serves the health routes. The probe list is fixed at
// construction time, so the handler is safe for concurrent use.
type Endpoints struct {
	probes []Probe
}

// NewEndpoints creates health endpoints evaluating the given probes on each
// readiness request, in order.
func NewEndpoints(probes ...Probe) *Endpoints {
	p := make([]Probe, len(probes))
	copy(p, probes)
	return &Endpoints{probes: p}
}

// Healthz is the liveness probe.
func (e *Endpoints) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, status{Status: "ok"})
}

// Readyz runs every probe under a [probeTimeout] deadline derived from the
// request context and reports the aggregate.
func (e *Endpoints) Readyz(w http.ResponseWriter, r *http.Request) {
	probes := make(map[string]string, len(e.probes))
	ready := true

	for _, p := range e.probes {
		ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
		err := p.Run(ctx)
		cancel()

		if err != nil {
			probes[p.Name] = "fail: " + err.Error()
			ready = false
		} else {
			probes[p.Name] = "ok"
		}
	}

	res := status{Status: "ok", Probes: probes}
	code := http.StatusOK
	if !ready {
		res.Status = "fail"
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, res)
}

// Register adds the health routes to mux.
func (e *Endpoints) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", e.Healthz)
	mux.HandleFunc("GET /readyz", e.Readyz)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"status":"error"}`, http.StatusInternalServerError)
	}
}
