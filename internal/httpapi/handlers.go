package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"tenantgate.org/internal/authz"
	"tenantgate.org/internal/idp"
	"tenantgate.org/internal/obs"
)

// ReadyProbe reports readiness, e.g. by pinging the database.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer over the authorization engine.
type API struct {
	mux        *http.ServeMux
	store      authz.Store
	resolver   *authz.IdentityResolver
	verifier   *idp.Verifier
	readyProbe ReadyProbe
	version    string
}

// Config carries the API's collaborators.
type Config struct {
	Store      authz.Store
	Verifier   *idp.Verifier
	ReadyProbe ReadyProbe
	Version    string
}

// New wires the route table. Every route is registered with its static
// route class; classification never happens at request time.
func New(cfg Config) (*API, error) {
	resolver, err := authz.NewIdentityResolver(cfg.Store)
	if err != nil {
		return nil, err
	}
	a := &API{
		mux:        http.NewServeMux(),
		store:      cfg.Store,
		resolver:   resolver,
		verifier:   cfg.Verifier,
		readyProbe: cfg.ReadyProbe,
		version:    cfg.Version,
	}

	// health/ready/info
	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.HandleFunc("GET /v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("GET /metrics", obs.Handler())

	for _, rt := range a.routeTable() {
		a.mux.Handle(rt.pattern, a.withGuard(rt))
	}

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a, nil
}

// Handler returns the server handler with the full middleware chain.
func (a *API) Handler() http.Handler {
	h := a.withAuth(a.mux)
	h = RateLimit(h, 50, 25)
	h = MaxBodyBytes(h, 1<<20)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "tenantgate-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "tenantgate-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}
