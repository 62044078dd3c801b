package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rostra-dev/rostra/pkg/engine"
	rostralog "github.com/rostra-dev/rostra/pkg/log"
	"github.com/rostra-dev/rostra/pkg/metrics"
	"github.com/rostra-dev/rostra/pkg/views"
)

// Server wires an Engine and Views to an http.Handler.
type Server struct {
	engine *engine.Engine
	views  *views.Views
	log    zerolog.Logger
}

// NewServer wires a Server to the engine it submits events through and the
// views it serves read snapshots from.
func NewServer(eng *engine.Engine, v *views.Views) *Server {
	return &Server{
		engine: eng,
		views:  v,
		log:    rostralog.WithComponent("api"),
	}
}

// Handler builds the full routed handler, including unversioned
// operational endpoints and the versioned, metrics-instrumented API mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	api := http.NewServeMux()
	api.HandleFunc("GET /api/generate-id", s.handleGenerateID)
	api.HandleFunc("GET /api/{id}/heads", s.handleHeads)
	api.HandleFunc("POST /api/{id}/publish-social-post-managed", s.handlePublishSocialPost)
	api.HandleFunc("POST /api/{id}/update-social-profile-managed", s.handleUpdateProfile)
	api.HandleFunc("POST /api/{id}/follow-managed", s.handleFollow)
	api.HandleFunc("POST /api/{id}/unfollow-managed", s.handleUnfollow)
	api.HandleFunc("GET /api/{id}/followees", s.handleFollowees)
	api.HandleFunc("GET /api/{id}/followers", s.handleFollowers)
	api.HandleFunc("GET /api/{id}/notifications", s.handleNotifications)
	api.HandleFunc("GET /api/{id}/following", s.handleFollowing)
	api.HandleFunc("GET /api/{id}/network", s.handleNetwork)

	mux.Handle("/api/", s.instrument(s.requireAPIVersion(api)))

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// handleReady reports this node's store as ready once it can answer a
// read over it; an engine wired to a closed or corrupt store fails here
// rather than passing liveness while failing every real request.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.engine.EventCount(); err != nil {
		writeError(w, http.StatusInternalServerError, "store not ready")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// instrument records request counts and latency per route pattern, mirroring
// the engine's per-operation metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := routeLabel(r.URL.Path)
		metrics.APIRequestsTotal.WithLabelValues(route, statusClass(rec.status)).Inc()
		metrics.APIRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// routeLabel collapses "/api/{rostra_id}/heads" into "/api/{id}/heads" so the
// per-route metrics stay low-cardinality regardless of how many distinct
// identities are served.
func routeLabel(path string) string {
	parts := strings.Split(path, "/")
	if len(parts) >= 3 && parts[1] == "api" && parts[2] != "generate-id" {
		parts[2] = "{id}"
	}
	return strings.Join(parts, "/")
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	default:
		return "2xx"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
