// Package httpapi exposes the notification subsystem over HTTP.
package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/FildCommander/ytptube/internal/notify"
	"github.com/FildCommander/ytptube/internal/router"
	"github.com/FildCommander/ytptube/pkg/types"
)

// Notifier defines the methods the HTTP layer requires from the
// notification service.
type Notifier interface {
	Targets() []types.Target
	AllowedEvents() []string
	Replace(targets []types.Target) error
	Test()
}

type server struct {
	svc Notifier
	log zerolog.Logger
}

// NewMux builds the HTTP handler: notification target management, the test
// trigger, health and metrics.
func NewMux(svc Notifier, log zerolog.Logger) http.Handler {
	s := &server{svc: svc, log: log.With().Str("component", "httpapi").Logger()}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	r.Use(MetricsMiddleware)
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
		}))
	}

	tbl := router.NewTable()
	tbl.Add(http.MethodGet, "api/notifications/", s.handleList, router.WithName("notifications_list"))
	tbl.Add(http.MethodPut, "api/notifications/", s.handleReplace, router.WithName("notification_add"))
	tbl.Add(http.MethodPost, "api/notifications/test/", s.handleTest, router.WithName("notification_test"))
	tbl.Add(http.MethodGet, "/healthz", handleHealthz)
	tbl.Mount(r)

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

func (s *server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.TargetsResponse{
		Notifications: s.svc.Targets(),
		AllowedTypes:  s.svc.AllowedEvents(),
	})
}

// handleReplace replaces the whole target list. Submitted entries without a
// valid id get a fresh one; any entry failing validation rejects the call.
func (s *server) handleReplace(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var inputs []notify.TargetInput
	if err := json.NewDecoder(r.Body).Decode(&inputs); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body, expecting a list of targets")
		return
	}

	targets := make([]types.Target, 0, len(inputs))
	for _, in := range inputs {
		if !notify.IsUUIDv4(in.ID) {
			in.ID = uuid.NewString()
		}
		if err := notify.Validate(in); err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}
		targets = append(targets, notify.Materialize(in))
	}

	if err := s.svc.Replace(targets); err != nil {
		s.log.Error().Err(err).Msg("failed to reload notification targets")
		writeJSONError(w, http.StatusInternalServerError, "failed to save notification targets")
		return
	}

	writeJSON(w, http.StatusOK, types.TargetsResponse{
		Notifications: s.svc.Targets(),
		AllowedTypes:  s.svc.AllowedEvents(),
	})
}

func (s *server) handleTest(w http.ResponseWriter, r *http.Request) {
	s.svc.Test()
	writeJSON(w, http.StatusOK, map[string]any{})
}

func handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
