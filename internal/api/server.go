// Package api exposes the HTTP surface: mentor indicator management, user
// subscriptions and inbox, and the realtime websocket endpoint.
//
// Authentication is out of scope for the engine; an upstream gateway is
// trusted to set X-Mentor-ID and X-User-ID headers after authenticating
// the caller.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/signalmaster/signal-engine/internal/fanout"
	"github.com/signalmaster/signal-engine/internal/logger"
	"github.com/signalmaster/signal-engine/internal/notification"
	"github.com/signalmaster/signal-engine/internal/store"
	"github.com/signalmaster/signal-engine/pkg/errors"
	"github.com/signalmaster/signal-engine/pkg/marketdata"
)

const (
	headerMentorID = "X-Mentor-ID"
	headerUserID   = "X-User-ID"
)

// Server is the HTTP API server.
type Server struct {
	store  *store.Store
	fanout *fanout.Fanout
	hub    *notification.Hub
	log    *logger.Logger

	httpServer *http.Server
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, st *store.Store, fo *fanout.Fanout, hub *notification.Hub, log *logger.Logger) *Server {
	s := &Server{
		store:  st,
		fanout: fo,
		hub:    hub,
		log:    log,
	}

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: s.Routes(),
	}

	return s
}

// Routes builds the router. Exposed for tests.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ws", s.hub.HandleWS)

	api := r.PathPrefix("/api").Subrouter()

	// Meta endpoints.
	api.HandleFunc("/providers", s.handleListProviders).Methods(http.MethodGet)
	api.HandleFunc("/indicators/schema", s.handleIndicatorSchema).Methods(http.MethodGet)

	// Mentor endpoints.
	mentor := api.PathPrefix("/mentor").Subrouter()
	mentor.Use(requireHeader(headerMentorID))
	mentor.HandleFunc("/indicators", s.handleCreateIndicator).Methods(http.MethodPost)
	mentor.HandleFunc("/indicators", s.handleListMentorIndicators).Methods(http.MethodGet)
	mentor.HandleFunc("/indicators/{id}/start", s.handleStartIndicator).Methods(http.MethodPost)
	mentor.HandleFunc("/indicators/{id}/stop", s.handleStopIndicator).Methods(http.MethodPost)
	mentor.HandleFunc("/indicators/{id}", s.handleDeleteIndicator).Methods(http.MethodDelete)
	mentor.HandleFunc("/indicators/{id}/signal", s.handleManualSignal).Methods(http.MethodPost)

	// User endpoints.
	user := api.PathPrefix("/user").Subrouter()
	user.Use(requireHeader(headerUserID))
	user.HandleFunc("/indicators", s.handleListAvailableIndicators).Methods(http.MethodGet)
	user.HandleFunc("/subscriptions", s.handleSubscribe).Methods(http.MethodPost)
	user.HandleFunc("/subscriptions", s.handleListSubscriptions).Methods(http.MethodGet)
	user.HandleFunc("/subscriptions/{id}", s.handleUnsubscribe).Methods(http.MethodDelete)
	user.HandleFunc("/inbox", s.handleListInbox).Methods(http.MethodGet)
	user.HandleFunc("/inbox/latest", s.handleLatestSignal).Methods(http.MethodGet)
	user.HandleFunc("/inbox/unread", s.handleUnreadCount).Methods(http.MethodGet)
	user.HandleFunc("/inbox/{id}/read", s.handleMarkRead).Methods(http.MethodPost)
	user.HandleFunc("/push-tokens", s.handleRegisterPushToken).Methods(http.MethodPost)
	user.HandleFunc("/push-tokens", s.handleDeletePushToken).Methods(http.MethodDelete)

	return r
}

// Start serves HTTP until Shutdown is called.
func (s *Server) Start() error {
	s.log.Info("api server listening", zap.String("addr", s.httpServer.Addr))

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}

// Shutdown drains in-flight requests and closes websocket clients.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()

	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListProviders(w http.ResponseWriter, _ *http.Request) {
	names := marketdata.SupportedProviders()
	infos := make([]marketdata.ProviderInfo, 0, len(names))

	for _, name := range names {
		if info, ok := marketdata.GetProviderInfo(name); ok {
			infos = append(infos, info)
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]interface{}{"providers": infos})
}

// requireHeader rejects requests missing the identity header the gateway is
// supposed to set.
func requireHeader(name string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get(name) == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "missing " + name + " header"})

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError

	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidParameter, errors.ErrCodeInvalidSignal, errors.ErrCodeInvalidTimeframe, errors.ErrCodeInvalidConfig:
		status = http.StatusBadRequest
	case errors.ErrCodeDataNotFound, errors.ErrCodeIndicatorNotFound:
		status = http.StatusNotFound
	case errors.ErrCodeDuplicateSubscription:
		status = http.StatusConflict
	case errors.ErrCodeIndicatorNotRunning:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	}

	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(err, errors.ErrCodeInvalidParameter, "invalid request body")
	}

	return nil
}
