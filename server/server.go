// Package server exposes the message router and the detector over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/Marlvin12/perfit/api"
	"github.com/Marlvin12/perfit/messaging"
	"github.com/Marlvin12/perfit/sites"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// DefaultAllowedOrigins admits any extension page
var DefaultAllowedOrigins = []string{"chrome-extension://*"}

// maxBodyBytes bounds request bodies; page snapshots can be large
const maxBodyBytes = 10 << 20

// Server holds the HTTP handlers
type Server struct {
	router         *messaging.Router
	registry       *sites.Registry
	logger         *logrus.Logger
	allowedOrigins []string
	accessLog      *io.PipeWriter
}

// New creates a server. An empty origin list falls back to DefaultAllowedOrigins.
func New(router *messaging.Router, registry *sites.Registry, logger *logrus.Logger, allowedOrigins []string) *Server {
	if len(allowedOrigins) == 0 {
		allowedOrigins = DefaultAllowedOrigins
	}
	return &Server{
		router:         router,
		registry:       registry,
		logger:         logger,
		allowedOrigins: allowedOrigins,
	}
}

// Handler builds the routed handler with CORS and access logging
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/messages", s.handleMessage).Methods(http.MethodPost)
	r.HandleFunc("/detect", s.handleDetect).Methods(http.MethodPost)
	r.HandleFunc("/sites", s.handleSites).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	cors := handlers.CORS(
		handlers.AllowedOriginValidator(s.originAllowed),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	if s.accessLog == nil {
		s.accessLog = s.logger.WriterLevel(logrus.InfoLevel)
	}
	return handlers.CombinedLoggingHandler(s.accessLog, cors(r))
}

// Close releases the access log writer
func (s *Server) Close() {
	if s.accessLog != nil {
		s.accessLog.Close()
		s.accessLog = nil
	}
}

// originAllowed matches an origin against the allow list. A trailing "*"
// matches any suffix.
func (s *Server) originAllowed(origin string) bool {
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
		if prefix, ok := strings.CutSuffix(allowed, "*"); ok && strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

// handleMessage dispatches one message envelope
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg messaging.Message
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&msg); err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.dispatch(w, r, msg)
}

// handleDetect is a shortcut for a DETECT_PRODUCT message
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.sendError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	s.dispatch(w, r, messaging.Message{Type: messaging.DetectProduct, Payload: payload})
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, msg messaging.Message) {
	data, err := s.router.Dispatch(r.Context(), msg)
	if err != nil {
		s.logger.Warnf("Message %s failed: %v", msg.Type, err)
	}
	s.sendJSON(w, statusFor(err), messaging.NewResponse(data, err))
}

// handleSites lists the supported stores
func (s *Server) handleSites(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, messaging.Response{Success: true, Data: s.registry.Sites()})
}

// handleHealth handles the health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// statusFor maps a handler error to an HTTP status
func statusFor(err error) int {
	var apiErr *api.Error
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, messaging.ErrUnknownMessageType), errors.Is(err, messaging.ErrInvalidPayload):
		return http.StatusBadRequest
	case errors.As(err, &apiErr):
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// sendError sends an error response
func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	s.sendJSON(w, statusCode, messaging.Response{Success: false, Error: message})
}

func (s *Server) sendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("Failed to encode response: %v", err)
	}
}
