package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"chatrelay/internal/constants"
	apperrors "chatrelay/internal/errors"
	"chatrelay/internal/format"
	"chatrelay/internal/httputil"
	"chatrelay/internal/middleware"
	"chatrelay/internal/models"
	"chatrelay/internal/privacy"
	"chatrelay/internal/queue"
	"chatrelay/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	router      *mux.Router
	logger      *logrus.Logger
	store       *queue.Store
	cfg         *models.Config
	rateLimiter *RateLimiter
	server      *http.Server
}

func NewServer(cfg *models.Config, store *queue.Store, logger *logrus.Logger) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		logger:      logger,
		store:       store,
		cfg:         cfg,
		rateLimiter: NewRateLimiter(cfg.RateLimit.Requests, time.Duration(cfg.RateLimit.WindowSec)*time.Second),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.Observability(s.logger))

	// Health check, unauthenticated
	s.router.HandleFunc("/", s.handleHealth()).Methods(http.MethodGet)

	// Queueing endpoints, one per platform
	s.router.HandleFunc("/tg_msg", s.handleQueueMessage(models.PlatformTelegram)).Methods(http.MethodPost)
	s.router.HandleFunc("/discord_msg", s.handleQueueMessage(models.PlatformDiscord)).Methods(http.MethodPost)

	// Debug endpoint: logs the request, queues nothing
	s.router.HandleFunc("/webhook", s.handleDebugWebhook()).Methods(http.MethodPost)

	// Operational metrics
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)
}

// Start blocks serving HTTP until the listener fails or Shutdown is
// called. The foreground flag picks between the two configured bind
// addresses.
func (s *Server) Start(foreground bool) error {
	ip := s.cfg.Network.BackgroundIP
	port := s.cfg.Network.BackgroundPort
	if foreground {
		ip = s.cfg.Network.ForegroundIP
		port = s.cfg.Network.ForegroundPort
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", ip, port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeoutSec) * time.Second,
	}

	s.logger.WithFields(logrus.Fields{
		"addr":       s.server.Addr,
		"foreground": foreground,
	}).Info("Starting server")
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"message": "Webhook relay is running"})
	}
}

// handleQueueMessage authenticates, formats and enqueues an inbound event
// for one platform. Delivery happens later in the worker; the caller gets
// an immediate acknowledgment regardless of eventual delivery outcome.
func (s *Server) handleQueueMessage(platform models.Platform) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := s.authorizeAndDecode(w, r)
		if !ok {
			return
		}

		event := models.EventPayloadFromMap(body)
		text := format.Format(event, platform)

		if err := s.store.Enqueue(models.QueuedMessage{Platform: platform, Body: text}); err != nil {
			apperrors.LogError(s.logger, err, "Failed to enqueue message")
			s.writeError(w, r, err)
			return
		}

		s.logger.WithFields(logrus.Fields{
			"request_id": tracing.GetRequestID(r.Context()),
			"platform":   string(platform),
		}).Info("Message queued")

		s.writeJSON(w, http.StatusOK, map[string]string{"status": "queued"})
	}
}

// handleDebugWebhook logs the headers and body of a request without
// queueing anything. Useful for inspecting what a controller actually
// sends.
func (s *Server) handleDebugWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		headers := privacy.MaskSensitiveHeaders(r.Header)

		body, ok := s.authorizeAndDecode(w, r)
		if !ok {
			return
		}

		s.logger.WithFields(logrus.Fields{
			"request_id": tracing.GetRequestID(r.Context()),
			"headers":    headers,
			"body":       body,
		}).Debug("Webhook received")

		s.writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
	}
}

// authorizeAndDecode runs the shared request checks: rate limit, access
// token, JSON decode. The shardSecret field is stripped before the body
// can reach a log line or the queue. Returns ok=false after writing the
// error response.
func (s *Server) authorizeAndDecode(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	clientIP := httputil.GetClientIP(r)
	if !s.rateLimiter.Allow(clientIP) {
		window := time.Duration(s.cfg.RateLimit.WindowSec) * time.Second
		w.Header().Set("Retry-After", fmt.Sprintf("%d", s.cfg.RateLimit.WindowSec))
		s.writeError(w, r, apperrors.NewRateLimitError(s.cfg.RateLimit.Requests, window.String()))
		return nil, false
	}

	if err := validateAccessToken(r, s.cfg.WebhookSecret); err != nil {
		s.writeError(w, r, err)
		return nil, false
	}

	var body map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(r.Body, constants.MaxWebhookBodyBytes)).Decode(&body); err != nil {
		s.writeError(w, r, apperrors.NewValidationError("body", "invalid JSON payload"))
		return nil, false
	}

	delete(body, "shardSecret")
	return body, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.WithError(err).Error("Failed to encode response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	resp := apperrors.ToHTTPResponse(err, tracing.GetRequestID(r.Context()))
	s.writeJSON(w, apperrors.HTTPStatusCode(err), resp)
}
