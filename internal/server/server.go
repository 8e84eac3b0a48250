package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/claude/repright/internal/device"
	"github.com/claude/repright/internal/models"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Coach is the AI service the plan and form endpoints proxy to.
type Coach interface {
	Configured() bool
	GeneratePlan(ctx context.Context, profile models.UserProfile, notes string) (models.WorkoutPlan, error)
	CustomizePlan(ctx context.Context, plan models.WorkoutPlan, request string) (models.CustomizationResponse, error)
	CameraPosition(ctx context.Context, exercise string) (models.CameraPosition, error)
	AnalyzeForm(ctx context.Context, frames []string, exercise string, camera models.CameraPosition) (models.FormAnalysis, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	devices *device.Registry
	coach   Coach
	log     *slog.Logger
	apiKey  string
	whois   WhoIser
	router  chi.Router
	mcp     http.Handler
}

// New creates a new Server with all routes configured.
func New(devices *device.Registry, coach Coach, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		devices: devices,
		coach:   coach,
		log:     log,
		apiKey:  apiKey,
		router:  chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// SetTailscale resolves callers to tailnet identities for request logs.
func (s *Server) SetTailscale(lc WhoIser) {
	s.whois = lc
}

// SetMCP mounts an MCP transport at /mcp behind the API key.
func (s *Server) SetMCP(h http.Handler) {
	s.mcp = h
}

func (s *Server) routes() {
	s.router.Use(Identity(func() WhoIser { return s.whois }))
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))

		// Stateless AI proxy
		r.Post("/plans/generate", s.handleGeneratePlan)
		r.Post("/plans/customize", s.handleCustomizePlan)
		r.Post("/form/camera-position", s.handleCameraPosition)
		r.Post("/form/analyze", s.handleAnalyzeForm)

		r.Get("/devices", s.handleListDevices)
		r.Route("/devices/{deviceID}", func(r chi.Router) {
			r.Delete("/", s.handleDeleteDevice)

			r.Get("/session", s.handleGetSession)
			r.Post("/session/attempt", s.handleAttempt)
			r.Post("/session/complete", s.handleComplete)
			r.Post("/session/pause", s.handlePause)
			r.Post("/session/resume", s.handleResume)
			r.Post("/streak/ack", s.handleAckStreak)

			r.Post("/onboarding", s.handleOnboarding)
			r.Get("/profile", s.handleGetProfile)
			r.Put("/profile", s.handleUpdateProfile)

			r.Get("/plan", s.handleGetPlan)
			r.Put("/plan", s.handleActivatePlan)
			r.Delete("/plan", s.handleClearPlan)
			r.Post("/plan/generate", s.handleGenerateDevicePlan)
			r.Post("/plan/customize", s.handleCustomizeDevicePlan)
			r.Get("/workout/today", s.handleTodayWorkout)

			r.Get("/flow", s.handleGetFlow)
			r.Post("/flow/confirm", s.handleFlowConfirm)
			r.Post("/flow/select", s.handleFlowSelect)
			r.Post("/flow/complete-set", s.handleFlowCompleteSet)
			r.Post("/flow/next-set", s.handleFlowNextSet)
			r.Post("/flow/abort", s.handleFlowAbort)
			r.Post("/flow/exit", s.handleFlowExit)

			r.Get("/saved", s.handleListSaved)
			r.Delete("/saved", s.handleDeleteAllSaved)
			r.Get("/saved/{slot}", s.handleGetSaved)
			r.Put("/saved/{slot}", s.handleSaveSlot)
			r.Delete("/saved/{slot}", s.handleDeleteSlot)
			r.Post("/saved/{slot}/activate", s.handleActivateSlot)
		})

		r.Handle("/mcp", http.HandlerFunc(s.handleMCP))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"ai_configured": s.coach != nil && s.coach.Configured(),
	})
}

func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ids, err := s.devices.DeviceIDs(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": ids})
}

func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	if s.mcp == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "MCP is not enabled"})
		return
	}
	s.mcp.ServeHTTP(w, r)
}
