// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rallydesk/rallydesk/internal/api"
	apischedule "github.com/rallydesk/rallydesk/internal/api/schedule"
	"github.com/rallydesk/rallydesk/internal/config"
	"github.com/rallydesk/rallydesk/internal/db"
	"github.com/rallydesk/rallydesk/internal/ratelimit"
	"github.com/rallydesk/rallydesk/internal/schedule"
)

func newServer(cfg *config.Config, database *db.DB, engine *schedule.Engine) *http.Server {
	router := http.NewServeMux()

	apischedule.InitHandlers(engine)

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Schedule board
	mux.HandleFunc("GET /api/v1/schedule", apischedule.HandleScheduleView)
	mux.HandleFunc("POST /api/v1/schedule/place", apischedule.HandlePlaceGame)
	mux.HandleFunc("POST /api/v1/schedule/unschedule", apischedule.HandleUnscheduleGame)

	// Planning runs are throttled per client IP
	limiter := ratelimit.New(nil)
	planLimit := api.WithPlanRateLimit(limiter)
	mux.Handle("POST /api/v1/schedule/preview", planLimit(http.HandlerFunc(apischedule.HandlePreviewAutoSchedule)))
	mux.Handle("POST /api/v1/schedule/apply", planLimit(http.HandlerFunc(apischedule.HandleApplyAutoSchedule)))
}
