// internal/api/schedule/handlers.go
package schedule

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rallydesk/rallydesk/internal/api/apiutil"
	gamescheduler "github.com/rallydesk/rallydesk/internal/schedule"
)

const (
	scheduleQueryTimeout = 5 * time.Second
	planTimeout          = 30 * time.Second
	dateQueryKey         = "date"
	eventIDQueryKey      = "event_id"
	divisionQueryKey     = "division"
)

var (
	engine *gamescheduler.Engine
)

type planRequest struct {
	EventID             int64  `json:"eventId"`
	Date                string `json:"date"`
	StartTime           string `json:"startTime"`
	EndTime             string `json:"endTime"`
	GameDurationMinutes int64  `json:"gameDurationMinutes"`
	MinRestMinutes      int64  `json:"minRestMinutes"`
}

type placeRequest struct {
	GameID    int64  `json:"gameId"`
	CourtID   int64  `json:"courtId"`
	StartTime string `json:"startTime"`
}

type unscheduleRequest struct {
	GameID int64 `json:"gameId"`
}

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(e *gamescheduler.Engine) {
	engine = e
}

func loadEngine() *gamescheduler.Engine {
	return engine
}

// GET /api/v1/schedule
func HandleScheduleView(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	e := loadEngine()
	if e == nil {
		logger.Error().Msg("Scheduling engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	date, err := apiutil.ParseDateField(r.URL.Query().Get(dateQueryKey), dateQueryKey)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	filters, err := viewFiltersFromQuery(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), scheduleQueryTimeout)
	defer cancel()

	view, err := e.View(ctx, date, filters)
	if err != nil {
		writeEngineError(w, r, err, "Failed to load schedule view")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, newScheduleViewResponse(view)); err != nil {
		logger.Error().Err(err).Msg("Failed to write schedule view response")
	}
}

// POST /api/v1/schedule/preview
func HandlePreviewAutoSchedule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	e := loadEngine()
	if e == nil {
		logger.Error().Msg("Scheduling engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, cfg, err := planConfigFromRequest(r, e)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), planTimeout)
	defer cancel()

	result, err := e.Preview(ctx, eventID, cfg)
	if err != nil {
		writeEngineError(w, r, err, "Failed to preview auto-schedule")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, newPlanResponse(result)); err != nil {
		logger.Error().Err(err).Msg("Failed to write preview response")
	}
}

// POST /api/v1/schedule/apply
func HandleApplyAutoSchedule(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	e := loadEngine()
	if e == nil {
		logger.Error().Msg("Scheduling engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	eventID, cfg, err := planConfigFromRequest(r, e)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), planTimeout)
	defer cancel()

	result, err := e.Apply(ctx, eventID, cfg)
	if err != nil && result == nil {
		writeEngineError(w, r, err, "Failed to apply auto-schedule")
		return
	}
	if err != nil {
		// Partial apply: some placements committed before the failure. Report
		// what landed instead of pretending nothing happened.
		logger.Error().Err(err).
			Int("committed", len(result.Committed)).
			Msg("Auto-schedule apply stopped early")
		if werr := apiutil.WriteJSON(w, http.StatusInternalServerError, newApplyResponse(result)); werr != nil {
			logger.Error().Err(werr).Msg("Failed to write apply response")
		}
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, newApplyResponse(result)); err != nil {
		logger.Error().Err(err).Msg("Failed to write apply response")
	}
}

// POST /api/v1/schedule/place
func HandlePlaceGame(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	e := loadEngine()
	if e == nil {
		logger.Error().Msg("Scheduling engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req placeRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.GameID <= 0 {
		http.Error(w, "gameId must be greater than 0", http.StatusBadRequest)
		return
	}
	if req.CourtID <= 0 {
		http.Error(w, "courtId must be greater than 0", http.StatusBadRequest)
		return
	}
	startAt, err := apiutil.ParseTimestampField(req.StartTime, "startTime")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), scheduleQueryTimeout)
	defer cancel()

	game, err := e.PlaceGame(ctx, req.GameID, req.CourtID, startAt)
	if err != nil {
		writeEngineError(w, r, err, "Failed to place game")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, newGameResponse(game)); err != nil {
		logger.Error().Err(err).Msg("Failed to write place response")
	}
}

// POST /api/v1/schedule/unschedule
func HandleUnscheduleGame(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	e := loadEngine()
	if e == nil {
		logger.Error().Msg("Scheduling engine not initialized")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var req unscheduleRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.GameID <= 0 {
		http.Error(w, "gameId must be greater than 0", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), scheduleQueryTimeout)
	defer cancel()

	if err := e.UnscheduleGame(ctx, req.GameID); err != nil {
		writeEngineError(w, r, err, "Failed to unschedule game")
		return
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"gameId": req.GameID, "scheduled": false}); err != nil {
		logger.Error().Err(err).Msg("Failed to write unschedule response")
	}
}

func viewFiltersFromQuery(r *http.Request) (gamescheduler.ViewFilters, error) {
	var filters gamescheduler.ViewFilters

	if raw := strings.TrimSpace(r.URL.Query().Get(eventIDQueryKey)); raw != "" {
		eventID, err := apiutil.ParsePositiveInt64Field(raw, eventIDQueryKey)
		if err != nil {
			return gamescheduler.ViewFilters{}, err
		}
		filters.EventID = &eventID
	}
	if raw := strings.TrimSpace(r.URL.Query().Get(divisionQueryKey)); raw != "" {
		filters.Division = &raw
	}
	return filters, nil
}

// planConfigFromRequest decodes a planning request and fills unset fields from
// the configured defaults.
func planConfigFromRequest(r *http.Request, e *gamescheduler.Engine) (int64, gamescheduler.PlanConfig, error) {
	var req planRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		return 0, gamescheduler.PlanConfig{}, errors.New("invalid request body")
	}
	if req.EventID <= 0 {
		return 0, gamescheduler.PlanConfig{}, errors.New("eventId must be greater than 0")
	}

	date, err := apiutil.ParseDateField(req.Date, "date")
	if err != nil {
		return 0, gamescheduler.PlanConfig{}, err
	}

	cfg, err := e.DefaultPlanConfig(date)
	if err != nil {
		return 0, gamescheduler.PlanConfig{}, err
	}

	if req.StartTime != "" {
		clock, err := apiutil.ParseClockField(req.StartTime, "startTime")
		if err != nil {
			return 0, gamescheduler.PlanConfig{}, err
		}
		cfg.WindowStart, err = timeOnDate(date, clock)
		if err != nil {
			return 0, gamescheduler.PlanConfig{}, err
		}
	}
	if req.EndTime != "" {
		clock, err := apiutil.ParseClockField(req.EndTime, "endTime")
		if err != nil {
			return 0, gamescheduler.PlanConfig{}, err
		}
		cfg.WindowEnd, err = timeOnDate(date, clock)
		if err != nil {
			return 0, gamescheduler.PlanConfig{}, err
		}
	}
	if req.GameDurationMinutes > 0 {
		cfg.GameDuration = time.Duration(req.GameDurationMinutes) * time.Minute
	}
	if req.MinRestMinutes > 0 {
		cfg.MinRest = time.Duration(req.MinRestMinutes) * time.Minute
	}

	return req.EventID, cfg, nil
}

func timeOnDate(date time.Time, clock string) (time.Time, error) {
	parsed, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}

// writeEngineError maps engine errors onto HTTP statuses. Legality rejections
// are 409s with a structured body so clients can branch on the reason code.
func writeEngineError(w http.ResponseWriter, r *http.Request, err error, message string) {
	logger := log.Ctx(r.Context())

	var violation *gamescheduler.Violation
	if errors.As(err, &violation) {
		logger.Info().
			Str("reason", string(violation.Code)).
			Msg("Placement rejected")
		if werr := apiutil.WriteJSON(w, http.StatusConflict, newViolationResponse(violation)); werr != nil {
			logger.Error().Err(werr).Msg("Failed to write violation response")
		}
		return
	}

	herr := apiutil.HandlerError{Status: http.StatusInternalServerError, Message: message, Err: err}
	switch {
	case errors.Is(err, gamescheduler.ErrInvalidPlan):
		herr.Status = http.StatusBadRequest
		herr.Message = err.Error()
	case errors.Is(err, gamescheduler.ErrEventNotFound),
		errors.Is(err, gamescheduler.ErrGameNotFound),
		errors.Is(err, gamescheduler.ErrCourtNotFound):
		herr.Status = http.StatusNotFound
		herr.Message = err.Error()
	default:
		logger.Error().Err(herr.Unwrap()).Msg(herr.Message)
	}
	http.Error(w, herr.Error(), herr.Status)
}
