// internal/schedule/engine.go
package schedule

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/rallydesk/rallydesk/internal/config"
	appdb "github.com/rallydesk/rallydesk/internal/db"
)

var (
	ErrEventNotFound = errors.New("event not found")
	ErrGameNotFound  = errors.New("game not found")
	ErrCourtNotFound = errors.New("court not found")
)

// Engine is the scheduling core's entry point. It holds no cross-request
// state: every operation reads fresh data and every commit re-validates
// inside its own transaction.
type Engine struct {
	db       *appdb.DB
	defaults config.SchedulingConfig
}

func NewEngine(database *appdb.DB, defaults config.SchedulingConfig) (*Engine, error) {
	if database == nil {
		return nil, errors.New("scheduling engine requires a database")
	}
	return &Engine{db: database, defaults: defaults}, nil
}

// DefaultPlanConfig builds a PlanConfig for the given date from the
// configured defaults. Callers override individual fields before planning.
func (e *Engine) DefaultPlanConfig(date time.Time) (PlanConfig, error) {
	windowStart, err := timeOfDayOn(date, e.defaults.WindowStart)
	if err != nil {
		return PlanConfig{}, fmt.Errorf("%w: window start: %v", ErrInvalidPlan, err)
	}
	windowEnd, err := timeOfDayOn(date, e.defaults.WindowEnd)
	if err != nil {
		return PlanConfig{}, fmt.Errorf("%w: window end: %v", ErrInvalidPlan, err)
	}
	return PlanConfig{
		Date:         date,
		WindowStart:  windowStart,
		WindowEnd:    windowEnd,
		GameDuration: time.Duration(e.defaults.GameDurationMinutes) * time.Minute,
		MinRest:      time.Duration(e.defaults.MinRestMinutes) * time.Minute,
	}, nil
}

// ViewFilters narrows a schedule view to one event or division.
type ViewFilters struct {
	EventID  *int64
	Division *string
}

type VenueWithCourts struct {
	Venue  appdb.Venue
	Courts []appdb.ListCourtsRow
}

// ScheduleView is the read model for the scheduling board: the unscheduled
// pool, the committed grid, and the directory data the board is drawn from.
type ScheduleView struct {
	Date             time.Time
	UnscheduledGames []appdb.UnscheduledGameRow
	ScheduledGames   []appdb.ScheduledGameRow
	Venues           []VenueWithCourts
	Events           []appdb.Event
	Divisions        []string
}

// View assembles the schedule view for one date. Pure read.
func (e *Engine) View(ctx context.Context, date time.Time, filters ViewFilters) (*ScheduleView, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidPlan)
	}

	q := e.db.Queries
	eventID := toNullInt64(filters.EventID)
	division := toNullString(filters.Division)

	unscheduled, err := q.ListUnscheduledGames(ctx, appdb.ListUnscheduledGamesParams{
		EventID:  eventID,
		Division: division,
	})
	if err != nil {
		return nil, fmt.Errorf("list unscheduled games: %w", err)
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	scheduled, err := q.ListScheduledGamesByDate(ctx, appdb.ListScheduledGamesByDateParams{
		DayStart: dayStart,
		DayEnd:   dayStart.AddDate(0, 0, 1),
		EventID:  eventID,
		Division: division,
	})
	if err != nil {
		return nil, fmt.Errorf("list scheduled games: %w", err)
	}

	venues, err := q.ListVenues(ctx)
	if err != nil {
		return nil, fmt.Errorf("list venues: %w", err)
	}
	courts, err := q.ListCourts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courts: %w", err)
	}
	events, err := q.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	divisions, err := q.ListGameDivisions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list divisions: %w", err)
	}

	return &ScheduleView{
		Date:             dayStart,
		UnscheduledGames: unscheduled,
		ScheduledGames:   scheduled,
		Venues:           groupCourtsByVenue(venues, courts),
		Events:           events,
		Divisions:        divisions,
	}, nil
}

// Preview runs the planner without persisting anything. The result is exactly
// what Apply would commit if nothing changes underneath.
func (e *Engine) Preview(ctx context.Context, eventID int64, cfg PlanConfig) (*PlacementResult, error) {
	games, courts, idx, err := e.planInputs(ctx, eventID, cfg)
	if err != nil {
		return nil, err
	}

	result := Plan(cfg, games, courts, idx)

	log.Ctx(ctx).Info().
		Str("component", "schedule_engine").
		Int64("event_id", eventID).
		Time("date", cfg.Date).
		Int("total", result.Stats.TotalGames).
		Int("scheduled", result.Stats.ScheduledCount).
		Int("unscheduled", result.Stats.UnscheduledCount).
		Msg("Previewed auto-schedule")

	return result, nil
}

// RejectedGame is a planned placement that failed commit-time re-validation,
// typically because a concurrent operator took the cell after planning.
type RejectedGame struct {
	GameID       int64
	HomeTeamName string
	AwayTeamName string
	Reason       ReasonCode
	Message      string
}

type ApplyResult struct {
	Plan      *PlacementResult
	Committed []PlannedGame
	Rejected  []RejectedGame
}

// Apply re-runs the identical planning algorithm on fresh data and commits
// the scheduled list one placement at a time. Each commit re-validates inside
// its own transaction, so a placement lost to a concurrent write is rejected
// with a reason instead of overwriting; already-committed games stay
// committed. On an infrastructure error the partial result is returned
// alongside the error.
func (e *Engine) Apply(ctx context.Context, eventID int64, cfg PlanConfig) (*ApplyResult, error) {
	logger := log.Ctx(ctx).With().
		Str("component", "schedule_engine").
		Int64("event_id", eventID).
		Time("date", cfg.Date).
		Logger()

	games, courts, idx, err := e.planInputs(ctx, eventID, cfg)
	if err != nil {
		return nil, err
	}

	plan := Plan(cfg, games, courts, idx)
	result := &ApplyResult{Plan: plan}
	window := Window{Start: cfg.WindowStart, End: cfg.WindowEnd}

	for _, planned := range plan.Scheduled {
		candidate := Candidate{
			GameID:       planned.GameID,
			HomeTeamID:   planned.HomeTeamID,
			AwayTeamID:   planned.AwayTeamID,
			HomeTeamName: planned.HomeTeamName,
			AwayTeamName: planned.AwayTeamName,
			CourtID:      planned.CourtID,
			CourtName:    planned.CourtName,
			Start:        planned.StartAt,
			Duration:     cfg.GameDuration,
		}
		if _, err := e.commitPlacement(ctx, candidate, window, cfg.MinRest); err != nil {
			var violation *Violation
			if errors.As(err, &violation) {
				logger.Warn().
					Int64("game_id", planned.GameID).
					Str("reason", string(violation.Code)).
					Msg("Placement rejected at commit time")
				result.Rejected = append(result.Rejected, RejectedGame{
					GameID:       planned.GameID,
					HomeTeamName: planned.HomeTeamName,
					AwayTeamName: planned.AwayTeamName,
					Reason:       violation.Code,
					Message:      violation.Message,
				})
				continue
			}
			logger.Error().Err(err).Int64("game_id", planned.GameID).Msg("Failed to commit placement")
			return result, fmt.Errorf("commit placement for game %d: %w", planned.GameID, err)
		}
		result.Committed = append(result.Committed, planned)
	}

	logger.Info().
		Int("planned", len(plan.Scheduled)).
		Int("committed", len(result.Committed)).
		Int("rejected", len(result.Rejected)).
		Msg("Applied auto-schedule")

	return result, nil
}

// PlaceGame commits one manual placement of a game onto (court, start). The
// game may be unscheduled or already placed elsewhere; its own current
// placement does not conflict with the move. Legality is checked against the
// configured default window, duration, and rest.
func (e *Engine) PlaceGame(ctx context.Context, gameID, courtID int64, startAt time.Time) (appdb.Game, error) {
	q := e.db.Queries

	game, err := q.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appdb.Game{}, fmt.Errorf("%w: game %d", ErrGameNotFound, gameID)
		}
		return appdb.Game{}, fmt.Errorf("load game %d: %w", gameID, err)
	}

	court, err := q.GetCourt(ctx, courtID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appdb.Game{}, fmt.Errorf("%w: court %d", ErrCourtNotFound, courtID)
		}
		return appdb.Game{}, fmt.Errorf("load court %d: %w", courtID, err)
	}

	homeTeam, err := q.GetTeam(ctx, game.HomeTeamID)
	if err != nil {
		return appdb.Game{}, fmt.Errorf("load team %d: %w", game.HomeTeamID, err)
	}
	awayTeam, err := q.GetTeam(ctx, game.AwayTeamID)
	if err != nil {
		return appdb.Game{}, fmt.Errorf("load team %d: %w", game.AwayTeamID, err)
	}

	cfg, err := e.DefaultPlanConfig(startAt)
	if err != nil {
		return appdb.Game{}, err
	}
	if err := e.checkSlotAligned(cfg, startAt); err != nil {
		return appdb.Game{}, err
	}

	candidate := Candidate{
		GameID:       game.ID,
		HomeTeamID:   game.HomeTeamID,
		AwayTeamID:   game.AwayTeamID,
		HomeTeamName: homeTeam.Name,
		AwayTeamName: awayTeam.Name,
		CourtID:      court.ID,
		CourtName:    court.Name,
		Start:        startAt,
		Duration:     cfg.GameDuration,
	}

	updated, err := e.commitPlacement(ctx, candidate, Window{Start: cfg.WindowStart, End: cfg.WindowEnd}, cfg.MinRest)
	if err != nil {
		return appdb.Game{}, err
	}

	log.Ctx(ctx).Info().
		Str("component", "schedule_engine").
		Int64("game_id", gameID).
		Int64("court_id", courtID).
		Time("start_at", startAt).
		Msg("Placed game")

	return updated, nil
}

// UnscheduleGame clears a game's placement, returning it to the unscheduled
// pool. Clearing is always legal and idempotent: unscheduling an already
// unscheduled game is a no-op success.
func (e *Engine) UnscheduleGame(ctx context.Context, gameID int64) error {
	q := e.db.Queries

	game, err := q.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: game %d", ErrGameNotFound, gameID)
		}
		return fmt.Errorf("load game %d: %w", gameID, err)
	}
	if !game.ScheduledAt.Valid {
		return nil
	}

	if _, err := q.ClearGameSchedule(ctx, gameID); err != nil {
		return fmt.Errorf("clear game %d: %w", gameID, err)
	}

	log.Ctx(ctx).Info().
		Str("component", "schedule_engine").
		Int64("game_id", gameID).
		Msg("Unscheduled game")

	return nil
}

// checkSlotAligned rejects manual placements whose start time falls off the
// configured slot grid. The grid is anchored at the window start; only the
// interactive path is snapped, the batch planner steps freely in
// duration-sized increments.
func (e *Engine) checkSlotAligned(cfg PlanConfig, startAt time.Time) error {
	if e.defaults.SlotMinutes <= 0 {
		return nil
	}
	slot := time.Duration(e.defaults.SlotMinutes) * time.Minute
	if startAt.Sub(cfg.WindowStart)%slot != 0 {
		return fmt.Errorf("%w: start time %s is not on the %d-minute slot grid",
			ErrInvalidPlan, startAt.Format("15:04"), e.defaults.SlotMinutes)
	}
	return nil
}

// planInputs validates the config, checks the event, and loads the
// unscheduled pool, court list, and a fresh availability index.
func (e *Engine) planInputs(ctx context.Context, eventID int64, cfg PlanConfig) ([]appdb.UnscheduledGameRow, []appdb.ListCourtsRow, *Index, error) {
	if eventID <= 0 {
		return nil, nil, nil, fmt.Errorf("%w: event is required", ErrInvalidPlan)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	q := e.db.Queries

	if _, err := q.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, fmt.Errorf("%w: event %d", ErrEventNotFound, eventID)
		}
		return nil, nil, nil, fmt.Errorf("load event %d: %w", eventID, err)
	}

	games, err := q.ListUnscheduledGames(ctx, appdb.ListUnscheduledGamesParams{
		EventID: sql.NullInt64{Int64: eventID, Valid: true},
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list unscheduled games: %w", err)
	}

	courts, err := q.ListCourts(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("list courts: %w", err)
	}

	idx, err := LoadIndex(ctx, q, cfg.Date, cfg.GameDuration)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load availability index: %w", err)
	}

	return games, courts, idx, nil
}

// commitPlacement is the single write path for placements. It re-validates
// against an index read inside the same transaction as the write, so a
// concurrent commit that took the cell first causes a Violation here instead
// of a silent overwrite.
func (e *Engine) commitPlacement(ctx context.Context, c Candidate, w Window, minRest time.Duration) (appdb.Game, error) {
	var updated appdb.Game
	err := e.db.RunInTx(ctx, func(txdb *appdb.DB) error {
		idx, err := LoadIndexExcluding(ctx, txdb.Queries, c.Start, c.Duration, c.GameID)
		if err != nil {
			return fmt.Errorf("load availability index: %w", err)
		}
		if violation := Evaluate(idx, w, minRest, c); violation != nil {
			return violation
		}
		updated, err = txdb.Queries.UpdateGameSchedule(ctx, appdb.UpdateGameScheduleParams{
			ScheduledAt: c.Start,
			CourtID:     c.CourtID,
			ID:          c.GameID,
		})
		if err != nil {
			return fmt.Errorf("update game schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return appdb.Game{}, err
	}
	return updated, nil
}

func groupCourtsByVenue(venues []appdb.Venue, courts []appdb.ListCourtsRow) []VenueWithCourts {
	grouped := make([]VenueWithCourts, 0, len(venues))
	for _, venue := range venues {
		entry := VenueWithCourts{Venue: venue}
		for _, court := range courts {
			if court.VenueID == venue.ID {
				entry.Courts = append(entry.Courts, court)
			}
		}
		grouped = append(grouped, entry)
	}
	return grouped
}

func toNullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func toNullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}
