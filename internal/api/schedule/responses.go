// internal/api/schedule/responses.go
package schedule

import (
	"time"

	appdb "github.com/rallydesk/rallydesk/internal/db"
	gamescheduler "github.com/rallydesk/rallydesk/internal/schedule"
)

type unscheduledGameJSON struct {
	ID           int64  `json:"id"`
	EventID      *int64 `json:"eventId,omitempty"`
	HomeTeamID   int64  `json:"homeTeamId"`
	AwayTeamID   int64  `json:"awayTeamId"`
	HomeTeamName string `json:"homeTeamName"`
	AwayTeamName string `json:"awayTeamName"`
	GameType     string `json:"gameType"`
	Division     string `json:"division,omitempty"`
	AgeGroup     string `json:"ageGroup,omitempty"`
}

type scheduledGameJSON struct {
	ID           int64  `json:"id"`
	EventID      *int64 `json:"eventId,omitempty"`
	HomeTeamID   int64  `json:"homeTeamId"`
	AwayTeamID   int64  `json:"awayTeamId"`
	HomeTeamName string `json:"homeTeamName"`
	AwayTeamName string `json:"awayTeamName"`
	GameType     string `json:"gameType"`
	Division     string `json:"division,omitempty"`
	AgeGroup     string `json:"ageGroup,omitempty"`
	ScheduledAt  string `json:"scheduledAt"`
	CourtID      int64  `json:"courtId"`
	CourtName    string `json:"courtName"`
	VenueID      int64  `json:"venueId"`
	VenueName    string `json:"venueName"`
}

type courtJSON struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type venueJSON struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Courts []courtJSON `json:"courts"`
}

type eventJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
}

type scheduleViewResponse struct {
	Date             string                `json:"date"`
	UnscheduledGames []unscheduledGameJSON `json:"unscheduledGames"`
	ScheduledGames   []scheduledGameJSON   `json:"scheduledGames"`
	Venues           []venueJSON           `json:"venues"`
	Events           []eventJSON           `json:"events"`
	Divisions        []string              `json:"divisions"`
}

type plannedGameJSON struct {
	GameID       int64  `json:"gameId"`
	HomeTeamName string `json:"homeTeamName"`
	AwayTeamName string `json:"awayTeamName"`
	GameType     string `json:"gameType"`
	CourtID      int64  `json:"courtId"`
	CourtName    string `json:"courtName"`
	VenueName    string `json:"venueName"`
	StartAt      string `json:"startAt"`
	EndAt        string `json:"endAt"`
}

type unplacedGameJSON struct {
	GameID       int64  `json:"gameId"`
	HomeTeamName string `json:"homeTeamName"`
	AwayTeamName string `json:"awayTeamName"`
	ReasonCode   string `json:"reasonCode"`
	Message      string `json:"message"`
}

type planStatsJSON struct {
	TotalGames         int `json:"totalGames"`
	ScheduledCount     int `json:"scheduledCount"`
	UnscheduledCount   int `json:"unscheduledCount"`
	UtilizationPercent int `json:"utilizationPercent"`
}

type planResponse struct {
	Scheduled   []plannedGameJSON  `json:"scheduled"`
	Unscheduled []unplacedGameJSON `json:"unscheduled"`
	Stats       planStatsJSON      `json:"stats"`
}

type rejectedGameJSON struct {
	GameID       int64  `json:"gameId"`
	HomeTeamName string `json:"homeTeamName"`
	AwayTeamName string `json:"awayTeamName"`
	ReasonCode   string `json:"reasonCode"`
	Message      string `json:"message"`
}

type applyResponse struct {
	Plan      planResponse       `json:"plan"`
	Committed []plannedGameJSON  `json:"committed"`
	Rejected  []rejectedGameJSON `json:"rejected"`
}

type gameJSON struct {
	ID          int64  `json:"id"`
	EventID     *int64 `json:"eventId,omitempty"`
	HomeTeamID  int64  `json:"homeTeamId"`
	AwayTeamID  int64  `json:"awayTeamId"`
	GameType    string `json:"gameType"`
	Division    string `json:"division,omitempty"`
	AgeGroup    string `json:"ageGroup,omitempty"`
	ScheduledAt string `json:"scheduledAt,omitempty"`
	CourtID     *int64 `json:"courtId,omitempty"`
}

type violationResponse struct {
	Rejected   bool   `json:"rejected"`
	ReasonCode string `json:"reasonCode"`
	Message    string `json:"message"`
	CourtID    int64  `json:"courtId,omitempty"`
	TeamID     int64  `json:"teamId,omitempty"`
}

func newScheduleViewResponse(view *gamescheduler.ScheduleView) scheduleViewResponse {
	resp := scheduleViewResponse{
		Date:             view.Date.Format("2006-01-02"),
		UnscheduledGames: make([]unscheduledGameJSON, 0, len(view.UnscheduledGames)),
		ScheduledGames:   make([]scheduledGameJSON, 0, len(view.ScheduledGames)),
		Venues:           make([]venueJSON, 0, len(view.Venues)),
		Events:           make([]eventJSON, 0, len(view.Events)),
		Divisions:        view.Divisions,
	}
	if resp.Divisions == nil {
		resp.Divisions = []string{}
	}

	for _, game := range view.UnscheduledGames {
		resp.UnscheduledGames = append(resp.UnscheduledGames, unscheduledGameJSON{
			ID:           game.ID,
			EventID:      nullInt64Ptr(game.EventID.Int64, game.EventID.Valid),
			HomeTeamID:   game.HomeTeamID,
			AwayTeamID:   game.AwayTeamID,
			HomeTeamName: game.HomeTeamName,
			AwayTeamName: game.AwayTeamName,
			GameType:     game.GameType,
			Division:     game.Division.String,
			AgeGroup:     game.AgeGroup.String,
		})
	}
	for _, game := range view.ScheduledGames {
		resp.ScheduledGames = append(resp.ScheduledGames, scheduledGameJSON{
			ID:           game.ID,
			EventID:      nullInt64Ptr(game.EventID.Int64, game.EventID.Valid),
			HomeTeamID:   game.HomeTeamID,
			AwayTeamID:   game.AwayTeamID,
			HomeTeamName: game.HomeTeamName,
			AwayTeamName: game.AwayTeamName,
			GameType:     game.GameType,
			Division:     game.Division.String,
			AgeGroup:     game.AgeGroup.String,
			ScheduledAt:  game.ScheduledAt.Format(time.RFC3339),
			CourtID:      game.CourtID,
			CourtName:    game.CourtName,
			VenueID:      game.VenueID,
			VenueName:    game.VenueName,
		})
	}
	for _, venue := range view.Venues {
		v := venueJSON{
			ID:     venue.Venue.ID,
			Name:   venue.Venue.Name,
			Courts: make([]courtJSON, 0, len(venue.Courts)),
		}
		for _, court := range venue.Courts {
			v.Courts = append(v.Courts, courtJSON{ID: court.ID, Name: court.Name})
		}
		resp.Venues = append(resp.Venues, v)
	}
	for _, event := range view.Events {
		resp.Events = append(resp.Events, eventJSON{
			ID:        event.ID,
			Name:      event.Name,
			StartDate: event.StartDate.Format("2006-01-02"),
			EndDate:   event.EndDate.Format("2006-01-02"),
		})
	}
	return resp
}

func newPlanResponse(result *gamescheduler.PlacementResult) planResponse {
	resp := planResponse{
		Scheduled:   make([]plannedGameJSON, 0, len(result.Scheduled)),
		Unscheduled: make([]unplacedGameJSON, 0, len(result.Unscheduled)),
		Stats: planStatsJSON{
			TotalGames:         result.Stats.TotalGames,
			ScheduledCount:     result.Stats.ScheduledCount,
			UnscheduledCount:   result.Stats.UnscheduledCount,
			UtilizationPercent: result.Stats.UtilizationPercent,
		},
	}
	for _, planned := range result.Scheduled {
		resp.Scheduled = append(resp.Scheduled, newPlannedGameJSON(planned))
	}
	for _, unplaced := range result.Unscheduled {
		resp.Unscheduled = append(resp.Unscheduled, unplacedGameJSON{
			GameID:       unplaced.GameID,
			HomeTeamName: unplaced.HomeTeamName,
			AwayTeamName: unplaced.AwayTeamName,
			ReasonCode:   string(unplaced.Reason),
			Message:      unplaced.Message,
		})
	}
	return resp
}

func newApplyResponse(result *gamescheduler.ApplyResult) applyResponse {
	resp := applyResponse{
		Plan:      newPlanResponse(result.Plan),
		Committed: make([]plannedGameJSON, 0, len(result.Committed)),
		Rejected:  make([]rejectedGameJSON, 0, len(result.Rejected)),
	}
	for _, committed := range result.Committed {
		resp.Committed = append(resp.Committed, newPlannedGameJSON(committed))
	}
	for _, rejected := range result.Rejected {
		resp.Rejected = append(resp.Rejected, rejectedGameJSON{
			GameID:       rejected.GameID,
			HomeTeamName: rejected.HomeTeamName,
			AwayTeamName: rejected.AwayTeamName,
			ReasonCode:   string(rejected.Reason),
			Message:      rejected.Message,
		})
	}
	return resp
}

func newPlannedGameJSON(planned gamescheduler.PlannedGame) plannedGameJSON {
	return plannedGameJSON{
		GameID:       planned.GameID,
		HomeTeamName: planned.HomeTeamName,
		AwayTeamName: planned.AwayTeamName,
		GameType:     planned.GameType,
		CourtID:      planned.CourtID,
		CourtName:    planned.CourtName,
		VenueName:    planned.VenueName,
		StartAt:      planned.StartAt.Format(time.RFC3339),
		EndAt:        planned.EndAt.Format(time.RFC3339),
	}
}

func newGameResponse(game appdb.Game) gameJSON {
	resp := gameJSON{
		ID:         game.ID,
		EventID:    nullInt64Ptr(game.EventID.Int64, game.EventID.Valid),
		HomeTeamID: game.HomeTeamID,
		AwayTeamID: game.AwayTeamID,
		GameType:   game.GameType,
		Division:   game.Division.String,
		AgeGroup:   game.AgeGroup.String,
		CourtID:    nullInt64Ptr(game.CourtID.Int64, game.CourtID.Valid),
	}
	if game.ScheduledAt.Valid {
		resp.ScheduledAt = game.ScheduledAt.Time.Format(time.RFC3339)
	}
	return resp
}

func newViolationResponse(v *gamescheduler.Violation) violationResponse {
	return violationResponse{
		Rejected:   true,
		ReasonCode: string(v.Code),
		Message:    v.Message,
		CourtID:    v.CourtID,
		TeamID:     v.TeamID,
	}
}

func nullInt64Ptr(value int64, valid bool) *int64 {
	if !valid {
		return nil
	}
	return &value
}
