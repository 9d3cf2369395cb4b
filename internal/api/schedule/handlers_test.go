package schedule

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rallydesk/rallydesk/internal/config"
	"github.com/rallydesk/rallydesk/internal/db"
	gamescheduler "github.com/rallydesk/rallydesk/internal/schedule"
	"github.com/rallydesk/rallydesk/internal/testutil"
)

func setupHandlers(t *testing.T) *db.DB {
	t.Helper()

	database := testutil.NewTestDB(t)
	engine, err := gamescheduler.NewEngine(database, config.SchedulingConfig{
		WindowStart:         "08:00",
		WindowEnd:           "22:00",
		SlotMinutes:         30,
		GameDurationMinutes: 60,
		MinRestMinutes:      30,
	})
	if err != nil {
		t.Fatalf("create engine: %v", err)
	}
	InitHandlers(engine)
	t.Cleanup(func() { InitHandlers(nil) })

	return database
}

func seedBoard(t *testing.T, database *db.DB) {
	t.Helper()

	stmts := []string{
		`INSERT INTO venues (name) VALUES ('Riverside')`,
		`INSERT INTO courts (venue_id, name) VALUES (1, 'Court 1'), (1, 'Court 2')`,
		`INSERT INTO teams (name) VALUES ('Aces'), ('Breakers'), ('Smashers'), ('Drifters')`,
		`INSERT INTO events (name, start_date, end_date)
		 VALUES ('Summer Classic', '2026-06-01', '2026-06-07')`,
		`INSERT INTO games (event_id, home_team_id, away_team_id, game_type, division)
		 VALUES (1, 1, 2, 'pool', 'open'), (1, 3, 4, 'pool', 'open')`,
	}
	for _, stmt := range stmts {
		if _, err := database.Exec(stmt); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
}

func postJSON(t *testing.T, handler http.HandlerFunc, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	r := httptest.NewRequest(http.MethodPost, target, bytes.NewReader(payload))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func TestHandleScheduleView(t *testing.T) {
	database := setupHandlers(t)
	seedBoard(t, database)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/schedule?date=2026-06-01", nil)
	w := httptest.NewRecorder()
	HandleScheduleView(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Date             string `json:"date"`
		UnscheduledGames []struct {
			ID           int64  `json:"id"`
			HomeTeamName string `json:"homeTeamName"`
		} `json:"unscheduledGames"`
		ScheduledGames []any `json:"scheduledGames"`
		Venues         []struct {
			Name   string `json:"name"`
			Courts []any  `json:"courts"`
		} `json:"venues"`
		Divisions []string `json:"divisions"`
	}
	decodeBody(t, w, &resp)

	if resp.Date != "2026-06-01" {
		t.Errorf("date = %s", resp.Date)
	}
	if len(resp.UnscheduledGames) != 2 {
		t.Errorf("unscheduled = %d, want 2", len(resp.UnscheduledGames))
	}
	if len(resp.ScheduledGames) != 0 {
		t.Errorf("scheduled = %d, want 0", len(resp.ScheduledGames))
	}
	if len(resp.Venues) != 1 || len(resp.Venues[0].Courts) != 2 {
		t.Errorf("venues = %+v", resp.Venues)
	}
}

func TestHandleScheduleViewRequiresDate(t *testing.T) {
	setupHandlers(t)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/schedule", nil)
	w := httptest.NewRecorder()
	HandleScheduleView(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestHandlePreviewAutoSchedule(t *testing.T) {
	database := setupHandlers(t)
	seedBoard(t, database)

	w := postJSON(t, HandlePreviewAutoSchedule, "/api/v1/schedule/preview", map[string]any{
		"eventId": 1,
		"date":    "2026-06-01",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Scheduled []any `json:"scheduled"`
		Stats     struct {
			TotalGames     int `json:"totalGames"`
			ScheduledCount int `json:"scheduledCount"`
		} `json:"stats"`
	}
	decodeBody(t, w, &resp)
	if resp.Stats.TotalGames != 2 || resp.Stats.ScheduledCount != 2 {
		t.Errorf("stats = %+v", resp.Stats)
	}

	// Preview must not persist anything.
	games, err := database.Queries.ListAllScheduledGames(context.Background())
	if err != nil {
		t.Fatalf("list scheduled: %v", err)
	}
	if len(games) != 0 {
		t.Errorf("preview persisted %d games", len(games))
	}
}

func TestHandlePreviewUnknownEvent(t *testing.T) {
	database := setupHandlers(t)
	seedBoard(t, database)

	w := postJSON(t, HandlePreviewAutoSchedule, "/api/v1/schedule/preview", map[string]any{
		"eventId": 42,
		"date":    "2026-06-01",
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestHandleApplyAutoSchedule(t *testing.T) {
	database := setupHandlers(t)
	seedBoard(t, database)

	w := postJSON(t, HandleApplyAutoSchedule, "/api/v1/schedule/apply", map[string]any{
		"eventId":             1,
		"date":                "2026-06-01",
		"startTime":           "09:00",
		"endTime":             "17:00",
		"gameDurationMinutes": 60,
		"minRestMinutes":      30,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Committed []struct {
			GameID  int64  `json:"gameId"`
			StartAt string `json:"startAt"`
		} `json:"committed"`
		Rejected []any `json:"rejected"`
	}
	decodeBody(t, w, &resp)
	if len(resp.Committed) != 2 {
		t.Fatalf("committed = %d, want 2", len(resp.Committed))
	}
	if len(resp.Rejected) != 0 {
		t.Errorf("rejected = %d, want 0", len(resp.Rejected))
	}

	games, err := database.Queries.ListAllScheduledGames(context.Background())
	if err != nil {
		t.Fatalf("list scheduled: %v", err)
	}
	if len(games) != 2 {
		t.Errorf("persisted %d games, want 2", len(games))
	}
	for _, game := range games {
		if game.ScheduledAt.Time.Hour() < 9 {
			t.Errorf("game %d scheduled at %v, before requested window start", game.ID, game.ScheduledAt.Time)
		}
	}
}

func TestHandlePlaceGame(t *testing.T) {
	database := setupHandlers(t)
	seedBoard(t, database)

	w := postJSON(t, HandlePlaceGame, "/api/v1/schedule/place", placeRequest{
		GameID:    1,
		CourtID:   1,
		StartTime: "2026-06-01T09:00:00Z",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		ID          int64  `json:"id"`
		ScheduledAt string `json:"scheduledAt"`
		CourtID     *int64 `json:"courtId"`
	}
	decodeBody(t, w, &resp)
	if resp.ID != 1 || resp.CourtID == nil || *resp.CourtID != 1 {
		t.Errorf("response = %+v", resp)
	}
	if resp.ScheduledAt == "" {
		t.Error("scheduledAt missing")
	}
}

func TestHandlePlaceGameConflict(t *testing.T) {
	database := setupHandlers(t)
	seedBoard(t, database)

	first := postJSON(t, HandlePlaceGame, "/api/v1/schedule/place", placeRequest{
		GameID:    1,
		CourtID:   1,
		StartTime: "2026-06-01T09:00:00Z",
	})
	if first.Code != http.StatusOK {
		t.Fatalf("first placement status = %d", first.Code)
	}

	second := postJSON(t, HandlePlaceGame, "/api/v1/schedule/place", placeRequest{
		GameID:    2,
		CourtID:   1,
		StartTime: "2026-06-01T09:30:00Z",
	})
	if second.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409; body = %s", second.Code, second.Body.String())
	}

	var resp violationResponse
	decodeBody(t, second, &resp)
	if !resp.Rejected {
		t.Error("rejected flag not set")
	}
	if resp.ReasonCode != string(gamescheduler.ReasonCourtConflict) {
		t.Errorf("reasonCode = %s, want %s", resp.ReasonCode, gamescheduler.ReasonCourtConflict)
	}
	if resp.Message == "" {
		t.Error("message missing")
	}
}

func TestHandlePlaceGameValidation(t *testing.T) {
	database := setupHandlers(t)
	seedBoard(t, database)

	tests := []struct {
		name string
		body placeRequest
	}{
		{"missing game", placeRequest{CourtID: 1, StartTime: "2026-06-01T09:00:00Z"}},
		{"missing court", placeRequest{GameID: 1, StartTime: "2026-06-01T09:00:00Z"}},
		{"bad timestamp", placeRequest{GameID: 1, CourtID: 1, StartTime: "not-a-time"}},
		{"off slot grid", placeRequest{GameID: 1, CourtID: 1, StartTime: "2026-06-01T09:10:00Z"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, HandlePlaceGame, "/api/v1/schedule/place", tt.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}

	w := postJSON(t, HandlePlaceGame, "/api/v1/schedule/place", placeRequest{
		GameID:    99,
		CourtID:   1,
		StartTime: "2026-06-01T09:00:00Z",
	})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown game status = %d, want 404", w.Code)
	}
}

func TestHandleUnscheduleGame(t *testing.T) {
	database := setupHandlers(t)
	seedBoard(t, database)

	place := postJSON(t, HandlePlaceGame, "/api/v1/schedule/place", placeRequest{
		GameID:    1,
		CourtID:   1,
		StartTime: "2026-06-01T09:00:00Z",
	})
	if place.Code != http.StatusOK {
		t.Fatalf("place status = %d", place.Code)
	}

	for i := 0; i < 2; i++ {
		w := postJSON(t, HandleUnscheduleGame, "/api/v1/schedule/unschedule", unscheduleRequest{GameID: 1})
		if w.Code != http.StatusOK {
			t.Fatalf("unschedule attempt %d status = %d, body = %s", i, w.Code, w.Body.String())
		}
	}

	game, err := database.Queries.GetGame(context.Background(), 1)
	if err != nil {
		t.Fatalf("get game: %v", err)
	}
	if game.ScheduledAt.Valid || game.CourtID.Valid {
		t.Errorf("game still scheduled: %+v", game)
	}
}

func TestHandleUnscheduleUnknownGame(t *testing.T) {
	database := setupHandlers(t)
	seedBoard(t, database)

	w := postJSON(t, HandleUnscheduleGame, "/api/v1/schedule/unschedule", unscheduleRequest{GameID: 99})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404; body = %s", w.Code, w.Body.String())
	}
}

func TestPreviewThenApplyAgree(t *testing.T) {
	database := setupHandlers(t)
	seedBoard(t, database)

	body := map[string]any{"eventId": 1, "date": "2026-06-01"}

	preview := postJSON(t, HandlePreviewAutoSchedule, "/api/v1/schedule/preview", body)
	if preview.Code != http.StatusOK {
		t.Fatalf("preview status = %d", preview.Code)
	}
	var previewResp struct {
		Scheduled []plannedGameJSON `json:"scheduled"`
	}
	decodeBody(t, preview, &previewResp)

	apply := postJSON(t, HandleApplyAutoSchedule, "/api/v1/schedule/apply", body)
	if apply.Code != http.StatusOK {
		t.Fatalf("apply status = %d", apply.Code)
	}
	var applyResp struct {
		Committed []plannedGameJSON `json:"committed"`
	}
	decodeBody(t, apply, &applyResp)

	if fmt.Sprintf("%+v", previewResp.Scheduled) != fmt.Sprintf("%+v", applyResp.Committed) {
		t.Errorf("preview %+v does not match apply %+v", previewResp.Scheduled, applyResp.Committed)
	}
}
