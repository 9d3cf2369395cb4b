// internal/db/games.go
package db

import (
	"context"
	"database/sql"
	"time"
)

const getGame = `
SELECT id, event_id, home_team_id, away_team_id, game_type, division, age_group, scheduled_at, court_id
FROM games
WHERE id = ?
`

func (q *Queries) GetGame(ctx context.Context, id int64) (Game, error) {
	var g Game
	err := q.db.QueryRowContext(ctx, getGame, id).Scan(
		&g.ID,
		&g.EventID,
		&g.HomeTeamID,
		&g.AwayTeamID,
		&g.GameType,
		&g.Division,
		&g.AgeGroup,
		&g.ScheduledAt,
		&g.CourtID,
	)
	return g, err
}

const listUnscheduledGames = `
SELECT g.id, g.event_id, g.home_team_id, g.away_team_id, g.game_type, g.division, g.age_group,
       ht.name AS home_team_name, at.name AS away_team_name
FROM games g
JOIN teams ht ON ht.id = g.home_team_id
JOIN teams at ON at.id = g.away_team_id
WHERE g.scheduled_at IS NULL
  AND (?1 IS NULL OR g.event_id = ?1)
  AND (?2 IS NULL OR g.division = ?2)
ORDER BY g.id
`

type ListUnscheduledGamesParams struct {
	EventID  sql.NullInt64
	Division sql.NullString
}

type UnscheduledGameRow struct {
	ID           int64
	EventID      sql.NullInt64
	HomeTeamID   int64
	AwayTeamID   int64
	GameType     string
	Division     sql.NullString
	AgeGroup     sql.NullString
	HomeTeamName string
	AwayTeamName string
}

func (q *Queries) ListUnscheduledGames(ctx context.Context, arg ListUnscheduledGamesParams) ([]UnscheduledGameRow, error) {
	rows, err := q.db.QueryContext(ctx, listUnscheduledGames, arg.EventID, arg.Division)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []UnscheduledGameRow
	for rows.Next() {
		var g UnscheduledGameRow
		if err := rows.Scan(
			&g.ID,
			&g.EventID,
			&g.HomeTeamID,
			&g.AwayTeamID,
			&g.GameType,
			&g.Division,
			&g.AgeGroup,
			&g.HomeTeamName,
			&g.AwayTeamName,
		); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

const listScheduledGamesByDate = `
SELECT g.id, g.event_id, g.home_team_id, g.away_team_id, g.game_type, g.division, g.age_group,
       g.scheduled_at, g.court_id,
       ht.name AS home_team_name, at.name AS away_team_name,
       c.name AS court_name, v.id AS venue_id, v.name AS venue_name
FROM games g
JOIN teams ht ON ht.id = g.home_team_id
JOIN teams at ON at.id = g.away_team_id
JOIN courts c ON c.id = g.court_id
JOIN venues v ON v.id = c.venue_id
WHERE g.scheduled_at >= ?1 AND g.scheduled_at < ?2
  AND (?3 IS NULL OR g.event_id = ?3)
  AND (?4 IS NULL OR g.division = ?4)
ORDER BY g.scheduled_at, c.id, g.id
`

type ListScheduledGamesByDateParams struct {
	DayStart time.Time
	DayEnd   time.Time
	EventID  sql.NullInt64
	Division sql.NullString
}

type ScheduledGameRow struct {
	ID           int64
	EventID      sql.NullInt64
	HomeTeamID   int64
	AwayTeamID   int64
	GameType     string
	Division     sql.NullString
	AgeGroup     sql.NullString
	ScheduledAt  time.Time
	CourtID      int64
	HomeTeamName string
	AwayTeamName string
	CourtName    string
	VenueID      int64
	VenueName    string
}

func (q *Queries) ListScheduledGamesByDate(ctx context.Context, arg ListScheduledGamesByDateParams) ([]ScheduledGameRow, error) {
	rows, err := q.db.QueryContext(ctx, listScheduledGamesByDate, arg.DayStart, arg.DayEnd, arg.EventID, arg.Division)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []ScheduledGameRow
	for rows.Next() {
		var g ScheduledGameRow
		if err := rows.Scan(
			&g.ID,
			&g.EventID,
			&g.HomeTeamID,
			&g.AwayTeamID,
			&g.GameType,
			&g.Division,
			&g.AgeGroup,
			&g.ScheduledAt,
			&g.CourtID,
			&g.HomeTeamName,
			&g.AwayTeamName,
			&g.CourtName,
			&g.VenueID,
			&g.VenueName,
		); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

const listScheduledGamesInRange = `
SELECT id, event_id, home_team_id, away_team_id, game_type, division, age_group, scheduled_at, court_id
FROM games
WHERE scheduled_at >= ?1 AND scheduled_at < ?2
ORDER BY scheduled_at, id
`

// ListScheduledGamesInRange returns committed games in [dayStart, dayEnd)
// without joins; the availability index only needs ids and times.
func (q *Queries) ListScheduledGamesInRange(ctx context.Context, dayStart, dayEnd time.Time) ([]Game, error) {
	rows, err := q.db.QueryContext(ctx, listScheduledGamesInRange, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGames(rows)
}

const listAllScheduledGames = `
SELECT id, event_id, home_team_id, away_team_id, game_type, division, age_group, scheduled_at, court_id
FROM games
WHERE scheduled_at IS NOT NULL
ORDER BY scheduled_at, id
`

func (q *Queries) ListAllScheduledGames(ctx context.Context) ([]Game, error) {
	rows, err := q.db.QueryContext(ctx, listAllScheduledGames)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGames(rows)
}

func scanGames(rows *sql.Rows) ([]Game, error) {
	var games []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(
			&g.ID,
			&g.EventID,
			&g.HomeTeamID,
			&g.AwayTeamID,
			&g.GameType,
			&g.Division,
			&g.AgeGroup,
			&g.ScheduledAt,
			&g.CourtID,
		); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

const listGameDivisions = `
SELECT DISTINCT division
FROM games
WHERE division IS NOT NULL
ORDER BY division
`

func (q *Queries) ListGameDivisions(ctx context.Context) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listGameDivisions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var divisions []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		divisions = append(divisions, d)
	}
	return divisions, rows.Err()
}

const updateGameSchedule = `
UPDATE games
SET scheduled_at = ?1, court_id = ?2
WHERE id = ?3
RETURNING id, event_id, home_team_id, away_team_id, game_type, division, age_group, scheduled_at, court_id
`

type UpdateGameScheduleParams struct {
	ScheduledAt time.Time
	CourtID     int64
	ID          int64
}

func (q *Queries) UpdateGameSchedule(ctx context.Context, arg UpdateGameScheduleParams) (Game, error) {
	var g Game
	err := q.db.QueryRowContext(ctx, updateGameSchedule, arg.ScheduledAt, arg.CourtID, arg.ID).Scan(
		&g.ID,
		&g.EventID,
		&g.HomeTeamID,
		&g.AwayTeamID,
		&g.GameType,
		&g.Division,
		&g.AgeGroup,
		&g.ScheduledAt,
		&g.CourtID,
	)
	return g, err
}

const clearGameSchedule = `
UPDATE games
SET scheduled_at = NULL, court_id = NULL
WHERE id = ?1
RETURNING id, event_id, home_team_id, away_team_id, game_type, division, age_group, scheduled_at, court_id
`

func (q *Queries) ClearGameSchedule(ctx context.Context, id int64) (Game, error) {
	var g Game
	err := q.db.QueryRowContext(ctx, clearGameSchedule, id).Scan(
		&g.ID,
		&g.EventID,
		&g.HomeTeamID,
		&g.AwayTeamID,
		&g.GameType,
		&g.Division,
		&g.AgeGroup,
		&g.ScheduledAt,
		&g.CourtID,
	)
	return g, err
}
