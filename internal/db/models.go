// internal/db/models.go
package db

import (
	"database/sql"
	"time"
)

type Venue struct {
	ID   int64
	Name string
}

type Court struct {
	ID      int64
	VenueID int64
	Name    string
}

type Team struct {
	ID   int64
	Name string
}

type Event struct {
	ID        int64
	Name      string
	StartDate time.Time
	EndDate   time.Time
}

type Game struct {
	ID          int64
	EventID     sql.NullInt64
	HomeTeamID  int64
	AwayTeamID  int64
	GameType    string
	Division    sql.NullString
	AgeGroup    sql.NullString
	ScheduledAt sql.NullTime
	CourtID     sql.NullInt64
}
