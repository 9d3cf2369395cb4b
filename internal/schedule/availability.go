// internal/schedule/availability.go

// Package schedule implements the game scheduling core: an availability
// index over committed placements, a pure constraint evaluator, a
// deterministic batch planner with preview/apply modes, and the mutator that
// commits placements with re-validation at write time.
package schedule

import (
	"context"
	"time"

	"github.com/rallydesk/rallydesk/internal/db"
)

// Interval is a half-open [Start, End) occupancy span.
type Interval struct {
	Start time.Time
	End   time.Time
}

func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start.Before(other.End) && other.Start.Before(iv.End)
}

// Index holds, for one date, the occupied intervals per court and per team.
// Team intervals span all courts: a team is busy regardless of where it
// plays. An Index is either a snapshot of committed games or a provisional
// copy grown during a planning pass; it never touches storage once built.
type Index struct {
	courts map[int64][]Interval
	teams  map[int64][]Interval
}

func NewIndex() *Index {
	return &Index{
		courts: make(map[int64][]Interval),
		teams:  make(map[int64][]Interval),
	}
}

// LoadIndex reads the committed games on the given day and builds an index
// with interval ends derived from gameDuration. A day with no games yields an
// empty index, not an error.
func LoadIndex(ctx context.Context, q *db.Queries, day time.Time, gameDuration time.Duration) (*Index, error) {
	return LoadIndexExcluding(ctx, q, day, gameDuration, 0)
}

// LoadIndexExcluding is LoadIndex minus one game, used when re-validating a
// move of an already-scheduled game so it does not conflict with itself.
func LoadIndexExcluding(ctx context.Context, q *db.Queries, day time.Time, gameDuration time.Duration, excludeGameID int64) (*Index, error) {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	games, err := q.ListScheduledGamesInRange(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}

	idx := NewIndex()
	for _, game := range games {
		if game.ID == excludeGameID {
			continue
		}
		if !game.ScheduledAt.Valid || !game.CourtID.Valid {
			continue
		}
		start := game.ScheduledAt.Time
		idx.Occupy(game.CourtID.Int64, game.HomeTeamID, game.AwayTeamID, Interval{
			Start: start,
			End:   start.Add(gameDuration),
		})
	}
	return idx, nil
}

// Occupy records a placement: the court interval plus one interval for each
// team.
func (idx *Index) Occupy(courtID, homeTeamID, awayTeamID int64, iv Interval) {
	idx.courts[courtID] = insertSorted(idx.courts[courtID], iv)
	idx.teams[homeTeamID] = insertSorted(idx.teams[homeTeamID], iv)
	idx.teams[awayTeamID] = insertSorted(idx.teams[awayTeamID], iv)
}

// Clone returns an independent copy for provisional use during planning.
func (idx *Index) Clone() *Index {
	clone := NewIndex()
	for courtID, intervals := range idx.courts {
		clone.courts[courtID] = append([]Interval(nil), intervals...)
	}
	for teamID, intervals := range idx.teams {
		clone.teams[teamID] = append([]Interval(nil), intervals...)
	}
	return clone
}

// CourtIntervals returns the occupied intervals for a court, sorted by start.
func (idx *Index) CourtIntervals(courtID int64) []Interval {
	return idx.courts[courtID]
}

// TeamIntervals returns the occupied intervals for a team across all courts,
// sorted by start.
func (idx *Index) TeamIntervals(teamID int64) []Interval {
	return idx.teams[teamID]
}

func insertSorted(intervals []Interval, iv Interval) []Interval {
	i := 0
	for i < len(intervals) && intervals[i].Start.Before(iv.Start) {
		i++
	}
	intervals = append(intervals, Interval{})
	copy(intervals[i+1:], intervals[i:])
	intervals[i] = iv
	return intervals
}
