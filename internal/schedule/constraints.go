// internal/schedule/constraints.go
package schedule

import (
	"fmt"
	"time"
)

// ReasonCode identifies why a placement is illegal. Codes are part of the API
// surface; clients branch on them.
type ReasonCode string

const (
	ReasonWindow           ReasonCode = "WINDOW"
	ReasonCourtConflict    ReasonCode = "COURT_CONFLICT"
	ReasonTeamRest         ReasonCode = "TEAM_REST"
	ReasonTeamDoubleBooked ReasonCode = "TEAM_DOUBLE_BOOKED"
)

// reasonRank orders codes by how actionable the explanation is for a
// director; higher wins when a game fails on multiple candidates.
func reasonRank(code ReasonCode) int {
	switch code {
	case ReasonTeamDoubleBooked:
		return 3
	case ReasonTeamRest:
		return 2
	case ReasonCourtConflict:
		return 1
	default:
		return 0
	}
}

// Violation is a legality rejection. It implements error so the mutator can
// return it out of a transaction, but it is always recoverable: the caller
// reports it, nothing is fatal.
type Violation struct {
	Code    ReasonCode
	Message string
	CourtID int64 // set for COURT_CONFLICT
	TeamID  int64 // set for TEAM_REST and TEAM_DOUBLE_BOOKED
}

func (v *Violation) Error() string {
	return v.Message
}

// Window bounds a scheduling run on one date. End is exclusive: a game may
// end exactly at End.
type Window struct {
	Start time.Time
	End   time.Time
}

// Candidate is one (game, court, start) placement under evaluation. Display
// names feed the human-readable violation messages.
type Candidate struct {
	GameID       int64
	HomeTeamID   int64
	AwayTeamID   int64
	HomeTeamName string
	AwayTeamName string
	CourtID      int64
	CourtName    string
	Start        time.Time
	Duration     time.Duration
}

func (c Candidate) interval() Interval {
	return Interval{Start: c.Start, End: c.Start.Add(c.Duration)}
}

// Evaluate decides whether the candidate placement is legal against the given
// index. Rules run in order and the first violation wins: operating window,
// court conflict, then per-team double-booking and rest. The check is pure;
// it never reads storage, so the planner can call it against a growing
// provisional index.
func Evaluate(idx *Index, w Window, minRest time.Duration, c Candidate) *Violation {
	candidate := c.interval()

	if candidate.Start.Before(w.Start) || candidate.End.After(w.End) {
		return &Violation{
			Code: ReasonWindow,
			Message: fmt.Sprintf("game %d at %s–%s falls outside the %s–%s window",
				c.GameID, clockTime(candidate.Start), clockTime(candidate.End),
				clockTime(w.Start), clockTime(w.End)),
		}
	}

	for _, occupied := range idx.CourtIntervals(c.CourtID) {
		if occupied.Overlaps(candidate) {
			return &Violation{
				Code:    ReasonCourtConflict,
				CourtID: c.CourtID,
				Message: fmt.Sprintf("court %s is already booked %s–%s",
					courtLabel(c), clockTime(occupied.Start), clockTime(occupied.End)),
			}
		}
	}

	teams := []struct {
		id   int64
		name string
	}{
		{c.HomeTeamID, c.HomeTeamName},
		{c.AwayTeamID, c.AwayTeamName},
	}
	for _, team := range teams {
		for _, occupied := range idx.TeamIntervals(team.id) {
			// Any overlap is illegal regardless of the configured rest.
			if occupied.Overlaps(candidate) {
				return &Violation{
					Code:   ReasonTeamDoubleBooked,
					TeamID: team.id,
					Message: fmt.Sprintf("team %s is already playing %s–%s",
						teamLabel(team.id, team.name), clockTime(occupied.Start), clockTime(occupied.End)),
				}
			}
			if gap := gapBetween(candidate, occupied); gap < minRest {
				return &Violation{
					Code:   ReasonTeamRest,
					TeamID: team.id,
					Message: fmt.Sprintf("team %s has a game %s–%s within the %s rest interval",
						teamLabel(team.id, team.name), clockTime(occupied.Start), clockTime(occupied.End),
						minRest),
				}
			}
		}
	}

	return nil
}

// gapBetween returns the distance between two non-overlapping intervals.
func gapBetween(a, b Interval) time.Duration {
	if !a.End.After(b.Start) {
		return b.Start.Sub(a.End)
	}
	return a.Start.Sub(b.End)
}

func clockTime(t time.Time) string {
	return t.Format("15:04")
}

func courtLabel(c Candidate) string {
	if c.CourtName != "" {
		return c.CourtName
	}
	return fmt.Sprintf("%d", c.CourtID)
}

func teamLabel(id int64, name string) string {
	if name != "" {
		return name
	}
	return fmt.Sprintf("%d", id)
}
