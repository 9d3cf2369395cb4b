// internal/schedule/planner.go
package schedule

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rallydesk/rallydesk/internal/db"
)

// PlannedGame is one proposed placement from a planning pass.
type PlannedGame struct {
	GameID       int64
	HomeTeamID   int64
	AwayTeamID   int64
	HomeTeamName string
	AwayTeamName string
	GameType     string
	CourtID      int64
	CourtName    string
	VenueName    string
	StartAt      time.Time
	EndAt        time.Time
}

// UnplacedGame is a game the planner could not fit, with the most specific
// reason seen across all rejected candidates.
type UnplacedGame struct {
	GameID       int64
	HomeTeamName string
	AwayTeamName string
	Reason       ReasonCode
	Message      string
}

type PlanStats struct {
	TotalGames         int
	ScheduledCount     int
	UnscheduledCount   int
	UtilizationPercent int
}

// PlacementResult is the ephemeral output of one planning run. PREVIEW
// returns it as-is; APPLY feeds the Scheduled list to the mutator.
type PlacementResult struct {
	Scheduled   []PlannedGame
	Unscheduled []UnplacedGame
	Stats       PlanStats
}

// Plan greedily places games onto (court, start) slots without touching
// storage. Given the same games, courts, config, and index it always produces
// the same result; preview and apply rely on that.
//
// Games go in priority order (bracket and championship games are harder to
// reschedule later), courts in their stable venue-then-name order, and start
// times ascend from the window start in duration-sized steps. The first legal
// candidate wins and is recorded in a provisional copy of the index so later
// games see it.
func Plan(cfg PlanConfig, games []db.UnscheduledGameRow, courts []db.ListCourtsRow, idx *Index) *PlacementResult {
	ordered := make([]db.UnscheduledGameRow, len(games))
	copy(ordered, games)
	sort.SliceStable(ordered, func(i, j int) bool {
		pi, pj := gameTypePriority(ordered[i].GameType), gameTypePriority(ordered[j].GameType)
		if pi != pj {
			return pi < pj
		}
		return ordered[i].ID < ordered[j].ID
	})

	window := Window{Start: cfg.WindowStart, End: cfg.WindowEnd}
	provisional := idx.Clone()
	result := &PlacementResult{}

	for _, game := range ordered {
		placed := false
		var bestViolation *Violation

		for _, court := range courts {
			for start := cfg.WindowStart; !start.Add(cfg.GameDuration).After(cfg.WindowEnd); start = start.Add(cfg.GameDuration) {
				candidate := Candidate{
					GameID:       game.ID,
					HomeTeamID:   game.HomeTeamID,
					AwayTeamID:   game.AwayTeamID,
					HomeTeamName: game.HomeTeamName,
					AwayTeamName: game.AwayTeamName,
					CourtID:      court.ID,
					CourtName:    court.Name,
					Start:        start,
					Duration:     cfg.GameDuration,
				}
				violation := Evaluate(provisional, window, cfg.MinRest, candidate)
				if violation == nil {
					provisional.Occupy(court.ID, game.HomeTeamID, game.AwayTeamID, candidate.interval())
					result.Scheduled = append(result.Scheduled, PlannedGame{
						GameID:       game.ID,
						HomeTeamID:   game.HomeTeamID,
						AwayTeamID:   game.AwayTeamID,
						HomeTeamName: game.HomeTeamName,
						AwayTeamName: game.AwayTeamName,
						GameType:     game.GameType,
						CourtID:      court.ID,
						CourtName:    court.Name,
						VenueName:    court.VenueName,
						StartAt:      start,
						EndAt:        start.Add(cfg.GameDuration),
					})
					placed = true
					break
				}
				if bestViolation == nil || reasonRank(violation.Code) > reasonRank(bestViolation.Code) {
					bestViolation = violation
				}
			}
			if placed {
				break
			}
		}

		if !placed {
			unplaced := UnplacedGame{
				GameID:       game.ID,
				HomeTeamName: game.HomeTeamName,
				AwayTeamName: game.AwayTeamName,
			}
			if bestViolation != nil {
				unplaced.Reason = bestViolation.Code
				unplaced.Message = bestViolation.Message
			} else {
				// No candidates at all: the window cannot fit a single game.
				unplaced.Reason = ReasonWindow
				unplaced.Message = "no start time fits the configured window"
			}
			result.Unscheduled = append(result.Unscheduled, unplaced)
		}
	}

	result.Stats = buildStats(cfg, len(games), result.Scheduled, len(courts))
	return result
}

// gameTypePriority orders game types for planning: championship and bracket
// games first, pool play and everything else after.
func gameTypePriority(gameType string) int {
	switch strings.ToLower(strings.TrimSpace(gameType)) {
	case "championship":
		return 0
	case "bracket", "playoff", "elimination":
		return 1
	default:
		return 2
	}
}

func buildStats(cfg PlanConfig, total int, scheduled []PlannedGame, courtCount int) PlanStats {
	stats := PlanStats{
		TotalGames:       total,
		ScheduledCount:   len(scheduled),
		UnscheduledCount: total - len(scheduled),
	}

	windowLength := cfg.WindowEnd.Sub(cfg.WindowStart)
	capacity := windowLength * time.Duration(courtCount)
	if capacity > 0 {
		used := cfg.GameDuration * time.Duration(len(scheduled))
		stats.UtilizationPercent = int(math.Round(float64(used) / float64(capacity) * 100))
	}
	return stats
}
