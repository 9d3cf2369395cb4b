package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/rallydesk/rallydesk/internal/config"
	"github.com/rallydesk/rallydesk/internal/db"
	"github.com/rallydesk/rallydesk/internal/schedule"
)

const auditJobTimeout = 2 * time.Minute

// RegisterAuditJob registers a nightly sweep over the committed schedule. The
// write path already re-validates every commit, so a finding here means the
// data was changed outside the engine (manual SQL, a restore, an old bug) and
// an operator should look at it.
func RegisterAuditJob(svc *Service, database *db.DB, cfg config.AuditConfig, scheduling config.SchedulingConfig) error {
	if svc == nil {
		return ErrNotInitialized
	}
	if database == nil {
		return fmt.Errorf("audit job requires database")
	}
	if !cfg.Enabled {
		log.Info().Msg("Schedule audit job disabled")
		return nil
	}

	jobName := "schedule_integrity_audit"
	jobLogger := log.With().
		Str("component", "schedule_audit_job").
		Str("job_name", jobName).
		Logger()

	gameDuration := time.Duration(scheduling.GameDurationMinutes) * time.Minute

	_, err := svc.AddJob(jobName, cfg.CronExpression, func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditJobTimeout)
		defer cancel()
		ctx = jobLogger.WithContext(ctx)

		findings, err := AuditSchedule(ctx, database.Queries, gameDuration)
		if err != nil {
			jobLogger.Error().Err(err).Msg("Schedule audit failed")
			return
		}
		if len(findings) == 0 {
			jobLogger.Info().Msg("Schedule audit clean")
			return
		}
		for _, finding := range findings {
			jobLogger.Warn().
				Int64("game_id", finding.GameID).
				Int64("other_game_id", finding.OtherGameID).
				Str("kind", finding.Kind).
				Msg("Schedule audit finding")
		}
		jobLogger.Warn().Int("findings", len(findings)).Msg("Schedule audit found conflicts")
	}, gocron.WithSingletonMode(gocron.LimitModeWait))
	if err != nil {
		return fmt.Errorf("add schedule audit job: %w", err)
	}
	return nil
}

// AuditFinding is one conflict between two committed games.
type AuditFinding struct {
	Kind        string // "court_overlap" or "team_overlap"
	GameID      int64
	OtherGameID int64
}

// AuditSchedule scans every committed game for court and team overlaps.
func AuditSchedule(ctx context.Context, q *db.Queries, gameDuration time.Duration) ([]AuditFinding, error) {
	games, err := q.ListAllScheduledGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("list scheduled games: %w", err)
	}

	var findings []AuditFinding
	for i, a := range games {
		ia := schedule.Interval{Start: a.ScheduledAt.Time, End: a.ScheduledAt.Time.Add(gameDuration)}
		for _, b := range games[i+1:] {
			ib := schedule.Interval{Start: b.ScheduledAt.Time, End: b.ScheduledAt.Time.Add(gameDuration)}
			if !ia.Overlaps(ib) {
				continue
			}
			if a.CourtID.Int64 == b.CourtID.Int64 {
				findings = append(findings, AuditFinding{Kind: "court_overlap", GameID: a.ID, OtherGameID: b.ID})
			}
			if sharesTeam(a, b) {
				findings = append(findings, AuditFinding{Kind: "team_overlap", GameID: a.ID, OtherGameID: b.ID})
			}
		}
	}
	return findings, nil
}

func sharesTeam(a, b db.Game) bool {
	return a.HomeTeamID == b.HomeTeamID || a.HomeTeamID == b.AwayTeamID ||
		a.AwayTeamID == b.HomeTeamID || a.AwayTeamID == b.AwayTeamID
}
