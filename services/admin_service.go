package services

import (
	"context"
	"fmt"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"

	"github.com/google/uuid"
)

// AdminService holds the out-of-band operations. Every call, successful or
// not, leaves an audit entry.
type AdminService struct {
	repos    *database.Repositories
	pipeline *Pipeline
	now      func() time.Time
	logger   *logging.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(repos *database.Repositories, pipeline *Pipeline) *AdminService {
	return &AdminService{
		repos:    repos,
		pipeline: pipeline,
		now:      time.Now,
		logger:   logging.WithPrefix("Admin"),
	}
}

// record stores the audit entry for an operation and returns the operation's error
func (s *AdminService) record(ctx context.Context, entry models.AuditEntry, opErr error) error {
	entry.ID = uuid.NewString()
	entry.At = s.now()
	entry.Success = opErr == nil
	if opErr != nil {
		if entry.Detail != "" {
			entry.Detail += "; "
		}
		entry.Detail += "error: " + opErr.Error()
	}

	if err := s.repos.Audit.Insert(ctx, &entry); err != nil {
		s.logger.Errorw("failed to write audit entry", "action", entry.Action, "actor", entry.Actor, "err", err)
		if opErr == nil {
			return fmt.Errorf("operation applied but audit failed: %w", err)
		}
	}

	s.logger.Infow("admin action", "actor", entry.Actor, "action", entry.Action, "season", entry.Season, "success", entry.Success)
	return opErr
}

func (s *AdminService) loadGame(ctx context.Context, gameID int) (*models.Game, error) {
	game, err := s.repos.Games.FindByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("load game %d: %w", gameID, err)
	}
	if game == nil {
		return nil, notFoundErrorf("game %d", gameID)
	}
	return game, nil
}

func requireActor(actor string) error {
	if actor == "" {
		return validationErrorf("actor is required")
	}
	return nil
}

// ForceLock locks a game now regardless of kickoff and backfills its picks
func (s *AdminService) ForceLock(ctx context.Context, actor string, gameID int) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	entry := models.AuditEntry{Actor: actor, Action: models.AdminActionForceLock, GameID: &gameID}

	game, err := s.loadGame(ctx, gameID)
	if err != nil {
		return s.record(ctx, entry, err)
	}
	entry.Season = game.Season

	if game.IsLocked {
		entry.Detail = "already locked"
		return s.record(ctx, entry, nil)
	}

	locked, err := s.repos.Games.LockGames(ctx, []int{gameID}, s.now())
	if err == nil {
		err = s.repos.Picks.LockForGames(ctx, locked, true)
	}
	if err == nil {
		var report JobReport
		report, err = s.pipeline.Backfill.BackfillLockedGames(ctx, game.Season)
		entry.Detail = fmt.Sprintf("locked; %d auto picks inserted", report.Succeeded)
	}
	return s.record(ctx, entry, err)
}

// UnlockGame is the only path that sets a game's lock back to false. The lock
// engine relocks it on its next run if kickoff has passed, so this is only
// useful together with a schedule change.
func (s *AdminService) UnlockGame(ctx context.Context, actor string, gameID int, reason string) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	entry := models.AuditEntry{Actor: actor, Action: models.AdminActionUnlockGame, GameID: &gameID, Detail: reason}
	if reason == "" {
		return s.record(ctx, entry, validationErrorf("a reason is required to unlock a game"))
	}

	game, err := s.loadGame(ctx, gameID)
	if err != nil {
		return s.record(ctx, entry, err)
	}
	entry.Season = game.Season
	if game.IsFinal() {
		return s.record(ctx, entry, validationErrorf("game %d is final and cannot be unlocked", gameID))
	}

	err = s.repos.Games.SetLock(ctx, gameID, false, s.now())
	if err == nil {
		err = s.repos.Picks.LockForGames(ctx, []int{gameID}, false)
	}
	return s.record(ctx, entry, err)
}

// OverridePick writes a pick on a game whether or not it is locked, without
// unlocking it. A resolved pick is never overwritten.
func (s *AdminService) OverridePick(ctx context.Context, actor string, req SubmitPickRequest) (*models.Pick, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	userID, gameID := req.UserID, req.GameID
	entry := models.AuditEntry{
		Actor:  actor,
		Action: models.AdminActionOverridePick,
		GameID: &gameID,
		UserID: &userID,
		Detail: fmt.Sprintf("team %d", req.TeamID),
	}

	pick, err := s.overridePick(ctx, req, &entry)
	return pick, s.record(ctx, entry, err)
}

func (s *AdminService) overridePick(ctx context.Context, req SubmitPickRequest, entry *models.AuditEntry) (*models.Pick, error) {
	game, err := s.loadGame(ctx, req.GameID)
	if err != nil {
		return nil, err
	}
	entry.Season = game.Season

	user, err := s.repos.Users.FindByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", req.UserID, err)
	}
	if user == nil {
		return nil, notFoundErrorf("user %d", req.UserID)
	}
	if !game.HasTeam(req.TeamID) {
		return nil, validationErrorf("team %d is not playing in game %d", req.TeamID, game.ID)
	}

	existing, err := s.repos.Picks.FindOne(ctx, req.UserID, req.GameID)
	if err != nil {
		return nil, fmt.Errorf("load existing pick: %w", err)
	}
	if existing != nil && !existing.IsPending() {
		return nil, validationErrorf("pick for user %d game %d is already %s", req.UserID, req.GameID, existing.Outcome)
	}

	pick := models.NewPick(req.UserID, game, req.TeamID, s.now())
	pick.Locked = game.IsLocked
	if models.IsFinalRound(game.Week) && req.TiebreakerGuess != nil {
		g := *req.TiebreakerGuess
		pick.SuperBowlTotalPointsGuess = &g
	}

	stored, err := s.repos.Picks.Upsert(ctx, pick)
	if err != nil {
		return nil, fmt.Errorf("save override pick: %w", err)
	}

	// A pick on an already-final game is scored at once
	if game.IsFinal() {
		if _, err := s.pipeline.Scoring.ScoreGame(ctx, game); err != nil {
			return stored, err
		}
		if scored, err := s.repos.Picks.FindOne(ctx, req.UserID, req.GameID); err == nil && scored != nil {
			stored = scored
		}
	}
	return stored, nil
}

// CorrectGameResult overwrites a game's final score, reopens its picks and
// rescores them, then refreshes the season stats
func (s *AdminService) CorrectGameResult(ctx context.Context, actor string, gameID, homeScore, awayScore int) (*models.Game, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	entry := models.AuditEntry{
		Actor:  actor,
		Action: models.AdminActionCorrectResult,
		GameID: &gameID,
		Detail: fmt.Sprintf("home %d away %d", homeScore, awayScore),
	}

	game, err := s.correctGameResult(ctx, gameID, homeScore, awayScore, &entry)
	return game, s.record(ctx, entry, err)
}

func (s *AdminService) correctGameResult(ctx context.Context, gameID, homeScore, awayScore int, entry *models.AuditEntry) (*models.Game, error) {
	if homeScore < 0 || awayScore < 0 {
		return nil, validationErrorf("scores must not be negative")
	}
	if homeScore == awayScore {
		return nil, validationErrorf("a playoff game cannot end tied")
	}

	game, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	entry.Season = game.Season

	now := s.now()
	if !game.IsLocked {
		if _, err := s.repos.Games.LockGames(ctx, []int{gameID}, now); err != nil {
			return nil, fmt.Errorf("lock game %d: %w", gameID, err)
		}
	}

	game.Status = models.GameStatusFinal
	game.HomeScore, game.AwayScore = &homeScore, &awayScore
	game.WinningTeamID = game.DetermineWinner()
	state := database.GameState{
		Status:        models.GameStatusFinal,
		HomeScore:     game.HomeScore,
		AwayScore:     game.AwayScore,
		WinningTeamID: game.WinningTeamID,
		Quarter:       game.Quarter,
		Clock:         game.Clock,
	}
	if err := s.repos.Games.SetResult(ctx, gameID, state, now); err != nil {
		return nil, fmt.Errorf("set result: %w", err)
	}

	reset, err := s.repos.Picks.ResetGame(ctx, gameID, now)
	if err != nil {
		return nil, fmt.Errorf("reset picks: %w", err)
	}
	if _, err := s.pipeline.Scoring.ScoreGame(ctx, game); err != nil {
		return nil, err
	}
	if _, err := s.pipeline.Stats.RecomputeSeason(ctx, game.Season); err != nil {
		return nil, err
	}
	entry.Detail += fmt.Sprintf("; %d picks rescored", reset)

	return s.repos.Games.FindByID(ctx, gameID)
}

// RecomputeStats rebuilds the season's UserStat rows
func (s *AdminService) RecomputeStats(ctx context.Context, actor string, season int) (JobReport, error) {
	if err := requireActor(actor); err != nil {
		return JobReport{}, err
	}
	report, err := s.pipeline.StatsRefresh(ctx, season)
	entry := models.AuditEntry{
		Actor:  actor,
		Action: models.AdminActionRecomputeStats,
		Season: season,
		Detail: fmt.Sprintf("%d users", report.Succeeded),
	}
	return report, s.record(ctx, entry, err)
}

// RunJob runs one of the periodic jobs by name, through the same code path the scheduler uses
func (s *AdminService) RunJob(ctx context.Context, actor string, season int, name string) (JobReport, error) {
	if err := requireActor(actor); err != nil {
		return JobReport{}, err
	}
	report, err := s.pipeline.Run(ctx, name, season)
	entry := models.AuditEntry{
		Actor:  actor,
		Action: models.AdminActionRunJob,
		Season: season,
		Detail: fmt.Sprintf("%s: succeeded=%d skipped=%d errored=%d", name, report.Succeeded, report.Skipped, report.Errored),
	}
	return report, s.record(ctx, entry, err)
}

// ResetSeason deletes every pick and stat row of a season. Games stay.
func (s *AdminService) ResetSeason(ctx context.Context, actor string, season int) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	entry := models.AuditEntry{Actor: actor, Action: models.AdminActionResetSeason, Season: season}

	picks, err := s.repos.Picks.DeleteSeason(ctx, season)
	if err != nil {
		return s.record(ctx, entry, err)
	}
	stats, err := s.repos.Stats.DeleteSeason(ctx, season)
	entry.Detail = fmt.Sprintf("deleted %d picks, %d stat rows", picks, stats)
	return s.record(ctx, entry, err)
}

// ListAudit returns a season's audit trail, oldest first
func (s *AdminService) ListAudit(ctx context.Context, season int) ([]*models.AuditEntry, error) {
	return s.repos.Audit.FindBySeason(ctx, season)
}
