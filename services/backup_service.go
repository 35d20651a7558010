package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/logging"

	"github.com/bytedance/sonic"
)

const backupDirPrefix = "backup_"

// BackupService writes a season snapshot as JSON lines, one file per
// collection. It goes through the repositories, so it works on either store.
type BackupService struct {
	repos     *database.Repositories
	backupDir string
	now       func() time.Time
	logger    *logging.Logger
}

// BackupManifest is written next to the collection files
type BackupManifest struct {
	Season    int            `json:"season"`
	CreatedAt time.Time      `json:"created_at"`
	Counts    map[string]int `json:"counts"`
	Version   string         `json:"version"`
}

func NewBackupService(repos *database.Repositories, backupDir string) *BackupService {
	return &BackupService{
		repos:     repos,
		backupDir: backupDir,
		now:       time.Now,
		logger:    logging.WithPrefix("BackupService"),
	}
}

// CreateBackup snapshots a season and returns the backup directory
func (bs *BackupService) CreateBackup(ctx context.Context, season int) (string, error) {
	timestamp := bs.now().UTC().Format("2006-01-02_15-04-05")
	backupPath := filepath.Join(bs.backupDir, fmt.Sprintf("%s%d_%s", backupDirPrefix, season, timestamp))

	bs.logger.Infof("Starting backup of season %d to %s", season, backupPath)
	if err := os.MkdirAll(backupPath, 0o755); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	collections := []struct {
		name  string
		fetch func() ([]interface{}, error)
	}{
		{"teams", func() ([]interface{}, error) {
			teams, err := bs.repos.Teams.FindAll(ctx)
			return asRows(teams, err)
		}},
		{"users", func() ([]interface{}, error) {
			users, err := bs.repos.Users.FindAll(ctx)
			return asRows(users, err)
		}},
		{"games", func() ([]interface{}, error) {
			games, err := bs.repos.Games.FindBySeason(ctx, season)
			return asRows(games, err)
		}},
		{"picks", func() ([]interface{}, error) {
			picks, err := bs.repos.Picks.FindBySeason(ctx, season)
			return asRows(picks, err)
		}},
		{"user_stats", func() ([]interface{}, error) {
			stats, err := bs.repos.Stats.FindBySeason(ctx, season)
			return asRows(stats, err)
		}},
		{"admin_audit", func() ([]interface{}, error) {
			entries, err := bs.repos.Audit.FindBySeason(ctx, season)
			return asRows(entries, err)
		}},
	}

	manifest := BackupManifest{Season: season, CreatedAt: bs.now().UTC(), Counts: map[string]int{}, Version: "1"}
	for _, c := range collections {
		rows, err := c.fetch()
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", c.name, err)
		}
		if err := writeJSONLines(filepath.Join(backupPath, c.name+".jsonl"), rows); err != nil {
			return "", fmt.Errorf("failed to back up %s: %w", c.name, err)
		}
		manifest.Counts[c.name] = len(rows)
		bs.logger.Debugf("Backed up %d documents from %s", len(rows), c.name)
	}

	out, err := sonic.ConfigStd.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(backupPath, "manifest.json"), out, 0o644); err != nil {
		return "", fmt.Errorf("failed to write manifest: %w", err)
	}

	bs.logger.Infow("backup completed", "season", season, "path", backupPath, "picks", manifest.Counts["picks"])
	return backupPath, nil
}

// asRows erases the element type so every collection shares one writer
func asRows[T any](items []T, err error) ([]interface{}, error) {
	if err != nil {
		return nil, err
	}
	rows := make([]interface{}, len(items))
	for i := range items {
		rows[i] = items[i]
	}
	return rows, nil
}

func writeJSONLines(path string, rows []interface{}) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := sonic.ConfigStd.NewEncoder(file)
	for _, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return err
		}
	}
	return file.Sync()
}

// CleanupOldBackups removes backup directories older than retention
func (bs *BackupService) CleanupOldBackups(retention time.Duration) (int, error) {
	if retention <= 0 {
		bs.logger.Info("Backup cleanup disabled (retention <= 0)")
		return 0, nil
	}

	cutoff := bs.now().Add(-retention)
	entries, err := os.ReadDir(bs.backupDir)
	if err != nil {
		return 0, fmt.Errorf("failed to read backup directory: %w", err)
	}

	deleted := 0
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), backupDirPrefix) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			bs.logger.Warnf("Failed to get info for %s: %v", entry.Name(), err)
			continue
		}
		if info.ModTime().Before(cutoff) {
			if err := os.RemoveAll(filepath.Join(bs.backupDir, entry.Name())); err != nil {
				bs.logger.Warnf("Failed to remove old backup %s: %v", entry.Name(), err)
				continue
			}
			deleted++
		}
	}

	bs.logger.Infof("Cleanup completed. Removed %d old backups", deleted)
	return deleted, nil
}
