package services

import (
	"bufio"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nfl-playoff-pickem/models"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countLines(t *testing.T, path string) int {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	n := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		n++
	}
	require.NoError(t, scanner.Err())
	return n
}

func TestCreateBackup(t *testing.T) {
	f := newFixture(t)
	f.addUsers("ANDREW", "BARDIA")
	f.addGame(401, models.WeekWildCard, teamKC, teamHOU, kickoff)
	_, err := f.submit(1, 401, teamKC, nil)
	require.NoError(t, err)
	require.NoError(t, f.admin.ForceLock(f.ctx, operator, 401))

	dir := t.TempDir()
	backups := NewBackupService(f.repos, dir)
	backups.now = f.clock.Now

	path, err := backups.CreateBackup(f.ctx, testSeason)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "backup_2025_2026-01-09_21-30-00"), path)

	raw, err := os.ReadFile(filepath.Join(path, "manifest.json"))
	require.NoError(t, err)
	var manifest BackupManifest
	require.NoError(t, sonic.Unmarshal(raw, &manifest))
	assert.Equal(t, testSeason, manifest.Season)
	assert.Equal(t, map[string]int{
		"teams":       0,
		"users":       2,
		"games":       1,
		"picks":       2,
		"user_stats":  0,
		"admin_audit": 1,
	}, manifest.Counts)

	assert.Equal(t, 2, countLines(t, filepath.Join(path, "picks.jsonl")))

	first, err := os.ReadFile(filepath.Join(path, "games.jsonl"))
	require.NoError(t, err)
	var game models.Game
	require.NoError(t, sonic.Unmarshal(first, &game))
	assert.Equal(t, 401, game.ID)
	assert.True(t, game.IsLocked)
}

func TestCleanupOldBackups(t *testing.T) {
	dir := t.TempDir()
	backups := NewBackupService(nil, dir)
	backups.now = func() time.Time { return kickoff }

	old := filepath.Join(dir, "backup_2024_old")
	fresh := filepath.Join(dir, "backup_2025_fresh")
	unrelated := filepath.Join(dir, "notes")
	for _, d := range []string{old, fresh, unrelated} {
		require.NoError(t, os.Mkdir(d, 0o755))
	}
	require.NoError(t, os.Chtimes(old, kickoff.Add(-60*24*time.Hour), kickoff.Add(-60*24*time.Hour)))
	require.NoError(t, os.Chtimes(fresh, kickoff.Add(-time.Hour), kickoff.Add(-time.Hour)))
	require.NoError(t, os.Chtimes(unrelated, kickoff.Add(-90*24*time.Hour), kickoff.Add(-90*24*time.Hour)))

	deleted, err := backups.CleanupOldBackups(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
	assert.NoDirExists(t, old)
	assert.DirExists(t, fresh)
	assert.DirExists(t, unrelated)

	deleted, err = backups.CleanupOldBackups(0)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}
