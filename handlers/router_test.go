package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/middleware"
	"nfl-playoff-pickem/models"
	"nfl-playoff-pickem/services"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const season = 2025

type testServer struct {
	router http.Handler
	repos  *database.Repositories
	store  *database.MemoryStore
	token  string
}

// newTestServer wires the real services over a memory store. Game 401 kicks
// off tomorrow and game 402 kicked off an hour ago.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	repos, store := database.NewMemoryRepositories()

	require.NoError(t, services.NewTeamSeeder(repos.Teams).SeedTeams(ctx))
	require.NoError(t, services.NewUserSeeder(repos.Users).SeedUsers(ctx, []models.User{
		{ID: 1, Name: "ANDREW", Email: "andrew@pickem.local"},
		{ID: 2, Name: "BARDIA", Email: "bardia@pickem.local"},
	}))
	now := time.Now().UTC()
	store.PutGame(&models.Game{ID: 401, Season: season, Week: models.WeekWildCard, HomeTeamID: 12, AwayTeamID: 34, ScheduledStartTime: now.Add(24 * time.Hour), Status: models.GameStatusScheduled})
	store.PutGame(&models.Game{ID: 402, Season: season, Week: models.WeekWildCard, HomeTeamID: 2, AwayTeamID: 33, ScheduledStartTime: now.Add(-time.Hour), Status: models.GameStatusScheduled})

	standings := services.NewStandingsService(repos.Games, repos.Picks, repos.Users)
	pipeline := &services.Pipeline{
		Locks:    services.NewLockEngine(repos.Games, repos.Picks),
		Backfill: services.NewAutoPickService(repos.Games, repos.Picks, repos.Users),
		Feed:     services.NewFeedSyncService(repos.Games, repos.Picks, services.NewDemoFeed(now)),
		Scoring:  services.NewScoringService(repos.Games, repos.Picks),
		Stats:    services.NewStatsService(standings, repos.Stats),
	}
	auth := services.NewAuthService(services.AdminAuthConfig{Secret: "handler-test-secret"})
	token, err := auth.GenerateToken("ops@pickem.local")
	require.NoError(t, err)

	router := NewRouter(RouterConfig{
		API:   NewAPIHandler(services.NewGameService(repos.Games, repos.Teams), services.NewPickService(repos.Games, repos.Picks, repos.Users), standings),
		Admin: NewAdminHandler(services.NewAdminService(repos, pipeline)),
		Auth:  middleware.NewAuthMiddleware(auth),
	})
	return &testServer{router: router, repos: repos, store: store, token: token}
}

func (s *testServer) do(t *testing.T, method, path, body string, admin bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if admin {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitPickHTTP(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/seasons/2025/picks", `{"user_id":1,"game_id":401,"team_id":34}`, false)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pick models.Pick
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &pick))
	assert.Equal(t, 34, pick.SelectedTeamID)
	assert.Equal(t, models.PickOutcomePending, pick.Outcome)

	rec = s.do(t, http.MethodGet, "/api/seasons/2025/users/1/picks?week=1", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var picks []models.Pick
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &picks))
	assert.Len(t, picks, 1)
}

func TestLatePickIsConflict(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/seasons/2025/picks", `{"user_id":1,"game_id":402,"team_id":2}`, false)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, `{"error":"picks are locked"}`, strings.TrimSpace(rec.Body.String()))
	assert.Zero(t, s.store.PickCount())
}

func TestSubmitPickValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"user_id":`, http.StatusBadRequest},
		{"unknown field", `{"user_id":1,"game_id":401,"team_id":34,"confidence":3}`, http.StatusBadRequest},
		{"missing team", `{"user_id":1,"game_id":401}`, http.StatusBadRequest},
		{"negative guess", `{"user_id":1,"game_id":401,"team_id":34,"tiebreaker_guess":-4}`, http.StatusBadRequest},
		{"team not in game", `{"user_id":1,"game_id":401,"team_id":21}`, http.StatusBadRequest},
		{"unknown user", `{"user_id":99,"game_id":401,"team_id":34}`, http.StatusNotFound},
		{"unknown game", `{"user_id":1,"game_id":999,"team_id":34}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, http.MethodPost, "/api/seasons/2025/picks", tt.body, false)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
	assert.Zero(t, s.store.PickCount())
}

func TestReadEndpoints(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/teams", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var teams []models.Team
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &teams))
	assert.Len(t, teams, 32)

	rec = s.do(t, http.MethodGet, "/api/seasons/2025/games?week=1", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var games []models.Game
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &games))
	assert.Len(t, games, 2)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/seasons/2025/games?week=9", "", false).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/seasons/2025/games?week=x", "", false).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/api/games/401", "", false).Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/games/999", "", false).Code)

	rec = s.do(t, http.MethodGet, "/api/seasons/2025/standings", "", false)
	require.Equal(t, http.StatusOK, rec.Code)
	var standings []models.RankedStanding
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &standings))
	require.Len(t, standings, 2)
	assert.Equal(t, 1, standings[0].Rank)
	assert.Equal(t, 1, standings[1].Rank)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/admin/games/401/lock", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")

	req := httptest.NewRequest(http.MethodPost, "/api/admin/games/401/lock", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	game, err := s.repos.Games.FindByID(context.Background(), 401)
	require.NoError(t, err)
	assert.False(t, game.IsLocked)
}

func TestAdminForceLockAndAudit(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/admin/games/401/lock", "", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/seasons/2025/picks", `{"user_id":1,"game_id":401,"team_id":34}`, false)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/admin/audit?season=2025", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	var entries []models.AuditEntry
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "ops@pickem.local", entries[0].Actor)
	assert.Equal(t, models.AdminActionForceLock, entries[0].Action)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/admin/audit", "", true).Code)
}

func TestAdminUnlockAndCorrectResult(t *testing.T) {
	s := newTestServer(t)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/admin/games/402/unlock", `{"reason":""}`, true).Code)

	rec := s.do(t, http.MethodPost, "/api/admin/games/402/result", `{"home_score":27,"away_score":24}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var game models.Game
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &game))
	assert.Equal(t, models.GameStatusFinal, game.Status)
	require.NotNil(t, game.WinningTeamID)
	assert.Equal(t, 2, *game.WinningTeamID)

	rec = s.do(t, http.MethodPost, "/api/admin/games/402/result", `{"home_score":24,"away_score":24}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/admin/games/402/unlock", `{"reason":"score typo"}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "final games stay locked")
}

func TestAdminJobsAndReset(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/admin/seasons/2025/jobs/lock-check", "", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var report services.JobReport
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, services.JobLockCheck, report.Job)
	assert.Equal(t, 2, s.store.PickCount(), "both users auto-picked on the started game")

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/admin/seasons/2025/jobs/nope", "", true).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodPost, "/api/admin/seasons/2025/stats", "", true).Code)

	rec = s.do(t, http.MethodPost, "/api/admin/picks", `{"user_id":1,"game_id":402,"team_id":33}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var pick models.Pick
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &pick))
	assert.Equal(t, 33, pick.SelectedTeamID)
	assert.True(t, pick.Locked)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/admin/seasons/2025", "", true).Code)
	assert.Zero(t, s.store.PickCount())
}

func TestHealthAndSecurityHeaders(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))

	failing := NewRouter(RouterConfig{
		API:    &APIHandler{},
		Admin:  &AdminHandler{},
		Auth:   middleware.NewAuthMiddleware(nil),
		Health: func(*http.Request) error { return errors.New("mongo ping failed") },
	})
	rec = httptest.NewRecorder()
	failing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
