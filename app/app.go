package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"nfl-playoff-pickem/config"
	"nfl-playoff-pickem/database"
	"nfl-playoff-pickem/handlers"
	"nfl-playoff-pickem/interfaces"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/middleware"
	"nfl-playoff-pickem/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App holds the wired services shared by the server and the admin CLI
type App struct {
	Config   *config.Config
	Repos    *database.Repositories
	DB       *database.MongoDB // nil in demo mode
	Feed     interfaces.ScoreFeed
	Registry *prometheus.Registry
	Demo     bool

	Pipeline  *services.Pipeline
	Loader    *services.ScheduleLoader
	Teams     *services.TeamSeeder
	Users     *services.UserSeeder
	Games     *services.GameService
	Picks     *services.PickService
	Standings *services.StandingsService
	Stats     *services.StatsService
	Admin     *services.AdminService
	Auth      *services.AuthService

	logger *logging.Logger
}

// New connects storage and wires every service. When MongoDB is unreachable
// and the fallback is allowed, it runs on the in-memory store with the demo feed.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{
		Config:   cfg,
		Registry: prometheus.NewRegistry(),
		logger:   logging.WithPrefix("App"),
	}

	connectCtx, cancel := database.WithMediumTimeout(ctx)
	defer cancel()

	db, err := database.NewMongoConnection(connectCtx, cfg.ToDatabaseConfig())
	switch {
	case err == nil:
		a.DB = db
		a.Repos = database.NewMongoRepositories(db)
		a.Feed = services.NewESPNFeed(cfg.ToFeedConfig())
	case cfg.Database.AllowMemoryFallback:
		a.logger.Warnf("Database connection failed: %v", err)
		a.logger.Warn("Continuing on the in-memory store with the demo feed")
		a.Demo = true
		a.Repos, _ = database.NewMemoryRepositories()
		// First Wild Card game a couple of hours out so picks are still open
		a.Feed = services.NewDemoFeed(time.Now().Add(2 * time.Hour).Truncate(time.Hour))
	default:
		return nil, fmt.Errorf("connect database: %w", err)
	}

	a.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	r := a.Repos
	a.Standings = services.NewStandingsService(r.Games, r.Picks, r.Users)
	a.Pipeline = &services.Pipeline{
		Locks:    services.NewLockEngine(r.Games, r.Picks),
		Backfill: services.NewAutoPickService(r.Games, r.Picks, r.Users),
		Feed:     services.NewFeedSyncService(r.Games, r.Picks, a.Feed),
		Scoring:  services.NewScoringService(r.Games, r.Picks),
		Stats:    services.NewStatsService(a.Standings, r.Stats),
	}
	a.Stats = a.Pipeline.Stats
	a.Loader = services.NewScheduleLoader(a.Feed, r.Games, r.Teams)
	a.Teams = services.NewTeamSeeder(r.Teams)
	a.Users = services.NewUserSeeder(r.Users)
	a.Games = services.NewGameService(r.Games, r.Teams)
	a.Picks = services.NewPickService(r.Games, r.Picks, r.Users)
	a.Admin = services.NewAdminService(r, a.Pipeline)
	a.Auth = services.NewAuthService(cfg.ToAuthConfig())

	return a, nil
}

// Seed loads teams, the default roster and the season's schedule. Every step
// is an idempotent upsert.
func (a *App) Seed(ctx context.Context, season int) error {
	if err := a.Teams.SeedTeams(ctx); err != nil {
		return fmt.Errorf("seed teams: %w", err)
	}
	if err := a.Users.SeedUsers(ctx, services.DefaultRoster); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	report, err := a.Loader.Load(ctx, season)
	if err != nil {
		return fmt.Errorf("load schedule: %w", err)
	}
	report.Log(a.logger)
	return nil
}

// Scheduler builds the periodic job runner for the configured season
func (a *App) Scheduler() *services.Scheduler {
	metrics := services.NewJobMetrics(a.Registry)
	tasks := a.Pipeline.Tasks(a.Config.App.CurrentSeason, a.Config.ToJobIntervals())
	return services.NewScheduler(metrics, tasks...)
}

// Router builds the HTTP handler tree
func (a *App) Router() http.Handler {
	return handlers.NewRouter(handlers.RouterConfig{
		API:     handlers.NewAPIHandler(a.Games, a.Picks, a.Standings),
		Admin:   handlers.NewAdminHandler(a.Admin),
		Auth:    middleware.NewAuthMiddleware(a.Auth),
		Metrics: promhttp.HandlerFor(a.Registry, promhttp.HandlerOpts{}),
		Health: func(r *http.Request) error {
			if a.DB == nil {
				return nil
			}
			return a.DB.Ping(r.Context())
		},
		BehindProxy: a.Config.Server.BehindProxy,
	})
}

// Close releases the database connection
func (a *App) Close() {
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			a.logger.Errorf("Error closing database: %v", err)
		}
	}
}
