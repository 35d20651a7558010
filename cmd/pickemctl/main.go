package main

import (
	"fmt"
	"os"
	"time"

	"nfl-playoff-pickem/app"
	"nfl-playoff-pickem/config"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/services"

	"github.com/bytedance/sonic"
	"github.com/urfave/cli/v2"
)

func main() {
	cliApp := &cli.App{
		Name:  "pickemctl",
		Usage: "administer the playoff pick'em pool",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "season", Usage: "season to operate on (defaults to CURRENT_SEASON)"},
			&cli.StringFlag{Name: "actor", Usage: "name recorded in the audit trail", EnvVars: []string{"PICKEM_ACTOR", "USER"}},
		},
		Commands: []*cli.Command{
			seedCommand(),
			runJobCommand(),
			lockCommand(),
			unlockCommand(),
			overridePickCommand(),
			correctResultCommand(),
			recomputeStatsCommand(),
			resetSeasonCommand(),
			auditCommand(),
			standingsCommand(),
			backupCommand(),
			tokenCommand(),
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logging.Fatalf("%v", err)
	}
}

// withApp loads config and connects to the real database. The CLI never
// falls back to the in-memory store since its writes would be lost.
func withApp(action func(c *cli.Context, a *app.App, season int) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logging.Configure(cfg.ToLoggingConfig())
		cfg.Database.AllowMemoryFallback = false

		a, err := app.New(c.Context, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		season := cfg.App.CurrentSeason
		if c.IsSet("season") {
			season = c.Int("season")
		}
		return action(c, a, season)
	}
}

func actor(c *cli.Context) (string, error) {
	name := c.String("actor")
	if name == "" {
		return "", fmt.Errorf("--actor is required")
	}
	return name, nil
}

func printJSON(v interface{}) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "upsert teams, the default roster and the season schedule",
		Action: withApp(func(c *cli.Context, a *app.App, season int) error {
			return a.Seed(c.Context, season)
		}),
	}
}

func runJobCommand() *cli.Command {
	return &cli.Command{
		Name:      "run-job",
		Usage:     "run one periodic job now (lock-check, score-sync, stats-refresh)",
		ArgsUsage: "<job>",
		Action: withApp(func(c *cli.Context, a *app.App, season int) error {
			who, err := actor(c)
			if err != nil {
				return err
			}
			report, err := a.Admin.RunJob(c.Context, who, season, c.Args().First())
			if perr := printJSON(report); perr != nil {
				return perr
			}
			return err
		}),
	}
}

func lockCommand() *cli.Command {
	return &cli.Command{
		Name:  "lock",
		Usage: "lock a game now and backfill its missing picks",
		Flags: []cli.Flag{&cli.IntFlag{Name: "game", Required: true}},
		Action: withApp(func(c *cli.Context, a *app.App, _ int) error {
			who, err := actor(c)
			if err != nil {
				return err
			}
			return a.Admin.ForceLock(c.Context, who, c.Int("game"))
		}),
	}
}

func unlockCommand() *cli.Command {
	return &cli.Command{
		Name:  "unlock",
		Usage: "unlock a game that has not been played",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "game", Required: true},
			&cli.StringFlag{Name: "reason", Required: true},
		},
		Action: withApp(func(c *cli.Context, a *app.App, _ int) error {
			who, err := actor(c)
			if err != nil {
				return err
			}
			return a.Admin.UnlockGame(c.Context, who, c.Int("game"), c.String("reason"))
		}),
	}
}

func overridePickCommand() *cli.Command {
	return &cli.Command{
		Name:  "override-pick",
		Usage: "write a pick on a locked game without unlocking it",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "user", Required: true},
			&cli.IntFlag{Name: "game", Required: true},
			&cli.IntFlag{Name: "team", Required: true},
			&cli.IntFlag{Name: "guess", Usage: "Super Bowl combined points guess"},
		},
		Action: withApp(func(c *cli.Context, a *app.App, _ int) error {
			who, err := actor(c)
			if err != nil {
				return err
			}
			req := services.SubmitPickRequest{
				UserID: c.Int("user"),
				GameID: c.Int("game"),
				TeamID: c.Int("team"),
			}
			if c.IsSet("guess") {
				guess := c.Int("guess")
				req.TiebreakerGuess = &guess
			}
			pick, err := a.Admin.OverridePick(c.Context, who, req)
			if err != nil {
				return err
			}
			return printJSON(pick)
		}),
	}
}

func correctResultCommand() *cli.Command {
	return &cli.Command{
		Name:  "correct-result",
		Usage: "overwrite a game's final score and rescore its picks",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "game", Required: true},
			&cli.IntFlag{Name: "home", Required: true},
			&cli.IntFlag{Name: "away", Required: true},
		},
		Action: withApp(func(c *cli.Context, a *app.App, _ int) error {
			who, err := actor(c)
			if err != nil {
				return err
			}
			game, err := a.Admin.CorrectGameResult(c.Context, who, c.Int("game"), c.Int("home"), c.Int("away"))
			if err != nil {
				return err
			}
			return printJSON(game)
		}),
	}
}

func recomputeStatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "recompute-stats",
		Usage: "rebuild the season's materialized user stats",
		Action: withApp(func(c *cli.Context, a *app.App, season int) error {
			who, err := actor(c)
			if err != nil {
				return err
			}
			report, err := a.Admin.RecomputeStats(c.Context, who, season)
			if err != nil {
				return err
			}
			return printJSON(report)
		}),
	}
}

func resetSeasonCommand() *cli.Command {
	return &cli.Command{
		Name:  "reset-season",
		Usage: "delete every pick and stat row of the season",
		Flags: []cli.Flag{&cli.BoolFlag{Name: "yes", Usage: "confirm the deletion"}},
		Action: withApp(func(c *cli.Context, a *app.App, season int) error {
			if !c.Bool("yes") {
				return fmt.Errorf("refusing to reset season %d without --yes", season)
			}
			who, err := actor(c)
			if err != nil {
				return err
			}
			return a.Admin.ResetSeason(c.Context, who, season)
		}),
	}
}

func auditCommand() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "print the season's admin audit trail",
		Action: withApp(func(c *cli.Context, a *app.App, season int) error {
			entries, err := a.Admin.ListAudit(c.Context, season)
			if err != nil {
				return err
			}
			return printJSON(entries)
		}),
	}
}

func standingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "standings",
		Usage: "print the season leaderboard",
		Action: withApp(func(c *cli.Context, a *app.App, season int) error {
			standings, err := a.Standings.GetStandings(c.Context, season)
			if err != nil {
				return err
			}
			return printJSON(standings)
		}),
	}
}

func backupCommand() *cli.Command {
	return &cli.Command{
		Name:  "backup",
		Usage: "write a JSON-lines snapshot of the season",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Value: "backups"},
			&cli.DurationFlag{Name: "retention", Value: 30 * 24 * time.Hour, Usage: "remove older snapshots (0 keeps all)"},
		},
		Action: withApp(func(c *cli.Context, a *app.App, season int) error {
			backups := services.NewBackupService(a.Repos, c.String("dir"))
			path, err := backups.CreateBackup(c.Context, season)
			if err != nil {
				return err
			}
			fmt.Println(path)
			_, err = backups.CleanupOldBackups(c.Duration("retention"))
			return err
		}),
	}
}

// tokenCommand only needs the signing secret, not the database
func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "issue an admin bearer token for the HTTP API",
		Action: func(c *cli.Context) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			who, err := actor(c)
			if err != nil {
				return err
			}
			token, err := services.NewAuthService(cfg.ToAuthConfig()).GenerateToken(who)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}
