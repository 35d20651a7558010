package interfaces

import (
	"nfl-playoff-pickem/services"
)

// Interface compliance checks - these will fail to compile if services don't implement interfaces
var (
	_ GameService      = (*services.GameService)(nil)
	_ PickService      = (*services.PickService)(nil)
	_ StandingsService = (*services.StandingsService)(nil)
	_ StatsService     = (*services.StatsService)(nil)
	_ AdminService     = (*services.AdminService)(nil)
	_ TokenValidator   = (*services.AuthService)(nil)

	// Both feeds serve schedule and live scores
	_ ScoreFeed = (*services.ESPNFeed)(nil)
	_ ScoreFeed = (*services.DemoFeed)(nil)
)
