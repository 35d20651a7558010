package models

import "time"

// AdminAction names an out-of-band administrative operation
type AdminAction string

const (
	AdminActionForceLock      AdminAction = "force_lock"
	AdminActionUnlockGame     AdminAction = "unlock_game"
	AdminActionOverridePick   AdminAction = "override_pick"
	AdminActionCorrectResult  AdminAction = "correct_result"
	AdminActionRecomputeStats AdminAction = "recompute_stats"
	AdminActionRunJob         AdminAction = "run_job"
	AdminActionResetSeason    AdminAction = "reset_season"
)

// AuditEntry records who ran an administrative operation and what it changed
type AuditEntry struct {
	ID      string      `json:"id" bson:"_id"`
	Actor   string      `json:"actor" bson:"actor"`
	Action  AdminAction `json:"action" bson:"action"`
	Season  int         `json:"season" bson:"season"`
	GameID  *int        `json:"game_id,omitempty" bson:"game_id,omitempty"`
	UserID  *int        `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Detail  string      `json:"detail" bson:"detail"`
	Success bool        `json:"success" bson:"success"`
	At      time.Time   `json:"at" bson:"at"`
}
