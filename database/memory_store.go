package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"nfl-playoff-pickem/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore keeps every collection in process memory. It backs the demo
// mode when MongoDB is unreachable and the service tests. One mutex guards all
// collections, so each repository call is atomic like a single-document write.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[int]*models.Game
	picks map[pickKey]*models.Pick
	users map[int]*models.User
	teams map[int]*models.Team
	stats map[statKey]*models.UserStat
	audit []*models.AuditEntry
}

type pickKey struct{ userID, gameID int }

type statKey struct{ userID, season int }

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[int]*models.Game),
		picks: make(map[pickKey]*models.Pick),
		users: make(map[int]*models.User),
		teams: make(map[int]*models.Team),
		stats: make(map[statKey]*models.UserStat),
	}
}

// NewMemoryRepositories returns repositories sharing one fresh MemoryStore
func NewMemoryRepositories() (*Repositories, *MemoryStore) {
	s := NewMemoryStore()
	return s.Repositories(), s
}

// Repositories exposes the store through the repository interfaces
func (s *MemoryStore) Repositories() *Repositories {
	return &Repositories{
		Games: &memoryGames{s},
		Picks: &memoryPicks{s},
		Users: &memoryUsers{s},
		Teams: &memoryTeams{s},
		Stats: &memoryStats{s},
		Audit: &memoryAudit{s},
	}
}

// PutGame stores a full game document as-is. Test and demo seeding helper.
func (s *MemoryStore) PutGame(game *models.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g := *game
	s.games[g.ID] = &g
}

// PickCount returns the number of stored picks
func (s *MemoryStore) PickCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.picks)
}

// games

type memoryGames struct{ s *MemoryStore }

func (r *memoryGames) UpsertSchedule(_ context.Context, games []*models.Game, now time.Time) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, in := range games {
		existing, ok := r.s.games[in.ID]
		if !ok {
			existing = &models.Game{ID: in.ID, Status: models.GameStatusScheduled}
			r.s.games[in.ID] = existing
		}
		existing.Season = in.Season
		existing.Week = in.Week
		existing.HomeTeamID = in.HomeTeamID
		existing.AwayTeamID = in.AwayTeamID
		existing.ScheduledStartTime = in.ScheduledStartTime
		existing.UpdatedAt = now
	}
	return len(games), nil
}

func (r *memoryGames) FindByID(_ context.Context, gameID int) (*models.Game, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	g, ok := r.s.games[gameID]
	if !ok {
		return nil, nil
	}
	c := *g
	return &c, nil
}

func (r *memoryGames) filter(keep func(*models.Game) bool) []*models.Game {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.Game{}
	for _, g := range r.s.games {
		if keep(g) {
			c := *g
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledStartTime.Equal(out[j].ScheduledStartTime) {
			return out[i].ScheduledStartTime.Before(out[j].ScheduledStartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (r *memoryGames) FindBySeason(_ context.Context, season int) ([]*models.Game, error) {
	return r.filter(func(g *models.Game) bool { return g.Season == season }), nil
}

func (r *memoryGames) FindByWeek(_ context.Context, season, week int) ([]*models.Game, error) {
	return r.filter(func(g *models.Game) bool { return g.Season == season && g.Week == week }), nil
}

func (r *memoryGames) FindLocked(_ context.Context, season int) ([]*models.Game, error) {
	return r.filter(func(g *models.Game) bool { return g.Season == season && g.IsLocked }), nil
}

func (r *memoryGames) FindFinal(_ context.Context, season int) ([]*models.Game, error) {
	return r.filter(func(g *models.Game) bool { return g.Season == season && g.IsFinal() }), nil
}

func (r *memoryGames) FindSyncable(_ context.Context, season int) ([]*models.Game, error) {
	return r.filter(func(g *models.Game) bool {
		return g.Season == season && g.Status != models.GameStatusFinal && g.Status != models.GameStatusCancelled
	}), nil
}

func (r *memoryGames) LockDueGames(_ context.Context, season int, now time.Time) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []int
	for _, g := range r.s.games {
		if g.Season == season && !g.IsLocked && !now.Before(g.ScheduledStartTime) {
			lockGame(g, now)
			ids = append(ids, g.ID)
		}
	}
	sort.Ints(ids)
	return ids, nil
}

func (r *memoryGames) LockGames(_ context.Context, gameIDs []int, now time.Time) ([]int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var ids []int
	for _, id := range gameIDs {
		if g, ok := r.s.games[id]; ok && !g.IsLocked {
			lockGame(g, now)
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func lockGame(g *models.Game, now time.Time) {
	lockedAt := now
	g.IsLocked = true
	g.LockedAt = &lockedAt
	g.UpdatedAt = now
}

func applyState(g *models.Game, state GameState, now time.Time) {
	g.Status = state.Status
	g.HomeScore = state.HomeScore
	g.AwayScore = state.AwayScore
	g.WinningTeamID = state.WinningTeamID
	g.Quarter = state.Quarter
	g.Clock = state.Clock
	g.UpdatedAt = now
}

func (r *memoryGames) ApplyState(_ context.Context, gameID int, state GameState, now time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.games[gameID]
	if !ok || g.IsFinal() {
		return false, nil
	}
	applyState(g, state, now)
	return true, nil
}

func (r *memoryGames) SetResult(_ context.Context, gameID int, state GameState, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.games[gameID]
	if !ok {
		return ErrGameNotFound
	}
	applyState(g, state, now)
	return nil
}

func (r *memoryGames) SetLock(_ context.Context, gameID int, locked bool, now time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	g, ok := r.s.games[gameID]
	if !ok {
		return ErrGameNotFound
	}
	if locked {
		lockGame(g, now)
		return nil
	}
	g.IsLocked = false
	g.LockedAt = nil
	g.UpdatedAt = now
	return nil
}

// picks

type memoryPicks struct{ s *MemoryStore }

func (r *memoryPicks) Upsert(_ context.Context, pick *models.Pick) (*models.Pick, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pickKey{pick.UserID, pick.GameID}
	existing, ok := r.s.picks[key]
	if !ok {
		stored := *pick
		stored.ID = primitive.NewObjectID()
		stored.Outcome = models.PickOutcomePending
		stored.PointsEarned = 0
		r.s.picks[key] = &stored
		c := stored
		return &c, nil
	}

	existing.SelectedTeamID = pick.SelectedTeamID
	existing.IsAutoPick = pick.IsAutoPick
	existing.UpdatedAt = pick.UpdatedAt
	if pick.SuperBowlTotalPointsGuess != nil {
		guess := *pick.SuperBowlTotalPointsGuess
		existing.SuperBowlTotalPointsGuess = &guess
	}
	c := *existing
	return &c, nil
}

func (r *memoryPicks) InsertAutoPick(_ context.Context, pick *models.Pick) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := pickKey{pick.UserID, pick.GameID}
	if _, ok := r.s.picks[key]; ok {
		return ErrDuplicatePick
	}
	stored := *pick
	stored.ID = primitive.NewObjectID()
	r.s.picks[key] = &stored
	return nil
}

func (r *memoryPicks) FindOne(_ context.Context, userID, gameID int) (*models.Pick, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.picks[pickKey{userID, gameID}]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *memoryPicks) filter(keep func(*models.Pick) bool) []*models.Pick {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.Pick{}
	for _, p := range r.s.picks {
		if keep(p) {
			c := *p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		if out[i].GameID != out[j].GameID {
			return out[i].GameID < out[j].GameID
		}
		return out[i].UserID < out[j].UserID
	})
	return out
}

func (r *memoryPicks) FindByUser(_ context.Context, userID, season int) ([]*models.Pick, error) {
	return r.filter(func(p *models.Pick) bool { return p.UserID == userID && p.Season == season }), nil
}

func (r *memoryPicks) FindByUserWeek(_ context.Context, userID, season, week int) ([]*models.Pick, error) {
	return r.filter(func(p *models.Pick) bool {
		return p.UserID == userID && p.Season == season && p.Week == week
	}), nil
}

func (r *memoryPicks) FindByGame(_ context.Context, gameID int) ([]*models.Pick, error) {
	return r.filter(func(p *models.Pick) bool { return p.GameID == gameID }), nil
}

func (r *memoryPicks) FindBySeason(_ context.Context, season int) ([]*models.Pick, error) {
	return r.filter(func(p *models.Pick) bool { return p.Season == season }), nil
}

func (r *memoryPicks) ResolveGame(_ context.Context, gameID, winningTeamID, points int, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, p := range r.s.picks {
		if p.GameID != gameID || !p.IsPending() {
			continue
		}
		if p.SelectedTeamID == winningTeamID {
			p.Outcome = models.PickOutcomeCorrect
			p.PointsEarned = points
		} else {
			p.Outcome = models.PickOutcomeIncorrect
			p.PointsEarned = 0
		}
		p.UpdatedAt = now
		n++
	}
	return n, nil
}

func (r *memoryPicks) ResetGame(_ context.Context, gameID int, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, p := range r.s.picks {
		if p.GameID == gameID {
			p.Outcome = models.PickOutcomePending
			p.PointsEarned = 0
			p.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *memoryPicks) LockForGames(_ context.Context, gameIDs []int, locked bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ids := make(map[int]struct{}, len(gameIDs))
	for _, id := range gameIDs {
		ids[id] = struct{}{}
	}
	for _, p := range r.s.picks {
		if _, ok := ids[p.GameID]; ok {
			p.Locked = locked
		}
	}
	return nil
}

func (r *memoryPicks) DeleteSeason(_ context.Context, season int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for k, p := range r.s.picks {
		if p.Season == season {
			delete(r.s.picks, k)
			n++
		}
	}
	return n, nil
}

// users

type memoryUsers struct{ s *MemoryStore }

func (r *memoryUsers) FindAll(_ context.Context) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		c := *u
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *memoryUsers) FindByID(_ context.Context, userID int) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[userID]
	if !ok {
		return nil, nil
	}
	c := *u
	return &c, nil
}

func (r *memoryUsers) Upsert(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *user
	r.s.users[user.ID] = &c
	return nil
}

// teams

type memoryTeams struct{ s *MemoryStore }

func (r *memoryTeams) FindAll(_ context.Context) ([]*models.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Team, 0, len(r.s.teams))
	for _, t := range r.s.teams {
		c := *t
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Abbreviation < out[j].Abbreviation })
	return out, nil
}

func (r *memoryTeams) FindByID(_ context.Context, teamID int) (*models.Team, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.teams[teamID]
	if !ok {
		return nil, nil
	}
	c := *t
	return &c, nil
}

func (r *memoryTeams) Upsert(_ context.Context, team *models.Team) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *team
	r.s.teams[team.ID] = &c
	return nil
}

// stats

type memoryStats struct{ s *MemoryStore }

func (r *memoryStats) Replace(_ context.Context, stat *models.UserStat) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *stat
	r.s.stats[statKey{stat.UserID, stat.Season}] = &c
	return nil
}

func (r *memoryStats) FindBySeason(_ context.Context, season int) ([]*models.UserStat, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.UserStat{}
	for k, st := range r.s.stats {
		if k.season == season {
			c := *st
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *memoryStats) DeleteSeason(_ context.Context, season int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for k := range r.s.stats {
		if k.season == season {
			delete(r.s.stats, k)
			n++
		}
	}
	return n, nil
}

// audit

type memoryAudit struct{ s *MemoryStore }

func (r *memoryAudit) Insert(_ context.Context, entry *models.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *entry
	r.s.audit = append(r.s.audit, &c)
	return nil
}

func (r *memoryAudit) FindBySeason(_ context.Context, season int) ([]*models.AuditEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []*models.AuditEntry{}
	for _, e := range r.s.audit {
		if e.Season == season {
			c := *e
			out = append(out, &c)
		}
	}
	return out, nil
}
