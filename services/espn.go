package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/models"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"golang.org/x/time/rate"
)

const maxFeedBody = 4 << 20

// ScoreFeed fetches normalized game state from a sports-data provider.
// Implementations never write to storage.
type ScoreFeed interface {
	FetchUpdatesFor(ctx context.Context, refs []models.GameRef) ([]models.GameUpdate, error)
}

// ScheduleSource lists the postseason schedule of a season
type ScheduleSource interface {
	FetchPostseasonSchedule(ctx context.Context, season int) ([]models.ScheduledGame, error)
}

// FeedConfig configures the ESPN feed client
type FeedConfig struct {
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// ESPNFeed talks to the public ESPN site API. Requests are serialized and
// paced by a token bucket so the provider never sees concurrent calls.
type ESPNFeed struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	mu      sync.Mutex
	logger  *logging.Logger
}

// NewESPNFeed creates a new ESPN feed client
func NewESPNFeed(cfg FeedConfig) *ESPNFeed {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &ESPNFeed{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  logging.WithPrefix("ESPN"),
	}
}

// ESPN API response structures

type espnSummaryResponse struct {
	Header espnHeader `json:"header"`
}

type espnHeader struct {
	ID           string            `json:"id"`
	Competitions []espnCompetition `json:"competitions"`
}

type espnScoreboardResponse struct {
	Events []espnEvent `json:"events"`
}

type espnEvent struct {
	ID           string            `json:"id"`
	Date         string            `json:"date"`
	Week         espnWeek          `json:"week"`
	Season       espnSeason        `json:"season"`
	Status       espnStatus        `json:"status"`
	Competitions []espnCompetition `json:"competitions"`
}

type espnSeason struct {
	Year int `json:"year"`
	Type int `json:"type"`
}

type espnWeek struct {
	Number int `json:"number"`
}

type espnStatus struct {
	Type         espnStatusType `json:"type"`
	Period       int            `json:"period"`
	DisplayClock string         `json:"displayClock,omitempty"`
}

type espnStatusType struct {
	Name      string `json:"name"`
	State     string `json:"state"`
	Completed bool   `json:"completed"`
}

type espnCompetition struct {
	Date        string           `json:"date"`
	Status      espnStatus       `json:"status"`
	Competitors []espnCompetitor `json:"competitors"`
}

type espnCompetitor struct {
	HomeAway string   `json:"homeAway"`
	Score    string   `json:"score"`
	Team     espnTeam `json:"team"`
}

type espnTeam struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
}

// errNoData means the provider has nothing for the requested game
var errNoData = crerr.New("no provider data")

// FetchUpdatesFor returns one update per ref the provider knows about.
// Refs with no provider data are omitted. Malformed or failed records are
// skipped and logged. Only when every request fails is an error returned,
// marked ErrFeedUnavailable.
func (e *ESPNFeed) FetchUpdatesFor(ctx context.Context, refs []models.GameRef) ([]models.GameUpdate, error) {
	updates := make([]models.GameUpdate, 0, len(refs))
	failed := 0
	var lastErr error

	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return updates, err
		}

		update, err := e.fetchSummary(ctx, ref.ExternalID)
		switch {
		case err == nil:
			updates = append(updates, update)
		case crerr.Is(err, errNoData):
			e.logger.Debugf("No provider data for game %d", ref.GameID)
		default:
			failed++
			lastErr = err
			e.logger.Warnw("skipping game after feed error", "game", ref.GameID, "err", err)
		}
	}

	if len(refs) > 0 && failed == len(refs) {
		return nil, crerr.Mark(crerr.Wrapf(lastErr, "all %d feed requests failed", failed), ErrFeedUnavailable)
	}
	return updates, nil
}

func (e *ESPNFeed) fetchSummary(ctx context.Context, externalID int) (models.GameUpdate, error) {
	values := url.Values{}
	values.Set("event", strconv.Itoa(externalID))

	raw, err := e.get(ctx, "/summary", values)
	if err != nil {
		return models.GameUpdate{}, err
	}

	var summary espnSummaryResponse
	if err := sonic.Unmarshal(raw, &summary); err != nil {
		return models.GameUpdate{}, crerr.Mark(crerr.Wrapf(err, "decode summary for event %d", externalID), ErrFeedUnavailable)
	}
	if summary.Header.ID == "" || len(summary.Header.Competitions) == 0 {
		return models.GameUpdate{}, errNoData
	}

	return convertCompetition(externalID, summary.Header.Competitions[0])
}

// convertCompetition normalizes one provider competition into a GameUpdate
func convertCompetition(externalID int, competition espnCompetition) (models.GameUpdate, error) {
	status := convertGameStatus(competition.Status.Type)
	update := models.GameUpdate{
		ExternalID: externalID,
		Status:     status,
		Period:     competition.Status.Period,
		Clock:      competition.Status.DisplayClock,
	}

	if status == models.GameStatusScheduled || status == models.GameStatusPostponed || status == models.GameStatusCancelled {
		return update, nil
	}

	for _, competitor := range competition.Competitors {
		score, err := parseScore(competitor.Score)
		if err != nil {
			return models.GameUpdate{}, crerr.Mark(crerr.Wrapf(err, "event %d", externalID), ErrFeedUnavailable)
		}
		switch competitor.HomeAway {
		case "home":
			update.HomeScore = score
		case "away":
			update.AwayScore = score
		}
	}
	if update.HomeScore == nil || update.AwayScore == nil {
		return models.GameUpdate{}, crerr.Mark(crerr.Newf("event %d is missing a competitor score", externalID), ErrFeedUnavailable)
	}
	return update, nil
}

func parseScore(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("bad score %q: %w", s, err)
	}
	return &n, nil
}

// convertGameStatus converts ESPN status to our GameStatus
func convertGameStatus(t espnStatusType) models.GameStatus {
	switch strings.ToUpper(t.Name) {
	case "STATUS_POSTPONED":
		return models.GameStatusPostponed
	case "STATUS_CANCELED", "STATUS_CANCELLED":
		return models.GameStatusCancelled
	}
	switch strings.ToLower(t.State) {
	case "in":
		return models.GameStatusInProgress
	case "post":
		if t.Completed {
			return models.GameStatusFinal
		}
		return models.GameStatusInProgress
	default:
		return models.GameStatusScheduled
	}
}

// Provider postseason week numbers. Week 4 is the Pro Bowl.
var providerWeekToRound = map[int]int{
	1: models.WeekWildCard,
	2: models.WeekDivisional,
	3: models.WeekConference,
	5: models.WeekSuperBowl,
}

// FetchPostseasonSchedule fetches every playoff game of a season
func (e *ESPNFeed) FetchPostseasonSchedule(ctx context.Context, season int) ([]models.ScheduledGame, error) {
	var games []models.ScheduledGame
	for _, providerWeek := range []int{1, 2, 3, 5} {
		values := url.Values{}
		values.Set("dates", strconv.Itoa(season))
		values.Set("seasontype", "3")
		values.Set("week", strconv.Itoa(providerWeek))

		raw, err := e.get(ctx, "/scoreboard", values)
		if crerr.Is(err, errNoData) {
			continue
		}
		if err != nil {
			return nil, crerr.Wrapf(err, "fetch postseason week %d", providerWeek)
		}

		var board espnScoreboardResponse
		if err := sonic.Unmarshal(raw, &board); err != nil {
			return nil, crerr.Mark(crerr.Wrapf(err, "decode scoreboard week %d", providerWeek), ErrFeedUnavailable)
		}

		for _, event := range board.Events {
			game, ok := e.convertEvent(season, providerWeek, event)
			if ok {
				games = append(games, game)
			}
		}
	}

	e.logger.Infof("Fetched %d postseason games for season %d", len(games), season)
	return games, nil
}

func (e *ESPNFeed) convertEvent(season, providerWeek int, event espnEvent) (models.ScheduledGame, bool) {
	if event.Week.Number != 0 {
		providerWeek = event.Week.Number
	}
	week, ok := providerWeekToRound[providerWeek]
	if !ok {
		return models.ScheduledGame{}, false
	}
	if event.Season.Type != 0 && event.Season.Type != 3 {
		return models.ScheduledGame{}, false
	}

	id, err := strconv.Atoi(event.ID)
	if err != nil || len(event.Competitions) == 0 || len(event.Competitions[0].Competitors) < 2 {
		e.logger.Warnw("skipping malformed schedule event", "event", event.ID)
		return models.ScheduledGame{}, false
	}

	start, err := parseESPNTime(event.Date)
	if err != nil {
		e.logger.Warnw("skipping schedule event with bad date", "event", event.ID, "date", event.Date)
		return models.ScheduledGame{}, false
	}

	game := models.ScheduledGame{
		ExternalID:         id,
		Season:             season,
		Week:               week,
		ScheduledStartTime: start,
	}
	for _, competitor := range event.Competitions[0].Competitors {
		teamID, err := strconv.Atoi(competitor.Team.ID)
		if err != nil {
			e.logger.Warnw("skipping schedule event with bad team id", "event", event.ID, "team", competitor.Team.ID)
			return models.ScheduledGame{}, false
		}
		if competitor.HomeAway == "home" {
			game.HomeTeamID = teamID
		} else {
			game.AwayTeamID = teamID
		}
	}
	if game.HomeTeamID == 0 || game.AwayTeamID == 0 {
		// Matchup not decided yet
		return models.ScheduledGame{}, false
	}
	return game, true
}

// parseESPNTime parses ESPN dates like "2025-01-12T18:00Z"
func parseESPNTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04Z", "2006-01-02T15:04:05Z", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// get performs one paced, serialized GET and returns the body of a 2xx response
func (e *ESPNFeed) get(ctx context.Context, path string, values url.Values) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	fullURL := e.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "send request"), ErrFeedUnavailable)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, crerr.Mark(crerr.Wrap(err, "read response body"), ErrFeedUnavailable)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errNoData
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, crerr.Mark(crerr.Newf("provider status=%d", resp.StatusCode), ErrFeedUnavailable)
	}
	return raw, nil
}
