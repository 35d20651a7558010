package handlers

import (
	"net/http"

	"nfl-playoff-pickem/interfaces"
	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/services"

	"github.com/go-playground/validator/v10"
)

// submitPickBody is the JSON body of a pick submission. User identity comes
// from the body; there is no end-user authentication.
type submitPickBody struct {
	UserID          *int `json:"user_id" validate:"required,gte=0"`
	GameID          *int `json:"game_id" validate:"required,gt=0"`
	TeamID          *int `json:"team_id" validate:"required,gt=0"`
	TiebreakerGuess *int `json:"tiebreaker_guess" validate:"omitempty,gte=0"`
}

func (b submitPickBody) request() services.SubmitPickRequest {
	return services.SubmitPickRequest{
		UserID:          *b.UserID,
		GameID:          *b.GameID,
		TeamID:          *b.TeamID,
		TiebreakerGuess: b.TiebreakerGuess,
	}
}

// APIHandler serves the consumer-facing reads and pick submission
type APIHandler struct {
	games     interfaces.GameService
	picks     interfaces.PickService
	standings interfaces.StandingsService
	validate  *validator.Validate
	logger    *logging.Logger
}

// NewAPIHandler creates a new API handler
func NewAPIHandler(games interfaces.GameService, picks interfaces.PickService, standings interfaces.StandingsService) *APIHandler {
	return &APIHandler{
		games:     games,
		picks:     picks,
		standings: standings,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logging.WithPrefix("API"),
	}
}

// decodeBody decodes and validates a JSON body, writing a 400 on failure
func decodeBody(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	dec := jsonAPI.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// GetStandings handles GET /api/seasons/{season}/standings
func (h *APIHandler) GetStandings(w http.ResponseWriter, r *http.Request) {
	season, ok := pathInt(r, "season")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid season")
		return
	}

	standings, err := h.standings.GetStandings(r.Context(), season)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, standings)
}

// GetGames handles GET /api/seasons/{season}/games?week=N
func (h *APIHandler) GetGames(w http.ResponseWriter, r *http.Request) {
	season, ok := pathInt(r, "season")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid season")
		return
	}
	week, ok := queryWeek(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid week")
		return
	}

	games, err := h.games.GetGames(r.Context(), season, week)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

// GetGame handles GET /api/games/{gameID}
func (h *APIHandler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathInt(r, "gameID")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid game id")
		return
	}

	game, err := h.games.GetGame(r.Context(), gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// GetTeams handles GET /api/teams
func (h *APIHandler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.games.GetTeams(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, teams)
}

// GetUserPicks handles GET /api/seasons/{season}/users/{userID}/picks?week=N
func (h *APIHandler) GetUserPicks(w http.ResponseWriter, r *http.Request) {
	season, ok := pathInt(r, "season")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid season")
		return
	}
	userID, ok := pathInt(r, "userID")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid user id")
		return
	}
	week, ok := queryWeek(r)
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid week")
		return
	}

	picks, err := h.picks.GetPicksFor(r.Context(), userID, season, week)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, picks)
}

// SubmitPick handles POST /api/seasons/{season}/picks
func (h *APIHandler) SubmitPick(w http.ResponseWriter, r *http.Request) {
	season, ok := pathInt(r, "season")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid season")
		return
	}

	var body submitPickBody
	if !decodeBody(w, r, h.validate, &body) {
		return
	}

	pick, err := h.picks.SubmitPick(r.Context(), season, body.request())
	if err != nil {
		if services.IsGameLocked(err) {
			h.logger.Infow("late pick rejected", "user", *body.UserID, "game", *body.GameID)
		}
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pick)
}
