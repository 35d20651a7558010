package handlers

import (
	"net/http"
	"strconv"

	"nfl-playoff-pickem/interfaces"
	"nfl-playoff-pickem/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type unlockBody struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

type correctResultBody struct {
	HomeScore *int `json:"home_score" validate:"required,gte=0"`
	AwayScore *int `json:"away_score" validate:"required,gte=0"`
}

// AdminHandler exposes the audited admin operations. The actor of every
// call is taken from the verified token, never from the body.
type AdminHandler struct {
	admin    interfaces.AdminService
	validate *validator.Validate
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(admin interfaces.AdminService) *AdminHandler {
	return &AdminHandler{
		admin:    admin,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ForceLock handles POST /api/admin/games/{gameID}/lock
func (h *AdminHandler) ForceLock(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathInt(r, "gameID")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid game id")
		return
	}
	if err := h.admin.ForceLock(r.Context(), middleware.ActorFromRequest(r), gameID); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"game_id": gameID, "locked": true})
}

// UnlockGame handles POST /api/admin/games/{gameID}/unlock
func (h *AdminHandler) UnlockGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathInt(r, "gameID")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid game id")
		return
	}
	var body unlockBody
	if !decodeBody(w, r, h.validate, &body) {
		return
	}
	if err := h.admin.UnlockGame(r.Context(), middleware.ActorFromRequest(r), gameID, body.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"game_id": gameID, "locked": false})
}

// CorrectResult handles POST /api/admin/games/{gameID}/result
func (h *AdminHandler) CorrectResult(w http.ResponseWriter, r *http.Request) {
	gameID, ok := pathInt(r, "gameID")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid game id")
		return
	}
	var body correctResultBody
	if !decodeBody(w, r, h.validate, &body) {
		return
	}
	game, err := h.admin.CorrectGameResult(r.Context(), middleware.ActorFromRequest(r), gameID, *body.HomeScore, *body.AwayScore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// OverridePick handles POST /api/admin/picks
func (h *AdminHandler) OverridePick(w http.ResponseWriter, r *http.Request) {
	var body submitPickBody
	if !decodeBody(w, r, h.validate, &body) {
		return
	}
	pick, err := h.admin.OverridePick(r.Context(), middleware.ActorFromRequest(r), body.request())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pick)
}

// RecomputeStats handles POST /api/admin/seasons/{season}/stats
func (h *AdminHandler) RecomputeStats(w http.ResponseWriter, r *http.Request) {
	season, ok := pathInt(r, "season")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid season")
		return
	}
	report, err := h.admin.RecomputeStats(r.Context(), middleware.ActorFromRequest(r), season)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// RunJob handles POST /api/admin/seasons/{season}/jobs/{job}
func (h *AdminHandler) RunJob(w http.ResponseWriter, r *http.Request) {
	season, ok := pathInt(r, "season")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid season")
		return
	}
	report, err := h.admin.RunJob(r.Context(), middleware.ActorFromRequest(r), season, mux.Vars(r)["job"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// ResetSeason handles DELETE /api/admin/seasons/{season}
func (h *AdminHandler) ResetSeason(w http.ResponseWriter, r *http.Request) {
	season, ok := pathInt(r, "season")
	if !ok {
		writeErrorMessage(w, http.StatusBadRequest, "invalid season")
		return
	}
	if err := h.admin.ResetSeason(r.Context(), middleware.ActorFromRequest(r), season); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAudit handles GET /api/admin/audit?season=N
func (h *AdminHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	season, err := strconv.Atoi(r.URL.Query().Get("season"))
	if err != nil {
		writeErrorMessage(w, http.StatusBadRequest, "season query parameter is required")
		return
	}
	entries, err := h.admin.ListAudit(r.Context(), season)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
