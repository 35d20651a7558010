package handlers

import (
	"net/http"

	"nfl-playoff-pickem/middleware"

	"github.com/gorilla/mux"
)

// RouterConfig carries everything the router mounts
type RouterConfig struct {
	API         *APIHandler
	Admin       *AdminHandler
	Auth        *middleware.AuthMiddleware
	Metrics     http.Handler
	Health      func(r *http.Request) error
	BehindProxy bool
}

// NewRouter builds the full route table
func NewRouter(cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger)
	r.Use(middleware.SecurityMiddleware(cfg.BehindProxy))

	r.HandleFunc("/healthz", healthHandler(cfg.Health)).Methods(http.MethodGet)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/teams", cfg.API.GetTeams).Methods(http.MethodGet)
	api.HandleFunc("/games/{gameID:[0-9]+}", cfg.API.GetGame).Methods(http.MethodGet)
	api.HandleFunc("/seasons/{season:[0-9]+}/standings", cfg.API.GetStandings).Methods(http.MethodGet)
	api.HandleFunc("/seasons/{season:[0-9]+}/games", cfg.API.GetGames).Methods(http.MethodGet)
	api.HandleFunc("/seasons/{season:[0-9]+}/users/{userID:[0-9]+}/picks", cfg.API.GetUserPicks).Methods(http.MethodGet)
	api.HandleFunc("/seasons/{season:[0-9]+}/picks", cfg.API.SubmitPick).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(cfg.Auth.RequireAdmin)
	admin.HandleFunc("/games/{gameID:[0-9]+}/lock", cfg.Admin.ForceLock).Methods(http.MethodPost)
	admin.HandleFunc("/games/{gameID:[0-9]+}/unlock", cfg.Admin.UnlockGame).Methods(http.MethodPost)
	admin.HandleFunc("/games/{gameID:[0-9]+}/result", cfg.Admin.CorrectResult).Methods(http.MethodPost)
	admin.HandleFunc("/picks", cfg.Admin.OverridePick).Methods(http.MethodPost)
	admin.HandleFunc("/seasons/{season:[0-9]+}/stats", cfg.Admin.RecomputeStats).Methods(http.MethodPost)
	admin.HandleFunc("/seasons/{season:[0-9]+}/jobs/{job}", cfg.Admin.RunJob).Methods(http.MethodPost)
	admin.HandleFunc("/seasons/{season:[0-9]+}", cfg.Admin.ResetSeason).Methods(http.MethodDelete)
	admin.HandleFunc("/audit", cfg.Admin.ListAudit).Methods(http.MethodGet)

	return r
}

func healthHandler(check func(r *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			if err := check(r); err != nil {
				writeErrorMessage(w, http.StatusServiceUnavailable, err.Error())
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
