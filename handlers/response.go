package handlers

import (
	"net/http"
	"strconv"

	"nfl-playoff-pickem/logging"
	"nfl-playoff-pickem/services"

	"github.com/bytedance/sonic"
	"github.com/gorilla/mux"
)

var jsonAPI = sonic.ConfigStd

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := jsonAPI.NewEncoder(w).Encode(v); err != nil {
		logging.Errorf("Handlers: failed to encode response: %v", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeError maps the service error taxonomy onto HTTP statuses. A locked
// game always answers with the same distinguishable message.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case services.IsGameLocked(err):
		writeErrorMessage(w, http.StatusConflict, services.ErrGameLocked.Error())
	case services.IsValidation(err):
		writeErrorMessage(w, http.StatusBadRequest, err.Error())
	case services.IsNotFound(err):
		writeErrorMessage(w, http.StatusNotFound, err.Error())
	case services.IsFeedUnavailable(err):
		writeErrorMessage(w, http.StatusServiceUnavailable, services.ErrFeedUnavailable.Error())
	default:
		logging.Errorf("Handlers: internal error: %v", err)
		writeErrorMessage(w, http.StatusInternalServerError, "internal error")
	}
}

// pathInt reads an integer route variable
func pathInt(r *http.Request, name string) (int, bool) {
	v, err := strconv.Atoi(mux.Vars(r)[name])
	return v, err == nil
}

// queryWeek reads the optional ?week= filter
func queryWeek(r *http.Request) (*int, bool) {
	raw := r.URL.Query().Get("week")
	if raw == "" {
		return nil, true
	}
	week, err := strconv.Atoi(raw)
	if err != nil {
		return nil, false
	}
	return &week, true
}
