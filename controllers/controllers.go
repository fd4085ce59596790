package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"chispa_server/middleware"
	"chispa_server/models"
	"chispa_server/services"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "You do not have access to this resource")
	case errors.Is(err, services.ErrAlreadyDecided):
		writeError(w, http.StatusBadRequest, "You already swiped on this profile")
	case errors.Is(err, services.ErrSelfSwipe):
		writeError(w, http.StatusBadRequest, "You cannot swipe on your own profile")
	case errors.Is(err, services.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, services.ErrEmptyMessage):
		writeError(w, http.StatusBadRequest, "Message needs content or media")
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// callerProfile pulls the authenticated profile injected by the auth
// middleware; a miss means the route was mounted outside it.
func callerProfile(w http.ResponseWriter, r *http.Request) (*models.Profile, bool) {
	profile, ok := middleware.ProfileFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	return profile, true
}
