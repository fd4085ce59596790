package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"chispa_server/services"
)

// ProfileController serves the caller's own profile. Other profiles are only
// ever seen through the candidate feed and matches.
type ProfileController struct {
	ProfileService *services.ProfileService
}

func NewProfileController(service *services.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: service}
}

// HandleGetProfile - the caller's profile.
func (c *ProfileController) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := callerProfile(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdateProfile - owner-only update of the mutable display fields.
func (c *ProfileController) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := callerProfile(w, r)
	if !ok {
		return
	}

	var update services.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := c.ProfileService.UpdateProfile(r.Context(), profile.ProfileID, update)
	if err != nil {
		log.Printf("❌ Failed to update profile: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}
