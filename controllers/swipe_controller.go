package controllers

import (
	"log"
	"net/http"

	"chispa_server/services"

	"github.com/gorilla/mux"
)

// SwipeController serves the candidate feed and the like/dislike decisions.
type SwipeController struct {
	SwipeService   *services.SwipeService
	CandidateLimit int
}

func NewSwipeController(service *services.SwipeService, candidateLimit int) *SwipeController {
	return &SwipeController{SwipeService: service, CandidateLimit: candidateLimit}
}

// HandleGetCandidates - candidates for the caller's swipe feed.
func (c *SwipeController) HandleGetCandidates(w http.ResponseWriter, r *http.Request) {
	profile, ok := callerProfile(w, r)
	if !ok {
		return
	}

	candidates, err := c.SwipeService.ListCandidates(r.Context(), *profile, c.CandidateLimit)
	if err != nil {
		log.Printf("❌ Error fetching candidates: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, candidates)
}

// HandleLike - record a like; returns the match and chat when the like
// completed a mutual pair.
func (c *SwipeController) HandleLike(w http.ResponseWriter, r *http.Request) {
	profile, ok := callerProfile(w, r)
	if !ok {
		return
	}
	targetID := mux.Vars(r)["id"]

	result, err := c.SwipeService.RecordLike(r.Context(), profile.ProfileID, targetID)
	if err != nil {
		log.Printf("❌ Error recording like: %v", err)
		writeServiceError(w, err)
		return
	}

	message := "Like registered"
	if result.Match != nil {
		message = "It's a match!"
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"match":   result.Match,
		"chat":    result.Chat,
		"message": message,
	})
}

// HandleDislike - record a dislike; terminal, no match detection.
func (c *SwipeController) HandleDislike(w http.ResponseWriter, r *http.Request) {
	profile, ok := callerProfile(w, r)
	if !ok {
		return
	}
	targetID := mux.Vars(r)["id"]

	if err := c.SwipeService.RecordDislike(r.Context(), profile.ProfileID, targetID); err != nil {
		log.Printf("❌ Error recording dislike: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Dislike registered"})
}

// HandleGetMatches - the caller's matches with counterpart profiles and
// chat summaries.
func (c *SwipeController) HandleGetMatches(w http.ResponseWriter, r *http.Request) {
	profile, ok := callerProfile(w, r)
	if !ok {
		return
	}

	matches, err := c.SwipeService.ListMatches(r.Context(), profile.ProfileID)
	if err != nil {
		log.Printf("❌ Error fetching matches: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, matches)
}
