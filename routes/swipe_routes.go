package routes

import (
	"chispa_server/controllers"
	"chispa_server/services"

	"github.com/gorilla/mux"
)

// RegisterSwipeRoutes sets up routes for the swipe feed under /swipe
func RegisterSwipeRoutes(r *mux.Router, swipeService *services.SwipeService, candidateLimit int) {
	controller := controllers.NewSwipeController(swipeService, candidateLimit)

	swipeRouter := r.PathPrefix("/swipe").Subrouter()
	swipeRouter.HandleFunc("/candidates", controller.HandleGetCandidates).Methods("GET")
	swipeRouter.HandleFunc("/like/{id}", controller.HandleLike).Methods("POST")
	swipeRouter.HandleFunc("/dislike/{id}", controller.HandleDislike).Methods("POST")
	swipeRouter.HandleFunc("/matches", controller.HandleGetMatches).Methods("GET")
}
