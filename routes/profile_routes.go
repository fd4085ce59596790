package routes

import (
	"chispa_server/controllers"
	"chispa_server/services"

	"github.com/gorilla/mux"
)

// RegisterProfileRoutes sets up routes for the caller's profile under /profile
func RegisterProfileRoutes(r *mux.Router, profileService *services.ProfileService) {
	controller := controllers.NewProfileController(profileService)

	profileRouter := r.PathPrefix("/profile").Subrouter()
	profileRouter.HandleFunc("", controller.HandleGetProfile).Methods("GET")
	profileRouter.HandleFunc("", controller.HandleUpdateProfile).Methods("PUT")
}
