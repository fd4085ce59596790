package routes

import (
	"chispa_server/controllers"
	"chispa_server/services"

	"github.com/gorilla/mux"
)

// RegisterMediaRoutes sets up routes for media uploads under /media
func RegisterMediaRoutes(r *mux.Router, mediaService *services.MediaService) {
	controller := controllers.NewMediaController(mediaService)

	mediaRouter := r.PathPrefix("/media").Subrouter()
	mediaRouter.HandleFunc("/upload-url", controller.HandleGetUploadURL).Methods("POST")
	mediaRouter.HandleFunc("", controller.HandleCreateMedia).Methods("POST")
}
