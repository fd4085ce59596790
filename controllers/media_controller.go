package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"chispa_server/services"
)

// MediaController hands out presigned upload URLs and registers Media
// records once the client finished uploading.
type MediaController struct {
	MediaService *services.MediaService
}

func NewMediaController(service *services.MediaService) *MediaController {
	return &MediaController{MediaService: service}
}

// HandleGetUploadURL - presigned S3 PUT URL for a new object.
func (c *MediaController) HandleGetUploadURL(w http.ResponseWriter, r *http.Request) {
	if _, ok := callerProfile(w, r); !ok {
		return
	}

	var request struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.FileName == "" {
		writeError(w, http.StatusBadRequest, "fileName and fileType are required")
		return
	}

	uploadURL, key, err := c.MediaService.GenerateUploadURL(request.FileName, request.FileType)
	if err != nil {
		log.Printf("❌ Failed to presign upload: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to create upload URL")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"uploadUrl": uploadURL,
		"key":       key,
	})
}

// HandleCreateMedia - register the Media record for an uploaded object.
func (c *MediaController) HandleCreateMedia(w http.ResponseWriter, r *http.Request) {
	profile, ok := callerProfile(w, r)
	if !ok {
		return
	}

	var request struct {
		Key      string `json:"key"`
		MimeType string `json:"mimeType"`
		Size     int64  `json:"size"`
		Type     string `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	media, err := c.MediaService.CreateMedia(r.Context(), request.Key, request.MimeType, request.Size, request.Type, profile.ProfileID)
	if err != nil {
		log.Printf("❌ Failed to register media: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, media)
}
