package controllers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"chispa_server/services"

	"github.com/gorilla/mux"
)

// ChatController serves the chat list, message pages and the REST send
// fallback used when the realtime channel is unavailable.
type ChatController struct {
	ChatService *services.ChatService
	PageSize    int
}

func NewChatController(service *services.ChatService, pageSize int) *ChatController {
	return &ChatController{ChatService: service, PageSize: pageSize}
}

// HandleGetChats - the caller's chat list, most recent activity first.
func (c *ChatController) HandleGetChats(w http.ResponseWriter, r *http.Request) {
	profile, ok := callerProfile(w, r)
	if !ok {
		return
	}

	chats, err := c.ChatService.ListChats(r.Context(), profile.ProfileID)
	if err != nil {
		log.Printf("❌ Error fetching chats: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, chats)
}

// HandleGetMessages - one page of a chat's log, oldest first. Page 1 holds
// the oldest messages; clients walk forward until hasMore turns false.
func (c *ChatController) HandleGetMessages(w http.ResponseWriter, r *http.Request) {
	profile, ok := callerProfile(w, r)
	if !ok {
		return
	}
	chatID := mux.Vars(r)["id"]

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page <= 0 {
		page = 1
	}
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = c.PageSize
	}

	chat, err := c.ChatService.GetChat(r.Context(), chatID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !chat.HasParticipant(profile.ProfileID) {
		writeServiceError(w, services.ErrUnauthorized)
		return
	}

	result, err := c.ChatService.PageMessages(r.Context(), chatID, page, limit)
	if err != nil {
		log.Printf("❌ Error fetching messages: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HandleSendMessage - REST fallback for message delivery. Persists through
// the same validation path as the realtime gateway; the message shows up in
// subsequent page fetches even though nothing is broadcast here.
func (c *ChatController) HandleSendMessage(w http.ResponseWriter, r *http.Request) {
	profile, ok := callerProfile(w, r)
	if !ok {
		return
	}
	chatID := mux.Vars(r)["id"]

	var request struct {
		Content string `json:"content"`
		MediaID string `json:"mediaId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	payload, err := c.ChatService.AppendMessage(r.Context(), chatID, profile.ProfileID, request.Content, request.MediaID)
	if err != nil {
		log.Printf("❌ Failed to send message: %v", err)
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, payload)
}
