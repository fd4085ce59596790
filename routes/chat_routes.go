package routes

import (
	"chispa_server/controllers"
	"chispa_server/services"

	"github.com/gorilla/mux"
)

// RegisterChatRoutes sets up routes for chat lists and messages under /chats
func RegisterChatRoutes(r *mux.Router, chatService *services.ChatService, pageSize int) {
	controller := controllers.NewChatController(chatService, pageSize)

	chatRouter := r.PathPrefix("/chats").Subrouter()
	chatRouter.HandleFunc("", controller.HandleGetChats).Methods("GET")
	chatRouter.HandleFunc("/{id}/messages", controller.HandleGetMessages).Methods("GET")
	chatRouter.HandleFunc("/{id}/messages", controller.HandleSendMessage).Methods("POST")
}
