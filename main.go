package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"chispa_server/config"
	"chispa_server/middleware"
	"chispa_server/routes"
	"chispa_server/services"
	"chispa_server/socket"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	cfg := config.MustLoad("")

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient(cfg.AWS.Region)
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	profileService := &services.ProfileService{Dynamo: dynamoService}
	mediaService := &services.MediaService{
		Dynamo:    dynamoService,
		Presigner: s3.NewPresignClient(services.InitializeS3Client(cfg.AWS.Region)),
		Bucket:    cfg.AWS.S3Bucket,
	}
	swipeService := &services.SwipeService{Dynamo: dynamoService, Profiles: profileService}
	chatService := &services.ChatService{Dynamo: dynamoService, Profiles: profileService, Media: mediaService}
	authService := &services.AuthService{Secret: []byte(cfg.Auth.JWTSecret), Profiles: profileService}

	// Realtime gateway
	socketServer := socket.NewSocketServer(cfg.Socket, authService, chatService)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Chispa")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Socket handshake does its own auth; everything under /api goes through
	// the bearer middleware.
	r.Handle("/socket.io/", socketServer)

	api := r.PathPrefix("/api").Subrouter()
	authMiddleware := middleware.NewAuthMiddleware(authService)
	api.Use(authMiddleware.Handle)

	routes.RegisterSwipeRoutes(api, swipeService, cfg.Feed.CandidateLimit)
	routes.RegisterChatRoutes(api, chatService, cfg.Chat.PageSize)
	routes.RegisterMediaRoutes(api, mediaService)
	routes.RegisterProfileRoutes(api, profileService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, corsHandler))
}
