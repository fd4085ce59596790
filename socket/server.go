package socket

import (
	"context"
	"errors"
	"log"
	"strings"

	"chispa_server/config"
	"chispa_server/models"
	"chispa_server/services"

	socketio "github.com/googollee/go-socket.io"
)

// connContext is the per-connection state set once the handshake credential
// checks out. Nothing else survives a disconnect; room memberships are
// rebuilt from the datastore on the next connect.
type connContext struct {
	userID    string
	profileID string
}

type sendMessagePayload struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
	MediaID string `json:"mediaId"`
}

type typingPayload struct {
	ChatID string `json:"chatId"`
}

type readPayload struct {
	ChatID     string   `json:"chatId"`
	MessageIDs []string `json:"messageIds"`
}

func chatRoom(chatID string) string {
	return "chat:" + chatID
}

func profileRoom(profileID string) string {
	return "profile:" + profileID
}

// NewSocketServer builds the realtime gateway. Connections authenticate at
// handshake time; an invalid credential rejects the connection before any
// event is processed. Room broadcasts go through the Redis adapter when
// configured, so multiple gateway instances stay in sync without sharing
// process state.
func NewSocketServer(cfg config.SocketConfig, auth *services.AuthService, chats *services.ChatService) *socketio.Server {
	server := socketio.NewServer(nil)

	if cfg.RedisHost != "" {
		ok, err := server.Adapter(&socketio.RedisAdapterOptions{
			Host:   cfg.RedisHost,
			Port:   cfg.RedisPort,
			Prefix: cfg.RedisPrefix,
		})
		if err != nil || !ok {
			log.Printf("❌ Socket Redis adapter unavailable: %v", err)
		} else {
			log.Println("✅ Socket Redis adapter enabled")
		}
	}

	server.OnConnect("/", func(s socketio.Conn) error {
		token := handshakeToken(s)
		if token == "" {
			return services.ErrUnauthorized
		}

		profile, err := auth.ProfileForToken(context.Background(), token)
		if err != nil {
			log.Printf("❌ Socket handshake rejected: %v", err)
			return services.ErrUnauthorized
		}

		s.SetContext(connContext{userID: profile.UserID, profileID: profile.ProfileID})
		s.Join(profileRoom(profile.ProfileID))
		// Bulk room join: messages can arrive before the client explicitly
		// opens any chat.
		joinAllChats(s, chats, profile.ProfileID)

		log.Printf("✅ Socket connected: %s (profile %s)", s.ID(), profile.ProfileID)
		return nil
	})

	// Reconnect path: re-subscribe to every chat room. Idempotent, a second
	// join of the same room is a no-op.
	server.OnEvent("/", "join:chats", func(s socketio.Conn) {
		cc, ok := connInfo(s)
		if !ok {
			return
		}
		joinAllChats(s, chats, cc.profileID)
	})

	// Opening a specific chat is a privileged operation: membership is
	// re-verified against the chat row, not inferred from room state.
	server.OnEvent("/", "join:chat", func(s socketio.Conn, chatID string) {
		cc, ok := connInfo(s)
		if !ok {
			return
		}

		chat, err := chats.GetChat(context.Background(), chatID)
		if err != nil {
			s.Emit("message:error", errorPayload(err))
			return
		}
		if !chat.HasParticipant(cc.profileID) {
			s.Emit("message:error", errorPayload(services.ErrUnauthorized))
			return
		}
		s.Join(chatRoom(chatID))
	})

	server.OnEvent("/", "message:send", func(s socketio.Conn, data sendMessagePayload) {
		cc, ok := connInfo(s)
		if !ok {
			s.Emit("message:error", errorPayload(services.ErrUnauthorized))
			return
		}

		// The sender identity comes from the authenticated connection; the
		// client's claims end at the payload fields.
		payload, err := chats.AppendMessage(context.Background(), data.ChatID, cc.profileID, data.Content, data.MediaID)
		if err != nil {
			log.Printf("❌ message:send failed for %s: %v", s.ID(), err)
			s.Emit("message:error", errorPayload(err))
			return
		}

		server.BroadcastToRoom("/", chatRoom(data.ChatID), "message:received", payload)

		// Chat list refresh for the two participants only.
		if chat, err := chats.GetChat(context.Background(), data.ChatID); err == nil {
			for _, profileID := range []string{chat.ProfileA, chat.ProfileB} {
				server.BroadcastToRoom("/", profileRoom(profileID), "chat:updated", map[string]string{"chatId": data.ChatID})
			}
		}
	})

	// Typing indicators are ephemeral: no persistence, no delivery
	// guarantee, never echoed back to the sender.
	server.OnEvent("/", "typing:start", func(s socketio.Conn, data typingPayload) {
		relayTyping(server, s, "typing:start", data.ChatID)
	})
	server.OnEvent("/", "typing:stop", func(s socketio.Conn, data typingPayload) {
		relayTyping(server, s, "typing:stop", data.ChatID)
	})

	server.OnEvent("/", "messages:read", func(s socketio.Conn, data readPayload) {
		cc, ok := connInfo(s)
		if !ok {
			return
		}

		flipped, err := chats.MarkMessagesRead(context.Background(), data.ChatID, cc.profileID, data.MessageIDs)
		if err != nil {
			s.Emit("message:error", errorPayload(err))
			return
		}
		if len(flipped) == 0 {
			return
		}

		// Receipts go to the counterpart's profile room rather than the chat
		// room: room broadcasts traverse the Redis adapter, so the sender
		// learns about the read even when it is connected to another gateway
		// instance, and the reader is excluded by construction.
		if chat, err := chats.GetChat(context.Background(), data.ChatID); err == nil {
			server.BroadcastToRoom("/", readReceiptRoom(chat, cc.profileID), "messages:read", map[string]interface{}{
				"chatId":     data.ChatID,
				"messageIds": flipped,
			})
		}
	})

	server.OnError("/", func(s socketio.Conn, err error) {
		log.Printf("❌ Socket error: %v", err)
	})

	server.OnDisconnect("/", func(s socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", s.ID(), reason)
	})

	return server
}

// handshakeToken pulls the bearer credential from the handshake request:
// token query param first, Authorization header as fallback.
func handshakeToken(s socketio.Conn) string {
	u := s.URL()
	if token := u.Query().Get("token"); token != "" {
		return token
	}
	authHeader := s.RemoteHeader().Get("Authorization")
	if parts := strings.Split(authHeader, " "); len(parts) == 2 {
		return parts[1]
	}
	return ""
}

// readReceiptRoom names the room a read receipt is delivered to: the profile
// room of the participant who did not do the reading.
func readReceiptRoom(chat *models.Chat, readerID string) string {
	return profileRoom(chat.Counterpart(readerID))
}

func connInfo(s socketio.Conn) (connContext, bool) {
	cc, ok := s.Context().(connContext)
	return cc, ok
}

func joinAllChats(s socketio.Conn, chats *services.ChatService, profileID string) {
	chatList, err := chats.ChatsForProfile(context.Background(), profileID)
	if err != nil {
		log.Printf("❌ Failed to join chat rooms for %s: %v", profileID, err)
		return
	}
	for _, chat := range chatList {
		s.Join(chatRoom(chat.ChatID))
	}
}

func relayTyping(server *socketio.Server, s socketio.Conn, event, chatID string) {
	cc, ok := connInfo(s)
	if !ok || chatID == "" {
		return
	}
	broadcastExcept(server, s, chatRoom(chatID), event, map[string]string{
		"userId":    cc.userID,
		"profileId": cc.profileID,
	})
}

// broadcastExcept fans an event out to every local room member except the
// sender. ForEach only sees connections on this instance, so this is for
// best-effort traffic like typing; anything that must cross gateway
// instances goes through BroadcastToRoom instead.
func broadcastExcept(server *socketio.Server, sender socketio.Conn, room, event string, payload interface{}) {
	server.ForEach("/", room, func(c socketio.Conn) {
		if c.ID() != sender.ID() {
			c.Emit(event, payload)
		}
	})
}

func errorPayload(err error) map[string]string {
	message := "Failed to process message"
	switch {
	case errors.Is(err, services.ErrUnauthorized):
		message = "You do not have access to this chat"
	case errors.Is(err, services.ErrNotFound):
		message = "Chat not found"
	case errors.Is(err, services.ErrEmptyMessage):
		message = "Message needs content or media"
	}
	return map[string]string{"error": message}
}
