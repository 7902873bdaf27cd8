package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/Dosada05/style-duel/brackets"
	"github.com/Dosada05/style-duel/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true
	},
}

type WebSocketHandler struct {
	hub *brackets.Hub
}

func NewWebSocketHandler(hub *brackets.Hub) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
	}
}

// ServeWs подключает клиента к персональной комнате пользователя.
// Сюда прилетают события TOURNAMENT_COMPLETED после финализации сессии.
// Клиент подключается к /ws/users/{userID}.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	userIDStr := chi.URLParam(r, "userID")
	userID, err := strconv.Atoi(userIDStr)
	if err != nil || userID <= 0 {
		http.Error(w, "Invalid userID", http.StatusBadRequest)
		return
	}

	// Подписываться можно только на собственную комнату.
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if currentUserID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту, здесь просто логируем.
		log.Printf("failed to upgrade connection for user %d: %v", userID, err)
		return
	}

	client := &brackets.Client{
		Hub:  h.hub,
		Conn: conn,
		Send: make(chan []byte, 256),
		Room: brackets.UserRoom(userID),
	}
	client.Hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}
