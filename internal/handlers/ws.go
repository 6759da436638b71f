package handlers

import (
    "net/http"
    "log/slog"

    "github.com/google/uuid"
    "github.com/gorilla/websocket"

    "Aula/internal/models"
    wsHub "Aula/internal/websocket"
)

var wsLogger = slog.With("component", "ws")

type WSHandler struct {
    Hub           *wsHub.Hub
    AllowedOrigin string
}

func NewWSHandler(hub *wsHub.Hub, allowedOrigin string) *WSHandler {
    return &WSHandler{Hub: hub, AllowedOrigin: allowedOrigin}
}

// ServeWS обрабатывает WebSocket подключения. Личность у соединения
// появится позже, первым событием join.
func (wh *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
    wsLogger.Info("WebSocket connection attempt",
        "origin", r.Header.Get("Origin"),
        "remote", r.RemoteAddr)

    // Превращаем HTTP запрос в WebSocket соединение
    upgrader := &websocket.Upgrader{
        CheckOrigin: func(r *http.Request) bool {
            origin := r.Header.Get("Origin")
            if origin == "" || origin == wh.AllowedOrigin {
                return true
            }
            // Для локальной разработки
            allowedOrigins := []string{
                "http://localhost:5173",
                "http://127.0.0.1:5173",
            }
            for _, allowed := range allowedOrigins {
                if origin == allowed {
                    return true
                }
            }
            return false
        },

        // БУФЕРЫ ДЛЯ WebRTC
        ReadBufferSize:  4096,
        WriteBufferSize: 4096,
    }

    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        wsLogger.Error("Error WebSocket upgrade", "error", err)
        return
    }

    // Создаем нового клиента
    client := &wsHub.Client{
        ID:   uuid.NewString(),
        Hub:  wh.Hub,
        Conn: conn,
        Send: make(chan models.Message, 1024),
    }

    wsLogger.Info("WebSocket connection established", "conn_id", client.ID, "remote", r.RemoteAddr)

    // Регистрируем клиента в Hub
    wh.Hub.Register <- client

    // Запускаем горутины для чтения и записи
    go client.WritePump()
    go client.ReadPump()
}
