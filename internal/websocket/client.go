package websocket

import (
    "log"
    "time"

    "github.com/gorilla/websocket"

    "Aula/internal/models"
)

// Client представляет одно подключенное соединение. Личность у соединения
// появляется позже, первым событием join.
type Client struct {
    ID   string              // идентификатор соединения
    Hub  *Hub                // ссылка на главный Hub
    Conn *websocket.Conn     // WebSocket соединение
    Send chan models.Message // очередь исходящих для этого клиента
}

// unregister возвращает клиента в Hub. После остановки Hub очередь
// Unregister уже никто не читает, поэтому ждем и канал done.
func (c *Client) unregister() {
    select {
    case c.Hub.Unregister <- c:
    case <-c.Hub.done:
    }
}

// ReadPump читает события от браузера и отправляет их в Hub
func (c *Client) ReadPump() {
    defer func() {
        c.unregister() // при выходе — отключаемся от Hub
        c.Conn.Close()
    }()

    // Настройки соединения
    c.Conn.SetReadLimit(65536) // offer/candidate заметно крупнее чата
    c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))

    // Обработчик pong (для keep-alive)
    c.Conn.SetPongHandler(func(string) error {
        c.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
        return nil
    })

    for {
        var msg models.Message

        err := c.Conn.ReadJSON(&msg)
        if err != nil {
            if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
                log.Printf("WebSocket error: %v", err)
            }
            break
        }

        select {
        case c.Hub.Inbound <- Event{Client: c, Message: msg}:
        case <-c.Hub.done:
            return
        }
    }
}

// WritePump отправляет сообщения из канала Send в браузер
func (c *Client) WritePump() {
    ticker := time.NewTicker(54 * time.Second) // ping каждые 54 секунды
    defer func() {
        ticker.Stop()
        c.Conn.Close()
    }()

    for {
        select {
        case message, ok := <-c.Send:
            c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

            if !ok {
                // Hub закрыл канал — отправляем close message
                c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
                return
            }

            if err := c.Conn.WriteJSON(message); err != nil {
                log.Printf("Ошибка отправки сообщения: %v", err)
                return
            }

        case <-ticker.C:
            // Отправляем ping для поддержания соединения
            c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
            if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
                return
            }
        }
    }
}
