package websocket

import (
    "log/slog"

    "github.com/samber/lo"

    "Aula/internal/models"
    "Aula/internal/registry"
    "Aula/internal/rooms"
)

var hubLogger = slog.With("component", "hub")

// Event — входящее событие вместе с соединением-источником.
type Event struct {
    Client  *Client
    Message models.Message
}

// Hub управляет всеми клиентами: присутствие, чат и ретрансляция WebRTC.
// Все мутации состава комнат проходят через один цикл Run, поэтому каждая
// мутация вместе с её рассылкой завершается до обработки следующего события.
type Hub struct {
    Registry *registry.Registry
    Rooms    *rooms.Store

    // Живые клиенты по идентификатору соединения
    clients map[string]*Client

    // Каналы для коммуникации
    Inbound    chan Event   // события от клиентов
    Register   chan *Client // регистрация новых соединений
    Unregister chan *Client // отключение соединений

    // Клиенты с переполненной очередью; отключаются после завершения
    // текущей рассылки, не посреди нее
    slow []*Client

    done chan struct{}
}

// NewHub создает новый Hub поверх реестра соединений и хранилища комнат.
func NewHub(reg *registry.Registry, store *rooms.Store) *Hub {
    return &Hub{
        Registry:   reg,
        Rooms:      store,
        clients:    make(map[string]*Client),
        Inbound:    make(chan Event, 256),
        Register:   make(chan *Client),
        Unregister: make(chan *Client),
        done:       make(chan struct{}),
    }
}

func (h *Hub) Run() {
    for {
        select {
        case client := <-h.Register:
            h.clients[client.ID] = client
            hubLogger.Info("Client connected", "conn_id", client.ID)

        case client := <-h.Unregister:
            h.disconnect(client)
            h.reapSlow()

        case ev := <-h.Inbound:
            h.dispatch(ev)
            h.reapSlow()

        case <-h.done:
            return
        }
    }
}

func (h *Hub) Stop() {
    close(h.done)
}

func (h *Hub) dispatch(ev Event) {
    msg := ev.Message
    switch msg.Type {
    case models.MessageTypeJoin:
        h.handleJoin(ev.Client, msg)
    case models.MessageTypeLeave:
        h.handleLeave(ev.Client, msg)
    case models.MessageTypeChat:
        h.handleChat(ev.Client, msg)
    case models.MessageTypeMediaStarted, models.MessageTypeMediaStopped:
        h.handleMedia(ev.Client, msg)
    case models.MessageTypeWebRTCOffer, models.MessageTypeWebRTCAnswer, models.MessageTypeWebRTCCandidate:
        h.handleWebRTC(ev.Client, msg)
    default:
        hubLogger.Warn("Unknown event type", "type", msg.Type, "conn_id", ev.Client.ID)
    }
}

// handleJoin привязывает личность к соединению и вводит её в комнату.
func (h *Hub) handleJoin(c *Client, msg models.Message) {
    if msg.RoomID == "" || msg.UserID == "" {
        h.protocolError(c, msg.Type, "room_id and user_id are required")
        return
    }

    if err := h.Registry.Bind(c.ID, msg.RoomID, msg.UserID, msg.Username); err != nil {
        hubLogger.Warn("Join rejected", "conn_id", c.ID, "user", msg.UserID, "error", err)
        h.send(c, models.Message{
            Type:  models.MessageTypeError,
            Error: "connection already bound to another user",
        })
        return
    }

    snapshot := h.Rooms.Join(msg.RoomID, msg.UserID, msg.Username, c.ID)
    h.broadcastPresence(msg.RoomID, snapshot, c.ID, models.Message{
        Type:     models.MessageTypeUserJoined,
        RoomID:   msg.RoomID,
        UserID:   msg.UserID,
        Username: msg.Username,
    })
    hubLogger.Info("User joined room", "room", msg.RoomID, "user", msg.UserID, "conn_id", c.ID)
}

// handleLeave — явный выход из комнаты, соединение остается открытым.
func (h *Hub) handleLeave(c *Client, msg models.Message) {
    if msg.RoomID == "" {
        h.protocolError(c, msg.Type, "room_id is required")
        return
    }
    binding, err := h.Registry.Lookup(c.ID)
    if err != nil {
        return // нет привязки — нечего покидать
    }
    h.leaveRoom(c.ID, msg.RoomID, binding.UserID, binding.Username)
    h.Registry.DropRoom(c.ID, msg.RoomID)
}

// handleChat рассылает сообщение всем участникам комнаты, включая
// отправителя: вся лента строится из единого серверного потока событий,
// без локального оптимизма на клиенте.
func (h *Hub) handleChat(c *Client, msg models.Message) {
    if msg.RoomID == "" || msg.Content == "" {
        h.protocolError(c, msg.Type, "room_id and content are required")
        return
    }
    for _, p := range h.Rooms.Members(msg.RoomID) {
        if client, ok := h.clients[p.ConnID]; ok {
            h.send(client, msg)
        }
    }
}

// handleMedia уведомляет остальных участников комнаты о старте или
// остановке трансляции. Состояние комнаты не меняется.
func (h *Hub) handleMedia(c *Client, msg models.Message) {
    if msg.RoomID == "" || msg.UserID == "" {
        h.protocolError(c, msg.Type, "room_id and user_id are required")
        return
    }
    for _, p := range h.Rooms.Members(msg.RoomID) {
        if p.ConnID == c.ID {
            continue
        }
        if client, ok := h.clients[p.ConnID]; ok {
            h.send(client, msg)
        }
    }
}

// handleWebRTC ретранслирует offer/answer/candidate одному адресату.
// Payload не разбирается; поле source проставляет сервер, значение
// клиента игнорируется — подделать источник нельзя.
func (h *Hub) handleWebRTC(c *Client, msg models.Message) {
    if msg.RoomID == "" || msg.TargetUser == "" {
        h.protocolError(c, msg.Type, "room_id and target_user are required")
        return
    }
    binding, err := h.Registry.Lookup(c.ID)
    if err != nil {
        return // ретрансляция доступна только после join
    }

    target, ok := h.Rooms.Member(msg.RoomID, msg.TargetUser)
    if !ok {
        // Адресат уже вышел из комнаты — штатная ситуация при гонке,
        // сообщение молча отбрасывается
        hubLogger.Debug("Relay target not in room", "room", msg.RoomID, "target", msg.TargetUser)
        return
    }
    client, ok := h.clients[target.ConnID]
    if !ok {
        return
    }

    msg.Source = binding.UserID
    h.send(client, msg)
}

// disconnect — единственный путь удаления участника без явного leave.
// Выводит личность соединения из всех её комнат и снимает привязку.
func (h *Hub) disconnect(c *Client) {
    if _, ok := h.clients[c.ID]; !ok {
        return // уже отключен, например из-за переполнения очереди
    }
    delete(h.clients, c.ID)
    close(c.Send)

    binding, err := h.Registry.Lookup(c.ID)
    if err != nil {
        hubLogger.Info("Client disconnected", "conn_id", c.ID)
        return // закрылся, не успев войти ни в одну комнату
    }

    for _, roomID := range binding.Rooms {
        // После rejoin с другого соединения запись принадлежит уже не нам:
        // устаревшее соединение не должно выбивать нового участника
        if p, ok := h.Rooms.Member(roomID, binding.UserID); ok && p.ConnID == c.ID {
            h.leaveRoom(c.ID, roomID, binding.UserID, binding.Username)
        }
    }
    h.Registry.Unbind(c.ID)
    hubLogger.Info("Client disconnected", "conn_id", c.ID, "user", binding.UserID)
}

// leaveRoom выполняет выход из одной комнаты с рассылкой. Повторный вызов
// для того же участника ничего не рассылает — leave идемпотентен.
func (h *Hub) leaveRoom(connID, roomID, userID, username string) {
    snapshot, removed, deleted := h.Rooms.Leave(roomID, userID)
    if !removed {
        return
    }
    if !deleted {
        h.broadcastPresence(roomID, snapshot, connID, models.Message{
            Type:     models.MessageTypeUserLeft,
            RoomID:   roomID,
            UserID:   userID,
            Username: username,
        })
    }
    hubLogger.Info("User left room", "room", roomID, "user", userID)
}

// broadcastPresence рассылает полный состав комнаты всем её соединениям,
// а дельту — всем, кроме соединения-инициатора: новому участнику нужен
// полный список, остальным достаточно изменения.
func (h *Hub) broadcastPresence(roomID string, snapshot []rooms.Participant, actorConnID string, delta models.Message) {
    users := lo.Map(snapshot, func(p rooms.Participant, _ int) models.User {
        return models.User{UserID: p.UserID, Username: p.Username}
    })
    full := models.Message{
        Type:   models.MessageTypeUsersList,
        RoomID: roomID,
        Users:  users,
    }
    for _, p := range snapshot {
        client, ok := h.clients[p.ConnID]
        if !ok {
            continue
        }
        if !h.send(client, full) {
            continue // очередь переполнена, дельту уже не шлем
        }
        if p.ConnID != actorConnID {
            h.send(client, delta)
        }
    }
}

// send кладет сообщение в очередь клиента, не блокируясь. Переполненная
// очередь равнозначна обрыву транспорта, но отключение откладывается до
// конца текущей рассылки: закрывать канал клиента посреди цикла, который
// еще может в него писать, нельзя.
func (h *Hub) send(c *Client, msg models.Message) bool {
    select {
    case c.Send <- msg:
        return true
    default:
        hubLogger.Warn("Client send queue full, scheduling disconnect", "conn_id", c.ID)
        h.slow = append(h.slow, c)
        return false
    }
}

// reapSlow отключает накопившихся медленных клиентов. Каждое отключение
// рассылает обновленный состав и само может пометить новых медленных,
// поэтому крутимся до пустого списка. Повторные пометки одного клиента
// безопасны: disconnect идемпотентен.
func (h *Hub) reapSlow() {
    for len(h.slow) > 0 {
        batch := h.slow
        h.slow = nil
        for _, c := range batch {
            h.disconnect(c)
        }
    }
}

// protocolError отбрасывает одно некорректное событие; состояние не
// меняется, соединение живет дальше.
func (h *Hub) protocolError(c *Client, eventType, reason string) {
    hubLogger.Warn("Malformed event rejected",
        "type", eventType,
        "reason", reason,
        "conn_id", c.ID)
    h.send(c, models.Message{Type: models.MessageTypeError, Error: reason})
}
