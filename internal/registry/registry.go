package registry

import (
    "errors"
    "log/slog"
    "sync"
)

var registryLogger = slog.With("component", "registry")

var (
    // ErrAlreadyBound — соединение уже представляет другую личность.
    ErrAlreadyBound = errors.New("connection already bound to another identity")
    // ErrNotBound — у соединения нет привязки.
    ErrNotBound = errors.New("connection is not bound")
)

// Binding — личность соединения и комнаты, в которых оно состоит,
// в порядке входа.
type Binding struct {
    UserID   string
    Username string
    Rooms    []string
}

// Registry хранит привязку соединение -> личность. Обратный индекс:
// при отключении не нужно перебирать все комнаты и всех участников.
type Registry struct {
    mu       sync.RWMutex
    bindings map[string]*Binding
}

func New() *Registry {
    return &Registry{bindings: make(map[string]*Binding)}
}

// Bind регистрирует личность соединения в комнате. Повторный Bind с тем же
// userID добавляет комнату и обновляет имя; с другим userID — ErrAlreadyBound:
// соединение представляет ровно одну личность, пока не вызван Unbind.
func (r *Registry) Bind(connID, roomID, userID, username string) error {
    r.mu.Lock()
    defer r.mu.Unlock()

    b, ok := r.bindings[connID]
    if !ok {
        r.bindings[connID] = &Binding{
            UserID:   userID,
            Username: username,
            Rooms:    []string{roomID},
        }
        return nil
    }

    if b.UserID != userID {
        registryLogger.Warn("Rejected second identity for connection",
            "conn_id", connID,
            "bound_user", b.UserID,
            "attempted_user", userID)
        return ErrAlreadyBound
    }

    b.Username = username
    for _, id := range b.Rooms {
        if id == roomID {
            return nil
        }
    }
    b.Rooms = append(b.Rooms, roomID)
    return nil
}

// DropRoom убирает одну комнату из привязки. Когда комнат не остается,
// привязка снимается целиком: соединение снова свободно для новой личности.
func (r *Registry) DropRoom(connID, roomID string) {
    r.mu.Lock()
    defer r.mu.Unlock()

    b, ok := r.bindings[connID]
    if !ok {
        return
    }
    for i, id := range b.Rooms {
        if id == roomID {
            b.Rooms = append(b.Rooms[:i], b.Rooms[i+1:]...)
            break
        }
    }
    if len(b.Rooms) == 0 {
        delete(r.bindings, connID)
    }
}

// Unbind снимает привязку. Идемпотентен: без ошибки, если привязки не было.
func (r *Registry) Unbind(connID string) {
    r.mu.Lock()
    defer r.mu.Unlock()
    delete(r.bindings, connID)
}

// Lookup возвращает копию привязки соединения или ErrNotBound.
func (r *Registry) Lookup(connID string) (Binding, error) {
    r.mu.RLock()
    defer r.mu.RUnlock()

    b, ok := r.bindings[connID]
    if !ok {
        return Binding{}, ErrNotBound
    }
    return Binding{
        UserID:   b.UserID,
        Username: b.Username,
        Rooms:    append([]string(nil), b.Rooms...),
    }, nil
}
