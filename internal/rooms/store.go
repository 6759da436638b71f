package rooms

import (
    "log/slog"
    "sync"
    "time"

    "github.com/samber/lo"
)

var storeLogger = slog.With("component", "rooms")

// Participant — присутствие пользователя в одной комнате.
type Participant struct {
    UserID   string
    Username string
    ConnID   string
    JoinedAt time.Time
}

// room хранит участников и порядок их входа. Срезы, которые отдает Store,
// всегда в этом порядке, поэтому все клиенты видят одинаковый список.
type room struct {
    order  []*Participant
    byUser map[string]*Participant
}

func (rm *room) snapshot() []Participant {
    return lo.Map(rm.order, func(p *Participant, _ int) Participant {
        return *p
    })
}

// Store — единственный владелец отображения комната -> участники.
type Store struct {
    mu    sync.RWMutex
    rooms map[string]*room
}

func NewStore() *Store {
    return &Store{rooms: make(map[string]*room)}
}

// Join добавляет участника, создавая комнату при первом входе. Повторный
// вход того же userID перезаписывает запись на месте: новое соединение и
// имя, прежняя позиция в списке. Возвращает текущий состав комнаты.
func (s *Store) Join(roomID, userID, username, connID string) []Participant {
    s.mu.Lock()
    defer s.mu.Unlock()

    rm, ok := s.rooms[roomID]
    if !ok {
        rm = &room{byUser: make(map[string]*Participant)}
        s.rooms[roomID] = rm
        storeLogger.Info("Room created", "room", roomID)
    }

    if p, ok := rm.byUser[userID]; ok {
        p.Username = username
        p.ConnID = connID
        return rm.snapshot()
    }

    p := &Participant{
        UserID:   userID,
        Username: username,
        ConnID:   connID,
        JoinedAt: time.Now(),
    }
    rm.byUser[userID] = p
    rm.order = append(rm.order, p)
    return rm.snapshot()
}

// Leave убирает участника из комнаты. Идемпотентна: отсутствующий
// пользователь — не ошибка, removed=false. Опустевшая комната удаляется
// сразу же; повторный Join с тем же идентификатором начинает с чистого
// состояния.
func (s *Store) Leave(roomID, userID string) (snapshot []Participant, removed, deleted bool) {
    s.mu.Lock()
    defer s.mu.Unlock()

    rm, ok := s.rooms[roomID]
    if !ok {
        return nil, false, false
    }
    if _, ok := rm.byUser[userID]; !ok {
        return rm.snapshot(), false, false
    }

    delete(rm.byUser, userID)
    for i, p := range rm.order {
        if p.UserID == userID {
            rm.order = append(rm.order[:i], rm.order[i+1:]...)
            break
        }
    }

    if len(rm.order) == 0 {
        delete(s.rooms, roomID)
        storeLogger.Info("Room deleted", "room", roomID)
        return nil, true, true
    }
    return rm.snapshot(), true, false
}

// Members возвращает состав комнаты; для неизвестной комнаты — пустой срез.
func (s *Store) Members(roomID string) []Participant {
    s.mu.RLock()
    defer s.mu.RUnlock()

    rm, ok := s.rooms[roomID]
    if !ok {
        return nil
    }
    return rm.snapshot()
}

// Member возвращает запись одного участника и признак его присутствия.
func (s *Store) Member(roomID, userID string) (Participant, bool) {
    s.mu.RLock()
    defer s.mu.RUnlock()

    rm, ok := s.rooms[roomID]
    if !ok {
        return Participant{}, false
    }
    p, ok := rm.byUser[userID]
    if !ok {
        return Participant{}, false
    }
    return *p, true
}
