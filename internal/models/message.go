package models

import (
    "encoding/json"
    "time"
)

// Message — единый конверт для всех событий между клиентом и сервером.
// Поле Payload сервер не разбирает: WebRTC данные ретранслируются как есть.
type Message struct {
    Type       string          `json:"type"`
    RoomID     string          `json:"room_id,omitempty"`
    UserID     string          `json:"user_id,omitempty"`
    Username   string          `json:"username,omitempty"`
    TargetUser string          `json:"target_user,omitempty"`
    Source     string          `json:"source,omitempty"`
    ID         string          `json:"id,omitempty"`
    Content    string          `json:"content,omitempty"`
    Timestamp  time.Time       `json:"timestamp,omitzero"`
    Users      []User          `json:"users,omitempty"`
    Payload    json.RawMessage `json:"payload,omitempty"`
    Error      string          `json:"error,omitempty"`
}

// Входящие события
const (
    MessageTypeJoin         = "join"
    MessageTypeLeave        = "leave"
    MessageTypeChat         = "chat"
    MessageTypeMediaStarted = "media_started"
    MessageTypeMediaStopped = "media_stopped"

    MessageTypeWebRTCOffer     = "webrtc_offer"
    MessageTypeWebRTCAnswer    = "webrtc_answer"
    MessageTypeWebRTCCandidate = "webrtc_candidate"
)

// Исходящие события
const (
    MessageTypeUsersList  = "users_list"
    MessageTypeUserJoined = "user_joined"
    MessageTypeUserLeft   = "user_left"
    MessageTypeError      = "error"
)

// User — элемент списка участников комнаты.
type User struct {
    UserID   string `json:"user_id"`
    Username string `json:"username"`
}
