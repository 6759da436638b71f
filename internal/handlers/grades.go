package handlers

import (
    "encoding/json"
    "net/http"
    "strconv"
    "log/slog"

    "Aula/internal/storage"
)

var gradesLogger = slog.With("component", "grades")

type GradesHandler struct {
    Store         *storage.Storage
    AllowedOrigin string
}

func NewGradesHandler(store *storage.Storage, allowedOrigin string) *GradesHandler {
    return &GradesHandler{Store: store, AllowedOrigin: allowedOrigin}
}

// GetNotas отдает оценки студента: GET /api/estudiantes/{id}/notas
func (gh *GradesHandler) GetNotas(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Access-Control-Allow-Origin", gh.AllowedOrigin)

    id, err := strconv.Atoi(r.PathValue("id"))
    if err != nil {
        http.Error(w, "invalid student id", http.StatusBadRequest)
        return
    }

    grades, err := gh.Store.GetGradesForStudent(r.Context(), id)
    if err != nil {
        gradesLogger.Error("Failed to query grades", "student_id", id, "error", err)
        w.Header().Set("Content-Type", "application/json")
        w.WriteHeader(http.StatusInternalServerError)
        json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
        return
    }
    if grades == nil {
        grades = []storage.Grade{}
    }

    w.Header().Set("Content-Type", "application/json")
    if err := json.NewEncoder(w).Encode(grades); err != nil {
        gradesLogger.Error("Failed to encode grades", "error", err)
    }
}
