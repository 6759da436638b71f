package storage

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"
)

// Grade — оценка по одному предмету.
type Grade struct {
	Subject string  `json:"materia"`
	Score   float64 `json:"nota"`
}

type Storage struct {
	db *sql.DB
}

func NewStorage(connStr string) (*Storage, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}
	return &Storage{db: db}, nil
}

// EnsureSchema создает таблицы журнала оценок, если их еще нет.
func (s *Storage) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
        CREATE TABLE IF NOT EXISTS estudiantes (
            id SERIAL PRIMARY KEY,
            nombre TEXT NOT NULL,
            grado INTEGER NOT NULL
        );

        CREATE TABLE IF NOT EXISTS materias (
            id SERIAL PRIMARY KEY,
            nombre TEXT NOT NULL
        );

        CREATE TABLE IF NOT EXISTS notas (
            id SERIAL PRIMARY KEY,
            estudiante_id INTEGER REFERENCES estudiantes(id),
            materia_id INTEGER REFERENCES materias(id),
            nota REAL NOT NULL
        );
    `)
	return err
}

// GetGradesForStudent возвращает оценки студента по всем предметам.
func (s *Storage) GetGradesForStudent(ctx context.Context, studentID int) ([]Grade, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT m.nombre AS materia, n.nota
        FROM notas n
        JOIN materias m ON n.materia_id = m.id
        WHERE n.estudiante_id = $1`, studentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var grades []Grade
	for rows.Next() {
		var g Grade
		if err := rows.Scan(&g.Subject, &g.Score); err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}

func (s *Storage) Close() error {
	return s.db.Close()
}
