package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	req := require.New(t)
	t.Setenv("AULA_DB_CONN", "postgres://localhost/aula?sslmode=disable")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(3000, cfg.Port)
	req.Equal("http://localhost:5173", cfg.FrontendURL)
}

func TestLoad_Overrides(t *testing.T) {
	req := require.New(t)
	t.Setenv("AULA_DB_CONN", "postgres://localhost/aula?sslmode=disable")
	t.Setenv("AULA_PORT", "8080")
	t.Setenv("AULA_FRONTEND_URL", "https://aula.example")

	cfg, err := Load()
	req.NoError(err)
	req.Equal(8080, cfg.Port)
	req.Equal("https://aula.example", cfg.FrontendURL)
}

func TestLoad_RequiresDBConn(t *testing.T) {
	// Выставлена, но пустая
	t.Setenv("AULA_DB_CONN", "")
	_, err := Load()
	require.Error(t, err)

	// Не выставлена вовсе (t.Setenv выше восстановит значение)
	os.Unsetenv("AULA_DB_CONN")
	_, err = Load()
	require.Error(t, err)
}
