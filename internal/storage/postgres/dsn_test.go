package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/listly/listly-backend/config"
)

func TestDSN(t *testing.T) {
	t.Run("explicit dsn wins", func(t *testing.T) {
		cfg := &config.DatabaseConfig{DSN: "postgres://u:p@db/listly", Host: "ignored"}
		assert.Equal(t, "postgres://u:p@db/listly", DSN(cfg))
	})

	t.Run("built from parts", func(t *testing.T) {
		cfg := &config.DatabaseConfig{Host: "db", Port: 5433, User: "listly", Password: "secret", Name: "listly"}
		assert.Equal(t, "host=db port=5433 user=listly password=secret dbname=listly sslmode=disable", DSN(cfg))
	})
}
