package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listly/listly-backend/config"
)

func TestTokenVerifier_HeaderAuthOnlyInDevelopment(t *testing.T) {
	for _, env := range []string{"development", "test"} {
		v, err := tokenVerifier(context.Background(), &config.Config{App: config.AppConfig{Environment: env}})
		require.NoError(t, err, env)
		assert.Nil(t, v, env)
	}

	for _, env := range []string{"production", "staging"} {
		_, err := tokenVerifier(context.Background(), &config.Config{App: config.AppConfig{Environment: env}})
		require.Error(t, err, env)
		assert.Contains(t, err.Error(), "FIREBASE_CREDENTIALS_PATH", env)
	}
}
