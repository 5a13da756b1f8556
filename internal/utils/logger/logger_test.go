package logger

import (
	"context"
	"testing"

	"golang.org/x/exp/slog"
	"marketsync/internal/app/server/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		debugLogged bool
	}{
		{name: "local environment", env: config.EnvLocal, debugLogged: true},
		{name: "dev environment", env: config.EnvDev, debugLogged: true},
		{name: "prod environment", env: config.EnvProd, debugLogged: false},
	}

	ctx := context.Background()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(tt.env)
			require.NotNil(t, logger)
			assert.Equal(t, tt.debugLogged, logger.Enabled(ctx, slog.LevelDebug))
			assert.True(t, logger.Enabled(ctx, slog.LevelInfo))
		})
	}
}

func TestSetupPrettySlog(t *testing.T) {
	logger := setupPrettySlog()
	require.NotNil(t, logger)
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
}
