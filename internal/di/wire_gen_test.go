package di

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"SalesCast/pkg/config"
)

func TestInitializeAppMemoryBackend(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Output = "stderr"

	app, err := InitializeApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, app)
}

func TestInitializeAppRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Log.Output = "stderr"
	cfg.Session.Backend = "redis"
	cfg.Session.Redis.Addr = mr.Addr()

	app, err := InitializeApp(cfg)
	require.NoError(t, err)
	require.NotNil(t, app)
}

func TestInitializeAppRedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := config.Default()
	cfg.Log.Output = "stderr"
	cfg.Session.Backend = "redis"
	cfg.Session.Redis.Addr = addr

	_, err := InitializeApp(cfg)
	require.Error(t, err)
}
