package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ENV_FILE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.AppAddr)
	require.Equal(t, NotifyRedis, cfg.NotifyDriver)
	require.Equal(t, 10*time.Minute, cfg.CacheTTL)
	require.Equal(t, "0 2 * * *", cfg.RefreshCron)
	require.Equal(t, ":9091", cfg.WorkerMetricsAddr)
	require.False(t, cfg.IsProduction())
}

func TestLoadConfigReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uniformdesk.env")
	require.NoError(t, os.WriteFile(path, []byte("NOTIFY_DRIVER=kafka\nKAFKA_BROKERS=k1:9092,k2:9092\nAPP_ENV=production\n"), 0o600))
	t.Setenv("ENV_FILE", path)
	// Registered so t.Setenv restores the variables godotenv sets.
	t.Setenv("NOTIFY_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("APP_ENV", "")
	os.Unsetenv("NOTIFY_DRIVER")
	os.Unsetenv("KAFKA_BROKERS")
	os.Unsetenv("APP_ENV")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	require.Equal(t, NotifyKafka, cfg.NotifyDriver)
	require.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	require.True(t, cfg.IsProduction())
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	cfg := Config{NotifyDriver: "carrier-pigeon"}
	require.Error(t, cfg.Validate())

	cfg = Config{NotifyDriver: NotifyKafka}
	require.Error(t, cfg.Validate())

	cfg = Config{NotifyDriver: NotifyNone}
	require.NoError(t, cfg.Validate())
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, "DEBUG", parseLevel("Debug").String())
	require.Equal(t, "WARN", parseLevel("warning").String())
	require.Equal(t, "INFO", parseLevel("").String())
}
