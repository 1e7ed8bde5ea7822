package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, body string) Path {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hangeul.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return Path(path)
}

func TestLoadDefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwtSecret: `+testSecret+`
database:
  driver: sqlite
  dsn: file:hangeul.db
clock:
  timezone: Asia/Seoul
server:
  readTimeout: 5s
`)

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", conf.Database.Driver)
	assert.Equal(t, "Asia/Seoul", conf.Clock.Timezone)
	assert.Equal(t, 5*time.Second, conf.Server.ReadTimeout)
	assert.Equal(t, "3000", conf.Server.Port)
	assert.Equal(t, 3600, conf.Progression.StreakThreshold)
	assert.Equal(t, 3, conf.Progression.StreakGraceDays)
	assert.Equal(t, 720*time.Hour, conf.Auth.TokenTTL)
	assert.False(t, conf.IsProduction())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  driver: sqlite\n  dsn: file:hangeul.db\n")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("HANGEUL_SERVER_PORT", "8080")
	t.Setenv("HANGEUL_PROGRESSION_STREAKGRACEDAYS", "1")
	t.Setenv("APP_ENV", "production")

	conf, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, testSecret, conf.Auth.JWTSecret)
	assert.Equal(t, "8080", conf.Server.Port)
	assert.Equal(t, 1, conf.Progression.StreakGraceDays)
	assert.True(t, conf.IsProduction())
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	cases := map[string]string{
		"short secret":     "auth:\n  jwtSecret: short\n",
		"unknown driver":   "auth:\n  jwtSecret: " + testSecret + "\ndatabase:\n  driver: mysql\n",
		"unknown timezone": "auth:\n  jwtSecret: " + testSecret + "\nclock:\n  timezone: Mars/Olympus\n",
		"credit above max": "auth:\n  jwtSecret: " + testSecret + "\nprogression:\n  heartbeatCredit: 500\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(Path(filepath.Join(t.TempDir(), "missing.yaml")))
	assert.Error(t, err)
}
