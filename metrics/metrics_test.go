package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"hangeul/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorder(t *testing.T) {
	m := NewPrometheus(prometheus.NewRegistry())

	m.ObserveHeartbeat(30)
	m.ObserveHeartbeat(20)
	m.IncStreakTransition("extended")
	m.IncAchievementUnlocked("On Fire")
	m.IncPerfectDay()
	m.IncQuizSubmission("grammar")
	m.IncRequestsTotal("/api/grammar", 201)
	m.IncRequestsTotal("/api/grammar", 404)
	m.ObserveRequestDuration("/api/grammar", 15*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	data, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	body := string(data)

	assert.Contains(t, body, "hangeul_heartbeats_total 2")
	assert.Contains(t, body, "hangeul_credited_seconds_total 50")
	assert.Contains(t, body, `hangeul_streak_transitions_total{kind="extended"} 1`)
	assert.Contains(t, body, `hangeul_achievements_unlocked_total{title="On Fire"} 1`)
	assert.Contains(t, body, `hangeul_requests_total{route="/api/grammar",status="4xx"} 1`)
	assert.Contains(t, body, "hangeul_perfect_days_total 1")
	assert.Contains(t, body, "hangeul_quiz_submissions_total{type=\"grammar\"} 1")
}

func TestNewHonoursConfig(t *testing.T) {
	conf := &config.Config{}
	assert.IsType(t, Noop{}, New(conf))

	conf.Metrics.Enabled = true
	assert.IsType(t, &Prometheus{}, New(conf))
}
