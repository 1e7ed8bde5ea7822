package metrics

import (
	"net/http"
	"time"

	"hangeul/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Recorder interface {
	IncRequestsTotal(route string, status int)
	ObserveRequestDuration(route string, duration time.Duration)
	ObserveHeartbeat(credited int)
	IncStreakTransition(kind string)
	IncAchievementUnlocked(title string)
	IncPerfectDay()
	IncQuizSubmission(quizType string)
	Handler() http.Handler
}

type Prometheus struct {
	registry          *prometheus.Registry
	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	heartbeats        prometheus.Counter
	creditedSeconds   prometheus.Counter
	streakTransitions *prometheus.CounterVec
	unlocks           *prometheus.CounterVec
	perfectDays       prometheus.Counter
	quizSubmissions   *prometheus.CounterVec
}

// New returns a registry-backed recorder, or a no-op one when metrics are off.
func New(conf *config.Config) Recorder {
	if !conf.Metrics.Enabled {
		return Noop{}
	}
	return NewPrometheus(prometheus.NewRegistry())
}

func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Prometheus{
		registry: reg,
		requestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hangeul_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "status"}),
		requestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hangeul_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		heartbeats: f.NewCounter(prometheus.CounterOpts{
			Name: "hangeul_heartbeats_total",
			Help: "Accepted activity heartbeats",
		}),
		creditedSeconds: f.NewCounter(prometheus.CounterOpts{
			Name: "hangeul_credited_seconds_total",
			Help: "Study seconds credited by heartbeats",
		}),
		streakTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hangeul_streak_transitions_total",
			Help: "Streak transitions by kind",
		}, []string{"kind"}),
		unlocks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hangeul_achievements_unlocked_total",
			Help: "Achievement unlocks by title",
		}, []string{"title"}),
		perfectDays: f.NewCounter(prometheus.CounterOpts{
			Name: "hangeul_perfect_days_total",
			Help: "Days on which a user completed every daily challenge",
		}),
		quizSubmissions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "hangeul_quiz_submissions_total",
			Help: "Quiz submissions by quiz type",
		}, []string{"type"}),
	}
}

func (m *Prometheus) IncRequestsTotal(route string, status int) {
	m.requestsTotal.WithLabelValues(route, statusBucket(status)).Inc()
}

func (m *Prometheus) ObserveRequestDuration(route string, duration time.Duration) {
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Prometheus) ObserveHeartbeat(credited int) {
	m.heartbeats.Inc()
	m.creditedSeconds.Add(float64(credited))
}

func (m *Prometheus) IncStreakTransition(kind string) {
	m.streakTransitions.WithLabelValues(kind).Inc()
}

func (m *Prometheus) IncAchievementUnlocked(title string) {
	m.unlocks.WithLabelValues(title).Inc()
}

func (m *Prometheus) IncPerfectDay() {
	m.perfectDays.Inc()
}

func (m *Prometheus) IncQuizSubmission(quizType string) {
	m.quizSubmissions.WithLabelValues(quizType).Inc()
}

func (m *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// Noop is used when metrics are disabled.
type Noop struct{}

func (Noop) IncRequestsTotal(_ string, _ int)                 {}
func (Noop) ObserveRequestDuration(_ string, _ time.Duration) {}
func (Noop) ObserveHeartbeat(_ int)                           {}
func (Noop) IncStreakTransition(_ string)                     {}
func (Noop) IncAchievementUnlocked(_ string)                  {}
func (Noop) IncPerfectDay()                                   {}
func (Noop) IncQuizSubmission(_ string)                       {}
func (Noop) Handler() http.Handler                            { return http.NotFoundHandler() }
