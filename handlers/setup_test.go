package handlers

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"hangeul/config"
	"hangeul/metrics"
	"hangeul/middleware"
	"hangeul/services"
	"hangeul/testutil"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	t    *testing.T
	app  *fiber.App
	db   *gorm.DB
	auth *middleware.Auth
	hub  *services.Hub
	now  time.Time
}

func testConfig() *config.Config {
	conf := &config.Config{}
	conf.Server.Environment = "test"
	conf.Server.CORSOrigins = "http://localhost:3000"
	conf.Server.BodyLimitMB = 4
	conf.Server.RequestTimeout = 5 * time.Second
	conf.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	conf.Auth.TokenTTL = time.Hour
	conf.RateLimit.Enabled = false
	return conf
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	s := &testServer{
		t:   t,
		db:  testutil.NewDB(t),
		now: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC),
	}
	conf := testConfig()
	log := zerolog.Nop()
	rec := metrics.Noop{}
	rules := services.DefaultRules()
	clock := services.NewClock(time.UTC).WithNow(func() time.Time { return s.now })

	s.hub = services.NewHub(log)
	streaks := services.NewStreakTracker(s.db, clock, rules, rec, log)
	activity := services.NewActivityLedger(s.db, clock, rules, streaks, rec, log)
	challenges := services.NewChallengeEvaluator(s.db, clock, rules, rec, log)
	quizzes := services.NewQuizTracker(s.db, clock, rules, rec, log)
	achievements := services.NewAchievementEngine(s.db, clock, 0, services.NewSeedCache(conf, log), rec, log)
	content := services.NewContentService(s.db, clock)
	engine := services.NewEngine(clock, activity, streaks, challenges, quizzes, achievements, content, s.hub, log)
	importer := services.NewVocabularyImporter(content, log)

	s.auth = middleware.NewAuth(conf)
	h := New(conf, s.db, s.auth, clock, engine, content, quizzes, importer, s.hub, log)
	s.app = NewApp(conf, h, s.auth, middleware.NewLimiters(conf), rec, log)
	return s
}

// do sends a JSON request and decodes the JSON response.
func (s *testServer) do(method, path string, body interface{}, token string) (int, map[string]interface{}) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return s.send(req, token)
}

func (s *testServer) upload(path, filename string, content []byte, token string) (int, map[string]interface{}) {
	s.t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(s.t, err)
	_, err = part.Write(content)
	require.NoError(s.t, err)
	require.NoError(s.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return s.send(req, token)
}

func (s *testServer) send(req *http.Request, token string) (int, map[string]interface{}) {
	s.t.Helper()

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(s.t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	data, err := io.ReadAll(resp.Body)
	require.NoError(s.t, err)
	if len(data) > 0 {
		require.NoError(s.t, json.Unmarshal(data, &out), string(data))
	}
	return resp.StatusCode, out
}

// register creates an account through the API and returns its token.
func (s *testServer) register(username string) string {
	s.t.Helper()

	status, body := s.do(http.MethodPost, "/api/auth/register", fiber.Map{
		"username": username,
		"password": "secret123",
	}, "")
	require.Equal(s.t, http.StatusCreated, status, body)
	token, ok := body["token"].(string)
	require.True(s.t, ok)
	return token
}
