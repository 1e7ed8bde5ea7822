package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"hangeul/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *testServer) createGrammar(token, title string) uint {
	s.t.Helper()
	status, body := s.do(http.MethodPost, "/api/grammar", fiber.Map{
		"title":       title,
		"explanation": "explains " + title,
	}, token)
	require.Equal(s.t, http.StatusCreated, status, body)
	item := body["item"].(map[string]interface{})
	return uint(item["id"].(float64))
}

func TestGrammarLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.register("minji")

	id := s.createGrammar(token, "-(으)면")

	status, body := s.do(http.MethodGet, "/api/grammar?day=today", nil, token)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, float64(1), body["count"])

	path := fmt.Sprintf("/api/grammar/%d", id)
	status, _ = s.do(http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusOK, status)

	status, body = s.do(http.MethodDelete, path, nil, token)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not found", body["error"])
}

func TestContentIsScopedToOwner(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("minji")
	other := s.register("jisoo")

	id := s.createGrammar(owner, "-지만")

	status, _ := s.do(http.MethodDelete, fmt.Sprintf("/api/grammar/%d", id), nil, other)
	assert.Equal(t, http.StatusNotFound, status)

	_, body := s.do(http.MethodGet, "/api/grammar", nil, other)
	assert.Equal(t, float64(0), body["count"])
}

func TestUpdateGrammar(t *testing.T) {
	s := newTestServer(t)
	owner := s.register("minji")
	other := s.register("jisoo")

	id := s.createGrammar(owner, "-아/어서")
	require.NoError(t, s.db.Model(&models.GrammarItem{}).Where("id = ?", id).Update("asked", true).Error)
	s.now = s.now.Add(24 * time.Hour)

	path := fmt.Sprintf("/api/grammar/%d", id)
	edit := fiber.Map{
		"title":           "-아/어서 (reason)",
		"explanation":     "because, so",
		"korean_example":  "비가 와서 집에 있어요",
		"english_example": "It rained so I stayed home",
	}

	status, _ := s.do(http.MethodPut, path, edit, other)
	assert.Equal(t, http.StatusNotFound, status)

	status, _ = s.do(http.MethodPut, path, fiber.Map{"title": "no explanation"}, owner)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := s.do(http.MethodPut, path, edit, owner)
	require.Equal(t, http.StatusOK, status, body)
	item := body["item"].(map[string]interface{})
	assert.Equal(t, "-아/어서 (reason)", item["title"])
	assert.Equal(t, "It rained so I stayed home", item["english_example"])
	assert.Equal(t, "2025-03-12", item["created_day"])
	assert.Equal(t, true, item["asked"])

	_, body = s.do(http.MethodGet, "/api/grammar", nil, other)
	assert.Equal(t, float64(0), body["count"])
}

func TestCreateVocabularyValidates(t *testing.T) {
	s := newTestServer(t)
	token := s.register("minji")

	status, _ := s.do(http.MethodPost, "/api/vocabulary", fiber.Map{"word": "사과"}, token)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body := s.do(http.MethodPost, "/api/vocabulary", fiber.Map{"word": "사과", "meaning": "apple"}, token)
	require.Equal(t, http.StatusCreated, status)
	item := body["item"].(map[string]interface{})
	assert.Equal(t, "2025-03-12", item["created_day"])
}

func TestImportVocabularyUnlocksOnFire(t *testing.T) {
	s := newTestServer(t)
	token := s.register("minji")

	var csv strings.Builder
	csv.WriteString("word,meaning,meaning_geo\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&csv, "단어%d,word %d,\n", i, i)
	}
	csv.WriteString(",missing word,\n")

	status, body := s.upload("/api/vocabulary/import", "words.csv", []byte(csv.String()), token)
	require.Equal(t, http.StatusOK, status, body)

	result := body["import"].(map[string]interface{})
	assert.Equal(t, float64(50), result["created"])
	assert.Equal(t, float64(1), result["skipped"])

	unlocks := body["unlocks"].([]interface{})
	require.Len(t, unlocks, 1)
	assert.Equal(t, "On Fire", unlocks[0].(map[string]interface{})["title"])
}

func TestImportRejectsUnknownFormat(t *testing.T) {
	s := newTestServer(t)
	token := s.register("minji")

	status, _ := s.upload("/api/vocabulary/import", "words.txt", []byte("사과,apple"), token)
	assert.Equal(t, http.StatusBadRequest, status)
}
