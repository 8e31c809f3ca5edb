package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imkonsowa/waiter-prompts/config"
	"github.com/imkonsowa/waiter-prompts/prompt"
	"github.com/imkonsowa/waiter-prompts/prompt/prompttest"
	"github.com/imkonsowa/waiter-prompts/templates"
)

func newTestServer(t *testing.T, reload func() error) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	builder, catalog := prompttest.NewBuilder(t, prompt.Options{})
	if reload == nil {
		reload = catalog.Reload
	}

	return &Server{
		config:  &config.Config{},
		handler: NewHandler(builder, catalog, reload),
	}
}

func postPrompt(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/prompt", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestPostPrompt(t *testing.T) {
	s := newTestServer(t, nil)

	w := postPrompt(t, s, `{"text":"4人聚餐，预算300元，不吃海鲜"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp PromptResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, templates.EnhancedBasic, resp.Template)
	assert.Equal(t, "zh-CN", resp.Language)
	assert.Equal(t, "4", resp.Slots["party_size"])
	assert.Equal(t, "300", resp.Slots["budget"])
	assert.Contains(t, resp.Prompt, "忌口要求：海鲜")
}

func TestPostPromptErrors(t *testing.T) {
	s := newTestServer(t, nil)

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"text":`, http.StatusBadRequest},
		{"missing text", `{"text":"   "}`, http.StatusBadRequest},
		{"unknown template", `{"text":"你好","template":"nope"}`, http.StatusNotFound},
		{"unsupported language", `{"text":"你好","language":"fr-FR"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postPrompt(t, s, tt.body)
			assert.Equal(t, tt.code, w.Code)
			assert.Contains(t, w.Body.String(), "error")
		})
	}
}

func TestTemplatesEndpoints(t *testing.T) {
	s := newTestServer(t, nil)
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/templates", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var info templates.Info
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Contains(t, info.Templates, templates.EnhancedBasic)
	assert.Len(t, info.Files, 1)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/templates/"+templates.PreMealGame, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "zh-CN")

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/templates/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReload(t *testing.T) {
	w := httptest.NewRecorder()
	newTestServer(t, nil).Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reload", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	failing := newTestServer(t, func() error { return errors.New("bad yaml") })
	w = httptest.NewRecorder()
	failing.Router().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/reload", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "bad yaml")
}

func dialPrompt(t *testing.T, srv *httptest.Server, params url.Values) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/prompt?" + params.Encode()
	c, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

type wsMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func TestWebSocketStreamsStages(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil).Router())
	defer srv.Close()

	c := dialPrompt(t, srv, url.Values{"text": {"朋友聚会，有包间，想打麻将"}, "order_placed": {"true"}})

	var stages []string
	var final PromptResponse
	for {
		var msg wsMessage
		require.NoError(t, c.ReadJSON(&msg))

		if msg.Type == MessageDebug {
			var stage StageMessage
			require.NoError(t, json.Unmarshal(msg.Data, &stage))
			stages = append(stages, stage.Stage)
			continue
		}

		require.Equal(t, MessagePrompt, msg.Type)
		require.NoError(t, json.Unmarshal(msg.Data, &final))
		break
	}

	assert.Equal(t, []string{
		prompt.StageNormalized, prompt.StageTokenized, prompt.StageSlots,
		prompt.StageIntent, prompt.StageTemplate, prompt.StageContext,
	}, stages)
	assert.Equal(t, templates.PreMealGame, final.Template)
	assert.True(t, final.OrderPlaced)
	assert.Contains(t, final.Prompt, "推荐玩法建议：麻将, 狼人杀")
}

func TestWebSocketReportsBuildErrors(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t, nil).Router())
	defer srv.Close()

	c := dialPrompt(t, srv, url.Values{"text": {"你好"}, "template": {"nope"}})

	for {
		var msg wsMessage
		require.NoError(t, c.ReadJSON(&msg))
		if msg.Type == MessageDebug {
			continue
		}
		assert.Equal(t, MessageError, msg.Type)
		assert.Contains(t, string(msg.Data), "template not found")
		return
	}
}

func TestWebSocketRejectsEmptyText(t *testing.T) {
	w := httptest.NewRecorder()
	newTestServer(t, nil).Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/prompt", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
