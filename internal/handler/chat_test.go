package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-faq/internal/pipeline"
	"hotel-faq/internal/session"
)

func newTestChatHandler() *ChatHandler {
	gin.SetMode(gin.TestMode)
	orchestrator := pipeline.NewOrchestrator(pipeline.NewEventManager())
	sessions := session.NewStore(time.Hour, 100)
	return NewChatHandler(orchestrator, sessions)
}

func doChat(h *ChatHandler, body string) *httptest.ResponseRecorder {
	r := gin.New()
	r.POST("/chat", h.Chat)
	req := httptest.NewRequest(http.MethodPost, "/chat", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatHandlerRejectsMissingQuery(t *testing.T) {
	h := newTestChatHandler()
	w := doChat(h, `{"hotel":"josun_palace"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandlerRejectsUnsafeInput(t *testing.T) {
	h := newTestChatHandler()
	w := doChat(h, `{"query":"<script>alert(1)</script>"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "query rejected")
}

func TestChatHandlerRejectsMalformedJSON(t *testing.T) {
	h := newTestChatHandler()
	w := doChat(h, `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestChatHandlerAssignsSessionIDWhenMissing(t *testing.T) {
	h := newTestChatHandler()
	w := doChat(h, `{"query":"조식 시간이 어떻게 되나요?","hotel":"josun_palace"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.SessionID)
}

func TestChatHandlerReusesProvidedSessionID(t *testing.T) {
	h := newTestChatHandler()
	w := doChat(h, `{"session_id":"fixed-session","query":"조식 시간이 어떻게 되나요?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp ChatResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "fixed-session", resp.SessionID)
}

func TestListHotelsReturnsAllFiveProperties(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewChatHandler(pipeline.NewOrchestrator(pipeline.NewEventManager()), session.NewStore(time.Hour, 100))
	r := gin.New()
	r.GET("/hotels", h.ListHotels)
	req := httptest.NewRequest(http.MethodGet, "/hotels", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool        `json:"success"`
		Data    []HotelInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Len(t, body.Data, 5)
}
