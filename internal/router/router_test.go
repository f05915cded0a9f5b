package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-faq/internal/handler"
	"hotel-faq/internal/pipeline"
	"hotel-faq/internal/session"
)

func TestNewRouterServesHealthAndRegisteredRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	chatHandler := handler.NewChatHandler(pipeline.NewOrchestrator(pipeline.NewEventManager()), session.NewStore(time.Hour, 100))
	systemHandler := handler.NewSystemHandler()

	r := NewRouter(RouterParams{ChatHandler: chatHandler, SystemHandler: systemHandler})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")

	req = httptest.NewRequest(http.MethodGet, "/api/v1/hotels", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/system/info", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
