package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiddlewareRouter(handler gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(requestIDMiddleware())
	router.Use(loggingMiddleware())
	router.Use(corsMiddleware())
	router.GET("/probe", handler)
	return router
}

func TestRequestIDMiddlewareGeneratesID(t *testing.T) {
	var seenID string
	var seenStart time.Time
	router := newMiddlewareRouter(func(c *gin.Context) {
		seenID = c.GetString("request_id")
		if v, ok := c.Get("start_time"); ok {
			seenStart, _ = v.(time.Time)
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	router.ServeHTTP(w, req)

	require.NotEmpty(t, seenID)
	assert.Equal(t, seenID, w.Header().Get("X-Request-ID"))
	assert.False(t, seenStart.IsZero())
}

func TestRequestIDMiddlewareHonorsInboundHeader(t *testing.T) {
	var seenID string
	router := newMiddlewareRouter(func(c *gin.Context) {
		seenID = c.GetString("request_id")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-Request-ID", "upstream-42")
	router.ServeHTTP(w, req)

	assert.Equal(t, "upstream-42", seenID)
	assert.Equal(t, "upstream-42", w.Header().Get("X-Request-ID"))
}

func TestCORSMiddlewareShortCircuitsPreflight(t *testing.T) {
	router := newMiddlewareRouter(func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/probe", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
