package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func findEntry(entries []observer.LoggedEntry, msg string) *observer.LoggedEntry {
	for i := range entries {
		if entries[i].Message == msg {
			return &entries[i]
		}
	}
	return nil
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name      string
		status    int
		wantLevel zapcore.Level
	}{
		{"success logs info", http.StatusOK, zapcore.InfoLevel},
		{"client error logs warn", http.StatusConflict, zapcore.WarnLevel},
		{"server error logs error", http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)

			router := gin.New()
			router.Use(GinMiddleware(zap.New(core)))
			router.GET("/api/v1/admin/stats", func(c *gin.Context) {
				c.Status(tt.status)
			})

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/stats?page=2", nil)
			router.ServeHTTP(w, req)

			entry := findEntry(recorded.All(), "HTTP Request")
			require.NotNil(t, entry)
			assert.Equal(t, tt.wantLevel, entry.Level)
			fields := entry.ContextMap()
			assert.Equal(t, int64(tt.status), fields["status"])
			assert.Equal(t, "page=2", fields["query"])
		})
	}
}

func TestGinMiddleware_PropagatesActorAndRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)

	var seenActor, seenRequestID string
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("request_id", "req-42")
		c.Next()
	})
	router.Use(GinMiddleware(zap.New(core)))
	authenticated := func(c *gin.Context) {
		SetActor(c, "awa@maillots.sn")
		c.Next()
	}
	router.PATCH("/api/v1/admin/orders/1", authenticated, func(c *gin.Context) {
		seenActor = GetActor(c.Request.Context())
		seenRequestID = GetRequestID(c.Request.Context())
		L(c.Request.Context()).Info("handler ran")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/admin/orders/1", nil)
	req.Header.Set("X-Admin-User", "spoofed")
	router.ServeHTTP(httptest.NewRecorder(), req)

	assert.Equal(t, "awa@maillots.sn", seenActor)
	assert.Equal(t, "req-42", seenRequestID)

	entry := findEntry(recorded.All(), "handler ran")
	require.NotNil(t, entry)
	assert.Equal(t, "awa@maillots.sn", entry.ContextMap()["actor"])
	assert.Equal(t, "req-42", entry.ContextMap()["request_id"])

	access := findEntry(recorded.All(), "HTTP Request")
	require.NotNil(t, access)
	assert.Equal(t, "awa@maillots.sn", access.ContextMap()["actor"])
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.ErrorLevel)

	router := gin.New()
	router.Use(Recovery(zap.New(core)))
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotNil(t, findEntry(recorded.All(), "Panic recovered"))
}

func TestGetGinLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, GetGinLogger(c))

	custom := zap.NewExample()
	c.Set("logger", custom)
	assert.Same(t, custom, GetGinLogger(c))
}
