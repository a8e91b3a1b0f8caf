package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/interfaces/http/dto"
	"github.com/maillots/storefront/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestGetRequestID(t *testing.T) {
	t.Run("from middleware key", func(t *testing.T) {
		c, _ := newTestContext()
		c.Set("request_id", "ctx-id")
		c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
		assert.Equal(t, "ctx-id", getRequestID(c))
	})

	t.Run("from header", func(t *testing.T) {
		c, _ := newTestContext()
		c.Request.Header.Set(middleware.RequestIDHeader, "header-id")
		assert.Equal(t, "header-id", getRequestID(c))
	})

	t.Run("empty", func(t *testing.T) {
		c, _ := newTestContext()
		assert.Empty(t, getRequestID(c))
	})
}

func TestActorOf(t *testing.T) {
	t.Run("authenticated user email", func(t *testing.T) {
		c, _ := newTestContext()
		user, err := identity.NewUser("admin@maillots.sn", "Awa", "Diop")
		require.NoError(t, err)
		middleware.SetCurrentUser(c, user)
		assert.Equal(t, "admin@maillots.sn", actorOf(c))
	})

	t.Run("forwarded header is ignored", func(t *testing.T) {
		c, _ := newTestContext()
		c.Request.Header.Set("X-Admin-User", "moussa")
		assert.Equal(t, "admin", actorOf(c))
	})

	t.Run("fallback", func(t *testing.T) {
		c, _ := newTestContext()
		assert.Equal(t, "admin", actorOf(c))
	})
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound},
		{"wrapped conflict", fmt.Errorf("save: %w", shared.ErrConcurrencyConflict), http.StatusConflict, dto.ErrCodeConcurrencyConflict},
		{"locked", shared.ErrLocked, http.StatusLocked, dto.ErrCodeLocked},
		{"invalid state", shared.NewDomainError("INVALID_STATE", "nope"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState},
		{"empty cart", shared.NewDomainError("EMPTY_CART", "Cart is empty"), http.StatusUnprocessableEntity, dto.ErrCodeEmptyCart},
		{"aggregate rule", shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive"), http.StatusUnprocessableEntity, "ERR_INVALID_QUANTITY"},
		{"unexpected", errors.New("connection refused"), http.StatusInternalServerError, dto.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := &BaseHandler{}
			c, w := newTestContext()
			c.Set("request_id", "req-1")

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decodeResponse(t, w)
			assert.False(t, resp.Success)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}

	t.Run("nil writes nothing", func(t *testing.T) {
		h := &BaseHandler{}
		c, w := newTestContext()
		h.HandleError(c, nil)
		assert.Equal(t, 0, w.Body.Len())
	})
}

func TestPathID(t *testing.T) {
	h := &BaseHandler{}

	c, w := newTestContext()
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
	_, ok := h.pathID(c, "id")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidID, decodeResponse(t, w).Error.Code)

	c, _ = newTestContext()
	c.Params = gin.Params{{Key: "id", Value: "6f1c2a4e-8d3b-4c1a-9e7f-2b5d8a1c3e4f"}}
	id, ok := h.pathID(c, "id")
	assert.True(t, ok)
	assert.Equal(t, "6f1c2a4e-8d3b-4c1a-9e7f-2b5d8a1c3e4f", id.String())
}

func TestCurrentUser_Missing(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext()
	_, ok := h.currentUser(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
