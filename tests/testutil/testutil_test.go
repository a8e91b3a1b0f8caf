package testutil

import (
	"net/http"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/maillots/storefront/internal/interfaces/http/dto"
	"github.com/maillots/storefront/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMockDB(t *testing.T) {
	m := NewMockDB(t)
	m.Mock.ExpectExec(`DELETE FROM "carts"`).WillReturnResult(sqlmock.NewResult(0, 2))

	res := m.DB.Exec(`DELETE FROM "carts" WHERE updated_at < ?`, "2026-01-01")
	require.NoError(t, res.Error)
	assert.EqualValues(t, 2, res.RowsAffected)
	assert.NoError(t, m.Mock.ExpectationsWereMet())
}

func TestNewTestContext(t *testing.T) {
	tc := NewTestContext(t)
	assert.Equal(t, http.MethodGet, tc.Context.Request.Method)

	tc.Context.String(http.StatusTeapot, "short and stout")
	assert.Equal(t, http.StatusTeapot, tc.Recorder.Code)
	assert.Equal(t, "short and stout", string(tc.ResponseBody()))
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("seed"), NewTestUUID("seed"))
	assert.NotEqual(t, NewTestUUID("seed"), NewTestUUID("other"))
}

func TestNewCustomerAndStaff(t *testing.T) {
	customer := NewCustomer(t, "awa@example.com")
	assert.Equal(t, NewTestUUID("awa@example.com"), customer.ID)
	assert.True(t, customer.IsActive)
	assert.False(t, customer.IsStaff)

	staff := NewStaff(t, "admin@example.com")
	assert.True(t, staff.IsStaff)
}

func TestRunHTTPTestCases(t *testing.T) {
	customer := NewCustomer(t, "ada@example.com")
	handler := func(c *gin.Context) {
		user := middleware.CurrentUser(c)
		if user == nil {
			c.JSON(http.StatusUnauthorized, dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Authentication required"))
			return
		}
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"user_id": user.ID.String(), "id": c.Param("id")}))
	}

	RunHTTPTestCases(t, handler, []HTTPTestCase{
		{
			Name:           "anonymous request",
			Path:           "/cart",
			ExpectedStatus: http.StatusUnauthorized,
			ExpectedCode:   dto.ErrCodeUnauthorized,
		},
		{
			Name:           "signed in with path params",
			Method:         http.MethodDelete,
			Path:           "/cart/items/42",
			Params:         gin.Params{{Key: "id", Value: "42"}},
			User:           customer,
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, tc *TestContext) {
				data := DataAs[map[string]string](t, tc)
				assert.Equal(t, customer.ID.String(), data["user_id"])
				assert.Equal(t, "42", data["id"])
			},
		},
	})
}

func TestAssertErrorResponse(t *testing.T) {
	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"error":   gin.H{"code": "ERR_NOT_FOUND", "message": "Resource not found"},
	})

	AssertErrorResponse(t, tc, "ERR_NOT_FOUND")
}

func TestJSONResponseAs(t *testing.T) {
	type body struct {
		Key string `json:"key"`
	}

	tc := NewTestContext(t)
	tc.Context.JSON(http.StatusOK, gin.H{"key": "value"})

	assert.Equal(t, "value", JSONResponseAs[body](t, tc).Key)
	assert.Equal(t, "value", JSONResponse(t, tc)["key"])
}

func TestToJSONReader(t *testing.T) {
	require.NotNil(t, ToJSONReader(t, map[string]string{"key": "value"}))
}
