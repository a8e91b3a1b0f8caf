// Package testutil holds the helpers shared by storefront tests: a
// sqlmock-backed gorm handle, gin request contexts, account fixtures and
// testify mocks of the repositories.
package testutil

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fixtureNamespace seeds the deterministic IDs of NewTestUUID
var fixtureNamespace = uuid.MustParse("5f1d3c2a-7b4e-4c61-9a8d-2e0f6b9c1d47")

// MockDB is a postgres-dialect gorm handle whose SQL is scripted through Mock
type MockDB struct {
	DB    *gorm.DB
	Mock  sqlmock.Sqlmock
	SqlDB *sql.DB
}

// NewMockDB opens a MockDB that is closed when the test ends
func NewMockDB(t *testing.T) *MockDB {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return &MockDB{DB: db, Mock: mock, SqlDB: sqlDB}
}

// TestContext is a gin context writing into a recorder
type TestContext struct {
	Context  *gin.Context
	Recorder *httptest.ResponseRecorder
}

// NewTestContext starts from GET /
func NewTestContext(t *testing.T) *TestContext {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return &TestContext{Context: c, Recorder: w}
}

func (tc *TestContext) ResponseBody() []byte {
	return tc.Recorder.Body.Bytes()
}

// NewTestUUID derives a stable ID from seed
func NewTestUUID(seed string) uuid.UUID {
	return uuid.NewSHA1(fixtureNamespace, []byte(seed))
}

// NewCustomer returns an active customer whose ID is derived from email
func NewCustomer(t *testing.T, email string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(email, "Awa", "Diop")
	require.NoError(t, err)
	u.ID = NewTestUUID(email)
	return u
}

// NewStaff is NewCustomer with back office access
func NewStaff(t *testing.T, email string) *identity.User {
	t.Helper()
	u := NewCustomer(t, email)
	u.IsStaff = true
	return u
}
