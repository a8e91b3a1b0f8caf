package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	cartapp "github.com/maillots/storefront/internal/application/cart"
	"github.com/maillots/storefront/internal/domain/catalog"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/maillots/storefront/internal/domain/shared"
	"github.com/maillots/storefront/internal/interfaces/http/dto"
	"github.com/maillots/storefront/internal/interfaces/http/middleware"
	"github.com/maillots/storefront/tests/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cartHandlerFixture struct {
	handler  *CartHandler
	carts    *testutil.MockCartRepository
	products *testutil.MockProductRepository
	user     *identity.User
	jersey   *catalog.Product
}

func newCartHandlerFixture(t *testing.T) *cartHandlerFixture {
	t.Helper()
	user, err := identity.NewUser("awa@example.com", "Awa", "Diop")
	require.NoError(t, err)
	jersey, err := catalog.NewProduct("Maillot Sénégal Domicile", decimal.NewFromInt(15000), 10)
	require.NoError(t, err)

	f := &cartHandlerFixture{
		carts:    new(testutil.MockCartRepository),
		products: new(testutil.MockProductRepository),
		user:     user,
		jersey:   jersey,
	}
	f.handler = NewCartHandler(cartapp.NewCartService(f.carts, f.products, new(testutil.MockCustomizationRepository)))
	return f
}

func (f *cartHandlerFixture) signIn(t *testing.T, tc *testutil.TestContext) {
	middleware.SetCurrentUser(tc.Context, f.user)
}

func TestCartHandler_Get(t *testing.T) {
	f := newCartHandlerFixture(t)
	f.carts.On("FindByUser", mock.Anything, f.user.ID).Return(nil, shared.ErrNotFound)

	testutil.RunHTTPTestCases(t, f.handler.Get, []testutil.HTTPTestCase{
		{
			Name:           "empty cart for a new customer",
			Path:           "/cart",
			ExpectedStatus: http.StatusOK,
			Setup:          f.signIn,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				resp := testutil.JSONResponseAs[dto.Response](t, tc)
				assert.True(t, resp.Success)
				data := resp.Data.(map[string]any)
				assert.Equal(t, float64(0), data["item_count"])
				assert.Equal(t, "0", data["total"])
			},
		},
		{
			Name:           "anonymous is unauthorized",
			Path:           "/cart",
			ExpectedStatus: http.StatusUnauthorized,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				testutil.AssertErrorResponse(t, tc, dto.ErrCodeUnauthorized)
			},
		},
	})
}

func TestCartHandler_AddItem(t *testing.T) {
	f := newCartHandlerFixture(t)
	f.carts.On("FindByUser", mock.Anything, f.user.ID).Return(nil, shared.ErrNotFound)
	f.carts.On("Save", mock.Anything, mock.Anything).Return(nil)
	f.products.On("FindByID", mock.Anything, f.jersey.ID).Return(f.jersey, nil)
	f.products.On("FindByIDs", mock.Anything, []uuid.UUID{f.jersey.ID}).Return([]catalog.Product{*f.jersey}, nil)

	missing := uuid.New()
	f.products.On("FindByID", mock.Anything, missing).Return(nil, shared.ErrNotFound)

	testutil.RunHTTPTestCases(t, f.handler.AddItem, []testutil.HTTPTestCase{
		{
			Name:           "adds a line at the current price",
			Method:         http.MethodPost,
			Path:           "/cart/items",
			Body:           map[string]any{"product_id": f.jersey.ID, "size": "L", "quantity": 2},
			ExpectedStatus: http.StatusOK,
			Setup:          f.signIn,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				resp := testutil.JSONResponseAs[dto.Response](t, tc)
				data := resp.Data.(map[string]any)
				assert.Equal(t, float64(2), data["item_count"])
				assert.Equal(t, "30000", data["total"])
			},
		},
		{
			Name:           "zero quantity is rejected",
			Method:         http.MethodPost,
			Path:           "/cart/items",
			Body:           map[string]any{"product_id": f.jersey.ID, "quantity": 0},
			ExpectedStatus: http.StatusBadRequest,
			Setup:          f.signIn,
			Validate: func(t *testing.T, tc *testutil.TestContext) {
				testutil.AssertErrorResponse(t, tc, dto.ErrCodeValidation)
			},
		},
		{
			Name:           "unknown product",
			Method:         http.MethodPost,
			Path:           "/cart/items",
			Body:           map[string]any{"product_id": missing, "quantity": 1},
			ExpectedStatus: http.StatusNotFound,
			Setup:          f.signIn,
		},
	})
}

func TestCartHandler_RemoveItem_InvalidID(t *testing.T) {
	f := newCartHandlerFixture(t)

	testutil.RunHTTPTestCase(t, f.handler.RemoveItem, testutil.HTTPTestCase{
		Method:         http.MethodDelete,
		Path:           "/cart/items/abc",
		Params:         gin.Params{{Key: "id", Value: "abc"}},
		User:           f.user,
		ExpectedStatus: http.StatusBadRequest,
		ExpectedCode:   dto.ErrCodeInvalidID,
	})
	f.carts.AssertNotCalled(t, "FindByUser", mock.Anything, mock.Anything)
}
