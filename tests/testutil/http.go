package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/maillots/storefront/internal/domain/identity"
	"github.com/maillots/storefront/internal/interfaces/http/dto"
	"github.com/maillots/storefront/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// HTTPTestCase drives one request through a storefront handler.
// User, when set, is installed as the authenticated account before Setup runs.
type HTTPTestCase struct {
	Name           string
	Method         string
	Path           string
	Params         gin.Params
	Body           any
	Headers        map[string]string
	User           *identity.User
	ExpectedStatus int
	ExpectedCode   string
	Setup          func(t *testing.T, tc *TestContext)
	Validate       func(t *testing.T, tc *TestContext)
}

// RunHTTPTestCases runs each case as a subtest
func RunHTTPTestCases(t *testing.T, handler gin.HandlerFunc, cases []HTTPTestCase) {
	t.Helper()

	for _, tc := range cases {
		t.Run(tc.Name, func(t *testing.T) {
			RunHTTPTestCase(t, handler, tc)
		})
	}
}

// RunHTTPTestCase builds the request, invokes the handler and checks the
// status plus, for failures, the error code of the envelope.
func RunHTTPTestCase(t *testing.T, handler gin.HandlerFunc, tc HTTPTestCase) {
	t.Helper()

	testCtx := newRequestContext(t, tc)
	if tc.User != nil {
		middleware.SetCurrentUser(testCtx.Context, tc.User)
	}
	if tc.Setup != nil {
		tc.Setup(t, testCtx)
	}

	handler(testCtx.Context)

	if tc.ExpectedStatus != 0 {
		assert.Equal(t, tc.ExpectedStatus, testCtx.Recorder.Code, "status for %s %s", testCtx.Context.Request.Method, testCtx.Context.Request.URL.Path)
	}
	if tc.ExpectedCode != "" {
		AssertErrorResponse(t, testCtx, tc.ExpectedCode)
	}
	if tc.Validate != nil {
		tc.Validate(t, testCtx)
	}
}

func newRequestContext(t *testing.T, tc HTTPTestCase) *TestContext {
	t.Helper()

	method := tc.Method
	if method == "" {
		method = http.MethodGet
	}
	path := tc.Path
	if path == "" {
		path = "/"
	}

	var body io.Reader
	if tc.Body != nil {
		body = ToJSONReader(t, tc.Body)
	}
	req := httptest.NewRequest(method, path, body)
	if tc.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range tc.Headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Params = tc.Params
	return &TestContext{Context: c, Recorder: w}
}

// JSONResponse decodes the body into a generic map
func JSONResponse(t *testing.T, tc *TestContext) map[string]any {
	return JSONResponseAs[map[string]any](t, tc)
}

// JSONResponseAs decodes the body into T
func JSONResponseAs[T any](t *testing.T, tc *TestContext) T {
	t.Helper()

	var result T
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &result), "response is not JSON: %s", tc.ResponseBody())
	return result
}

// DataAs re-decodes the data member of the envelope into T
func DataAs[T any](t *testing.T, tc *TestContext) T {
	t.Helper()

	var envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(tc.ResponseBody(), &envelope))
	require.True(t, envelope.Success, "expected a success envelope: %s", tc.ResponseBody())

	var result T
	require.NoError(t, json.Unmarshal(envelope.Data, &result))
	return result
}

// AssertSuccessResponse checks for a success envelope without an error
func AssertSuccessResponse(t *testing.T, tc *TestContext) {
	t.Helper()

	resp := JSONResponseAs[dto.Response](t, tc)
	assert.True(t, resp.Success, "expected success: %s", tc.ResponseBody())
	assert.Nil(t, resp.Error)
}

// AssertErrorResponse checks for a failure envelope carrying expectedCode
func AssertErrorResponse(t *testing.T, tc *TestContext, expectedCode string) {
	t.Helper()

	resp := JSONResponseAs[dto.Response](t, tc)
	assert.False(t, resp.Success, "expected failure: %s", tc.ResponseBody())
	require.NotNil(t, resp.Error, "missing error object: %s", tc.ResponseBody())
	assert.Equal(t, expectedCode, resp.Error.Code)
}

// AssertValidationField checks that field is among the rejected fields
func AssertValidationField(t *testing.T, tc *TestContext, field string) {
	t.Helper()

	resp := JSONResponseAs[dto.Response](t, tc)
	require.NotNil(t, resp.Error)
	fields := make([]string, 0, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		fields = append(fields, d.Field)
	}
	assert.Contains(t, fields, field)
}

// ToJSONReader marshals v into a request body
func ToJSONReader(t *testing.T, v any) io.Reader {
	t.Helper()

	data, err := json.Marshal(v)
	require.NoError(t, err, "marshal request body")
	return bytes.NewReader(data)
}
