package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routes struct{}

type echoRequest struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" default:"3" validate:"gte=1,lte=10"`
}

func (routes) RegisterRoutes(e *echo.Echo) {
	e.POST("/echo", func(c echo.Context) error {
		req := &echoRequest{}
		if verr := ReadAndValidateRequest(c, req); verr != nil {
			return BadRequestResponse(c, verr)
		}
		return SuccessResponse(c, req)
	})
	e.GET("/gone", func(c echo.Context) error {
		return AppErrorResponse(c, NotFoundError("ERR_GONE", "gone"))
	})
	e.GET("/boom", func(c echo.Context) error {
		panic("boom")
	})
}

func serve(s *Server, req *http.Request) (*httptest.ResponseRecorder, APIResponse) {
	rec := httptest.NewRecorder()
	s.Echo().ServeHTTP(rec, req)
	var body APIResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestValidationAndDefaults(t *testing.T) {
	s := NewServer(routes{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"name":"a"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec, body := serve(s, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{"name": "a", "count": float64(3)}, body.Data)

	req = httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(`{"count":11}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec, _ = serve(s, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var out struct {
		Data []ValidationError `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Data, 2)
	assert.Equal(t, "name", out.Data[0].Field)
	assert.Equal(t, "ERR_REQUIRED", out.Data[0].Code)
	assert.Equal(t, "count", out.Data[1].Field)
	assert.Equal(t, "10", out.Data[1].Params["max"])
}

func TestAppErrorStatus(t *testing.T) {
	s := NewServer(routes{}, nil)

	rec, body := serve(s, httptest.NewRequest(http.MethodGet, "/gone", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, body.Status)
	assert.Contains(t, rec.Body.String(), "ERR_GONE")
}

func TestRecoverFromPanic(t *testing.T) {
	s := NewServer(routes{}, nil)

	rec, body := serve(s, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusInternalServerError, body.Status)
}

func TestBodyLimit(t *testing.T) {
	s := NewServer(routes{}, nil, WithBodyLimit("1K"))

	big := `{"name":"` + strings.Repeat("x", 4096) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/echo", strings.NewReader(big))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec, body := serve(s, req)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge, body.Status)
}

func TestCORSPreflight(t *testing.T) {
	s := NewServer(routes{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/echo", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	rec, _ := serve(s, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "600", rec.Header().Get(echo.HeaderAccessControlMaxAge))
	assert.Contains(t, rec.Header().Get(echo.HeaderAccessControlAllowMethods), http.MethodPost)
}

func TestHealthChecks(t *testing.T) {
	s := NewServer(nil, nil,
		WithHealthCheck("ok", func(context.Context) error { return nil }),
		WithHealthCheck("redis", func(context.Context) error { return errors.New("connection refused") }),
	)

	rec, body := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, map[string]interface{}{"ok": "ok", "redis": "connection refused"}, body.Data)
}

func TestMetricsUseRouteTemplate(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := NewServer(routes{}, nil, WithRegistry(reg))

	serve(s, httptest.NewRequest(http.MethodGet, "/gone", nil))

	rec, _ := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `salescast_http_requests_total{method="GET",route="/gone",status="404"} 1`)
}
