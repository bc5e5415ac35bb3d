package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotedesk/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotedesk/internal/platform/config"
	"github.com/jsamuelsen/quotedesk/internal/platform/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, engine *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	return w
}

func TestRequestID(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "propagates incoming id", header: "req-123"},
		{name: "generates uuid when missing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fromGin, fromCtx string

			engine := gin.New()
			engine.Use(RequestID())
			engine.GET("/", func(c *gin.Context) {
				fromGin = GetRequestID(c)
				fromCtx = RequestIDFromContext(c.Request.Context())
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(HeaderRequestID, tt.header)
			}

			w := serve(t, engine, req)

			got := w.Header().Get(HeaderRequestID)
			if tt.header != "" {
				assert.Equal(t, tt.header, got)
			} else {
				_, err := uuid.Parse(got)
				require.NoError(t, err)
			}

			assert.Equal(t, got, fromGin)
			assert.Equal(t, got, fromCtx, "outbound clients read the id from the request context")
		})
	}
}

func TestCorrelationID(t *testing.T) {
	var fromCtx string

	engine := gin.New()
	engine.Use(CorrelationID())
	engine.GET("/", func(c *gin.Context) {
		fromCtx = CorrelationIDFromContext(c.Request.Context())
		assert.Equal(t, fromCtx, GetCorrelationID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderCorrelationID, "corr-9")

	w := serve(t, engine, req)

	assert.Equal(t, "corr-9", w.Header().Get(HeaderCorrelationID))
	assert.Equal(t, "corr-9", fromCtx)
}

func TestIDsFromNilContext(t *testing.T) {
	//nolint:staticcheck // nil context is part of the contract
	assert.Empty(t, RequestIDFromContext(nil))
	assert.Empty(t, CorrelationIDFromContext(context.Background()))
}

func TestIdentity(t *testing.T) {
	cfg := config.IdentityConfig{SubjectHeader: "X-Sub", RolesHeader: "X-Roles", DefaultOwner: "anonymous"}

	tests := []struct {
		name    string
		headers map[string]string
		want    Caller
	}{
		{
			name:    "subject and roles",
			headers: map[string]string{"X-Sub": "alice", "X-Roles": "sales, admin ,"},
			want:    Caller{Subject: "alice", Roles: []string{"sales", "admin"}},
		},
		{
			name: "falls back to default owner",
			want: Caller{Subject: "anonymous", Anonymous: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Caller

			engine := gin.New()
			engine.Use(Identity(cfg))
			engine.GET("/", func(c *gin.Context) {
				got = GetCaller(c)
				assert.Equal(t, got.Subject, Owner(c))
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			serve(t, engine, req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetCaller_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	assert.Equal(t, Caller{}, GetCaller(c))
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(logging.WithContext(c.Request.Context(), logger))
	}, Logging("/static/"))
	engine.GET("/api/v1/drafts/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	engine.GET("/-/live", func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/static/app.js", func(c *gin.Context) { c.Status(http.StatusOK) })

	serve(t, engine, httptest.NewRequest(http.MethodGet, "/-/live", nil))
	serve(t, engine, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Empty(t, buf.String(), "probe and skipped paths are not logged")

	serve(t, engine, httptest.NewRequest(http.MethodGet, "/api/v1/drafts/d-1", nil))

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "request completed", rec["msg"])
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "/api/v1/drafts/:id", rec["route"])
	assert.InDelta(t, 404, rec["status"], 0)
}

func TestRecovery(t *testing.T) {
	engine := gin.New()
	engine.Use(Recovery())
	engine.GET("/", func(*gin.Context) { panic("boom") })

	w := serve(t, engine, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, dto.ErrorCodeInternal, resp.Error.Code)
}

func TestTimeout(t *testing.T) {
	engine := gin.New()
	engine.Use(Timeout(10*time.Millisecond, "/api/v1/client/"))
	engine.GET("/slow", func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	engine.GET("/fast", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.True(t, ok)
		c.Status(http.StatusNoContent)
	})
	engine.GET("/api/v1/client/doc", func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		assert.False(t, ok)
		c.Status(http.StatusOK)
	})

	w := serve(t, engine, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), dto.ErrorCodeTimeout)

	assert.Equal(t, http.StatusNoContent, serve(t, engine, httptest.NewRequest(http.MethodGet, "/fast", nil)).Code)
	assert.Equal(t, http.StatusOK, serve(t, engine, httptest.NewRequest(http.MethodGet, "/api/v1/client/doc", nil)).Code)
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, splitList(""))
	assert.Equal(t, []string{"a", "b"}, splitList(" a,,b "))
}
