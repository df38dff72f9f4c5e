package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(buf *bytes.Buffer) *gin.Engine {
		logger := slog.New(slog.NewJSONHandler(buf, nil))
		r := gin.New()
		r.Use(CorrelationID())
		r.Use(Logger(logger))
		r.GET("/wallet/history", func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return r
	}

	t.Run("LogsRequestLine", func(t *testing.T) {
		var buf bytes.Buffer
		r := newRouter(&buf)

		correlationID := uuid.New().String()
		req, _ := http.NewRequest(http.MethodGet, "/wallet/history?page=2", nil)
		req.Header.Set(CorrelationIDHeader, correlationID)
		req.Header.Set("User-Agent", "ledger-test")
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		out := buf.String()
		assert.Contains(t, out, `"msg":"HTTP request"`)
		assert.Contains(t, out, `"method":"GET"`)
		assert.Contains(t, out, `"path":"/wallet/history?page=2"`)
		assert.Contains(t, out, `"status":200`)
		assert.Contains(t, out, `"latency":`)
		assert.Contains(t, out, `"user_agent":"ledger-test"`)
		assert.Contains(t, out, `"correlation_id":"`+correlationID+`"`)
	})

	t.Run("GeneratedCorrelationIDStillLogged", func(t *testing.T) {
		var buf bytes.Buffer
		r := newRouter(&buf)

		req, _ := http.NewRequest(http.MethodGet, "/wallet/history", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Contains(t, buf.String(), `"correlation_id":`)
	})
}
