package obs

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type Middleware struct {
	Logger *slog.Logger
}

// RequestID reuses the caller's X-Request-ID or mints one, and exposes it on the context.
func (m Middleware) RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Request = c.Request.WithContext(WithRequestID(c.Request.Context(), id))
		c.Writer.Header().Set(requestIDHeader, id)
		c.Set("request_id", id)
		c.Next()
	}
}

// AccessLog logs one line per request. 5xx responses log at error level, 4xx at warn.
func (m Middleware) AccessLog() gin.HandlerFunc {
	log := m.Logger
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if log == nil {
			return
		}
		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"duration", time.Since(start),
			"request_id", c.GetString("request_id"),
		}
		if code := c.GetString("error_code"); code != "" {
			attrs = append(attrs, "code", code)
		}
		ctx := c.Request.Context()
		switch {
		case status >= http.StatusInternalServerError:
			log.ErrorContext(ctx, "http", attrs...)
		case status >= http.StatusBadRequest:
			log.WarnContext(ctx, "http", attrs...)
		default:
			log.InfoContext(ctx, "http", attrs...)
		}
	}
}

// Recovery turns a handler panic into a 500 with the API's error body.
func (m Middleware) Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				if m.Logger != nil {
					m.Logger.ErrorContext(c.Request.Context(), "panic recovered",
						"panic", fmt.Sprint(rec), "request_id", c.GetString("request_id"))
				}
				c.Set("error_code", "internal")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":     "internal error",
					"code":      "internal",
					"retryable": false,
				})
			}
		}()
		c.Next()
	}
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDKey{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
