package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quotedesk/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotedesk/internal/platform/logging"
)

// Recovery turns a panic into a 500 with the standard error envelope and logs
// the stack. It must be the first middleware in the chain.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}

			ctx := c.Request.Context()

			logging.FromContext(ctx).ErrorContext(ctx, "panic recovered",
				slog.Any("error", r),
				slog.String("stack", string(debug.Stack())),
				slog.String("method", c.Request.Method),
				slog.String("path", c.Request.URL.Path),
			)

			abort(c, http.StatusInternalServerError,
				dto.NewErrorResponse(dto.ErrorCodeInternal, "an internal error occurred"))
		}()

		c.Next()
	}
}

// abort writes resp unless the handler already started the body.
func abort(c *gin.Context, status int, resp *dto.ErrorResponse) {
	if span := trace.SpanFromContext(c.Request.Context()); span.SpanContext().HasTraceID() {
		resp.TraceID = span.SpanContext().TraceID().String()
	}

	if c.Writer.Written() {
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(status, resp)
}
