package middleware

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quotedesk/internal/platform/config"
	"github.com/jsamuelsen/quotedesk/internal/platform/logging"
)

// ContextKeyCaller is the gin context key of the Caller.
const ContextKeyCaller = "caller"

const (
	defaultSubjectHeader = "X-User-ID"
	defaultRolesHeader   = "X-User-Roles"
)

// Caller is the identity a gateway passed in headers. The service does not
// authenticate; it only scopes drafts to the subject.
type Caller struct {
	Subject string
	Roles   []string

	// Anonymous is set when no subject header was present and the default owner is used.
	Anonymous bool
}

// Identity reads the caller from the configured headers. Requests without a
// subject act as cfg.DefaultOwner.
func Identity(cfg config.IdentityConfig) gin.HandlerFunc {
	subjectHeader := orDefault(cfg.SubjectHeader, defaultSubjectHeader)
	rolesHeader := orDefault(cfg.RolesHeader, defaultRolesHeader)

	return func(c *gin.Context) {
		caller := Caller{
			Subject: strings.TrimSpace(c.GetHeader(subjectHeader)),
			Roles:   splitList(c.GetHeader(rolesHeader)),
		}

		if caller.Subject == "" {
			caller.Subject = cfg.DefaultOwner
			caller.Anonymous = true
		}

		c.Set(ContextKeyCaller, caller)
		c.Request = c.Request.WithContext(logging.WithAttrs(c.Request.Context(), slog.String("owner", caller.Subject)))

		c.Next()
	}
}

// GetCaller returns the caller stored by Identity, or the zero Caller.
func GetCaller(c *gin.Context) Caller {
	if v, ok := c.Get(ContextKeyCaller); ok {
		if caller, ok := v.(Caller); ok {
			return caller
		}
	}

	return Caller{}
}

// Owner is the draft owner of the request.
func Owner(c *gin.Context) string {
	return GetCaller(c).Subject
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}

	return v
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
