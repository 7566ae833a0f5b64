package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yanqian/outfit-calendar/internal/infra/backend"
	"github.com/yanqian/outfit-calendar/pkg/util"
)

const (
	apiPrefix         = "/api/v1"
	sessionHeader     = backend.SessionHeader
	sessionKeyContext = "session_key"
	maxSessionKeyLen  = 128
)

// withSessionKey gives every API request a usable session key before it
// reaches the retry wrapper, so replays of one request share a session.
func withSessionKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, apiPrefix+"/") {
			if _, ok := validSessionKey(r.Header.Get(sessionHeader)); !ok {
				r = r.Clone(r.Context())
				r.Header.Set(sessionHeader, uuid.NewString())
			}
		}
		next.ServeHTTP(w, r)
	})
}

// sessionMiddleware resolves the caller's session key, minting one when the
// request has none, and echoes it back so the browser can reuse it.
func sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok := validSessionKey(c.GetHeader(sessionHeader))
		if !ok {
			key = uuid.NewString()
		}
		c.Header(sessionHeader, key)
		c.Set(sessionKeyContext, key)
		c.Request = c.Request.WithContext(util.WithSessionKey(c.Request.Context(), key))
		c.Next()
	}
}

func validSessionKey(raw string) (string, bool) {
	key := strings.TrimSpace(raw)
	if key == "" || len(key) > maxSessionKeyLen {
		return "", false
	}
	return key, true
}

func getSessionKey(c *gin.Context) string {
	return c.GetString(sessionKeyContext)
}
