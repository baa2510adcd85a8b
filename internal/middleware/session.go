package middleware

import (
	"exam_dashboard/pkg/tracing"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const SessionKey = "session_id"

// SessionMiddleware 保证每个请求都带有会话 id，没有或无效时签发新的 cookie
func SessionMiddleware(cookieName string, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName)
		if err != nil || uuid.Validate(id) != nil {
			id = uuid.NewString()
		}

		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(cookieName, id, int(ttl.Seconds()), "/", "", false, true)
		c.Set(SessionKey, id)
		tracing.TagSession(c.Request.Context(), id)
		c.Next()
	}
}

func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}
