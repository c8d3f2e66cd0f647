package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	"custody-tracker/pkg/response"
)

// TriggerTokenHeader alternative to a bearer credential for schedulers that cannot set Authorization
const TriggerTokenHeader = "X-Alert-Trigger-Token"

// TriggerAuth guards the on-demand alert trigger with a shared secret.
// Without a configured secret the endpoint answers 503; a missing or wrong
// credential answers 401. Both happen before the handler touches any data.
func TriggerAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			response.ServiceUnavailable(c, 10006, "alert trigger is not configured")
			c.Abort()
			return
		}

		presented, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			presented = c.GetHeader(TriggerTokenHeader)
		}
		if presented == "" || subtle.ConstantTimeCompare([]byte(presented), []byte(secret)) != 1 {
			response.Unauthorized(c, 10002, "invalid alert trigger credentials")
			c.Abort()
			return
		}

		c.Next()
	}
}
