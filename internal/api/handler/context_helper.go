package handler

import (
	"github.com/gin-gonic/gin"

	"custody-tracker/internal/api/middleware"
	"custody-tracker/pkg/jwt"
	"custody-tracker/pkg/response"
)

// MustGetUserID reads the user_id set by JWTAuth.
// On failure it writes a 401; callers return when ok is false.
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString(middleware.ContextUserID)
	if s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

// MustGetClaims reads the parsed token claims set by JWTAuth
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(middleware.ContextClaims)
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return nil, false
	}
	claims, ok := v.(*jwt.Claims)
	if !ok || claims == nil {
		response.Unauthorized(c, 10002, "not authenticated")
		return nil, false
	}
	return claims, true
}

func badRequest(c *gin.Context, err error) {
	response.ErrorWithDetails(c, 400, 10001, "invalid request parameters", err.Error())
}
