package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"student-qr/backend/pkg/jwt"
	"student-qr/backend/pkg/response"
)

// Context keys set by middleware.JWTAuth.
const (
	CtxUserID   = "user_id"
	CtxUsername = "username"
	CtxRole     = "role"
	CtxClaims   = "claims"
)

// MustGetUserID extracts user_id from the gin context. When the JWT
// middleware did not set it, a 401 is written and ok is false; the caller
// should return.
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxUserID)
}

// MustGetUsername extracts username from the gin context.
func MustGetUsername(c *gin.Context) (string, bool) {
	return mustGetString(c, CtxUsername)
}

// MustGetClaims extracts the parsed access token claims.
func MustGetClaims(c *gin.Context) (*jwt.Claims, bool) {
	v, exists := c.Get(CtxClaims)
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

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "not authenticated")
		return "", false
	}
	return s, true
}

var errInvalidID = errors.New("invalid id")

// parseID reads the :id path parameter as a positive integer.
func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}
