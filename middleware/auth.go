package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"

	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/ctxkey"
	"github.com/pixai-app/pixai-api/common/logger"
)

const messageNotAuthorized = "Not Authorized. Login Again"

var jwtParser = &jwt.Parser{
	ValidMethods:  []string{jwt.SigningMethodHS256.Alg()},
	UseJSONNumber: true,
}

// UserAuth accepts "Authorization: Bearer <jwt>" signed with JWT_SECRET and
// sets the "id" claim as the user id. Every failure is the same 401.
func UserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userId, err := verifyToken(c.Request.Header.Get("Authorization"), config.JwtSecret)
		if err != nil {
			logger.Warnf(c.Request.Context(), "authentication failed: %s", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": messageNotAuthorized,
			})
			c.Abort()
			return
		}
		c.Set(ctxkey.Id, userId)
		ctx := context.WithValue(c.Request.Context(), logger.UserIdKey, userId)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func verifyToken(authHeader string, secret string) (string, error) {
	if secret == "" {
		return "", errors.New("JWT_SECRET is not configured")
	}
	tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
	if !ok || strings.TrimSpace(tokenString) == "" {
		return "", errors.New("missing bearer token")
	}
	claims := jwt.MapClaims{}
	_, err := jwtParser.ParseWithClaims(strings.TrimSpace(tokenString), claims, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return "", errors.Wrap(err, "invalid token")
	}
	userId := claimString(claims["id"])
	if userId == "" {
		return "", errors.New("token has no id claim")
	}
	return userId, nil
}

func claimString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case json.Number:
		if n, err := id.Int64(); err == nil {
			return fmt.Sprintf("%d", n)
		}
		return id.String()
	default:
		return ""
	}
}
