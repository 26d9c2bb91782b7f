package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pixai-app/pixai-api/common/config"
	"github.com/pixai-app/pixai-api/common/ctxkey"
	"github.com/pixai-app/pixai-api/common/logger"
)

const testSecret = "test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func newAuthEngine(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	previous := config.JwtSecret
	config.JwtSecret = testSecret
	t.Cleanup(func() { config.JwtSecret = previous })

	engine := gin.New()
	engine.GET("/me", UserAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"id":      c.GetString(ctxkey.Id),
			"ctx_id":  c.Request.Context().Value(logger.UserIdKey),
			"success": true,
		})
	})
	return engine
}

func TestUserAuth(t *testing.T) {
	future := time.Now().Add(time.Hour).Unix()
	past := time.Now().Add(-time.Hour).Unix()

	tests := []struct {
		name   string
		header func(t *testing.T) string
		wantId string
	}{
		{
			name: "string id",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"id": "64f0c2", "exp": future})
			},
			wantId: "64f0c2",
		},
		{
			name: "numeric id",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"id": 1234567890123, "exp": future})
			},
			wantId: "1234567890123",
		},
		{
			name: "no expiry",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"id": "u1"})
			},
			wantId: "u1",
		},
		{
			name:   "missing header",
			header: func(t *testing.T) string { return "" },
		},
		{
			name: "no bearer prefix",
			header: func(t *testing.T) string {
				return signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"id": "u1"})
			},
		},
		{
			name:   "empty token",
			header: func(t *testing.T) string { return "Bearer " },
		},
		{
			name:   "garbage token",
			header: func(t *testing.T) string { return "Bearer not-a-jwt" },
		},
		{
			name: "expired",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"id": "u1", "exp": past})
			},
		},
		{
			name: "wrong secret",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, jwt.SigningMethodHS256, "other-secret", jwt.MapClaims{"id": "u1", "exp": future})
			},
		},
		{
			name: "other algorithm",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, jwt.SigningMethodHS512, testSecret, jwt.MapClaims{"id": "u1", "exp": future})
			},
		},
		{
			name: "missing id claim",
			header: func(t *testing.T) string {
				return "Bearer " + signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"sub": "u1", "exp": future})
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newAuthEngine(t)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if header := tt.header(t); header != "" {
				req.Header.Set("Authorization", header)
			}
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			if tt.wantId == "" {
				assert.Equal(t, http.StatusUnauthorized, w.Code)
				assert.Equal(t, false, body["success"])
				assert.Equal(t, "Not Authorized. Login Again", body["message"])
				return
			}
			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantId, body["id"])
			assert.Equal(t, tt.wantId, body["ctx_id"])
		})
	}
}

func TestVerifyTokenWithoutSecret(t *testing.T) {
	token := signToken(t, jwt.SigningMethodHS256, testSecret, jwt.MapClaims{"id": "u1"})
	_, err := verifyToken("Bearer "+token, "")
	assert.Error(t, err)
}
