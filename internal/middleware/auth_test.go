package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cozylogic-backend/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-signing-must-be-long-enough"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func authRouter(t *testing.T) (*gin.Engine, *string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	var seen string
	router := gin.New()
	router.Use(middleware.AuthMiddleware(testSecret))
	router.GET("/test", func(c *gin.Context) {
		seen = c.GetString(middleware.UserIDKey)
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router, &seen
}

func doAuth(router *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	router, seen := authRouter(t)
	user := uuid.NewString()
	token := sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
		"sub": user,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := doAuth(router, "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, user, *seen)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	good := jwt.MapClaims{"sub": uuid.NewString(), "exp": time.Now().Add(time.Hour).Unix()}

	tests := []struct {
		name   string
		header func(t *testing.T) string
	}{
		{"no header", func(t *testing.T) string { return "" }},
		{"wrong scheme", func(t *testing.T) string {
			return "Basic " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), good)
		}},
		{"empty token", func(t *testing.T) string { return "Bearer  " }},
		{"garbage", func(t *testing.T) string { return "Bearer invalid-token" }},
		{"wrong secret", func(t *testing.T) string {
			return "Bearer " + sign(t, jwt.SigningMethodHS256, []byte("other-secret"), good)
		}},
		{"wrong algorithm", func(t *testing.T) string {
			return "Bearer " + sign(t, jwt.SigningMethodHS512, []byte(testSecret), good)
		}},
		{"expired", func(t *testing.T) string {
			return "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
				"sub": uuid.NewString(),
				"exp": time.Now().Add(-time.Hour).Unix(),
			})
		}},
		{"missing sub", func(t *testing.T) string {
			return "Bearer " + sign(t, jwt.SigningMethodHS256, []byte(testSecret), jwt.MapClaims{
				"exp": time.Now().Add(time.Hour).Unix(),
			})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, seen := authRouter(t)
			w := doAuth(router, tt.header(t))
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"error":"unauthorized"`)
			assert.Empty(t, *seen)
		})
	}
}

func TestCallerID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := middleware.CallerID(c)
	assert.False(t, ok)

	c.Set(middleware.UserIDKey, "not-a-uuid")
	_, ok = middleware.CallerID(c)
	assert.False(t, ok)

	id := uuid.New()
	c.Set(middleware.UserIDKey, id.String())
	got, ok := middleware.CallerID(c)
	require.True(t, ok)
	assert.Equal(t, id, got)
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.CORS([]string{"http://localhost:3000"}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
