package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"library-api/pkg/jwt"
)

func newAuthRouter(t *testing.T, manager *jwt.Manager, adminOnly bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(manager)}
	if adminOnly {
		handlers = append(handlers, AdminMiddleware())
	}
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString("user_id"),
			"role":    c.GetString("role"),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func Test_AuthMiddleware_AcceptsIssuedToken(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	token, err := manager.GenerateAccessToken("user-7", "admin@example.com", "admin")
	require.NoError(t, err)

	router := newAuthRouter(t, manager, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-7")
	assert.Contains(t, w.Body.String(), "admin")
}

func Test_AuthMiddleware_RejectsBadTokens(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	otherManager := jwt.NewManager("other-secret")
	foreign, err := otherManager.GenerateAccessToken("user-7", "admin@example.com", "admin")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing_header", header: ""},
		{name: "not_bearer", header: "Basic abc123"},
		{name: "garbage_token", header: "Bearer not-a-jwt"},
		{name: "wrong_secret", header: "Bearer " + foreign},
	}

	router := newAuthRouter(t, manager, false)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func Test_AdminMiddleware_RequiresAdminRole(t *testing.T) {
	manager := jwt.NewManager("test-secret")
	router := newAuthRouter(t, manager, true)

	reader, err := manager.GenerateAccessToken("user-8", "reader@example.com", "reader")
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+reader)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	admin, err := manager.GenerateAccessToken("user-9", "admin@example.com", "admin")
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
