package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hugohenrick/warung-digital/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newProtectedRouter(s *JWTService, roles ...string) *gin.Engine {
	r := gin.New()
	handlers := []gin.HandlerFunc{JWTAuthMiddleware(s)}
	if len(roles) > 0 {
		handlers = append(handlers, RoleAuthMiddleware(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		current := GetCurrentUser(c)
		c.String(http.StatusOK, current.ID+"|"+current.Role)
	})
	r.GET("/protected", handlers...)
	return r
}

func TestJWTAuthMiddleware(t *testing.T) {
	s := newTestService(t, nil)
	u := newTestUser(t, user.RoleCashier)
	token, _, err := s.GenerateToken(u)
	require.NoError(t, err)
	router := newProtectedRouter(s)

	tests := []struct {
		name   string
		url    string
		header string
		status int
	}{
		{"sem token", "/protected", "", http.StatusUnauthorized},
		{"formato inválido", "/protected", "Token " + token, http.StatusUnauthorized},
		{"token inválido", "/protected", "Bearer abc", http.StatusUnauthorized},
		{"cabeçalho", "/protected", "Bearer " + token, http.StatusOK},
		{"query para SSE", "/protected?access_token=" + token, "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, u.ID+"|cashier", w.Body.String())
			}
		})
	}
}

func TestRoleAuthMiddleware(t *testing.T) {
	s := newTestService(t, nil)
	router := newProtectedRouter(s, string(user.RoleOwner))

	cashierToken, _, err := s.GenerateToken(newTestUser(t, user.RoleCashier))
	require.NoError(t, err)
	ownerToken, _, err := s.GenerateToken(newTestUser(t, user.RoleOwner))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+cashierToken)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+ownerToken)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
