package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-account-backend/internal/core/auth"
	resp "go-account-backend/internal/transport/http/response"
)

func newAuthTestRouter(j *auth.JWTer, requireRole string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", AuthJWT(j, requireRole), func(c *gin.Context) {
		c.JSON(http.StatusOK, resp.OK(gin.H{"username": c.GetString("username")}))
	})
	return r
}

func doAuthReq(t *testing.T, r *gin.Engine, token string) resp.Resp {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var body resp.Resp
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestAuthJWT(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "test", TTL: time.Minute}

	t.Run("missing token", func(t *testing.T) {
		body := doAuthReq(t, newAuthTestRouter(j, ""), "")
		assert.Equal(t, resp.CodeUnauthorized, body.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		body := doAuthReq(t, newAuthTestRouter(j, ""), "not-a-token")
		assert.Equal(t, resp.CodeUnauthorized, body.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		tok, err := j.Issue(1, "alice", []string{"admin"})
		require.NoError(t, err)
		body := doAuthReq(t, newAuthTestRouter(j, ""), tok)
		assert.Equal(t, resp.CodeOK, body.Code)
	})

	t.Run("role required and missing", func(t *testing.T) {
		tok, err := j.Issue(2, "bob", []string{"viewer"})
		require.NoError(t, err)
		body := doAuthReq(t, newAuthTestRouter(j, "admin"), tok)
		assert.Equal(t, resp.CodeForbidden, body.Code)
	})

	t.Run("role required and present", func(t *testing.T) {
		tok, err := j.Issue(3, "carol", []string{"admin", "viewer"})
		require.NoError(t, err)
		body := doAuthReq(t, newAuthTestRouter(j, "admin"), tok)
		assert.Equal(t, resp.CodeOK, body.Code)
	})
}
