package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"practica/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sessionRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/session/:sessionID", SessionAuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestSessionAuthAcceptsMatchingToken(t *testing.T) {
	token, err := utils.GenerateSessionToken("sess-1", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/session/sess-1", nil)
	req.Header.Set("X-Session-Token", token)
	rec := httptest.NewRecorder()
	sessionRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionAuthAcceptsBearerHeader(t *testing.T) {
	token, err := utils.GenerateSessionToken("sess-1", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/session/sess-1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	sessionRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionAuthRejectsMissingToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/session/sess-1", nil)
	rec := httptest.NewRecorder()
	sessionRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthRejectsGarbageToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/session/sess-1", nil)
	req.Header.Set("X-Session-Token", "not-a-token")
	rec := httptest.NewRecorder()
	sessionRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSessionAuthRejectsTokenForOtherSession(t *testing.T) {
	token, err := utils.GenerateSessionToken("sess-other", time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/session/sess-1", nil)
	req.Header.Set("X-Session-Token", token)
	rec := httptest.NewRecorder()
	sessionRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSessionAuthRejectsExpiredToken(t *testing.T) {
	token, err := utils.GenerateSessionToken("sess-1", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/session/sess-1", nil)
	req.Header.Set("X-Session-Token", token)
	rec := httptest.NewRecorder()
	sessionRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
