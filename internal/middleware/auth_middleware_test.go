package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	iauth "github.com/greencycle/ecollect/internal/auth"
	"github.com/greencycle/ecollect/internal/database/testutil"
	"github.com/greencycle/ecollect/internal/models"
)

func newAuthFixture(t *testing.T) (*iauth.JWTService, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtSvc, err := iauth.NewJWTService(iauth.JWTConfig{
		Secret:         "secret",
		Issuer:         "test-suite",
		AccessTokenTTL: time.Minute,
	})
	require.NoError(t, err)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	return jwtSvc, db
}

func TestAuthMiddleware(t *testing.T) {
	jwtSvc, db := newAuthFixture(t)

	user := models.User{Username: "alice", Email: "alice@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	token, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{UserID: user.ID})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/secure", Auth(jwtSvc, db), func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(CtxUserIDKey),
			"role":    string(actor.Role),
		})
	})

	// Missing Authorization header -> 401
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token -> 401
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	// Valid token -> downstream handler executes with the actor resolved
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var payload map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.Equal(t, user.ID, payload["user_id"])
	require.Equal(t, "customer", payload["role"])
}

func TestOptionalAuthMiddleware(t *testing.T) {
	jwtSvc, db := newAuthFixture(t)

	user := models.User{Username: "alice", Email: "alice@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&user).Error)

	token, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{UserID: user.ID})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/open", OptionalAuth(jwtSvc, db), func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		c.JSON(http.StatusOK, gin.H{
			"resolved": ok,
			"user_id":  actor.UserID,
		})
	})

	// No token -> request still succeeds, no actor resolved
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Resolved bool   `json:"resolved"`
		UserID   string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.False(t, payload.Resolved)

	// Garbage token -> treated as anonymous, never 401
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	// Valid token -> actor resolved
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.True(t, payload.Resolved)
	require.Equal(t, user.ID, payload.UserID)
}

func TestAuthMiddlewareRejectsDisabledAccount(t *testing.T) {
	jwtSvc, db := newAuthFixture(t)

	user := models.User{Username: "alice", Email: "alice@example.com", Password: "x", IsActive: false}
	require.NoError(t, db.Create(&user).Error)

	token, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{UserID: user.ID})
	require.NoError(t, err)

	r := gin.New()
	r.GET("/secure", Auth(jwtSvc, db), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	jwtSvc, db := newAuthFixture(t)

	staff := models.User{Username: "staff", Email: "staff@example.com", Password: "x", IsStaff: true, IsActive: true}
	customer := models.User{Username: "carol", Email: "carol@example.com", Password: "x", IsActive: true}
	require.NoError(t, db.Create(&staff).Error)
	require.NoError(t, db.Create(&customer).Error)

	r := gin.New()
	r.GET("/staff-only", Auth(jwtSvc, db), RequireStaff(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/coordinators", Auth(jwtSvc, db), RequireCoordinator(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	request := func(path, userID string) int {
		token, err := jwtSvc.GenerateAccessToken(iauth.AccessTokenInput{UserID: userID})
		require.NoError(t, err)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		return w.Code
	}

	require.Equal(t, http.StatusOK, request("/staff-only", staff.ID))
	require.Equal(t, http.StatusForbidden, request("/staff-only", customer.ID))
	require.Equal(t, http.StatusOK, request("/coordinators", staff.ID))
	require.Equal(t, http.StatusForbidden, request("/coordinators", customer.ID))

	// Company members pass the coordinator gate.
	require.NoError(t, db.Create(&models.UserProfile{UserID: customer.ID, IsCompany: true}).Error)
	require.Equal(t, http.StatusOK, request("/coordinators", customer.ID))
	require.Equal(t, http.StatusForbidden, request("/staff-only", customer.ID))
}
