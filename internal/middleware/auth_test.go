package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cutordie_backend/internal/auth"
	"cutordie_backend/internal/models"
	"cutordie_backend/internal/repositories"
	"cutordie_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubUserRepo serves exactly one user; only FindByID is exercised by
// the middleware.
type stubUserRepo struct {
	user *models.User
}

func (r *stubUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	if r.user != nil && r.user.ID == id {
		return r.user, nil
	}
	return nil, repositories.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ *gorm.DB, _ string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (r *stubUserRepo) FindByUserName(_ *gorm.DB, _ string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ *gorm.DB, _ *models.User) error  { return nil }
func (r *stubUserRepo) Update(_ *gorm.DB, _ *models.User) error  { return nil }
func (r *stubUserRepo) Delete(_ *gorm.DB, _ string) error        { return nil }
func (r *stubUserRepo) ClearResetCode(_ *gorm.DB, _ string) error { return nil }

func (r *stubUserRepo) UpdatePassword(_ *gorm.DB, _, _ string, _ time.Time) error {
	return nil
}

func (r *stubUserRepo) SetResetCode(_ *gorm.DB, _, _ string, _ time.Time) error {
	return nil
}

func (r *stubUserRepo) FindWithFilter(_ *gorm.DB, _ repositories.UserFilter) ([]models.User, int64, error) {
	return nil, 0, nil
}

var _ repositories.UserRepository = (*stubUserRepo)(nil)

func newProtectedRouter(tokens *auth.TokenIssuer, repo repositories.UserRepository, perms ...string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(string(contextkeys.DBContextKey), (*gorm.DB)(nil))
		c.Next()
	})

	group := router.Group("/protected")
	group.Use(AuthMiddleware(tokens, repo))
	for _, p := range perms {
		group.Use(RequirePermission(p))
	}
	group.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userID": GetUserID(c)})
	})
	return router
}

func get(router *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	router := newProtectedRouter(tokens, &stubUserRepo{})

	w := get(router, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	user := &models.User{Role: models.UserRoleUser}
	user.ID = "user-1"
	router := newProtectedRouter(tokens, &stubUserRepo{user: user})

	token, err := tokens.Issue("user-1", "user")
	require.NoError(t, err)

	w := get(router, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user-1")
}

func TestAuthMiddlewareCookieFallback(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	user := &models.User{Role: models.UserRoleUser}
	user.ID = "user-1"
	router := newProtectedRouter(tokens, &stubUserRepo{user: user})

	token, err := tokens.Issue("user-1", "user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: "jwt", Value: token})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	expired := auth.NewTokenIssuer("secret", -time.Minute)
	live := auth.NewTokenIssuer("secret", time.Hour)
	user := &models.User{Role: models.UserRoleUser}
	user.ID = "user-1"
	router := newProtectedRouter(live, &stubUserRepo{user: user})

	token, err := expired.Issue("user-1", "user")
	require.NoError(t, err)

	w := get(router, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareDeletedUser(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	router := newProtectedRouter(tokens, &stubUserRepo{})

	token, err := tokens.Issue("user-1", "user")
	require.NoError(t, err)

	w := get(router, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddlewareStaleTokenAfterPasswordChange(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	user := &models.User{Role: models.UserRoleUser}
	user.ID = "user-1"
	router := newProtectedRouter(tokens, &stubUserRepo{user: user})

	token, err := tokens.Issue("user-1", "user")
	require.NoError(t, err)

	// Password changed after the token was minted.
	changed := time.Now().Add(time.Minute)
	user.PasswordChangedAt = &changed

	w := get(router, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "recently changed password")
}

func TestRequirePermissionForbidsUser(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	user := &models.User{Role: models.UserRoleUser}
	user.ID = "user-1"
	router := newProtectedRouter(tokens, &stubUserRepo{user: user}, auth.PermUsersDelete)

	token, err := tokens.Issue("user-1", "user")
	require.NoError(t, err)

	w := get(router, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

// Dev accounts read other users but never delete them.
func TestRequirePermissionDevCannotDeleteUsers(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	user := &models.User{Role: models.UserRoleDev}
	user.ID = "dev-1"
	repo := &stubUserRepo{user: user}

	token, err := tokens.Issue("dev-1", "dev")
	require.NoError(t, err)

	w := get(newProtectedRouter(tokens, repo, auth.PermUsersDelete), token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = get(newProtectedRouter(tokens, repo, auth.PermUsersRead), token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequirePermissionAdminDeletesUsers(t *testing.T) {
	tokens := auth.NewTokenIssuer("secret", time.Hour)
	user := &models.User{Role: models.UserRoleAdmin}
	user.ID = "admin-1"
	router := newProtectedRouter(tokens, &stubUserRepo{user: user}, auth.PermUsersDelete)

	token, err := tokens.Issue("admin-1", "admin")
	require.NoError(t, err)

	w := get(router, token)
	assert.Equal(t, http.StatusOK, w.Code)
}
