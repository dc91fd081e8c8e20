package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"cutordie_backend/internal/models"
	"cutordie_backend/internal/services"
	"cutordie_backend/internal/services/dto"
	"cutordie_backend/internal/validator"
	"cutordie_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeUserService struct {
	deleteCalls int
	updateCalls int
}

func (s *fakeUserService) GetUser(_ context.Context, _ *gorm.DB, id string) (*dto.UserDTO, error) {
	return &dto.UserDTO{ID: id}, nil
}

func (s *fakeUserService) UpdateMe(_ context.Context, _ *gorm.DB, userID string, _ *dto.UpdateMeRequest) (*dto.UserDTO, error) {
	return &dto.UserDTO{ID: userID}, nil
}

func (s *fakeUserService) AdminUpdateUser(_ context.Context, _ *gorm.DB, id string, _ *dto.AdminUpdateUserRequest) (*dto.UserDTO, error) {
	s.updateCalls++
	return &dto.UserDTO{ID: id}, nil
}

func (s *fakeUserService) DeleteUser(_ context.Context, _ *gorm.DB, _ string) error {
	s.deleteCalls++
	return nil
}

func (s *fakeUserService) ListUsers(_ context.Context, _ *gorm.DB, _ *dto.UserListQuery, _, _ int) (*dto.UserListResponse, error) {
	return &dto.UserListResponse{}, nil
}

var _ services.UserService = (*fakeUserService)(nil)

// newUserRouter registers the user routes behind a stub session with
// the given role, so the capability checks are exercised end to end.
func newUserRouter(svc services.UserService, role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(string(contextkeys.DBContextKey), (*gorm.DB)(nil))
		c.Next()
	})

	session := func(c *gin.Context) {
		c.Set("userID", "caller-1")
		c.Set("role", role)
		c.Next()
	}

	handler := NewUserHandler(NewBaseHandler(validator.New()), svc)
	handler.RegisterRoutes(router.Group("/api/v1"), session)
	return router
}

func do(router *gin.Engine, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUserRoutesDevCannotAdministerUsers(t *testing.T) {
	svc := &fakeUserService{}
	router := newUserRouter(svc, models.UserRoleDev)

	w := do(router, http.MethodDelete, "/api/v1/users/user-2")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(router, http.MethodPatch, "/api/v1/users/user-2")
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Zero(t, svc.deleteCalls)
	assert.Zero(t, svc.updateCalls)
}

func TestUserRoutesDevReadsUsers(t *testing.T) {
	router := newUserRouter(&fakeUserService{}, models.UserRoleDev)

	w := do(router, http.MethodGet, "/api/v1/users")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(router, http.MethodGet, "/api/v1/users/user-2")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUserRoutesAdminDeletesUsers(t *testing.T) {
	svc := &fakeUserService{}
	router := newUserRouter(svc, models.UserRoleAdmin)

	w := do(router, http.MethodDelete, "/api/v1/users/user-2")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, 1, svc.deleteCalls)
}

func TestUserRoutesPlainUserForbidden(t *testing.T) {
	svc := &fakeUserService{}
	router := newUserRouter(svc, models.UserRoleUser)

	w := do(router, http.MethodGet, "/api/v1/users")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(router, http.MethodDelete, "/api/v1/users/user-2")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, svc.deleteCalls)
}
