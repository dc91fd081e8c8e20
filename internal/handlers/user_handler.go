package handlers

import (
	"net/http"

	"cutordie_backend/internal/auth"
	"cutordie_backend/internal/middleware"
	"cutordie_backend/internal/services"
	"cutordie_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	*BaseHandler
	userService services.UserService
}

func NewUserHandler(base *BaseHandler, userService services.UserService) *UserHandler {
	return &UserHandler{
		BaseHandler: base,
		userService: userService,
	}
}

// RegisterRoutes wires profile and account administration. Listing and
// reading other accounts takes users:read (admin and dev); updating and
// deleting them is admin-only capability.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	users := rg.Group("/users")
	users.Use(authMW)
	{
		users.PATCH("/updateMe", h.UpdateMe)

		users.GET("", middleware.RequirePermission(auth.PermUsersRead), h.List)
		users.GET("/:id", middleware.RequirePermission(auth.PermUsersRead), h.Get)
		users.PATCH("/:id", middleware.RequirePermission(auth.PermUsersWrite), h.Update)
		users.DELETE("/:id", middleware.RequirePermission(auth.PermUsersDelete), h.Delete)
	}
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateMeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	user, err := h.userService.UpdateMe(c.Request.Context(), db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) List(c *gin.Context) {
	var query dto.UserListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}
	page, pageSize := ParsePagination(c)

	db := h.GetDB(c)
	response, err := h.userService.ListUsers(c.Request.Context(), db, &query, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *UserHandler) Get(c *gin.Context) {
	db := h.GetDB(c)
	user, err := h.userService.GetUser(c.Request.Context(), db, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) Update(c *gin.Context) {
	var req dto.AdminUpdateUserRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	user, err := h.userService.AdminUpdateUser(c.Request.Context(), db, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *UserHandler) Delete(c *gin.Context) {
	db := h.GetDB(c)
	if err := h.userService.DeleteUser(c.Request.Context(), db, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
