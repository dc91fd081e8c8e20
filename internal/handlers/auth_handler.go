package handlers

import (
	"net/http"
	"strings"

	"cutordie_backend/internal/middleware"
	"cutordie_backend/internal/services"
	"cutordie_backend/internal/services/dto"
	"cutordie_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

// RegisterRoutes wires the auth endpoints under /users. Everything
// before /changePassword is public; the rest needs a session.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	users := rg.Group("/users")
	{
		users.POST("/signup", h.Signup)
		users.POST("/signin", h.Signin)
		users.POST("/googleAuth", h.GoogleAuth)
		users.POST("/logout", h.Logout)
		users.POST("/createAdmin", h.CreateAdmin)
		users.POST("/forgotPassword", h.ForgotPassword)
		users.POST("/confirmResetCode", h.ConfirmResetCode)
		users.POST("/resetPassword", h.ResetPassword)
	}

	authed := rg.Group("/users")
	authed.Use(authMW)
	{
		authed.PATCH("/changePassword", h.ChangePassword)
		authed.GET("/me", h.Me)
	}
}

func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	response, err := h.authService.Signup(c.Request.Context(), db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *AuthHandler) Signin(c *gin.Context) {
	var req dto.SigninRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	response, err := h.authService.Signin(c.Request.Context(), db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// GoogleAuth exchanges a Google access token, carried in the
// Authorization header, for a session. Creates the account on first
// sign-in.
func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	header := c.GetHeader("Authorization")
	accessToken := strings.TrimPrefix(header, "Bearer ")
	if accessToken == "" || accessToken == header {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("You are not signed in. Please sign in to get access"))
		return
	}

	db := h.GetDB(c)
	response, err := h.authService.GoogleAuth(c.Request.Context(), db, accessToken)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) CreateAdmin(c *gin.Context) {
	var req dto.AdminCreateRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	response, err := h.authService.CreateAdmin(c.Request.Context(), db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response)
}

func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	if err := h.authService.ForgotPassword(c.Request.Context(), db, req.Email); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Code sent to email!",
	})
}

func (h *AuthHandler) ConfirmResetCode(c *gin.Context) {
	var req dto.ConfirmResetCodeRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	if err := h.authService.ConfirmResetCode(c.Request.Context(), db, req.Email, req.Code); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	response, err := h.authService.ResetPassword(c.Request.Context(), db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	response, err := h.authService.ChangePassword(c.Request.Context(), db, userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Logout clears the session cookie for clients that use it. Bearer
// tokens are stateless; the client just drops them.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetCookie("jwt", "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "success"})
}

// Me answers with the profile loaded by the auth middleware.
func (h *AuthHandler) Me(c *gin.Context) {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		h.HandleServiceError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": dto.NewUserDTO(user)})
}
