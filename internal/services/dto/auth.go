package dto

import (
	"time"

	"cutordie_backend/internal/models"
)

// SignupRequest - new account payload. Field rules follow the catalog
// site's user schema: short names, the shared character whitelist.
type SignupRequest struct {
	UserName string `json:"userName" validate:"required,min=2,max=20,standard_chars"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=30,standard_chars"`
}

// SigninRequest - credentials login.
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// ForgotPasswordRequest - asks for a reset code by email.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// ConfirmResetCodeRequest - checks a reset code without consuming it.
type ConfirmResetCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// ResetPasswordRequest - completes the reset flow.
type ResetPasswordRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Code     string `json:"code" validate:"required,len=6,numeric"`
	Password string `json:"password" validate:"required,min=4,max=30,standard_chars"`
}

// ChangePasswordRequest - password change for a signed-in user.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=4,max=30,standard_chars"`
}

// AdminCreateRequest - bootstrap-key guarded admin creation.
type AdminCreateRequest struct {
	UserName string `json:"userName" validate:"required,min=2,max=20,standard_chars"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=30,standard_chars"`
	AdminKey string `json:"adminKey" validate:"required"`
}

// AuthResponse - token plus the public view of the user. Signup and
// signin both answer with this shape.
type AuthResponse struct {
	Token string  `json:"token"`
	User  UserDTO `json:"user"`
}

// UserDTO - public user representation; never carries the hash.
type UserDTO struct {
	ID               string          `json:"id"`
	UserName         string          `json:"userName"`
	Email            string          `json:"email"`
	Role             models.UserRole `json:"role"`
	PurchasedCourses []string        `json:"purchasedCourses"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// NewUserDTO maps a model to its public view.
func NewUserDTO(user *models.User) UserDTO {
	purchased := user.PurchasedCourseIDs()
	if purchased == nil {
		purchased = []string{}
	}
	return UserDTO{
		ID:               user.ID,
		UserName:         user.UserName,
		Email:            user.Email,
		Role:             user.Role,
		PurchasedCourses: purchased,
		CreatedAt:        user.CreatedAt,
	}
}
