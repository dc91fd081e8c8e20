package dto

// UpdateMeRequest - self-service profile update. Password changes are
// rejected on this route; there is a dedicated flow for them.
type UpdateMeRequest struct {
	UserName string `json:"userName,omitempty" validate:"omitempty,min=2,max=20,standard_chars"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password,omitempty"`
}

// AdminUpdateUserRequest - admin-side user update.
type AdminUpdateUserRequest struct {
	UserName string `json:"userName,omitempty" validate:"omitempty,min=2,max=20,standard_chars"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Role     string `json:"role,omitempty" validate:"omitempty,is-user-role"`
}

// UserListQuery - admin list filters.
type UserListQuery struct {
	Role   string `form:"role" validate:"omitempty,is-user-role"`
	Search string `form:"search"`
	Sort   string `form:"sort"`
}

// UserListResponse - paginated user collection.
type UserListResponse struct {
	Users    []UserDTO `json:"users"`
	Total    int64     `json:"total"`
	Page     int       `json:"page"`
	PageSize int       `json:"pageSize"`
}
