package dto

import "cutordie_backend/internal/models"

// LocalizedTextInput carries one locale's name/description pair.
type LocalizedTextInput struct {
	Name        string `json:"name" validate:"required,min=2,max=100,standard_chars"`
	Description string `json:"description" validate:"required,max=2000"`
}

// CreateCourseRequest - admin-side catalog entry creation. Prices are
// integer minor units per currency.
type CreateCourseRequest struct {
	En LocalizedTextInput `json:"en" validate:"required"`
	Ua LocalizedTextInput `json:"ua" validate:"required"`

	PriceUSD int64 `json:"priceUsd" validate:"gte=0"`
	PriceUAH int64 `json:"priceUah" validate:"gte=0"`
	PriceEUR int64 `json:"priceEur" validate:"gte=0"`

	Duration   int    `json:"duration" validate:"required,gte=1"`
	Difficulty int    `json:"difficulty" validate:"required,gte=1,lte=5"`
	FileID     string `json:"fileId" validate:"required"`
	CoverImage string `json:"coverImage,omitempty"`
}

// UpdateCourseRequest - partial update; nil pointers leave a field as is.
type UpdateCourseRequest struct {
	En *LocalizedTextInput `json:"en,omitempty"`
	Ua *LocalizedTextInput `json:"ua,omitempty"`

	PriceUSD *int64 `json:"priceUsd,omitempty" validate:"omitempty,gte=0"`
	PriceUAH *int64 `json:"priceUah,omitempty" validate:"omitempty,gte=0"`
	PriceEUR *int64 `json:"priceEur,omitempty" validate:"omitempty,gte=0"`

	Duration   *int    `json:"duration,omitempty" validate:"omitempty,gte=1"`
	Difficulty *int    `json:"difficulty,omitempty" validate:"omitempty,gte=1,lte=5"`
	FileID     *string `json:"fileId,omitempty"`
	CoverImage *string `json:"coverImage,omitempty"`
}

// CourseListQuery - public catalog listing with range filters, sparse
// field selection and pagination, all bound from the query string.
type CourseListQuery struct {
	DifficultyMin *int   `form:"difficulty_min" validate:"omitempty,gte=1"`
	DifficultyMax *int   `form:"difficulty_max" validate:"omitempty,lte=5"`
	DurationMin   *int   `form:"duration_min" validate:"omitempty,gte=0"`
	DurationMax   *int   `form:"duration_max" validate:"omitempty,gte=0"`
	PriceUAHMax   *int64 `form:"price_uah_max" validate:"omitempty,gte=0"`
	Sort          string `form:"sort"`
	Fields        string `form:"fields"`
	Page          int    `form:"page" validate:"omitempty,gte=1"`
	PageSize      int    `form:"pageSize" validate:"omitempty,gte=1,lte=100"`
}

// CourseListResponse - paginated catalog collection.
type CourseListResponse struct {
	Courses  []models.Course `json:"courses"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"pageSize"`
}
