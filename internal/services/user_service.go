package services

import (
	"context"

	"cutordie_backend/internal/auth"
	"cutordie_backend/internal/logger"
	"cutordie_backend/internal/models"
	"cutordie_backend/internal/repositories"
	"cutordie_backend/internal/services/dto"
	"cutordie_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	GetUser(ctx context.Context, db *gorm.DB, id string) (*dto.UserDTO, error)
	UpdateMe(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateMeRequest) (*dto.UserDTO, error)
	AdminUpdateUser(ctx context.Context, db *gorm.DB, id string, req *dto.AdminUpdateUserRequest) (*dto.UserDTO, error)
	DeleteUser(ctx context.Context, db *gorm.DB, id string) error
	ListUsers(ctx context.Context, db *gorm.DB, query *dto.UserListQuery, page, pageSize int) (*dto.UserListResponse, error)
}

type UserServiceImpl struct {
	userRepo repositories.UserRepository
}

func NewUserService(userRepo repositories.UserRepository) UserService {
	return &UserServiceImpl{userRepo: userRepo}
}

func (s *UserServiceImpl) GetUser(ctx context.Context, db *gorm.DB, id string) (*dto.UserDTO, error) {
	user, err := s.findUser(db, id)
	if err != nil {
		return nil, err
	}
	view := dto.NewUserDTO(user)
	return &view, nil
}

// UpdateMe handles the self-service profile route. Password updates are
// rejected here so they always pass through the dedicated flow that
// stamps password_changed_at.
func (s *UserServiceImpl) UpdateMe(ctx context.Context, db *gorm.DB, userID string, req *dto.UpdateMeRequest) (*dto.UserDTO, error) {
	if req.Password != "" {
		return nil, apperrors.NewBadRequestError("This route is not for password updates. Please use /changePassword")
	}

	user, err := s.findUser(db, userID)
	if err != nil {
		return nil, err
	}

	if req.UserName != "" {
		user.UserName = req.UserName
	}
	if req.Email != "" {
		user.Email = req.Email
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "profile updated", "user_id", userID)
	view := dto.NewUserDTO(user)
	return &view, nil
}

func (s *UserServiceImpl) AdminUpdateUser(ctx context.Context, db *gorm.DB, id string, req *dto.AdminUpdateUserRequest) (*dto.UserDTO, error) {
	user, err := s.findUser(db, id)
	if err != nil {
		return nil, err
	}

	if req.UserName != "" {
		user.UserName = req.UserName
	}
	if req.Email != "" {
		user.Email = req.Email
	}
	if req.Role != "" {
		if err := auth.ValidateRole(req.Role); err != nil {
			return nil, apperrors.NewBadRequestError("Unknown role")
		}
		user.Role = models.UserRole(req.Role)
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user updated by admin", "user_id", id)
	view := dto.NewUserDTO(user)
	return &view, nil
}

func (s *UserServiceImpl) DeleteUser(ctx context.Context, db *gorm.DB, id string) error {
	if err := s.userRepo.Delete(db, id); err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return apperrors.ErrNotFound(err, "User not found")
		}
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *UserServiceImpl) ListUsers(ctx context.Context, db *gorm.DB, query *dto.UserListQuery, page, pageSize int) (*dto.UserListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	users, total, err := s.userRepo.FindWithFilter(db, repositories.UserFilter{
		Role:     models.UserRole(query.Role),
		Search:   query.Search,
		SortBy:   query.Sort,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	views := make([]dto.UserDTO, 0, len(users))
	for i := range users {
		views = append(views, dto.NewUserDTO(&users[i]))
	}

	return &dto.UserListResponse{
		Users:    views,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

func (s *UserServiceImpl) findUser(db *gorm.DB, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err, "User not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return user, nil
}
