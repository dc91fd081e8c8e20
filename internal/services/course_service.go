package services

import (
	"context"
	"strings"

	"cutordie_backend/internal/logger"
	"cutordie_backend/internal/models"
	"cutordie_backend/internal/repositories"
	"cutordie_backend/internal/services/dto"
	"cutordie_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const defaultPageSize = 20

type CourseService interface {
	GetCourse(ctx context.Context, db *gorm.DB, id string) (*models.Course, error)
	ListCourses(ctx context.Context, db *gorm.DB, query *dto.CourseListQuery) (*dto.CourseListResponse, error)
	CreateCourse(ctx context.Context, db *gorm.DB, req *dto.CreateCourseRequest) (*models.Course, error)
	UpdateCourse(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateCourseRequest) (*models.Course, error)
	DeleteCourse(ctx context.Context, db *gorm.DB, id string) error
}

type CourseServiceImpl struct {
	courseRepo repositories.CourseRepository
}

func NewCourseService(courseRepo repositories.CourseRepository) CourseService {
	return &CourseServiceImpl{courseRepo: courseRepo}
}

func (s *CourseServiceImpl) GetCourse(ctx context.Context, db *gorm.DB, id string) (*models.Course, error) {
	course, err := s.courseRepo.FindByID(db, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrNotFound(err, "Course not found")
		}
		return nil, apperrors.InternalError(err)
	}
	return course, nil
}

func (s *CourseServiceImpl) ListCourses(ctx context.Context, db *gorm.DB, query *dto.CourseListQuery) (*dto.CourseListResponse, error) {
	criteria := repositories.CourseFilter{
		DifficultyMin: query.DifficultyMin,
		DifficultyMax: query.DifficultyMax,
		DurationMin:   query.DurationMin,
		DurationMax:   query.DurationMax,
		PriceUAHMax:   query.PriceUAHMax,
		Page:          query.Page,
		PageSize:      query.PageSize,
	}
	if criteria.Page < 1 {
		criteria.Page = 1
	}
	if criteria.PageSize < 1 {
		criteria.PageSize = defaultPageSize
	}

	// "-duration" sorts descending, mongo-query style kept from the old API.
	sort := query.Sort
	if strings.HasPrefix(sort, "-") {
		criteria.SortDesc = true
		sort = sort[1:]
	}
	criteria.SortBy = sort

	if query.Fields != "" {
		criteria.Fields = strings.Split(query.Fields, ",")
	}

	courses, total, err := s.courseRepo.FindWithFilter(db, criteria)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if courses == nil {
		courses = []models.Course{}
	}

	return &dto.CourseListResponse{
		Courses:  courses,
		Total:    total,
		Page:     criteria.Page,
		PageSize: criteria.PageSize,
	}, nil
}

func (s *CourseServiceImpl) CreateCourse(ctx context.Context, db *gorm.DB, req *dto.CreateCourseRequest) (*models.Course, error) {
	course := &models.Course{
		En:         models.LocalizedText{Name: req.En.Name, Description: req.En.Description},
		Ua:         models.LocalizedText{Name: req.Ua.Name, Description: req.Ua.Description},
		PriceUSD:   req.PriceUSD,
		PriceUAH:   req.PriceUAH,
		PriceEUR:   req.PriceEUR,
		Duration:   req.Duration,
		Difficulty: req.Difficulty,
		FileID:     req.FileID,
		CoverImage: req.CoverImage,
	}

	if err := s.courseRepo.Create(db, course); err != nil {
		if apperrors.Is(err, repositories.ErrDuplicateCourseName) {
			return nil, apperrors.ErrAlreadyExists(err, "Course with this name already exists")
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "course created", "course_id", course.ID)
	return course, nil
}

func (s *CourseServiceImpl) UpdateCourse(ctx context.Context, db *gorm.DB, id string, req *dto.UpdateCourseRequest) (*models.Course, error) {
	updates := map[string]interface{}{}
	if req.En != nil {
		updates["en_name"] = req.En.Name
		updates["en_description"] = req.En.Description
	}
	if req.Ua != nil {
		updates["ua_name"] = req.Ua.Name
		updates["ua_description"] = req.Ua.Description
	}
	if req.PriceUSD != nil {
		updates["price_usd"] = *req.PriceUSD
	}
	if req.PriceUAH != nil {
		updates["price_uah"] = *req.PriceUAH
	}
	if req.PriceEUR != nil {
		updates["price_eur"] = *req.PriceEUR
	}
	if req.Duration != nil {
		updates["duration"] = *req.Duration
	}
	if req.Difficulty != nil {
		updates["difficulty"] = *req.Difficulty
	}
	if req.FileID != nil {
		updates["file_id"] = *req.FileID
	}
	if req.CoverImage != nil {
		updates["cover_image"] = *req.CoverImage
	}
	if len(updates) == 0 {
		return nil, apperrors.NewBadRequestError("Nothing to update")
	}

	course, err := s.courseRepo.Update(db, id, updates)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrNotFound(err, "Course not found")
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "course updated", "course_id", id)
	return course, nil
}

func (s *CourseServiceImpl) DeleteCourse(ctx context.Context, db *gorm.DB, id string) error {
	if err := s.courseRepo.Delete(db, id); err != nil {
		if apperrors.Is(err, repositories.ErrCourseNotFound) {
			return apperrors.ErrNotFound(err, "Course not found")
		}
		return apperrors.InternalError(err)
	}
	logger.CtxInfo(ctx, "course deleted", "course_id", id)
	return nil
}
