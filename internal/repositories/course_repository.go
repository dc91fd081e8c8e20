package repositories

import (
	"errors"

	"cutordie_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrDuplicateCourseName = errors.New("course name already exists")
)

type CourseRepository interface {
	FindByID(db *gorm.DB, id string) (*models.Course, error)
	Create(db *gorm.DB, course *models.Course) error
	Update(db *gorm.DB, id string, updates map[string]interface{}) (*models.Course, error)
	Delete(db *gorm.DB, id string) error
	FindWithFilter(db *gorm.DB, criteria CourseFilter) ([]models.Course, int64, error)
}

// CourseFilter mirrors the caller-supplied query features: range
// filters, sort key, selected fields and pagination.
type CourseFilter struct {
	DifficultyMin *int
	DifficultyMax *int
	DurationMin   *int
	DurationMax   *int
	PriceUAHMax   *int64
	SortBy        string // difficulty | duration | price_uah | created_at
	SortDesc      bool
	Fields        []string
	Page          int
	PageSize      int
}

type CourseRepositoryImpl struct{}

func NewCourseRepository() CourseRepository {
	return &CourseRepositoryImpl{}
}

func (r *CourseRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Course, error) {
	var course models.Course
	err := db.First(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return &course, nil
}

func (r *CourseRepositoryImpl) Create(db *gorm.DB, course *models.Course) error {
	// Localized names are unique in both locales; the unique indexes on
	// en_name and ua_name back this up against concurrent creates.
	var existing models.Course
	lookup := db.Where("en_name = ? OR ua_name = ?", course.En.Name, course.Ua.Name).
		First(&existing).Error
	if err := dupPrecheck(lookup, ErrDuplicateCourseName); err != nil {
		return err
	}

	if err := db.Create(course).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateCourseName
		}
		return err
	}
	return nil
}

func (r *CourseRepositoryImpl) Update(db *gorm.DB, id string, updates map[string]interface{}) (*models.Course, error) {
	result := db.Model(&models.Course{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrCourseNotFound
	}
	return r.FindByID(db, id)
}

func (r *CourseRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Course{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// allowed sort and select columns; anything else falls back to defaults
// rather than reaching the SQL layer.
var courseSortColumns = map[string]string{
	"difficulty": "difficulty",
	"duration":   "duration",
	"price_uah":  "price_uah",
	"created_at": "created_at",
}

var courseSelectColumns = map[string]string{
	"en":         "en_name, en_description",
	"ua":         "ua_name, ua_description",
	"price":      "price_usd, price_uah, price_eur",
	"duration":   "duration",
	"difficulty": "difficulty",
	"fileId":     "file_id",
	"coverImage": "cover_image",
}

func (r *CourseRepositoryImpl) FindWithFilter(db *gorm.DB, criteria CourseFilter) ([]models.Course, int64, error) {
	var courses []models.Course
	query := db.Model(&models.Course{})

	if criteria.DifficultyMin != nil {
		query = query.Where("difficulty >= ?", *criteria.DifficultyMin)
	}
	if criteria.DifficultyMax != nil {
		query = query.Where("difficulty <= ?", *criteria.DifficultyMax)
	}
	if criteria.DurationMin != nil {
		query = query.Where("duration >= ?", *criteria.DurationMin)
	}
	if criteria.DurationMax != nil {
		query = query.Where("duration <= ?", *criteria.DurationMax)
	}
	if criteria.PriceUAHMax != nil {
		query = query.Where("price_uah <= ?", *criteria.PriceUAHMax)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if len(criteria.Fields) > 0 {
		selected := []string{"id", "created_at", "updated_at"}
		for _, f := range criteria.Fields {
			if cols, ok := courseSelectColumns[f]; ok {
				selected = append(selected, cols)
			}
		}
		query = query.Select(selected)
	}

	sortCol, ok := courseSortColumns[criteria.SortBy]
	if !ok {
		sortCol = "created_at"
	}
	order := sortCol
	if criteria.SortDesc {
		order += " DESC"
	}

	limit := criteria.PageSize
	offset := (criteria.Page - 1) * criteria.PageSize

	err := query.Order(order).Limit(limit).Offset(offset).Find(&courses).Error
	return courses, total, err
}
