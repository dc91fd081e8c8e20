package repositories

import (
	"errors"
	"time"

	"cutordie_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrDuplicateUserName = errors.New("username already taken")
	ErrDuplicateEmail    = errors.New("email already taken")
)

type UserRepository interface {
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	FindByUserName(db *gorm.DB, userName string) (*models.User, error)
	Create(db *gorm.DB, user *models.User) error
	Update(db *gorm.DB, user *models.User) error
	UpdatePassword(db *gorm.DB, userID, passwordHash string, changedAt time.Time) error
	SetResetCode(db *gorm.DB, userID, codeHash string, expiresAt time.Time) error
	ClearResetCode(db *gorm.DB, userID string) error
	Delete(db *gorm.DB, userID string) error
	FindWithFilter(db *gorm.DB, criteria UserFilter) ([]models.User, int64, error)
}

type UserFilter struct {
	Role     models.UserRole
	Search   string
	SortBy   string
	Page     int
	PageSize int
}

type UserRepositoryImpl struct{}

func NewUserRepository() UserRepository {
	return &UserRepositoryImpl{}
}

// dupPrecheck folds a duplicate-lookup result into its outcome: a hit
// is the duplicate error, a miss is fine, anything else is a database
// failure that must not masquerade as a duplicate.
func dupPrecheck(lookupErr, dup error) error {
	switch {
	case lookupErr == nil:
		return dup
	case errors.Is(lookupErr, gorm.ErrRecordNotFound):
		return nil
	default:
		return lookupErr
	}
}

func (r *UserRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	err := db.Preload("Purchases").First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.Preload("Purchases").First(&user, "email = ?", email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) FindByUserName(db *gorm.DB, userName string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "user_name = ?", userName).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *UserRepositoryImpl) Create(db *gorm.DB, user *models.User) error {
	// Field-specific duplicate checks so the client learns which field
	// collided, same shape as the original duplicate-key translation.
	var existing models.User
	lookup := db.Where("email = ?", user.Email).First(&existing).Error
	if err := dupPrecheck(lookup, ErrDuplicateEmail); err != nil {
		return err
	}
	lookup = db.Where("user_name = ?", user.UserName).First(&existing).Error
	if err := dupPrecheck(lookup, ErrDuplicateUserName); err != nil {
		return err
	}

	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *UserRepositoryImpl) Update(db *gorm.DB, user *models.User) error {
	result := db.Model(user).Updates(map[string]interface{}{
		"user_name":  user.UserName,
		"email":      user.Email,
		"role":       user.Role,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword sets a new hash, stamps password_changed_at and clears
// any pending reset code in one statement.
func (r *UserRepositoryImpl) UpdatePassword(db *gorm.DB, userID, passwordHash string, changedAt time.Time) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"password_hash":         passwordHash,
		"password_changed_at":   changedAt,
		"reset_code_hash":       "",
		"reset_code_expires_at": nil,
		"updated_at":            time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) SetResetCode(db *gorm.DB, userID, codeHash string, expiresAt time.Time) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"reset_code_hash":       codeHash,
		"reset_code_expires_at": expiresAt,
		"updated_at":            time.Now(),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *UserRepositoryImpl) ClearResetCode(db *gorm.DB, userID string) error {
	return db.Model(&models.User{}).Where("id = ?", userID).Updates(map[string]interface{}{
		"reset_code_hash":       "",
		"reset_code_expires_at": nil,
	}).Error
}

func (r *UserRepositoryImpl) Delete(db *gorm.DB, userID string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&models.Purchase{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", userID).Delete(&models.User{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
}

func (r *UserRepositoryImpl) FindWithFilter(db *gorm.DB, criteria UserFilter) ([]models.User, int64, error) {
	var users []models.User
	query := db.Model(&models.User{})

	if criteria.Role != "" {
		query = query.Where("role = ?", criteria.Role)
	}
	if criteria.Search != "" {
		search := "%" + criteria.Search + "%"
		query = query.Where("email ILIKE ? OR user_name ILIKE ?", search, search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	sortBy := criteria.SortBy
	switch sortBy {
	case "user_name", "email", "created_at":
	default:
		sortBy = "created_at"
	}

	limit := criteria.PageSize
	offset := (criteria.Page - 1) * criteria.PageSize

	err := query.Preload("Purchases").
		Order(sortBy + " DESC").Limit(limit).Offset(offset).Find(&users).Error

	return users, total, err
}
