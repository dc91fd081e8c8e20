package repositories

import (
	"errors"
	"time"

	"cutordie_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrPurchaseNotFound = errors.New("purchase not found")
	// ErrStateConflict signals a conditional transition that matched no
	// row: the purchase is not in the expected state.
	ErrStateConflict = errors.New("purchase not in expected state")
)

type PurchaseRepository interface {
	FindByID(db *gorm.DB, id string) (*models.Purchase, error)
	FindByInvoiceID(db *gorm.DB, invoiceID string) (*models.Purchase, error)
	FindByUserAndCourse(db *gorm.DB, userID, courseID string) (*models.Purchase, error)
	FindByUser(db *gorm.DB, userID string) ([]models.Purchase, error)
	Create(db *gorm.DB, purchase *models.Purchase) error
	AttachInvoice(db *gorm.DB, purchaseID, invoiceID string) error
	MarkPaid(db *gorm.DB, invoiceID string, paidAt time.Time) error
	MarkEntitled(db *gorm.DB, purchaseID string, entitledAt time.Time) error
	RecordFailure(db *gorm.DB, purchaseID, reason string) error
	Delete(db *gorm.DB, id string) error
}

type PurchaseRepositoryImpl struct{}

func NewPurchaseRepository() PurchaseRepository {
	return &PurchaseRepositoryImpl{}
}

func (r *PurchaseRepositoryImpl) FindByID(db *gorm.DB, id string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := db.Preload("Course").Preload("User").First(&purchase, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepositoryImpl) FindByInvoiceID(db *gorm.DB, invoiceID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := db.Preload("Course").Preload("User").First(&purchase, "invoice_id = ?", invoiceID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepositoryImpl) FindByUserAndCourse(db *gorm.DB, userID, courseID string) (*models.Purchase, error) {
	var purchase models.Purchase
	err := db.First(&purchase, "user_id = ? AND course_id = ?", userID, courseID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPurchaseNotFound
		}
		return nil, err
	}
	return &purchase, nil
}

func (r *PurchaseRepositoryImpl) FindByUser(db *gorm.DB, userID string) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := db.Preload("Course").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&purchases).Error
	return purchases, err
}

func (r *PurchaseRepositoryImpl) Create(db *gorm.DB, purchase *models.Purchase) error {
	return db.Create(purchase).Error
}

func (r *PurchaseRepositoryImpl) AttachInvoice(db *gorm.DB, purchaseID, invoiceID string) error {
	result := db.Model(&models.Purchase{}).
		Where("id = ? AND state = ?", purchaseID, models.PurchaseStateRequested).
		Updates(map[string]interface{}{
			"invoice_id": invoiceID,
			"state":      models.PurchaseStateInvoiceCreated,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

// MarkPaid transitions invoice_created -> paid. The state guard in the
// WHERE clause is what makes concurrent webhook deliveries safe: only
// one of them can match the row.
func (r *PurchaseRepositoryImpl) MarkPaid(db *gorm.DB, invoiceID string, paidAt time.Time) error {
	result := db.Model(&models.Purchase{}).
		Where("invoice_id = ? AND state = ?", invoiceID, models.PurchaseStateInvoiceCreated).
		Updates(map[string]interface{}{
			"state":       models.PurchaseStatePaid,
			"paid_at":     paidAt,
			"fail_reason": "",
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

// MarkEntitled transitions paid -> entitled, same conditional pattern.
func (r *PurchaseRepositoryImpl) MarkEntitled(db *gorm.DB, purchaseID string, entitledAt time.Time) error {
	result := db.Model(&models.Purchase{}).
		Where("id = ? AND state = ?", purchaseID, models.PurchaseStatePaid).
		Updates(map[string]interface{}{
			"state":       models.PurchaseStateEntitled,
			"entitled_at": entitledAt,
			"fail_reason": "",
			"updated_at":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStateConflict
	}
	return nil
}

// RecordFailure keeps the current state and stores the reason for later
// reconciliation.
func (r *PurchaseRepositoryImpl) RecordFailure(db *gorm.DB, purchaseID, reason string) error {
	return db.Model(&models.Purchase{}).Where("id = ?", purchaseID).Updates(map[string]interface{}{
		"fail_reason": reason,
		"updated_at":  time.Now(),
	}).Error
}

func (r *PurchaseRepositoryImpl) Delete(db *gorm.DB, id string) error {
	result := db.Where("id = ?", id).Delete(&models.Purchase{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPurchaseNotFound
	}
	return nil
}
