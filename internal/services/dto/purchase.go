package dto

import (
	"time"

	"cutordie_backend/internal/models"
)

// BuyCourseRequest - starts a purchase. Currency selects which of the
// course's listed prices is invoiced.
type BuyCourseRequest struct {
	Currency string `json:"currency" validate:"required,is-currency"`
}

// InvoiceResponse - answer to a purchase start; the client redirects
// the buyer to PageURL.
type InvoiceResponse struct {
	InvoiceID string `json:"invoiceId"`
	PageURL   string `json:"pageUrl"`
}

// PurchaseDTO - purchase record as shown to its owner or an admin.
type PurchaseDTO struct {
	ID         string               `json:"id"`
	CourseID   string               `json:"courseId"`
	InvoiceID  string               `json:"invoiceId,omitempty"`
	State      models.PurchaseState `json:"state"`
	FailReason string               `json:"failReason,omitempty"`
	PaidAt     *time.Time           `json:"paidAt,omitempty"`
	EntitledAt *time.Time           `json:"entitledAt,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
}

// NewPurchaseDTO maps a model to its public view.
func NewPurchaseDTO(p *models.Purchase) PurchaseDTO {
	return PurchaseDTO{
		ID:         p.ID,
		CourseID:   p.CourseID,
		InvoiceID:  p.InvoiceID,
		State:      p.State,
		FailReason: p.FailReason,
		PaidAt:     p.PaidAt,
		EntitledAt: p.EntitledAt,
		CreatedAt:  p.CreatedAt,
	}
}
