package models

import "time"

// PurchaseState is the explicit lifecycle of one purchase attempt.
// Transitions happen only through conditional updates in the purchase
// repository, never by inferring state from field presence.
type PurchaseState string

const (
	PurchaseStateRequested      PurchaseState = "requested"
	PurchaseStateInvoiceCreated PurchaseState = "invoice_created"
	PurchaseStatePaid           PurchaseState = "paid"
	PurchaseStateEntitled       PurchaseState = "entitled"
	PurchaseStateFailed         PurchaseState = "failed"
)

// Purchase correlates one (user, course) pair with a provider invoice.
type Purchase struct {
	BaseModel
	UserID   string `gorm:"not null;index;uniqueIndex:idx_purchases_user_course" json:"userId"`
	CourseID string `gorm:"not null;uniqueIndex:idx_purchases_user_course" json:"courseId"`

	InvoiceID string        `gorm:"uniqueIndex" json:"invoiceId"`
	State     PurchaseState `gorm:"type:varchar(20);not null;default:'requested'" json:"state"`

	// FailReason records the last upstream failure (e.g. an entitlement
	// grant that needs reconciliation) without losing the paid state.
	FailReason string     `json:"failReason,omitempty"`
	PaidAt     *time.Time `json:"paidAt,omitempty"`
	EntitledAt *time.Time `json:"entitledAt,omitempty"`

	User   *User   `gorm:"foreignKey:UserID" json:"-"`
	Course *Course `gorm:"foreignKey:CourseID" json:"-"`
}

// Completed reports whether payment has been confirmed.
func (p *Purchase) Completed() bool {
	return p.State == PurchaseStatePaid || p.State == PurchaseStateEntitled
}
