package models

import "time"

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
	UserRoleDev   UserRole = "dev"
)

type User struct {
	BaseModel
	UserName     string   `gorm:"uniqueIndex;not null" json:"userName"`
	Email        string   `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string   `gorm:"not null" json:"-"`
	Role         UserRole `gorm:"type:varchar(20);not null;default:'user'" json:"role"`

	// Stamped on every password change; session tokens issued before
	// this moment are rejected.
	PasswordChangedAt *time.Time `json:"-"`

	// Password reset: only the bcrypt hash of the emailed code is kept.
	ResetCodeHash      string     `json:"-"`
	ResetCodeExpiresAt *time.Time `json:"-"`

	Purchases []Purchase `gorm:"foreignKey:UserID" json:"purchases,omitempty"`
}

// PurchasedCourseIDs lists the courses the user is entitled to or has
// paid for.
func (u *User) PurchasedCourseIDs() []string {
	var ids []string
	for _, p := range u.Purchases {
		if p.State == PurchaseStatePaid || p.State == PurchaseStateEntitled {
			ids = append(ids, p.CourseID)
		}
	}
	return ids
}

// ChangedPasswordAfter reports whether the password was changed after
// the given token issue time.
func (u *User) ChangedPasswordAfter(issuedAt time.Time) bool {
	if u.PasswordChangedAt == nil {
		return false
	}
	return u.PasswordChangedAt.After(issuedAt)
}
