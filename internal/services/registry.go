package services

import (
	"cutordie_backend/internal/email"
)

// ServiceContainer holds every application service.
type ServiceContainer struct {
	AuthService     AuthService
	UserService     UserService
	CourseService   CourseService
	PurchaseService PurchaseService
	EmailProvider   email.Provider
}
