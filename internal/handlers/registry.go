package handlers

// AppHandlers holds every HTTP handler group.
type AppHandlers struct {
	Auth     *AuthHandler
	User     *UserHandler
	Course   *CourseHandler
	Purchase *PurchaseHandler
}
