package services

import (
	"context"
	"fmt"
	"time"

	"cutordie_backend/internal/drive"
	"cutordie_backend/internal/googleauth"
	"cutordie_backend/internal/models"
	"cutordie_backend/internal/payment"
	"cutordie_backend/internal/repositories"

	"gorm.io/gorm"
)

// In-memory repository fakes. They ignore the db handle, which the
// tests pass as nil.

type fakeUserRepo struct {
	users  map[string]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}}
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) FindByEmail(_ *gorm.DB, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) FindByUserName(_ *gorm.DB, userName string) (*models.User, error) {
	for _, u := range r.users {
		if u.UserName == userName {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) Create(_ *gorm.DB, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrDuplicateEmail
		}
		if u.UserName == user.UserName {
			return repositories.ErrDuplicateUserName
		}
	}
	r.nextID++
	user.ID = fmt.Sprintf("user-%d", r.nextID)
	user.CreatedAt = time.Now()
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ *gorm.DB, user *models.User) error {
	stored, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	stored.UserName = user.UserName
	stored.Email = user.Email
	stored.Role = user.Role
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ *gorm.DB, userID, passwordHash string, changedAt time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	u.PasswordChangedAt = &changedAt
	u.ResetCodeHash = ""
	u.ResetCodeExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) SetResetCode(_ *gorm.DB, userID, codeHash string, expiresAt time.Time) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.ResetCodeHash = codeHash
	u.ResetCodeExpiresAt = &expiresAt
	return nil
}

func (r *fakeUserRepo) ClearResetCode(_ *gorm.DB, userID string) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.ResetCodeHash = ""
	u.ResetCodeExpiresAt = nil
	return nil
}

func (r *fakeUserRepo) Delete(_ *gorm.DB, userID string) error {
	if _, ok := r.users[userID]; !ok {
		return repositories.ErrUserNotFound
	}
	delete(r.users, userID)
	return nil
}

func (r *fakeUserRepo) FindWithFilter(_ *gorm.DB, criteria repositories.UserFilter) ([]models.User, int64, error) {
	var out []models.User
	for _, u := range r.users {
		if criteria.Role != "" && u.Role != criteria.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

type fakeCourseRepo struct {
	courses map[string]*models.Course
	nextID  int
}

func newFakeCourseRepo() *fakeCourseRepo {
	return &fakeCourseRepo{courses: map[string]*models.Course{}}
}

func (r *fakeCourseRepo) FindByID(_ *gorm.DB, id string) (*models.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, repositories.ErrCourseNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCourseRepo) Create(_ *gorm.DB, course *models.Course) error {
	for _, c := range r.courses {
		if c.En.Name == course.En.Name || c.Ua.Name == course.Ua.Name {
			return repositories.ErrDuplicateCourseName
		}
	}
	r.nextID++
	course.ID = fmt.Sprintf("course-%d", r.nextID)
	course.CreatedAt = time.Now()
	copied := *course
	r.courses[course.ID] = &copied
	return nil
}

func (r *fakeCourseRepo) Update(_ *gorm.DB, id string, updates map[string]interface{}) (*models.Course, error) {
	c, ok := r.courses[id]
	if !ok {
		return nil, repositories.ErrCourseNotFound
	}
	if v, ok := updates["en_name"]; ok {
		c.En.Name = v.(string)
	}
	if v, ok := updates["price_uah"]; ok {
		c.PriceUAH = v.(int64)
	}
	if v, ok := updates["file_id"]; ok {
		c.FileID = v.(string)
	}
	copied := *c
	return &copied, nil
}

func (r *fakeCourseRepo) Delete(_ *gorm.DB, id string) error {
	if _, ok := r.courses[id]; !ok {
		return repositories.ErrCourseNotFound
	}
	delete(r.courses, id)
	return nil
}

func (r *fakeCourseRepo) FindWithFilter(_ *gorm.DB, criteria repositories.CourseFilter) ([]models.Course, int64, error) {
	var out []models.Course
	for _, c := range r.courses {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

type fakePurchaseRepo struct {
	purchases map[string]*models.Purchase
	users     *fakeUserRepo
	courses   *fakeCourseRepo
	nextID    int
}

func newFakePurchaseRepo(users *fakeUserRepo, courses *fakeCourseRepo) *fakePurchaseRepo {
	return &fakePurchaseRepo{
		purchases: map[string]*models.Purchase{},
		users:     users,
		courses:   courses,
	}
}

// withRelations mirrors the gorm Preload the real repository does.
func (r *fakePurchaseRepo) withRelations(p *models.Purchase) *models.Purchase {
	copied := *p
	if r.users != nil {
		if u, err := r.users.FindByID(nil, p.UserID); err == nil {
			copied.User = u
		}
	}
	if r.courses != nil {
		if c, err := r.courses.FindByID(nil, p.CourseID); err == nil {
			copied.Course = c
		}
	}
	return &copied
}

func (r *fakePurchaseRepo) FindByID(_ *gorm.DB, id string) (*models.Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return nil, repositories.ErrPurchaseNotFound
	}
	return r.withRelations(p), nil
}

func (r *fakePurchaseRepo) FindByInvoiceID(_ *gorm.DB, invoiceID string) (*models.Purchase, error) {
	for _, p := range r.purchases {
		if p.InvoiceID == invoiceID {
			return r.withRelations(p), nil
		}
	}
	return nil, repositories.ErrPurchaseNotFound
}

func (r *fakePurchaseRepo) FindByUserAndCourse(_ *gorm.DB, userID, courseID string) (*models.Purchase, error) {
	for _, p := range r.purchases {
		if p.UserID == userID && p.CourseID == courseID {
			return r.withRelations(p), nil
		}
	}
	return nil, repositories.ErrPurchaseNotFound
}

func (r *fakePurchaseRepo) FindByUser(_ *gorm.DB, userID string) ([]models.Purchase, error) {
	var out []models.Purchase
	for _, p := range r.purchases {
		if p.UserID == userID {
			out = append(out, *r.withRelations(p))
		}
	}
	return out, nil
}

func (r *fakePurchaseRepo) Create(_ *gorm.DB, purchase *models.Purchase) error {
	r.nextID++
	purchase.ID = fmt.Sprintf("purchase-%d", r.nextID)
	purchase.CreatedAt = time.Now()
	if purchase.State == "" {
		purchase.State = models.PurchaseStateRequested
	}
	copied := *purchase
	r.purchases[purchase.ID] = &copied
	return nil
}

func (r *fakePurchaseRepo) AttachInvoice(_ *gorm.DB, purchaseID, invoiceID string) error {
	p, ok := r.purchases[purchaseID]
	if !ok || p.State != models.PurchaseStateRequested {
		return repositories.ErrStateConflict
	}
	p.InvoiceID = invoiceID
	p.State = models.PurchaseStateInvoiceCreated
	return nil
}

func (r *fakePurchaseRepo) MarkPaid(_ *gorm.DB, invoiceID string, paidAt time.Time) error {
	for _, p := range r.purchases {
		if p.InvoiceID == invoiceID && p.State == models.PurchaseStateInvoiceCreated {
			p.State = models.PurchaseStatePaid
			p.PaidAt = &paidAt
			p.FailReason = ""
			return nil
		}
	}
	return repositories.ErrStateConflict
}

func (r *fakePurchaseRepo) MarkEntitled(_ *gorm.DB, purchaseID string, entitledAt time.Time) error {
	p, ok := r.purchases[purchaseID]
	if !ok || p.State != models.PurchaseStatePaid {
		return repositories.ErrStateConflict
	}
	p.State = models.PurchaseStateEntitled
	p.EntitledAt = &entitledAt
	p.FailReason = ""
	return nil
}

func (r *fakePurchaseRepo) RecordFailure(_ *gorm.DB, purchaseID, reason string) error {
	p, ok := r.purchases[purchaseID]
	if !ok {
		return repositories.ErrPurchaseNotFound
	}
	p.FailReason = reason
	return nil
}

func (r *fakePurchaseRepo) Delete(_ *gorm.DB, id string) error {
	if _, ok := r.purchases[id]; !ok {
		return repositories.ErrPurchaseNotFound
	}
	delete(r.purchases, id)
	return nil
}

// External collaborator fakes.

type fakePaymentClient struct {
	createCalls int
	statusCalls int
	createErr   error
	status      *payment.InvoiceStatus
	statusErr   error
	lastRequest *payment.InvoiceRequest
}

func (c *fakePaymentClient) CreateInvoice(_ context.Context, req *payment.InvoiceRequest) (*payment.Invoice, error) {
	c.createCalls++
	c.lastRequest = req
	if c.createErr != nil {
		return nil, c.createErr
	}
	return &payment.Invoice{
		InvoiceID: fmt.Sprintf("inv-%d", c.createCalls),
		PageURL:   fmt.Sprintf("https://pay.example.com/inv-%d", c.createCalls),
	}, nil
}

func (c *fakePaymentClient) GetInvoiceStatus(_ context.Context, invoiceID string) (*payment.InvoiceStatus, error) {
	c.statusCalls++
	if c.statusErr != nil {
		return nil, c.statusErr
	}
	if c.status != nil {
		return c.status, nil
	}
	return &payment.InvoiceStatus{InvoiceID: invoiceID, Status: "processing"}, nil
}

type fakeDriveGateway struct {
	grantCalls int
	grantErr   error
	lastFileID string
	lastEmail  string
}

func (g *fakeDriveGateway) GrantReader(_ context.Context, fileID, email string) error {
	g.grantCalls++
	g.lastFileID = fileID
	g.lastEmail = email
	return g.grantErr
}

type fakeGoogleVerifier struct {
	info       *googleauth.UserInfo
	fetchErr   error
	fetchCalls int
}

func (v *fakeGoogleVerifier) FetchUserInfo(_ context.Context, _ string) (*googleauth.UserInfo, error) {
	v.fetchCalls++
	if v.fetchErr != nil {
		return nil, v.fetchErr
	}
	return v.info, nil
}

type fakeEmailProvider struct {
	sentTo    []string
	lastCode  string
	sendError error
}

func (p *fakeEmailProvider) Send(to, subject, body string) error {
	if p.sendError != nil {
		return p.sendError
	}
	p.sentTo = append(p.sentTo, to)
	return nil
}

func (p *fakeEmailProvider) SendResetCode(to, code string) error {
	if p.sendError != nil {
		return p.sendError
	}
	p.sentTo = append(p.sentTo, to)
	p.lastCode = code
	return nil
}

// External collaborator interface conformance.
var (
	_ payment.Client      = (*fakePaymentClient)(nil)
	_ drive.Gateway       = (*fakeDriveGateway)(nil)
	_ googleauth.Verifier = (*fakeGoogleVerifier)(nil)
)
