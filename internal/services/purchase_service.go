package services

import (
	"context"
	"time"

	"cutordie_backend/internal/drive"
	"cutordie_backend/internal/logger"
	"cutordie_backend/internal/models"
	"cutordie_backend/internal/payment"
	"cutordie_backend/internal/repositories"
	"cutordie_backend/internal/services/dto"
	"cutordie_backend/pkg/apperrors"

	"github.com/sethvargo/go-retry"
	"gorm.io/gorm"
)

// PaymentSettings carries the invoice parameters that come from
// configuration rather than from the request.
type PaymentSettings struct {
	RedirectURL string
	WebhookURL  string
	ValiditySec int
}

type PurchaseService interface {
	BuyCourse(ctx context.Context, db *gorm.DB, userID, courseID, currency string) (*dto.InvoiceResponse, error)
	HandleWebhook(ctx context.Context, db *gorm.DB, status *payment.InvoiceStatus) error
	CheckPayment(ctx context.Context, db *gorm.DB, userID, courseID string) (*dto.PurchaseDTO, error)
	GrantEntitlement(ctx context.Context, db *gorm.DB, purchaseID string) (*dto.PurchaseDTO, error)
	ListUserPurchases(ctx context.Context, db *gorm.DB, userID string) ([]dto.PurchaseDTO, error)
}

type PurchaseServiceImpl struct {
	purchaseRepo repositories.PurchaseRepository
	userRepo     repositories.UserRepository
	courseRepo   repositories.CourseRepository
	payments     payment.Client
	entitlements drive.Gateway
	settings     PaymentSettings
}

func NewPurchaseService(
	purchaseRepo repositories.PurchaseRepository,
	userRepo repositories.UserRepository,
	courseRepo repositories.CourseRepository,
	payments payment.Client,
	entitlements drive.Gateway,
	settings PaymentSettings,
) PurchaseService {
	return &PurchaseServiceImpl{
		purchaseRepo: purchaseRepo,
		userRepo:     userRepo,
		courseRepo:   courseRepo,
		payments:     payments,
		entitlements: entitlements,
		settings:     settings,
	}
}

// BuyCourse starts a purchase: it records the attempt, asks the
// provider for an invoice and hands the payment page back. Local
// lookups fail before any provider call is made.
func (s *PurchaseServiceImpl) BuyCourse(ctx context.Context, db *gorm.DB, userID, courseID, currency string) (*dto.InvoiceResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err, "User not found")
		}
		return nil, apperrors.InternalError(err)
	}

	course, err := s.courseRepo.FindByID(db, courseID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrCourseNotFound) {
			return nil, apperrors.ErrNotFound(err, "Course not found")
		}
		return nil, apperrors.InternalError(err)
	}

	amount, ok := course.PriceIn(currency)
	if !ok {
		return nil, apperrors.NewBadRequestError("Unsupported currency")
	}
	ccy, ok := payment.CurrencyCode(currency)
	if !ok {
		return nil, apperrors.NewBadRequestError("Unsupported currency")
	}

	// A finished purchase blocks a re-buy. An unfinished attempt (stale
	// invoice, earlier failure) is discarded and started over.
	existing, err := s.purchaseRepo.FindByUserAndCourse(db, userID, courseID)
	if err != nil && !apperrors.Is(err, repositories.ErrPurchaseNotFound) {
		return nil, apperrors.InternalError(err)
	}
	if existing != nil {
		if existing.Completed() {
			return nil, apperrors.ErrCourseAlreadyPurchased
		}
		if err := s.purchaseRepo.Delete(db, existing.ID); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}

	purchase := &models.Purchase{
		UserID:   userID,
		CourseID: courseID,
		State:    models.PurchaseStateRequested,
	}
	if err := s.purchaseRepo.Create(db, purchase); err != nil {
		return nil, apperrors.InternalError(err)
	}

	invoice, err := s.payments.CreateInvoice(ctx, &payment.InvoiceRequest{
		Amount: amount,
		Ccy:    ccy,
		MerchantPaymInfo: payment.MerchantInfo{
			Reference:   purchase.ID,
			Destination: course.En.Name,
		},
		RedirectURL: s.settings.RedirectURL,
		WebHookURL:  s.settings.WebhookURL,
		Validity:    s.settings.ValiditySec,
	})
	if err != nil {
		if recErr := s.purchaseRepo.RecordFailure(db, purchase.ID, err.Error()); recErr != nil {
			logger.CtxError(ctx, "failed to record invoice failure", "error", recErr)
		}
		logger.CtxError(ctx, "invoice creation failed", "purchase_id", purchase.ID, "error", err)
		return nil, apperrors.ErrUpstream(err, "payment", "Payment provider error")
	}

	if err := s.purchaseRepo.AttachInvoice(db, purchase.ID, invoice.InvoiceID); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "invoice created",
		"purchase_id", purchase.ID,
		"invoice_id", invoice.InvoiceID,
		"user_id", user.ID,
		"amount", amount,
		"ccy", ccy,
	)
	return &dto.InvoiceResponse{
		InvoiceID: invoice.InvoiceID,
		PageURL:   invoice.PageURL,
	}, nil
}

// HandleWebhook processes a provider callback. Deliveries are at least
// once, so the whole path is idempotent: a repeated success callback
// for an already-paid invoice is acknowledged without side effects.
func (s *PurchaseServiceImpl) HandleWebhook(ctx context.Context, db *gorm.DB, status *payment.InvoiceStatus) error {
	if status.InvoiceID == "" {
		return apperrors.NewBadRequestError("Missing invoiceId")
	}

	purchase, err := s.purchaseRepo.FindByInvoiceID(db, status.InvoiceID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPurchaseNotFound) {
			return apperrors.ErrNotFound(err, "Unknown invoice")
		}
		return apperrors.InternalError(err)
	}

	if status.Status != payment.StatusSuccess {
		logger.CtxInfo(ctx, "webhook with non-final status",
			"invoice_id", status.InvoiceID, "status", status.Status)
		return apperrors.ErrPaymentIncomplete
	}

	return s.confirmPayment(ctx, db, purchase)
}

// confirmPayment performs the paid transition and then the entitlement
// grant. The conditional update decides who wins a concurrent delivery;
// the loser sees the state conflict and treats it as already done.
func (s *PurchaseServiceImpl) confirmPayment(ctx context.Context, db *gorm.DB, purchase *models.Purchase) error {
	err := s.purchaseRepo.MarkPaid(db, purchase.InvoiceID, time.Now())
	if err != nil {
		if apperrors.Is(err, repositories.ErrStateConflict) {
			if purchase.Completed() {
				logger.CtxInfo(ctx, "duplicate payment confirmation ignored",
					"purchase_id", purchase.ID, "state", purchase.State)
				return nil
			}
			// The row moved under us between the read and the update.
			current, findErr := s.purchaseRepo.FindByID(db, purchase.ID)
			if findErr == nil && current.Completed() {
				return nil
			}
			return apperrors.InternalError(err)
		}
		return apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "payment confirmed", "purchase_id", purchase.ID, "invoice_id", purchase.InvoiceID)

	// Entitlement failure does not undo the paid state. The reason is
	// recorded and an admin can re-run the grant later.
	if err := s.grantAndMark(ctx, db, purchase); err != nil {
		logger.CtxError(ctx, "entitlement grant failed after payment",
			"purchase_id", purchase.ID, "error", err)
		if recErr := s.purchaseRepo.RecordFailure(db, purchase.ID, err.Error()); recErr != nil {
			logger.CtxError(ctx, "failed to record entitlement failure", "error", recErr)
		}
	}
	return nil
}

// grantAndMark runs the drive grant with a few bounded retries. The
// provider call is idempotent, so retrying a timeout is safe.
func (s *PurchaseServiceImpl) grantAndMark(ctx context.Context, db *gorm.DB, purchase *models.Purchase) error {
	user := purchase.User
	course := purchase.Course
	if user == nil || course == nil {
		loaded, err := s.purchaseRepo.FindByID(db, purchase.ID)
		if err != nil {
			return err
		}
		user, course = loaded.User, loaded.Course
	}

	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := s.entitlements.GrantReader(ctx, course.FileID, user.Email); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.purchaseRepo.MarkEntitled(db, purchase.ID, time.Now()); err != nil {
		if apperrors.Is(err, repositories.ErrStateConflict) {
			return nil
		}
		return err
	}
	logger.CtxInfo(ctx, "entitlement granted", "purchase_id", purchase.ID, "file_id", course.FileID)
	return nil
}

// CheckPayment lets the client poll after returning from the payment
// page. If the webhook has not arrived yet, the provider is asked
// directly and a successful answer completes the purchase the same way
// the webhook would.
func (s *PurchaseServiceImpl) CheckPayment(ctx context.Context, db *gorm.DB, userID, courseID string) (*dto.PurchaseDTO, error) {
	purchase, err := s.purchaseRepo.FindByUserAndCourse(db, userID, courseID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPurchaseNotFound) {
			return nil, apperrors.ErrNotFound(err, "Purchase not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if !purchase.Completed() {
		if purchase.InvoiceID == "" {
			return nil, apperrors.ErrPaymentIncomplete
		}
		// Status queries are idempotent, so transient failures are retried.
		var status *payment.InvoiceStatus
		backoff := retry.WithMaxRetries(2, retry.NewExponential(300*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			var queryErr error
			status, queryErr = s.payments.GetInvoiceStatus(ctx, purchase.InvoiceID)
			if queryErr != nil {
				return retry.RetryableError(queryErr)
			}
			return nil
		})
		if err != nil {
			return nil, apperrors.ErrUpstream(err, "payment", "Payment provider error")
		}
		if status.Status != payment.StatusSuccess {
			return nil, apperrors.ErrPaymentIncomplete
		}
		if err := s.confirmPayment(ctx, db, purchase); err != nil {
			return nil, err
		}
	}

	refreshed, err := s.purchaseRepo.FindByID(db, purchase.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	view := dto.NewPurchaseDTO(refreshed)
	return &view, nil
}

// GrantEntitlement re-runs the drive grant for a paid purchase whose
// original grant failed. Admin-only reconciliation path.
func (s *PurchaseServiceImpl) GrantEntitlement(ctx context.Context, db *gorm.DB, purchaseID string) (*dto.PurchaseDTO, error) {
	purchase, err := s.purchaseRepo.FindByID(db, purchaseID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPurchaseNotFound) {
			return nil, apperrors.ErrNotFound(err, "Purchase not found")
		}
		return nil, apperrors.InternalError(err)
	}

	switch purchase.State {
	case models.PurchaseStateEntitled:
		view := dto.NewPurchaseDTO(purchase)
		return &view, nil
	case models.PurchaseStatePaid:
	default:
		return nil, apperrors.New(apperrors.CodeInvalidOperation, "purchase",
			"Purchase is not paid yet", 409)
	}

	if err := s.grantAndMark(ctx, db, purchase); err != nil {
		return nil, apperrors.ErrEntitlementFailed
	}

	refreshed, err := s.purchaseRepo.FindByID(db, purchaseID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	view := dto.NewPurchaseDTO(refreshed)
	return &view, nil
}

func (s *PurchaseServiceImpl) ListUserPurchases(ctx context.Context, db *gorm.DB, userID string) ([]dto.PurchaseDTO, error) {
	purchases, err := s.purchaseRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	views := make([]dto.PurchaseDTO, 0, len(purchases))
	for i := range purchases {
		views = append(views, dto.NewPurchaseDTO(&purchases[i]))
	}
	return views, nil
}
