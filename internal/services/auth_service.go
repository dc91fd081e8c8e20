package services

import (
	"context"
	"time"

	"cutordie_backend/internal/auth"
	"cutordie_backend/internal/email"
	"cutordie_backend/internal/googleauth"
	"cutordie_backend/internal/logger"
	"cutordie_backend/internal/models"
	"cutordie_backend/internal/repositories"
	"cutordie_backend/internal/services/dto"
	"cutordie_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const resetCodeTTL = 10 * time.Minute

type AuthService interface {
	Signup(ctx context.Context, db *gorm.DB, req *dto.SignupRequest) (*dto.AuthResponse, error)
	Signin(ctx context.Context, db *gorm.DB, req *dto.SigninRequest) (*dto.AuthResponse, error)
	GoogleAuth(ctx context.Context, db *gorm.DB, accessToken string) (*dto.AuthResponse, error)
	CreateAdmin(ctx context.Context, db *gorm.DB, req *dto.AdminCreateRequest) (*dto.AuthResponse, error)
	ForgotPassword(ctx context.Context, db *gorm.DB, emailAddr string) error
	ConfirmResetCode(ctx context.Context, db *gorm.DB, emailAddr, code string) error
	ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) (*dto.AuthResponse, error)
	ChangePassword(ctx context.Context, db *gorm.DB, userID string, req *dto.ChangePasswordRequest) (*dto.AuthResponse, error)
}

type AuthServiceImpl struct {
	userRepo      repositories.UserRepository
	tokens        *auth.TokenIssuer
	emailProvider email.Provider
	google        googleauth.Verifier
	adminKey      string
}

func NewAuthService(
	userRepo repositories.UserRepository,
	tokens *auth.TokenIssuer,
	emailProvider email.Provider,
	google googleauth.Verifier,
	adminKey string,
) AuthService {
	return &AuthServiceImpl{
		userRepo:      userRepo,
		tokens:        tokens,
		emailProvider: emailProvider,
		google:        google,
		adminKey:      adminKey,
	}
}

// Signup registers a user and signs them in immediately.
func (s *AuthServiceImpl) Signup(ctx context.Context, db *gorm.DB, req *dto.SignupRequest) (*dto.AuthResponse, error) {
	return s.createAccount(ctx, db, req.UserName, req.Email, req.Password, models.UserRoleUser)
}

// CreateAdmin registers an admin account. Guarded by the bootstrap key
// rather than an existing admin session so the very first admin can be
// created too.
func (s *AuthServiceImpl) CreateAdmin(ctx context.Context, db *gorm.DB, req *dto.AdminCreateRequest) (*dto.AuthResponse, error) {
	if s.adminKey == "" || req.AdminKey != s.adminKey {
		return nil, apperrors.ErrWrongAdminKey
	}
	return s.createAccount(ctx, db, req.UserName, req.Email, req.Password, models.UserRoleAdmin)
}

func (s *AuthServiceImpl) createAccount(ctx context.Context, db *gorm.DB, userName, emailAddr, password string, role models.UserRole) (*dto.AuthResponse, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		UserName:     userName,
		Email:        emailAddr,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.userRepo.Create(db, user); err != nil {
		switch {
		case apperrors.Is(err, repositories.ErrDuplicateEmail):
			return nil, apperrors.ErrEmailAlreadyExists
		case apperrors.Is(err, repositories.ErrDuplicateUserName):
			return nil, apperrors.ErrUserNameAlreadyExists
		case apperrors.Is(err, repositories.ErrUserAlreadyExists):
			return nil, apperrors.ErrEmailAlreadyExists
		}
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID, "role", role)
	return s.respondWithToken(user)
}

// Signin authenticates by email and password. Unknown email and wrong
// password answer identically.
func (s *AuthServiceImpl) Signin(ctx context.Context, db *gorm.DB, req *dto.SigninRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.respondWithToken(user)
}

const googleAccountPasswordLen = 15

// GoogleAuth signs a user in with a Google access token, creating the
// account the first time the email shows up. A new account gets a
// random password; the reset flow can claim it later.
func (s *AuthServiceImpl) GoogleAuth(ctx context.Context, db *gorm.DB, accessToken string) (*dto.AuthResponse, error) {
	info, err := s.google.FetchUserInfo(ctx, accessToken)
	if err != nil {
		if apperrors.Is(err, googleauth.ErrUnverified) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.ErrUpstream(err, "auth", "Could not verify the Google account. Please try again later.")
	}

	user, err := s.userRepo.FindByEmail(db, info.Email)
	if err == nil {
		logger.CtxInfo(ctx, "google sign-in", "user_id", user.ID)
		return s.respondWithToken(user)
	}
	if !apperrors.Is(err, repositories.ErrUserNotFound) {
		return nil, apperrors.InternalError(err)
	}

	password, err := auth.GenerateRandomPassword(googleAccountPasswordLen)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.createAccount(ctx, db, info.Name, info.Email, password, models.UserRoleUser)
}

// ForgotPassword issues a short-lived numeric reset code and mails it.
// An unknown email still answers success so the endpoint does not leak
// which addresses have accounts.
func (s *AuthServiceImpl) ForgotPassword(ctx context.Context, db *gorm.DB, emailAddr string) error {
	user, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			logger.CtxInfo(ctx, "password reset requested for unknown email")
			return nil
		}
		return apperrors.InternalError(err)
	}

	code, err := auth.GenerateResetCode()
	if err != nil {
		return apperrors.InternalError(err)
	}
	codeHash, err := auth.HashResetCode(code)
	if err != nil {
		return apperrors.InternalError(err)
	}

	expiresAt := time.Now().Add(resetCodeTTL)
	if err := s.userRepo.SetResetCode(db, user.ID, codeHash, expiresAt); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.emailProvider.SendResetCode(user.Email, code); err != nil {
		// Roll the code back so a code the user never received cannot
		// linger as a valid credential.
		if clearErr := s.userRepo.ClearResetCode(db, user.ID); clearErr != nil {
			logger.CtxError(ctx, "failed to clear undelivered reset code", "error", clearErr)
		}
		return apperrors.Wrap(err, apperrors.CodeInternalError, "auth", "Failed to send the reset email. Please try again later.", 500)
	}

	logger.CtxInfo(ctx, "reset code issued", "user_id", user.ID)
	return nil
}

// ConfirmResetCode verifies a code without consuming it, so the client
// can gate the new-password form.
func (s *AuthServiceImpl) ConfirmResetCode(ctx context.Context, db *gorm.DB, emailAddr, code string) error {
	_, err := s.verifyResetCode(db, emailAddr, code)
	return err
}

// ResetPassword consumes a valid code and replaces the password. The
// repository clears the code and stamps the change in one statement, so
// every earlier session token goes stale. Answers with a fresh token,
// same as a sign-in.
func (s *AuthServiceImpl) ResetPassword(ctx context.Context, db *gorm.DB, req *dto.ResetPasswordRequest) (*dto.AuthResponse, error) {
	user, err := s.verifyResetCode(db, req.Email, req.Code)
	if err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	// One second back to cover tokens minted in the same second.
	changedAt := time.Now().Add(-time.Second)
	if err := s.userRepo.UpdatePassword(db, user.ID, hash, changedAt); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "password reset completed", "user_id", user.ID)
	return s.respondWithToken(user)
}

func (s *AuthServiceImpl) verifyResetCode(db *gorm.DB, emailAddr, code string) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(db, emailAddr)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidResetCode
		}
		return nil, apperrors.InternalError(err)
	}

	if user.ResetCodeHash == "" || user.ResetCodeExpiresAt == nil {
		return nil, apperrors.ErrInvalidResetCode
	}
	if time.Now().After(*user.ResetCodeExpiresAt) {
		return nil, apperrors.ErrResetCodeExpired
	}
	if !auth.CheckResetCode(code, user.ResetCodeHash) {
		return nil, apperrors.ErrInvalidResetCode
	}
	return user, nil
}

// ChangePassword verifies the current password and installs a new one,
// then answers with a fresh token since the old one just went stale.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, db *gorm.DB, userID string, req *dto.ChangePasswordRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrNotFound(err, "User not found")
		}
		return nil, apperrors.InternalError(err)
	}

	if !auth.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	changedAt := time.Now().Add(-time.Second)
	if err := s.userRepo.UpdatePassword(db, user.ID, hash, changedAt); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "password changed", "user_id", user.ID)
	return s.respondWithToken(user)
}

func (s *AuthServiceImpl) respondWithToken(user *models.User) (*dto.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.AuthResponse{
		Token: token,
		User:  dto.NewUserDTO(user),
	}, nil
}
