package services

import (
	"context"
	"testing"
	"time"

	"cutordie_backend/internal/auth"
	"cutordie_backend/internal/googleauth"
	"cutordie_backend/internal/services/dto"
	"cutordie_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*AuthServiceImpl, *fakeUserRepo, *fakeEmailProvider) {
	userRepo := newFakeUserRepo()
	mail := &fakeEmailProvider{}
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := NewAuthService(userRepo, tokens, mail, &fakeGoogleVerifier{}, "bootstrap-key").(*AuthServiceImpl)
	return svc, userRepo, mail
}

func newGoogleAuthFixture(verifier *fakeGoogleVerifier) (*AuthServiceImpl, *fakeUserRepo) {
	userRepo := newFakeUserRepo()
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	svc := NewAuthService(userRepo, tokens, &fakeEmailProvider{}, verifier, "bootstrap-key").(*AuthServiceImpl)
	return svc, userRepo
}

func signupReq() *dto.SignupRequest {
	return &dto.SignupRequest{
		UserName: "maksym",
		Email:    "maksym@example.com",
		Password: "pass1234",
	}
}

func TestSignupIssuesToken(t *testing.T) {
	svc, _, _ := newAuthFixture()

	resp, err := svc.Signup(context.Background(), nil, signupReq())
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "maksym", resp.User.UserName)
	assert.Equal(t, "maksym@example.com", resp.User.Email)
	assert.EqualValues(t, "user", resp.User.Role)
	assert.Empty(t, resp.User.PurchasedCourses)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Signup(context.Background(), nil, signupReq())
	require.NoError(t, err)

	dup := signupReq()
	dup.UserName = "other"
	_, err = svc.Signup(context.Background(), nil, dup)
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestSignupDuplicateUserName(t *testing.T) {
	svc, _, _ := newAuthFixture()

	_, err := svc.Signup(context.Background(), nil, signupReq())
	require.NoError(t, err)

	dup := signupReq()
	dup.Email = "other@example.com"
	_, err = svc.Signup(context.Background(), nil, dup)
	assert.ErrorIs(t, err, apperrors.ErrUserNameAlreadyExists)
}

func TestSigninSuccess(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.Signup(context.Background(), nil, signupReq())
	require.NoError(t, err)

	resp, err := svc.Signin(context.Background(), nil, &dto.SigninRequest{
		Email:    "maksym@example.com",
		Password: "pass1234",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
}

func TestSigninWrongPasswordAndUnknownEmailAnswerAlike(t *testing.T) {
	svc, _, _ := newAuthFixture()
	_, err := svc.Signup(context.Background(), nil, signupReq())
	require.NoError(t, err)

	_, wrongPass := svc.Signin(context.Background(), nil, &dto.SigninRequest{
		Email:    "maksym@example.com",
		Password: "wrong",
	})
	_, unknown := svc.Signin(context.Background(), nil, &dto.SigninRequest{
		Email:    "nobody@example.com",
		Password: "pass1234",
	})

	assert.ErrorIs(t, wrongPass, apperrors.ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, apperrors.ErrInvalidCredentials)
}

func TestCreateAdminRequiresKey(t *testing.T) {
	svc, _, _ := newAuthFixture()

	req := &dto.AdminCreateRequest{
		UserName: "boss",
		Email:    "boss@example.com",
		Password: "pass1234",
		AdminKey: "wrong-key",
	}
	_, err := svc.CreateAdmin(context.Background(), nil, req)
	assert.ErrorIs(t, err, apperrors.ErrWrongAdminKey)

	req.AdminKey = "bootstrap-key"
	resp, err := svc.CreateAdmin(context.Background(), nil, req)
	require.NoError(t, err)
	assert.EqualValues(t, "admin", resp.User.Role)
}

func TestForgotPasswordFlow(t *testing.T) {
	svc, userRepo, mail := newAuthFixture()
	resp, err := svc.Signup(context.Background(), nil, signupReq())
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), nil, "maksym@example.com"))
	require.Len(t, mail.sentTo, 1)
	require.Len(t, mail.lastCode, 6)

	// The stored value is a hash, not the code itself.
	stored := userRepo.users[resp.User.ID]
	assert.NotEmpty(t, stored.ResetCodeHash)
	assert.NotEqual(t, mail.lastCode, stored.ResetCodeHash)

	// Confirm without consuming.
	require.NoError(t, svc.ConfirmResetCode(context.Background(), nil, "maksym@example.com", mail.lastCode))
	require.NoError(t, svc.ConfirmResetCode(context.Background(), nil, "maksym@example.com", mail.lastCode))

	// Complete the reset; the answer carries a fresh session token.
	fresh, err := svc.ResetPassword(context.Background(), nil, &dto.ResetPasswordRequest{
		Email:    "maksym@example.com",
		Code:     mail.lastCode,
		Password: "newpass99",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.Token)

	_, err = svc.Signin(context.Background(), nil, &dto.SigninRequest{
		Email:    "maksym@example.com",
		Password: "pass1234",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Signin(context.Background(), nil, &dto.SigninRequest{
		Email:    "maksym@example.com",
		Password: "newpass99",
	})
	assert.NoError(t, err)

	// The code is single-use.
	_, err = svc.ResetPassword(context.Background(), nil, &dto.ResetPasswordRequest{
		Email:    "maksym@example.com",
		Code:     mail.lastCode,
		Password: "another11",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetCode)
}

func TestForgotPasswordUnknownEmailDoesNotLeak(t *testing.T) {
	svc, _, mail := newAuthFixture()

	err := svc.ForgotPassword(context.Background(), nil, "ghost@example.com")
	assert.NoError(t, err)
	assert.Empty(t, mail.sentTo)
}

func TestResetCodeWrongAndExpired(t *testing.T) {
	svc, userRepo, mail := newAuthFixture()
	resp, err := svc.Signup(context.Background(), nil, signupReq())
	require.NoError(t, err)

	require.NoError(t, svc.ForgotPassword(context.Background(), nil, "maksym@example.com"))

	wrong := "000000"
	if mail.lastCode == wrong {
		wrong = "000001"
	}
	err = svc.ConfirmResetCode(context.Background(), nil, "maksym@example.com", wrong)
	assert.ErrorIs(t, err, apperrors.ErrInvalidResetCode)

	// Force expiry.
	past := time.Now().Add(-time.Minute)
	userRepo.users[resp.User.ID].ResetCodeExpiresAt = &past

	err = svc.ConfirmResetCode(context.Background(), nil, "maksym@example.com", mail.lastCode)
	assert.ErrorIs(t, err, apperrors.ErrResetCodeExpired)
}

func TestForgotPasswordUndeliveredMailClearsCode(t *testing.T) {
	svc, userRepo, mail := newAuthFixture()
	resp, err := svc.Signup(context.Background(), nil, signupReq())
	require.NoError(t, err)

	mail.sendError = assert.AnError
	err = svc.ForgotPassword(context.Background(), nil, "maksym@example.com")
	require.Error(t, err)

	stored := userRepo.users[resp.User.ID]
	assert.Empty(t, stored.ResetCodeHash)
	assert.Nil(t, stored.ResetCodeExpiresAt)
}

func TestChangePassword(t *testing.T) {
	svc, userRepo, _ := newAuthFixture()
	resp, err := svc.Signup(context.Background(), nil, signupReq())
	require.NoError(t, err)

	_, err = svc.ChangePassword(context.Background(), nil, resp.User.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpass99",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	fresh, err := svc.ChangePassword(context.Background(), nil, resp.User.ID, &dto.ChangePasswordRequest{
		CurrentPassword: "pass1234",
		NewPassword:     "newpass99",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.Token)

	// Change is stamped so earlier tokens go stale.
	assert.NotNil(t, userRepo.users[resp.User.ID].PasswordChangedAt)
}

func TestGoogleAuthCreatesAccount(t *testing.T) {
	verifier := &fakeGoogleVerifier{info: &googleauth.UserInfo{
		Email: "olena@example.com",
		Name:  "olena",
	}}
	svc, userRepo := newGoogleAuthFixture(verifier)

	resp, err := svc.GoogleAuth(context.Background(), nil, "google-token")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "olena@example.com", resp.User.Email)
	assert.Equal(t, "user", string(resp.User.Role))

	// The account is real: it has a password hash the owner can replace
	// through the reset flow.
	stored := userRepo.users[resp.User.ID]
	require.NotNil(t, stored)
	assert.NotEmpty(t, stored.PasswordHash)
}

func TestGoogleAuthExistingUserSignsIn(t *testing.T) {
	verifier := &fakeGoogleVerifier{info: &googleauth.UserInfo{
		Email: "maksym@example.com",
		Name:  "somebody else",
	}}
	svc, userRepo := newGoogleAuthFixture(verifier)

	first, err := svc.Signup(context.Background(), nil, signupReq())
	require.NoError(t, err)

	resp, err := svc.GoogleAuth(context.Background(), nil, "google-token")
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	// Signed in, not re-registered.
	assert.Len(t, userRepo.users, 1)
	assert.Equal(t, "maksym", userRepo.users[first.User.ID].UserName)
}

func TestGoogleAuthRejectedToken(t *testing.T) {
	verifier := &fakeGoogleVerifier{fetchErr: googleauth.ErrUnverified}
	svc, userRepo := newGoogleAuthFixture(verifier)

	_, err := svc.GoogleAuth(context.Background(), nil, "stale-token")
	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	assert.Empty(t, userRepo.users)
}
