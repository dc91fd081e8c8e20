package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupForm struct {
	UserName string `json:"userName" validate:"required,min=2,max=20,standard_chars"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=4,max=30,standard_chars"`
}

type buyForm struct {
	Currency string `json:"currency" validate:"required,is-currency"`
}

type roleForm struct {
	Role string `json:"role" validate:"required,is-user-role"`
}

func TestValidateOK(t *testing.T) {
	v := New()
	err := v.Validate(&signupForm{
		UserName: "maksym",
		Email:    "maksym@example.com",
		Password: "pass1234",
	})
	assert.NoError(t, err)
}

func TestValidateReportsJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Validate(&signupForm{
		UserName: "m",
		Email:    "not-an-email",
		Password: "ok1234",
	})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, vErr.Errors, "userName")
	assert.Contains(t, vErr.Errors, "email")
	assert.NotContains(t, vErr.Errors, "UserName")
}

func TestStandardCharsRejectsUnlisted(t *testing.T) {
	v := New()
	err := v.Validate(&signupForm{
		UserName: "имя💀",
		Email:    "a@b.com",
		Password: "pass1234",
	})
	require.Error(t, err)

	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, vErr.Errors, "userName")
}

func TestStandardCharsAcceptsCyrillic(t *testing.T) {
	v := New()
	err := v.Validate(&signupForm{
		UserName: "Оксана",
		Email:    "oksana@example.com",
		Password: "пароль123",
	})
	assert.NoError(t, err)
}

func TestCurrencyRule(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&buyForm{Currency: "uah"}))
	assert.NoError(t, v.Validate(&buyForm{Currency: "usd"}))
	assert.NoError(t, v.Validate(&buyForm{Currency: "eur"}))

	err := v.Validate(&buyForm{Currency: "gbp"})
	require.Error(t, err)
	vErr, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.Contains(t, vErr.Errors, "currency")
}

func TestUserRoleRule(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&roleForm{Role: "user"}))
	assert.NoError(t, v.Validate(&roleForm{Role: "admin"}))
	assert.NoError(t, v.Validate(&roleForm{Role: "dev"}))
	assert.Error(t, v.Validate(&roleForm{Role: "superuser"}))
}
