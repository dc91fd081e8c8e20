package email

// Provider sends transactional mail.
type Provider interface {
	// Send delivers a plain message.
	Send(to, subject, body string) error

	// SendResetCode delivers the password-reset code.
	SendResetCode(to, code string) error
}
