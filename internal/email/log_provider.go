package email

import (
	"cutordie_backend/internal/logger"
)

// LogProvider writes mail to the log instead of sending it. Used when
// outbound mail is disabled (development, tests), mirroring the
// console fallback the site ran with originally.
type LogProvider struct{}

func NewLogProvider() *LogProvider {
	return &LogProvider{}
}

func (p *LogProvider) Send(to, subject, body string) error {
	logger.Info("email delivery disabled, logging instead",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}

func (p *LogProvider) SendResetCode(to, code string) error {
	logger.Info("email delivery disabled, logging reset code",
		"to", to,
		"code", code,
	)
	return nil
}
