package usecase

import "errors"

// Codes carried by DomainError. Handlers map them to HTTP statuses.
const (
	CodeSignupsClosed = "signups_closed"
	CodeValidation    = "validation_error"
	CodeCaptcha       = "captcha_failed"
	CodeSpam          = "spam_detected"
	CodeDuplicate     = "duplicate"
)

// Codes carried by TechnicalError.
const (
	CodeTelegramConfig = "telegram_config_missing"
	CodeDuplicateStore = "duplicate_store_error"
	CodeNotifyFailed   = "notify_failed"
	CodeEncodeFailed   = "encode_failed"
)

// DomainError is a refusal the submitter can act on.
type DomainError struct {
	Code    string
	Message string
	// Reasons lists spam heuristics that fired.
	Reasons []string
	// Fields maps a form field to its validation message.
	Fields map[string]string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError is an infrastructure failure. Err is kept for logging and is
// never shown to the submitter.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}
