package errors

import "fmt"

type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Error codes grouped by concern.
const (
	CodeNotAnInteger  = "E100"
	CodeBelowMinimum  = "E101"
	CodeInvalidAmount = "E110"
	CodeStaleEvent    = "E120"
	CodeDatabase      = "E200"
	CodeRateLimit     = "E500"
)

type AppError struct {
	Code        string
	Message     string
	UserMessage string
	Severity    Severity
	Retryable   bool
	cause       error
}

func (e *AppError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.cause
}

func (e *AppError) Cause() error {
	return e.Unwrap()
}

// NewNotAnIntegerError rejects amount input that does not parse as an integer.
// The session stays at its current stage; the user may simply try again.
func NewNotAnIntegerError() *AppError {
	return &AppError{
		Code:        CodeNotAnInteger,
		Message:     "amount input is not an integer",
		UserMessage: "Please enter a valid integer amount.",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewBelowMinimumError rejects amounts below the configured minimum order.
// formattedMin is the display form of the minimum, e.g. "10,000".
func NewBelowMinimumError(formattedMin string) *AppError {
	return &AppError{
		Code:        CodeBelowMinimum,
		Message:     fmt.Sprintf("amount below configured minimum of %s", formattedMin),
		UserMessage: fmt.Sprintf("Minimum order amount is %s Robux.", formattedMin),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

// NewInvalidAmountError wraps a pricing failure for an amount that passed
// wizard validation. This should be unreachable and is treated as an internal
// invariant violation.
func NewInvalidAmountError(cause error) *AppError {
	return &AppError{
		Code:        CodeInvalidAmount,
		Message:     "pricing rejected a validated amount",
		UserMessage: "Something went wrong. Please start your order again.",
		Severity:    SeverityHigh,
		Retryable:   false,
		cause:       cause,
	}
}

// NewStaleEventError rejects an event whose declared step does not match the
// session's current stage, e.g. a button from an earlier prompt.
func NewStaleEventError(stage string) *AppError {
	return &AppError{
		Code:        CodeStaleEvent,
		Message:     fmt.Sprintf("event does not match current stage %q", stage),
		UserMessage: "That option is no longer available at this step.",
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}

func NewDatabaseError(cause error) *AppError {
	var underlyingMsg string
	if cause != nil {
		underlyingMsg = cause.Error()
	}

	return &AppError{
		Code:        CodeDatabase,
		Message:     fmt.Sprintf("database error: %s", underlyingMsg),
		UserMessage: "Something went wrong while saving your order. Please try again.",
		Severity:    SeverityHigh,
		Retryable:   true,
		cause:       cause,
	}
}

func NewRateLimitError(retryAfter int) *AppError {
	return &AppError{
		Code:        CodeRateLimit,
		Message:     fmt.Sprintf("rate limit exceeded: retry after %d seconds", retryAfter),
		UserMessage: fmt.Sprintf("Too many requests. Please try again in %d seconds.", retryAfter),
		Severity:    SeverityLow,
		Retryable:   false,
		cause:       nil,
	}
}
