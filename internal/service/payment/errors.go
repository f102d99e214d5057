package payment

import "errors"

type ErrorCode string

const (
	CodeConfigurationMissing   ErrorCode = "configuration_missing"
	CodeGatewayUnreachable     ErrorCode = "gateway_unreachable"
	CodeInvalidGatewayResponse ErrorCode = "invalid_gateway_response"
	CodeGatewayRejected        ErrorCode = "gateway_rejected"
	CodeAlreadySettled         ErrorCode = "already_settled"
	CodePaymentDeclined        ErrorCode = "payment_declined"
	CodeNotFound               ErrorCode = "not_found"
)

// Error is the single failure taxonomy of the payment core. Every instance
// is recoverable by the caller; the message is safe to surface to users.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Err: cause}
}

// AsError extracts the payment error from an error chain.
func AsError(err error) (*Error, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}

// IsCode reports whether err carries the given payment error code.
func IsCode(err error, code ErrorCode) bool {
	pe, ok := AsError(err)
	return ok && pe.Code == code
}
