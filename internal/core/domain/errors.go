package domain

import (
	"errors"
	"fmt"
)

// ErrorType is the kind of a failure. Integrators branch on it.
type ErrorType string

const (
	ValidationError        ErrorType = "ValidationError"
	InsufficientFunds      ErrorType = "InsufficientFunds"
	QuoteExpired           ErrorType = "QuoteExpired"
	DuplicateNonce         ErrorType = "DuplicateNonce"
	NetworkError           ErrorType = "NetworkError"
	SigningError           ErrorType = "SigningError"
	PartialExchangeFailure ErrorType = "PartialExchangeFailure"
	UnknownError           ErrorType = "UnknownError"
)

// Error is a failure carrying a stable type/code/message triple.
// Two errors match with errors.Is when type and code are the same; a target
// with empty code matches every error of its type.
type Error struct {
	Type    ErrorType `json:"type"`
	Code    string    `json:"code"`
	Message string    `json:"message"`

	cause error
}

// NewError returns a new Error with the given triple
func NewError(errType ErrorType, code, message string) *Error {
	return &Error{Type: errType, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.cause
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type && (t.Code == "" || t.Code == e.Code)
}

// Wrap returns a copy of the error that has the given one as cause
func (e *Error) Wrap(cause error) *Error {
	return &Error{Type: e.Type, Code: e.Code, Message: e.Message, cause: cause}
}

// WithMessage returns a copy of the error with a more specific message
func (e *Error) WithMessage(format string, args ...interface{}) *Error {
	return &Error{
		Type:    e.Type,
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		cause:   e.cause,
	}
}

var (
	// ErrInvalidArgument is the generic validation failure
	ErrInvalidArgument = NewError(ValidationError, "INVALID_ARGUMENT", "invalid argument")
	// ErrInvalidMnemonic is returned when a mnemonic has a bad checksum or
	// unknown words
	ErrInvalidMnemonic = NewError(ValidationError, "INVALID_MNEMONIC", "mnemonic is invalid")
	// ErrInvalidAddress ...
	ErrInvalidAddress = NewError(ValidationError, "INVALID_ADDRESS", "destination address is invalid")
	// ErrInvalidAmount ...
	ErrInvalidAmount = NewError(ValidationError, "INVALID_AMOUNT", "amount must be positive")
	// ErrInvalidPassphrase ...
	ErrInvalidPassphrase = NewError(ValidationError, "INVALID_PASSWORD", "passphrase is not valid")
	// ErrAccountNotFound ...
	ErrAccountNotFound = NewError(ValidationError, "ACCOUNT_NOT_FOUND", "account not found")
	// ErrCurrencyMismatch ...
	ErrCurrencyMismatch = NewError(ValidationError, "CURRENCY_MISMATCH", "currency does not match")
	// ErrNominatedAccountNotFound ...
	ErrNominatedAccountNotFound = NewError(ValidationError, "NOMINATED_ACCOUNT_NOT_FOUND", "account has no nominated account")
	// ErrAmountOutOfLimits ...
	ErrAmountOutOfLimits = NewError(ValidationError, "AMOUNT_OUT_OF_LIMITS", "amount is out of trading pair limits")
	// ErrWalletNotFound ...
	ErrWalletNotFound = NewError(ValidationError, "WALLET_NOT_FOUND", "wallet not found")
	// ErrWalletAlreadyExists ...
	ErrWalletAlreadyExists = NewError(ValidationError, "WALLET_ALREADY_EXISTS", "wallet already exists")
	// ErrNotRecoveryMnemonic ...
	ErrNotRecoveryMnemonic = NewError(ValidationError, "NOT_RECOVERY_MNEMONIC", "mnemonic does not match the user wallet")
	// ErrNotFiatCustomer is returned when opening fiat accounts on a network
	// the user has not been onboarded to
	ErrNotFiatCustomer = NewError(ValidationError, "NOT_FIAT_CUSTOMER", "user is not a fiat customer")
	// ErrUnsupportedCurrency ...
	ErrUnsupportedCurrency = NewError(ValidationError, "UNSUPPORTED_CURRENCY", "currency or network not supported")
	// ErrTokenExpired ...
	ErrTokenExpired = NewError(ValidationError, "TOKEN_EXPIRED", "access token is expired")
	// ErrInsufficientFunds ...
	ErrInsufficientFunds = NewError(InsufficientFunds, "INSUFFICIENT_FUNDS", "insufficient funds")
	// ErrQuoteExpired ...
	ErrQuoteExpired = NewError(QuoteExpired, "QUOTE_EXPIRED", "quote is expired")
	// ErrDuplicateNonce ...
	ErrDuplicateNonce = NewError(DuplicateNonce, "DUPLICATE_NONCE", "nonce has already been submitted")
	// ErrNetwork ...
	ErrNetwork = NewError(NetworkError, "NETWORK_ERROR", "network error")
	// ErrWalletLocked ...
	ErrWalletLocked = NewError(SigningError, "WALLET_LOCKED", "wallet must be unlocked")
	// ErrSigningFailed ...
	ErrSigningFailed = NewError(SigningError, "SIGNING_FAILED", "failed to sign transaction")
	// ErrPartialExchange ...
	ErrPartialExchange = NewError(PartialExchangeFailure, "PARTIAL_EXCHANGE_FAILURE", "exchange debit settled but credit failed")
)

// PartialExchangeError is returned when the debit leg of an exchange
// settled and the credit leg did not. The debit must not be retried.
type PartialExchangeError struct {
	ExchangeID         string
	DebitTransactionID string
	Err                error
}

func (e *PartialExchangeError) Error() string {
	return fmt.Sprintf(
		"%s (exchange %s, debit transaction %s): %v",
		ErrPartialExchange.Message, e.ExchangeID, e.DebitTransactionID, e.Err,
	)
}

func (e *PartialExchangeError) Unwrap() error {
	return e.Err
}

func (e *PartialExchangeError) Is(target error) bool {
	return ErrPartialExchange.Is(target)
}

// IsType returns whether err, or any error in its chain, is an Error of the
// given type
func IsType(err error, errType ErrorType) bool {
	return errors.Is(err, &Error{Type: errType})
}

// ToError returns the first Error found in the chain of err, or an
// UnknownError wrapping it
func ToError(err error) *Error {
	if err == nil {
		return nil
	}
	var partial *PartialExchangeError
	if errors.As(err, &partial) {
		return ErrPartialExchange.WithMessage("%s", partial.Error())
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Type: UnknownError, Code: "UNKNOWN", Message: err.Error()}
}
