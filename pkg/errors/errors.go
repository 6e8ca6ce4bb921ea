package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes shared by the application and HTTP layers
const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeNotFound          = "NOT_FOUND"
	CodeNoMethodsForOwner = "NO_METHODS_FOR_OWNER"
	CodeGateway           = "GATEWAY_ERROR"
	CodePaymentDeclined   = "PAYMENT_DECLINED"
	CodeStoreConnection   = "STORE_CONNECTION_ERROR"
	CodeStoreCommand      = "STORE_COMMAND_ERROR"
	CodeStoreRecordAbsent = "STORE_RECORD_ABSENT"
	CodePeerService       = "PEER_SERVICE_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

// ApplicationError represents a domain-specific error
type ApplicationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *ApplicationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ApplicationError) Unwrap() error {
	return e.Err
}

// Error constructors
func NewValidationError(message string) *ApplicationError {
	return &ApplicationError{
		Code:    CodeValidation,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

// NewInvalidFieldError lifts a field rule violation into the validation class,
// keeping it as the cause.
func NewInvalidFieldError(err error) *ApplicationError {
	return &ApplicationError{
		Code:    CodeValidation,
		Message: "invalid input",
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

func NewNotFoundError(resource string) *ApplicationError {
	return &ApplicationError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
	}
}

// NewNoMethodsForOwnerError reports an owner without any stored payment method.
func NewNoMethodsForOwnerError(ownerID string) *ApplicationError {
	return &ApplicationError{
		Code:    CodeNoMethodsForOwner,
		Message: fmt.Sprintf("no payment methods found for owner %s", ownerID),
		Status:  http.StatusNotFound,
	}
}

// NewGatewayError wraps any failure reported by the card gateway.
func NewGatewayError(op string, err error) *ApplicationError {
	return &ApplicationError{
		Code:    CodeGateway,
		Message: fmt.Sprintf("gateway %s failed", op),
		Status:  http.StatusBadGateway,
		Err:     err,
	}
}

// NewPaymentDeclinedError reports a charge the gateway did not complete.
func NewPaymentDeclinedError(status string) *ApplicationError {
	if status == "" {
		status = "unknown"
	}
	return &ApplicationError{
		Code:    CodePaymentDeclined,
		Message: fmt.Sprintf("payment was not successful (gateway status: %s)", status),
		Status:  http.StatusPaymentRequired,
	}
}

func NewStoreConnectionError(op string, err error) *ApplicationError {
	return &ApplicationError{
		Code:    CodeStoreConnection,
		Message: fmt.Sprintf("store connection failed during %s", op),
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

func NewStoreCommandError(op string, err error) *ApplicationError {
	return &ApplicationError{
		Code:    CodeStoreCommand,
		Message: fmt.Sprintf("store command failed during %s", op),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// NewStoreRecordAbsentError reports a write that matched no document.
func NewStoreRecordAbsentError(resource, id string) *ApplicationError {
	return &ApplicationError{
		Code:    CodeStoreRecordAbsent,
		Message: fmt.Sprintf("%s %s absent after write", resource, id),
		Status:  http.StatusInternalServerError,
	}
}

func NewPeerServiceError(service string, err error) *ApplicationError {
	return &ApplicationError{
		Code:    CodePeerService,
		Message: fmt.Sprintf("%s notification failed", service),
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func NewInternalError(message string) *ApplicationError {
	return &ApplicationError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
	}
}

// HasCode reports whether any ApplicationError in err's chain carries code.
func HasCode(err error, code string) bool {
	for err != nil {
		var appErr *ApplicationError
		if !stderrors.As(err, &appErr) {
			return false
		}
		if appErr.Code == code {
			return true
		}
		err = appErr.Err
	}
	return false
}

// StatusOf maps err to the HTTP status reported to callers. Only the
// caller-facing classes get a 4xx; everything else is a server failure.
func StatusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case HasCode(err, CodeValidation):
		return http.StatusBadRequest
	case HasCode(err, CodeNotFound), HasCode(err, CodeNoMethodsForOwner):
		return http.StatusNotFound
	case HasCode(err, CodePaymentDeclined):
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}

// SagaError wraps an otherwise unclassified failure at a saga boundary.
type SagaError struct {
	Saga string
	Err  error
}

func (e *SagaError) Error() string {
	return fmt.Sprintf("%s saga failed: %v", e.Saga, e.Err)
}

func (e *SagaError) Unwrap() error {
	return e.Err
}

func NewSagaError(saga string, err error) *SagaError {
	return &SagaError{Saga: saga, Err: err}
}

// IsSaga reports whether err was wrapped by the named saga.
func IsSaga(err error, saga string) bool {
	var sagaErr *SagaError
	return stderrors.As(err, &sagaErr) && sagaErr.Saga == saga
}
