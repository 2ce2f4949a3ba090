package errs

import (
	"errors"
	"net/http"
)

const (
	ErrStatusInternalServer = http.StatusInternalServerError
	ErrStatusClient         = http.StatusBadRequest
	ErrStatusNotLoggedIn    = http.StatusUnauthorized
	ErrStatusNoPermission   = http.StatusForbidden
	ErrStatusUnauthorized   = http.StatusUnauthorized
	ErrStatusNotFound       = http.StatusNotFound
	ErrStatusConflict       = http.StatusConflict
	ErrStatusBadGateway     = http.StatusBadGateway
)

var (
	ErrInternalServer          = errors.New("Internal server error")
	ErrClient                  = errors.New("Bad request")
	ErrNotLoggedIn             = errors.New("Unauthorized access")
	ErrInvalidCredentialsEmail = errors.New("Email or password is incorrect")
	ErrUnauthorized            = errors.New("Forbidden access")
	ErrNotFound                = errors.New("Resource not found")
	ErrAccountNotFound         = errors.New("Account not found")
	ErrEmailAlreadyUsed        = errors.New("Email has already been used")
	ErrConflict                = errors.New("Conflicting record found")
	ErrOutOfStock              = errors.New("Requested quantity exceeds available stock")
	ErrEmptyCart               = errors.New("Cart is empty")
	ErrProductUnavailable      = errors.New("Product is not available")
	ErrTransactionConflict     = errors.New("Order could not be placed due to a concurrent update, please try again")
	ErrInvalidStatusTransition = errors.New("Invalid order status transition")
	ErrBadGateway              = errors.New("Upstream service unavailable")
)

var errorMap = map[error]int{
	ErrInternalServer:          ErrStatusInternalServer,
	ErrClient:                  ErrStatusClient,
	ErrNotLoggedIn:             ErrStatusNotLoggedIn,
	ErrInvalidCredentialsEmail: ErrStatusUnauthorized,
	ErrUnauthorized:            ErrStatusNoPermission,
	ErrNotFound:                ErrStatusNotFound,
	ErrAccountNotFound:         ErrStatusNotFound,
	ErrEmailAlreadyUsed:        ErrStatusClient,
	ErrConflict:                ErrStatusConflict,
	ErrOutOfStock:              ErrStatusConflict,
	ErrEmptyCart:               ErrStatusClient,
	ErrProductUnavailable:      ErrStatusClient,
	ErrTransactionConflict:     ErrStatusConflict,
	ErrInvalidStatusTransition: ErrStatusClient,
	ErrBadGateway:              ErrStatusBadGateway,
}

// GetErrorStatusCode resolves err, or the first sentinel it wraps, to an HTTP
// status code. Unknown errors map to 500.
func GetErrorStatusCode(err error) int {
	if errStatusCode, ok := errorMap[err]; ok {
		return errStatusCode
	}

	for sentinel, errStatusCode := range errorMap {
		if errors.Is(err, sentinel) {
			return errStatusCode
		}
	}

	return errorMap[ErrInternalServer]
}

// IsValidation reports whether err is one of the input validation failures.
func IsValidation(err error) bool {
	return errors.Is(err, ErrClient) || errors.Is(err, ErrEmptyCart) || errors.Is(err, ErrProductUnavailable)
}
