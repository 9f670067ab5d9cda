package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	companydomain "github.com/vendepy/vendepy/internal/company/domain"
	customerdomain "github.com/vendepy/vendepy/internal/customer/domain"
	depositdomain "github.com/vendepy/vendepy/internal/deposit/domain"
	"github.com/vendepy/vendepy/internal/fiscal"
	invoicedomain "github.com/vendepy/vendepy/internal/invoice/domain"
	numberingdomain "github.com/vendepy/vendepy/internal/numbering/domain"
	salesdomain "github.com/vendepy/vendepy/internal/sales/domain"
	usagedomain "github.com/vendepy/vendepy/internal/usagelimit/domain"
	userdomain "github.com/vendepy/vendepy/internal/user/domain"
	"gorm.io/gorm"
)

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

type errorPayload struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return ErrInvalidRequest
}

func mapError(err error) (int, errorPayload) {
	switch {
	case isValidationError(err):
		return http.StatusBadRequest, payload("validation_error", err)
	case isBusinessRuleError(err):
		return http.StatusUnprocessableEntity, payload("business_rule_violation", err)
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, userdomain.ErrInvalidCredentials):
		return http.StatusUnauthorized, payload("unauthorized", err)
	case isForbiddenError(err):
		return http.StatusForbidden, payload("forbidden", err)
	case isNotFoundError(err):
		return http.StatusNotFound, payload("not_found", err)
	case isConflictError(err):
		return http.StatusConflict, payload("conflict", err)
	case errors.Is(err, companydomain.ErrConfigurationMissing),
		errors.Is(err, numberingdomain.ErrConfigurationMissing):
		// Issuing documents without an active configuration is an
		// operator setup failure, not a client mistake.
		return http.StatusInternalServerError, payload("configuration_missing", err)
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Code:    "internal_error",
			Message: "internal server error",
		}
	}
}

func payload(kind string, err error) errorPayload {
	return errorPayload{Type: kind, Code: rootCode(err), Message: err.Error()}
}

// rootCode unwraps typed errors down to their sentinel so clients get a
// stable machine-readable code regardless of the detail text.
func rootCode(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, fiscal.ErrInvalidFormat),
		errors.Is(err, customerdomain.ErrInvalidName),
		errors.Is(err, customerdomain.ErrInvalidID),
		errors.Is(err, salesdomain.ErrInvalidID),
		errors.Is(err, salesdomain.ErrNoLines),
		errors.Is(err, salesdomain.ErrInvalidLine),
		errors.Is(err, invoicedomain.ErrInvalidID),
		errors.Is(err, invoicedomain.ErrNoLines),
		errors.Is(err, invoicedomain.ErrInvalidLine),
		errors.Is(err, invoicedomain.ErrInvalidCondicion),
		errors.Is(err, depositdomain.ErrInvalidID),
		errors.Is(err, depositdomain.ErrInvalidAmount),
		errors.Is(err, depositdomain.ErrInvalidType),
		errors.Is(err, numberingdomain.ErrInvalidStartNumber),
		errors.Is(err, numberingdomain.ErrInvalidTarget),
		errors.Is(err, userdomain.ErrInvalidID),
		errors.Is(err, userdomain.ErrInvalidEmail),
		errors.Is(err, userdomain.ErrInvalidUsername),
		errors.Is(err, userdomain.ErrWeakPassword),
		errors.Is(err, userdomain.ErrInvalidRole):
		return true
	default:
		return false
	}
}

func isBusinessRuleError(err error) bool {
	switch {
	case errors.Is(err, fiscal.ErrCheckDigitMismatch),
		errors.Is(err, fiscal.ErrTimbradoExpired),
		errors.Is(err, companydomain.ErrIncompleteSettings),
		errors.Is(err, customerdomain.ErrCertificateMissing),
		errors.Is(err, salesdomain.ErrQuoteNotPending),
		errors.Is(err, salesdomain.ErrQuoteExpired),
		errors.Is(err, salesdomain.ErrOrderNotPending),
		errors.Is(err, salesdomain.ErrCustomerInactive),
		errors.Is(err, invoicedomain.ErrCustomerInactive),
		errors.Is(err, invoicedomain.ErrNotPending),
		errors.Is(err, invoicedomain.ErrOverpayment),
		errors.Is(err, depositdomain.ErrDepositNotActive),
		errors.Is(err, depositdomain.ErrCustomerMismatch),
		errors.Is(err, depositdomain.ErrCurrencyMismatch),
		errors.Is(err, depositdomain.ErrInsufficientFunds),
		errors.Is(err, depositdomain.ErrExceedsBalance):
		return true
	default:
		return false
	}
}

func isForbiddenError(err error) bool {
	switch {
	case errors.Is(err, customerdomain.ErrForbidden),
		errors.Is(err, depositdomain.ErrForbidden),
		errors.Is(err, userdomain.ErrForbidden),
		errors.Is(err, usagedomain.ErrLimitExceeded):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, customerdomain.ErrNotFound),
		errors.Is(err, salesdomain.ErrQuoteNotFound),
		errors.Is(err, salesdomain.ErrOrderNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, depositdomain.ErrNotFound),
		errors.Is(err, depositdomain.ErrInvoiceNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, customerdomain.ErrDuplicateTaxID),
		errors.Is(err, companydomain.ErrConfigurationExists),
		errors.Is(err, companydomain.ErrDuplicateRUC),
		errors.Is(err, userdomain.ErrDuplicateLogin):
		return true
	default:
		return false
	}
}
