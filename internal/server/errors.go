package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/worksuite/internal/audit/domain"
	invoicedomain "github.com/smallbiznis/worksuite/internal/invoice/domain"
	lifecycledomain "github.com/smallbiznis/worksuite/internal/lifecycle/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`

	// transition rejections carry the legal alternatives so the caller
	// can render an actionable message without re-querying
	ValidNextStates []lifecycledomain.State `json:"valid_next_states,omitempty"`

	// overpayment rejections carry the balance the payment would have left
	WouldBeBalance string `json:"would_be_balance,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
	ErrInternal       = errors.New("internal_error")
)

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

func mapError(err error) (int, errorPayload) {
	var invalidTransition *lifecycledomain.InvalidTransitionError
	if errors.As(err, &invalidTransition) {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:            "invalid_transition",
			Message:         invalidTransition.Error(),
			ValidNextStates: invalidTransition.ValidNext,
		}
	}

	var overpayment *invoicedomain.OverpaymentError
	if errors.As(err, &overpayment) {
		return http.StatusUnprocessableEntity, errorPayload{
			Type:           "overpayment",
			Message:        overpayment.Error(),
			WouldBeBalance: overpayment.WouldBeBalance.StringFixed(2),
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isValidationError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: err.Error(),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: err.Error(),
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, invoicedomain.ErrInvalidAmount),
		errors.Is(err, invoicedomain.ErrInvalidMethod),
		errors.Is(err, invoicedomain.ErrInvalidCurrency),
		errors.Is(err, invoicedomain.ErrInvalidItems),
		errors.Is(err, lifecycledomain.ErrUnknownEntityType),
		errors.Is(err, lifecycledomain.ErrUnknownState),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidTimeRange):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, lifecycledomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isConflictError(err error) bool {
	switch {
	case errors.Is(err, lifecycledomain.ErrConcurrencyConflict),
		errors.Is(err, invoicedomain.ErrConcurrencyConflict):
		return true
	default:
		return false
	}
}
