package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"
	customersvc "storefront/internal/service/customer"
	productsvc "storefront/internal/service/product"
	"storefront/internal/service/session"

	"github.com/gin-gonic/gin"
)

var errBadRequest = errors.New("bad request")

// errorResponse is the body of every failed request. Notifications carry the
// dismissible message the storefront shows.
type errorResponse struct {
	Error         string                `json:"error"`
	Notifications []domain.Notification `json:"notifications"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, productsvc.ErrInvalidProduct),
		errors.Is(err, customersvc.ErrInvalidSignup):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthenticated),
		errors.Is(err, cartsvc.ErrNoSession),
		errors.Is(err, session.ErrInvalidToken),
		errors.Is(err, customersvc.ErrInvalidToken),
		errors.Is(err, customersvc.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrOrderNotFound),
		errors.Is(err, cartsvc.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "internal error"
	}
	c.AbortWithStatusJSON(status, errorResponse{
		Error: msg,
		Notifications: []domain.Notification{{
			Kind:    "error",
			Level:   domain.NotificationError,
			Message: userMessage(err, msg),
		}},
	})
}

func userMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, domain.ErrEmptyCart):
		return "Your cart is empty."
	case errors.Is(err, domain.ErrUnauthenticated), errors.Is(err, customersvc.ErrInvalidToken):
		return "Please sign in to continue."
	case errors.Is(err, customersvc.ErrInvalidCredentials):
		return "Email or password is incorrect."
	case errors.Is(err, domain.ErrInvalidTransition):
		return "That status change is not allowed."
	case errors.Is(err, domain.ErrOrderNotFound):
		return "Order not found."
	case errors.Is(err, cartsvc.ErrProductNotFound):
		return "That product is no longer available."
	}
	return fallback
}
