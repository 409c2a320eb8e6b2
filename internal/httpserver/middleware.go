package httpserver

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"storefront/internal/domain"
	cartsvc "storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
)

const (
	headerSessionToken = "X-Session-Token"
	headerAdminToken   = "X-Admin-Token"

	ctxSessionID = "sessionID"
	ctxCustomer  = "customer"
)

// requireSession resolves the cart session from the session token header.
func requireSession(sessions sessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.GetHeader(headerSessionToken))
		if token == "" {
			writeError(c, cartsvc.ErrNoSession)
			return
		}
		id, err := sessions.Lookup(c.Request.Context(), token)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(ctxSessionID, id)
		c.Next()
	}
}

// requireCustomer resolves the signed-in customer from the bearer token.
func requireCustomer(customers customerAuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			writeError(c, domain.ErrUnauthenticated)
			return
		}
		customer, err := customers.LookupByToken(c.Request.Context(), token)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(ctxCustomer, customer)
		c.Next()
	}
}

// requireAdmin guards admin routes with a shared token. An empty configured
// token disables the admin API.
func requireAdmin(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		given := c.GetHeader(headerAdminToken)
		if adminToken == "" || subtle.ConstantTimeCompare([]byte(given), []byte(adminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, errorResponse{
				Error: "admin token required",
				Notifications: []domain.Notification{{
					Kind:    "error",
					Level:   domain.NotificationError,
					Message: "You are not allowed to do that.",
				}},
			})
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

func sessionIDFrom(c *gin.Context) string {
	return c.GetString(ctxSessionID)
}

func customerFrom(c *gin.Context) *domain.Customer {
	v, ok := c.Get(ctxCustomer)
	if !ok {
		return nil
	}
	customer, _ := v.(*domain.Customer)
	return customer
}
