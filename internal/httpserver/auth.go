package httpserver

import (
	"fmt"
	"net/http"

	customersvc "storefront/internal/service/customer"

	"github.com/gin-gonic/gin"
)

type signupRequest struct {
	Email     string `json:"email" binding:"required"`
	Password  string `json:"password" binding:"required"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type tokenRequest struct {
	Email    string `json:"email" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	CustomerID  string `json:"customer_id"`
}

func (h *handlers) createSession(c *gin.Context) {
	s, err := h.deps.Sessions.Issue(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, s)
}

// endSession revokes the session token and discards the session's cart.
func (h *handlers) endSession(c *gin.Context) {
	id, err := h.deps.Sessions.End(c.Request.Context(), c.GetHeader(headerSessionToken))
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.deps.Carts.Close(c.Request.Context(), id); err != nil {
		h.logger.Printf("session: close cart session=%s err=%v", id, err)
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	customer, err := h.deps.Customers.Signup(c.Request.Context(), customersvc.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"customer": customer})
}

// token accepts JSON or an OAuth-style password grant form.
func (h *handlers) token(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBind(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	customer, access, err := h.deps.Customers.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: access,
		TokenType:   "Bearer",
		ExpiresIn:   h.deps.Customers.AccessTTLSeconds(),
		CustomerID:  customer.ID,
	})
}

func (h *handlers) logout(c *gin.Context) {
	if token := bearerToken(c.GetHeader("Authorization")); token != "" {
		h.deps.Customers.Logout(token)
	}
	c.Status(http.StatusNoContent)
}

func (h *handlers) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"customer": customerFrom(c)})
}
