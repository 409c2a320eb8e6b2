package httpserver

import (
	"fmt"
	"net/http"

	cartsvc "storefront/internal/service/cart"

	"github.com/gin-gonic/gin"
)

type addLineRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type setQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.deps.Carts.Get(c.Request.Context(), sessionIDFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(cart, nil, h.deps.Currency))
}

// addLine adds a product; a missing or non-positive quantity adds one unit.
func (h *handlers) addLine(c *gin.Context) {
	var req addLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	res, err := h.deps.Carts.AddProduct(c.Request.Context(), sessionIDFrom(c), req.ProductID, req.Quantity)
	h.writeCartResult(c, res, err)
}

func (h *handlers) setQuantity(c *gin.Context) {
	var req setQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	res, err := h.deps.Carts.SetQuantity(c.Request.Context(), sessionIDFrom(c), c.Param("productId"), *req.Quantity)
	h.writeCartResult(c, res, err)
}

func (h *handlers) removeLine(c *gin.Context) {
	res, err := h.deps.Carts.RemoveLine(c.Request.Context(), sessionIDFrom(c), c.Param("productId"))
	h.writeCartResult(c, res, err)
}

func (h *handlers) clearCart(c *gin.Context) {
	res, err := h.deps.Carts.Clear(c.Request.Context(), sessionIDFrom(c))
	h.writeCartResult(c, res, err)
}

func (h *handlers) writeCartResult(c *gin.Context, res *cartsvc.Result, err error) {
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCartView(res.Cart, res.Notifications, h.deps.Currency))
}
