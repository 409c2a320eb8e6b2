package httpserver

import (
	"fmt"
	"net/http"
	"strconv"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

type transitionRequest struct {
	Status string `json:"status" binding:"required"`
}

// checkout places an order from the session's cart on behalf of the signed-in
// customer.
func (h *handlers) checkout(c *gin.Context) {
	customer := customerFrom(c)
	if customer == nil {
		writeError(c, domain.ErrUnauthenticated)
		return
	}
	ledger, err := h.deps.Carts.Ledger(c.Request.Context(), sessionIDFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	res, err := h.deps.Orders.PlaceOrder(c.Request.Context(), customer.ID, ledger, h.deps.ShippingCents)
	if err != nil {
		writeError(c, err)
		return
	}
	view := toOrderView(res.Order)
	view.Notifications = res.Notifications
	c.JSON(http.StatusCreated, view)
}

func (h *handlers) myOrders(c *gin.Context) {
	customer := customerFrom(c)
	if customer == nil {
		writeError(c, domain.ErrUnauthenticated)
		return
	}
	orders, err := h.deps.Orders.OrdersForUser(c.Request.Context(), customer.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "results": toOrderViews(orders)})
}

// adminListOrders lists orders, optionally narrowed by ?status= and ?days=.
func (h *handlers) adminListOrders(c *gin.Context) {
	ctx := c.Request.Context()

	var status domain.OrderStatus
	if raw := c.Query("status"); raw != "" {
		parsed, ok := domain.ParseOrderStatus(raw)
		if !ok {
			writeError(c, fmt.Errorf("%w: unknown status %q", errBadRequest, raw))
			return
		}
		status = parsed
	}

	var (
		orders []domain.Order
		err    error
	)
	daysParam, hasDays := c.GetQuery("days")
	switch {
	case hasDays:
		days, convErr := strconv.Atoi(daysParam)
		if convErr != nil {
			writeError(c, fmt.Errorf("%w: days must be an integer", errBadRequest))
			return
		}
		orders, err = h.deps.Orders.RecentOrders(ctx, days, status)
	case status != "":
		orders, err = h.deps.Orders.OrdersByStatus(ctx, status)
	default:
		orders, err = h.deps.Orders.AllOrders(ctx)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(orders), "results": toOrderViews(orders)})
}

func (h *handlers) adminGetOrder(c *gin.Context) {
	o, err := h.deps.Orders.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderView(*o))
}

func (h *handlers) orderStats(c *gin.Context) {
	stats, err := h.deps.Orders.Statistics(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toStatisticsView(stats, h.deps.Currency))
}

func (h *handlers) transitionOrder(c *gin.Context) {
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	// Unknown statuses reach the service, which rejects them as invalid
	// transitions.
	status, _ := domain.ParseOrderStatus(req.Status)
	o, err := h.deps.Orders.TransitionStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		writeError(c, err)
		return
	}
	view := toOrderView(*o)
	view.Notifications = []domain.Notification{{
		Kind:    domain.NoticeOrderTransition,
		Level:   domain.NotificationInfo,
		Message: fmt.Sprintf("Order %s is now %s", o.ID, o.Status),
	}}
	c.JSON(http.StatusOK, view)
}

func (h *handlers) clearOrders(c *gin.Context) {
	n, err := h.deps.Orders.ClearAll(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": n})
}
