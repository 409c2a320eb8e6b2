package httpserver

import (
	"time"

	"storefront/internal/domain"
)

// priceValue renders an amount the way the storefront formats prices.
type priceValue struct {
	CentAmount     int64  `json:"centAmount"`
	CurrencyCode   string `json:"currencyCode"`
	FractionDigits int    `json:"fractionDigits"`
}

func price(cents int64, currency string) priceValue {
	return priceValue{CentAmount: cents, CurrencyCode: currency, FractionDigits: 2}
}

type lineView struct {
	ProductID  string     `json:"productId"`
	Name       string     `json:"name"`
	ImageRef   string     `json:"imageRef,omitempty"`
	Quantity   int        `json:"quantity"`
	UnitPrice  priceValue `json:"unitPrice"`
	TotalPrice priceValue `json:"totalPrice"`
}

type cartView struct {
	SessionID     string                `json:"sessionId"`
	Lines         []lineView            `json:"lines"`
	ItemCount     int                   `json:"itemCount"`
	TotalPrice    priceValue            `json:"totalPrice"`
	Notifications []domain.Notification `json:"notifications"`
}

type orderView struct {
	ID            string                `json:"id"`
	OwnerID       string                `json:"ownerId"`
	Status        domain.OrderStatus    `json:"status"`
	Items         []lineView            `json:"items"`
	Subtotal      priceValue            `json:"subtotal"`
	Shipping      priceValue            `json:"shipping"`
	Total         priceValue            `json:"total"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     *time.Time            `json:"updatedAt,omitempty"`
	ShippedAt     *time.Time            `json:"shippedAt,omitempty"`
	DeliveredAt   *time.Time            `json:"deliveredAt,omitempty"`
	Notifications []domain.Notification `json:"notifications,omitempty"`
}

type statisticsView struct {
	TotalOrders  int                        `json:"totalOrders"`
	ByStatus     map[domain.OrderStatus]int `json:"byStatus"`
	TotalRevenue priceValue                 `json:"totalRevenue"`
}

func toLineViews(lines []domain.CartLine, currency string) []lineView {
	out := make([]lineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, lineView{
			ProductID:  l.ProductID,
			Name:       l.Name,
			ImageRef:   l.ImageRef,
			Quantity:   l.Quantity,
			UnitPrice:  price(l.UnitPriceCents, currency),
			TotalPrice: price(l.TotalCents(), currency),
		})
	}
	return out
}

func toCartView(cart domain.Cart, notices []domain.Notification, currency string) cartView {
	if notices == nil {
		notices = []domain.Notification{}
	}
	return cartView{
		SessionID:     cart.SessionID,
		Lines:         toLineViews(cart.Lines, currency),
		ItemCount:     cart.ItemCount(),
		TotalPrice:    price(cart.TotalCents, currency),
		Notifications: notices,
	}
}

func toOrderView(o domain.Order) orderView {
	return orderView{
		ID:          o.ID,
		OwnerID:     o.OwnerID,
		Status:      o.Status,
		Items:       toLineViews(o.Items, o.Currency),
		Subtotal:    price(o.SubtotalCents, o.Currency),
		Shipping:    price(o.ShippingCents, o.Currency),
		Total:       price(o.TotalCents, o.Currency),
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
		ShippedAt:   o.ShippedAt,
		DeliveredAt: o.DeliveredAt,
	}
}

func toOrderViews(orders []domain.Order) []orderView {
	out := make([]orderView, 0, len(orders))
	for _, o := range orders {
		out = append(out, toOrderView(o))
	}
	return out
}

func toStatisticsView(s domain.OrderStatistics, currency string) statisticsView {
	return statisticsView{
		TotalOrders:  s.TotalOrders,
		ByStatus:     s.ByStatus,
		TotalRevenue: price(s.TotalRevenueCents, currency),
	}
}
