// Package notify fans a freshly materialized order out to the admin live feed,
// the customer's inbox and the order event topic. Every sink is best effort:
// the order is already committed when these run.
package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
)

type OrderEvent struct {
	Type      string          `json:"type"`
	OrderID   uint            `json:"order_id"`
	UserID    uint            `json:"user_id"`
	Email     string          `json:"email,omitempty"`
	Reference string          `json:"payment_reference"`
	Total     decimal.Decimal `json:"total_price"`
	Items     []OrderLine     `json:"items"`
	CreatedAt time.Time       `json:"created_at"`
}

type OrderLine struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

func NewOrderEvent(order models.Order, email string) OrderEvent {
	ev := OrderEvent{
		Type:      "order.placed",
		OrderID:   order.ID,
		UserID:    order.UserID,
		Email:     email,
		Reference: order.PaymentReference,
		Total:     order.TotalPrice,
		CreatedAt: order.CreatedAt,
	}
	for _, it := range order.Items {
		ev.Items = append(ev.Items, OrderLine{
			ProductID: it.ProductID,
			Name:      it.ProductName,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}
	return ev
}

type OrderNotifier interface {
	Name() string
	OrderPlaced(ctx context.Context, ev OrderEvent) error
}

// Fanout delivers to every sink and logs failures instead of returning them.
type Fanout []OrderNotifier

func (f Fanout) OrderPlaced(ctx context.Context, ev OrderEvent) {
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.OrderPlaced(ctx, ev); err != nil {
			zap.L().Warn("order notification failed",
				zap.String("sink", n.Name()),
				zap.Uint("order_id", ev.OrderID),
				zap.Error(err))
		}
	}
}
