package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type CheckoutStatus string

const (
	CheckoutPending   CheckoutStatus = "pending"   // Gateway session opened, not yet verified
	CheckoutConfirmed CheckoutStatus = "confirmed" // Gateway reported success, order materialized
	CheckoutFailed    CheckoutStatus = "failed"    // Gateway reported a non-success result; may be re-verified
	CheckoutCleared   CheckoutStatus = "cleared"   // Superseded by a newer checkout
)

// Order is written once, after the gateway confirms payment.
type Order struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           uint            `gorm:"not null;index" json:"user_id"`
	User             User            `json:"-"`
	Items            []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalPrice       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"total_price"`
	AmountPaid       decimal.Decimal `gorm:"type:numeric(14,2)" json:"amount_paid"`
	IsPaid           bool            `gorm:"not null;default:false" json:"is_paid"`
	PaymentReference string          `gorm:"uniqueIndex;size:100;not null" json:"payment_reference"`
	CreatedAt        time.Time       `json:"created_at"`
}

// OrderItem snapshots the product price at purchase time.
type OrderItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"index" json:"order_id"`
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Price       decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Quantity    int             `gorm:"not null" json:"quantity"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CheckoutSession tracks one gateway payment attempt for a user.
type CheckoutSession struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	UserID           uint            `gorm:"not null;index;uniqueIndex:idx_checkout_idem" json:"user_id"`
	Reference        string          `gorm:"uniqueIndex;size:100;not null" json:"reference"`
	IdempotencyKey   *string         `gorm:"uniqueIndex:idx_checkout_idem;size:100" json:"-"`
	AuthorizationURL string          `json:"authorization_url"`
	Amount           decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	AmountKobo       int64           `gorm:"not null" json:"amount_kobo"`
	Status           CheckoutStatus  `gorm:"type:VARCHAR(20);default:'pending';index" json:"status"`
	GatewayMessage   string          `json:"gateway_message,omitempty"`
	OrderID          *uint           `json:"order_id,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
