package checkoutControllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cartControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/cart"
	"github.com/Jatomit/UNLIMITED-TELECOM/models"
	"github.com/Jatomit/UNLIMITED-TELECOM/notify"
	"github.com/Jatomit/UNLIMITED-TELECOM/paystack"
)

const notifyTimeout = 15 * time.Second

// Gateway is the part of the Paystack client checkout needs.
type Gateway interface {
	Initialize(ctx context.Context, in paystack.InitializeRequest) (*paystack.InitializeResult, error)
	Verify(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

// Announcer receives each newly placed order. notify.Fanout satisfies it.
type Announcer interface {
	OrderPlaced(ctx context.Context, ev notify.OrderEvent)
}

type Service struct {
	DB       *gorm.DB
	Gateway  Gateway
	Notifier Announcer
}

// Result of a verification. AlreadyProcessed means the order existed before this call.
type Result struct {
	Order            *models.Order
	AlreadyProcessed bool
}

// -------- Initiation --------

// StartPayment opens a gateway transaction for the user's cart and records it
// as the user's only pending checkout. A repeated idempotencyKey returns the
// pending session without calling the gateway.
func (s *Service) StartPayment(ctx context.Context, user models.User, callbackURL, idempotencyKey string) (*models.CheckoutSession, bool, error) {
	if idempotencyKey != "" {
		var existing models.CheckoutSession
		err := s.DB.Where("user_id = ? AND idempotency_key = ?", user.ID, idempotencyKey).First(&existing).Error
		switch {
		case err == nil && existing.Status == models.CheckoutPending:
			return &existing, true, nil
		case err == nil:
			return nil, false, ErrIdempotencyKeyUsed
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, false, fmt.Errorf("lookup idempotency key: %w", err)
		}
	}

	cart, err := cartControllers.ResolveCart(s.DB, cartControllers.Actor{UserID: &user.ID})
	if err != nil {
		return nil, false, err
	}
	items, err := cartControllers.LoadItems(s.DB, cart.ID)
	if err != nil {
		return nil, false, fmt.Errorf("load cart items: %w", err)
	}
	if len(items) == 0 {
		return nil, false, ErrEmptyCart
	}
	total := cartControllers.Total(items)
	kobo := paystack.ToKobo(total)
	if kobo <= 0 {
		return nil, false, ErrNothingToPay
	}
	if user.Email == "" {
		return nil, false, ErrMissingEmail
	}

	reference := paystack.NewReference()
	res, err := s.Gateway.Initialize(ctx, paystack.InitializeRequest{
		Email:       user.Email,
		Amount:      kobo,
		CallbackURL: callbackURL,
		Reference:   reference,
		Metadata: map[string]any{
			"user_id": user.ID,
			"cart_id": cart.ID,
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("initialize payment: %w", err)
	}
	if res.Reference != "" {
		reference = res.Reference
	}

	session := models.CheckoutSession{
		UserID:           user.ID,
		Reference:        reference,
		AuthorizationURL: res.AuthorizationURL,
		Amount:           total,
		AmountKobo:       kobo,
		Status:           models.CheckoutPending,
	}
	if idempotencyKey != "" {
		session.IdempotencyKey = &idempotencyKey
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.CheckoutSession{}).
			Where("user_id = ? AND status IN ?", user.ID, []models.CheckoutStatus{models.CheckoutPending, models.CheckoutFailed}).
			Update("status", models.CheckoutCleared).Error; err != nil {
			return err
		}
		return tx.Create(&session).Error
	})
	if err != nil {
		return nil, false, fmt.Errorf("record checkout session: %w", err)
	}

	zap.L().Info("payment initiated",
		zap.Uint("user_id", user.ID),
		zap.String("reference", session.Reference),
		zap.Int64("amount_kobo", kobo),
	)
	return &session, false, nil
}

// -------- Verification --------

// LatestOpenReference is the fallback reference when the callback carries none.
func (s *Service) LatestOpenReference(userID uint) (string, error) {
	var session models.CheckoutSession
	err := s.DB.Where("user_id = ? AND status IN ?", userID, []models.CheckoutStatus{models.CheckoutPending, models.CheckoutFailed}).
		Order("created_at DESC, id DESC").First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	return session.Reference, err
}

// Verify asks the gateway for the final state of reference and, on success,
// turns the user's cart into an order exactly once.
func (s *Service) Verify(ctx context.Context, userID uint, reference string) (*Result, error) {
	var session models.CheckoutSession
	if err := s.DB.Where("reference = ?", reference).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownReference
		}
		return nil, err
	}
	if session.UserID != userID {
		return nil, ErrUnknownReference
	}
	if session.Status == models.CheckoutConfirmed && session.OrderID != nil {
		order, err := s.loadOrder(s.DB, *session.OrderID)
		if err != nil {
			return nil, err
		}
		return &Result{Order: order, AlreadyProcessed: true}, nil
	}

	v, err := s.Gateway.Verify(ctx, reference)
	if err != nil {
		var apiErr *paystack.APIError
		if errors.As(err, &apiErr) {
			s.markFailed(session.ID, apiErr.Message)
			return nil, fmt.Errorf("%w: %s", ErrPaymentNotSuccessful, apiErr.Message)
		}
		return nil, fmt.Errorf("verify payment: %w", err)
	}
	if !v.Successful() {
		msg := v.GatewayResponse
		if msg == "" {
			msg = v.Status
		}
		s.markFailed(session.ID, msg)
		return nil, fmt.Errorf("%w: %s", ErrPaymentNotSuccessful, msg)
	}
	if v.Amount != session.AmountKobo {
		zap.L().Warn("paid amount differs from checkout amount",
			zap.String("reference", reference),
			zap.Int64("expected_kobo", session.AmountKobo),
			zap.Int64("paid_kobo", v.Amount),
		)
	}

	res, err := FinalizeOrder(s.DB, session.ID, v.Amount)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyCart):
			zap.L().Error("payment confirmed but cart is empty", zap.String("reference", reference), zap.Uint("user_id", userID))
		case errors.Is(err, ErrAmountMismatch):
			zap.L().Error("payment does not cover cart total",
				zap.String("reference", reference),
				zap.Uint("user_id", userID),
				zap.Int64("paid_kobo", v.Amount),
			)
			s.markFailed(session.ID, ErrAmountMismatch.Error())
		}
		return nil, err
	}
	if !res.AlreadyProcessed {
		s.announce(ctx, *res.Order)
	}
	return res, nil
}

// FinalizeOrder materializes the order for a confirmed checkout session in one
// transaction. Calling it again for the same session returns the same order.
// paidKobo must cover the cart as it stands inside the transaction, otherwise
// ErrAmountMismatch is returned and nothing is written.
func FinalizeOrder(db *gorm.DB, sessionID uint, paidKobo int64) (*Result, error) {
	var result Result
	err := db.Transaction(func(tx *gorm.DB) error {
		var session models.CheckoutSession
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, sessionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownReference
			}
			return err
		}

		if session.Status == models.CheckoutConfirmed && session.OrderID != nil {
			var order models.Order
			if err := tx.Preload("Items").First(&order, *session.OrderID).Error; err != nil {
				return err
			}
			result = Result{Order: &order, AlreadyProcessed: true}
			return nil
		}

		var cart models.Cart
		if err := tx.Where("user_id = ?", session.UserID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEmptyCart
			}
			return err
		}
		items, err := cartControllers.LoadItems(tx, cart.ID)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return ErrEmptyCart
		}
		total := cartControllers.Total(items)
		if paidKobo < paystack.ToKobo(total) {
			return ErrAmountMismatch
		}

		order := models.Order{
			UserID:           session.UserID,
			TotalPrice:       total,
			AmountPaid:       paystack.FromKobo(paidKobo),
			IsPaid:           true,
			PaymentReference: session.Reference,
		}
		for _, it := range items {
			order.Items = append(order.Items, models.OrderItem{
				ProductID:   it.ProductID,
				ProductName: it.Product.Name,
				Price:       it.Product.Price,
				Quantity:    it.Quantity,
			})
		}
		if err := tx.Omit("User").Create(&order).Error; err != nil {
			return err
		}

		// Stock is advisory for VTU goods: it never blocks a paid order.
		for _, it := range items {
			if err := tx.Model(&models.Product{}).Where("id = ?", it.ProductID).
				Update("stock", gorm.Expr("CASE WHEN stock >= ? THEN stock - ? ELSE 0 END", it.Quantity, it.Quantity)).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}

		if err := tx.Model(&session).Updates(map[string]interface{}{
			"status":          models.CheckoutConfirmed,
			"order_id":        order.ID,
			"gateway_message": "",
		}).Error; err != nil {
			return err
		}

		result = Result{Order: &order}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !result.AlreadyProcessed {
		zap.L().Info("order placed",
			zap.Uint("order_id", result.Order.ID),
			zap.Uint("user_id", result.Order.UserID),
			zap.String("reference", result.Order.PaymentReference),
			zap.String("amount", result.Order.TotalPrice.StringFixed(2)),
		)
	}
	return &result, nil
}

func (s *Service) loadOrder(db *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Items").First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// markFailed records a non-success result. A confirmed session is never downgraded.
func (s *Service) markFailed(sessionID uint, message string) {
	err := s.DB.Model(&models.CheckoutSession{}).
		Where("id = ? AND status <> ?", sessionID, models.CheckoutConfirmed).
		Updates(map[string]interface{}{"status": models.CheckoutFailed, "gateway_message": message}).Error
	if err != nil {
		zap.L().Error("mark checkout failed", zap.Uint("session_id", sessionID), zap.Error(err))
	}
}

func (s *Service) announce(ctx context.Context, order models.Order) {
	if s.Notifier == nil {
		return
	}
	var user models.User
	if err := s.DB.Select("id", "email").First(&user, order.UserID).Error; err != nil {
		zap.L().Warn("load order owner", zap.Uint("order_id", order.ID), zap.Error(err))
	}
	ctx, cancel := notifyContext(ctx)
	defer cancel()
	s.Notifier.OrderPlaced(ctx, notify.NewOrderEvent(order, user.Email))
}

// notifyContext keeps the request's values but not its cancellation.
func notifyContext(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), notifyTimeout)
}
