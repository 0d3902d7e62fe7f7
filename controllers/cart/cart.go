package cartControllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Jatomit/UNLIMITED-TELECOM/middleware"
	"github.com/Jatomit/UNLIMITED-TELECOM/models"
	"github.com/Jatomit/UNLIMITED-TELECOM/paystack"
)

// Actor owns a cart: a signed-in user or, failing that, an anonymous session.
type Actor struct {
	UserID     *uint
	SessionKey string
}

func (a Actor) Authenticated() bool { return a.UserID != nil }

// ActorFrom reads the actor off the request. With createSession, an anonymous
// request without a session key gets one.
func ActorFrom(c *gin.Context, createSession bool) Actor {
	if id, ok := middleware.UserID(c); ok {
		return Actor{UserID: &id}
	}
	if createSession {
		return Actor{SessionKey: middleware.EnsureSessionKey(c)}
	}
	return Actor{SessionKey: middleware.SessionKey(c)}
}

// -------- Core Logic --------

// ResolveCart returns the actor's cart, creating it if needed. The insert is
// ON CONFLICT DO NOTHING against the unique owner index, so racing callers end
// up reading the same row.
func ResolveCart(db *gorm.DB, actor Actor) (*models.Cart, error) {
	var cart models.Cart
	var where *gorm.DB

	switch {
	case actor.UserID != nil:
		cart = models.Cart{UserID: actor.UserID}
		where = db.Where("user_id = ?", *actor.UserID)
	case actor.SessionKey != "":
		key := actor.SessionKey
		cart = models.Cart{SessionKey: &key}
		where = db.Where("session_key = ?", key)
	default:
		return nil, ErrNoIdentity
	}

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&cart).Error; err != nil {
		return nil, fmt.Errorf("create cart: %w", err)
	}

	var stored models.Cart
	if err := where.First(&stored).Error; err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return &stored, nil
}

// LoadItems returns the cart lines with their live products.
func LoadItems(db *gorm.DB, cartID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	err := db.Preload("Product").Where("cart_id = ?", cartID).Order("id ASC").Find(&items).Error
	return items, err
}

// AddToCart adds quantity of product to the cart, incrementing an existing line.
// maxLine > 0 caps the resulting line quantity.
func AddToCart(db *gorm.DB, cartID, productID uint, quantity, maxLine int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}

	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("validate product: %w", err)
	}

	var item models.CartItem
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := upsertLine(tx, cartID, productID, quantity); err != nil {
			return err
		}

		if err := tx.Preload("Product").
			Where("cart_id = ? AND product_id = ?", cartID, productID).
			First(&item).Error; err != nil {
			return err
		}
		if maxLine > 0 && item.Quantity > maxLine {
			return ErrQuantityLimit
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrQuantityLimit) {
			return nil, err
		}
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	return &item, nil
}

// upsertLine inserts the line or adds quantity to the existing one in a single statement.
func upsertLine(tx *gorm.DB, cartID, productID uint, quantity int) error {
	now := time.Now()
	row := models.CartItem{CartID: cartID, ProductID: productID, Quantity: quantity, AddedAt: now}
	return tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("cart_items.quantity + excluded.quantity"),
			"added_at": now,
		}),
	}).Create(&row).Error
}

func RemoveItem(db *gorm.DB, cartID, productID uint) error {
	result := db.Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrItemNotFound
	}
	return nil
}

func Clear(db *gorm.DB, cartID uint) error {
	return db.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

func Total(items []models.CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal())
	}
	return total
}

// -------- Views --------

type Line struct {
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

type Summary struct {
	ID        uint            `json:"id"`
	Items     []Line          `json:"items"`
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total_price"`
	TotalKobo int64           `json:"total_price_in_kobo"`
}

func Summarize(cart *models.Cart, items []models.CartItem) Summary {
	s := Summary{ID: cart.ID, Items: []Line{}, Total: Total(items)}
	for _, it := range items {
		s.Items = append(s.Items, Line{
			ProductID: it.ProductID,
			Name:      it.Product.Name,
			Price:     it.Product.Price,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
		})
		s.ItemCount += it.Quantity
	}
	s.TotalKobo = paystack.ToKobo(s.Total)
	return s
}

// -------- Handlers --------

// GET /cart/
func CartDetail(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		cart, err := ResolveCart(db, ActorFrom(c, true))
		if err != nil {
			zap.L().Error("resolve cart", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		items, err := LoadItems(db, cart.ID)
		if err != nil {
			zap.L().Error("load cart items", zap.Uint("cart_id", cart.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}
		c.JSON(http.StatusOK, Summarize(cart, items))
	}
}

type addInput struct {
	Quantity *int `form:"quantity" json:"quantity"`
}

// POST /cart/add/:product_id/
func AddToCartHandler(db *gorm.DB, maxLine int) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product_id"})
			return
		}

		var in addInput
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBind(&in); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
				return
			}
		}
		quantity := 1
		if in.Quantity != nil {
			quantity = *in.Quantity
		}

		cart, err := ResolveCart(db, ActorFrom(c, true))
		if err != nil {
			zap.L().Error("resolve cart", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
			return
		}

		item, err := AddToCart(db, cart.ID, uint(productID), quantity, maxLine)
		if err != nil {
			respondError(c, err, "Failed to add item to cart")
			return
		}

		if WantsJSON(c) {
			c.JSON(http.StatusOK, item)
			return
		}
		c.Redirect(http.StatusSeeOther, "/cart/")
	}
}

// DELETE /cart/items/:product_id/
func RemoveItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product_id"})
			return
		}
		actor := ActorFrom(c, false)
		if !actor.Authenticated() && actor.SessionKey == "" {
			c.JSON(http.StatusNotFound, gin.H{"error": ErrItemNotFound.Error()})
			return
		}
		cart, err := ResolveCart(db, actor)
		if err != nil {
			respondError(c, err, "Failed to fetch cart")
			return
		}
		if err := RemoveItem(db, cart.ID, uint(productID)); err != nil {
			respondError(c, err, "Failed to delete item")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart item deleted"})
	}
}

// DELETE /cart/
func ClearHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c, false)
		if !actor.Authenticated() && actor.SessionKey == "" {
			c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
			return
		}
		cart, err := ResolveCart(db, actor)
		if err != nil {
			respondError(c, err, "Failed to fetch cart")
			return
		}
		if err := Clear(db, cart.ID); err != nil {
			respondError(c, err, "Failed to clear cart")
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Cart cleared"})
	}
}

// WantsJSON is true for API clients; browsers get redirects.
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

func respondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrProductNotFound), errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrQuantityLimit):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		zap.L().Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
