package checkoutControllers

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cartControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/cart"
	"github.com/Jatomit/UNLIMITED-TELECOM/models"
	"github.com/Jatomit/UNLIMITED-TELECOM/testutil"
)

type verifyBody struct {
	Order            models.Order `json:"order"`
	AlreadyProcessed bool         `json:"already_processed"`
}

func (h *harness) initiate(user models.User) models.CheckoutSession {
	h.t.Helper()
	w := h.get("/initiate-payment/", &user)
	require.Equal(h.t, http.StatusFound, w.Code, w.Body.String())

	var session models.CheckoutSession
	require.NoError(h.t, h.db.Where("user_id = ? AND status = ?", user.ID, models.CheckoutPending).First(&session).Error)
	assert.Equal(h.t, session.AuthorizationURL, w.Header().Get("Location"))
	return session
}

func TestCheckoutScenarioSendsKoboAndFinalizesOnce(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")
	h.fillCart(user)

	session := h.initiate(user)
	sent := h.gateway.lastInitRequest()
	assert.Equal(t, int64(200000), sent.Amount)
	assert.Equal(t, "ada@example.com", sent.Email)
	assert.Equal(t, "http://shop.test/verify-payment/", sent.CallbackURL)
	assert.True(t, session.Amount.Equal(decimal.NewFromInt(2000)))

	w := h.get("/verify-payment/?reference="+session.Reference, &user)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var first verifyBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.False(t, first.AlreadyProcessed)
	assert.True(t, first.Order.IsPaid)
	assert.Equal(t, session.Reference, first.Order.PaymentReference)

	sum := decimal.Zero
	for _, it := range first.Order.Items {
		sum = sum.Add(it.LineTotal())
	}
	assert.True(t, sum.Equal(decimal.NewFromInt(2000)), sum.String())
	assert.True(t, first.Order.TotalPrice.Equal(decimal.NewFromInt(2000)))
	assert.Zero(t, h.cartLines(user.ID))
	assert.Len(t, h.announce.events, 1)

	var stored models.CheckoutSession
	require.NoError(t, h.db.First(&stored, session.ID).Error)
	assert.Equal(t, models.CheckoutConfirmed, stored.Status)
	require.NotNil(t, stored.OrderID)
	assert.Equal(t, first.Order.ID, *stored.OrderID)

	_, verifiesBefore := h.gateway.calls()
	w = h.get("/verify-payment/?reference="+session.Reference, &user)
	require.Equal(t, http.StatusOK, w.Code)
	var second verifyBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.True(t, second.AlreadyProcessed)
	assert.Equal(t, first.Order.ID, second.Order.ID)

	_, verifiesAfter := h.gateway.calls()
	assert.Equal(t, verifiesBefore, verifiesAfter)
	assert.Equal(t, int64(1), h.count(&models.Order{}))
	assert.Len(t, h.announce.events, 1)
}

func TestInitiateRequiresLogin(t *testing.T) {
	h := newHarness(t)
	w := h.get("/initiate-payment/", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "/accounts/login/")
}

func TestInitiateWithEmptyCartRedirectsHome(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")

	w := h.get("/initiate-payment/", &user)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	initCalls, _ := h.gateway.calls()
	assert.Zero(t, initCalls)

	w = h.get("/checkout/", &user)
	assert.Equal(t, http.StatusSeeOther, w.Code)
}

func TestInitiateGatewayRefusal(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")
	h.fillCart(user)
	h.gateway.setRefuse(true)

	w := h.get("/initiate-payment/", &user)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid key")
	assert.Zero(t, h.count(&models.CheckoutSession{}))
}

func TestInitiateGatewayDown(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")
	h.fillCart(user)
	h.gateway.srv.Close()

	w := h.get("/initiate-payment/", &user)
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.NotContains(t, w.Body.String(), "127.0.0.1")
	assert.Equal(t, int64(2), h.cartLines(user.ID))
}

func TestNewInitiationClearsOlderSessions(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")
	h.fillCart(user)

	first := h.initiate(user)
	second := h.initiate(user)
	assert.NotEqual(t, first.Reference, second.Reference)

	var old models.CheckoutSession
	require.NoError(t, h.db.First(&old, first.ID).Error)
	assert.Equal(t, models.CheckoutCleared, old.Status)
}

func TestIdempotencyKeyReusesSession(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")
	h.fillCart(user)

	w1 := h.get("/initiate-payment/", &user, "Idempotency-Key", "k-1")
	w2 := h.get("/initiate-payment/", &user, "Idempotency-Key", "k-1")
	require.Equal(t, http.StatusFound, w1.Code)
	require.Equal(t, http.StatusFound, w2.Code)
	assert.Equal(t, w1.Header().Get("Location"), w2.Header().Get("Location"))

	initCalls, _ := h.gateway.calls()
	assert.Equal(t, 1, initCalls)
	assert.Equal(t, int64(1), h.count(&models.CheckoutSession{}))
}

func TestVerifyUnknownReferenceSkipsGateway(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")

	w := h.get("/verify-payment/?reference=nope", &user)
	assert.Equal(t, http.StatusNotFound, w.Code)
	_, verifies := h.gateway.calls()
	assert.Zero(t, verifies)
}

func TestVerifyForeignReferenceIsUnknown(t *testing.T) {
	h := newHarness(t)
	owner := testutil.CreateUser(t, h.db, "ada")
	other := testutil.CreateUser(t, h.db, "bob")
	h.fillCart(owner)
	session := h.initiate(owner)

	w := h.get("/verify-payment/?reference="+session.Reference, &other)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Zero(t, h.count(&models.Order{}))
}

func TestVerifyWithoutReferenceOrSession(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")

	w := h.get("/verify-payment/", &user)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/payment/failure/", w.Header().Get("Location"))

	w = h.get("/payment/failure/", nil)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestVerifyFallsBackToOpenSession(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")
	h.fillCart(user)
	h.initiate(user)

	w := h.get("/verify-payment/", &user)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(1), h.count(&models.Order{}))
}

func TestFailedPaymentKeepsCartAndCanBeRetried(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")
	h.fillCart(user)
	session := h.initiate(user)
	h.gateway.setOutcome(session.Reference, "failed")

	w := h.get("/verify-payment/?reference="+session.Reference, &user)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Equal(t, int64(2), h.cartLines(user.ID))
	assert.Zero(t, h.count(&models.Order{}))

	var stored models.CheckoutSession
	require.NoError(t, h.db.First(&stored, session.ID).Error)
	assert.Equal(t, models.CheckoutFailed, stored.Status)
	assert.Equal(t, "Declined", stored.GatewayMessage)

	h.gateway.setOutcome(session.Reference, "success")
	w = h.get("/payment/success/"+session.Reference+"/", &user)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(1), h.count(&models.Order{}))
}

func TestVerifyRejectsPaymentBelowGrownCart(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")
	h.fillCart(user)
	session := h.initiate(user)
	require.Equal(t, int64(200000), h.gateway.lastInitRequest().Amount)

	// The cart grows after the payment amount was fixed.
	extra := testutil.CreateProduct(t, h.db, "C", 100000)
	cart, err := cartControllers.ResolveCart(h.db, cartControllers.Actor{UserID: &user.ID})
	require.NoError(t, err)
	_, err = cartControllers.AddToCart(h.db, cart.ID, extra.ID, 1, 0)
	require.NoError(t, err)

	w := h.get("/verify-payment/?reference="+session.Reference, &user)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), ErrAmountMismatch.Error())
	assert.Zero(t, h.count(&models.Order{}))
	assert.Equal(t, int64(3), h.cartLines(user.ID))
	assert.Empty(t, h.announce.events)

	var stored models.CheckoutSession
	require.NoError(t, h.db.First(&stored, session.ID).Error)
	assert.Equal(t, models.CheckoutFailed, stored.Status)
	assert.Nil(t, stored.OrderID)
	assert.Equal(t, ErrAmountMismatch.Error(), stored.GatewayMessage)

	var product models.Product
	require.NoError(t, h.db.First(&product, extra.ID).Error)
	assert.Equal(t, extra.Stock, product.Stock)
}

func TestFinalizeOrderRejectsShortfallAcceptsOverpayment(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "ada")
	p := testutil.CreateProduct(t, db, "A", 500)
	cart, err := cartControllers.ResolveCart(db, cartControllers.Actor{UserID: &user.ID})
	require.NoError(t, err)
	_, err = cartControllers.AddToCart(db, cart.ID, p.ID, 2, 0)
	require.NoError(t, err)

	session := models.CheckoutSession{UserID: user.ID, Reference: "ref-short", Amount: decimal.NewFromInt(1000), AmountKobo: 100000, Status: models.CheckoutPending}
	require.NoError(t, db.Create(&session).Error)

	_, err = FinalizeOrder(db, session.ID, 99999)
	assert.ErrorIs(t, err, ErrAmountMismatch)

	res, err := FinalizeOrder(db, session.ID, 100050)
	require.NoError(t, err)
	assert.True(t, res.Order.TotalPrice.Equal(decimal.NewFromInt(1000)))
	assert.True(t, res.Order.AmountPaid.Equal(decimal.RequireFromString("1000.50")), res.Order.AmountPaid.String())
}

func TestNotifyContextOutlivesRequest(t *testing.T) {
	type key struct{}
	parent, cancel := context.WithCancel(context.WithValue(context.Background(), key{}, "req-1"))
	cancel()

	ctx, stop := notifyContext(parent)
	defer stop()
	assert.NoError(t, ctx.Err())
	assert.Equal(t, "req-1", ctx.Value(key{}))
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(notifyTimeout), deadline, time.Second)
}

func TestVerifyGatewayDownLeavesState(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")
	h.fillCart(user)
	session := h.initiate(user)
	h.gateway.srv.Close()

	w := h.get("/verify-payment/?reference="+session.Reference, &user)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	var stored models.CheckoutSession
	require.NoError(t, h.db.First(&stored, session.ID).Error)
	assert.Equal(t, models.CheckoutPending, stored.Status)
	assert.Equal(t, int64(2), h.cartLines(user.ID))
}

func TestFinalizeOrderWithEmptyCartCreatesNothing(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "ada")
	session := models.CheckoutSession{UserID: user.ID, Reference: "ref-empty", Amount: decimal.NewFromInt(1), AmountKobo: 100, Status: models.CheckoutPending}
	require.NoError(t, db.Create(&session).Error)

	_, err := FinalizeOrder(db, session.ID, 100)
	assert.ErrorIs(t, err, ErrEmptyCart)

	var orders int64
	db.Model(&models.Order{}).Count(&orders)
	assert.Zero(t, orders)
}

func sign(body string) string {
	mac := hmac.New(sha512.New, []byte(paystackKey))
	mac.Write([]byte(body))
	return hex.EncodeToString(mac.Sum(nil))
}

func (h *harness) webhook(body, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payment/webhook", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-paystack-signature", signature)
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	h := newHarness(t)
	w := h.webhook(`{"event":"charge.success","data":{"reference":"x"}}`, "deadbeef")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestWebhookFinalizesIdempotently(t *testing.T) {
	h := newHarness(t)
	user := testutil.CreateUser(t, h.db, "ada")
	h.fillCart(user)
	session := h.initiate(user)

	body := `{"event":"charge.success","data":{"status":"success","reference":"` + session.Reference + `","amount":200000}}`
	w := h.webhook(body, sign(body))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(1), h.count(&models.Order{}))

	w = h.webhook(body, sign(body))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"already_processed":true`)
	assert.Equal(t, int64(1), h.count(&models.Order{}))

	// The browser callback after the webhook sees the same order.
	w = h.get("/verify-payment/?reference="+session.Reference, &user)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"already_processed":true`)
}

func TestWebhookUnknownReferenceIsAcknowledged(t *testing.T) {
	h := newHarness(t)
	body := `{"event":"charge.success","data":{"status":"success","reference":"ghost"}}`
	w := h.webhook(body, sign(body))
	assert.Equal(t, http.StatusOK, w.Code)

	other := `{"event":"transfer.success","data":{}}`
	w = h.webhook(other, sign(other))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ignored")
}
