package checkoutControllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/auth"
	cartControllers "github.com/Jatomit/UNLIMITED-TELECOM/controllers/cart"
	"github.com/Jatomit/UNLIMITED-TELECOM/middleware"
	"github.com/Jatomit/UNLIMITED-TELECOM/models"
	"github.com/Jatomit/UNLIMITED-TELECOM/notify"
	"github.com/Jatomit/UNLIMITED-TELECOM/paystack"
	"github.com/Jatomit/UNLIMITED-TELECOM/testutil"
)

const (
	jwtSecret   = "test-secret"
	paystackKey = "sk_test_checkout"
)

// fakePaystack answers initialize and verify like the real gateway.
type fakePaystack struct {
	mu          sync.Mutex
	srv         *httptest.Server
	initCalls   int
	verifyCalls int
	lastInit    paystack.InitializeRequest
	// reference -> data.status; missing references verify as "success"
	outcomes map[string]string
	refuse   bool
}

func newFakePaystack(t *testing.T) *fakePaystack {
	f := &fakePaystack{outcomes: map[string]string{}}
	f.srv = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakePaystack) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/transaction/initialize":
		f.initCalls++
		if f.refuse {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"status":false,"message":"Invalid key"}`))
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&f.lastInit)
		_, _ = fmt.Fprintf(w, `{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.test/%s","access_code":"ac","reference":%q}}`,
			f.lastInit.Reference, f.lastInit.Reference)
	case strings.HasPrefix(r.URL.Path, "/transaction/verify/"):
		f.verifyCalls++
		ref := strings.TrimPrefix(r.URL.Path, "/transaction/verify/")
		status, ok := f.outcomes[ref]
		if !ok {
			status = "success"
		}
		amount := f.lastInit.Amount
		_, _ = fmt.Fprintf(w, `{"status":true,"message":"Verification successful","data":{"status":%q,"reference":%q,"amount":%d,"currency":"NGN","gateway_response":"Declined"}}`,
			status, ref, amount)
	default:
		http.NotFound(w, r)
	}
}

func (f *fakePaystack) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initCalls, f.verifyCalls
}

func (f *fakePaystack) lastInitRequest() paystack.InitializeRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastInit
}

func (f *fakePaystack) setRefuse(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refuse = v
}

func (f *fakePaystack) setOutcome(ref, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[ref] = status
}

type recordingAnnouncer struct {
	mu     sync.Mutex
	events []notify.OrderEvent
}

func (r *recordingAnnouncer) OrderPlaced(_ context.Context, ev notify.OrderEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

type harness struct {
	t        *testing.T
	db       *gorm.DB
	gateway  *fakePaystack
	announce *recordingAnnouncer
	router   *gin.Engine
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{t: t, db: testutil.NewDB(t), gateway: newFakePaystack(t), announce: &recordingAnnouncer{}}
	svc := &Service{
		DB:       h.db,
		Gateway:  paystack.NewClient(paystackKey, h.gateway.srv.URL, 2*time.Second),
		Notifier: h.announce,
	}

	r := gin.New()
	r.Use(middleware.OptionalAuth(jwtSecret))
	r.GET("/payment/failure/", PaymentFailure)
	r.GET("/payment/success_page/", SuccessPage)
	r.POST("/payment/webhook", middleware.PaystackSignature(paystackKey), Webhook(svc))

	authed := r.Group("/", middleware.RequireAuth)
	authed.GET("/checkout/", Checkout(h.db))
	authed.GET("/initiate-payment/", InitiatePayment(svc, "http://shop.test"))
	authed.GET("/verify-payment/", VerifyPayment(svc))
	authed.GET("/payment/success/:reference/", PaymentSuccess(svc))

	h.router = r
	return h
}

func (h *harness) token(user models.User) string {
	tok, _, err := auth.IssueToken(jwtSecret, time.Hour, user)
	if err != nil {
		h.t.Fatalf("issue token: %v", err)
	}
	return tok
}

func (h *harness) get(path string, user *models.User, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+h.token(*user))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

// fillCart puts A(2 x 500) and B(1 x 1000) in the user's cart.
func (h *harness) fillCart(user models.User) {
	h.t.Helper()
	a := testutil.CreateProduct(h.t, h.db, "A", 500)
	b := testutil.CreateProduct(h.t, h.db, "B", 1000)
	cart, err := cartControllers.ResolveCart(h.db, cartControllers.Actor{UserID: &user.ID})
	if err != nil {
		h.t.Fatalf("resolve cart: %v", err)
	}
	if _, err := cartControllers.AddToCart(h.db, cart.ID, a.ID, 2, 0); err != nil {
		h.t.Fatalf("add A: %v", err)
	}
	if _, err := cartControllers.AddToCart(h.db, cart.ID, b.ID, 1, 0); err != nil {
		h.t.Fatalf("add B: %v", err)
	}
}

func (h *harness) count(model interface{}) int64 {
	var n int64
	h.db.Model(model).Count(&n)
	return n
}

func (h *harness) cartLines(userID uint) int64 {
	var n int64
	h.db.Model(&models.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("carts.user_id = ?", userID).
		Count(&n)
	return n
}
