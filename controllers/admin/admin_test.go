package adminController

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"

	"github.com/Jatomit/UNLIMITED-TELECOM/models"
	"github.com/Jatomit/UNLIMITED-TELECOM/testutil"
)

func newRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)

	r := gin.New()
	admin := r.Group("/admin")
	admin.GET("/users", ListUsers(db))
	admin.GET("/users/:id", GetUser(db))
	admin.POST("/users/verify", VerifyUsers(db))
	admin.GET("/users/:id/fund-wallet", FundWalletForm(db))
	admin.POST("/users/:id/fund-wallet", FundWalletHandler(db, decimal.NewFromInt(100000)))
	admin.GET("/providers", ListProviders(db))
	admin.POST("/providers", CreateProvider(db))
	admin.POST("/providers/deactivate", DeactivateProviders(db))
	admin.POST("/plans", CreatePlan(db))
	admin.PATCH("/plans/:id", UpdatePlan(db))
	admin.GET("/transactions", ListTransactions(db))
	admin.POST("/transactions/mark-successful", MarkTransactionsSuccessful(db))
	admin.GET("/transactions/export", ExportTransactionsToExcel(db))
	admin.POST("/airtime/retry", RetryAirtime(db))
	admin.POST("/epins/generate", GenerateEPINsHandler(db))
	admin.GET("/reports", Reports(db))
	return r, db
}

func doJSON(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createTxn(t *testing.T, db *gorm.DB, userID uint, status models.TransactionStatus, amount int64) models.Transaction {
	t.Helper()
	txn := models.Transaction{
		TransactionID:   uuid.NewString(),
		UserID:          userID,
		Amount:          decimal.NewFromInt(amount),
		TransactionType: models.TypeAirtime,
		Status:          status,
	}
	require.NoError(t, db.Create(&txn).Error)
	return txn
}

func updatedCount(t *testing.T, w *httptest.ResponseRecorder) int64 {
	t.Helper()
	var body struct {
		Updated int64 `json:"updated"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Updated
}

func TestMarkTransactionsSuccessfulIgnoresPriorStatus(t *testing.T) {
	r, db := newRouter(t)
	user := testutil.CreateUser(t, db, "ada")

	a := createTxn(t, db, user.ID, models.StatusPending, 100)
	b := createTxn(t, db, user.ID, models.StatusFailed, 200)
	c := createTxn(t, db, user.ID, models.StatusSuccessful, 300)
	other := createTxn(t, db, user.ID, models.StatusPending, 400)

	body := `{"ids":[` + strconv.Itoa(int(a.ID)) + `,` + strconv.Itoa(int(b.ID)) + `,` + strconv.Itoa(int(c.ID)) + `]}`
	w := doJSON(r, http.MethodPost, "/admin/transactions/mark-successful", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, int64(3), updatedCount(t, w))

	var statuses []models.TransactionStatus
	require.NoError(t, db.Model(&models.Transaction{}).Where("id IN ?", []uint{a.ID, b.ID, c.ID}).Pluck("status", &statuses).Error)
	assert.Equal(t, []models.TransactionStatus{models.StatusSuccessful, models.StatusSuccessful, models.StatusSuccessful}, statuses)

	var untouched models.Transaction
	require.NoError(t, db.First(&untouched, other.ID).Error)
	assert.Equal(t, models.StatusPending, untouched.Status)
}

func TestBulkActionRejectsEmptyIDs(t *testing.T) {
	r, _ := newRouter(t)

	w := doJSON(r, http.MethodPost, "/admin/transactions/mark-successful", `{"ids":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/admin/users/verify", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFundWallet(t *testing.T) {
	r, db := newRouter(t)
	user := testutil.CreateUser(t, db, "ada")
	path := "/admin/users/" + strconv.Itoa(int(user.Profile.ID)) + "/fund-wallet"

	w := doJSON(r, http.MethodPost, path, `{"amount":"2500.50"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "2,500.50")

	var wallet models.Wallet
	require.NoError(t, db.Where("profile_id = ?", user.Profile.ID).First(&wallet).Error)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("2500.50")), wallet.Balance.String())

	var txns []models.Transaction
	require.NoError(t, db.Where("user_id = ?", user.ID).Find(&txns).Error)
	require.Len(t, txns, 1)
	assert.Equal(t, models.TypeWalletFunding, txns[0].TransactionType)
	assert.Equal(t, models.StatusSuccessful, txns[0].Status)
	assert.Equal(t, "Admin wallet funding: ₦2,500.50", txns[0].Description)

	w = doJSON(r, http.MethodPost, path, `{"amount":"100"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.Where("profile_id = ?", user.Profile.ID).First(&wallet).Error)
	assert.True(t, wallet.Balance.Equal(decimal.RequireFromString("2600.50")))
}

func TestFundWalletRejections(t *testing.T) {
	r, db := newRouter(t)
	user := testutil.CreateUser(t, db, "ada")
	path := "/admin/users/" + strconv.Itoa(int(user.Profile.ID)) + "/fund-wallet"

	for _, body := range []string{`{"amount":"0"}`, `{"amount":"-5"}`, `{"amount":"abc"}`, `{"amount":"100001"}`} {
		w := doJSON(r, http.MethodPost, path, body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}

	w := doJSON(r, http.MethodPost, "/admin/users/9999/fund-wallet", `{"amount":"10"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var n int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestFundWalletForm(t *testing.T) {
	r, db := newRouter(t)
	user := testutil.CreateUser(t, db, "ada")

	w := doJSON(r, http.MethodGet, "/admin/users/"+strconv.Itoa(int(user.Profile.ID))+"/fund-wallet", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fund User Wallet")
}

func TestFormatNaira(t *testing.T) {
	assert.Equal(t, "0.00", formatNaira(decimal.Zero))
	assert.Equal(t, "999.90", formatNaira(decimal.RequireFromString("999.9")))
	assert.Equal(t, "1,000.00", formatNaira(decimal.NewFromInt(1000)))
	assert.Equal(t, "1,234,567.89", formatNaira(decimal.RequireFromString("1234567.89")))
}

func TestUsersListAndVerify(t *testing.T) {
	r, db := newRouter(t)
	ada := testutil.CreateUser(t, db, "ada")
	testutil.CreateUser(t, db, "bob")

	w := doJSON(r, http.MethodPost, "/admin/users/verify", `{"ids":[`+strconv.Itoa(int(ada.Profile.ID))+`]}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(r, http.MethodGet, "/admin/users?is_verified=true", "")
	require.Equal(t, http.StatusOK, w.Code)
	var profiles []models.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, ada.ID, profiles[0].UserID)

	w = doJSON(r, http.MethodGet, "/admin/users?q=BO", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profiles))
	require.Len(t, profiles, 1)
	assert.Equal(t, "bob", profiles[0].User.Username)

	w = doJSON(r, http.MethodGet, "/admin/users/"+strconv.Itoa(int(ada.Profile.ID)), "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"transactions":[]`)
}

func TestProvidersAndPlans(t *testing.T) {
	r, db := newRouter(t)
	user := testutil.CreateUser(t, db, "ada")

	w := doJSON(r, http.MethodPost, "/admin/providers", `{"name":"MTN Nigeria","service_type":"data"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var provider models.ServiceProvider
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &provider))
	assert.Equal(t, "mtn-nigeria", provider.Slug)
	assert.True(t, provider.IsActive)

	w = doJSON(r, http.MethodPost, "/admin/providers", `{"name":"MTN  nigeria","service_type":"data"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = doJSON(r, http.MethodPost, "/admin/providers", `{"name":"Acme","service_type":"gas"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	txn := createTxn(t, db, user.ID, models.StatusSuccessful, 100)
	require.NoError(t, db.Model(&txn).Update("service_provider_id", provider.ID).Error)

	w = doJSON(r, http.MethodGet, "/admin/providers", "")
	require.Equal(t, http.StatusOK, w.Code)
	var rows []providerRow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].TotalTransactions)

	w = doJSON(r, http.MethodPost, "/admin/plans", `{"provider_id":`+strconv.Itoa(int(provider.ID))+`,"name":"1GB","amount":"300","data_volume":"1GB","validity_days":30}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var plan models.DataPlan
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &plan))

	w = doJSON(r, http.MethodPatch, "/admin/plans/"+strconv.Itoa(int(plan.ID)), `{"amount":"350.00","is_active":false}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stored models.DataPlan
	require.NoError(t, db.First(&stored, plan.ID).Error)
	assert.True(t, stored.Amount.Equal(decimal.NewFromInt(350)))
	assert.False(t, stored.IsActive)

	w = doJSON(r, http.MethodPatch, "/admin/plans/"+strconv.Itoa(int(plan.ID)), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodPost, "/admin/providers/deactivate", `{"ids":[`+strconv.Itoa(int(provider.ID))+`]}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, db.First(&provider, provider.ID).Error)
	assert.False(t, provider.IsActive)
}

func TestRetryAirtimeOnlyTouchesFailed(t *testing.T) {
	r, db := newRouter(t)
	failed := models.AirtimeTransaction{TransactionID: "a1", UserID: 1, Network: "mtn", Amount: decimal.NewFromInt(100), Status: models.StatusFailed}
	done := models.AirtimeTransaction{TransactionID: "a2", UserID: 1, Network: "mtn", Amount: decimal.NewFromInt(100), Status: models.StatusSuccessful}
	require.NoError(t, db.Create(&failed).Error)
	require.NoError(t, db.Create(&done).Error)

	w := doJSON(r, http.MethodPost, "/admin/airtime/retry", `{"ids":[`+strconv.Itoa(int(failed.ID))+`,`+strconv.Itoa(int(done.ID))+`]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), updatedCount(t, w))

	require.NoError(t, db.First(&failed, failed.ID).Error)
	require.NoError(t, db.First(&done, done.ID).Error)
	assert.Equal(t, models.StatusPending, failed.Status)
	assert.Equal(t, models.StatusSuccessful, done.Status)
}

func TestGenerateEPINs(t *testing.T) {
	r, db := newRouter(t)
	provider := models.ServiceProvider{Name: "WAEC", Slug: "waec", ServiceType: models.ServiceEPIN, IsActive: true}
	require.NoError(t, db.Create(&provider).Error)

	w := doJSON(r, http.MethodPost, "/admin/epins/generate", `{"provider_id":`+strconv.Itoa(int(provider.ID))+`,"denomination":"500","count":25}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var pins []models.EPIN
	require.NoError(t, db.Find(&pins).Error)
	require.Len(t, pins, 25)
	seen := map[string]bool{}
	for _, p := range pins {
		assert.Regexp(t, `^[A-Z0-9]{12}$`, p.Pin)
		assert.False(t, p.IsUsed)
		assert.False(t, seen[p.Pin])
		seen[p.Pin] = true
	}

	for _, count := range []string{"0", "501"} {
		w = doJSON(r, http.MethodPost, "/admin/epins/generate", `{"provider_id":`+strconv.Itoa(int(provider.ID))+`,"denomination":"500","count":`+count+`}`)
		assert.Equal(t, http.StatusBadRequest, w.Code, count)
	}
	w = doJSON(r, http.MethodPost, "/admin/epins/generate", `{"provider_id":999,"denomination":"500","count":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBuildReport(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "ada")
	_, _, err := FundWallet(db, user.Profile.ID, decimal.NewFromInt(1000), decimal.Zero)
	require.NoError(t, err)
	createTxn(t, db, user.ID, models.StatusSuccessful, 200)
	createTxn(t, db, user.ID, models.StatusFailed, 999)

	old := createTxn(t, db, user.ID, models.StatusSuccessful, 50)
	require.NoError(t, db.Model(&old).Update("created_at", time.Now().AddDate(0, 0, -45)).Error)

	report, err := BuildReport(db, time.Now())
	require.NoError(t, err)

	require.Len(t, report.Daily, reportDays)
	today := report.Daily[reportDays-1]
	assert.Equal(t, time.Now().UTC().Format("2006-01-02"), today.Date)
	assert.Equal(t, int64(2), today.Count)
	assert.True(t, today.Amount.Equal(decimal.NewFromInt(1200)), today.Amount.String())

	totals := map[models.TransactionType]TypeTotal{}
	for _, tt := range report.ByType {
		totals[tt.TransactionType] = tt
	}
	assert.True(t, totals[models.TypeWalletFunding].Amount.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, int64(1), totals[models.TypeAirtime].Count)

	assert.Equal(t, int64(1), report.UserCount)
	assert.True(t, report.WalletTotal.Equal(decimal.NewFromInt(1000)))
}

func TestExportTransactions(t *testing.T) {
	r, db := newRouter(t)
	user := testutil.CreateUser(t, db, "ada")
	createTxn(t, db, user.ID, models.StatusSuccessful, 200)
	createTxn(t, db, user.ID, models.StatusFailed, 300)

	w := doJSON(r, http.MethodGet, "/admin/transactions/export?status=failed", "")
	require.Equal(t, http.StatusOK, w.Code)

	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	rows := file.Sheets[0].Rows
	require.Len(t, rows, 2)
	assert.Equal(t, "Status", rows[0].Cells[5].String())
	assert.Equal(t, "failed", rows[1].Cells[5].String())
	assert.Equal(t, "300.00", rows[1].Cells[6].String())
}
