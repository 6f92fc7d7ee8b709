package http

import (
	"context"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"empowerment-loans-api/internal/adapter/repository/mysql"
	"empowerment-loans-api/internal/gateway/daraja"
	"empowerment-loans-api/internal/testutil/gatewaymock"
	appUC "empowerment-loans-api/internal/usecase/application"
	paymentUC "empowerment-loans-api/internal/usecase/payment"
	reconcileUC "empowerment-loans-api/internal/usecase/reconcile"

	"github.com/labstack/echo/v4"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLite-friendly schema for the full-flow test (no ENUM columns).
type loanApplicationSQLite struct {
	ID                uint64    `gorm:"primaryKey;column:id"`
	ApplicationID     string    `gorm:"size:32;column:application_id;uniqueIndex"`
	FirstName         string    `gorm:"column:first_name"`
	LastName          string    `gorm:"column:last_name"`
	Email             string    `gorm:"column:email"`
	Phone             string    `gorm:"column:phone"`
	Amount            int64     `gorm:"column:amount"`
	Purpose           string    `gorm:"column:purpose"`
	PaymentStatus     string    `gorm:"type:text;column:payment_status"`
	PaymentReference  *string   `gorm:"column:payment_reference;uniqueIndex"`
	MerchantRequestID string    `gorm:"column:merchant_request_id"`
	Status            string    `gorm:"type:text;column:status"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (loanApplicationSQLite) TableName() string { return "loan_applications" }

type scenarioApp struct {
	e  *echo.Echo
	gw *gatewaymock.Gateway
}

func newScenarioApp(t *testing.T) *scenarioApp {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&loanApplicationSQLite{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}

	repo := mysql.NewApplicationRepository(db)
	tx := mysql.NewGormUoW(db)
	gw := &gatewaymock.Gateway{}

	appHandler := NewApplicationHandler(appUC.NewUsecase(repo))
	payHandler := NewPaymentHandler(
		paymentUC.NewUsecase(repo, tx, gw),
		reconcileUC.NewUsecase(tx),
	)

	e := newEchoWithValidator()
	e.POST("/api/submit-application", appHandler.SubmitApplication)
	e.GET("/api/applications/:application_id", appHandler.GetApplication)
	e.POST("/initiate-payment", payHandler.InitiatePayment)
	e.POST("/api/mpesa/callback", payHandler.MpesaCallback)

	return &scenarioApp{e: e, gw: gw}
}

func (s *scenarioApp) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *stdhttp.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// Full submit → initiate → callback → lookup flow against a real repository
// and unit of work, with only the provider faked.
func TestApplicationPaymentFlow(t *testing.T) {
	s := newScenarioApp(t)

	var gotPhone string
	var gotAmount int64
	s.gw.InitiateSTKPushFn = func(ctx context.Context, phone string, amount int64, ref, desc string) (*daraja.STKPushResult, error) {
		gotPhone, gotAmount = phone, amount
		return &daraja.STKPushResult{
			MerchantRequestID: "merch-1",
			CheckoutRequestID: "ws_CO_flow_1",
			ResponseCode:      "0",
		}, nil
	}

	// 1. submit
	rec := s.do(t, stdhttp.MethodPost, "/api/submit-application",
		`{"firstName":"Ann","lastName":"Doe","email":"a@x.com","phone":"712345678","amount":5000,"purpose":"school"}`)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("submit status = %d (body=%s)", rec.Code, rec.Body.String())
	}
	var submitted struct {
		ApplicationID string `json:"applicationId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &submitted); err != nil {
		t.Fatalf("submit json: %v", err)
	}
	if len(submitted.ApplicationID) != 32 {
		t.Fatalf("applicationId = %q", submitted.ApplicationID)
	}

	// 2. initiate payment; the provider must see the normalized phone
	rec = s.do(t, stdhttp.MethodPost, "/initiate-payment",
		`{"applicationId":"`+submitted.ApplicationID+`","phoneNumber":"712345678"}`)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("initiate status = %d (body=%s)", rec.Code, rec.Body.String())
	}
	if gotPhone != "254712345678" {
		t.Errorf("gateway phone = %q, want 254712345678", gotPhone)
	}
	if gotAmount != 5000 {
		t.Errorf("gateway amount = %d, want 5000", gotAmount)
	}

	// 3. provider reports success
	rec = s.do(t, stdhttp.MethodPost, "/api/mpesa/callback",
		`{"Body":{"stkCallback":{"MerchantRequestID":"merch-1","CheckoutRequestID":"ws_CO_flow_1","ResultCode":0,"ResultDesc":"The service request is processed successfully."}}}`)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("callback status = %d (body=%s)", rec.Code, rec.Body.String())
	}

	// 4. the application is now paid and approved
	rec = s.do(t, stdhttp.MethodGet, "/api/applications/"+submitted.ApplicationID, "")
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("get status = %d (body=%s)", rec.Code, rec.Body.String())
	}
	var got appUC.ApplicationDTO
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("get json: %v", err)
	}
	if got.PaymentStatus != "completed" || got.Status != "approved" {
		t.Fatalf("final state = %s/%s, want completed/approved", got.PaymentStatus, got.Status)
	}
	// submitted phone is stored untouched
	if got.Phone != "712345678" {
		t.Errorf("stored phone = %q", got.Phone)
	}
}

// A failed provider result leaves the application retryable: payment failed,
// application still submitted, and a later successful attempt completes it.
func TestApplicationPaymentFlow_FailureThenRetry(t *testing.T) {
	s := newScenarioApp(t)

	ref := "ws_CO_try_1"
	s.gw.InitiateSTKPushFn = func(ctx context.Context, phone string, amount int64, accountRef, desc string) (*daraja.STKPushResult, error) {
		return &daraja.STKPushResult{MerchantRequestID: "merch-2", CheckoutRequestID: ref}, nil
	}

	rec := s.do(t, stdhttp.MethodPost, "/api/submit-application",
		`{"firstName":"Ben","lastName":"Otieno","email":"b@x.com","phone":"254700000001","amount":2500,"purpose":"inventory"}`)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("submit status = %d", rec.Code)
	}
	var submitted struct {
		ApplicationID string `json:"applicationId"`
	}
	_ = json.Unmarshal(rec.Body.Bytes(), &submitted)

	rec = s.do(t, stdhttp.MethodPost, "/initiate-payment",
		`{"applicationId":"`+submitted.ApplicationID+`","phoneNumber":"254700000001"}`)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("initiate status = %d (body=%s)", rec.Code, rec.Body.String())
	}

	// user cancelled on the handset
	rec = s.do(t, stdhttp.MethodPost, "/api/mpesa/callback",
		`{"Body":{"stkCallback":{"CheckoutRequestID":"`+ref+`","ResultCode":1032,"ResultDesc":"Request cancelled by user"}}}`)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("failure callback status = %d", rec.Code)
	}

	rec = s.do(t, stdhttp.MethodGet, "/api/applications/"+submitted.ApplicationID, "")
	var got appUC.ApplicationDTO
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.PaymentStatus != "failed" || got.Status != "submitted" {
		t.Fatalf("after failure = %s/%s, want failed/submitted", got.PaymentStatus, got.Status)
	}

	// retry with a fresh checkout reference succeeds
	ref = "ws_CO_try_2"
	rec = s.do(t, stdhttp.MethodPost, "/initiate-payment",
		`{"applicationId":"`+submitted.ApplicationID+`","phoneNumber":"254700000001"}`)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("retry initiate status = %d (body=%s)", rec.Code, rec.Body.String())
	}
	rec = s.do(t, stdhttp.MethodPost, "/api/mpesa/callback",
		`{"Body":{"stkCallback":{"CheckoutRequestID":"ws_CO_try_2","ResultCode":0,"ResultDesc":"Success"}}}`)
	if rec.Code != stdhttp.StatusOK {
		t.Fatalf("retry callback status = %d (body=%s)", rec.Code, rec.Body.String())
	}

	rec = s.do(t, stdhttp.MethodGet, "/api/applications/"+submitted.ApplicationID, "")
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got.PaymentStatus != "completed" || got.Status != "approved" {
		t.Fatalf("after retry = %s/%s, want completed/approved", got.PaymentStatus, got.Status)
	}

	// further initiation attempts are rejected
	rec = s.do(t, stdhttp.MethodPost, "/initiate-payment",
		`{"applicationId":"`+submitted.ApplicationID+`","phoneNumber":"254700000001"}`)
	if rec.Code != stdhttp.StatusBadRequest {
		t.Fatalf("post-completion initiate status = %d, want 400", rec.Code)
	}
}
