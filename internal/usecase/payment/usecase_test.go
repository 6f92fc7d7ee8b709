package payment

import (
	"context"
	"errors"
	"strings"
	"testing"

	appDomain "empowerment-loans-api/internal/domain/application"
	"empowerment-loans-api/internal/domain/uow"
	"empowerment-loans-api/internal/gateway/daraja"
	"empowerment-loans-api/internal/testutil/appmock"
	"empowerment-loans-api/internal/testutil/gatewaymock"
	"empowerment-loans-api/internal/testutil/uowmock"

	"gorm.io/gorm"
)

const testAppID = "aaaaaaaaaaaaaaaaaaaaaaaa12345678"

func pendingApplication() *appDomain.LoanApplication {
	return &appDomain.LoanApplication{
		ID:            1,
		ApplicationID: testAppID,
		FirstName:     "Ann",
		LastName:      "Doe",
		Email:         "a@x.com",
		Phone:         "712345678",
		Amount:        5000,
		Purpose:       "school",
		PaymentStatus: appDomain.PaymentPending,
		Status:        appDomain.StatusSubmitted,
	}
}

// lockThrough returns a UoW whose application-scoped tx hands fn the given
// record plus a save-recording repo.
func lockThrough(a *appDomain.LoanApplication, saved **appDomain.LoanApplication) *uowmock.UoW {
	return &uowmock.UoW{
		WithinApplicationTxFn: func(ctx context.Context, applicationID string, fn func(r uow.Repos, a *appDomain.LoanApplication) error) error {
			repo := &appmock.Repo{
				SaveFn: func(ctx context.Context, a *appDomain.LoanApplication) error {
					*saved = a
					return nil
				},
			}
			return fn(uow.Repos{Applications: repo}, a)
		},
	}
}

func TestInitiate_Success(t *testing.T) {
	app := pendingApplication()
	repo := &appmock.Repo{
		GetByApplicationIDFn: func(ctx context.Context, id string) (*appDomain.LoanApplication, error) {
			return app, nil
		},
	}

	var gotPhone, gotRef, gotDesc string
	var gotAmount int64
	gw := &gatewaymock.Gateway{
		InitiateSTKPushFn: func(ctx context.Context, phone string, amount int64, accountRef, desc string) (*daraja.STKPushResult, error) {
			gotPhone, gotAmount, gotRef, gotDesc = phone, amount, accountRef, desc
			return &daraja.STKPushResult{CheckoutRequestID: "ws_CO_0001", MerchantRequestID: "merch-1"}, nil
		},
	}

	var saved *appDomain.LoanApplication
	uc := NewUsecase(repo, lockThrough(app, &saved), gw)

	dto, err := uc.Initiate(context.Background(), testAppID, "712345678")
	if err != nil {
		t.Fatalf("Initiate: %v", err)
	}

	if gotPhone != "254712345678" {
		t.Errorf("gateway phone = %q, want normalized 254712345678", gotPhone)
	}
	if gotAmount != 5000 {
		t.Errorf("gateway amount = %d, want 5000", gotAmount)
	}
	if want := "LA" + testAppID[len(testAppID)-8:]; gotRef != want {
		t.Errorf("account ref = %q, want %q", gotRef, want)
	}
	if !strings.Contains(gotDesc, "Ann Doe") {
		t.Errorf("description %q does not name the applicant", gotDesc)
	}

	if saved == nil || saved.PaymentReference == nil || *saved.PaymentReference != "ws_CO_0001" {
		t.Fatalf("payment reference not persisted: %+v", saved)
	}
	if saved.MerchantRequestID != "merch-1" {
		t.Errorf("merchant request id not persisted: %+v", saved)
	}
	if saved.PaymentStatus != appDomain.PaymentPending || saved.Status != appDomain.StatusSubmitted {
		t.Errorf("status fields must stay unchanged at initiation: %+v", saved)
	}

	if dto.CheckoutRequestID != "ws_CO_0001" || dto.MerchantRequestID != "merch-1" || dto.Amount != 5000 {
		t.Errorf("unexpected dto: %+v", dto)
	}
	if dto.PhoneNumber != "712345678" {
		t.Errorf("dto phone = %q, want raw submitted value", dto.PhoneNumber)
	}
}

func TestInitiate_NotFound(t *testing.T) {
	repo := &appmock.Repo{
		GetByApplicationIDFn: func(ctx context.Context, id string) (*appDomain.LoanApplication, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	uc := NewUsecase(repo, &uowmock.UoW{}, &gatewaymock.Gateway{})

	_, err := uc.Initiate(context.Background(), testAppID, "712345678")
	if !errors.Is(err, appDomain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestInitiate_AlreadyPaid_SkipsGateway(t *testing.T) {
	app := pendingApplication()
	app.PaymentStatus = appDomain.PaymentCompleted
	app.Status = appDomain.StatusApproved

	repo := &appmock.Repo{
		GetByApplicationIDFn: func(ctx context.Context, id string) (*appDomain.LoanApplication, error) {
			return app, nil
		},
	}
	gw := &gatewaymock.Gateway{
		InitiateSTKPushFn: func(ctx context.Context, phone string, amount int64, accountRef, desc string) (*daraja.STKPushResult, error) {
			t.Fatal("gateway must not be called for a completed payment")
			return nil, nil
		},
	}
	uc := NewUsecase(repo, &uowmock.UoW{}, gw)

	_, err := uc.Initiate(context.Background(), testAppID, "712345678")
	if !errors.Is(err, appDomain.ErrAlreadyPaid) {
		t.Fatalf("err = %v, want ErrAlreadyPaid", err)
	}
}

func TestInitiate_InvalidPhone_SkipsGateway(t *testing.T) {
	repo := &appmock.Repo{
		GetByApplicationIDFn: func(ctx context.Context, id string) (*appDomain.LoanApplication, error) {
			return pendingApplication(), nil
		},
	}
	gw := &gatewaymock.Gateway{
		InitiateSTKPushFn: func(ctx context.Context, phone string, amount int64, accountRef, desc string) (*daraja.STKPushResult, error) {
			t.Fatal("gateway must not be called for an invalid phone")
			return nil, nil
		},
	}
	uc := NewUsecase(repo, &uowmock.UoW{}, gw)

	_, err := uc.Initiate(context.Background(), testAppID, "12345")
	if !errors.Is(err, ErrInvalidPhone) {
		t.Fatalf("err = %v, want ErrInvalidPhone", err)
	}
}

func TestInitiate_GatewayTimeout_NoReferenceWrite(t *testing.T) {
	repo := &appmock.Repo{
		GetByApplicationIDFn: func(ctx context.Context, id string) (*appDomain.LoanApplication, error) {
			return pendingApplication(), nil
		},
	}
	gw := &gatewaymock.Gateway{
		InitiateSTKPushFn: func(ctx context.Context, phone string, amount int64, accountRef, desc string) (*daraja.STKPushResult, error) {
			return nil, daraja.ErrTimeout
		},
	}
	tx := &uowmock.UoW{
		WithinApplicationTxFn: func(ctx context.Context, applicationID string, fn func(r uow.Repos, a *appDomain.LoanApplication) error) error {
			t.Fatal("no reference write after a gateway failure")
			return nil
		},
	}
	uc := NewUsecase(repo, tx, gw)

	_, err := uc.Initiate(context.Background(), testAppID, "712345678")
	if !errors.Is(err, daraja.ErrTimeout) {
		t.Fatalf("err = %v, want daraja.ErrTimeout", err)
	}
}

func TestInitiate_CompletedDuringGatewayCall(t *testing.T) {
	app := pendingApplication()
	repo := &appmock.Repo{
		GetByApplicationIDFn: func(ctx context.Context, id string) (*appDomain.LoanApplication, error) {
			return app, nil
		},
	}
	gw := &gatewaymock.Gateway{
		InitiateSTKPushFn: func(ctx context.Context, phone string, amount int64, accountRef, desc string) (*daraja.STKPushResult, error) {
			return &daraja.STKPushResult{CheckoutRequestID: "ws_CO_0002"}, nil
		},
	}
	// The locked row read inside the tx sees a payment completed concurrently.
	completed := pendingApplication()
	completed.PaymentStatus = appDomain.PaymentCompleted
	completed.Status = appDomain.StatusApproved

	var saved *appDomain.LoanApplication
	uc := NewUsecase(repo, lockThrough(completed, &saved), gw)

	_, err := uc.Initiate(context.Background(), testAppID, "712345678")
	if !errors.Is(err, appDomain.ErrAlreadyPaid) {
		t.Fatalf("err = %v, want ErrAlreadyPaid", err)
	}
	if saved != nil {
		t.Fatalf("terminal record must not be overwritten: %+v", saved)
	}
}
