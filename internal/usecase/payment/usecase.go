package payment

import (
	"context"
	"errors"
	"fmt"
	"log"

	appDomain "empowerment-loans-api/internal/domain/application"
	"empowerment-loans-api/internal/domain/uow"
	"empowerment-loans-api/internal/gateway/daraja"

	"gorm.io/gorm"
)

// Gateway is the slice of the Daraja client the orchestrator needs.
type Gateway interface {
	InitiateSTKPush(ctx context.Context, phone string, amount int64, accountRef, desc string) (*daraja.STKPushResult, error)
}

type Usecase struct {
	repo    appDomain.Repository
	uow     uow.UnitOfWork
	gateway Gateway
}

func NewUsecase(repo appDomain.Repository, tx uow.UnitOfWork, gw Gateway) *Usecase {
	return &Usecase{repo: repo, uow: tx, gateway: gw}
}

type InitiationDTO struct {
	CheckoutRequestID string `json:"checkoutRequestId"`
	MerchantRequestID string `json:"merchantRequestId"`
	Amount            int64  `json:"amount"`
	// PhoneNumber echoes the value the caller submitted, not the normalized form.
	PhoneNumber string `json:"phoneNumber"`
}

// Initiate starts an STK push for the application's origination fee and
// records the gateway correlation id. The gateway call runs outside any row
// lock; the reference write re-checks payment state inside a locked
// transaction so a concurrent callback cannot interleave.
func (u *Usecase) Initiate(ctx context.Context, applicationID, rawPhone string) (*InitiationDTO, error) {
	a, err := u.repo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appDomain.ErrNotFound
		}
		return nil, err
	}
	if a.PaymentStatus == appDomain.PaymentCompleted {
		return nil, appDomain.ErrAlreadyPaid
	}

	phone, err := NormalizePhone(rawPhone)
	if err != nil {
		return nil, err
	}

	accountRef := "LA" + a.ApplicationID[len(a.ApplicationID)-8:]
	desc := fmt.Sprintf("Empowerment Loan - %s %s", a.FirstName, a.LastName)

	res, err := u.gateway.InitiateSTKPush(ctx, phone, a.Amount, accountRef, desc)
	if err != nil {
		return nil, err
	}
	log.Printf("stk push initiated for application %s: %s", a.ApplicationID, res.CheckoutRequestID)

	err = u.uow.WithinApplicationTx(ctx, applicationID, func(r uow.Repos, locked *appDomain.LoanApplication) error {
		// A callback may have completed the payment while the gateway call was
		// in flight; never overwrite a terminal record.
		if locked.PaymentStatus == appDomain.PaymentCompleted {
			return appDomain.ErrAlreadyPaid
		}
		locked.PaymentReference = &res.CheckoutRequestID
		locked.MerchantRequestID = res.MerchantRequestID
		return r.Applications.Save(ctx, locked)
	})
	if err != nil {
		return nil, err
	}

	return &InitiationDTO{
		CheckoutRequestID: res.CheckoutRequestID,
		MerchantRequestID: res.MerchantRequestID,
		Amount:            a.Amount,
		PhoneNumber:       rawPhone,
	}, nil
}
