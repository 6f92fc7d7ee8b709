package reconcile

import (
	"context"
	"errors"
	"log"

	appDomain "empowerment-loans-api/internal/domain/application"
	"empowerment-loans-api/internal/domain/uow"

	"gorm.io/gorm"
)

var ErrUnknownCallback = errors.New("no application matches the callback reference")

// ResultCodeSuccess is the provider's canonical "no error" code.
const ResultCodeSuccess = 0

type Usecase struct{ uow uow.UnitOfWork }

func NewUsecase(tx uow.UnitOfWork) *Usecase { return &Usecase{uow: tx} }

type Outcome struct {
	ApplicationID string
	PaymentStatus appDomain.PaymentStatus
	Status        appDomain.Status
	Duplicate     bool
}

// ApplyResult merges an asynchronous gateway result into application state.
// The row is locked for the duration of the transition, and a record that is
// already completed is never regressed: the gateway delivers callbacks
// at-least-once and possibly out of order.
func (u *Usecase) ApplyResult(ctx context.Context, checkoutRequestID string, resultCode int, resultDesc string) (*Outcome, error) {
	var out Outcome
	err := u.uow.WithinReferenceTx(ctx, checkoutRequestID, func(r uow.Repos, a *appDomain.LoanApplication) error {
		if a.PaymentStatus == appDomain.PaymentCompleted {
			log.Printf("duplicate callback for application %s (ref %s), ignoring", a.ApplicationID, checkoutRequestID)
			out = Outcome{ApplicationID: a.ApplicationID, PaymentStatus: a.PaymentStatus, Status: a.Status, Duplicate: true}
			return nil
		}

		if resultCode == ResultCodeSuccess {
			// completed ⇒ approved, in the same update
			a.PaymentStatus = appDomain.PaymentCompleted
			a.Status = appDomain.StatusApproved
			log.Printf("payment completed for application %s", a.ApplicationID)
		} else {
			// A failed payment is not a rejected application; the applicant may retry.
			a.PaymentStatus = appDomain.PaymentFailed
			log.Printf("payment failed for application %s: %s", a.ApplicationID, resultDesc)
		}
		if err := r.Applications.Save(ctx, a); err != nil {
			return err
		}
		out = Outcome{ApplicationID: a.ApplicationID, PaymentStatus: a.PaymentStatus, Status: a.Status}
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownCallback
		}
		return nil, err
	}
	return &out, nil
}
