package application

import "context"

type Repository interface {
	Create(ctx context.Context, a *LoanApplication) error
	GetByApplicationID(ctx context.Context, applicationID string) (*LoanApplication, error)
	// GetByPaymentReference is the reconciliation lookup: the callback only
	// carries the gateway CheckoutRequestID.
	GetByPaymentReference(ctx context.Context, reference string) (*LoanApplication, error)
	Save(ctx context.Context, a *LoanApplication) error

	// ForUpdate variants lock the row (SELECT ... FOR UPDATE) and must only be
	// called inside a transaction, i.e. through the UnitOfWork.
	GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*LoanApplication, error)
	GetByPaymentReferenceForUpdate(ctx context.Context, reference string) (*LoanApplication, error)
}
