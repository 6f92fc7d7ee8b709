package uow

import (
	"context"

	"empowerment-loans-api/internal/domain/application"
)

type Repos struct {
	Applications application.Repository
}

// UnitOfWork scopes repository work to a single transaction. The convenience
// variants lock the target row first, which is what makes the payment
// reference write and the callback state transition race-safe.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	WithinApplicationTx(ctx context.Context, applicationID string, fn func(r Repos, a *application.LoanApplication) error) error
	WithinReferenceTx(ctx context.Context, reference string, fn func(r Repos, a *application.LoanApplication) error) error
}
