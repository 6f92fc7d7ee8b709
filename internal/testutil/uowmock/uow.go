package uowmock

import (
	"context"
	"errors"

	"empowerment-loans-api/internal/domain/application"
	"empowerment-loans-api/internal/domain/uow"
)

// Ensure compile-time compliance
var _ uow.UnitOfWork = (*UoW)(nil)

var errUnimplemented = errors.New("uowmock: method not implemented")

// UoW is a function-backed mock that satisfies uow.UnitOfWork.
// Fill in the function fields you need in a test; unfilled ones return
// errUnimplemented.
type UoW struct {
	WithinTxFn            func(ctx context.Context, fn func(r uow.Repos) error) error
	WithinApplicationTxFn func(ctx context.Context, applicationID string, fn func(r uow.Repos, a *application.LoanApplication) error) error
	WithinReferenceTxFn   func(ctx context.Context, reference string, fn func(r uow.Repos, a *application.LoanApplication) error) error
}

func (m *UoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	if m.WithinTxFn != nil {
		return m.WithinTxFn(ctx, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinApplicationTx(ctx context.Context, applicationID string, fn func(r uow.Repos, a *application.LoanApplication) error) error {
	if m.WithinApplicationTxFn != nil {
		return m.WithinApplicationTxFn(ctx, applicationID, fn)
	}
	return errUnimplemented
}

func (m *UoW) WithinReferenceTx(ctx context.Context, reference string, fn func(r uow.Repos, a *application.LoanApplication) error) error {
	if m.WithinReferenceTxFn != nil {
		return m.WithinReferenceTxFn(ctx, reference, fn)
	}
	return errUnimplemented
}
