package appmock

import (
	"context"
	"errors"

	"empowerment-loans-api/internal/domain/application"
)

// Ensure compile-time compliance
var _ application.Repository = (*Repo)(nil)

var errUnimplemented = errors.New("appmock: method not implemented")

// Repo is a function-backed mock that satisfies application.Repository.
// Fill in the function fields you need in a test; unfilled ones return
// errUnimplemented.
type Repo struct {
	CreateFn                         func(ctx context.Context, a *application.LoanApplication) error
	GetByApplicationIDFn             func(ctx context.Context, applicationID string) (*application.LoanApplication, error)
	GetByPaymentReferenceFn          func(ctx context.Context, reference string) (*application.LoanApplication, error)
	SaveFn                           func(ctx context.Context, a *application.LoanApplication) error
	GetByApplicationIDForUpdateFn    func(ctx context.Context, applicationID string) (*application.LoanApplication, error)
	GetByPaymentReferenceForUpdateFn func(ctx context.Context, reference string) (*application.LoanApplication, error)
}

func (m *Repo) Create(ctx context.Context, a *application.LoanApplication) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, a)
	}
	return errUnimplemented
}

func (m *Repo) GetByApplicationID(ctx context.Context, applicationID string) (*application.LoanApplication, error) {
	if m.GetByApplicationIDFn != nil {
		return m.GetByApplicationIDFn(ctx, applicationID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByPaymentReference(ctx context.Context, reference string) (*application.LoanApplication, error) {
	if m.GetByPaymentReferenceFn != nil {
		return m.GetByPaymentReferenceFn(ctx, reference)
	}
	return nil, errUnimplemented
}

func (m *Repo) Save(ctx context.Context, a *application.LoanApplication) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, a)
	}
	return errUnimplemented
}

func (m *Repo) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*application.LoanApplication, error) {
	if m.GetByApplicationIDForUpdateFn != nil {
		return m.GetByApplicationIDForUpdateFn(ctx, applicationID)
	}
	return nil, errUnimplemented
}

func (m *Repo) GetByPaymentReferenceForUpdate(ctx context.Context, reference string) (*application.LoanApplication, error) {
	if m.GetByPaymentReferenceForUpdateFn != nil {
		return m.GetByPaymentReferenceForUpdateFn(ctx, reference)
	}
	return nil, errUnimplemented
}
