package mysql

import (
	"context"

	"empowerment-loans-api/internal/domain/application"
	"empowerment-loans-api/internal/domain/uow"

	"gorm.io/gorm"
)

type GormUoW struct{ db *gorm.DB }

func NewGormUoW(db *gorm.DB) *GormUoW { return &GormUoW{db: db} }

func (u *GormUoW) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(uow.Repos{Applications: &ApplicationRepository{db: tx}})
	})
}

func (u *GormUoW) WithinApplicationTx(ctx context.Context, applicationID string, fn func(r uow.Repos, a *application.LoanApplication) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{Applications: &ApplicationRepository{db: tx}}
		// lock the row up-front to prevent races
		a, err := r.Applications.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}

func (u *GormUoW) WithinReferenceTx(ctx context.Context, reference string, fn func(r uow.Repos, a *application.LoanApplication) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		r := uow.Repos{Applications: &ApplicationRepository{db: tx}}
		a, err := r.Applications.GetByPaymentReferenceForUpdate(ctx, reference)
		if err != nil {
			return err
		}
		return fn(r, a)
	})
}
