package mysql

import (
	"context"

	appDomain "empowerment-loans-api/internal/domain/application"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ApplicationRepository struct{ db *gorm.DB }

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func (r *ApplicationRepository) Create(ctx context.Context, a *appDomain.LoanApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *ApplicationRepository) Save(ctx context.Context, a *appDomain.LoanApplication) error {
	return r.db.WithContext(ctx).Save(a).Error
}

func (r *ApplicationRepository) GetByApplicationID(ctx context.Context, applicationID string) (*appDomain.LoanApplication, error) {
	var out appDomain.LoanApplication
	res := r.db.WithContext(ctx).Where("application_id = ?", applicationID).First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) GetByPaymentReference(ctx context.Context, reference string) (*appDomain.LoanApplication, error) {
	var out appDomain.LoanApplication
	res := r.db.WithContext(ctx).Where("payment_reference = ?", reference).First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*appDomain.LoanApplication, error) {
	var out appDomain.LoanApplication
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("application_id = ?", applicationID).
		First(&out)
	return &out, res.Error
}

func (r *ApplicationRepository) GetByPaymentReferenceForUpdate(ctx context.Context, reference string) (*appDomain.LoanApplication, error) {
	var out appDomain.LoanApplication
	res := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("payment_reference = ?", reference).
		First(&out)
	return &out, res.Error
}
