package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	appDomain "empowerment-loans-api/internal/domain/application"
	"empowerment-loans-api/pkg/id"

	"gorm.io/gorm"
)

var ErrInvalidInput = errors.New("invalid input")

type Usecase struct{ repo appDomain.Repository }

func NewUsecase(r appDomain.Repository) *Usecase { return &Usecase{repo: r} }

type SubmitInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Amount    int64
	Purpose   string
}

type ApplicationDTO struct {
	ApplicationID string    `json:"application_id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Amount        int64     `json:"amount"`
	Purpose       string    `json:"purpose"`
	PaymentStatus string    `json:"payment_status"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *Usecase) Submit(ctx context.Context, in SubmitInput) (*ApplicationDTO, error) {
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Phone == "" || in.Purpose == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrInvalidInput)
	}
	if in.Amount < appDomain.MinAmount || in.Amount > appDomain.MaxAmount {
		return nil, fmt.Errorf("%w: amount must be between KES %d and %d",
			ErrInvalidInput, appDomain.MinAmount, appDomain.MaxAmount)
	}

	a := &appDomain.LoanApplication{
		ApplicationID: id.NewID32(),
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		Phone:         in.Phone,
		Amount:        in.Amount,
		Purpose:       in.Purpose,
		PaymentStatus: appDomain.PaymentPending,
		Status:        appDomain.StatusSubmitted,
	}
	if err := u.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return toDTO(a), nil
}

func (u *Usecase) Get(ctx context.Context, applicationID string) (*ApplicationDTO, error) {
	a, err := u.repo.GetByApplicationID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, appDomain.ErrNotFound
		}
		return nil, err
	}
	return toDTO(a), nil
}

func toDTO(a *appDomain.LoanApplication) *ApplicationDTO {
	return &ApplicationDTO{
		ApplicationID: a.ApplicationID,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Email:         a.Email,
		Phone:         a.Phone,
		Amount:        a.Amount,
		Purpose:       a.Purpose,
		PaymentStatus: string(a.PaymentStatus),
		Status:        string(a.Status),
		CreatedAt:     a.CreatedAt,
	}
}
