package application

import (
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("loan application not found")
	ErrAlreadyPaid = errors.New("payment already completed for this application")
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
)

// Origination fee bounds in KES.
const (
	MinAmount int64 = 1000
	MaxAmount int64 = 50000
)

type LoanApplication struct {
	ID            uint64 `gorm:"primaryKey;column:id" json:"-"`
	ApplicationID string `gorm:"size:32;uniqueIndex:ux_applications_application_id" json:"application_id"`
	FirstName     string `gorm:"size:100" json:"first_name"`
	LastName      string `gorm:"size:100" json:"last_name"`
	Email         string `gorm:"size:255" json:"email"`
	// Phone is kept exactly as submitted; normalization happens per payment attempt.
	Phone         string        `gorm:"size:20" json:"phone"`
	Amount        int64         `json:"amount"`
	Purpose       string        `gorm:"type:text" json:"purpose"`
	PaymentStatus PaymentStatus `gorm:"type:enum('pending','completed','failed');default:'pending'" json:"payment_status"`
	// PaymentReference holds the gateway CheckoutRequestID of the in-flight
	// push payment. Unique while non-null: it is the sole key a callback can
	// be reconciled by.
	PaymentReference  *string   `gorm:"size:64;uniqueIndex:ux_applications_payment_reference" json:"payment_reference,omitempty"`
	MerchantRequestID string    `gorm:"size:64" json:"-"`
	Status            Status    `gorm:"type:enum('submitted','approved','rejected');default:'submitted'" json:"status"`
	CreatedAt         time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (LoanApplication) TableName() string { return "loan_applications" }
