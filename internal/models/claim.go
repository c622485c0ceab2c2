package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ClaimStatus string

const (
	StatusSubmitted   ClaimStatus = "Submitted"
	StatusUnderReview ClaimStatus = "Under Review"
	StatusApproved    ClaimStatus = "Approved"
	StatusRejected    ClaimStatus = "Rejected"
)

// Claim: one lecturer's monthly hours claim.
type Claim struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	ClaimMonth    time.Time       `gorm:"index;not null" json:"claim_month"`
	TotalHours    decimal.Decimal `gorm:"type:numeric(6,2);not null" json:"total_hours"`
	RatePerHour   decimal.Decimal `gorm:"type:numeric(8,2);not null" json:"rate_per_hour"`
	Notes         string          `gorm:"size:500" json:"notes"`
	Status        ClaimStatus     `gorm:"size:20;not null" json:"status"`
	SubmittedDate time.Time       `gorm:"index;not null" json:"submitted_date"`
	LecturerName  string          `gorm:"size:100;not null" json:"lecturer_name"`
	LecturerEmail string          `gorm:"size:100;index;not null" json:"lecturer_email"`

	SupportingDocuments []SupportingDocument `gorm:"foreignKey:ClaimID;constraint:OnDelete:CASCADE" json:"supporting_documents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TotalAmount is always TotalHours * RatePerHour. It is derived on read and
// never stored, so it cannot drift from its inputs.
func (c *Claim) TotalAmount() decimal.Decimal {
	return c.TotalHours.Mul(c.RatePerHour)
}
