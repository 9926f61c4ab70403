// Package applicant is the read-only view of users owned by the identity
// service. Loans reference applicants; they never create or modify them.
package applicant

import (
	"context"

	"homeloan-backend/internal/domain/apperr"
)

var ErrNotFound = apperr.New(apperr.KindNotFound, "applicant not found")

type Applicant struct {
	UserID   string `gorm:"column:id;type:char(32);primaryKey"`
	Email    string `gorm:"column:email;size:255"`
	FullName string `gorm:"column:full_name;size:255"`
}

func (Applicant) TableName() string { return "users" }

// Directory resolves applicants; it returns ErrNotFound for unknown ids.
type Directory interface {
	Get(ctx context.Context, userID string) (*Applicant, error)
	Count(ctx context.Context) (int64, error)
}
