package mysql

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"homeloan-backend/internal/domain/applicant"
	"homeloan-backend/internal/domain/installment"
	loanDomain "homeloan-backend/internal/domain/loan"
	"homeloan-backend/pkg/id"
)

// openTestDB creates a file-backed sqlite DB (so every pooled connection sees
// the same data) and migrates the domain models. The models avoid
// engine-specific column types, so no sqlite shadow structs are needed.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "loans.db") + "?_busy_timeout=5000&_foreign_keys=on"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// sqlite has a single writer; serialize through one connection
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(&applicant.Applicant{}, &loanDomain.Application{}, &installment.Installment{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func seedApplicant(t *testing.T, db *gorm.DB, email string) *applicant.Applicant {
	t.Helper()
	a := &applicant.Applicant{UserID: id.NewID32(), Email: email, FullName: "Test Applicant"}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("seed applicant: %v", err)
	}
	return a
}

func makeLoan(loanID, applicantID string) *loanDomain.Application {
	return &loanDomain.Application{
		LoanID:        loanID,
		ApplicantID:   applicantID,
		Amount:        decimal.RequireFromString("2500000.00"),
		TenureMonths:  12,
		InterestRate:  decimal.RequireFromString("8.50"),
		PropertyValue: decimal.NewNullDecimal(decimal.RequireFromString("4000000")),
		Purpose:       "purchase",
		Status:        loanDomain.StatusSubmitted,
		SubmittedAt:   time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC),
		UpdatedAt:     time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC),
	}
}

func makeSchedule(loanNumericID uint64, n int, amount string) []installment.Installment {
	out := make([]installment.Installment, n)
	for i := range out {
		out[i] = installment.Installment{
			InstallmentID: id.NewID32(),
			LoanID:        loanNumericID,
			SeqNo:         i + 1,
			DueDate:       time.Date(2025, time.Month(2+i), 1, 0, 0, 0, 0, time.UTC),
			Amount:        decimal.RequireFromString(amount),
			PaymentStatus: installment.StatusPending,
		}
	}
	return out
}
