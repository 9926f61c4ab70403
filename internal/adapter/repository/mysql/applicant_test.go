package mysql

import (
	"context"
	"errors"
	"testing"

	"homeloan-backend/internal/domain/applicant"
)

func TestApplicantRepository(t *testing.T) {
	db := openTestDB(t)
	repo := NewApplicantRepository(db)
	ctx := context.Background()

	a := seedApplicant(t, db, "jane@example.com")
	seedApplicant(t, db, "john@example.com")

	got, err := repo.Get(ctx, a.UserID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != "jane@example.com" {
		t.Fatalf("email = %q", got.Email)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, applicant.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}

	n, err := repo.Count(ctx)
	if err != nil || n != 2 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}
