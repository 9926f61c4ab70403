package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"homeloan-backend/internal/domain/applicant"
)

// ApplicantRepository reads the users table owned by the identity service.
type ApplicantRepository struct{ db *gorm.DB }

func NewApplicantRepository(db *gorm.DB) *ApplicantRepository { return &ApplicantRepository{db: db} }

func (r *ApplicantRepository) Get(ctx context.Context, userID string) (*applicant.Applicant, error) {
	var out applicant.Applicant
	err := r.db.WithContext(ctx).Where("id = ?", userID).First(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, applicant.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *ApplicantRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&applicant.Applicant{}).Count(&n).Error
	return n, err
}
