package applicantmock

import (
	"context"

	"homeloan-backend/internal/domain/applicant"
)

// Directory serves applicants from a map; missing ids yield applicant.ErrNotFound.
type Directory struct {
	Users  map[string]*applicant.Applicant
	GetErr error
}

var _ applicant.Directory = (*Directory)(nil)

func NewDirectory(users ...*applicant.Applicant) *Directory {
	d := &Directory{Users: make(map[string]*applicant.Applicant, len(users))}
	for _, u := range users {
		d.Users[u.UserID] = u
	}
	return d
}

func (d *Directory) Get(_ context.Context, userID string) (*applicant.Applicant, error) {
	if d.GetErr != nil {
		return nil, d.GetErr
	}
	if u, ok := d.Users[userID]; ok {
		return u, nil
	}
	return nil, applicant.ErrNotFound
}

func (d *Directory) Count(context.Context) (int64, error) { return int64(len(d.Users)), nil }
