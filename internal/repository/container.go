package repository

import (
	"gorm.io/gorm"
)

//go:generate mockgen -source=form.go -destination=mock/form.go -package=mock FormRepo
//go:generate mockgen -source=user.go -destination=mock/user.go -package=mock
//go:generate mockgen -source=audit.go -destination=mock/audit.go -package=mock

type Repos struct {
	Form  FormRepo
	Photo PhotoRepo
	User  UserRepo
	Audit AuditRepo

	db *gorm.DB
}

func New(db *gorm.DB) *Repos {
	return &Repos{
		Form:  NewFormRepo(db),
		Photo: NewPhotoRepo(db),
		User:  NewUserRepo(db),
		Audit: NewAuditRepo(db),
		db:    db,
	}
}

func (r *Repos) WithTx(tx *gorm.DB) *Repos {
	return &Repos{
		Form:  r.Form.WithTx(tx),
		Photo: r.Photo.WithTx(tx),
		User:  r.User.WithTx(tx),
		Audit: r.Audit.WithTx(tx),
		db:    tx,
	}
}

// ExecTx runs fn against repositories bound to a single transaction. When
// the container has no database (unit tests with mocks) fn runs directly.
func (r *Repos) ExecTx(fn func(*Repos) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		txRepos := r.WithTx(tx)
		return fn(txRepos)
	})
}
