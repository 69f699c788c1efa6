// Package repository wraps every query the application runs against the
// relational store. Callers never see gorm errors, only the sentinels below.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// Store bundles the repositories that share one database handle. Inside
// Transaction every repository runs on the transaction handle.
type Store struct {
	db *gorm.DB

	users    *userRepo
	files    *fileRepo
	tokens   *tokenRepo
	settings *settingRepo
}

func New(db *gorm.DB) *Store {
	return &Store{
		db:       db,
		users:    &userRepo{db: db},
		files:    &fileRepo{db: db},
		tokens:   &tokenRepo{db: db},
		settings: &settingRepo{db: db},
	}
}

func (s *Store) Users() Users       { return s.users }
func (s *Store) Files() Files       { return s.files }
func (s *Store) Tokens() Tokens     { return s.tokens }
func (s *Store) Settings() Settings { return s.settings }

// Transaction runs fn inside a database transaction. Returning an error
// from fn rolls everything back.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	}

	return err
}
