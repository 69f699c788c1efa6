package repository

import (
	"bitwise74/drive-api/internal/model"
	"context"
	"time"

	"gorm.io/gorm"
)

type Tokens interface {
	Create(ctx context.Context, t *model.VerificationToken) error
	ByToken(ctx context.Context, token string) (*model.VerificationToken, error)
	Delete(ctx context.Context, id int) error
	// DeleteForUser removes the tokens of a user with the given purpose.
	// An empty purpose removes all of them.
	DeleteForUser(ctx context.Context, userID string, purpose model.TokenPurpose) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type tokenRepo struct {
	db *gorm.DB
}

func (r *tokenRepo) Create(ctx context.Context, t *model.VerificationToken) error {
	return translate(r.db.WithContext(ctx).Create(t).Error)
}

func (r *tokenRepo) ByToken(ctx context.Context, token string) (*model.VerificationToken, error) {
	var t model.VerificationToken
	if err := r.db.WithContext(ctx).Where("token = ?", token).First(&t).Error; err != nil {
		return nil, translate(err)
	}

	return &t, nil
}

func (r *tokenRepo) Delete(ctx context.Context, id int) error {
	return translate(r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.VerificationToken{}).Error)
}

func (r *tokenRepo) DeleteForUser(ctx context.Context, userID string, purpose model.TokenPurpose) error {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if purpose != "" {
		q = q.Where("purpose = ?", purpose)
	}

	return translate(q.Delete(&model.VerificationToken{}).Error)
}

func (r *tokenRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&model.VerificationToken{})
	return res.RowsAffected, translate(res.Error)
}
