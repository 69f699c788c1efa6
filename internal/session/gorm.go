package session

import (
	"bitwise74/drive-api/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

// GormStore keeps sessions in the sessions table
type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db, now: time.Now}
}

func (g *GormStore) Create(ctx context.Context, s *model.Session) error {
	return g.db.WithContext(ctx).Create(s).Error
}

func (g *GormStore) Get(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if !s.ExpiresAt.After(g.now()) {
		g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Session{})
		return nil, ErrNotFound
	}

	return &s, nil
}

func (g *GormStore) Delete(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Session{}).Error
}

func (g *GormStore) DeleteUser(ctx context.Context, userID string) error {
	return g.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.Session{}).Error
}

// DeleteExpired removes every expired session and returns how many were removed
func (g *GormStore) DeleteExpired(ctx context.Context) (int64, error) {
	res := g.db.WithContext(ctx).Where("expires_at <= ?", g.now()).Delete(&model.Session{})
	return res.RowsAffected, res.Error
}
