package model

import "time"

type TokenPurpose string

const (
	PurposeEmail         TokenPurpose = "email"
	PurposePasswordReset TokenPurpose = "password_reset"
)

type VerificationToken struct {
	ID        int          `gorm:"primaryKey;autoIncrement"`
	UserID    string       `gorm:"index;not null"`
	Token     string       `gorm:"uniqueIndex;not null"`
	Purpose   TokenPurpose `gorm:"not null"`
	ExpiresAt time.Time    `gorm:"not null"`
	CreatedAt time.Time
}

func (t *VerificationToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
