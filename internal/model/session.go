package model

import "time"

// Session is the server side half of a login. The browser only holds a signed
// reference to ID.
type Session struct {
	ID        string    `gorm:"primaryKey"`
	UserID    string    `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
}
