// Package session keeps login sessions on the server. The browser holds an
// HS256 signed cookie that references a session; the session itself lives in
// the database or in redis so it can be revoked at any time.
package session

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/pkg/security"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const CookieName = "auth_token"

var (
	ErrNotFound     = errors.New("session not found")
	ErrInvalidToken = errors.New("session token invalid")
)

// Store persists sessions. Get must return ErrNotFound for missing or
// expired sessions.
type Store interface {
	Create(ctx context.Context, s *model.Session) error
	Get(ctx context.Context, id string) (*model.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteUser(ctx context.Context, userID string) error
}

type Manager struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(store Store, secret string, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue opens a new session for userID and returns the signed cookie value
func (m *Manager) Issue(ctx context.Context, userID string) (string, error) {
	id, err := security.NewOpaqueToken(32)
	if err != nil {
		return "", fmt.Errorf("failed to generate session id, %w", err)
	}

	now := m.now()
	exp := now.Add(m.ttl)

	s := &model.Session{
		ID:        id,
		UserID:    userID,
		ExpiresAt: exp,
		CreatedAt: now,
	}
	if err := m.store.Create(ctx, s); err != nil {
		return "", fmt.Errorf("failed to store session, %w", err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sid":     id,
		"user_id": userID,
		"exp":     exp.Unix(),
	})

	signed, err := token.SignedString(m.secret)
	if err != nil {
		m.store.Delete(ctx, id)
		return "", fmt.Errorf("failed to sign session token, %w", err)
	}

	return signed, nil
}

// Resolve checks the signature of a cookie value and that the session it
// references still exists
func (m *Manager) Resolve(ctx context.Context, tokenStr string) (*model.Session, error) {
	sid, userID, err := m.parse(tokenStr, true)
	if err != nil {
		return nil, err
	}

	s, err := m.store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}

	if s.UserID != userID {
		return nil, ErrInvalidToken
	}

	return s, nil
}

// Revoke deletes the session referenced by a cookie value. Invalid or
// expired values are ignored.
func (m *Manager) Revoke(ctx context.Context, tokenStr string) error {
	sid, _, err := m.parse(tokenStr, false)
	if err != nil {
		return nil
	}

	return m.store.Delete(ctx, sid)
}

// RevokeUser deletes every session of a user
func (m *Manager) RevokeUser(ctx context.Context, userID string) error {
	return m.store.DeleteUser(ctx, userID)
}

func (m *Manager) parse(tokenStr string, validate bool) (sid, userID string, err error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if !validate {
		opts = append(opts, jwt.WithoutClaimsValidation())
	} else {
		opts = append(opts, jwt.WithExpirationRequired())
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return "", "", ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", "", ErrInvalidToken
	}

	sid, ok = claims["sid"].(string)
	if !ok || sid == "" {
		return "", "", ErrInvalidToken
	}

	userID, ok = claims["user_id"].(string)
	if !ok || userID == "" {
		return "", "", ErrInvalidToken
	}

	return sid, userID, nil
}
