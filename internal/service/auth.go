package service

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/repository"
	"bitwise74/drive-api/internal/session"
	"bitwise74/drive-api/pkg/security"
	"bitwise74/drive-api/pkg/validators"
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"
)

const (
	emailTokenTTL = 24 * time.Hour
	resetTokenTTL = 30 * time.Minute
)

// Auth handles accounts, logins and the tokens mailed to users
type Auth struct {
	store     *repository.Store
	sessions  *session.Manager
	argon     *security.ArgonHash
	settings  *Settings
	mailer    Mailer
	publicURL string
	now       func() time.Time
}

func NewAuth(store *repository.Store, sessions *session.Manager, argon *security.ArgonHash, settings *Settings, mailer Mailer, publicURL string) *Auth {
	return &Auth{
		store:     store,
		sessions:  sessions,
		argon:     argon,
		settings:  settings,
		mailer:    mailer,
		publicURL: publicURL,
		now:       time.Now,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a new account and logs it in. The returned string is the
// session cookie value.
func (a *Auth) Register(ctx context.Context, in RegisterInput) (*model.User, string, error) {
	email, err := validateAccount(in.Name, in.Email, in.Password)
	if err != nil {
		return nil, "", err
	}

	settings, err := a.settings.Get(ctx)
	if err != nil {
		return nil, "", err
	}

	if !settings.AllowRegistration {
		return nil, "", ErrRegistrationClosed
	}

	u, err := createUser(ctx, a.store, a.argon, newUserInput{
		Name:     in.Name,
		Email:    email,
		Password: in.Password,
		Role:     model.RoleUser,
		Quota:    settings.DefaultQuota,
	})
	if err != nil {
		return nil, "", err
	}

	// The account is usable without verification, a failed mail is not fatal
	if t, err := a.issueToken(ctx, u.ID, model.PurposeEmail, emailTokenTTL); err != nil {
		zap.L().Error("Failed to create verification token", zap.Error(err), zap.String("userID", u.ID))
	} else {
		subject, body := verificationMail(a.link("/verify", t.Token))
		if err := a.mailer.Send(u.Email, subject, body); err != nil {
			zap.L().Error("Failed to send verification mail", zap.Error(err), zap.String("userID", u.ID))
		}
	}

	token, err := a.sessions.Issue(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

func (a *Auth) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = validators.NormalizeEmail(email)
	if email == "" {
		return nil, "", Validation("email field can't be empty")
	}

	if password == "" {
		return nil, "", Validation("password field can't be empty")
	}

	u, err := a.store.Users().ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user, %w", err)
	}

	ok, err := a.argon.VerifyPasswd(password, u.PasswordHash)
	if err != nil {
		return nil, "", fmt.Errorf("failed to verify password, %w", err)
	}

	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	if u.Blocked {
		return nil, "", ErrAccountBlocked
	}

	token, err := a.sessions.Issue(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}

	return u, token, nil
}

// Logout ends the session behind the cookie value. Missing sessions are fine.
func (a *Auth) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}

	return a.sessions.Revoke(ctx, token)
}

// CurrentUser resolves a cookie value to the account it belongs to
func (a *Auth) CurrentUser(ctx context.Context, token string) (*model.User, error) {
	if token == "" {
		return nil, ErrUnauthenticated
	}

	s, err := a.sessions.Resolve(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrInvalidToken) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to resolve session, %w", err)
	}

	u, err := a.store.Users().ByID(ctx, s.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, fmt.Errorf("failed to look up user, %w", err)
	}

	if u.Blocked {
		return nil, ErrAccountBlocked
	}

	return u, nil
}

// RequestPasswordReset mails a reset link if the account exists. Callers
// always report success so that accounts can't be enumerated.
func (a *Auth) RequestPasswordReset(ctx context.Context, email string) error {
	email = validators.NormalizeEmail(email)
	if err := validators.EmailValidator(email); err != nil {
		return Validation(err.Error())
	}

	u, err := a.store.Users().ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("failed to look up user, %w", err)
	}

	t, err := a.issueToken(ctx, u.ID, model.PurposePasswordReset, resetTokenTTL)
	if err != nil {
		return err
	}

	subject, body := passwordResetMail(a.link("/reset-password", t.Token))
	if err := a.mailer.Send(u.Email, subject, body); err != nil {
		zap.L().Error("Failed to send password reset mail", zap.Error(err), zap.String("userID", u.ID))
	}

	return nil
}

// ConfirmPasswordReset sets a new password and logs the account out everywhere
func (a *Auth) ConfirmPasswordReset(ctx context.Context, token, password string) error {
	if err := validators.PasswordValidator(password); err != nil {
		return Validation(err.Error())
	}

	t, err := a.consumeToken(ctx, token, model.PurposePasswordReset)
	if err != nil {
		return err
	}

	hash, err := a.argon.GenerateFromPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password, %w", err)
	}

	if err := a.store.Users().Update(ctx, t.UserID, map[string]any{"password_hash": hash}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to update password, %w", err)
	}

	if err := a.sessions.RevokeUser(ctx, t.UserID); err != nil {
		return fmt.Errorf("failed to revoke sessions, %w", err)
	}

	return nil
}

func (a *Auth) VerifyEmail(ctx context.Context, token string) error {
	t, err := a.consumeToken(ctx, token, model.PurposeEmail)
	if err != nil {
		return err
	}

	if err := a.store.Users().Update(ctx, t.UserID, map[string]any{"verified": true}); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("failed to verify user, %w", err)
	}

	return nil
}

// issueToken replaces any older token with the same purpose
func (a *Auth) issueToken(ctx context.Context, userID string, purpose model.TokenPurpose, ttl time.Duration) (*model.VerificationToken, error) {
	value, err := security.NewOpaqueToken(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token, %w", err)
	}

	t := &model.VerificationToken{
		UserID:    userID,
		Token:     value,
		Purpose:   purpose,
		ExpiresAt: a.now().Add(ttl),
	}

	err = a.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Tokens().DeleteForUser(ctx, userID, purpose); err != nil {
			return err
		}
		return tx.Tokens().Create(ctx, t)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store token, %w", err)
	}

	return t, nil
}

// consumeToken looks up a token, checks it and deletes it
func (a *Auth) consumeToken(ctx context.Context, value string, purpose model.TokenPurpose) (*model.VerificationToken, error) {
	if value == "" {
		return nil, Validation("no token provided")
	}

	t, err := a.store.Tokens().ByToken(ctx, value)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to look up token, %w", err)
	}

	if t.Purpose != purpose {
		return nil, ErrInvalidToken
	}

	if err := a.store.Tokens().Delete(ctx, t.ID); err != nil {
		return nil, fmt.Errorf("failed to delete token, %w", err)
	}

	if t.Expired(a.now()) {
		return nil, ErrInvalidToken
	}

	return t, nil
}

func (a *Auth) link(path, token string) string {
	return a.publicURL + path + "?token=" + url.QueryEscape(token)
}
