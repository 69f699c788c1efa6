package service

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/repository"
	"bitwise74/drive-api/internal/session"
	"bitwise74/drive-api/internal/storage"
	"bitwise74/drive-api/pkg/security"
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Admin is the user management surface. Every method that takes an actorID
// refuses to act on the actor's own account.
type Admin struct {
	store    *repository.Store
	blobs    storage.Storage
	sessions *session.Manager
	argon    *security.ArgonHash
	settings *Settings
}

func NewAdmin(store *repository.Store, blobs storage.Storage, sessions *session.Manager, argon *security.ArgonHash, settings *Settings) *Admin {
	return &Admin{
		store:    store,
		blobs:    blobs,
		sessions: sessions,
		argon:    argon,
		settings: settings,
	}
}

type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
	Quota    *int64
}

func (a *Admin) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := a.store.Users().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users, %w", err)
	}

	if users == nil {
		users = []model.User{}
	}

	return users, nil
}

// CreateUser adds an already verified account. Registration being disabled
// doesn't apply here.
func (a *Admin) CreateUser(ctx context.Context, in CreateUserInput) (*model.User, error) {
	email, err := validateAccount(in.Name, in.Email, in.Password)
	if err != nil {
		return nil, err
	}

	if in.Role == "" {
		in.Role = model.RoleUser
	}

	if !in.Role.Valid() {
		return nil, Validation("invalid role, expected user or admin")
	}

	var quota int64
	if in.Quota != nil {
		if *in.Quota < 0 {
			return nil, Validation("quota can't be negative")
		}
		quota = *in.Quota
	} else {
		settings, err := a.settings.Get(ctx)
		if err != nil {
			return nil, err
		}
		quota = settings.DefaultQuota
	}

	return createUser(ctx, a.store, a.argon, newUserInput{
		Name:     in.Name,
		Email:    email,
		Password: in.Password,
		Role:     in.Role,
		Quota:    quota,
		Verified: true,
	})
}

func (a *Admin) update(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	if err := a.store.Users().Update(ctx, id, fields); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update user, %w", err)
	}

	u, err := a.store.Users().ByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load user, %w", err)
	}

	return u, nil
}

// SetQuota changes the quota of a user. Lowering it below the used space is
// allowed, further uploads are refused until enough is deleted.
func (a *Admin) SetQuota(ctx context.Context, id string, quota int64) (*model.User, error) {
	if quota < 0 {
		return nil, Validation("quota can't be negative")
	}

	return a.update(ctx, id, map[string]any{"quota": quota})
}

// SetBlocked blocks or unblocks a user. Blocking ends all of their sessions.
func (a *Admin) SetBlocked(ctx context.Context, actorID, id string, blocked bool) (*model.User, error) {
	if actorID == id {
		return nil, ErrSelfAction
	}

	u, err := a.update(ctx, id, map[string]any{"blocked": blocked})
	if err != nil {
		return nil, err
	}

	if blocked {
		if err := a.sessions.RevokeUser(ctx, id); err != nil {
			return nil, fmt.Errorf("failed to revoke sessions, %w", err)
		}
	}

	return u, nil
}

func (a *Admin) SetRole(ctx context.Context, actorID, id string, role model.Role) (*model.User, error) {
	if !role.Valid() {
		return nil, Validation("invalid role, expected user or admin")
	}

	if actorID == id {
		return nil, ErrSelfAction
	}

	return a.update(ctx, id, map[string]any{"role": role})
}

// DeleteUser removes an account with all of its files, blobs, tokens and sessions
func (a *Admin) DeleteUser(ctx context.Context, actorID, id string) error {
	if actorID == id {
		return ErrSelfAction
	}

	if _, err := a.store.Users().ByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load user, %w", err)
	}

	files, err := a.store.Files().ByUser(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to list files of user, %w", err)
	}

	ids := make([]uint, len(files))
	for i, f := range files {
		ids[i] = f.ID
	}

	err = a.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.Files().DeleteByIDs(ctx, ids); err != nil {
			return err
		}
		if err := tx.Tokens().DeleteForUser(ctx, id, ""); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("failed to delete user, %w", err)
	}

	if err := a.sessions.RevokeUser(ctx, id); err != nil {
		zap.L().Error("Failed to revoke sessions of deleted user", zap.Error(err), zap.String("userID", id))
	}

	for _, f := range files {
		if f.IsFolder || f.StoragePath == "" {
			continue
		}

		if err := a.blobs.Delete(ctx, f.StoragePath); err != nil && !errors.Is(err, storage.ErrNotExist) {
			zap.L().Error("Failed to delete blob of deleted user", zap.Error(err), zap.String("key", f.StoragePath))
		}
	}

	return nil
}

func (a *Admin) Settings(ctx context.Context) (SettingsView, error) {
	return a.settings.Get(ctx)
}

func (a *Admin) UpdateSettings(ctx context.Context, u SettingsUpdate) (SettingsView, error) {
	return a.settings.Update(ctx, u)
}
