package service

import (
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/internal/repository"
	"bitwise74/drive-api/pkg/security"
	"bitwise74/drive-api/pkg/validators"
	"context"
	"errors"
	"fmt"
	"strings"
)

type newUserInput struct {
	Name     string
	Email    string
	Password string
	Role     model.Role
	Quota    int64
	Verified bool
}

// validateAccount normalizes the email and checks every field a new account
// needs. It returns the normalized email.
func validateAccount(name, email, password string) (string, error) {
	if err := validators.DisplayNameValidator(name); err != nil {
		return "", Validation(err.Error())
	}

	email = validators.NormalizeEmail(email)
	if err := validators.EmailValidator(email); err != nil {
		return "", Validation(err.Error())
	}

	if err := validators.PasswordValidator(password); err != nil {
		return "", Validation(err.Error())
	}

	return email, nil
}

// createUser inserts a new account. Fields must already be validated.
func createUser(ctx context.Context, store *repository.Store, argon *security.ArgonHash, in newUserInput) (*model.User, error) {
	_, err := store.Users().ByEmail(ctx, in.Email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up email, %w", err)
	}

	hash, err := argon.GenerateFromPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password, %w", err)
	}

	id, err := security.NewUserID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate user id, %w", err)
	}

	u := &model.User{
		ID:           id,
		Name:         strings.TrimSpace(in.Name),
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Quota:        in.Quota,
		Verified:     in.Verified,
	}

	if err := store.Users().Create(ctx, u); err != nil {
		// Lost a race with another registration for the same address
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user, %w", err)
	}

	return u, nil
}
