package service

import (
	"bitwise74/drive-api/internal/repository"
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"
)

const (
	SettingDefaultQuota      = "default_quota"
	SettingAllowRegistration = "allow_registration"
	SettingMaxUploadSize     = "max_upload_size"
)

// SettingsView is the typed form of the settings table
type SettingsView struct {
	DefaultQuota      int64 `json:"defaultQuota"`
	AllowRegistration bool  `json:"allowRegistration"`
	MaxUploadSize     int64 `json:"maxUploadSize"`
}

// SettingsUpdate only changes the fields that are set
type SettingsUpdate struct {
	DefaultQuota      *int64 `json:"defaultQuota"`
	AllowRegistration *bool  `json:"allowRegistration"`
	MaxUploadSize     *int64 `json:"maxUploadSize"`
}

// Settings reads runtime settings from the database. Keys that were never
// written fall back to the values from the config file.
type Settings struct {
	repo     repository.Settings
	defaults SettingsView
}

func NewSettings(store *repository.Store, defaults SettingsView) *Settings {
	return &Settings{repo: store.Settings(), defaults: defaults}
}

func (s *Settings) Get(ctx context.Context) (SettingsView, error) {
	raw, err := s.repo.All(ctx)
	if err != nil {
		return SettingsView{}, fmt.Errorf("failed to load settings, %w", err)
	}

	v := s.defaults

	if q, ok := raw[SettingDefaultQuota]; ok {
		if n, err := strconv.ParseInt(q, 10, 64); err == nil && n >= 0 {
			v.DefaultQuota = n
		} else {
			zap.L().Warn("Ignoring malformed setting", zap.String("key", SettingDefaultQuota), zap.String("value", q))
		}
	}

	if a, ok := raw[SettingAllowRegistration]; ok {
		if b, err := strconv.ParseBool(a); err == nil {
			v.AllowRegistration = b
		} else {
			zap.L().Warn("Ignoring malformed setting", zap.String("key", SettingAllowRegistration), zap.String("value", a))
		}
	}

	if m, ok := raw[SettingMaxUploadSize]; ok {
		if n, err := strconv.ParseInt(m, 10, 64); err == nil && n > 0 {
			v.MaxUploadSize = n
		} else {
			zap.L().Warn("Ignoring malformed setting", zap.String("key", SettingMaxUploadSize), zap.String("value", m))
		}
	}

	return v, nil
}

func (s *Settings) Update(ctx context.Context, u SettingsUpdate) (SettingsView, error) {
	values := map[string]string{}

	if u.DefaultQuota != nil {
		if *u.DefaultQuota < 0 {
			return SettingsView{}, Validation("default quota can't be negative")
		}
		values[SettingDefaultQuota] = strconv.FormatInt(*u.DefaultQuota, 10)
	}

	if u.AllowRegistration != nil {
		values[SettingAllowRegistration] = strconv.FormatBool(*u.AllowRegistration)
	}

	if u.MaxUploadSize != nil {
		if *u.MaxUploadSize <= 0 {
			return SettingsView{}, Validation("max upload size must be bigger than 0")
		}
		values[SettingMaxUploadSize] = strconv.FormatInt(*u.MaxUploadSize, 10)
	}

	if err := s.repo.Set(ctx, values); err != nil {
		return SettingsView{}, fmt.Errorf("failed to save settings, %w", err)
	}

	return s.Get(ctx)
}
