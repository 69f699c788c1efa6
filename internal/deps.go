package internal

import (
	"bitwise74/drive-api/config"
	"bitwise74/drive-api/db"
	"bitwise74/drive-api/internal/repository"
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/internal/session"
	"bitwise74/drive-api/internal/storage"
	"bitwise74/drive-api/pkg/security"
	"bitwise74/drive-api/pkg/util"
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Redis    *redis.Client
	Store    *repository.Store
	Blobs    storage.Storage
	Sessions *session.Manager
	Argon    *security.ArgonHash

	Settings *service.Settings
	Auth     *service.Auth
	Files    *service.Files
	Shares   *service.Shares
	Admin    *service.Admin

	closers []func()
}

// New connects to every backend selected in cfg and builds the services
func New(ctx context.Context, cfg *config.Config) (*Deps, error) {
	conn, err := db.New(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}

	var blobs storage.Storage
	switch cfg.StorageType {
	case "s3":
		blobs, err = storage.NewS3(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client, %w", err)
		}
	default:
		if err := util.RequireMounted(cfg.StoragePath, "Storage directory"); err != nil {
			return nil, err
		}

		blobs, err = storage.NewLocal(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
	}

	var (
		rdb      *redis.Client
		sessions session.Store
	)

	switch cfg.SessionStore {
	case "redis":
		rdb, err = session.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		sessions = session.NewRedisStore(rdb)
	default:
		gs := session.NewGormStore(conn)
		if n, err := gs.DeleteExpired(ctx); err != nil {
			zap.L().Error("Failed to clean up expired sessions", zap.Error(err))
		} else if n > 0 {
			zap.L().Debug("Cleaned up expired sessions", zap.Int64("count", n))
		}
		sessions = gs
	}

	var mailer service.Mailer = service.LogMailer{}
	if cfg.MailHost != "" {
		mailer = service.NewSMTPMailer(cfg.MailHost, cfg.MailPort, cfg.MailUsername, cfg.MailPassword, cfg.MailSender)
	}

	d := Build(cfg, conn, blobs, sessions, mailer, security.New())
	d.Redis = rdb

	service.PurgeExpiredTokens(ctx, d.Store)

	return d, nil
}

// Build wires the services on top of already opened backends
func Build(cfg *config.Config, conn *gorm.DB, blobs storage.Storage, sessions session.Store, mailer service.Mailer, argon *security.ArgonHash) *Deps {
	store := repository.New(conn)
	manager := session.NewManager(sessions, cfg.JWTSecret, cfg.SessionTTL)
	settings := service.NewSettings(store, service.SettingsView{
		DefaultQuota:      cfg.DefaultQuota,
		AllowRegistration: true,
		MaxUploadSize:     cfg.MaxUpload,
	})

	return &Deps{
		Config:   cfg,
		DB:       conn,
		Store:    store,
		Blobs:    blobs,
		Sessions: manager,
		Argon:    argon,

		Settings: settings,
		Auth:     service.NewAuth(store, manager, argon, settings, mailer, cfg.PublicURL),
		Files:    service.NewFiles(store, blobs, settings),
		Shares:   service.NewShares(store, blobs, argon, cfg.PublicURL),
		Admin:    service.NewAdmin(store, blobs, manager, argon, settings),
	}
}

// OnClose registers fn to run when the dependencies are closed. Functions run
// in reverse order of registration, before the backends are disconnected.
func (d *Deps) OnClose(fn func()) {
	d.closers = append(d.closers, fn)
}

func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil

	if d.Redis != nil {
		d.Redis.Close()
	}

	if sqlDB, err := d.DB.DB(); err == nil {
		sqlDB.Close()
	}
}
