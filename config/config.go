// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configPath = pflag.String("config", ".", "Directory containing config.toml")

	validLogLevels     = []string{"debug", "info", "warn", "error", "fatal"}
	validStorageTypes  = []string{"local", "s3"}
	validDBDrivers     = []string{"sqlite", "postgres"}
	validSessionStores = []string{"database", "redis"}
)

// Config is a typed snapshot of the viper state, taken after Setup validated it
type Config struct {
	LogLevel string

	Port          int
	PublicURL     string
	CORSOrigins   []string
	SSLEnabled    bool
	SSLCertPath   string
	SSLKeyPath    string
	JWTSecret     string
	SessionTTL    time.Duration
	RateLimit     int
	TurnstileOn   bool
	TurnstileKey  string
	DBDriver      string
	DBDSN         string
	SessionStore  string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StorageType  string
	StoragePath  string
	DefaultQuota int64
	MaxUpload    int64

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	MailHost     string
	MailPort     int
	MailUsername string
	MailPassword string
	MailSender   string
}

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	if !pflag.Parsed() {
		pflag.Parse()
	}
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configPath)

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.public_url", "host_public_url")
	v.BindEnv("host.cors", "host_cors")

	v.BindEnv("host.ssl.enabled", "host_ssl_enabled")
	v.BindEnv("host.ssl.certificate_path", "host_ssl_certificate_path")
	v.BindEnv("host.ssl.certificate_key_path", "host_ssl_certificate_key_path")

	v.BindEnv("database.driver", "database_driver")
	v.BindEnv("database.dsn", "database_dsn")

	v.BindEnv("security.jwt_secret", "security_jwt_secret")
	v.BindEnv("security.session_ttl", "security_session_ttl")
	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("session.store", "session_store")
	v.BindEnv("redis.addr", "redis_addr")
	v.BindEnv("redis.password", "redis_password")
	v.BindEnv("redis.db", "redis_db")

	v.BindEnv("storage.type", "storage_type")
	v.BindEnv("storage.path", "storage_path")
	v.BindEnv("storage.default_quota", "storage_default_quota")

	v.BindEnv("upload.max_size", "upload_max_size")

	v.BindEnv("s3.bucket", "s3_bucket")
	v.BindEnv("s3.region", "s3_region")
	v.BindEnv("s3.endpoint", "s3_endpoint")
	v.BindEnv("s3.access_key_id", "s3_access_key_id")
	v.BindEnv("s3.secret_access_key", "s3_secret_access_key")

	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.username", "mail_username")
	v.BindEnv("mail.password", "mail_password")
	v.BindEnv("mail.sender", "mail_sender")

	v.BindEnv("cloudflare.turnstile.enabled", "cloudflare_turnstile_enabled")
	v.BindEnv("cloudflare.turnstile.secret_token", "cloudflare_turnstile_secret_token")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.public_url", "http://localhost:5173")
	v.SetDefault("host.cors", "http://localhost:5173")
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "database.db")

	v.SetDefault("security.session_ttl", "720h")
	v.SetDefault("security.rate_limit", 20)

	v.SetDefault("session.store", "database")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "uploads")
	v.SetDefault("storage.default_quota", int64(5<<30))

	v.SetDefault("upload.max_size", 100)

	v.SetDefault("mail.port", 587)

	v.SetDefault("cloudflare.turnstile.enabled", false)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(v.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file, %w", err)
		}

		fmt.Println("[WARNING]: config.toml not found, using defaults and environment variables")
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetString("host.public_url") == "" {
		return errors.New("host.public_url can't be empty")
	}

	if strings.TrimSpace(v.GetString("host.cors")) == "" {
		return errors.New("host.cors needs at least one allowed origin")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if v.GetString("security.jwt_secret") == "" {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	if v.GetDuration("security.session_ttl") <= 0 {
		return errors.New("security.session_ttl must be a positive duration")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if !slices.Contains(validDBDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database.dsn can't be empty")
	}

	switch v.GetString("session.store") {
	case "redis":
		if v.GetString("redis.addr") == "" {
			return errors.New("redis.addr can't be empty when using the redis session store")
		}
	case "database":
	default:
		return fmt.Errorf("invalid session store provided, expected one of %v", validSessionStores)
	}

	switch v.GetString("storage.type") {
	case "s3":
		if v.GetString("s3.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
		if v.GetString("s3.access_key_id") == "" {
			return errors.New("account access id can't be empty")
		}
		if v.GetString("s3.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
	case "local":
		if v.GetString("storage.path") == "" {
			return errors.New("storage.path can't be empty")
		}
	default:
		return fmt.Errorf("invalid storage type provided, expected one of %v", validStorageTypes)
	}

	if v.GetInt64("storage.default_quota") < 0 {
		return errors.New("storage.default_quota can't be negative")
	}

	if v.GetInt("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetString("mail.host") == "" {
		zap.L().Warn("No mail.host specified, verification and password reset mails will only be logged")
	} else if v.GetString("mail.sender") == "" {
		return errors.New("mail.sender can't be empty when mail.host is set")
	}

	if !v.GetBool("cloudflare.turnstile.enabled") {
		fmt.Println("[WARNING]: Cloudflare's turnstile is disabled. Some public endpoints won't be guarded against bots")
	} else {
		if v.GetString("cloudflare.turnstile.secret_token") == "" {
			return errors.New("turnstile secret token is missing")
		}
	}

	return nil
}

// Get builds a Config from the current viper state. upload.max_size is
// configured in MiB and returned in bytes.
func Get() *Config {
	var origins []string
	for _, o := range strings.Split(v.GetString("host.cors"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		LogLevel: v.GetString("app.log_level"),

		Port:          v.GetInt("host.port"),
		PublicURL:     strings.TrimRight(v.GetString("host.public_url"), "/"),
		CORSOrigins:   origins,
		SSLEnabled:    v.GetBool("host.ssl.enabled"),
		SSLCertPath:   v.GetString("host.ssl.certificate_path"),
		SSLKeyPath:    v.GetString("host.ssl.certificate_key_path"),
		JWTSecret:     v.GetString("security.jwt_secret"),
		SessionTTL:    v.GetDuration("security.session_ttl"),
		RateLimit:     v.GetInt("security.rate_limit"),
		TurnstileOn:   v.GetBool("cloudflare.turnstile.enabled"),
		TurnstileKey:  v.GetString("cloudflare.turnstile.secret_token"),
		DBDriver:      v.GetString("database.driver"),
		DBDSN:         v.GetString("database.dsn"),
		SessionStore:  v.GetString("session.store"),
		RedisAddr:     v.GetString("redis.addr"),
		RedisPassword: v.GetString("redis.password"),
		RedisDB:       v.GetInt("redis.db"),

		StorageType:  v.GetString("storage.type"),
		StoragePath:  v.GetString("storage.path"),
		DefaultQuota: v.GetInt64("storage.default_quota"),
		MaxUpload:    v.GetInt64("upload.max_size") << 20,

		S3Bucket:    v.GetString("s3.bucket"),
		S3Region:    v.GetString("s3.region"),
		S3Endpoint:  v.GetString("s3.endpoint"),
		S3AccessKey: v.GetString("s3.access_key_id"),
		S3SecretKey: v.GetString("s3.secret_access_key"),

		MailHost:     v.GetString("mail.host"),
		MailPort:     v.GetInt("mail.port"),
		MailUsername: v.GetString("mail.username"),
		MailPassword: v.GetString("mail.password"),
		MailSender:   v.GetString("mail.sender"),
	}
}
