// Package testutil holds fixtures shared by the test suites of several packages
package testutil

import (
	"bitwise74/drive-api/db"
	"bitwise74/drive-api/internal/model"
	"bitwise74/drive-api/pkg/security"
	"bitwise74/drive-api/pkg/util"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB opens a private in-memory sqlite database with every table migrated.
// It's closed when the test ends.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", util.RandStr(16))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(conn))

	t.Cleanup(func() { sqlDB.Close() })

	return conn
}

// CreateUser inserts a verified user with the given quota. The password is
// always "password123".
func CreateUser(t testing.TB, conn *gorm.DB, email string, quota int64) *model.User {
	t.Helper()

	hash, err := security.NewWeak().GenerateFromPassword(Password)
	require.NoError(t, err)

	id, err := security.NewUserID()
	require.NoError(t, err)

	u := &model.User{
		ID:           id,
		Name:         "Test User",
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleUser,
		Quota:        quota,
		Verified:     true,
	}
	require.NoError(t, conn.Create(u).Error)

	return u
}

const Password = "password123"
