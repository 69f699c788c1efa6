package internal

import (
	"bitwise74/drive-api/config"
	"bitwise74/drive-api/internal/service"
	"bitwise74/drive-api/internal/session"
	"bitwise74/drive-api/internal/storage"
	"bitwise74/drive-api/internal/testutil"
	"bitwise74/drive-api/pkg/middleware"
	"bitwise74/drive-api/pkg/security"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloseRunsRegisteredFuncs(t *testing.T) {
	conn := testutil.NewDB(t)
	cfg := &config.Config{JWTSecret: "secret", SessionTTL: time.Hour}

	d := Build(cfg, conn, storage.NewLocalFs(afero.NewMemMapFs()), session.NewGormStore(conn), service.LogMailer{}, security.NewWeak())

	var order []string
	d.OnClose(func() { order = append(order, "first") })
	d.OnClose(func() { order = append(order, "second") })

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{RequestsPerSecond: 1})
	d.OnClose(rl.Stop)

	d.Close()
	assert.Equal(t, []string{"second", "first"}, order)

	// Closing twice doesn't run anything again
	d.Close()
	assert.Len(t, order, 2)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}
