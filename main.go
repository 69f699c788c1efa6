package main

import (
	"bitwise74/drive-api/app"
	"bitwise74/drive-api/config"
	"bitwise74/drive-api/internal"
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	cfg := config.Get()

	if err := app.SetupLogger(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	d, err := internal.New(context.Background(), cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize dependencies", zap.Error(err))
	}
	defer d.Close()

	router := app.NewRouter(d)

	addr := fmt.Sprintf(":%d", cfg.Port)
	zap.L().Info("Server starting", zap.String("addr", addr), zap.String("storage", cfg.StorageType), zap.String("sessions", cfg.SessionStore))

	if cfg.SSLEnabled {
		err = router.RunTLS(addr, cfg.SSLCertPath, cfg.SSLKeyPath)
	} else {
		err = router.Run(addr)
	}

	if err != nil {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}
