// Package app contains the HTTP surface of the API
package app

import (
	"bitwise74/drive-api/app/admin"
	"bitwise74/drive-api/app/auth"
	"bitwise74/drive-api/app/file"
	"bitwise74/drive-api/app/public"
	"bitwise74/drive-api/app/root"
	"bitwise74/drive-api/internal"
	"bitwise74/drive-api/pkg/middleware"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const jsonBodyLimit = 1 << 20

func NewRouter(d *internal.Deps) *gin.Engine {
	router := gin.New()

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     d.Config.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS", "HEAD"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "TurnstileToken", "Range", public.PasswordHeader},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		middleware.StripQueryParams("password"),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.MaxMultipartMemory = 8 << 20

	rateLimit := d.Config.RateLimit
	global := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
	})
	strict := middleware.NewRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: max(1, rateLimit/4),
		Burst:             max(2, rateLimit/2),
	})
	d.OnClose(global.Stop)
	d.OnClose(strict.Stop)

	jwt := middleware.NewAuthMiddleware(d.Auth)
	turnstile := middleware.NewTurnstileMiddleware(d.Config.TurnstileOn, d.Config.TurnstileKey)
	limitBody := middleware.BodySizeLimiter(jsonBodyLimit)

	with := func(h func(*gin.Context, *internal.Deps)) gin.HandlerFunc {
		return func(c *gin.Context) { h(c, d) }
	}

	main := router.Group("/api", global.Handler())
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", with(root.Heartbeat))
	}

	a := main.Group("/auth", limitBody)
	{
		// POST /api/auth/register	-> Creates an account and logs it in
		a.POST("/register", strict.Handler(), turnstile, with(auth.Register))

		// POST /api/auth/login		-> Starts a session
		a.POST("/login", strict.Handler(), with(auth.Login))

		// POST /api/auth/logout	-> Ends the current session
		a.POST("/logout", with(auth.Logout))

		// POST /api/auth/reset-password	-> Mails a password reset link
		a.POST("/reset-password", strict.Handler(), turnstile, with(auth.ResetPassword))

		// POST /api/auth/reset-password/confirm	-> Sets a new password
		a.POST("/reset-password/confirm", strict.Handler(), with(auth.ConfirmPasswordReset))

		// POST /api/auth/verify	-> Verifies an email address
		a.POST("/verify", strict.Handler(), with(auth.Verify))

		// GET /api/auth/me		-> Returns the logged in user
		a.GET("/me", jwt, auth.Me)
	}

	f := main.Group("/files", jwt)
	{
		// GET /api/files		-> Lists a folder or searches every file
		f.GET("", with(file.List))

		// GET /api/files/:id		-> Returns a file with its breadcrumbs
		f.GET("/:id", with(file.Fetch))

		// POST /api/files/folder	-> Creates a folder
		f.POST("/folder", limitBody, with(file.CreateFolder))

		// POST /api/files/upload	-> Uploads files from a multipart form
		f.POST("/upload", with(file.Upload))

		// GET /api/files/:id/download	-> Streams the content of a file
		f.GET("/:id/download", with(file.Download))

		// PATCH /api/files/:id/rename	-> Renames a file or folder
		f.PATCH("/:id/rename", limitBody, with(file.Rename))

		// DELETE /api/files/:id	-> Deletes a file or a folder with its contents
		f.DELETE("/:id", with(file.Delete))

		// POST /api/files/:id/share	-> Makes a file or folder public
		f.POST("/:id/share", limitBody, with(file.Share))

		// DELETE /api/files/:id/share	-> Revokes a share
		f.DELETE("/:id/share", with(file.Unshare))
	}

	p := main.Group("/public", strict.Handler(), limitBody)
	{
		// GET /api/public/info/:token	-> Describes a share
		p.GET("/info/:token", with(public.Info))

		// GET|POST /api/public/download/:token	-> Downloads a shared file
		p.GET("/download/:token", with(public.Download))
		p.POST("/download/:token", with(public.Download))

		// GET|POST /api/public/browse/:token	-> Lists a shared folder
		p.GET("/browse/:token", with(public.Browse))
		p.POST("/browse/:token", with(public.Browse))

		// POST /api/public/download-file/:token/:fileId	-> Downloads a file from a shared folder
		p.POST("/download-file/:token/:fileId", with(public.DownloadFile))
	}

	ad := main.Group("/admin", jwt, middleware.RequireAdmin(), limitBody)
	{
		// GET /api/admin/users		-> Lists every user
		ad.GET("/users", with(admin.ListUsers))

		// POST /api/admin/users	-> Creates a verified user
		ad.POST("/users", with(admin.CreateUser))

		// PATCH /api/admin/users/:id/quota	-> Changes the quota of a user
		ad.PATCH("/users/:id/quota", with(admin.SetQuota))

		// PATCH /api/admin/users/:id/block	-> Blocks or unblocks a user
		ad.PATCH("/users/:id/block", with(admin.SetBlocked))

		// PATCH /api/admin/users/:id/role	-> Changes the role of a user
		ad.PATCH("/users/:id/role", with(admin.SetRole))

		// DELETE /api/admin/users/:id	-> Deletes a user and all of their files
		ad.DELETE("/users/:id", with(admin.DeleteUser))

		// GET|POST /api/admin/settings	-> Reads or updates runtime settings
		ad.GET("/settings", with(admin.Settings))
		ad.POST("/settings", with(admin.UpdateSettings))
	}

	return router
}
