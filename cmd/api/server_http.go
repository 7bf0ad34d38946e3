package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	config "github.com/snapfeed/snapfeed/internal/config/api"
	"github.com/snapfeed/snapfeed/internal/kv"
	"github.com/snapfeed/snapfeed/internal/obs"
	pg "github.com/snapfeed/snapfeed/internal/repository/postgres"
	authsvc "github.com/snapfeed/snapfeed/internal/services/api/auth"
	followsvc "github.com/snapfeed/snapfeed/internal/services/api/follow"
	notifsvc "github.com/snapfeed/snapfeed/internal/services/api/notification"
	usersvc "github.com/snapfeed/snapfeed/internal/services/api/user"
)

type apiDeps struct {
	users    *pg.UserRepo
	sessions *pg.SessionRepo
	follows  *pg.FollowRepo
	notifs   *pg.NotificationRepo
	outbox   *pg.OutboxRepo
	tx       pg.Transactor
	store    kv.Store
}

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, db *pg.DB, d apiDeps) *http.Server {
	authUC := authsvc.NewUseCase(d.users, d.sessions, authsvc.Config{
		Secret:    []byte(cfg.Auth.JWTSecret),
		AccessTTL: cfg.Auth.AccessTTL,
	})
	followUC := followsvc.NewUseCase(d.users, d.follows, d.notifs, d.outbox, d.tx)
	userUC := usersvc.NewUseCase(d.users, d.follows, d.store, usersvc.Config{
		PresenceTTL: cfg.Presence.TTL,
	})

	if cfg.App.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		requestid.New(),
		accessLog(logger),
		gin.Recovery(),
		gzip.Gzip(gzip.DefaultCompression),
		corsMiddleware(),
	)

	r.GET("/healthz", func(c *gin.Context) {
		hctx, cancel := context.WithTimeout(c.Request.Context(), 500*time.Millisecond)
		defer cancel()
		if err := db.Pool.Ping(hctx); err != nil {
			c.String(http.StatusServiceUnavailable, "unhealthy: db")
			return
		}
		c.String(http.StatusOK, "ok")
	})
	r.GET("/metrics", gin.WrapH(obs.MetricsHandler()))

	v1 := r.Group("/v1")
	priv := v1.Group("", authsvc.Middleware(authUC.ParseAccess))

	authsvc.NewHandler(authUC).Register(v1, priv)
	followsvc.NewHandler(followUC).Register(priv)
	usersvc.NewHandler(userUC, followUC).Register(priv)
	notifsvc.NewHandler(d.notifs).Register(priv)

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           otelhttp.NewHandler(r, "api"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

func serveHTTP(srv *http.Server, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", cfg.Server.HTTPAddr))
	return srv.ListenAndServe()
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", requestid.Get(c)),
			zap.Duration("duration", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
			logger.Error("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PATCH, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Origin, Authorization, Accept, Accept-Encoding")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}
		c.Next()
	}
}
