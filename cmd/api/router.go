package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"roombooking/internal/metrics"
	"roombooking/internal/middleware"
	"roombooking/internal/modules/auth"
	"roombooking/internal/modules/booking"
	"roombooking/internal/modules/room"
	"roombooking/internal/notification"
	jwtsvc "roombooking/internal/pkg/jwt"
	"roombooking/internal/repository"
)

type routerDeps struct {
	logger   zerolog.Logger
	db       *gorm.DB
	redis    *redis.Client // optional
	metrics  *metrics.Metrics
	hub      *notification.Hub
	tokens   *jwtsvc.Service
	users    *repository.UserRepository
	rooms    *repository.RoomRepository
	bookings *booking.Service
	origins  []string
	// metricsHandler defaults to the global Prometheus registry.
	metricsHandler http.Handler
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.RequestLogger(d.logger),
		middleware.CORS(d.origins),
		middleware.Metrics(d.metrics),
	)

	if d.metricsHandler == nil {
		d.metricsHandler = promhttp.Handler()
	}
	r.GET("/metrics", gin.WrapH(d.metricsHandler))
	r.GET("/healthz", healthHandler(d.db, d.redis))
	notification.NewWSHandler(d.hub, d.tokens, d.origins).RegisterRoutes(r)

	authHandler := auth.NewHandler(auth.NewService(d.users, d.tokens))
	roomHandler := room.NewHandler(room.NewService(d.rooms))
	bookingHandler := booking.NewHandler(d.bookings)

	v1 := r.Group("/api/v1")
	{
		// public
		authHandler.RegisterPublicRoutes(v1)
		roomHandler.RegisterPublicRoutes(v1)

		protected := v1.Group("")
		protected.Use(middleware.JWTAuth(d.tokens))
		{
			authHandler.RegisterProtectedRoutes(protected)
			roomHandler.RegisterAdminRoutes(protected)
			bookingHandler.RegisterRoutes(protected)
		}
	}
	return r
}

func healthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok"}
		healthy := true
		if err := pingDB(ctx, db); err != nil {
			checks["database"] = err.Error()
			healthy = false
		}
		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			}
		}

		status := http.StatusOK
		if !healthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"healthy": healthy, "checks": checks})
	}
}

func pingDB(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
