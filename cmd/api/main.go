package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"roombooking/internal/config"
	"roombooking/internal/database"
	"roombooking/internal/logging"
	"roombooking/internal/metrics"
	"roombooking/internal/modules/booking"
	"roombooking/internal/modules/reconcile"
	"roombooking/internal/notification"
	"roombooking/internal/pkg/clock"
	jwtsvc "roombooking/internal/pkg/jwt"
	"roombooking/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("dev")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.AppEnv)

	policy, err := cfg.Booking.StatusPolicy()
	if err != nil {
		logger.Fatal().Err(err).Msg("status policy")
	}

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connect")
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(ctx, db, policy.Active.Strings(), repository.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("database migrate")
	}

	userRepo := repository.NewUserRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	bookingRepo := repository.NewBookingRepository(db)

	m := metrics.New(cfg.Metrics.Namespace, prometheus.DefaultRegisterer)
	hub := notification.NewHub(logger)
	defer hub.Close()
	clk := clock.Real()
	j := jwtsvc.New(cfg.JWT.Secret, cfg.JWT.TTL)

	bookingOpts := []booking.Option{booking.WithPublisher(hub), booking.WithMetrics(m)}
	if cfg.SMTP.Host != "" {
		client, err := notification.NewSMTPClient(notification.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("smtp client")
		}
		mailer := notification.NewMailer(client, cfg.SMTP.From, cfg.SMTP.RatePerSecond, cfg.Location(), logger)
		bookingOpts = append(bookingOpts, booking.WithNotifier(mailer))
	} else {
		logger.Warn().Msg("SMTP_HOST not set, confirmation emails are disabled")
	}

	bookingService := booking.NewService(bookingRepo, roomRepo, userRepo, clk, booking.Config{
		Policy:        policy,
		MaxDuration:   cfg.Booking.MaxDuration,
		MinCancelLead: cfg.Booking.MinCancelLead,
		CancelMode:    cfg.Booking.CancelMode,
		Location:      cfg.Location(),
	}, logger, bookingOpts...)

	var rdb *redis.Client
	if cfg.Redis.Address != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
	}

	var scheduler *reconcile.Scheduler
	if cfg.Reconcile.Enabled {
		var rooms reconcile.RoomStore
		if cfg.Reconcile.RoomAvailability {
			rooms = roomRepo
		}
		sweeper := reconcile.NewSweeper(bookingRepo, rooms, policy, hub, logger)
		schedOpts := []reconcile.SchedulerOption{reconcile.WithMetrics(m)}
		if rdb != nil {
			schedOpts = append(schedOpts, reconcile.WithLock(
				reconcile.NewRedisLock(rdb, reconcile.DefaultLockKey, cfg.Reconcile.LockTTL)))
		}
		scheduler = reconcile.NewScheduler(sweeper, clk, cfg.Reconcile.Interval, logger, schedOpts...)
		go scheduler.Start(ctx)
	}

	if cfg.IsProdLike() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := newRouter(routerDeps{
		logger:   logger,
		db:       db,
		redis:    rdb,
		metrics:  m,
		hub:      hub,
		tokens:   j,
		users:    userRepo,
		rooms:    roomRepo,
		bookings: bookingService,
		origins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	if scheduler != nil {
		scheduler.Stop()
	}
}
