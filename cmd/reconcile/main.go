// Command reconcile runs a single status sweep and exits. It suits
// deployments that drive reconciliation from cron instead of the API
// process.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"roombooking/internal/config"
	"roombooking/internal/database"
	"roombooking/internal/logging"
	"roombooking/internal/modules/reconcile"
	"roombooking/internal/pkg/clock"
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

	var rooms reconcile.RoomStore
	if cfg.Reconcile.RoomAvailability {
		rooms = repository.NewRoomRepository(db)
	}
	sweeper := reconcile.NewSweeper(repository.NewBookingRepository(db), rooms, policy, nil, logger)

	var opts []reconcile.SchedulerOption
	if cfg.Redis.Address != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		opts = append(opts, reconcile.WithLock(
			reconcile.NewRedisLock(rdb, reconcile.DefaultLockKey, cfg.Reconcile.LockTTL)))
	}

	sched := reconcile.NewScheduler(sweeper, clock.Real(), cfg.Reconcile.Interval, logger, opts...)
	rep, ran, err := sched.RunOnce(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("reconcile failed")
	}
	if !ran {
		logger.Info().Msg("another instance holds the reconcile lock, nothing to do")
		return
	}
	logger.Info().
		Int("scanned", rep.Scanned).
		Int("bookings_updated", rep.BookingsUpdated).
		Int("rooms_updated", rep.RoomsUpdated).
		Int("failures", rep.Failures).
		Dur("duration", rep.Duration).
		Msg("reconcile completed")
}
