package main

import (
	"context"
	"errors"
	"os"

	"golang.org/x/crypto/bcrypt"

	"roombooking/internal/config"
	"roombooking/internal/database"
	"roombooking/internal/domain"
	"roombooking/internal/logging"
	"roombooking/internal/modules/auth"
	"roombooking/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logging.New("dev")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	logger := logging.New(cfg.AppEnv)
	ctx := context.Background()

	policy, err := cfg.Booking.StatusPolicy()
	if err != nil {
		logger.Fatal().Err(err).Msg("status policy")
	}

	db, err := database.Connect(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("DB connection failed")
	}
	if err := database.Migrate(ctx, db, policy.Active.Strings(), repository.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("migrate failed")
	}

	users := repository.NewUserRepository(db)
	rooms := repository.NewRoomRepository(db)

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	// ================== USERS ==================
	seedUsers := []struct {
		name, email, password string
		role                  domain.UserRole
	}{
		{"Administrator", "admin@roombooking.local", adminPassword, domain.RoleAdmin},
		{"Front Desk", "desk@roombooking.local", "employee123", domain.RoleEmployee},
		{"Demo User", "user@roombooking.local", "user123", domain.RoleUser},
	}
	for _, u := range seedUsers {
		hash, err := auth.HashPassword(u.password, bcrypt.DefaultCost)
		if err != nil {
			logger.Fatal().Err(err).Msg("hash password")
		}
		err = users.Create(ctx, &domain.User{Name: u.name, Email: u.email, PasswordHash: hash, Role: u.role})
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			logger.Info().Str("email", u.email).Msg("user exists, skipped")
		case err != nil:
			logger.Fatal().Err(err).Str("email", u.email).Msg("create user")
		default:
			logger.Info().Str("email", u.email).Str("role", string(u.role)).Msg("user created")
		}
	}

	// ================== ROOMS ==================
	seedRooms := []domain.Room{
		{Name: "Mekong", Location: "Building A", Floor: "3", Capacity: 12, Equipment: "TV, whiteboard", HasProjector: true},
		{Name: "Ping", Location: "Building A", Floor: "2", Capacity: 6, Equipment: "Whiteboard"},
		{Name: "Chao Phraya", Location: "Building B", Floor: "5", Capacity: 30, Description: "Town hall room", HasProjector: true},
		{Name: "Wang", Location: "Building B", Floor: "1", Capacity: 4},
	}
	for i := range seedRooms {
		r := &seedRooms[i]
		r.IsAvailable = true
		err := rooms.Create(ctx, r)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			logger.Info().Str("room", r.Name).Msg("room exists, skipped")
		case err != nil:
			logger.Fatal().Err(err).Str("room", r.Name).Msg("create room")
		default:
			logger.Info().Str("room", r.Name).Int64("id", r.ID).Msg("room created")
		}
	}

	logger.Info().Msg("seed completed")
}
