package repository

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"roombooking/internal/database"
	"roombooking/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(":memory:", zerolog.Nop())
	require.NoError(t, err)

	active := domain.DefaultActiveStatuses.Strings()
	require.NoError(t, database.Migrate(context.Background(), db, active, Models()...))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func seedRoom(t *testing.T, db *gorm.DB, name string) *domain.Room {
	t.Helper()
	room := &domain.Room{Name: name, Capacity: 8, IsAvailable: true}
	require.NoError(t, NewRoomRepository(db).Create(context.Background(), room))
	return room
}

func seedUser(t *testing.T, db *gorm.DB, email string) *domain.User {
	t.Helper()
	u := &domain.User{Name: "Somchai", Email: email, PasswordHash: "x", Role: domain.RoleUser}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), u))
	return u
}

func at(h, m int) time.Time {
	return time.Date(2026, 3, 10, h, m, 0, 0, time.UTC)
}
