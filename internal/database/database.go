package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"roombooking/internal/domain"
)

// OverlapGuardName names the storage-level rule that rejects overlapping
// active bookings: an exclusion constraint on PostgreSQL, triggers on SQLite.
const OverlapGuardName = "bookings_no_overlap"

const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

func IsPostgresDSN(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://")
}

func Connect(dsn string, logger zerolog.Logger) (*gorm.DB, error) {
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}

	if IsPostgresDSN(dsn) {
		logger.Info().Msg("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	}

	logger.Info().Str("dsn", dsn).Msg("using SQLite for local development")

	db, err := gorm.Open(
		gormsqlite.New(gormsqlite.Config{
			DriverName: "sqlite",
			DSN:        dsn,
		}),
		cfg,
	)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; one connection also keeps ":memory:"
	// databases alive across calls.
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates the schema for models and installs the overlap guard for
// the given active statuses.
func Migrate(ctx context.Context, db *gorm.DB, activeStatuses []string, models ...any) error {
	if err := db.WithContext(ctx).AutoMigrate(models...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	if err := canonicalizeStatuses(ctx, db); err != nil {
		return err
	}
	if len(activeStatuses) == 0 {
		return nil
	}

	statusList := quoteList(activeStatuses)
	var stmts []string
	if db.Dialector.Name() == "postgres" {
		stmts = []string{
			`CREATE EXTENSION IF NOT EXISTS btree_gist`,
			fmt.Sprintf(`DO $$
BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = '%[1]s') THEN
    ALTER TABLE bookings ADD CONSTRAINT %[1]s EXCLUDE USING gist (
      room_id WITH =,
      tstzrange(start_time, end_time, '[)') WITH &&
    ) WHERE (status IN (%[2]s));
  END IF;
END $$`, OverlapGuardName, statusList),
		}
	} else {
		stmts = []string{
			fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %[1]s_insert
BEFORE INSERT ON bookings
WHEN NEW.status IN (%[2]s)
BEGIN
  SELECT RAISE(ABORT, '%[1]s') WHERE EXISTS (
    SELECT 1 FROM bookings
    WHERE room_id = NEW.room_id
      AND status IN (%[2]s)
      AND start_time < NEW.end_time
      AND end_time > NEW.start_time
  );
END`, OverlapGuardName, statusList),
			fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %[1]s_update
BEFORE UPDATE OF status, start_time, end_time, room_id ON bookings
WHEN NEW.status IN (%[2]s)
BEGIN
  SELECT RAISE(ABORT, '%[1]s') WHERE EXISTS (
    SELECT 1 FROM bookings
    WHERE room_id = NEW.room_id
      AND id <> NEW.id
      AND status IN (%[2]s)
      AND start_time < NEW.end_time
      AND end_time > NEW.start_time
  );
END`, OverlapGuardName, statusList),
		}
	}

	for _, stmt := range stmts {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			return fmt.Errorf("install overlap guard: %w", err)
		}
	}
	return nil
}

// canonicalizeStatuses rewrites booking statuses stored by older deployments
// ("confirmed", "IN_USE", ...) to their canonical value. Status filters and
// the overlap guard compare the stored text, so a legacy row would otherwise
// be invisible to both.
func canonicalizeStatuses(ctx context.Context, db *gorm.DB) error {
	if !db.WithContext(ctx).Migrator().HasTable("bookings") {
		return nil
	}
	for _, s := range domain.AllStatuses() {
		res := db.WithContext(ctx).Exec(
			`UPDATE bookings SET status = ? WHERE status <> ? AND LOWER(TRIM(status)) IN ?`,
			string(s), string(s), s.Spellings(),
		)
		if res.Error != nil {
			return fmt.Errorf("canonicalize %s bookings: %w", s, res.Error)
		}
	}
	return nil
}

// IsOverlapViolation reports whether err was raised by the overlap guard.
func IsOverlapViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgExclusionViolation && pgErr.ConstraintName == OverlapGuardName
	}
	return strings.Contains(err.Error(), OverlapGuardName)
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + strings.ReplaceAll(v, "'", "''") + "'"
	}
	return strings.Join(quoted, ", ")
}
