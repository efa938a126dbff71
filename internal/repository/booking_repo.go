package repository

import (
	"context"
	"errors"
	"time"

	"roombooking/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID          int64      `gorm:"column:id;primaryKey;autoIncrement"`
	RoomID      int64      `gorm:"column:room_id;not null;index:idx_bookings_room_time,priority:1"`
	UserID      int64      `gorm:"column:user_id;not null;index"`
	StartTime   time.Time  `gorm:"column:start_time;not null;index:idx_bookings_room_time,priority:2"`
	EndTime     time.Time  `gorm:"column:end_time;not null"`
	Title       *string    `gorm:"column:title"`
	Status      string     `gorm:"column:status;size:32;not null;index"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	CancelledAt *time.Time `gorm:"column:cancelled_at"`
}

func (bookingModel) TableName() string { return "bookings" }

// bookingRow is a booking joined with its room and requester names.
type bookingRow struct {
	bookingModel
	RoomName string `gorm:"column:room_name"`
	UserName string `gorm:"column:user_name"`
}

// BookingFilter narrows ListBookings. Zero values mean "any".
type BookingFilter struct {
	UserID   int64
	RoomID   int64
	Statuses []domain.BookingStatus
	From     *time.Time
	To       *time.Time
}

func toDomainBooking(m bookingModel) *domain.Booking {
	var title string
	if m.Title != nil {
		title = *m.Title
	}
	var cancelledAt *time.Time
	if m.CancelledAt != nil {
		v := m.CancelledAt.UTC()
		cancelledAt = &v
	}

	return &domain.Booking{
		ID:          m.ID,
		RoomID:      m.RoomID,
		UserID:      m.UserID,
		StartTime:   m.StartTime.UTC(),
		EndTime:     m.EndTime.UTC(),
		Title:       title,
		Status:      normalizeStatus(m.Status),
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
		CancelledAt: cancelledAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var title *string
	if b.Title != "" {
		v := b.Title
		title = &v
	}

	return bookingModel{
		ID:          b.ID,
		RoomID:      b.RoomID,
		UserID:      b.UserID,
		StartTime:   storedTime(b.StartTime),
		EndTime:     storedTime(b.EndTime),
		Title:       title,
		Status:      string(b.Status),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
		CancelledAt: b.CancelledAt,
	}
}

// storedTime is the canonical on-disk form: UTC, whole seconds. SQLite
// compares the stored text lexically, so every write must agree on it.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// normalizeStatus reads rows written with older vocabularies.
func normalizeStatus(raw string) domain.BookingStatus {
	s, err := domain.ParseStatus(raw)
	if err != nil {
		return domain.BookingStatus(raw)
	}
	return s
}

func statusStrings(statuses []domain.BookingStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

// WithinTx runs fn in one transaction. Calls made with the ctx handed to fn
// share it.
func (r *BookingRepository) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withinTx(ctx, r.db, fn)
}

// LockRoom takes a row lock on the room for the rest of the transaction
// (PostgreSQL) and reports ErrNotFound for unknown rooms. SQLite has no row
// locks; its single writer connection serialises the transaction instead.
func (r *BookingRepository) LockRoom(ctx context.Context, roomID int64) error {
	q := conn(ctx, r.db).Model(&roomModel{}).Select("id").Where("id = ?", roomID)
	if r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var ids []int64
	if err := q.Pluck("id", &ids).Error; err != nil {
		return err
	}
	if len(ids) == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *BookingRepository) InsertBooking(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		return err
	}
	b.ID = m.ID
	b.StartTime = m.StartTime
	b.EndTime = m.EndTime
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *BookingRepository) GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	err := conn(ctx, r.db).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainBooking(m), nil
}

// QueryBookingsByRoom returns the room's bookings in statuses that intersect
// rng. The filter is on the interval only, never on calendar dates. A nil
// statuses slice matches every status.
func (r *BookingRepository) QueryBookingsByRoom(ctx context.Context, roomID int64, statuses []domain.BookingStatus, rng domain.TimeRange) ([]domain.Booking, error) {
	q := conn(ctx, r.db).
		Model(&bookingModel{}).
		Where("room_id = ?", roomID).
		Where("start_time < ? AND end_time > ?", storedTime(rng.End), storedTime(rng.Start))
	if statuses != nil {
		q = q.Where("status IN ?", statusStrings(statuses))
	}

	var rows []bookingModel
	if err := q.Order("start_time").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

func (r *BookingRepository) QueryAllBookings(ctx context.Context) ([]domain.Booking, error) {
	var rows []bookingModel
	if err := conn(ctx, r.db).Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// ListBookings returns bookings joined with room and user names, newest
// start first.
func (r *BookingRepository) ListBookings(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	q := conn(ctx, r.db).
		Table("bookings AS b").
		Select("b.*, rm.name AS room_name, u.name AS user_name").
		Joins("LEFT JOIN rooms rm ON rm.id = b.room_id").
		Joins("LEFT JOIN users u ON u.id = b.user_id")

	if f.UserID != 0 {
		q = q.Where("b.user_id = ?", f.UserID)
	}
	if f.RoomID != 0 {
		q = q.Where("b.room_id = ?", f.RoomID)
	}
	if len(f.Statuses) > 0 {
		q = q.Where("b.status IN ?", statusStrings(f.Statuses))
	}
	if f.From != nil {
		q = q.Where("b.end_time > ?", storedTime(*f.From))
	}
	if f.To != nil {
		q = q.Where("b.start_time < ?", storedTime(*f.To))
	}

	var rows []bookingRow
	if err := q.Order("b.start_time DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, row := range rows {
		b := toDomainBooking(row.bookingModel)
		b.RoomName = row.RoomName
		b.UserName = row.UserName
		out = append(out, *b)
	}
	return out, nil
}

func (r *BookingRepository) UpdateBookingStatus(ctx context.Context, id int64, status domain.BookingStatus) (int64, error) {
	tx := conn(ctx, r.db).
		Model(&bookingModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	return tx.RowsAffected, tx.Error
}

// TransitionStatus moves a booking from one status to another and reports 0
// affected rows when the stored status is no longer from.
func (r *BookingRepository) TransitionStatus(ctx context.Context, id int64, from, to domain.BookingStatus) (int64, error) {
	tx := conn(ctx, r.db).
		Model(&bookingModel{}).
		Where("id = ? AND status = ?", id, string(from)).
		Updates(map[string]any{
			"status":     string(to),
			"updated_at": time.Now().UTC(),
		})
	return tx.RowsAffected, tx.Error
}

// CancelBooking marks the booking cancelled and keeps the row for history.
func (r *BookingRepository) CancelBooking(ctx context.Context, id int64, at time.Time) (int64, error) {
	tx := conn(ctx, r.db).
		Model(&bookingModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":       string(domain.StatusCancelled),
			"cancelled_at": at.UTC(),
			"updated_at":   time.Now().UTC(),
		})
	return tx.RowsAffected, tx.Error
}

func (r *BookingRepository) DeleteBooking(ctx context.Context, id int64) (int64, error) {
	tx := conn(ctx, r.db).Delete(&bookingModel{}, id)
	return tx.RowsAffected, tx.Error
}

// UpdateBookingDetails rewrites the range, title and status in one statement.
func (r *BookingRepository) UpdateBookingDetails(ctx context.Context, b *domain.Booking) (int64, error) {
	m := toBookingModel(b)
	tx := conn(ctx, r.db).
		Model(&bookingModel{}).
		Where("id = ?", b.ID).
		Updates(map[string]any{
			"start_time": m.StartTime,
			"end_time":   m.EndTime,
			"title":      m.Title,
			"status":     m.Status,
			"updated_at": time.Now().UTC(),
		})
	return tx.RowsAffected, tx.Error
}
