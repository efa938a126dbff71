package repository

import (
	"context"
	"errors"
	"time"

	"roombooking/internal/database"
	"roombooking/internal/domain"

	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

type roomModel struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string    `gorm:"column:name;size:255;not null;uniqueIndex"`
	Location     *string   `gorm:"column:location"`
	Floor        *string   `gorm:"column:floor;size:32"`
	Capacity     int       `gorm:"column:capacity;not null"`
	Description  *string   `gorm:"column:description"`
	Equipment    *string   `gorm:"column:equipment"`
	HasProjector bool      `gorm:"column:has_projector;not null"`
	IsAvailable  bool      `gorm:"column:is_available;not null"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toDomainRoom(m roomModel) *domain.Room {
	return &domain.Room{
		ID:           m.ID,
		Name:         m.Name,
		Location:     deref(m.Location),
		Floor:        deref(m.Floor),
		Capacity:     m.Capacity,
		Description:  deref(m.Description),
		Equipment:    deref(m.Equipment),
		HasProjector: m.HasProjector,
		IsAvailable:  m.IsAvailable,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

func toRoomModel(r *domain.Room) roomModel {
	return roomModel{
		ID:           r.ID,
		Name:         r.Name,
		Location:     optional(r.Location),
		Floor:        optional(r.Floor),
		Capacity:     r.Capacity,
		Description:  optional(r.Description),
		Equipment:    optional(r.Equipment),
		HasProjector: r.HasProjector,
		IsAvailable:  r.IsAvailable,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	m := toRoomModel(room)
	if err := conn(ctx, r.db).Create(&m).Error; err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	*room = *toDomainRoom(m)
	return nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var m roomModel
	err := conn(ctx, r.db).First(&m, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return toDomainRoom(m), nil
}

func (r *RoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	var rows []roomModel
	if err := conn(ctx, r.db).Order("name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Room, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainRoom(m))
	}
	return out, nil
}

func (r *RoomRepository) Update(ctx context.Context, room *domain.Room) error {
	m := toRoomModel(room)
	tx := conn(ctx, r.db).
		Model(&roomModel{}).
		Where("id = ?", room.ID).
		Updates(map[string]any{
			"name":          m.Name,
			"location":      m.Location,
			"floor":         m.Floor,
			"capacity":      m.Capacity,
			"description":   m.Description,
			"equipment":     m.Equipment,
			"has_projector": m.HasProjector,
			"updated_at":    time.Now().UTC(),
		})
	if tx.Error != nil {
		if database.IsUniqueViolation(tx.Error) {
			return ErrDuplicate
		}
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	tx := conn(ctx, r.db).Delete(&roomModel{}, id)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetAvailability writes is_available only when it differs, so the returned
// count is the number of rooms that actually flipped.
func (r *RoomRepository) SetAvailability(ctx context.Context, id int64, available bool) (int64, error) {
	tx := conn(ctx, r.db).
		Model(&roomModel{}).
		Where("id = ? AND is_available <> ?", id, available).
		Updates(map[string]any{
			"is_available": available,
			"updated_at":   time.Now().UTC(),
		})
	return tx.RowsAffected, tx.Error
}
