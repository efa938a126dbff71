package domain

import "time"

type Room struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name" validate:"required"`
	Location     string    `json:"location,omitempty"`
	Floor        string    `json:"floor,omitempty"`
	Capacity     int       `json:"capacity" validate:"required,gt=0"`
	Description  string    `json:"description,omitempty"`
	Equipment    string    `json:"equipment,omitempty"`
	HasProjector bool      `json:"has_projector"`
	IsAvailable  bool      `json:"is_available"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
