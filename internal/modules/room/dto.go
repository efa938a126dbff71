package room

// RoomRequest is the body of create and update calls.
type RoomRequest struct {
	Name         string `json:"name" validate:"required,max=255"`
	Location     string `json:"location" validate:"max=255"`
	Floor        string `json:"floor" validate:"max=50"`
	Capacity     int    `json:"capacity" validate:"required,gt=0"`
	Description  string `json:"description"`
	Equipment    string `json:"equipment"`
	HasProjector bool   `json:"has_projector"`
}
