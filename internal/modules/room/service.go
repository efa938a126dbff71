package room

import (
	"context"
	"errors"
	"strings"

	"roombooking/internal/domain"
	"roombooking/internal/pkg/validator"
	"roombooking/internal/repository"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]domain.Room, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Room, error) {
	r, err := s.repo.GetByID(ctx, id)
	return r, mapRepoErr(err)
}

// Create registers a room. New rooms start available; occupancy is
// maintained by the reconcile sweep afterwards.
func (s *Service) Create(ctx context.Context, req RoomRequest) (*domain.Room, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	r := fromRequest(req)
	r.IsAvailable = true
	if err := s.repo.Create(ctx, r); err != nil {
		return nil, mapRepoErr(err)
	}
	return r, nil
}

func (s *Service) Update(ctx context.Context, id int64, req RoomRequest) (*domain.Room, error) {
	if err := validate(&req); err != nil {
		return nil, err
	}
	r := fromRequest(req)
	r.ID = id
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, mapRepoErr(err)
	}
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return mapRepoErr(s.repo.Delete(ctx, id))
}

func validate(req *RoomRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	if fields := validator.Validate(req); fields != nil {
		return &ValidationError{Fields: fields}
	}
	return nil
}

func fromRequest(req RoomRequest) *domain.Room {
	return &domain.Room{
		Name:         req.Name,
		Location:     strings.TrimSpace(req.Location),
		Floor:        strings.TrimSpace(req.Floor),
		Capacity:     req.Capacity,
		Description:  req.Description,
		Equipment:    req.Equipment,
		HasProjector: req.HasProjector,
	}
}

func mapRepoErr(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrRoomNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrRoomNameExists
	}
	return err
}
