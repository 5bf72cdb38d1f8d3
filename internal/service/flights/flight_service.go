package flights

import (
	"context"

	"github.com/Domenick1991/flightgate/internal/domain"
	"github.com/Domenick1991/flightgate/internal/repository"
)

type FlightUseCase interface {
	Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
}

type Cache interface {
	GetSearch(ctx context.Context, filter domain.SearchFilter) ([]domain.Flight, error)
	SetSearch(ctx context.Context, filter domain.SearchFilter, flights []domain.Flight) error
}

type FlightService struct {
	repo    repository.FlightRepository
	cache   Cache
	maxRows int
}

func NewFlightService(repo repository.FlightRepository, cache Cache, maxRows int) *FlightService {
	return &FlightService{repo: repo, cache: cache, maxRows: maxRows}
}

// Search serves cached pages for the customer-facing view only; admin
// searches (IncludeDeleted) always hit the store.
func (s *FlightService) Search(ctx context.Context, filter domain.SearchFilter) ([]domain.Flight, error) {
	cacheable := s.cache != nil && !filter.IncludeDeleted
	if cacheable {
		if cached, err := s.cache.GetSearch(ctx, filter); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.Search(ctx, filter, s.maxRows)
	if err != nil {
		return nil, err
	}
	if cacheable {
		_ = s.cache.SetSearch(ctx, filter, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

var _ FlightUseCase = (*FlightService)(nil)
