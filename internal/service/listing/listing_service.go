package listing

import (
	"context"

	"github.com/ephremt/travelbook/internal/domain"
	"github.com/ephremt/travelbook/internal/repository"
)

type ListingUseCase interface {
	List(ctx context.Context) ([]domain.Listing, error)
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	Create(ctx context.Context, listing *domain.Listing) error
	Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	Delete(ctx context.Context, id int64) error
}

type Cache interface {
	GetListings(ctx context.Context) ([]domain.Listing, error)
	SetListings(ctx context.Context, listings []domain.Listing) error
	InvalidateListings(ctx context.Context) error
}

type ListingService struct {
	repo  repository.ListingRepository
	cache Cache
}

func NewListingService(repo repository.ListingRepository, cache Cache) *ListingService {
	return &ListingService{repo: repo, cache: cache}
}

func (s *ListingService) List(ctx context.Context) ([]domain.Listing, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetListings(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	listings, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetListings(ctx, listings)
	}
	return listings, nil
}

func (s *ListingService) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ListingService) Create(ctx context.Context, listing *domain.Listing) error {
	if err := s.repo.Create(ctx, listing); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ListingService) Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	updated, err := s.repo.Update(ctx, listing)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return updated, nil
}

func (s *ListingService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *ListingService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateListings(ctx)
	}
}

var _ ListingUseCase = (*ListingService)(nil)
