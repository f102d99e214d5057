package listing

import (
	"context"
	"errors"
	"testing"

	"github.com/ephremt/travelbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	args := m.Called(ctx, listing)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Listing), args.Error(1)
}

func (m *MockListingRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetListings(ctx context.Context) ([]domain.Listing, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Listing), args.Error(1)
}

func (m *MockCache) SetListings(ctx context.Context, listings []domain.Listing) error {
	args := m.Called(ctx, listings)
	return args.Error(0)
}

func (m *MockCache) InvalidateListings(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func TestListingService_List_CacheHit(t *testing.T) {
	mockRepo := &MockListingRepository{}
	mockCache := &MockCache{}
	service := NewListingService(mockRepo, mockCache)

	ctx := context.Background()
	cached := []domain.Listing{{ID: 3, Title: "Lakeside Villa"}}
	mockCache.On("GetListings", ctx).Return(cached, nil).Once()

	listings, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, cached, listings)
	mockRepo.AssertNotCalled(t, "List", mock.Anything)
}

func TestListingService_List_CacheMiss(t *testing.T) {
	mockRepo := &MockListingRepository{}
	mockCache := &MockCache{}
	service := NewListingService(mockRepo, mockCache)

	ctx := context.Background()
	fromDB := []domain.Listing{{ID: 3, Title: "Lakeside Villa"}}
	mockCache.On("GetListings", ctx).Return(nil, errors.New("cache miss")).Once()
	mockRepo.On("List", ctx).Return(fromDB, nil).Once()
	mockCache.On("SetListings", ctx, fromDB).Return(nil).Once()

	listings, err := service.List(ctx)

	assert.NoError(t, err)
	assert.Equal(t, fromDB, listings)
	mockRepo.AssertExpectations(t)
	mockCache.AssertExpectations(t)
}

func TestListingService_List_CacheUnavailable(t *testing.T) {
	mockRepo := &MockListingRepository{}
	mockCache := &MockCache{}
	service := NewListingService(mockRepo, mockCache)

	ctx := context.Background()
	fromDB := []domain.Listing{{ID: 3}}
	mockCache.On("GetListings", ctx).Return(nil, errors.New("redis down")).Once()
	mockRepo.On("List", ctx).Return(fromDB, nil).Once()
	mockCache.On("SetListings", ctx, fromDB).Return(errors.New("redis down")).Once()

	listings, err := service.List(ctx)

	// cache failures never surface to the caller
	assert.NoError(t, err)
	assert.Equal(t, fromDB, listings)
}

func TestListingService_List_NoCacheConfigured(t *testing.T) {
	mockRepo := &MockListingRepository{}
	service := NewListingService(mockRepo, nil)

	ctx := context.Background()
	mockRepo.On("List", ctx).Return([]domain.Listing{}, nil).Once()

	_, err := service.List(ctx)
	assert.NoError(t, err)
}

func TestListingService_Create_InvalidatesCache(t *testing.T) {
	mockRepo := &MockListingRepository{}
	mockCache := &MockCache{}
	service := NewListingService(mockRepo, mockCache)

	ctx := context.Background()
	listing := &domain.Listing{Title: "Lakeside Villa", Location: "Bahir Dar", Price: 112.5}
	mockRepo.On("Create", ctx, listing).Return(nil).Once()
	mockCache.On("InvalidateListings", ctx).Return(nil).Once()

	assert.NoError(t, service.Create(ctx, listing))
	mockCache.AssertExpectations(t)
}

func TestListingService_Delete_InvalidatesCache(t *testing.T) {
	mockRepo := &MockListingRepository{}
	mockCache := &MockCache{}
	service := NewListingService(mockRepo, mockCache)

	ctx := context.Background()
	mockRepo.On("Delete", ctx, int64(3)).Return(nil).Once()
	mockCache.On("InvalidateListings", ctx).Return(nil).Once()

	assert.NoError(t, service.Delete(ctx, 3))
	mockCache.AssertExpectations(t)
}

func TestListingService_Delete_RepoError(t *testing.T) {
	mockRepo := &MockListingRepository{}
	mockCache := &MockCache{}
	service := NewListingService(mockRepo, mockCache)

	ctx := context.Background()
	mockRepo.On("Delete", ctx, int64(3)).Return(errors.New("boom")).Once()

	assert.Error(t, service.Delete(ctx, 3))
	mockCache.AssertNotCalled(t, "InvalidateListings", mock.Anything)
}
