package booking

import (
	"context"
	"errors"
	"time"

	"github.com/ephremt/travelbook/internal/domain"
	"github.com/ephremt/travelbook/internal/repository"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error)
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	CancelBooking(ctx context.Context, id int64) (*domain.Booking, error)
}

type BookingService struct {
	bookings repository.BookingRepository
	listings repository.ListingRepository
}

type CreateBookingInput struct {
	ListingID  int64     `json:"listing_id"`
	UserName   string    `json:"user_name"`
	UserEmail  string    `json:"user_email"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	TotalPrice float64   `json:"total_price"`
}

func NewBookingService(bookings repository.BookingRepository, listings repository.ListingRepository) *BookingService {
	return &BookingService{bookings: bookings, listings: listings}
}

// CreateBooking validates and durably stores the booking. It never touches
// the payment gateway; payment initiation happens afterwards so a failed
// initiation cannot lose the booking.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.Booking, error) {
	if input.UserName == "" {
		return nil, errors.New("user name is required")
	}
	if input.UserEmail == "" {
		return nil, errors.New("user email is required")
	}
	if input.StartDate.IsZero() || input.EndDate.IsZero() {
		return nil, errors.New("start and end dates are required")
	}
	if input.EndDate.Before(input.StartDate) {
		return nil, errors.New("end date must not be before start date")
	}
	if input.TotalPrice <= 0 {
		return nil, errors.New("total price must be positive")
	}

	if _, err := s.listings.GetByID(ctx, input.ListingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errors.New("listing not found")
		}
		return nil, err
	}

	booking := &domain.Booking{
		ListingID:  input.ListingID,
		UserName:   input.UserName,
		UserEmail:  input.UserEmail,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		TotalPrice: input.TotalPrice,
	}
	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingService) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// CancelBooking is an external action on the booking itself; it does not
// touch the payment lifecycle.
func (s *BookingService) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	current, err := s.bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status == domain.BookingStatusCancelled {
		return current, nil
	}
	return s.bookings.UpdateStatus(ctx, id, domain.BookingStatusCancelled)
}

var _ BookingUseCase = (*BookingService)(nil)
