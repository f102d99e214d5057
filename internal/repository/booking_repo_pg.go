package repository

import (
	"context"
	"errors"

	"github.com/ephremt/travelbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) error
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

// Create stores the booking durably before any payment initiation happens,
// so a failed initiation never loses the booking itself.
func (r *PGBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusPending
	return r.db.QueryRow(ctx, `INSERT INTO bookings (listing_id, user_name, user_email, start_date, end_date, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`,
		booking.ListingID, booking.UserName, booking.UserEmail, booking.StartDate, booking.EndDate, booking.TotalPrice, booking.Status).
		Scan(&booking.ID, &booking.CreatedAt)
}

func (r *PGBookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `SELECT id, listing_id, user_name, user_email, start_date, end_date, total_price, status, created_at FROM bookings WHERE id=$1`, id)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.ListingID, &b.UserName, &b.UserEmail, &b.StartDate, &b.EndDate, &b.TotalPrice, &b.Status, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) UpdateStatus(ctx context.Context, id int64, status domain.BookingStatus) (*domain.Booking, error) {
	row := r.db.QueryRow(ctx, `UPDATE bookings SET status=$1 WHERE id=$2 RETURNING id, listing_id, user_name, user_email, start_date, end_date, total_price, status, created_at`, status, id)
	var b domain.Booking
	if err := row.Scan(&b.ID, &b.ListingID, &b.UserName, &b.UserEmail, &b.StartDate, &b.EndDate, &b.TotalPrice, &b.Status, &b.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &b, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
