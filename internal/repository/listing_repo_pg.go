package repository

import (
	"context"
	"errors"

	"github.com/ephremt/travelbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

type ListingRepository interface {
	List(ctx context.Context) ([]domain.Listing, error)
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)
	Create(ctx context.Context, listing *domain.Listing) error
	Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error)
	Delete(ctx context.Context, id int64) error
}

type PGListingRepository struct {
	db *pgxpool.Pool
}

func NewListingRepository(db *pgxpool.Pool) ListingRepository {
	return &PGListingRepository{db: db}
}

func (r *PGListingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, description, location, price, available_from, available_to, created_at FROM listings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0)
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.Location, &l.Price, &l.AvailableFrom, &l.AvailableTo, &l.CreatedAt); err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (r *PGListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	row := r.db.QueryRow(ctx, `SELECT id, title, description, location, price, available_from, available_to, created_at FROM listings WHERE id=$1`, id)
	var l domain.Listing
	if err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Location, &l.Price, &l.AvailableFrom, &l.AvailableTo, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *PGListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	return r.db.QueryRow(ctx, `INSERT INTO listings (title, description, location, price, available_from, available_to)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`, listing.Title, listing.Description, listing.Location, listing.Price, listing.AvailableFrom, listing.AvailableTo).
		Scan(&listing.ID, &listing.CreatedAt)
}

func (r *PGListingRepository) Update(ctx context.Context, listing *domain.Listing) (*domain.Listing, error) {
	row := r.db.QueryRow(ctx, `UPDATE listings SET title=$1, description=$2, location=$3, price=$4, available_from=$5, available_to=$6 WHERE id=$7 RETURNING id, title, description, location, price, available_from, available_to, created_at`,
		listing.Title, listing.Description, listing.Location, listing.Price, listing.AvailableFrom, listing.AvailableTo, listing.ID)
	var l domain.Listing
	if err := row.Scan(&l.ID, &l.Title, &l.Description, &l.Location, &l.Price, &l.AvailableFrom, &l.AvailableTo, &l.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

func (r *PGListingRepository) Delete(ctx context.Context, id int64) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM listings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var _ ListingRepository = (*PGListingRepository)(nil)
