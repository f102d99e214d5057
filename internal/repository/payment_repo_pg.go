package repository

import (
	"context"
	"errors"
	"time"

	"github.com/ephremt/travelbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.Payment) error
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error)
	GetByReference(ctx context.Context, reference string) (*domain.Payment, error)
	// UpdateForInitiation persists the record ahead of the gateway call:
	// reference, refreshed amount and currency, status forced to pending.
	UpdateForInitiation(ctx context.Context, payment *domain.Payment) error
	// SaveInitResult stores the checkout URL and gateway transaction id from
	// a successful initialize response, keeping the status pending.
	SaveInitResult(ctx context.Context, id int64, checkoutURL, transactionID string, raw map[string]any) (*domain.Payment, error)
	MarkStatus(ctx context.Context, id int64, status domain.PaymentStatus, raw map[string]any) (*domain.Payment, error)
	// Settle transitions the payment to completed and the owning booking to
	// confirmed in one transaction. The status update is conditional on the
	// row not already being completed, so concurrent verifiers race safely:
	// exactly one caller observes applied=true.
	Settle(ctx context.Context, reference, transactionID string, raw map[string]any) (payment *domain.Payment, applied bool, err error)
	ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Payment, error)
}

type PGPaymentRepository struct {
	db *pgxpool.Pool
}

func NewPaymentRepository(db *pgxpool.Pool) PaymentRepository {
	return &PGPaymentRepository{db: db}
}

const paymentColumns = `id, booking_id, reference, chapa_transaction_id, amount, currency, status, checkout_url, raw_response, created_at, updated_at`

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	if err := row.Scan(&p.ID, &p.BookingID, &p.Reference, &p.ChapaTransactionID, &p.Amount, &p.Currency, &p.Status, &p.CheckoutURL, &p.RawResponse, &p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PGPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	return r.db.QueryRow(ctx, `INSERT INTO payments (booking_id, reference, amount, currency, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		payment.BookingID, payment.Reference, payment.Amount, payment.Currency, payment.Status).
		Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
}

func (r *PGPaymentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	return scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE booking_id=$1`, bookingID))
}

func (r *PGPaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.Payment, error) {
	return scanPayment(r.db.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE reference=$1`, reference))
}

func (r *PGPaymentRepository) UpdateForInitiation(ctx context.Context, payment *domain.Payment) error {
	updated, err := scanPayment(r.db.QueryRow(ctx, `UPDATE payments SET reference=$1, amount=$2, currency=$3, status=$4, updated_at=now() WHERE id=$5 RETURNING `+paymentColumns,
		payment.Reference, payment.Amount, payment.Currency, payment.Status, payment.ID))
	if err != nil {
		return err
	}
	*payment = *updated
	return nil
}

func (r *PGPaymentRepository) SaveInitResult(ctx context.Context, id int64, checkoutURL, transactionID string, raw map[string]any) (*domain.Payment, error) {
	return scanPayment(r.db.QueryRow(ctx, `UPDATE payments SET checkout_url=$1, chapa_transaction_id=$2, raw_response=$3, updated_at=now() WHERE id=$4 RETURNING `+paymentColumns,
		checkoutURL, transactionID, raw, id))
}

func (r *PGPaymentRepository) MarkStatus(ctx context.Context, id int64, status domain.PaymentStatus, raw map[string]any) (*domain.Payment, error) {
	return scanPayment(r.db.QueryRow(ctx, `UPDATE payments SET status=$1, raw_response=$2, updated_at=now() WHERE id=$3 RETURNING `+paymentColumns,
		status, raw, id))
}

func (r *PGPaymentRepository) Settle(ctx context.Context, reference, transactionID string, raw map[string]any) (*domain.Payment, bool, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback(ctx)

	p, err := scanPayment(tx.QueryRow(ctx, `UPDATE payments SET status=$1, chapa_transaction_id=COALESCE(NULLIF($2,''), chapa_transaction_id), raw_response=$3, updated_at=now()
		WHERE reference=$4 AND status <> $1 RETURNING `+paymentColumns,
		domain.PaymentStatusCompleted, transactionID, raw, reference))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// Either the reference is unknown or another caller settled first.
			current, lookupErr := scanPayment(tx.QueryRow(ctx, `SELECT `+paymentColumns+` FROM payments WHERE reference=$1`, reference))
			if lookupErr != nil {
				return nil, false, lookupErr
			}
			return current, false, nil
		}
		return nil, false, err
	}

	if _, err := tx.Exec(ctx, `UPDATE bookings SET status=$1 WHERE id=$2`, domain.BookingStatusConfirmed, p.BookingID); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, false, err
	}
	return p, true, nil
}

func (r *PGPaymentRepository) ExpirePendingBefore(ctx context.Context, deadline time.Time) ([]domain.Payment, error) {
	rows, err := r.db.Query(ctx, `UPDATE payments SET status=$1, updated_at=now() WHERE status=$2 AND updated_at <= $3 RETURNING `+paymentColumns,
		domain.PaymentStatusExpired, domain.PaymentStatusPending, deadline)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expired []domain.Payment
	for rows.Next() {
		var p domain.Payment
		if err := rows.Scan(&p.ID, &p.BookingID, &p.Reference, &p.ChapaTransactionID, &p.Amount, &p.Currency, &p.Status, &p.CheckoutURL, &p.RawResponse, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		expired = append(expired, p)
	}
	return expired, rows.Err()
}

var _ PaymentRepository = (*PGPaymentRepository)(nil)
