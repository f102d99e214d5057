package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ephremt/travelbook/internal/chapa"
	"github.com/ephremt/travelbook/internal/domain"
	"github.com/ephremt/travelbook/internal/kafka"
	"github.com/ephremt/travelbook/internal/notify"
	"github.com/ephremt/travelbook/internal/repository"
	"github.com/google/uuid"
)

type PaymentUseCase interface {
	Initiate(ctx context.Context, bookingID int64) (*domain.Payment, error)
	VerifyBooking(ctx context.Context, bookingID int64) (*domain.Payment, error)
	HandleCallback(ctx context.Context, reference string) (*domain.Payment, error)
}

// Gateway is the narrow slice of the Chapa client the orchestrator needs.
type Gateway interface {
	Initialize(ctx context.Context, req chapa.InitializeRequest) (*chapa.InitResult, error)
	Verify(ctx context.Context, reference string) (*chapa.VerifyResult, error)
}

// PaymentService drives a payment record through its lifecycle:
// pending -> completed on gateway success, pending -> failed on decline or
// rejected initialization. The completed state is terminal and immutable.
type PaymentService struct {
	payments   repository.PaymentRepository
	bookings   repository.BookingRepository
	listings   repository.ListingRepository
	gateway    Gateway
	dispatcher notify.Dispatcher

	currency string
	// regenerateStale controls whether a re-initiation on a still-pending
	// payment abandons the previous attempt and issues a fresh reference.
	regenerateStale bool
}

type Option func(*PaymentService)

func WithRegenerateStaleReference(enabled bool) Option {
	return func(s *PaymentService) {
		s.regenerateStale = enabled
	}
}

func NewPaymentService(
	payments repository.PaymentRepository,
	bookings repository.BookingRepository,
	listings repository.ListingRepository,
	gateway Gateway,
	dispatcher notify.Dispatcher,
	currency string,
	opts ...Option,
) *PaymentService {
	service := &PaymentService{
		payments:        payments,
		bookings:        bookings,
		listings:        listings,
		gateway:         gateway,
		dispatcher:      dispatcher,
		currency:        currency,
		regenerateStale: true,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// Initiate creates or refreshes the booking's single payment record and
// asks the gateway for a checkout URL. The record is persisted before the
// gateway call, so a transport failure leaves a pending payment with no
// checkout URL rather than no record at all.
func (s *PaymentService) Initiate(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	booking, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(CodeNotFound, "Booking not found.", err)
		}
		return nil, err
	}

	listing, err := s.listings.GetByID(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}

	pay, err := s.payments.GetByBookingID(ctx, bookingID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		pay = &domain.Payment{
			BookingID: bookingID,
			Reference: newReference(bookingID),
			Amount:    booking.TotalPrice,
			Currency:  s.currency,
			Status:    domain.PaymentStatusPending,
		}
		if err := s.payments.Create(ctx, pay); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if pay.Settled() {
			return nil, newError(CodeAlreadySettled, "Payment has already been completed for this booking.", nil)
		}
		if pay.Status != domain.PaymentStatusPending || s.regenerateStale {
			pay.Reference = newReference(bookingID)
		}
		pay.Amount = booking.TotalPrice
		pay.Currency = s.currency
		pay.Status = domain.PaymentStatusPending
		if err := s.payments.UpdateForInitiation(ctx, pay); err != nil {
			return nil, err
		}
	}

	firstName, lastName := splitName(booking.UserName)
	result, err := s.gateway.Initialize(ctx, chapa.InitializeRequest{
		Amount:      pay.Amount,
		Currency:    pay.Currency,
		Email:       booking.UserEmail,
		FirstName:   firstName,
		LastName:    lastName,
		Reference:   pay.Reference,
		Title:       "Travel Booking Payment",
		Description: fmt.Sprintf("Payment for booking #%d (%s)", booking.ID, listing.Title),
	})
	if err != nil {
		var rejected *chapa.RejectedError
		if errors.As(err, &rejected) {
			if _, markErr := s.payments.MarkStatus(ctx, pay.ID, domain.PaymentStatusFailed, rejected.Raw); markErr != nil {
				return nil, markErr
			}
			message := rejected.Message
			if message == "" {
				message = "Chapa rejected the payment request."
			}
			return nil, newError(CodeGatewayRejected, message, err)
		}
		return nil, s.mapTransportError(err,
			"Unable to reach Chapa to start the payment. Please retry.",
			"Received an invalid response from Chapa.")
	}

	updated, err := s.payments.SaveInitResult(ctx, pay.ID, result.CheckoutURL, result.TransactionID, result.Raw)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Verify reconciles local state against the gateway's view of the
// reference. It is idempotent and safe to race: the completed short-circuit
// skips settled payments entirely, and the repository settle is a
// compare-and-swap, so of two concurrent verifiers observing gateway
// success only one triggers the confirmation notification.
func (s *PaymentService) Verify(ctx context.Context, pay *domain.Payment) (*domain.Payment, error) {
	if pay.Settled() {
		return pay, nil
	}

	result, err := s.gateway.Verify(ctx, pay.Reference)
	if err != nil {
		var rejected *chapa.RejectedError
		if errors.As(err, &rejected) {
			message := rejected.Message
			if message == "" {
				message = "Unable to verify the payment with Chapa."
			}
			return nil, newError(CodeGatewayRejected, message, err)
		}
		return nil, s.mapTransportError(err,
			"Unable to verify payment at this time. Please retry shortly.",
			"Received an invalid verification response from Chapa.")
	}

	switch strings.ToLower(result.Status) {
	case "success":
		settled, applied, err := s.payments.Settle(ctx, pay.Reference, result.TransactionID, result.Raw)
		if err != nil {
			return nil, err
		}
		if applied {
			s.notifyConfirmed(ctx, settled)
		}
		return settled, nil
	case "pending":
		updated, err := s.payments.MarkStatus(ctx, pay.ID, domain.PaymentStatusPending, result.Raw)
		if err != nil {
			return nil, err
		}
		return updated, nil
	default:
		if _, err := s.payments.MarkStatus(ctx, pay.ID, domain.PaymentStatusFailed, result.Raw); err != nil {
			return nil, err
		}
		return nil, newError(CodePaymentDeclined, "Payment verification failed or payment was declined.", nil)
	}
}

// VerifyBooking runs Verify for the booking's existing payment record.
func (s *PaymentService) VerifyBooking(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	pay, err := s.payments.GetByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(CodeNotFound, "No payment record found for this booking.", err)
		}
		return nil, err
	}
	return s.Verify(ctx, pay)
}

// HandleCallback resolves an externally delivered reference and delegates
// to Verify.
func (s *PaymentService) HandleCallback(ctx context.Context, reference string) (*domain.Payment, error) {
	pay, err := s.payments.GetByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(CodeNotFound, "Unknown payment reference.", err)
		}
		return nil, err
	}
	return s.Verify(ctx, pay)
}

func (s *PaymentService) notifyConfirmed(ctx context.Context, pay *domain.Payment) {
	event := kafka.PaymentEvent{
		BookingID: pay.BookingID,
		Reference: pay.Reference,
		Amount:    pay.Amount,
		Currency:  pay.Currency,
	}
	if booking, err := s.bookings.GetByID(ctx, pay.BookingID); err == nil {
		event.Email = booking.UserEmail
		event.UserName = booking.UserName
		event.StartDate = booking.StartDate
		event.EndDate = booking.EndDate
		if listing, err := s.listings.GetByID(ctx, booking.ListingID); err == nil {
			event.ListingTitle = listing.Title
		}
	}
	_ = s.dispatcher.PaymentConfirmed(ctx, event)
}

func (s *PaymentService) mapTransportError(err error, unreachableMsg, invalidMsg string) error {
	switch {
	case errors.Is(err, chapa.ErrNotConfigured):
		return newError(CodeConfigurationMissing, "Chapa secret key is not configured. Set chapa.secret_key in the config.", err)
	case errors.Is(err, chapa.ErrInvalidResponse):
		return newError(CodeInvalidGatewayResponse, invalidMsg, err)
	default:
		return newError(CodeGatewayUnreachable, unreachableMsg, err)
	}
}

func newReference(bookingID int64) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return fmt.Sprintf("booking-%d-%s", bookingID, suffix)
}

func splitName(name string) (first, last string) {
	parts := strings.SplitN(strings.TrimSpace(name), " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], parts[0]
}

var _ PaymentUseCase = (*PaymentService)(nil)
