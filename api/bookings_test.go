package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ephremt/travelbook/internal/domain"
	"github.com/ephremt/travelbook/internal/service/booking"
	"github.com/ephremt/travelbook/internal/service/payment"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) CreateBooking(ctx context.Context, input booking.CreateBookingInput) (*domain.Booking, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingUseCase) CancelBooking(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockPaymentUseCase struct {
	mock.Mock
}

func (m *MockPaymentUseCase) Initiate(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentUseCase) VerifyBooking(ctx context.Context, bookingID int64) (*domain.Payment, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func (m *MockPaymentUseCase) HandleCallback(ctx context.Context, reference string) (*domain.Payment, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Payment), args.Error(1)
}

func testBookingRecord() *domain.Booking {
	return &domain.Booking{
		ID:         7,
		ListingID:  3,
		UserName:   "Abebe Bikila",
		UserEmail:  "abebe@example.com",
		StartDate:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
		TotalPrice: 450.0,
		Status:     domain.BookingStatusPending,
	}
}

func TestBookingHandler_create_WithPayment(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockPayments := &MockPaymentUseCase{}
	handler := NewBookingHandler(mockBookings, mockPayments)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]any{
		"listing_id":  3,
		"user_name":   "Abebe Bikila",
		"user_email":  "abebe@example.com",
		"start_date":  "2026-10-01",
		"end_date":    "2026-10-05",
		"total_price": 450.0,
	})
	c.Request = httptest.NewRequest("POST", "/bookings/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockBookings.On("CreateBooking", c.Request.Context(), mock.AnythingOfType("booking.CreateBookingInput")).
		Return(testBookingRecord(), nil).Once()
	mockPayments.On("Initiate", c.Request.Context(), int64(7)).Return(&domain.Payment{
		ID:          21,
		BookingID:   7,
		Reference:   "booking-7-aaaaaaaaaa",
		Status:      domain.PaymentStatusPending,
		CheckoutURL: "https://pay.example/x",
	}, nil).Once()

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, float64(7), response["id"])
	paymentBody, ok := response["payment"].(map[string]any)
	assert.True(t, ok)
	assert.Equal(t, "https://pay.example/x", paymentBody["checkout_url"])
	assert.NotContains(t, response, "payment_error")

	mockBookings.AssertExpectations(t)
	mockPayments.AssertExpectations(t)
}

func TestBookingHandler_create_PaymentInitiationFails(t *testing.T) {
	mockBookings := &MockBookingUseCase{}
	mockPayments := &MockPaymentUseCase{}
	handler := NewBookingHandler(mockBookings, mockPayments)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	body, _ := json.Marshal(map[string]any{
		"listing_id":  3,
		"user_name":   "Abebe Bikila",
		"user_email":  "abebe@example.com",
		"start_date":  "2026-10-01",
		"end_date":    "2026-10-05",
		"total_price": 450.0,
	})
	c.Request = httptest.NewRequest("POST", "/bookings/", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")

	mockBookings.On("CreateBooking", c.Request.Context(), mock.Anything).Return(testBookingRecord(), nil).Once()
	mockPayments.On("Initiate", c.Request.Context(), int64(7)).
		Return(nil, &payment.Error{Code: payment.CodeGatewayUnreachable, Message: "Unable to reach Chapa to start the payment. Please retry."}).Once()

	handler.create(c)

	// booking creation still succeeds even though initiation failed
	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Nil(t, response["payment"])
	assert.Equal(t, "Unable to reach Chapa to start the payment. Please retry.", response["payment_error"])
}

func TestBookingHandler_initiatePayment(t *testing.T) {
	mockPayments := &MockPaymentUseCase{}
	handler := NewBookingHandler(&MockBookingUseCase{}, mockPayments)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = httptest.NewRequest("POST", "/bookings/7/initiate-payment/", nil)

	mockPayments.On("Initiate", c.Request.Context(), int64(7)).Return(&domain.Payment{
		ID:          21,
		BookingID:   7,
		Reference:   "booking-7-aaaaaaaaaa",
		Status:      domain.PaymentStatusPending,
		CheckoutURL: "https://pay.example/x",
	}, nil).Once()

	handler.initiatePayment(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "https://pay.example/x", response["checkout_url"])
	assert.Equal(t, "booking-7-aaaaaaaaaa", response["reference"])
	assert.Equal(t, float64(7), response["booking"])
}

func TestBookingHandler_initiatePayment_AlreadySettled(t *testing.T) {
	mockPayments := &MockPaymentUseCase{}
	handler := NewBookingHandler(&MockBookingUseCase{}, mockPayments)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = httptest.NewRequest("POST", "/bookings/7/initiate-payment/", nil)

	mockPayments.On("Initiate", c.Request.Context(), int64(7)).
		Return(nil, &payment.Error{Code: payment.CodeAlreadySettled, Message: "Payment has already been completed for this booking."}).Once()

	handler.initiatePayment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "Payment has already been completed for this booking.", response["detail"])
}

func TestBookingHandler_verifyPayment(t *testing.T) {
	mockPayments := &MockPaymentUseCase{}
	handler := NewBookingHandler(&MockBookingUseCase{}, mockPayments)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = httptest.NewRequest("POST", "/bookings/7/verify-payment/", nil)

	mockPayments.On("VerifyBooking", c.Request.Context(), int64(7)).Return(&domain.Payment{
		ID:        21,
		BookingID: 7,
		Reference: "booking-7-aaaaaaaaaa",
		Status:    domain.PaymentStatusCompleted,
	}, nil).Once()

	handler.verifyPayment(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var response domain.Payment
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, domain.PaymentStatusCompleted, response.Status)
}

func TestBookingHandler_verifyPayment_NoPaymentRecord(t *testing.T) {
	mockPayments := &MockPaymentUseCase{}
	handler := NewBookingHandler(&MockBookingUseCase{}, mockPayments)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "id", Value: "7"}}
	c.Request = httptest.NewRequest("POST", "/bookings/7/verify-payment/", nil)

	mockPayments.On("VerifyBooking", c.Request.Context(), int64(7)).
		Return(nil, &payment.Error{Code: payment.CodeNotFound, Message: "No payment record found for this booking."}).Once()

	handler.verifyPayment(c)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]string
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "No payment record found for this booking.", response["detail"])
}
