package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/ephremt/travelbook/internal/domain"
	"github.com/ephremt/travelbook/internal/service/booking"
	"github.com/ephremt/travelbook/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	bookings booking.BookingUseCase
	payments payment.PaymentUseCase
}

type createBookingRequest struct {
	ListingID  int64   `json:"listing_id" binding:"required"`
	UserName   string  `json:"user_name" binding:"required"`
	UserEmail  string  `json:"user_email" binding:"required,email"`
	StartDate  string  `json:"start_date" binding:"required"`
	EndDate    string  `json:"end_date" binding:"required"`
	TotalPrice float64 `json:"total_price" binding:"required,gt=0"`
}

// createBookingResponse embeds the booking and the payment the best-effort
// initiation produced. The booking is created either way; payment is null
// and payment_error set when initiation failed.
type createBookingResponse struct {
	domain.Booking
	Payment      *domain.Payment `json:"payment"`
	PaymentError string          `json:"payment_error,omitempty"`
}

func NewBookingHandler(bookings booking.BookingUseCase, payments payment.PaymentUseCase) *BookingHandler {
	return &BookingHandler{bookings: bookings, payments: payments}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.POST("/:id/initiate-payment", h.initiatePayment)
	router.POST("/:id/verify-payment", h.verifyPayment)
}

func (h *BookingHandler) create(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date"})
		return
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date"})
		return
	}

	b, err := h.bookings.CreateBooking(c.Request.Context(), booking.CreateBookingInput{
		ListingID:  req.ListingID,
		UserName:   req.UserName,
		UserEmail:  req.UserEmail,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalPrice: req.TotalPrice,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response := createBookingResponse{Booking: *b}
	pay, err := h.payments.Initiate(c.Request.Context(), b.ID)
	if err != nil {
		if pe, ok := payment.AsError(err); ok {
			response.PaymentError = pe.Message
		} else {
			response.PaymentError = "Payment initiation failed."
		}
	} else {
		response.Payment = pay
	}

	c.JSON(http.StatusCreated, response)
}

func (h *BookingHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	b, err := h.bookings.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *BookingHandler) initiatePayment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	pay, err := h.payments.Initiate(c.Request.Context(), id)
	if err != nil {
		writePaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"checkout_url": pay.CheckoutURL,
		"reference":    pay.Reference,
		"status":       pay.Status,
		"booking":      pay.BookingID,
	})
}

func (h *BookingHandler) verifyPayment(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	pay, err := h.payments.VerifyBooking(c.Request.Context(), id)
	if err != nil {
		writePaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, pay)
}

// writePaymentError maps the payment error taxonomy onto the HTTP surface:
// unknown references and missing payment rows are 404, everything else the
// core reports is a 400 with the human-readable detail.
func writePaymentError(c *gin.Context, err error) {
	if pe, ok := payment.AsError(err); ok {
		status := http.StatusBadRequest
		if pe.Code == payment.CodeNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"detail": pe.Message})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
}
