package api

import (
	"net/http"

	"github.com/ephremt/travelbook/internal/service/payment"
	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	payments payment.PaymentUseCase
}

type callbackRequest struct {
	TxRef     string `json:"tx_ref"`
	Reference string `json:"reference"`
}

func NewPaymentHandler(payments payment.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/chapa/callback", h.callbackPost)
	router.GET("/chapa/callback", h.callbackGet)
}

// callbackPost accepts the gateway's webhook. The reference arrives either
// as tx_ref or reference, in the JSON body or the query string.
func (h *PaymentHandler) callbackPost(c *gin.Context) {
	var req callbackRequest
	_ = c.ShouldBindJSON(&req)

	reference := req.TxRef
	if reference == "" {
		reference = req.Reference
	}
	if reference == "" {
		reference = queryReference(c)
	}
	h.handleReference(c, reference)
}

func (h *PaymentHandler) callbackGet(c *gin.Context) {
	h.handleReference(c, queryReference(c))
}

func (h *PaymentHandler) handleReference(c *gin.Context, reference string) {
	if reference == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Missing tx_ref."})
		return
	}

	pay, err := h.payments.HandleCallback(c.Request.Context(), reference)
	if err != nil {
		writePaymentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"detail":    "Payment processed.",
		"status":    pay.Status,
		"reference": pay.Reference,
	})
}

func queryReference(c *gin.Context) string {
	if ref := c.Query("tx_ref"); ref != "" {
		return ref
	}
	return c.Query("reference")
}
