package api

import "github.com/gin-gonic/gin"

// NewRouter assembles the REST surface: listings CRUD, bookings with the
// best-effort payment initiation, and the gateway callback endpoints.
func NewRouter(listings *ListingHandler, bookings *BookingHandler, payments *PaymentHandler) *gin.Engine {
	router := gin.Default()

	listings.Register(router.Group("/listings"))
	bookings.Register(router.Group("/bookings"))
	payments.Register(router.Group("/payments"))

	return router
}
