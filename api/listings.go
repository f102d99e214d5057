package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/ephremt/travelbook/internal/domain"
	"github.com/ephremt/travelbook/internal/repository"
	"github.com/ephremt/travelbook/internal/service/listing"
	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	service listing.ListingUseCase
}

type listingRequest struct {
	Title         string  `json:"title" binding:"required"`
	Description   string  `json:"description"`
	Location      string  `json:"location" binding:"required"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	AvailableFrom string  `json:"available_from"`
	AvailableTo   string  `json:"available_to"`
}

type listingPatchRequest struct {
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	Location      *string  `json:"location"`
	Price         *float64 `json:"price"`
	AvailableFrom *string  `json:"available_from"`
	AvailableTo   *string  `json:"available_to"`
}

func NewListingHandler(service listing.ListingUseCase) *ListingHandler {
	return &ListingHandler{service: service}
}

func (h *ListingHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.POST("/", h.create)
	router.GET("/:id", h.get)
	router.PUT("/:id", h.update)
	router.PATCH("/:id", h.patch)
	router.DELETE("/:id", h.delete)
}

func (h *ListingHandler) list(c *gin.Context) {
	listings, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, listings)
}

func (h *ListingHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	l, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}
	c.JSON(http.StatusOK, l)
}

func (h *ListingHandler) create(c *gin.Context) {
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := listingFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.service.Create(c.Request.Context(), l); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *ListingHandler) update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req listingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	l, err := listingFromRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	l.ID = id
	updated, err := h.service.Update(c.Request.Context(), l)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ListingHandler) patch(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req listingPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	current, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
		return
	}

	if req.Title != nil {
		current.Title = *req.Title
	}
	if req.Description != nil {
		current.Description = *req.Description
	}
	if req.Location != nil {
		current.Location = *req.Location
	}
	if req.Price != nil {
		current.Price = *req.Price
	}
	if req.AvailableFrom != nil {
		d, err := parseDate(*req.AvailableFrom)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		current.AvailableFrom = d
	}
	if req.AvailableTo != nil {
		d, err := parseDate(*req.AvailableTo)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		current.AvailableTo = d
	}

	updated, err := h.service.Update(c.Request.Context(), current)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *ListingHandler) delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "listing not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func listingFromRequest(req listingRequest) (*domain.Listing, error) {
	l := &domain.Listing{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Price:       req.Price,
	}
	if req.AvailableFrom != "" {
		d, err := parseDate(req.AvailableFrom)
		if err != nil {
			return nil, err
		}
		l.AvailableFrom = d
	}
	if req.AvailableTo != "" {
		d, err := parseDate(req.AvailableTo)
		if err != nil {
			return nil, err
		}
		l.AvailableTo = d
	}
	return l, nil
}

func parseDate(value string) (*time.Time, error) {
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
