package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/umesh2702/OUTLAW/cart"
	middlewares "github.com/umesh2702/OUTLAW/middleware"
	"github.com/umesh2702/OUTLAW/models"
	"github.com/umesh2702/OUTLAW/storage"
)

// CheckoutPublisher hands the cart off to downstream order processing.
type CheckoutPublisher interface {
	SendCheckoutEvent(ctx context.Context, event models.CheckoutEvent) error
}

type CartController struct {
	KV       storage.KV
	Products ProductSource
	Checkout CheckoutPublisher
	Log      *zap.Logger
}

func NewCartController(kv storage.KV, products ProductSource, checkout CheckoutPublisher, log *zap.Logger) *CartController {
	return &CartController{KV: kv, Products: products, Checkout: checkout, Log: log}
}

type addItemRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// store hydrates the session's cart for this request.
func (cc *CartController) store(c *gin.Context) *cart.Store {
	s := cart.NewStore(cc.KV, middlewares.SessionID(c), cc.Log)
	s.Hydrate(c.Request.Context())
	return s
}

func cartResponse(s *cart.Store) gin.H {
	return gin.H{
		"items": s.Items(),
		"count": s.Count(),
		"total": s.Total(),
	}
}

// GetCart returns the current cart for the session.
func (cc *CartController) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, cartResponse(cc.store(c)))
}

// AddItem merges a product into the cart, snapshotting it at add-time.
// Repeated adds accumulate quantity. Stock limits are checked by the caller
// before this point, not here.
func (cc *CartController) AddItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	product, err := cc.Products.FindByID(c.Request.Context(), req.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		cc.Log.Error("failed to fetch product for cart", zap.String("product_id", req.ProductID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add to cart"})
		return
	}

	s := cc.store(c)
	s.Add(c.Request.Context(), *product, req.Quantity)

	c.JSON(http.StatusOK, cartResponse(s))
}

// UpdateQuantity sets an entry's quantity absolutely; zero or below removes
// the entry.
func (cc *CartController) UpdateQuantity(c *gin.Context) {
	productID := c.Param("product_id")

	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payload"})
		return
	}

	s := cc.store(c)
	s.UpdateQuantity(c.Request.Context(), productID, req.Quantity)

	c.JSON(http.StatusOK, cartResponse(s))
}

// RemoveItem deletes one entry from the cart.
func (cc *CartController) RemoveItem(c *gin.Context) {
	productID := c.Param("product_id")

	s := cc.store(c)
	s.Remove(c.Request.Context(), productID)

	c.JSON(http.StatusOK, cartResponse(s))
}

// ClearCart empties the cart.
func (cc *CartController) ClearCart(c *gin.Context) {
	s := cc.store(c)
	s.Clear(c.Request.Context())

	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

// CheckoutRequest publishes the cart for downstream order processing and
// clears it. Requires a logged-in session; payment is not handled here.
func (cc *CartController) CheckoutRequest(c *gin.Context) {
	userID, ok := middlewares.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	s := cc.store(c)
	items := s.Items()
	if len(items) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	event := models.CheckoutEvent{
		Event:     "checkout.requested",
		SessionID: middlewares.SessionID(c),
		UserID:    userID,
		Items:     items,
		Timestamp: time.Now(),
	}
	if err := cc.Checkout.SendCheckoutEvent(c.Request.Context(), event); err != nil {
		cc.Log.Error("failed to publish checkout event", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start checkout"})
		return
	}

	s.Clear(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "checkout initiated"})
}
