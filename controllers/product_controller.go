package controllers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/umesh2702/OUTLAW/models"
)

// ProductSource is the read-only catalog access the storefront needs.
type ProductSource interface {
	List(ctx context.Context, category, order string) ([]models.Product, error)
	FindByID(ctx context.Context, id string) (*models.Product, error)
}

type ProductController struct {
	Products ProductSource
	Log      *zap.Logger
}

func NewProductController(products ProductSource, log *zap.Logger) *ProductController {
	return &ProductController{Products: products, Log: log}
}

// ListProducts returns the catalog, filtered by ?category and ordered by
// ?order (price_asc, price_desc, newest).
func (pc *ProductController) ListProducts(c *gin.Context) {
	category := c.Query("category")
	order := c.Query("order")

	products, err := pc.Products.List(c.Request.Context(), category, order)
	if err != nil {
		pc.Log.Error("failed to list products", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

// GetProduct returns one catalog item by id.
func (pc *ProductController) GetProduct(c *gin.Context) {
	id := c.Param("id")

	product, err := pc.Products.FindByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		pc.Log.Error("failed to fetch product", zap.String("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	c.JSON(http.StatusOK, product)
}
