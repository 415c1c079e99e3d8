package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"smartpos/internal/apierror"
	"smartpos/internal/dto"
	"smartpos/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const priceCacheTTL = 4 * time.Hour

// ProductsHandler serves the public price check endpoint.
// No authentication required — no side effects whatsoever.
type ProductsHandler struct {
	repo repository.ProductRepository
	rdb  *redis.Client
}

func NewProductsHandler(repo repository.ProductRepository, rdb *redis.Client) *ProductsHandler {
	return &ProductsHandler{repo: repo, rdb: rdb}
}

// PriceByBarcode godoc
// @Summary Price check by barcode (no authentication)
// @Tags products
// @Produce json
// @Param barcode path string true "Barcode"
// @Success 200 {object} dto.PriceCheckResponse
// @Failure 404 {object} apierror.APIError
// @Router /v1/price/{barcode} [get]
func (h *ProductsHandler) PriceByBarcode(c *gin.Context) {
	barcode := c.Param("barcode")
	ctx := c.Request.Context()
	cacheKey := "price:" + barcode

	// 1. Try Redis cache
	if cached, err := h.rdb.Get(ctx, cacheKey).Bytes(); err == nil {
		var resp dto.PriceCheckResponse
		if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
			c.JSON(http.StatusOK, resp)
			return
		}
	}

	// 2. Cache miss — query DB
	product, err := h.repo.FindByBarcode(ctx, barcode)
	if err != nil {
		c.JSON(http.StatusNotFound, apierror.New("Product not found"))
		return
	}

	resp := dto.PriceCheckResponse{
		ProductID: product.ID.String(),
		Name:      product.Name,
		Price:     product.Price,
		Stock:     product.Stock,
	}

	// 3. Populate cache — best effort, ignore errors
	if b, jsonErr := json.Marshal(resp); jsonErr == nil {
		_ = h.rdb.Set(context.Background(), cacheKey, b, priceCacheTTL).Err()
	}

	c.JSON(http.StatusOK, resp)
}
