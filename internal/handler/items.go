package handler

import (
	"net/http"

	"smartpos/internal/apierror"
	"smartpos/internal/dto"
	"smartpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ItemsHandler struct{ svc service.ItemService }

func NewItemsHandler(svc service.ItemService) *ItemsHandler { return &ItemsHandler{svc: svc} }

// AddItem godoc
// @Summary      Add a product to the open bill
// @Description  Appends a line to the open bill, creating the bill first when none exists. Re-adding the same product merges by summing quantity.
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.AddItemRequest true "Product line"
// @Success      201  {object} dto.BillResponse
// @Failure      400  {object} apierror.APIError
// @Router       /v1/bill/items [post]
func (h *ItemsHandler) AddItem(c *gin.Context) {
	var req dto.AddItemRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.AddItem(c.Request.Context(), sellerID(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// UpdateQty godoc
// @Summary      Update a line quantity
// @Description  Overwrites the absolute quantity of a line on the seller's open bill. Quantities below 1 are rejected — use delete to remove a line.
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string               true "Line item UUID"
// @Param        body body dto.UpdateQtyRequest true "New quantity"
// @Success      200  {object} dto.BillResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/bill/items/{id} [patch]
func (h *ItemsHandler) UpdateQty(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	var req dto.UpdateQtyRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.UpdateQty(c.Request.Context(), sellerID(c), id, req.Qty)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveItem godoc
// @Summary      Remove a line from the open bill
// @Tags         items
// @Security     BearerAuth
// @Param        id path string true "Line item UUID"
// @Success      204
// @Failure      404  {object} apierror.APIError
// @Router       /v1/bill/items/{id} [delete]
func (h *ItemsHandler) RemoveItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	if err := h.svc.RemoveItem(c.Request.Context(), sellerID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearBill godoc
// @Summary      Clear all lines from the open bill
// @Description  Removes every line but keeps the bill open. The path id must name the seller's current open bill — stale ids are rejected.
// @Tags         items
// @Security     BearerAuth
// @Param        id path string true "Bill UUID"
// @Success      204
// @Failure      409  {object} apierror.APIError
// @Router       /v1/bill/{id}/items [delete]
func (h *ItemsHandler) ClearBill(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	if err := h.svc.ClearBill(c.Request.Context(), sellerID(c), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
