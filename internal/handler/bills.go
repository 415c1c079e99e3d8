package handler

import (
	"net/http"

	"smartpos/internal/apierror"
	"smartpos/internal/dto"
	"smartpos/internal/middleware"
	"smartpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type BillsHandler struct{ svc service.BillService }

func NewBillsHandler(svc service.BillService) *BillsHandler { return &BillsHandler{svc: svc} }

func sellerID(c *gin.Context) uuid.UUID {
	claims := middleware.GetClaims(c)
	id, _ := uuid.Parse(claims.SellerID)
	return id
}

// GetBill godoc
// @Summary      Get or open the current bill
// @Description  Returns the seller's open bill, creating an empty one when none exists. Idempotent.
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object} dto.BillResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/bill [get]
func (h *BillsHandler) GetBill(c *gin.Context) {
	resp, err := h.svc.OpenOrGetBill(c.Request.Context(), sellerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HoldBill godoc
// @Summary      Hold the current bill
// @Description  Parks the open bill under a ticket so another customer can be served. Empty bills cannot be held.
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object} dto.HeldBillResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/bill/hold [post]
func (h *BillsHandler) HoldBill(c *gin.Context) {
	resp, err := h.svc.HoldCurrentBill(c.Request.Context(), sellerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListHeldBills godoc
// @Summary      List held bills
// @Description  Returns the seller's live park tickets, newest first. Expired tickets are swept before listing.
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.HeldBillResponse
// @Router       /v1/bill/held [get]
func (h *BillsHandler) ListHeldBills(c *gin.Context) {
	resp, err := h.svc.ListHeldBills(c.Request.Context(), sellerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RetrieveBill godoc
// @Summary      Retrieve a held bill
// @Description  Resumes a parked bill. The currently open bill (if any) is parked first when it has items, or discarded when empty.
// @Tags         bills
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Held bill UUID"
// @Success      200  {object} dto.RetrieveBillResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/bill/held/{id}/retrieve [post]
func (h *BillsHandler) RetrieveBill(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	billID, err := h.svc.RetrieveBill(c.Request.Context(), sellerID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RetrieveBillResponse{BillID: billID.String()})
}

// Checkout godoc
// @Summary      Checkout the current bill
// @Description  Finalizes the open bill atomically: freezes line totals, applies the optional point discount, accrues loyalty points, and flips the bill to paid.
// @Tags         bills
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.CheckoutRequest true "Payment details"
// @Success      200  {object} dto.BillResponse
// @Failure      409  {object} apierror.APIError
// @Router       /v1/bill/checkout [post]
func (h *BillsHandler) Checkout(c *gin.Context) {
	var req dto.CheckoutRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Checkout(c.Request.Context(), sellerID(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
