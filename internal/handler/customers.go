package handler

import (
	"net/http"

	"smartpos/internal/apierror"
	"smartpos/internal/dto"
	"smartpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CustomersHandler struct{ svc service.CustomerService }

func NewCustomersHandler(svc service.CustomerService) *CustomersHandler {
	return &CustomersHandler{svc: svc}
}

// Register godoc
// @Summary      Register a loyalty customer
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.RegisterCustomerRequest true "Customer details"
// @Success      201  {object} dto.CustomerResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /v1/customers [post]
func (h *CustomersHandler) Register(c *gin.Context) {
	var req dto.RegisterCustomerRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Register(c.Request.Context(), sellerID(c), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List loyalty customers
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array} dto.CustomerResponse
// @Router       /v1/customers [get]
func (h *CustomersHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context(), sellerID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a customer with point history
// @Tags         customers
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Customer UUID"
// @Success      200  {object} dto.CustomerResponse
// @Failure      404  {object} apierror.APIError
// @Router       /v1/customers/{id} [get]
func (h *CustomersHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	resp, err := h.svc.Get(c.Request.Context(), sellerID(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RedeemReward godoc
// @Summary      Redeem points for a reward
// @Description  Spends points on a named reward. Requesting more than the balance fails — no clamping on this path.
// @Tags         customers
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id   path string                  true "Customer UUID"
// @Param        body body dto.RedeemRewardRequest true "Redemption"
// @Success      200  {object} dto.CustomerResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Router       /v1/customers/{id}/redeem [post]
func (h *CustomersHandler) RedeemReward(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid id"))
		return
	}
	var req dto.RedeemRewardRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RedeemReward(c.Request.Context(), sellerID(c), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
