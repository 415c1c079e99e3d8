package handler

import (
	"errors"
	"net/http"
	"reflect"

	"smartpos/internal/apierror"
	"smartpos/internal/loyalty"
	"smartpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondServiceError maps service sentinel errors onto HTTP status plus a
// stable machine code. Unknown errors go through the error-handler middleware
// as opaque 500s.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoOpenBill):
		c.JSON(http.StatusConflict, apierror.WithCode("NO_OPEN_BILL", err.Error()))
	case errors.Is(err, service.ErrEmptyBill):
		c.JSON(http.StatusConflict, apierror.WithCode("EMPTY_BILL", err.Error()))
	case errors.Is(err, service.ErrBillNotOpen):
		c.JSON(http.StatusConflict, apierror.WithCode("BILL_NOT_OPEN", err.Error()))
	case errors.Is(err, service.ErrOpenBillConflict):
		c.JSON(http.StatusConflict, apierror.WithCode("RETRY_CONFLICT", err.Error()))
	case errors.Is(err, service.ErrHeldBillNotFound):
		c.JSON(http.StatusNotFound, apierror.WithCode("HELD_BILL_NOT_FOUND", err.Error()))
	case errors.Is(err, service.ErrItemNotFound):
		c.JSON(http.StatusNotFound, apierror.WithCode("ITEM_NOT_FOUND", err.Error()))
	case errors.Is(err, service.ErrCustomerNotFound):
		c.JSON(http.StatusNotFound, apierror.WithCode("CUSTOMER_NOT_FOUND", err.Error()))
	case errors.Is(err, service.ErrInvalidQty):
		c.JSON(http.StatusBadRequest, apierror.WithCode("INVALID_QTY", err.Error()))
	case errors.Is(err, loyalty.ErrInsufficientPoints):
		c.JSON(http.StatusBadRequest, apierror.WithCode("INSUFFICIENT_POINTS", err.Error()))
	default:
		_ = c.Error(err)
	}
}
