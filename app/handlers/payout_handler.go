package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sellerpulse/recon-api/app/dto"
	businessflow "github.com/sellerpulse/recon-api/business_flow"
	"github.com/sellerpulse/recon-api/logger"
)

type PayoutHandlerInterface interface {
	Calculate(c fiber.Ctx) error
}

type PayoutHandler struct {
	flow      businessflow.PayoutFlow
	validator *validator.Validate
	log       *logger.Entry
}

func NewPayoutHandler(flow businessflow.PayoutFlow) PayoutHandlerInterface {
	return &PayoutHandler{
		flow:      flow,
		validator: validator.New(),
		log:       logger.GetLogger().WithComponent("payout_handler"),
	}
}

func (h *PayoutHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

// Calculate computes the expected payout for one transaction and compares it
// with the actual settlement amount.
// @Summary Calculate Payout
// @Description Resolve the applicable rate card and compute the expected payout, deductions breakdown, delta and mismatch flag
// @Tags Payouts
// @Accept json
// @Produce json
// @Param request body dto.CalculatePayoutRequest true "Transaction"
// @Success 200 {object} dto.APIResponse{data=dto.CalculatePayoutResponse}
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 422 {object} dto.APIResponse "Price outside the resolved rate card's range"
// @Router /api/v1/payouts/calculate [post]
func (h *PayoutHandler) Calculate(c fiber.Ctx) error {
	var req dto.CalculatePayoutRequest
	if err := c.Bind().Body(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST_BODY", nil)
	}

	if err := h.validator.Struct(&req); err != nil {
		validationErrors := make(map[string]string)
		if ve, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range ve {
				validationErrors[fieldError.Field()] = getValidationErrorMessage(fieldError)
			}
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	res, err := h.flow.CalculatePayout(h.createRequestContext(c, "/api/v1/payouts/calculate"), &req)
	if err != nil {
		return h.payoutErrorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{Success: true, Message: res.Message, Data: res})
}

func (h *PayoutHandler) payoutErrorResponse(c fiber.Ctx, err error) error {
	var be *businessflow.BusinessError
	if errors.As(err, &be) {
		status := fiber.StatusInternalServerError
		switch be.Code {
		case "PAYOUT_PRICE_INVALID", "PAYOUT_DATE_INVALID":
			status = fiber.StatusBadRequest
		case "PAYOUT_NO_MATCHING_SLAB", "PAYOUT_PRICE_OUT_OF_RANGE":
			status = fiber.StatusUnprocessableEntity
		}
		if status == fiber.StatusInternalServerError {
			h.log.WithError(err).Error("Payout calculation failed")
		}
		return h.ErrorResponse(c, status, be.Message, be.Code, nil)
	}
	h.log.WithError(err).Error("Payout calculation failed")
	return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to calculate payout", "PAYOUT_CALCULATION_FAILED", nil)
}

func (h *PayoutHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}
