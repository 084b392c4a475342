package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/sellerpulse/recon-api/app/dto"
	businessflow "github.com/sellerpulse/recon-api/business_flow"
	"github.com/sellerpulse/recon-api/logger"
	"github.com/sellerpulse/recon-api/models"
	"github.com/sellerpulse/recon-api/utils"
)

type RateCardHandlerInterface interface {
	Create(c fiber.Ctx) error
	List(c fiber.Ctx) error
	Get(c fiber.Ctx) error
	SettlementDate(c fiber.Ctx) error
}

type RateCardHandler struct {
	flow businessflow.RateCardFlow
	log  *logger.Entry
}

func NewRateCardHandler(flow businessflow.RateCardFlow) RateCardHandlerInterface {
	return &RateCardHandler{
		flow: flow,
		log:  logger.GetLogger().WithComponent("rate_card_handler"),
	}
}

func (h *RateCardHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

func (h *RateCardHandler) SuccessResponse(c fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: true, Message: message, Data: data})
}

// Create persists a single rate card submitted through the dashboard form.
// @Summary Create Rate Card
// @Description Validate and persist one rate card; overlapping cards with a differing structure are reported as warnings
// @Tags Rate Cards
// @Accept json
// @Produce json
// @Param request body dto.CreateRateCardRequest true "Rate card"
// @Success 201 {object} dto.APIResponse{data=dto.CreateRateCardResponse}
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Failure 409 {object} dto.APIResponse "Duplicate rate card"
// @Router /api/v1/rate-cards [post]
func (h *RateCardHandler) Create(c fiber.Ctx) error {
	var req dto.CreateRateCardRequest
	if err := c.Bind().Body(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST_BODY", nil)
	}

	res, err := h.flow.CreateRateCard(h.createRequestContext(c, "/api/v1/rate-cards"), &req)
	if err != nil {
		return h.businessErrorResponse(c, err, "Create rate card failed", "RATE_CARD_CREATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusCreated, "Rate card created", res)
}

// List returns rate cards matching the optional filters.
// @Summary List Rate Cards
// @Description List rate cards, optionally filtered by platform, category and a date they must be active on
// @Tags Rate Cards
// @Produce json
// @Param platform_id query string false "Platform filter"
// @Param category_id query string false "Category filter"
// @Param active_on query string false "Date (YYYY-MM-DD) the cards must be effective on"
// @Success 200 {object} dto.APIResponse{data=dto.ListRateCardsResponse}
// @Failure 500 {object} dto.APIResponse "List failed"
// @Router /api/v1/rate-cards [get]
func (h *RateCardHandler) List(c fiber.Ctx) error {
	filter := models.RateCardFilter{}
	if v := c.Query("platform_id"); v != "" {
		filter.PlatformID = &v
	}
	if v := c.Query("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := c.Query("active_on"); v != "" {
		t, err := utils.ParseDateOnly(v)
		if err != nil {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "active_on must be a YYYY-MM-DD date", "INVALID_QUERY_PARAM", nil)
		}
		filter.ActiveOn = &t
	}

	res, err := h.flow.ListRateCards(h.createRequestContext(c, "/api/v1/rate-cards"), filter)
	if err != nil {
		h.log.WithError(err).Error("list rate cards failed")
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "List rate cards failed", "RATE_CARD_LIST_FAILED", nil)
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Rate cards retrieved", res)
}

// Get returns one rate card by UUID.
// @Summary Get Rate Card
// @Description Fetch one rate card with its slabs and fees
// @Tags Rate Cards
// @Produce json
// @Param uuid path string true "Rate card UUID"
// @Success 200 {object} dto.APIResponse{data=dto.GetRateCardResponse}
// @Failure 404 {object} dto.APIResponse "Not found"
// @Router /api/v1/rate-cards/{uuid} [get]
func (h *RateCardHandler) Get(c fiber.Ctx) error {
	res, err := h.flow.GetRateCard(h.createRequestContext(c, "/api/v1/rate-cards/:uuid"), c.Params("uuid"))
	if err != nil {
		return h.businessErrorResponse(c, err, "Get rate card failed", "RATE_CARD_FETCH_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Rate card retrieved", res)
}

// SettlementDate projects the expected settlement date for a dispatch date.
// @Summary Expected Settlement Date
// @Description Compute the expected settlement date for an order dispatched on the given date under this card's settlement basis
// @Tags Rate Cards
// @Produce json
// @Param uuid path string true "Rate card UUID"
// @Param dispatch_date query string true "Dispatch date (YYYY-MM-DD)"
// @Success 200 {object} dto.APIResponse{data=dto.SettlementDateResponse}
// @Failure 400 {object} dto.APIResponse "Invalid dispatch date"
// @Failure 404 {object} dto.APIResponse "Not found"
// @Router /api/v1/rate-cards/{uuid}/settlement-date [get]
func (h *RateCardHandler) SettlementDate(c fiber.Ctx) error {
	res, err := h.flow.ExpectedSettlementDate(
		h.createRequestContext(c, "/api/v1/rate-cards/:uuid/settlement-date"),
		c.Params("uuid"), c.Query("dispatch_date"))
	if err != nil {
		return h.businessErrorResponse(c, err, "Settlement date computation failed", "SETTLEMENT_DATE_FAILED")
	}
	return h.SuccessResponse(c, fiber.StatusOK, "Settlement date computed", res)
}

// businessErrorResponse maps BusinessError codes onto HTTP statuses.
func (h *RateCardHandler) businessErrorResponse(c fiber.Ctx, err error, fallbackMsg, fallbackCode string) error {
	var be *businessflow.BusinessError
	if errors.As(err, &be) {
		status := fiber.StatusInternalServerError
		var details any
		switch be.Code {
		case "RATE_CARD_NOT_FOUND":
			status = fiber.StatusNotFound
		case "RATE_CARD_DUPLICATE":
			status = fiber.StatusConflict
		case "RATE_CARD_VALIDATION_FAILED", "RATE_CARD_SLABS_INVALID",
			"DISPATCH_DATE_REQUIRED", "DISPATCH_DATE_INVALID":
			status = fiber.StatusBadRequest
		}
		var fieldErr *businessflow.FieldValidationError
		if errors.As(err, &fieldErr) {
			details = fieldErr.Issues
		}
		var slabErr *businessflow.SlabValidationError
		if errors.As(err, &slabErr) {
			details = slabErr.Issues
		}
		if status == fiber.StatusInternalServerError {
			h.log.WithError(err).Error(fallbackMsg)
		}
		return h.ErrorResponse(c, status, be.Message, be.Code, details)
	}
	h.log.WithError(err).Error(fallbackMsg)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMsg, fallbackCode, nil)
}

func (h *RateCardHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	ctx = context.WithValue(ctx, utils.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, utils.UserAgentKey, c.Get("User-Agent"))
	ctx = context.WithValue(ctx, utils.IPAddressKey, c.IP())
	ctx = context.WithValue(ctx, utils.EndpointKey, endpoint)
	ctx = context.WithValue(ctx, utils.TimeoutKey, timeout)
	ctx = context.WithValue(ctx, utils.CancelFuncKey, cancel)
	return ctx
}
