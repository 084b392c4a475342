package handlers

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/sellerpulse/recon-api/app/dto"
	businessflow "github.com/sellerpulse/recon-api/business_flow"
	"github.com/sellerpulse/recon-api/logger"
)

// MaxImportFileSize caps uploads at 10 MiB.
const MaxImportFileSize = 10 << 20

type ImportHandlerInterface interface {
	Parse(c fiber.Ctx) error
	Import(c fiber.Ctx) error
}

type ImportHandler struct {
	flow      businessflow.RateCardImportFlow
	validator *validator.Validate
	log       *logger.Entry
}

func NewImportHandler(flow businessflow.RateCardImportFlow) ImportHandlerInterface {
	return &ImportHandler{
		flow:      flow,
		validator: validator.New(),
		log:       logger.GetLogger().WithComponent("import_handler"),
	}
}

func (h *ImportHandler) ErrorResponse(c fiber.Ctx, status int, message, code string, details any) error {
	return c.Status(status).JSON(dto.APIResponse{Success: false, Message: message, Error: dto.ErrorDetail{Code: code, Details: details}})
}

// Parse accepts a multipart/form-data upload with a single file field (CSV or
// XLSX) and returns every row classified as valid, similar, duplicate or
// error. Nothing is persisted.
// @Summary Parse Rate Card Import File
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV or XLSX file of rate cards"
// @Success 200 {object} dto.APIResponse{data=dto.ParseImportFileResponse}
// @Failure 400 {object} dto.APIResponse "Missing, empty or unreadable file"
// @Router /api/v1/rate-cards/import/parse [post]
func (h *ImportHandler) Parse(c fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil || fileHeader == nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "file is required", "INVALID_REQUEST", nil)
	}
	if fileHeader.Size > MaxImportFileSize {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "file exceeds the 10MB limit", "FILE_TOO_LARGE", nil)
	}

	data, err := readFormFile(fileHeader)
	if err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "invalid file", "INVALID_FILE", err.Error())
	}

	res, err := h.flow.ParseImportFile(h.createRequestContext(c, "/api/v1/rate-cards/import/parse"), fileHeader.Filename, data)
	if err != nil {
		return h.importErrorResponse(c, err, "Failed to parse import file", "IMPORT_PARSE_FAILED")
	}

	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{Success: true, Message: res.Message, Data: res})
}

// Import persists previously parsed rows. Every row is re-validated and
// re-classified against the current database state before insertion, so rows
// that became duplicates since parsing are skipped rather than inserted.
// @Summary Import Rate Cards
// @Tags Imports
// @Accept json
// @Produce json
// @Param request body dto.ImportRateCardsRequest true "Parsed rows"
// @Success 200 {object} dto.APIResponse{data=dto.ImportRateCardsResponse}
// @Failure 400 {object} dto.APIResponse "Validation failed"
// @Router /api/v1/rate-cards/import [post]
func (h *ImportHandler) Import(c fiber.Ctx) error {
	var req dto.ImportRateCardsRequest
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

	res, err := h.flow.ImportRateCards(h.createRequestContextWithTimeout(c, "/api/v1/rate-cards/import", 120*time.Second), &req)
	if err != nil {
		return h.importErrorResponse(c, err, "Failed to import rate cards", "IMPORT_FAILED")
	}

	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{Success: true, Message: res.Message, Data: res})
}

func (h *ImportHandler) importErrorResponse(c fiber.Ctx, err error, fallbackMsg, fallbackCode string) error {
	var be *businessflow.BusinessError
	if errors.As(err, &be) {
		status := fiber.StatusInternalServerError
		switch be.Code {
		case "IMPORT_FILE_EMPTY", "IMPORT_FILE_UNREADABLE":
			status = fiber.StatusBadRequest
		}
		if status == fiber.StatusInternalServerError {
			h.log.WithError(err).Error(fallbackMsg)
		}
		return h.ErrorResponse(c, status, be.Message, be.Code, nil)
	}
	h.log.WithError(err).Error(fallbackMsg)
	return h.ErrorResponse(c, fiber.StatusInternalServerError, fallbackMsg, fallbackCode, nil)
}

func readFormFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(io.LimitReader(f, MaxImportFileSize+1))
}

func (h *ImportHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 60*time.Second)
}

func (h *ImportHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	return createRequestContextWithTimeout(c, endpoint, timeout)
}
