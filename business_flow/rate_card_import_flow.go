package businessflow

import (
	"context"
	"errors"
	"strings"

	"github.com/sellerpulse/recon-api/app/dto"
	"github.com/sellerpulse/recon-api/logger"
	"github.com/sellerpulse/recon-api/models"
	"github.com/sellerpulse/recon-api/repository"
)

// RateCardImportFlow parses uploaded rate card files, classifies each row
// against the persisted cards and performs the best-effort row-by-row import.
type RateCardImportFlow interface {
	ParseImportFile(ctx context.Context, filename string, data []byte) (*dto.ParseImportFileResponse, error)
	ImportRateCards(ctx context.Context, req *dto.ImportRateCardsRequest) (*dto.ImportRateCardsResponse, error)
}

type RateCardImportFlowImpl struct {
	rateCardRepo repository.RateCardRepository
	log          *logger.Entry
}

func NewRateCardImportFlow(rateCardRepo repository.RateCardRepository) RateCardImportFlow {
	return &RateCardImportFlowImpl{
		rateCardRepo: rateCardRepo,
		log:          logger.GetLogger().WithComponent("rate_card_import"),
	}
}

// ParseImportFile decodes a CSV or XLSX upload and classifies every data row
// as valid, similar, duplicate or error. Rows are processed and reported in
// file order; row numbers start at 1 for the first data row.
func (f *RateCardImportFlowImpl) ParseImportFile(ctx context.Context, filename string, data []byte) (*dto.ParseImportFileResponse, error) {
	table, err := readImportTable(filename, data)
	if err != nil {
		if errors.Is(err, ErrEmptyImportFile) {
			return nil, NewBusinessError("IMPORT_FILE_EMPTY", "Import file contains no data rows", err)
		}
		return nil, NewBusinessError("IMPORT_FILE_UNREADABLE", "Failed to read import file", err)
	}

	res := &dto.ParseImportFileResponse{
		Message: "Import file parsed",
		Rows:    make([]dto.ParsedRowDTO, 0, len(table.rows)),
	}

	for i, row := range table.rows {
		rowNum := i + 1
		draft, parseIssues := table.parseDraftRow(row)

		_, status, message := f.classifyDraft(ctx, draft, parseIssues)
		res.Rows = append(res.Rows, dto.ParsedRowDTO{
			Row:     rowNum,
			Status:  status,
			Message: message,
			Payload: draft,
		})

		res.Summary.Total++
		switch status {
		case dto.RowStatusValid:
			res.Summary.Valid++
		case dto.RowStatusSimilar:
			res.Summary.Similar++
		case dto.RowStatusDuplicate:
			res.Summary.Duplicate++
		default:
			res.Summary.Error++
		}
		importRowsTotal.WithLabelValues(status).Inc()
	}

	return res, nil
}

// classifyDraft runs the per-row pipeline: collected field errors first, then
// slab structure, then the overlap comparison against persisted cards for the
// same key. On a valid or similar outcome the built card (with sorted slabs)
// is returned ready for insertion.
func (f *RateCardImportFlowImpl) classifyDraft(ctx context.Context, draft *dto.DraftRateCard, parseIssues []string) (*models.RateCard, string, string) {
	card, fieldIssues := BuildRateCard(draft)
	issues := append(parseIssues, fieldIssues...)
	if len(issues) > 0 {
		return nil, dto.RowStatusError, strings.Join(issues, "; ")
	}

	if card.CommissionType == models.CommissionTypeTiered {
		sorted, err := ValidateSlabs(card.Slabs)
		if err != nil {
			return nil, dto.RowStatusError, err.Error()
		}
		card.Slabs = sorted
	}

	existing, err := f.rateCardRepo.ByKey(ctx, card.PlatformID, card.CategoryID)
	if err != nil {
		return nil, dto.RowStatusError, "failed to look up existing rate cards: " + err.Error()
	}

	overlap := false
	for _, e := range existing {
		if !e.OverlapsRange(card.EffectiveFrom, card.EffectiveTo) {
			continue
		}
		if e.SameDateRange(card) && e.SameStructure(card) {
			return nil, dto.RowStatusDuplicate, "identical to existing rate card " + e.UUID.String()
		}
		overlap = true
	}
	if overlap {
		return card, dto.RowStatusSimilar, "date range overlaps an existing rate card with a different structure"
	}
	return card, dto.RowStatusValid, ""
}

// ImportRateCards persists rows classified valid, plus similar rows when the
// caller opted in. Duplicate and error rows are always skipped. Each accepted
// row is inserted in its own atomic transaction; a failure skips only that
// row, never the rest of the batch, and leaves no partial data behind.
func (f *RateCardImportFlowImpl) ImportRateCards(ctx context.Context, req *dto.ImportRateCardsRequest) (*dto.ImportRateCardsResponse, error) {
	res := &dto.ImportRateCardsResponse{
		Message: "Import finished",
		Results: make([]dto.ImportRowResultDTO, 0, len(req.Rows)),
	}

	for i := range req.Rows {
		rowNum := i + 1
		result := f.importRow(ctx, &req.Rows[i], req.IncludeSimilar)
		result.Row = rowNum
		res.Results = append(res.Results, result)

		if result.Status == dto.RowStatusImported {
			res.Summary.Inserted++
		} else {
			res.Summary.Skipped++
		}
		importRowsTotal.WithLabelValues(result.Status).Inc()
	}

	return res, nil
}

func (f *RateCardImportFlowImpl) importRow(ctx context.Context, draft *dto.DraftRateCard, includeSimilar bool) dto.ImportRowResultDTO {
	card, status, message := f.classifyDraft(ctx, draft, nil)
	switch status {
	case dto.RowStatusValid:
	case dto.RowStatusSimilar:
		if !includeSimilar {
			return dto.ImportRowResultDTO{Status: dto.RowStatusSkipped, Message: "similar to an existing rate card; not imported without include_similar"}
		}
	default:
		return dto.ImportRowResultDTO{Status: dto.RowStatusSkipped, Message: message}
	}

	if err := f.rateCardRepo.ImportCard(ctx, card); err != nil {
		if errors.Is(err, repository.ErrDuplicateCard) {
			return dto.ImportRowResultDTO{Status: dto.RowStatusSkipped, Message: "identical overlapping rate card was inserted concurrently"}
		}
		f.log.WithError(err).WithFields(logger.Fields{
			"platform_id": card.PlatformID,
			"category_id": card.CategoryID,
		}).Warn("rate card import row failed")
		return dto.ImportRowResultDTO{Status: dto.RowStatusSkipped, Message: "insert failed: " + err.Error()}
	}

	id := card.UUID.String()
	return dto.ImportRowResultDTO{Status: dto.RowStatusImported, ID: &id}
}
