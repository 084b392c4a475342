package businessflow

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/sellerpulse/recon-api/app/dto"
	"github.com/sellerpulse/recon-api/models"
	"github.com/sellerpulse/recon-api/repository"
	"github.com/sellerpulse/recon-api/utils"
)

// RateCardFlow defines the single-card operations: create, lookup and
// settlement date projection.
type RateCardFlow interface {
	CreateRateCard(ctx context.Context, req *dto.CreateRateCardRequest) (*dto.CreateRateCardResponse, error)
	ListRateCards(ctx context.Context, filter models.RateCardFilter) (*dto.ListRateCardsResponse, error)
	GetRateCard(ctx context.Context, uuid string) (*dto.GetRateCardResponse, error)
	ExpectedSettlementDate(ctx context.Context, uuid, dispatchDate string) (*dto.SettlementDateResponse, error)
}

type RateCardFlowImpl struct {
	rateCardRepo repository.RateCardRepository
}

func NewRateCardFlow(rateCardRepo repository.RateCardRepository) RateCardFlow {
	return &RateCardFlowImpl{rateCardRepo: rateCardRepo}
}

// CreateRateCard validates and persists one card submitted through the form
// path. Overlapping cards with a differing structure do not block the create;
// they are surfaced as warnings so the caller can decide whether the overlap
// is intended. A structurally identical overlap is rejected as a duplicate.
func (f *RateCardFlowImpl) CreateRateCard(ctx context.Context, req *dto.CreateRateCardRequest) (*dto.CreateRateCardResponse, error) {
	card, issues := BuildRateCard(&req.DraftRateCard)
	if len(issues) > 0 {
		return nil, NewBusinessError("RATE_CARD_VALIDATION_FAILED", "Rate card validation failed", &FieldValidationError{Issues: issues})
	}

	if card.CommissionType == models.CommissionTypeTiered {
		sorted, err := ValidateSlabs(card.Slabs)
		if err != nil {
			return nil, NewBusinessError("RATE_CARD_SLABS_INVALID", "Slab validation failed", err)
		}
		card.Slabs = sorted
	}

	var warnings []string
	existing, err := f.rateCardRepo.ByKey(ctx, card.PlatformID, card.CategoryID)
	if err != nil {
		return nil, NewBusinessError("RATE_CARD_LOOKUP_FAILED", "Failed to look up existing rate cards", err)
	}
	for _, e := range existing {
		if !e.OverlapsRange(card.EffectiveFrom, card.EffectiveTo) {
			continue
		}
		if e.SameDateRange(card) && e.SameStructure(card) {
			return nil, NewBusinessError("RATE_CARD_DUPLICATE", "An identical rate card already exists for this date range", repository.ErrDuplicateCard)
		}
		warnings = append(warnings, fmt.Sprintf(
			"overlaps existing rate card %s (effective %s to %s) with a different structure",
			e.UUID, utils.FormatDateOnly(e.EffectiveFrom), openEndedOr(e.EffectiveTo)))
	}

	if err := f.rateCardRepo.Save(ctx, card); err != nil {
		return nil, NewBusinessError("RATE_CARD_SAVE_FAILED", "Failed to save rate card", err)
	}

	cardDTO := ToRateCardDTO(card)
	return &dto.CreateRateCardResponse{
		Message:  "Rate card created successfully",
		Card:     &cardDTO,
		Warnings: warnings,
	}, nil
}

// ListRateCards returns the cards matching the filter, newest first.
func (f *RateCardFlowImpl) ListRateCards(ctx context.Context, filter models.RateCardFilter) (*dto.ListRateCardsResponse, error) {
	cards, err := f.rateCardRepo.ByFilter(ctx, filter)
	if err != nil {
		return nil, NewBusinessError("RATE_CARD_LIST_FAILED", "Failed to list rate cards", err)
	}

	items := make([]dto.RateCardDTO, 0, len(cards))
	for _, c := range cards {
		items = append(items, ToRateCardDTO(c))
	}
	return &dto.ListRateCardsResponse{
		Message: "Rate cards retrieved successfully",
		Items:   items,
	}, nil
}

// GetRateCard returns one card by UUID with its slabs and fees.
func (f *RateCardFlowImpl) GetRateCard(ctx context.Context, uuid string) (*dto.GetRateCardResponse, error) {
	card, err := f.rateCardRepo.ByUUID(ctx, uuid)
	if err != nil {
		return nil, NewBusinessError("RATE_CARD_FETCH_FAILED", "Failed to fetch rate card", err)
	}
	if card == nil {
		return nil, NewBusinessError("RATE_CARD_NOT_FOUND", "Rate card not found", ErrRateCardNotFound)
	}

	cardDTO := ToRateCardDTO(card)
	return &dto.GetRateCardResponse{
		Message: "Rate card retrieved successfully",
		Card:    &cardDTO,
	}, nil
}

// ExpectedSettlementDate projects the settlement date for an order dispatched
// on dispatchDate under the card's settlement basis.
func (f *RateCardFlowImpl) ExpectedSettlementDate(ctx context.Context, uuid, dispatchDate string) (*dto.SettlementDateResponse, error) {
	if dispatchDate == "" {
		return nil, NewBusinessError("DISPATCH_DATE_REQUIRED", "dispatch_date is required", ErrDispatchDateRequired)
	}
	ref, err := civil.ParseDate(dispatchDate)
	if err != nil {
		return nil, NewBusinessError("DISPATCH_DATE_INVALID", "dispatch_date must be a YYYY-MM-DD date", ErrDispatchDateInvalid)
	}

	card, err := f.rateCardRepo.ByUUID(ctx, uuid)
	if err != nil {
		return nil, NewBusinessError("RATE_CARD_FETCH_FAILED", "Failed to fetch rate card", err)
	}
	if card == nil {
		return nil, NewBusinessError("RATE_CARD_NOT_FOUND", "Rate card not found", ErrRateCardNotFound)
	}

	settlement := ExpectedSettlementDate(card, ref)
	return &dto.SettlementDateResponse{
		Message:        "Settlement date computed",
		RateCardUUID:   card.UUID.String(),
		DispatchDate:   ref.String(),
		SettlementDate: settlement.String(),
		GraceDays:      card.GraceDays,
	}, nil
}

func openEndedOr(t *time.Time) string {
	if t == nil {
		return "open-ended"
	}
	return utils.FormatDateOnly(*t)
}
