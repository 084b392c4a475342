// Package businessflow contains the business logic for the rate-card engine:
// slab validation, payout calculation, settlement scheduling, rate card
// resolution and bulk import classification.
package businessflow

import (
	"time"

	"github.com/sellerpulse/recon-api/app/dto"
	"github.com/sellerpulse/recon-api/models"
	"github.com/sellerpulse/recon-api/utils"
)

// ToRateCardDTO converts a persisted rate card to its API shape.
func ToRateCardDTO(card *models.RateCard) dto.RateCardDTO {
	out := dto.RateCardDTO{
		ID:                card.ID,
		UUID:              card.UUID.String(),
		PlatformID:        card.PlatformID,
		CategoryID:        card.CategoryID,
		CommissionType:    card.CommissionType,
		CommissionPercent: card.CommissionPercent,
		GSTPercent:        card.GSTPercent,
		TCSPercent:        card.TCSPercent,
		SettlementBasis:   card.SettlementBasis,
		TPlusDays:         card.TPlusDays,
		WeeklyWeekday:     card.WeeklyWeekday,
		BiWeeklyWeekday:   card.BiWeeklyWeekday,
		BiWeeklyWhich:     card.BiWeeklyWhich,
		MonthlyDay:        card.MonthlyDay,
		GraceDays:         card.GraceDays,
		EffectiveFrom:     utils.FormatDateOnly(card.EffectiveFrom),
		GlobalMinPrice:    card.GlobalMinPrice,
		GlobalMaxPrice:    card.GlobalMaxPrice,
		Notes:             card.Notes,
		CreatedAt:         card.CreatedAt.Format(time.RFC3339),
	}
	if card.EffectiveTo != nil {
		s := utils.FormatDateOnly(*card.EffectiveTo)
		out.EffectiveTo = &s
	}
	for i := range card.Slabs {
		s := &card.Slabs[i]
		out.Slabs = append(out.Slabs, dto.SlabInput{
			MinPrice:          s.MinPrice,
			MaxPrice:          s.MaxPrice,
			CommissionPercent: s.CommissionPercent,
		})
	}
	for i := range card.Fees {
		f := &card.Fees[i]
		out.Fees = append(out.Fees, dto.FeeInput{
			FeeCode:  f.FeeCode,
			FeeType:  f.FeeType,
			FeeValue: f.FeeValue,
		})
	}
	return out
}
