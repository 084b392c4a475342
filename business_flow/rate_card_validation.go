package businessflow

import (
	"fmt"
	"strconv"
	"time"

	"github.com/sellerpulse/recon-api/app/dto"
	"github.com/sellerpulse/recon-api/models"
	"github.com/sellerpulse/recon-api/utils"
)

// BuildRateCard converts a draft into a persistable model, collecting every
// field-level violation instead of stopping at the first. The model is only
// returned when the issue list is empty. Slab structure is checked separately
// by ValidateSlabs.
func BuildRateCard(d *dto.DraftRateCard) (*models.RateCard, []string) {
	var issues []string

	if d.PlatformID == "" {
		issues = append(issues, "platform_id is required")
	}
	if d.CategoryID == "" {
		issues = append(issues, "category_id is required")
	}

	switch d.CommissionType {
	case models.CommissionTypeFlat:
		if d.CommissionPercent == nil {
			issues = append(issues, "commission_percent is required for flat commission")
		} else if *d.CommissionPercent < 0 || *d.CommissionPercent > 100 {
			issues = append(issues, "commission_percent must be between 0 and 100")
		}
	case models.CommissionTypeTiered:
		// Slab structure is validated by ValidateSlabs after field checks pass.
	case "":
		issues = append(issues, "commission_type is required")
	default:
		issues = append(issues, fmt.Sprintf("commission_type must be %q or %q", models.CommissionTypeFlat, models.CommissionTypeTiered))
	}

	if d.GSTPercent < 0 || d.GSTPercent > utils.MaxGSTPercent {
		issues = append(issues, fmt.Sprintf("gst_percent must be between 0 and %g", utils.MaxGSTPercent))
	}
	if d.TCSPercent < 0 || d.TCSPercent > utils.MaxTCSPercent {
		issues = append(issues, fmt.Sprintf("tcs_percent must be between 0 and %g", utils.MaxTCSPercent))
	}

	issues = append(issues, validateSettlementConfig(d)...)

	if d.GraceDays < 0 {
		issues = append(issues, "grace_days must not be negative")
	}

	var effectiveFrom time.Time
	var effectiveTo *time.Time
	if d.EffectiveFrom == "" {
		issues = append(issues, "effective_from is required")
	} else {
		t, err := utils.ParseDateOnly(d.EffectiveFrom)
		if err != nil {
			issues = append(issues, "effective_from must be a YYYY-MM-DD date")
		} else {
			effectiveFrom = t
		}
	}
	if d.EffectiveTo != nil && *d.EffectiveTo != "" {
		t, err := utils.ParseDateOnly(*d.EffectiveTo)
		switch {
		case err != nil:
			issues = append(issues, "effective_to must be a YYYY-MM-DD date")
		case !effectiveFrom.IsZero() && !t.After(effectiveFrom):
			issues = append(issues, "effective_to must be after effective_from")
		default:
			effectiveTo = &t
		}
	}

	if d.GlobalMinPrice != nil && *d.GlobalMinPrice < 0 {
		issues = append(issues, "global_min_price must not be negative")
	}
	if d.GlobalMaxPrice != nil && *d.GlobalMaxPrice < 0 {
		issues = append(issues, "global_max_price must not be negative")
	}
	if d.GlobalMinPrice != nil && d.GlobalMaxPrice != nil && *d.GlobalMinPrice > *d.GlobalMaxPrice {
		issues = append(issues, "global_min_price must not exceed global_max_price")
	}

	issues = append(issues, validateFeeInputs(d.Fees)...)

	for i, s := range d.Slabs {
		if s.MinPrice < 0 {
			issues = append(issues, fmt.Sprintf("slab %d: min_price must not be negative", i+1))
		}
		if s.CommissionPercent < 0 || s.CommissionPercent > 100 {
			issues = append(issues, fmt.Sprintf("slab %d: commission_percent must be between 0 and 100", i+1))
		}
	}

	if len(issues) > 0 {
		return nil, issues
	}

	card := &models.RateCard{
		PlatformID:      d.PlatformID,
		CategoryID:      d.CategoryID,
		CommissionType:  d.CommissionType,
		GSTPercent:      d.GSTPercent,
		TCSPercent:      d.TCSPercent,
		SettlementBasis: d.SettlementBasis,
		TPlusDays:       d.TPlusDays,
		WeeklyWeekday:   d.WeeklyWeekday,
		BiWeeklyWeekday: d.BiWeeklyWeekday,
		BiWeeklyWhich:   d.BiWeeklyWhich,
		MonthlyDay:      d.MonthlyDay,
		GraceDays:       d.GraceDays,
		EffectiveFrom:   effectiveFrom,
		EffectiveTo:     effectiveTo,
		GlobalMinPrice:  d.GlobalMinPrice,
		GlobalMaxPrice:  d.GlobalMaxPrice,
		Notes:           d.Notes,
	}
	if d.CommissionType == models.CommissionTypeFlat {
		card.CommissionPercent = d.CommissionPercent
	} else {
		card.CommissionPercent = nil
	}
	for _, s := range d.Slabs {
		card.Slabs = append(card.Slabs, models.RateCardSlab{
			MinPrice:          s.MinPrice,
			MaxPrice:          s.MaxPrice,
			CommissionPercent: s.CommissionPercent,
		})
	}
	for _, f := range d.Fees {
		card.Fees = append(card.Fees, models.RateCardFee{
			FeeCode:  f.FeeCode,
			FeeType:  f.FeeType,
			FeeValue: f.FeeValue,
		})
	}
	return card, nil
}

func validateSettlementConfig(d *dto.DraftRateCard) []string {
	var issues []string

	switch d.SettlementBasis {
	case models.SettlementBasisTPlus:
		if d.TPlusDays == nil {
			issues = append(issues, "t_plus_days is required for t_plus settlement")
		} else if *d.TPlusDays < 0 {
			issues = append(issues, "t_plus_days must not be negative")
		}
	case models.SettlementBasisWeekly:
		if d.WeeklyWeekday == nil {
			issues = append(issues, "weekly_weekday is required for weekly settlement")
		} else if *d.WeeklyWeekday < 0 || *d.WeeklyWeekday > 6 {
			issues = append(issues, "weekly_weekday must be between 0 (Sunday) and 6 (Saturday)")
		}
	case models.SettlementBasisBiWeekly:
		if d.BiWeeklyWeekday == nil {
			issues = append(issues, "bi_weekly_weekday is required for bi_weekly settlement")
		} else if *d.BiWeeklyWeekday < 0 || *d.BiWeeklyWeekday > 6 {
			issues = append(issues, "bi_weekly_weekday must be between 0 (Sunday) and 6 (Saturday)")
		}
		if d.BiWeeklyWhich == nil {
			issues = append(issues, "bi_weekly_which is required for bi_weekly settlement")
		} else if *d.BiWeeklyWhich != models.BiWeeklyFirst && *d.BiWeeklyWhich != models.BiWeeklySecond {
			issues = append(issues, `bi_weekly_which must be "first" or "second"`)
		}
	case models.SettlementBasisMonthly:
		if d.MonthlyDay == nil {
			issues = append(issues, "monthly_day is required for monthly settlement")
		} else if !isValidMonthlyDay(*d.MonthlyDay) {
			issues = append(issues, `monthly_day must be 1..31 or "eom"`)
		}
	case "":
		issues = append(issues, "settlement_basis is required")
	default:
		issues = append(issues, "settlement_basis must be one of t_plus, weekly, bi_weekly, monthly")
	}

	return issues
}

func isValidMonthlyDay(spec string) bool {
	if spec == models.MonthlyDayEOM {
		return true
	}
	n, err := strconv.Atoi(spec)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 31
}

func validateFeeInputs(fees []dto.FeeInput) []string {
	var issues []string
	seen := make(map[string]bool, len(fees))
	for i, f := range fees {
		if !models.IsValidFeeCode(f.FeeCode) {
			issues = append(issues, fmt.Sprintf("fee %d: unknown fee_code %q", i+1, f.FeeCode))
		}
		if f.FeeType != models.FeeTypePercent && f.FeeType != models.FeeTypeAmount {
			issues = append(issues, fmt.Sprintf("fee %d: fee_type must be %q or %q", i+1, models.FeeTypePercent, models.FeeTypeAmount))
		}
		if f.FeeValue < 0 {
			issues = append(issues, fmt.Sprintf("fee %d: fee_value must not be negative", i+1))
		}
		key := f.FeeCode + "/" + f.FeeType
		if seen[key] {
			issues = append(issues, fmt.Sprintf("fee %d: duplicate rule for (%s, %s)", i+1, f.FeeCode, f.FeeType))
		}
		seen[key] = true
	}
	return issues
}
