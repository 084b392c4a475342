package businessflow

import (
	"github.com/sellerpulse/recon-api/app/dto"
	"github.com/sellerpulse/recon-api/models"
	"github.com/sellerpulse/recon-api/utils"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// ComputePayout calculates the deduction breakdown and expected payout for a
// price under a resolved rate card. Passing a nil card is the deliberate
// not-found fallback: the payout equals the price, every deduction is zero and
// RateCardFound is false.
//
// Internal arithmetic runs on unrounded decimals; rounding to two places
// happens only at the boundary, so results are reproducible.
//
// includeTCS adds price × tcs_percent/100 to the deductions. The reference
// behavior carries tcs_percent in the schema without deducting it, so the
// switch defaults to off at the configuration layer.
func ComputePayout(card *models.RateCard, price float64, includeTCS bool) (*dto.CalculationBreakdown, float64, bool, error) {
	if price <= 0 {
		return nil, 0, false, ErrPriceNotPositive
	}

	p := decimal.NewFromFloat(price)

	if card == nil {
		return &dto.CalculationBreakdown{Fees: []dto.FeeAmountDTO{}}, round2(p), false, nil
	}

	if !card.ContainsPrice(price) {
		return nil, 0, true, ErrPriceOutOfRange
	}

	commission, err := commissionFor(card, price, p)
	if err != nil {
		return nil, 0, true, err
	}

	feeLines := make([]dto.FeeAmountDTO, 0, len(card.Fees))
	feeSum := decimal.Zero
	for i := range card.Fees {
		f := &card.Fees[i]
		amount := decimal.NewFromFloat(f.FeeValue)
		if f.FeeType == models.FeeTypePercent {
			amount = p.Mul(amount).Div(oneHundred)
		}
		feeSum = feeSum.Add(amount)
		feeLines = append(feeLines, dto.FeeAmountDTO{
			FeeCode: f.FeeCode,
			FeeType: f.FeeType,
			Amount:  round2(amount),
		})
	}

	gst := commission.Add(feeSum).Mul(decimal.NewFromFloat(card.GSTPercent)).Div(oneHundred)

	tcs := decimal.Zero
	if includeTCS {
		tcs = p.Mul(decimal.NewFromFloat(card.TCSPercent)).Div(oneHundred)
	}

	totalDeductions := commission.Add(feeSum).Add(gst).Add(tcs)
	expectedPayout := p.Sub(totalDeductions)

	breakdown := &dto.CalculationBreakdown{
		Commission:      round2(commission),
		Fees:            feeLines,
		TotalFees:       round2(feeSum),
		GST:             round2(gst),
		TCS:             round2(tcs),
		TotalDeductions: round2(totalDeductions),
	}
	return breakdown, round2(expectedPayout), true, nil
}

// commissionFor resolves the commission amount. Flat cards apply their percent
// to the full price. Tiered cards apply the percent of the single slab whose
// band contains the price to the full price; banding is not incremental.
func commissionFor(card *models.RateCard, price float64, p decimal.Decimal) (decimal.Decimal, error) {
	switch card.CommissionType {
	case models.CommissionTypeTiered:
		for i := range card.Slabs {
			s := &card.Slabs[i]
			if s.Contains(price) {
				return p.Mul(decimal.NewFromFloat(s.CommissionPercent)).Div(oneHundred), nil
			}
		}
		return decimal.Zero, ErrNoMatchingSlab
	default:
		pct := 0.0
		if card.CommissionPercent != nil {
			pct = *card.CommissionPercent
		}
		return p.Mul(decimal.NewFromFloat(pct)).Div(oneHundred), nil
	}
}

func round2(d decimal.Decimal) float64 {
	f, _ := d.Round(utils.MoneyScale).Float64()
	return f
}
