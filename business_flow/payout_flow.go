package businessflow

import (
	"context"
	"time"

	"github.com/sellerpulse/recon-api/app/dto"
	"github.com/sellerpulse/recon-api/models"
	"github.com/sellerpulse/recon-api/repository"
	"github.com/sellerpulse/recon-api/utils"
	"github.com/shopspring/decimal"
)

// PayoutConfig holds behavior switches for the payout calculation.
type PayoutConfig struct {
	// IncludeTCS subtracts price × tcs_percent/100 from the payout. Off by
	// default: the reference behavior carries tcs_percent without deducting it.
	IncludeTCS bool
}

// PayoutFlow resolves the applicable rate card for a transaction and computes
// the expected payout against the actual settlement amount.
type PayoutFlow interface {
	CalculatePayout(ctx context.Context, req *dto.CalculatePayoutRequest) (*dto.CalculatePayoutResponse, error)
}

type PayoutFlowImpl struct {
	rateCardRepo repository.RateCardRepository
	cfg          PayoutConfig
}

func NewPayoutFlow(rateCardRepo repository.RateCardRepository, cfg PayoutConfig) PayoutFlow {
	return &PayoutFlowImpl{rateCardRepo: rateCardRepo, cfg: cfg}
}

// CalculatePayout resolves the rate card for (marketplace, category, date,
// price), computes the deduction breakdown and compares the expected payout
// with the actual settlement amount. When no card resolves, the payout equals
// the price with every deduction zero and rate_card_found=false; that is the
// deliberate fallback, not an error.
func (f *PayoutFlowImpl) CalculatePayout(ctx context.Context, req *dto.CalculatePayoutRequest) (*dto.CalculatePayoutResponse, error) {
	if req.MRP <= 0 {
		return nil, NewBusinessError("PAYOUT_PRICE_INVALID", "mrp must be greater than zero", ErrPriceNotPositive)
	}
	date, err := utils.ParseDateOnly(req.Date)
	if err != nil {
		return nil, NewBusinessError("PAYOUT_DATE_INVALID", "date must be a YYYY-MM-DD date", err)
	}

	card, err := f.resolveRateCard(ctx, req.Marketplace, req.Category, date, req.MRP)
	if err != nil {
		return nil, NewBusinessError("PAYOUT_RESOLVE_FAILED", "Failed to resolve rate card", err)
	}

	breakdown, expectedPayout, found, err := ComputePayout(card, req.MRP, f.cfg.IncludeTCS)
	if err != nil {
		switch {
		case err == ErrNoMatchingSlab:
			return nil, NewBusinessError("PAYOUT_NO_MATCHING_SLAB", "No slab matches the given price", err)
		case err == ErrPriceOutOfRange:
			return nil, NewBusinessError("PAYOUT_PRICE_OUT_OF_RANGE", "Price is outside the rate card's applicable range", err)
		default:
			return nil, NewBusinessError("PAYOUT_CALCULATION_FAILED", "Failed to calculate payout", err)
		}
	}

	actual := 0.0
	if req.ActualSettlementAmount != nil {
		actual = *req.ActualSettlementAmount
	}
	delta := decimal.NewFromFloat(expectedPayout).Sub(decimal.NewFromFloat(actual))
	mismatch := delta.Abs().GreaterThan(decimal.NewFromFloat(utils.MismatchThreshold))

	payoutCalculationsTotal.Inc()
	if mismatch {
		payoutMismatchesTotal.Inc()
	}

	res := &dto.CalculatePayoutResponse{
		Message:              "Payout calculated",
		OrderID:              req.OrderID,
		ExpectedPayout:       expectedPayout,
		Delta:                roundedFloat(delta),
		MismatchFlag:         mismatch,
		CalculationBreakdown: *breakdown,
		RateCardFound:        found,
	}
	if card != nil {
		id := card.UUID.String()
		res.RateCardID = &id
	}
	return res, nil
}

// resolveRateCard finds the single applicable card: key match, validity window
// containing the date, applicability bounds containing the price. Cards for
// one key should not overlap; when more than one candidate remains anyway, the
// latest effective_from wins as the most specific match. Zero candidates
// resolves to nil, not an error.
func (f *PayoutFlowImpl) resolveRateCard(ctx context.Context, platformID, categoryID string, date time.Time, price float64) (*models.RateCard, error) {
	candidates, err := f.rateCardRepo.EffectiveOn(ctx, platformID, categoryID, date)
	if err != nil {
		return nil, err
	}

	// Candidates arrive newest effective_from first.
	for _, c := range candidates {
		if c.ContainsPrice(price) {
			return c, nil
		}
	}
	return nil, nil
}

func roundedFloat(d decimal.Decimal) float64 {
	v, _ := d.Round(utils.MoneyScale).Float64()
	return v
}
