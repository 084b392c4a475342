package dto

// CalculatePayoutRequest is the body of the payout calculation endpoint.
// Date is the transaction date (YYYY-MM-DD) the rate card is resolved against.
type CalculatePayoutRequest struct {
	MRP                    float64  `json:"mrp" validate:"required,gt=0"`
	OrderID                string   `json:"order_id" validate:"omitempty,max=64"`
	Marketplace            string   `json:"marketplace" validate:"required,max=64"`
	Category               string   `json:"category" validate:"required,max=64"`
	Date                   string   `json:"date" validate:"required,datetime=2006-01-02"`
	ActualSettlementAmount *float64 `json:"actual_settlement_amount" validate:"required"`
}

// FeeAmountDTO is one resolved fee line in a payout breakdown.
type FeeAmountDTO struct {
	FeeCode string  `json:"fee_code"`
	FeeType string  `json:"fee_type"`
	Amount  float64 `json:"amount"`
}

// CalculationBreakdown itemises every deduction behind an expected payout.
// All amounts are rounded to two decimal places.
type CalculationBreakdown struct {
	Commission      float64        `json:"commission"`
	Fees            []FeeAmountDTO `json:"fees"`
	TotalFees       float64        `json:"total_fees"`
	GST             float64        `json:"gst"`
	TCS             float64        `json:"tcs"`
	TotalDeductions float64        `json:"total_deductions"`
}

// CalculatePayoutResponse reports the expected payout against the actual
// settlement amount. RateCardFound is false when no card matched, in which
// case the payout equals the price and every deduction is zero.
type CalculatePayoutResponse struct {
	Message              string               `json:"message"`
	OrderID              string               `json:"order_id,omitempty"`
	ExpectedPayout       float64              `json:"expected_payout"`
	Delta                float64              `json:"delta"`
	MismatchFlag         bool                 `json:"mismatch_flag"`
	CalculationBreakdown CalculationBreakdown `json:"calculation_breakdown"`
	RateCardFound        bool                 `json:"rate_card_found"`
	RateCardID           *string              `json:"rate_card_id,omitempty"`
}
