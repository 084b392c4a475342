package dto

// SlabInput is one tiered-commission price band as submitted by a client.
type SlabInput struct {
	MinPrice          float64  `json:"min_price"`
	MaxPrice          *float64 `json:"max_price"`
	CommissionPercent float64  `json:"commission_percent"`
}

// FeeInput is one fee rule as submitted by a client.
type FeeInput struct {
	FeeCode  string  `json:"fee_code"`
	FeeType  string  `json:"fee_type"`
	FeeValue float64 `json:"fee_value"`
}

// DraftRateCard is the wire shape of a rate card before persistence: the body
// of the create endpoint, the payload attached to parsed import rows, and the
// row shape of the import endpoint. Dates are YYYY-MM-DD strings. Field-level
// validation is performed by the engine, which collects every violation
// instead of failing fast.
type DraftRateCard struct {
	PlatformID        string   `json:"platform_id"`
	CategoryID        string   `json:"category_id"`
	CommissionType    string   `json:"commission_type"`
	CommissionPercent *float64 `json:"commission_percent,omitempty"`

	Slabs []SlabInput `json:"slabs,omitempty"`
	Fees  []FeeInput  `json:"fees,omitempty"`

	GSTPercent float64 `json:"gst_percent"`
	TCSPercent float64 `json:"tcs_percent"`

	SettlementBasis string  `json:"settlement_basis"`
	TPlusDays       *int    `json:"t_plus_days,omitempty"`
	WeeklyWeekday   *int    `json:"weekly_weekday,omitempty"`
	BiWeeklyWeekday *int    `json:"bi_weekly_weekday,omitempty"`
	BiWeeklyWhich   *string `json:"bi_weekly_which,omitempty"`
	MonthlyDay      *string `json:"monthly_day,omitempty"`
	GraceDays       int     `json:"grace_days"`

	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`

	GlobalMinPrice *float64 `json:"global_min_price,omitempty"`
	GlobalMaxPrice *float64 `json:"global_max_price,omitempty"`

	Notes *string `json:"notes,omitempty"`
}

// RateCardDTO is the persisted-card shape returned by the API.
type RateCardDTO struct {
	ID                uint     `json:"id"`
	UUID              string   `json:"uuid"`
	PlatformID        string   `json:"platform_id"`
	CategoryID        string   `json:"category_id"`
	CommissionType    string   `json:"commission_type"`
	CommissionPercent *float64 `json:"commission_percent,omitempty"`

	Slabs []SlabInput `json:"slabs,omitempty"`
	Fees  []FeeInput  `json:"fees,omitempty"`

	GSTPercent float64 `json:"gst_percent"`
	TCSPercent float64 `json:"tcs_percent"`

	SettlementBasis string  `json:"settlement_basis"`
	TPlusDays       *int    `json:"t_plus_days,omitempty"`
	WeeklyWeekday   *int    `json:"weekly_weekday,omitempty"`
	BiWeeklyWeekday *int    `json:"bi_weekly_weekday,omitempty"`
	BiWeeklyWhich   *string `json:"bi_weekly_which,omitempty"`
	MonthlyDay      *string `json:"monthly_day,omitempty"`
	GraceDays       int     `json:"grace_days"`

	EffectiveFrom string  `json:"effective_from"`
	EffectiveTo   *string `json:"effective_to,omitempty"`

	GlobalMinPrice *float64 `json:"global_min_price,omitempty"`
	GlobalMaxPrice *float64 `json:"global_max_price,omitempty"`

	Notes *string `json:"notes,omitempty"`

	CreatedAt string `json:"created_at"`
}

// CreateRateCardRequest is the body of the single-card create endpoint.
type CreateRateCardRequest struct {
	DraftRateCard
}

// CreateRateCardResponse reports the created card. Warnings carry non-blocking
// findings, such as an overlapping card with a differing structure.
type CreateRateCardResponse struct {
	Message  string       `json:"message"`
	Card     *RateCardDTO `json:"card"`
	Warnings []string     `json:"warnings,omitempty"`
}

// ListRateCardsResponse returns cards matching the list filters.
type ListRateCardsResponse struct {
	Message string        `json:"message"`
	Items   []RateCardDTO `json:"items"`
}

// GetRateCardResponse returns one card.
type GetRateCardResponse struct {
	Message string       `json:"message"`
	Card    *RateCardDTO `json:"card"`
}

// SettlementDateResponse returns the expected settlement date for a dispatch
// date under one card's settlement basis.
type SettlementDateResponse struct {
	Message        string `json:"message"`
	RateCardUUID   string `json:"rate_card_uuid"`
	DispatchDate   string `json:"dispatch_date"`
	SettlementDate string `json:"settlement_date"`
	GraceDays      int    `json:"grace_days"`
}
