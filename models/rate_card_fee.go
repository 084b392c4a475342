package models

// Fee codes supported by rate cards
const (
	FeeCodeShipping   = "shipping"
	FeeCodeRTO        = "rto"
	FeeCodePackaging  = "packaging"
	FeeCodeFixed      = "fixed"
	FeeCodeCollection = "collection"
	FeeCodeTech       = "tech"
	FeeCodeStorage    = "storage"
)

// Fee value interpretations
const (
	FeeTypePercent = "percent"
	FeeTypeAmount  = "amount"
)

// FeeCodes lists every supported fee code in a stable order. The import
// layouts and validators iterate this list.
func FeeCodes() []string {
	return []string{
		FeeCodeShipping,
		FeeCodeRTO,
		FeeCodePackaging,
		FeeCodeFixed,
		FeeCodeCollection,
		FeeCodeTech,
		FeeCodeStorage,
	}
}

// IsValidFeeCode reports whether the given code is a supported fee code.
func IsValidFeeCode(code string) bool {
	switch code {
	case FeeCodeShipping, FeeCodeRTO, FeeCodePackaging, FeeCodeFixed,
		FeeCodeCollection, FeeCodeTech, FeeCodeStorage:
		return true
	}
	return false
}

// RateCardFee is a single fee rule on a rate card. At most one rule may exist
// per (fee_code, fee_type) pair.
type RateCardFee struct {
	ID         uint `gorm:"primaryKey;autoIncrement" json:"id"`
	RateCardID uint `gorm:"not null;index:idx_rate_card_fees_rule,unique" json:"rate_card_id"`

	FeeCode  string  `gorm:"type:varchar(16);not null;index:idx_rate_card_fees_rule,unique" json:"fee_code"`
	FeeType  string  `gorm:"type:varchar(8);not null;index:idx_rate_card_fees_rule,unique" json:"fee_type"` // percent | amount
	FeeValue float64 `gorm:"type:decimal(12,2);not null" json:"fee_value"`
}

// TableName specifies the table name for GORM
func (RateCardFee) TableName() string {
	return "rate_card_fees"
}

type feeKey struct {
	code  string
	typ   string
	value float64
}

func (f *RateCardFee) key() feeKey {
	return feeKey{code: f.FeeCode, typ: f.FeeType, value: f.FeeValue}
}
