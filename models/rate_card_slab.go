package models

// RateCardSlab is one price band of a tiered-commission rate card. The band
// covers [min_price, max_price); a nil max_price means the band is open-ended.
type RateCardSlab struct {
	ID         uint `gorm:"primaryKey;autoIncrement" json:"id"`
	RateCardID uint `gorm:"not null;index" json:"rate_card_id"`

	MinPrice          float64  `gorm:"type:decimal(12,2);not null" json:"min_price"`
	MaxPrice          *float64 `gorm:"type:decimal(12,2)" json:"max_price"`
	CommissionPercent float64  `gorm:"type:decimal(5,2);not null" json:"commission_percent"`

	// Position preserves the sorted order at persist time.
	Position int `gorm:"not null;default:0" json:"position"`
}

// TableName specifies the table name for GORM
func (RateCardSlab) TableName() string {
	return "rate_card_slabs"
}

// Contains reports whether the band covers the given price:
// price >= min_price and (max_price is null or price < max_price).
func (s *RateCardSlab) Contains(price float64) bool {
	if price < s.MinPrice {
		return false
	}
	return s.MaxPrice == nil || price < *s.MaxPrice
}

// SameBand reports whether two slabs describe the identical price band and rate.
func (s *RateCardSlab) SameBand(other *RateCardSlab) bool {
	if s.MinPrice != other.MinPrice {
		return false
	}
	if (s.MaxPrice == nil) != (other.MaxPrice == nil) {
		return false
	}
	if s.MaxPrice != nil && *s.MaxPrice != *other.MaxPrice {
		return false
	}
	return s.CommissionPercent == other.CommissionPercent
}
