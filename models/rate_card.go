package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Commission types
const (
	CommissionTypeFlat   = "flat"
	CommissionTypeTiered = "tiered"
)

// Settlement bases
const (
	SettlementBasisTPlus    = "t_plus"
	SettlementBasisWeekly   = "weekly"
	SettlementBasisBiWeekly = "bi_weekly"
	SettlementBasisMonthly  = "monthly"
)

// Bi-weekly occurrence selectors
const (
	BiWeeklyFirst  = "first"
	BiWeeklySecond = "second"
)

// MonthlyDayEOM selects the last calendar day of the month for monthly settlement.
const MonthlyDayEOM = "eom"

// RateCard represents a versioned pricing contract for one (platform, category)
// pair over a date range. Cards are immutable once persisted; a change is made
// by creating a new card with a later effective_from.
type RateCard struct {
	ID   uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UUID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null;default:gen_random_uuid()" json:"uuid"`

	// Contract key
	PlatformID string `gorm:"type:varchar(64);not null;index:idx_rate_cards_key" json:"platform_id"`
	CategoryID string `gorm:"type:varchar(64);not null;index:idx_rate_cards_key" json:"category_id"`

	// Commission configuration
	CommissionType    string   `gorm:"type:varchar(10);not null" json:"commission_type"` // flat | tiered
	CommissionPercent *float64 `gorm:"type:decimal(5,2)" json:"commission_percent"`      // required for flat, unused for tiered

	// Tax rates
	GSTPercent float64 `gorm:"type:decimal(5,2);not null;default:0" json:"gst_percent"`
	TCSPercent float64 `gorm:"type:decimal(5,2);not null;default:0" json:"tcs_percent"`

	// Settlement configuration
	SettlementBasis string  `gorm:"type:varchar(10);not null" json:"settlement_basis"` // t_plus | weekly | bi_weekly | monthly
	TPlusDays       *int    `json:"t_plus_days,omitempty"`
	WeeklyWeekday   *int    `json:"weekly_weekday,omitempty"` // 0=Sunday .. 6=Saturday
	BiWeeklyWeekday *int    `json:"bi_weekly_weekday,omitempty"`
	BiWeeklyWhich   *string `gorm:"type:varchar(6)" json:"bi_weekly_which,omitempty"` // first | second
	MonthlyDay      *string `gorm:"type:varchar(3)" json:"monthly_day,omitempty"`     // "1".."31" | "eom"
	GraceDays       int     `gorm:"not null;default:0" json:"grace_days"`

	// Validity window: [effective_from, effective_to)
	EffectiveFrom time.Time  `gorm:"type:date;not null;index" json:"effective_from"`
	EffectiveTo   *time.Time `gorm:"type:date" json:"effective_to,omitempty"`

	// Optional price-applicability bounds
	GlobalMinPrice *float64 `gorm:"type:decimal(12,2)" json:"global_min_price,omitempty"`
	GlobalMaxPrice *float64 `gorm:"type:decimal(12,2)" json:"global_max_price,omitempty"`

	Notes *string `gorm:"type:text" json:"notes,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	// Relationships
	Slabs []RateCardSlab `gorm:"foreignKey:RateCardID;constraint:OnDelete:CASCADE" json:"slabs,omitempty"`
	Fees  []RateCardFee  `gorm:"foreignKey:RateCardID;constraint:OnDelete:CASCADE" json:"fees,omitempty"`
}

// BeforeCreate ensures UUID is set
func (rc *RateCard) BeforeCreate(tx *gorm.DB) error {
	if rc.UUID == uuid.Nil {
		rc.UUID = uuid.New()
	}
	return nil
}

// TableName specifies the table name for GORM
func (RateCard) TableName() string {
	return "rate_cards"
}

// IsEffectiveOn reports whether the card's validity window contains the given
// date: effective_from <= date and (effective_to is null or date < effective_to).
func (rc *RateCard) IsEffectiveOn(date time.Time) bool {
	if date.Before(rc.EffectiveFrom) {
		return false
	}
	if rc.EffectiveTo != nil && !date.Before(*rc.EffectiveTo) {
		return false
	}
	return true
}

// OverlapsRange reports whether the card's validity window overlaps
// [from, to). Open-ended windows are treated as extending to +infinity.
func (rc *RateCard) OverlapsRange(from time.Time, to *time.Time) bool {
	return RangesOverlap(rc.EffectiveFrom, rc.EffectiveTo, from, to)
}

// RangesOverlap reports whether [f1, t1) and [f2, t2) overlap, where a nil end
// means the range is open-ended.
func RangesOverlap(f1 time.Time, t1 *time.Time, f2 time.Time, t2 *time.Time) bool {
	if t2 != nil && f1.After(*t2) {
		return false
	}
	if t1 != nil && f2.After(*t1) {
		return false
	}
	return true
}

// ContainsPrice reports whether the given price falls inside the card's
// applicability bounds. Explicit global bounds win; for tiered cards without
// them, the union of slab ranges is used. Flat cards without bounds accept
// every price.
func (rc *RateCard) ContainsPrice(price float64) bool {
	if rc.GlobalMinPrice != nil && price < *rc.GlobalMinPrice {
		return false
	}
	if rc.GlobalMaxPrice != nil && price > *rc.GlobalMaxPrice {
		return false
	}
	if rc.GlobalMinPrice != nil || rc.GlobalMaxPrice != nil {
		return true
	}
	if rc.CommissionType == CommissionTypeTiered && len(rc.Slabs) > 0 {
		min, max := rc.slabRangeUnion()
		if price < min {
			return false
		}
		if max != nil && price >= *max {
			return false
		}
	}
	return true
}

// slabRangeUnion returns the lowest min_price and the highest max_price across
// slabs; a nil max means some slab is open-ended.
func (rc *RateCard) slabRangeUnion() (float64, *float64) {
	min := rc.Slabs[0].MinPrice
	var max *float64
	open := false
	for i := range rc.Slabs {
		s := &rc.Slabs[i]
		if s.MinPrice < min {
			min = s.MinPrice
		}
		if s.MaxPrice == nil {
			open = true
			continue
		}
		if max == nil || *s.MaxPrice > *max {
			max = s.MaxPrice
		}
	}
	if open {
		return min, nil
	}
	return min, max
}

// SortedSlabs returns the card's slabs ordered ascending by min_price.
func (rc *RateCard) SortedSlabs() []RateCardSlab {
	slabs := make([]RateCardSlab, len(rc.Slabs))
	copy(slabs, rc.Slabs)
	sort.SliceStable(slabs, func(i, j int) bool {
		return slabs[i].MinPrice < slabs[j].MinPrice
	})
	return slabs
}

// SameDateRange reports whether both cards cover the identical
// [effective_from, effective_to) window.
func (rc *RateCard) SameDateRange(other *RateCard) bool {
	if !rc.EffectiveFrom.Equal(other.EffectiveFrom) {
		return false
	}
	if (rc.EffectiveTo == nil) != (other.EffectiveTo == nil) {
		return false
	}
	if rc.EffectiveTo != nil && !rc.EffectiveTo.Equal(*other.EffectiveTo) {
		return false
	}
	return true
}

// SameStructure reports whether both cards carry an identical commission
// structure (same type; same flat percent, or same sorted slab list) and an
// identical fee set (order-independent comparison of (code, type, value)).
func (rc *RateCard) SameStructure(other *RateCard) bool {
	if rc.CommissionType != other.CommissionType {
		return false
	}
	switch rc.CommissionType {
	case CommissionTypeFlat:
		if (rc.CommissionPercent == nil) != (other.CommissionPercent == nil) {
			return false
		}
		if rc.CommissionPercent != nil && *rc.CommissionPercent != *other.CommissionPercent {
			return false
		}
	case CommissionTypeTiered:
		a, b := rc.SortedSlabs(), other.SortedSlabs()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].SameBand(&b[i]) {
				return false
			}
		}
	}
	return sameFeeSet(rc.Fees, other.Fees)
}

func sameFeeSet(a, b []RateCardFee) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[feeKey]int, len(a))
	for i := range a {
		seen[a[i].key()]++
	}
	for i := range b {
		k := b[i].key()
		seen[k]--
		if seen[k] < 0 {
			return false
		}
	}
	return true
}

// RateCardFilter represents filter criteria for rate card queries
type RateCardFilter struct {
	ID         *uint      `json:"id,omitempty"`
	UUID       *string    `json:"uuid,omitempty"`
	PlatformID *string    `json:"platform_id,omitempty"`
	CategoryID *string    `json:"category_id,omitempty"`
	ActiveOn   *time.Time `json:"active_on,omitempty"`
}
