package models

import (
	"testing"
	"time"

	"github.com/sellerpulse/recon-api/utils"
	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestIsEffectiveOn(t *testing.T) {
	from := day(2025, time.January, 1)
	to := day(2025, time.June, 1)
	card := &RateCard{EffectiveFrom: from, EffectiveTo: &to}

	assert.False(t, card.IsEffectiveOn(day(2024, time.December, 31)))
	assert.True(t, card.IsEffectiveOn(from))
	assert.True(t, card.IsEffectiveOn(day(2025, time.May, 31)))
	// effective_to is exclusive.
	assert.False(t, card.IsEffectiveOn(to))

	t.Run("OpenEnded", func(t *testing.T) {
		card := &RateCard{EffectiveFrom: from}
		assert.True(t, card.IsEffectiveOn(day(2030, time.January, 1)))
	})
}

func TestRangesOverlap(t *testing.T) {
	jan := day(2025, time.January, 1)
	mar := day(2025, time.March, 1)
	jun := day(2025, time.June, 1)
	sep := day(2025, time.September, 1)

	t.Run("Disjoint", func(t *testing.T) {
		assert.False(t, RangesOverlap(jan, &mar, jun, &sep))
		assert.False(t, RangesOverlap(jun, &sep, jan, &mar))
	})

	t.Run("Nested", func(t *testing.T) {
		assert.True(t, RangesOverlap(jan, &sep, mar, &jun))
	})

	t.Run("Partial", func(t *testing.T) {
		assert.True(t, RangesOverlap(jan, &jun, mar, &sep))
	})

	t.Run("OpenEndedReachesEverythingLater", func(t *testing.T) {
		assert.True(t, RangesOverlap(jan, nil, jun, &sep))
		assert.True(t, RangesOverlap(jan, nil, jun, nil))
	})

	t.Run("OpenEndedStillMissesEarlierWindows", func(t *testing.T) {
		assert.False(t, RangesOverlap(jun, nil, jan, &mar))
	})
}

func TestContainsPrice(t *testing.T) {
	t.Run("FlatCardWithoutBoundsAcceptsEverything", func(t *testing.T) {
		card := &RateCard{CommissionType: CommissionTypeFlat}
		assert.True(t, card.ContainsPrice(0.01))
		assert.True(t, card.ContainsPrice(1e9))
	})

	t.Run("ExplicitBoundsAreInclusive", func(t *testing.T) {
		card := &RateCard{
			GlobalMinPrice: utils.ToPtr(100.0),
			GlobalMaxPrice: utils.ToPtr(500.0),
		}
		assert.False(t, card.ContainsPrice(99.99))
		assert.True(t, card.ContainsPrice(100))
		assert.True(t, card.ContainsPrice(500))
		assert.False(t, card.ContainsPrice(500.01))
	})

	t.Run("ExplicitBoundsWinOverSlabUnion", func(t *testing.T) {
		card := &RateCard{
			CommissionType: CommissionTypeTiered,
			GlobalMaxPrice: utils.ToPtr(2000.0),
			Slabs: []RateCardSlab{
				{MinPrice: 0, MaxPrice: utils.ToPtr(500.0), CommissionPercent: 10},
			},
		}
		assert.True(t, card.ContainsPrice(1500))
	})

	t.Run("TieredCardWithoutBoundsUsesSlabUnion", func(t *testing.T) {
		card := &RateCard{
			CommissionType: CommissionTypeTiered,
			Slabs: []RateCardSlab{
				{MinPrice: 100, MaxPrice: utils.ToPtr(500.0), CommissionPercent: 10},
				{MinPrice: 500, MaxPrice: utils.ToPtr(1000.0), CommissionPercent: 15},
			},
		}
		assert.False(t, card.ContainsPrice(50))
		assert.True(t, card.ContainsPrice(100))
		// union max is exclusive, matching slab band semantics
		assert.False(t, card.ContainsPrice(1000))
	})

	t.Run("OpenEndedSlabLiftsTheUnionCap", func(t *testing.T) {
		card := &RateCard{
			CommissionType: CommissionTypeTiered,
			Slabs: []RateCardSlab{
				{MinPrice: 0, MaxPrice: utils.ToPtr(500.0), CommissionPercent: 10},
				{MinPrice: 500, CommissionPercent: 15},
			},
		}
		assert.True(t, card.ContainsPrice(1e9))
	})
}

func TestSlabContains(t *testing.T) {
	bounded := RateCardSlab{MinPrice: 100, MaxPrice: utils.ToPtr(500.0)}
	assert.False(t, bounded.Contains(99.99))
	assert.True(t, bounded.Contains(100))
	assert.True(t, bounded.Contains(499.99))
	// max_price is exclusive so adjacent bands never double-match.
	assert.False(t, bounded.Contains(500))

	open := RateCardSlab{MinPrice: 500}
	assert.True(t, open.Contains(500))
	assert.True(t, open.Contains(1e12))
}

func TestSortedSlabs(t *testing.T) {
	card := &RateCard{Slabs: []RateCardSlab{
		{MinPrice: 500, CommissionPercent: 15},
		{MinPrice: 0, MaxPrice: utils.ToPtr(500.0), CommissionPercent: 10},
	}}

	sorted := card.SortedSlabs()
	assert.Equal(t, 0.0, sorted[0].MinPrice)
	assert.Equal(t, 500.0, sorted[1].MinPrice)
	// the card's own slice is left alone
	assert.Equal(t, 500.0, card.Slabs[0].MinPrice)
}

func TestSameDateRange(t *testing.T) {
	from := day(2025, time.January, 1)
	to := day(2025, time.June, 1)

	a := &RateCard{EffectiveFrom: from, EffectiveTo: &to}
	b := &RateCard{EffectiveFrom: from, EffectiveTo: &to}
	assert.True(t, a.SameDateRange(b))

	open := &RateCard{EffectiveFrom: from}
	assert.False(t, a.SameDateRange(open))

	later := day(2025, time.July, 1)
	c := &RateCard{EffectiveFrom: from, EffectiveTo: &later}
	assert.False(t, a.SameDateRange(c))
}

func TestSameStructure(t *testing.T) {
	t.Run("FlatPercentMustMatch", func(t *testing.T) {
		a := &RateCard{CommissionType: CommissionTypeFlat, CommissionPercent: utils.ToPtr(15.0)}
		b := &RateCard{CommissionType: CommissionTypeFlat, CommissionPercent: utils.ToPtr(15.0)}
		assert.True(t, a.SameStructure(b))

		b.CommissionPercent = utils.ToPtr(16.0)
		assert.False(t, a.SameStructure(b))
	})

	t.Run("TypeMismatchNeverMatches", func(t *testing.T) {
		a := &RateCard{CommissionType: CommissionTypeFlat, CommissionPercent: utils.ToPtr(15.0)}
		b := &RateCard{CommissionType: CommissionTypeTiered}
		assert.False(t, a.SameStructure(b))
	})

	t.Run("SlabOrderDoesNotMatter", func(t *testing.T) {
		a := &RateCard{CommissionType: CommissionTypeTiered, Slabs: []RateCardSlab{
			{MinPrice: 0, MaxPrice: utils.ToPtr(500.0), CommissionPercent: 10},
			{MinPrice: 500, CommissionPercent: 15},
		}}
		b := &RateCard{CommissionType: CommissionTypeTiered, Slabs: []RateCardSlab{
			{MinPrice: 500, CommissionPercent: 15},
			{MinPrice: 0, MaxPrice: utils.ToPtr(500.0), CommissionPercent: 10},
		}}
		assert.True(t, a.SameStructure(b))

		b.Slabs[0].CommissionPercent = 18
		assert.False(t, a.SameStructure(b))
	})

	t.Run("FeeOrderDoesNotMatter", func(t *testing.T) {
		a := &RateCard{CommissionType: CommissionTypeFlat, CommissionPercent: utils.ToPtr(15.0), Fees: []RateCardFee{
			{FeeCode: FeeCodeShipping, FeeType: FeeTypeAmount, FeeValue: 30},
			{FeeCode: FeeCodeCollection, FeeType: FeeTypePercent, FeeValue: 2},
		}}
		b := &RateCard{CommissionType: CommissionTypeFlat, CommissionPercent: utils.ToPtr(15.0), Fees: []RateCardFee{
			{FeeCode: FeeCodeCollection, FeeType: FeeTypePercent, FeeValue: 2},
			{FeeCode: FeeCodeShipping, FeeType: FeeTypeAmount, FeeValue: 30},
		}}
		assert.True(t, a.SameStructure(b))
	})

	t.Run("FeeValueDifferenceBreaksTheMatch", func(t *testing.T) {
		a := &RateCard{CommissionType: CommissionTypeFlat, CommissionPercent: utils.ToPtr(15.0), Fees: []RateCardFee{
			{FeeCode: FeeCodeShipping, FeeType: FeeTypeAmount, FeeValue: 30},
		}}
		b := &RateCard{CommissionType: CommissionTypeFlat, CommissionPercent: utils.ToPtr(15.0), Fees: []RateCardFee{
			{FeeCode: FeeCodeShipping, FeeType: FeeTypeAmount, FeeValue: 35},
		}}
		assert.False(t, a.SameStructure(b))
	})

	t.Run("DuplicatedFeeRulesAreCounted", func(t *testing.T) {
		a := &RateCard{CommissionType: CommissionTypeFlat, CommissionPercent: utils.ToPtr(15.0), Fees: []RateCardFee{
			{FeeCode: FeeCodeShipping, FeeType: FeeTypeAmount, FeeValue: 30},
			{FeeCode: FeeCodeShipping, FeeType: FeeTypeAmount, FeeValue: 30},
		}}
		b := &RateCard{CommissionType: CommissionTypeFlat, CommissionPercent: utils.ToPtr(15.0), Fees: []RateCardFee{
			{FeeCode: FeeCodeShipping, FeeType: FeeTypeAmount, FeeValue: 30},
			{FeeCode: FeeCodeCollection, FeeType: FeeTypePercent, FeeValue: 2},
		}}
		assert.False(t, a.SameStructure(b))
	})
}
