package testing

import (
	"fmt"
	"time"

	"github.com/sellerpulse/recon-api/models"
	"github.com/sellerpulse/recon-api/utils"
)

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateFlatRateCard persists a flat-commission card for the given key,
// effective from the given date with an open-ended window.
func (tf *TestFixtures) CreateFlatRateCard(platformID, categoryID string, commissionPercent float64, effectiveFrom time.Time) (*models.RateCard, error) {
	card := &models.RateCard{
		PlatformID:        platformID,
		CategoryID:        categoryID,
		CommissionType:    models.CommissionTypeFlat,
		CommissionPercent: utils.ToPtr(commissionPercent),
		GSTPercent:        18,
		SettlementBasis:   models.SettlementBasisTPlus,
		TPlusDays:         utils.ToPtr(7),
		EffectiveFrom:     effectiveFrom,
		Fees: []models.RateCardFee{
			{FeeCode: models.FeeCodeShipping, FeeType: models.FeeTypeAmount, FeeValue: 30},
		},
	}

	if err := tf.DB.DB.Create(card).Error; err != nil {
		return nil, fmt.Errorf("failed to create rate card: %w", err)
	}
	return card, nil
}

// CreateTieredRateCard persists a tiered card with two adjacent bands, the
// second open-ended.
func (tf *TestFixtures) CreateTieredRateCard(platformID, categoryID string, effectiveFrom time.Time) (*models.RateCard, error) {
	card := &models.RateCard{
		PlatformID:      platformID,
		CategoryID:      categoryID,
		CommissionType:  models.CommissionTypeTiered,
		GSTPercent:      18,
		SettlementBasis: models.SettlementBasisWeekly,
		WeeklyWeekday:   utils.ToPtr(5),
		EffectiveFrom:   effectiveFrom,
		Slabs: []models.RateCardSlab{
			{MinPrice: 0, MaxPrice: utils.ToPtr(500.0), CommissionPercent: 10, Position: 0},
			{MinPrice: 500, CommissionPercent: 15, Position: 1},
		},
	}

	if err := tf.DB.DB.Create(card).Error; err != nil {
		return nil, fmt.Errorf("failed to create rate card: %w", err)
	}
	return card, nil
}
