package repository

import (
	"testing"
	"time"

	"github.com/sellerpulse/recon-api/models"
	testhelpers "github.com/sellerpulse/recon-api/testing"
	"github.com/sellerpulse/recon-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupRepoTest provisions a throwaway database. Tests are skipped when no
// PostgreSQL instance is reachable through the TEST_DB_* variables.
func setupRepoTest(t *testing.T) (*testhelpers.TestDB, RateCardRepository) {
	t.Helper()
	testDB, err := testhelpers.SetupTestDB()
	if err != nil {
		t.Skipf("test database unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := testDB.TeardownTestDB(); err != nil {
			t.Logf("teardown: %v", err)
		}
	})
	return testDB, NewRateCardRepository(testDB.DB)
}

func TestRateCardRepository(t *testing.T) {
	testDB, repo := setupRepoTest(t)
	fixtures := testhelpers.NewTestFixtures(testDB)
	ctx := testhelpers.CreateTestContext()

	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("SaveAndFetchByUUID", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		card, err := fixtures.CreateTieredRateCard("amazon", "apparel", jan)
		require.NoError(t, err)

		got, err := repo.ByUUID(ctx, card.UUID.String())
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "amazon", got.PlatformID)
		require.Len(t, got.Slabs, 2)
		// slabs come back in position order
		assert.Equal(t, 0.0, got.Slabs[0].MinPrice)
		assert.Equal(t, 500.0, got.Slabs[1].MinPrice)
	})

	t.Run("UnknownUUIDIsNilNotError", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		got, err := repo.ByUUID(ctx, "66b2f7b2-68e3-4f38-9124-000000000000")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ByFilterOrdersNewestFirst", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		_, err := fixtures.CreateFlatRateCard("amazon", "apparel", 15, jan)
		require.NoError(t, err)
		newer, err := fixtures.CreateFlatRateCard("amazon", "apparel", 18, jan.AddDate(0, 3, 0))
		require.NoError(t, err)
		_, err = fixtures.CreateFlatRateCard("flipkart", "apparel", 12, jan)
		require.NoError(t, err)

		cards, err := repo.ByFilter(ctx, models.RateCardFilter{PlatformID: utils.ToPtr("amazon")})
		require.NoError(t, err)
		require.Len(t, cards, 2)
		assert.Equal(t, newer.UUID, cards[0].UUID)
	})

	t.Run("EffectiveOnHonorsTheWindow", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		card, err := fixtures.CreateFlatRateCard("amazon", "apparel", 15, jan)
		require.NoError(t, err)
		to := jan.AddDate(0, 6, 0)
		require.NoError(t, testDB.DB.Model(card).Update("effective_to", to).Error)

		within, err := repo.EffectiveOn(ctx, "amazon", "apparel", jan.AddDate(0, 2, 0))
		require.NoError(t, err)
		assert.Len(t, within, 1)

		// effective_to is exclusive
		onBoundary, err := repo.EffectiveOn(ctx, "amazon", "apparel", to)
		require.NoError(t, err)
		assert.Empty(t, onBoundary)

		before, err := repo.EffectiveOn(ctx, "amazon", "apparel", jan.AddDate(0, 0, -1))
		require.NoError(t, err)
		assert.Empty(t, before)
	})

	t.Run("ImportCardRejectsIdenticalOverlap", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		first, err := fixtures.CreateFlatRateCard("amazon", "apparel", 15, jan)
		require.NoError(t, err)

		clone := &models.RateCard{
			PlatformID:        first.PlatformID,
			CategoryID:        first.CategoryID,
			CommissionType:    first.CommissionType,
			CommissionPercent: first.CommissionPercent,
			GSTPercent:        first.GSTPercent,
			SettlementBasis:   first.SettlementBasis,
			TPlusDays:         first.TPlusDays,
			EffectiveFrom:     first.EffectiveFrom,
			Fees: []models.RateCardFee{
				{FeeCode: models.FeeCodeShipping, FeeType: models.FeeTypeAmount, FeeValue: 30},
			},
		}
		err = repo.ImportCard(ctx, clone)
		assert.ErrorIs(t, err, ErrDuplicateCard)

		cards, err := repo.ByKey(ctx, "amazon", "apparel")
		require.NoError(t, err)
		assert.Len(t, cards, 1)
	})

	t.Run("ImportCardInsertsDifferentStructure", func(t *testing.T) {
		require.NoError(t, testDB.ClearAllTables())

		_, err := fixtures.CreateFlatRateCard("amazon", "apparel", 15, jan)
		require.NoError(t, err)

		card := &models.RateCard{
			PlatformID:        "amazon",
			CategoryID:        "apparel",
			CommissionType:    models.CommissionTypeFlat,
			CommissionPercent: utils.ToPtr(20.0),
			GSTPercent:        18,
			SettlementBasis:   models.SettlementBasisTPlus,
			TPlusDays:         utils.ToPtr(7),
			EffectiveFrom:     jan,
		}
		require.NoError(t, repo.ImportCard(ctx, card))
		assert.NotZero(t, card.ID)

		cards, err := repo.ByKey(ctx, "amazon", "apparel")
		require.NoError(t, err)
		assert.Len(t, cards, 2)
	})
}
