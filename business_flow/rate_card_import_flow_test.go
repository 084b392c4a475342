package businessflow

import (
	"context"
	"errors"
	"testing"

	"github.com/sellerpulse/recon-api/app/dto"
	"github.com/sellerpulse/recon-api/models"
	"github.com/sellerpulse/recon-api/repository"
	"github.com/sellerpulse/recon-api/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const importCSVHeader = "platform_id,category_id,commission_type,commission_percent,gst_percent,settlement_basis,t_plus_days,effective_from"

func importRow(platform, category, percent, from string) string {
	return platform + "," + category + ",flat," + percent + ",18,t_plus,7," + from
}

func TestParseImportFile(t *testing.T) {
	t.Run("ClassifiesEveryRowInFileOrder", func(t *testing.T) {
		repo := newStubRateCardRepo()
		seedFlatCard(t, repo, nil) // amazon/apparel, 15%, effective 2025-01-01
		flow := NewRateCardImportFlow(repo)

		file := importCSVHeader + "\n" +
			importRow("flipkart", "books", "12", "2025-01-01") + "\n" + // valid
			importRow("amazon", "apparel", "20", "2025-01-01") + "\n" + // similar
			importRow("amazon", "apparel", "15", "2025-01-01") + "\n" + // duplicate
			importRow("", "toys", "12", "2025-01-01") + "\n" // error

		res, err := flow.ParseImportFile(context.Background(), "cards.csv", []byte(file))
		require.NoError(t, err)

		require.Len(t, res.Rows, 4)
		assert.Equal(t, dto.RowStatusValid, res.Rows[0].Status)
		assert.Equal(t, dto.RowStatusSimilar, res.Rows[1].Status)
		assert.Equal(t, dto.RowStatusDuplicate, res.Rows[2].Status)
		assert.Equal(t, dto.RowStatusError, res.Rows[3].Status)

		assert.Equal(t, 1, res.Rows[0].Row)
		assert.Equal(t, 4, res.Rows[3].Row)
		assert.Contains(t, res.Rows[3].Message, "platform_id is required")

		assert.Equal(t, dto.ParseSummary{Total: 4, Valid: 1, Similar: 1, Duplicate: 1, Error: 1}, res.Summary)
	})

	t.Run("ParsingNeverWritesAnything", func(t *testing.T) {
		repo := newStubRateCardRepo()
		flow := NewRateCardImportFlow(repo)

		file := importCSVHeader + "\n" + importRow("flipkart", "books", "12", "2025-01-01")
		_, err := flow.ParseImportFile(context.Background(), "cards.csv", []byte(file))
		require.NoError(t, err)

		cards, err := repo.ByFilter(context.Background(), models.RateCardFilter{})
		require.NoError(t, err)
		assert.Empty(t, cards)
	})

	t.Run("EmptyFile", func(t *testing.T) {
		flow := NewRateCardImportFlow(newStubRateCardRepo())
		_, err := flow.ParseImportFile(context.Background(), "cards.csv", []byte(importCSVHeader+"\n"))
		var bizErr *BusinessError
		require.ErrorAs(t, err, &bizErr)
		assert.Equal(t, "IMPORT_FILE_EMPTY", bizErr.Code)
	})

	t.Run("RowWithoutSettlementBasisIsAnErrorRow", func(t *testing.T) {
		flow := NewRateCardImportFlow(newStubRateCardRepo())

		file := "platform_id,category_id,commission_type,commission_percent,gst_percent,effective_from\n" +
			"amazon,apparel,flat,15,18,2025-01-01\n"
		res, err := flow.ParseImportFile(context.Background(), "cards.csv", []byte(file))
		require.NoError(t, err)
		require.Len(t, res.Rows, 1)
		assert.Equal(t, dto.RowStatusError, res.Rows[0].Status)
		assert.Contains(t, res.Rows[0].Message, "settlement_basis")
		assert.Equal(t, 1, res.Summary.Error)
	})

	t.Run("SlabStructureFailureIsAnErrorRow", func(t *testing.T) {
		flow := NewRateCardImportFlow(newStubRateCardRepo())

		file := "platform_id,category_id,commission_type,gst_percent,settlement_basis,t_plus_days,effective_from,slab1_min_price,slab1_max_price,slab1_commission_percent,slab2_min_price,slab2_commission_percent\n" +
			"amazon,apparel,tiered,18,t_plus,7,2025-01-01,0,600,10,500,15\n"
		res, err := flow.ParseImportFile(context.Background(), "cards.csv", []byte(file))
		require.NoError(t, err)
		require.Len(t, res.Rows, 1)
		assert.Equal(t, dto.RowStatusError, res.Rows[0].Status)
		assert.Contains(t, res.Rows[0].Message, "overlaps")
	})
}

func importDraft(platform, category string, percent float64, from string) dto.DraftRateCard {
	return dto.DraftRateCard{
		PlatformID:        platform,
		CategoryID:        category,
		CommissionType:    models.CommissionTypeFlat,
		CommissionPercent: utils.ToPtr(percent),
		GSTPercent:        18,
		SettlementBasis:   models.SettlementBasisTPlus,
		TPlusDays:         utils.ToPtr(7),
		EffectiveFrom:     from,
	}
}

func TestImportRateCards(t *testing.T) {
	t.Run("InsertsValidRowsAndSkipsTheRest", func(t *testing.T) {
		repo := newStubRateCardRepo()
		seedFlatCard(t, repo, nil)
		flow := NewRateCardImportFlow(repo)

		req := &dto.ImportRateCardsRequest{Rows: []dto.DraftRateCard{
			importDraft("flipkart", "books", 12, "2025-01-01"),
			importDraft("amazon", "apparel", 20, "2025-01-01"), // similar, not opted in
			importDraft("amazon", "apparel", 15, "2025-01-01"), // duplicate
		}}
		res, err := flow.ImportRateCards(context.Background(), req)
		require.NoError(t, err)

		require.Len(t, res.Results, 3)
		assert.Equal(t, dto.RowStatusImported, res.Results[0].Status)
		require.NotNil(t, res.Results[0].ID)
		assert.Equal(t, dto.RowStatusSkipped, res.Results[1].Status)
		assert.Contains(t, res.Results[1].Message, "include_similar")
		assert.Equal(t, dto.RowStatusSkipped, res.Results[2].Status)

		assert.Equal(t, dto.ImportSummary{Inserted: 1, Skipped: 2}, res.Summary)

		stored, err := repo.ByUUID(context.Background(), *res.Results[0].ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, "flipkart", stored.PlatformID)
	})

	t.Run("IncludeSimilarOptsOverlappingRowsIn", func(t *testing.T) {
		repo := newStubRateCardRepo()
		seedFlatCard(t, repo, nil)
		flow := NewRateCardImportFlow(repo)

		req := &dto.ImportRateCardsRequest{
			Rows:           []dto.DraftRateCard{importDraft("amazon", "apparel", 20, "2025-01-01")},
			IncludeSimilar: true,
		}
		res, err := flow.ImportRateCards(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, dto.RowStatusImported, res.Results[0].Status)
		assert.Equal(t, 1, res.Summary.Inserted)
	})

	t.Run("DuplicateRowWithinTheBatchIsSkipped", func(t *testing.T) {
		repo := newStubRateCardRepo()
		flow := NewRateCardImportFlow(repo)

		req := &dto.ImportRateCardsRequest{Rows: []dto.DraftRateCard{
			importDraft("flipkart", "books", 12, "2025-01-01"),
			importDraft("flipkart", "books", 12, "2025-01-01"),
		}}
		res, err := flow.ImportRateCards(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, dto.RowStatusImported, res.Results[0].Status)
		assert.Equal(t, dto.RowStatusSkipped, res.Results[1].Status)
		assert.Equal(t, dto.ImportSummary{Inserted: 1, Skipped: 1}, res.Summary)
	})

	t.Run("ConcurrentDuplicateInsertSkipsOnlyThatRow", func(t *testing.T) {
		repo := newStubRateCardRepo()
		repo.importErr = repository.ErrDuplicateCard
		flow := NewRateCardImportFlow(repo)

		req := &dto.ImportRateCardsRequest{Rows: []dto.DraftRateCard{
			importDraft("flipkart", "books", 12, "2025-01-01"),
		}}
		res, err := flow.ImportRateCards(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, dto.RowStatusSkipped, res.Results[0].Status)
		assert.Contains(t, res.Results[0].Message, "concurrently")
	})

	t.Run("InsertFailureDoesNotAbortTheBatch", func(t *testing.T) {
		repo := newStubRateCardRepo()
		repo.importErr = errors.New("connection reset")
		flow := NewRateCardImportFlow(repo)

		req := &dto.ImportRateCardsRequest{Rows: []dto.DraftRateCard{
			importDraft("flipkart", "books", 12, "2025-01-01"),
			importDraft("myntra", "shoes", 14, "2025-01-01"),
		}}
		res, err := flow.ImportRateCards(context.Background(), req)
		require.NoError(t, err)
		require.Len(t, res.Results, 2)
		assert.Equal(t, dto.ImportSummary{Inserted: 0, Skipped: 2}, res.Summary)
		assert.Contains(t, res.Results[0].Message, "insert failed")
	})
}
