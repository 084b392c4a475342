package businessflow

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tableFromCSV(t *testing.T, csv string) *importTable {
	t.Helper()
	table, err := readImportTable("upload.csv", []byte(strings.TrimSpace(csv)))
	require.NoError(t, err)
	return table
}

func TestReadImportTable(t *testing.T) {
	t.Run("HeaderIsNormalized", func(t *testing.T) {
		table := tableFromCSV(t, `
  Platform_ID , CATEGORY_ID
amazon,apparel
`)
		require.Len(t, table.rows, 1)
		assert.Equal(t, "amazon", table.cell(table.rows[0], "platform_id"))
		assert.Equal(t, "apparel", table.cell(table.rows[0], "category_id"))
	})

	t.Run("BlankRowsAreSkipped", func(t *testing.T) {
		table := tableFromCSV(t, `
platform_id,category_id

amazon,apparel
 ,
flipkart,books
`)
		assert.Len(t, table.rows, 2)
	})

	t.Run("HeaderOnlyFileIsEmpty", func(t *testing.T) {
		_, err := readImportTable("upload.csv", []byte("platform_id,category_id\n"))
		assert.ErrorIs(t, err, ErrEmptyImportFile)
	})

	t.Run("BogusXLSXIsUnsupported", func(t *testing.T) {
		_, err := readImportTable("upload.xlsx", []byte("not a spreadsheet"))
		assert.ErrorIs(t, err, ErrUnsupportedImportFile)
	})
}

func TestParseDraftRowFlattened(t *testing.T) {
	t.Run("FullTieredRow", func(t *testing.T) {
		table := tableFromCSV(t, `
platform_id,category_id,commission_type,gst_percent,settlement_basis,weekly_weekday,effective_from,slab1_min_price,slab1_max_price,slab1_commission_percent,slab2_min_price,slab2_commission_percent,fee_shipping_type,fee_shipping_value
amazon,apparel,Tiered,18,Weekly,Friday,2025-01-01,0,500,10,500,15,amount,30
`)
		draft, issues := table.parseDraftRow(table.rows[0])
		assert.Empty(t, issues)

		assert.Equal(t, "tiered", draft.CommissionType)
		assert.Equal(t, "weekly", draft.SettlementBasis)
		require.NotNil(t, draft.WeeklyWeekday)
		assert.Equal(t, 5, *draft.WeeklyWeekday)

		require.Len(t, draft.Slabs, 2)
		assert.Equal(t, 0.0, draft.Slabs[0].MinPrice)
		require.NotNil(t, draft.Slabs[0].MaxPrice)
		assert.Equal(t, 500.0, *draft.Slabs[0].MaxPrice)
		assert.Nil(t, draft.Slabs[1].MaxPrice)
		assert.Equal(t, 15.0, draft.Slabs[1].CommissionPercent)

		require.Len(t, draft.Fees, 1)
		assert.Equal(t, "shipping", draft.Fees[0].FeeCode)
		assert.Equal(t, "amount", draft.Fees[0].FeeType)
		assert.Equal(t, 30.0, draft.Fees[0].FeeValue)
	})

	t.Run("EmptySlabTriplesAreSkipped", func(t *testing.T) {
		table := tableFromCSV(t, `
platform_id,commission_type,slab1_min_price,slab1_commission_percent,slab3_min_price,slab3_commission_percent
amazon,tiered,0,10,500,15
`)
		draft, issues := table.parseDraftRow(table.rows[0])
		assert.Empty(t, issues)
		assert.Len(t, draft.Slabs, 2)
	})

	t.Run("BadNumbersAreCollectedPerColumn", func(t *testing.T) {
		table := tableFromCSV(t, `
platform_id,commission_type,commission_percent,gst_percent,slab1_min_price,slab1_commission_percent
amazon,flat,twelve,abc,xyz,10
`)
		_, issues := table.parseDraftRow(table.rows[0])
		assert.Contains(t, issues, "commission_percent must be a number")
		assert.Contains(t, issues, "gst_percent must be a number")
		assert.Contains(t, issues, "slab1_min_price must be a number")
	})

	t.Run("FeeTypeWithoutValueIsAnIssue", func(t *testing.T) {
		table := tableFromCSV(t, `
platform_id,fee_shipping_type,fee_shipping_value
amazon,amount,
`)
		draft, issues := table.parseDraftRow(table.rows[0])
		assert.Contains(t, issues, "fee_shipping_type and fee_shipping_value must both be present")
		assert.Empty(t, draft.Fees)
	})

	t.Run("BadWeekdayName", func(t *testing.T) {
		table := tableFromCSV(t, `
platform_id,weekly_weekday
amazon,freitag
`)
		draft, issues := table.parseDraftRow(table.rows[0])
		assert.Contains(t, issues, "weekly_weekday must be a weekday number (0-6) or name")
		assert.Nil(t, draft.WeeklyWeekday)
	})
}

func TestParseDraftRowStructured(t *testing.T) {
	t.Run("JSONColumnsWinOverFlattened", func(t *testing.T) {
		table := tableFromCSV(t, `
platform_id,commission_type,slabs_json,fees_json,slab1_min_price,slab1_commission_percent
amazon,tiered,"[{""min_price"":0,""max_price"":500,""commission_percent"":10},{""min_price"":500,""commission_percent"":15}]","[{""fee_code"":""shipping"",""fee_type"":""amount"",""fee_value"":30}]",999,99
`)
		draft, issues := table.parseDraftRow(table.rows[0])
		assert.Empty(t, issues)

		// The flattened slab columns are ignored once a JSON column is present.
		require.Len(t, draft.Slabs, 2)
		assert.Equal(t, 0.0, draft.Slabs[0].MinPrice)
		require.Len(t, draft.Fees, 1)
		assert.Equal(t, "shipping", draft.Fees[0].FeeCode)
	})

	t.Run("MalformedJSONIsAnIssue", func(t *testing.T) {
		table := tableFromCSV(t, `
platform_id,slabs_json
amazon,"[{""min_price"":0"
`)
		draft, issues := table.parseDraftRow(table.rows[0])
		assert.Contains(t, issues, "slabs_json is not a valid JSON array")
		assert.Empty(t, draft.Slabs)
	})

	t.Run("EmptyJSONCellsAreFine", func(t *testing.T) {
		table := tableFromCSV(t, `
platform_id,slabs_json,fees_json
amazon,,
`)
		draft, issues := table.parseDraftRow(table.rows[0])
		assert.Empty(t, issues)
		assert.Empty(t, draft.Slabs)
		assert.Empty(t, draft.Fees)
	})
}
