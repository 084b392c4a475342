package businessflow

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/sellerpulse/recon-api/app/dto"
	"github.com/sellerpulse/recon-api/models"
	"github.com/sellerpulse/recon-api/utils"
	"github.com/xuri/excelize/v2"
)

// Structured-layout column names. Their presence in the header selects the
// JSON layout; the flattened fee/slab columns are then ignored entirely.
const (
	colSlabsJSON = "slabs_json"
	colFeesJSON  = "fees_json"
)

var xlsxMagic = []byte("PK\x03\x04")

// importTable is a decoded tabular upload: a normalized header index and the
// data rows in file order.
type importTable struct {
	header map[string]int
	rows   [][]string
}

// readImportTable decodes a CSV or XLSX upload. XLSX files are recognized by
// extension or by the ZIP magic; everything else is treated as CSV. The first
// non-empty row is the header.
func readImportTable(filename string, data []byte) (*importTable, error) {
	var raw [][]string
	var err error

	if strings.HasSuffix(strings.ToLower(filename), ".xlsx") || bytes.HasPrefix(data, xlsxMagic) {
		raw, err = readXLSXRows(data)
	} else {
		raw, err = readCSVRows(data)
	}
	if err != nil {
		return nil, err
	}

	var table *importTable
	for _, row := range raw {
		if isBlankRow(row) {
			continue
		}
		if table == nil {
			header := make(map[string]int, len(row))
			for i, name := range row {
				header[strings.ToLower(strings.TrimSpace(name))] = i
			}
			table = &importTable{header: header}
			continue
		}
		table.rows = append(table.rows, row)
	}

	if table == nil || len(table.rows) == 0 {
		return nil, ErrEmptyImportFile
	}
	return table, nil
}

func readCSVRows(data []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImportFile, err)
	}
	return rows, nil
}

func readXLSXRows(data []byte) ([][]string, error) {
	xl, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImportFile, err)
	}
	defer func() { _ = xl.Close() }()

	sheet := xl.GetSheetName(0)
	if sheet == "" {
		return nil, ErrEmptyImportFile
	}
	rows, err := xl.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImportFile, err)
	}
	return rows, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func (t *importTable) has(col string) bool {
	_, ok := t.header[col]
	return ok
}

func (t *importTable) cell(row []string, col string) string {
	idx, ok := t.header[col]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// structuredLayout reports whether the upload uses the JSON-array columns.
// Detection happens once per file, never per row, so the two layouts are
// never mixed.
func (t *importTable) structuredLayout() bool {
	return t.has(colSlabsJSON) || t.has(colFeesJSON)
}

// parseDraftRow converts one data row into a draft rate card, collecting every
// syntactic issue (malformed numbers, malformed JSON). Semantic validation of
// the resulting draft is BuildRateCard's job; callers combine both issue lists.
func (t *importTable) parseDraftRow(row []string) (*dto.DraftRateCard, []string) {
	var issues []string

	draft := &dto.DraftRateCard{
		PlatformID:      t.cell(row, "platform_id"),
		CategoryID:      t.cell(row, "category_id"),
		CommissionType:  strings.ToLower(t.cell(row, "commission_type")),
		SettlementBasis: strings.ToLower(t.cell(row, "settlement_basis")),
		EffectiveFrom:   t.cell(row, "effective_from"),
	}

	draft.CommissionPercent = t.optFloat(row, "commission_percent", &issues)
	draft.GSTPercent = t.floatOrZero(row, "gst_percent", &issues)
	draft.TCSPercent = t.floatOrZero(row, "tcs_percent", &issues)

	draft.TPlusDays = t.optInt(row, "t_plus_days", &issues)
	draft.WeeklyWeekday = t.optWeekday(row, "weekly_weekday", &issues)
	draft.BiWeeklyWeekday = t.optWeekday(row, "bi_weekly_weekday", &issues)
	if s := t.cell(row, "bi_weekly_which"); s != "" {
		draft.BiWeeklyWhich = utils.ToPtr(strings.ToLower(s))
	}
	if s := t.cell(row, "monthly_day"); s != "" {
		draft.MonthlyDay = utils.ToPtr(strings.ToLower(s))
	}
	draft.GraceDays = t.intOrZero(row, "grace_days", &issues)

	if s := t.cell(row, "effective_to"); s != "" {
		draft.EffectiveTo = &s
	}
	draft.GlobalMinPrice = t.optFloat(row, "global_min_price", &issues)
	draft.GlobalMaxPrice = t.optFloat(row, "global_max_price", &issues)
	if s := t.cell(row, "notes"); s != "" {
		draft.Notes = &s
	}

	if t.structuredLayout() {
		issues = append(issues, t.parseStructured(row, draft)...)
	} else {
		issues = append(issues, t.parseFlattened(row, draft)...)
	}

	return draft, issues
}

// parseStructured reads slabs and fees from the JSON-array columns.
func (t *importTable) parseStructured(row []string, draft *dto.DraftRateCard) []string {
	var issues []string

	if s := t.cell(row, colSlabsJSON); s != "" {
		var slabs []dto.SlabInput
		if err := json.Unmarshal([]byte(s), &slabs); err != nil {
			issues = append(issues, "slabs_json is not a valid JSON array")
		} else {
			draft.Slabs = slabs
		}
	}
	if s := t.cell(row, colFeesJSON); s != "" {
		var fees []dto.FeeInput
		if err := json.Unmarshal([]byte(s), &fees); err != nil {
			issues = append(issues, "fees_json is not a valid JSON array")
		} else {
			draft.Fees = fees
		}
	}
	return issues
}

// parseFlattened reads slabs from the bounded slab<N>_* column triples and
// fees from the fee_<code>_* column pairs.
func (t *importTable) parseFlattened(row []string, draft *dto.DraftRateCard) []string {
	var issues []string

	for n := 1; n <= utils.MaxFlattenedSlabs; n++ {
		minCol := fmt.Sprintf("slab%d_min_price", n)
		maxCol := fmt.Sprintf("slab%d_max_price", n)
		pctCol := fmt.Sprintf("slab%d_commission_percent", n)

		minStr, maxStr, pctStr := t.cell(row, minCol), t.cell(row, maxCol), t.cell(row, pctCol)
		if minStr == "" && maxStr == "" && pctStr == "" {
			continue
		}

		slab := dto.SlabInput{}
		ok := true
		if v, err := strconv.ParseFloat(minStr, 64); err == nil {
			slab.MinPrice = v
		} else {
			issues = append(issues, fmt.Sprintf("%s must be a number", minCol))
			ok = false
		}
		if maxStr != "" {
			if v, err := strconv.ParseFloat(maxStr, 64); err == nil {
				slab.MaxPrice = &v
			} else {
				issues = append(issues, fmt.Sprintf("%s must be a number", maxCol))
				ok = false
			}
		}
		if v, err := strconv.ParseFloat(pctStr, 64); err == nil {
			slab.CommissionPercent = v
		} else {
			issues = append(issues, fmt.Sprintf("%s must be a number", pctCol))
			ok = false
		}
		if ok {
			draft.Slabs = append(draft.Slabs, slab)
		}
	}

	for _, code := range models.FeeCodes() {
		typCol := fmt.Sprintf("fee_%s_type", code)
		valCol := fmt.Sprintf("fee_%s_value", code)

		typ, val := strings.ToLower(t.cell(row, typCol)), t.cell(row, valCol)
		if typ == "" && val == "" {
			continue
		}
		if typ == "" || val == "" {
			issues = append(issues, fmt.Sprintf("%s and %s must both be present", typCol, valCol))
			continue
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			issues = append(issues, fmt.Sprintf("%s must be a number", valCol))
			continue
		}
		draft.Fees = append(draft.Fees, dto.FeeInput{FeeCode: code, FeeType: typ, FeeValue: v})
	}

	return issues
}

func (t *importTable) optFloat(row []string, col string, issues *[]string) *float64 {
	s := t.cell(row, col)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*issues = append(*issues, fmt.Sprintf("%s must be a number", col))
		return nil
	}
	return &v
}

func (t *importTable) floatOrZero(row []string, col string, issues *[]string) float64 {
	if v := t.optFloat(row, col, issues); v != nil {
		return *v
	}
	return 0
}

func (t *importTable) optInt(row []string, col string, issues *[]string) *int {
	s := t.cell(row, col)
	if s == "" {
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		*issues = append(*issues, fmt.Sprintf("%s must be an integer", col))
		return nil
	}
	return &v
}

func (t *importTable) intOrZero(row []string, col string, issues *[]string) int {
	if v := t.optInt(row, col, issues); v != nil {
		return *v
	}
	return 0
}

// optWeekday accepts 0..6 (0=Sunday) or an English weekday name.
func (t *importTable) optWeekday(row []string, col string, issues *[]string) *int {
	s := strings.ToLower(t.cell(row, col))
	if s == "" {
		return nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return &v
	}
	names := map[string]int{
		"sunday": 0, "monday": 1, "tuesday": 2, "wednesday": 3,
		"thursday": 4, "friday": 5, "saturday": 6,
	}
	if v, ok := names[s]; ok {
		return &v
	}
	*issues = append(*issues, fmt.Sprintf("%s must be a weekday number (0-6) or name", col))
	return nil
}
