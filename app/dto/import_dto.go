package dto

// Row classification statuses produced by the import parser.
const (
	RowStatusValid     = "valid"
	RowStatusSimilar   = "similar"
	RowStatusDuplicate = "duplicate"
	RowStatusError     = "error"
)

// Import outcome statuses.
const (
	RowStatusImported = "imported"
	RowStatusSkipped  = "skipped"
)

// ParseSummary counts parsed rows by classification.
type ParseSummary struct {
	Total     int `json:"total"`
	Valid     int `json:"valid"`
	Similar   int `json:"similar"`
	Duplicate int `json:"duplicate"`
	Error     int `json:"error"`
}

// ParsedRowDTO is one classified row of an uploaded file. Row numbering starts
// at 1 for the first data row, matching file order. Payload is present for
// every row that parsed cleanly.
type ParsedRowDTO struct {
	Row     int            `json:"row"`
	Status  string         `json:"status"`
	Message string         `json:"message,omitempty"`
	Payload *DraftRateCard `json:"payload,omitempty"`
}

// ParseImportFileResponse is the result of the parse endpoint.
type ParseImportFileResponse struct {
	Message string         `json:"message"`
	Summary ParseSummary   `json:"summary"`
	Rows    []ParsedRowDTO `json:"rows"`
}

// ImportRateCardsRequest submits previously parsed rows for persistence.
// Similar rows are only imported when IncludeSimilar is set.
type ImportRateCardsRequest struct {
	Rows           []DraftRateCard `json:"rows" validate:"required,min=1"`
	IncludeSimilar bool            `json:"include_similar"`
}

// ImportSummary counts import outcomes.
type ImportSummary struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

// ImportRowResultDTO is the per-row outcome of an import. ID carries the UUID
// of the inserted card.
type ImportRowResultDTO struct {
	Row     int     `json:"row"`
	Status  string  `json:"status"` // imported | skipped
	ID      *string `json:"id,omitempty"`
	Message string  `json:"message,omitempty"`
}

// ImportRateCardsResponse is the result of the import endpoint.
type ImportRateCardsResponse struct {
	Message string               `json:"message"`
	Summary ImportSummary        `json:"summary"`
	Results []ImportRowResultDTO `json:"results"`
}
