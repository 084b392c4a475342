package businessflow

import (
	"fmt"
	"sort"

	"github.com/sellerpulse/recon-api/models"
)

// ValidateSlabs checks a tiered card's slab list and returns it sorted
// ascending by min_price. Violations are collected in one pass, never
// fail-fast: the returned error enumerates every issue found. An empty list
// fails with ErrMissingSlabs; any other violation fails with ErrSlabOverlap.
//
// A slab with a nil max_price is open-ended; after sorting it only survives
// validation in the terminal position, since an open end before another slab
// necessarily overlaps it.
func ValidateSlabs(slabs []models.RateCardSlab) ([]models.RateCardSlab, error) {
	if len(slabs) == 0 {
		return nil, &SlabValidationError{
			Kind:   ErrMissingSlabs,
			Issues: []string{ErrMissingSlabs.Error()},
		}
	}

	sorted := make([]models.RateCardSlab, len(slabs))
	copy(sorted, slabs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MinPrice < sorted[j].MinPrice
	})

	var issues []string
	for i := range sorted {
		s := &sorted[i]
		if s.MinPrice < 0 {
			issues = append(issues, fmt.Sprintf("slab %d: min_price must not be negative", i+1))
		}
		if s.CommissionPercent < 0 || s.CommissionPercent > 100 {
			issues = append(issues, fmt.Sprintf("slab %d: commission_percent must be between 0 and 100", i+1))
		}
		if s.MaxPrice != nil && *s.MaxPrice <= s.MinPrice {
			issues = append(issues, fmt.Sprintf("slab %d: max_price must be greater than min_price", i+1))
		}
		if i == 0 {
			continue
		}
		prev := &sorted[i-1]
		// An open-ended previous slab extends to +infinity and always overlaps.
		if prev.MaxPrice == nil || *prev.MaxPrice > s.MinPrice {
			issues = append(issues, fmt.Sprintf("slab %d overlaps slab %d", i, i+1))
		}
	}

	if len(issues) > 0 {
		return nil, &SlabValidationError{Kind: ErrSlabOverlap, Issues: issues}
	}

	for i := range sorted {
		sorted[i].Position = i
	}
	return sorted, nil
}
