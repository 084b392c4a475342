package businessflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Import rows by classification/outcome
	importRowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recon_import_rows_total",
			Help: "Rate card import rows processed, by status",
		},
		[]string{"status"},
	)

	// Payout calculations served
	payoutCalculationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recon_payout_calculations_total",
			Help: "Payout calculations performed",
		},
	)

	// Calculations whose delta exceeded the mismatch threshold
	payoutMismatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recon_payout_mismatches_total",
			Help: "Payout calculations flagged as settlement mismatches",
		},
	)
)
