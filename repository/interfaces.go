// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/sellerpulse/recon-api/models"
)

type contextKey string

// TxContextKey carries an open *gorm.DB transaction through a context.
const TxContextKey contextKey = "tx"

// RateCardRepository defines persistence operations for rate cards. Reads
// always return cards with their slabs and fees loaded.
type RateCardRepository interface {
	Save(ctx context.Context, card *models.RateCard) error
	ByID(ctx context.Context, id uint) (*models.RateCard, error)
	ByUUID(ctx context.Context, uuid string) (*models.RateCard, error)
	ByFilter(ctx context.Context, filter models.RateCardFilter) ([]*models.RateCard, error)

	// ByKey returns every card for a (platform, category) pair, newest
	// effective_from first.
	ByKey(ctx context.Context, platformID, categoryID string) ([]*models.RateCard, error)

	// EffectiveOn returns the cards for a key whose validity window contains
	// the given date, newest effective_from first.
	EffectiveOn(ctx context.Context, platformID, categoryID string, date time.Time) ([]*models.RateCard, error)

	// ImportCard inserts one card with its slabs and fees in a single
	// serializable transaction, re-checking for a structurally identical
	// overlapping card inside the transaction. Returns ErrDuplicateCard when
	// the re-check finds one.
	ImportCard(ctx context.Context, card *models.RateCard) error
}
