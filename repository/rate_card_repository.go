package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sellerpulse/recon-api/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrDuplicateCard is returned by ImportCard when an overlapping card with an
// identical structure already exists for the same key.
var ErrDuplicateCard = errors.New("an identical overlapping rate card already exists")

// RateCardRepositoryImpl implements RateCardRepository interface
type RateCardRepositoryImpl struct {
	*BaseRepository[models.RateCard, models.RateCardFilter]
}

// NewRateCardRepository creates a new rate card repository
func NewRateCardRepository(db *gorm.DB) RateCardRepository {
	return &RateCardRepositoryImpl{
		BaseRepository: NewBaseRepository[models.RateCard, models.RateCardFilter](db),
	}
}

// ByID finds a rate card (with slabs and fees) by ID
func (r *RateCardRepositoryImpl) ByID(ctx context.Context, id uint) (*models.RateCard, error) {
	db := r.getDB(ctx)
	var card models.RateCard
	err := r.withRelations(db).Last(&card, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// ByUUID finds a rate card (with slabs and fees) by UUID
func (r *RateCardRepositoryImpl) ByUUID(ctx context.Context, uuid string) (*models.RateCard, error) {
	db := r.getDB(ctx)
	var card models.RateCard
	err := r.withRelations(db).Where("uuid = ?", uuid).Last(&card).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &card, nil
}

// ByFilter finds rate cards matching the filter, newest effective_from first
func (r *RateCardRepositoryImpl) ByFilter(ctx context.Context, filter models.RateCardFilter) ([]*models.RateCard, error) {
	db := r.getDB(ctx)
	query := r.withRelations(db)

	if filter.ID != nil {
		query = query.Where("id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		query = query.Where("uuid = ?", *filter.UUID)
	}
	if filter.PlatformID != nil {
		query = query.Where("platform_id = ?", *filter.PlatformID)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.ActiveOn != nil {
		query = query.Where("effective_from <= ? AND (effective_to IS NULL OR effective_to > ?)",
			*filter.ActiveOn, *filter.ActiveOn)
	}

	var cards []*models.RateCard
	err := query.Order("effective_from DESC, id DESC").Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// ByKey finds every rate card for a (platform, category) pair
func (r *RateCardRepositoryImpl) ByKey(ctx context.Context, platformID, categoryID string) ([]*models.RateCard, error) {
	db := r.getDB(ctx)
	var cards []*models.RateCard
	err := r.withRelations(db).
		Where("platform_id = ? AND category_id = ?", platformID, categoryID).
		Order("effective_from DESC, id DESC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// EffectiveOn finds the cards for a key whose validity window contains the date
func (r *RateCardRepositoryImpl) EffectiveOn(ctx context.Context, platformID, categoryID string, date time.Time) ([]*models.RateCard, error) {
	db := r.getDB(ctx)
	var cards []*models.RateCard
	err := r.withRelations(db).
		Where("platform_id = ? AND category_id = ?", platformID, categoryID).
		Where("effective_from <= ? AND (effective_to IS NULL OR effective_to > ?)", date, date).
		Order("effective_from DESC, id DESC").
		Find(&cards).Error
	if err != nil {
		return nil, err
	}
	return cards, nil
}

// ImportCard inserts the card with its slabs and fees in one SERIALIZABLE
// transaction. Existing cards for the same key are locked and re-checked so a
// concurrent import of a structurally identical overlapping card cannot slip
// through between classification and insert.
func (r *RateCardRepositoryImpl) ImportCard(ctx context.Context, card *models.RateCard) error {
	return WithSerializableTransaction(ctx, r.DB, func(txCtx context.Context) error {
		tx := r.getDB(txCtx)

		var existing []*models.RateCard
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("Slabs").Preload("Fees").
			Where("platform_id = ? AND category_id = ?", card.PlatformID, card.CategoryID).
			Find(&existing).Error
		if err != nil {
			return err
		}

		for _, e := range existing {
			if e.OverlapsRange(card.EffectiveFrom, card.EffectiveTo) &&
				e.SameDateRange(card) && e.SameStructure(card) {
				return ErrDuplicateCard
			}
		}

		// Create cascades to slabs and fees through the associations.
		if err := tx.Create(card).Error; err != nil {
			return err
		}
		return nil
	})
}

func (r *RateCardRepositoryImpl) withRelations(db *gorm.DB) *gorm.DB {
	return db.Preload("Slabs", func(db *gorm.DB) *gorm.DB {
		return db.Order("rate_card_slabs.position ASC, rate_card_slabs.min_price ASC")
	}).Preload("Fees")
}
