package businessflow

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sellerpulse/recon-api/models"
	"github.com/sellerpulse/recon-api/repository"
)

// stubRateCardRepo is an in-memory repository used by the flow tests.
type stubRateCardRepo struct {
	mu     sync.Mutex
	cards  []*models.RateCard
	nextID uint

	saveErr   error
	importErr error
}

func newStubRateCardRepo() *stubRateCardRepo {
	return &stubRateCardRepo{nextID: 1}
}

func (r *stubRateCardRepo) Save(_ context.Context, card *models.RateCard) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(card)
	return nil
}

func (r *stubRateCardRepo) insertLocked(card *models.RateCard) {
	card.ID = r.nextID
	r.nextID++
	if card.UUID == uuid.Nil {
		card.UUID = uuid.New()
	}
	for i := range card.Slabs {
		card.Slabs[i].RateCardID = card.ID
	}
	for i := range card.Fees {
		card.Fees[i].RateCardID = card.ID
	}
	r.cards = append(r.cards, card)
}

func (r *stubRateCardRepo) ByID(_ context.Context, id uint) (*models.RateCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cards {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *stubRateCardRepo) ByUUID(_ context.Context, id string) (*models.RateCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.cards {
		if c.UUID.String() == id {
			return c, nil
		}
	}
	return nil, nil
}

func (r *stubRateCardRepo) ByFilter(_ context.Context, filter models.RateCardFilter) ([]*models.RateCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.RateCard
	for _, c := range r.cards {
		if filter.PlatformID != nil && c.PlatformID != *filter.PlatformID {
			continue
		}
		if filter.CategoryID != nil && c.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.ActiveOn != nil && !c.IsEffectiveOn(*filter.ActiveOn) {
			continue
		}
		out = append(out, c)
	}
	sortNewestFirst(out)
	return out, nil
}

func (r *stubRateCardRepo) ByKey(_ context.Context, platformID, categoryID string) ([]*models.RateCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byKeyLocked(platformID, categoryID), nil
}

func (r *stubRateCardRepo) byKeyLocked(platformID, categoryID string) []*models.RateCard {
	var out []*models.RateCard
	for _, c := range r.cards {
		if c.PlatformID == platformID && c.CategoryID == categoryID {
			out = append(out, c)
		}
	}
	sortNewestFirst(out)
	return out
}

func (r *stubRateCardRepo) EffectiveOn(_ context.Context, platformID, categoryID string, date time.Time) ([]*models.RateCard, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.RateCard
	for _, c := range r.byKeyLocked(platformID, categoryID) {
		if c.IsEffectiveOn(date) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubRateCardRepo) ImportCard(_ context.Context, card *models.RateCard) error {
	if r.importErr != nil {
		return r.importErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.byKeyLocked(card.PlatformID, card.CategoryID) {
		if e.OverlapsRange(card.EffectiveFrom, card.EffectiveTo) && e.SameDateRange(card) && e.SameStructure(card) {
			return repository.ErrDuplicateCard
		}
	}
	r.insertLocked(card)
	return nil
}

func sortNewestFirst(cards []*models.RateCard) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].EffectiveFrom.After(cards[j].EffectiveFrom)
	})
}
