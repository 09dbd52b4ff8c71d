package triprepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/triprepo"
)

// Repo is an in-memory implementation of triprepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.TripID]triprepo.Trip
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.TripID]triprepo.Trip),
	}
}

func (r *Repo) Create(ctx context.Context, t triprepo.Trip) error {
	_ = ctx
	if t.ID == "" {
		return triprepo.ErrAlreadyExists // treat empty ID as invalid
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID]; ok {
		return triprepo.ErrAlreadyExists
	}
	r.byID[t.ID] = cloneTrip(t)
	return nil
}

func (r *Repo) Save(ctx context.Context, t triprepo.Trip) error {
	_ = ctx
	if t.ID == "" {
		return triprepo.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[t.ID] = cloneTrip(t)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.TripID) (triprepo.Trip, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return triprepo.Trip{}, triprepo.ErrNotFound
	}
	return cloneTrip(t), nil
}

func (r *Repo) GetByShareToken(ctx context.Context, token string) (triprepo.Trip, error) {
	_ = ctx
	if token == "" {
		return triprepo.Trip{}, triprepo.ErrNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.byID {
		if t.SharingEnabled && t.ShareToken == token {
			return cloneTrip(t), nil
		}
	}
	return triprepo.Trip{}, triprepo.ErrNotFound
}

func (r *Repo) ListByAdvisor(ctx context.Context, advisor domain.AdvisorID) ([]triprepo.Trip, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]triprepo.Trip, 0)
	for _, t := range r.byID {
		if t.AdvisorID == advisor {
			out = append(out, cloneTrip(t))
		}
	}
	sortTrips(out)
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.TripID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return triprepo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func cloneTrip(t triprepo.Trip) triprepo.Trip {
	cp := t
	if t.Destinations != nil {
		cp.Destinations = append([]string(nil), t.Destinations...)
	}
	cp.Notes = cloneStringPtr(t.Notes)
	cp.StartDate = cloneTimePtr(t.StartDate)
	cp.EndDate = cloneTimePtr(t.EndDate)
	cp.ApprovedAt = cloneTimePtr(t.ApprovedAt)
	if t.Budget != nil {
		v := *t.Budget
		cp.Budget = &v
	}
	if t.ApprovedVersionID != nil {
		v := *t.ApprovedVersionID
		cp.ApprovedVersionID = &v
	}
	return cp
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func sortTrips(ts []triprepo.Trip) {
	// Sorting rule: by startDate ascending; trips without a startDate come
	// after dated trips and sort by createdAt ascending.
	sort.Slice(ts, func(i, j int) bool {
		a := ts[i]
		b := ts[j]
		ad, bd := a.StartDate, b.StartDate

		if ad != nil && bd != nil {
			if !ad.Equal(*bd) {
				return ad.Before(*bd)
			}
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return string(a.ID) < string(b.ID)
		}
		if ad != nil && bd == nil {
			return true
		}
		if ad == nil && bd != nil {
			return false
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return string(a.ID) < string(b.ID)
	})
}
