package versionrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/versionrepo"
)

// Repo is an in-memory implementation of versionrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu   sync.RWMutex
	byID map[domain.VersionID]versionrepo.Version
}

func NewRepo() *Repo {
	return &Repo{
		byID: make(map[domain.VersionID]versionrepo.Version),
	}
}

func (r *Repo) Create(ctx context.Context, v versionrepo.Version) error {
	_ = ctx
	if v.ID == "" {
		return versionrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[v.ID]; ok {
		return versionrepo.ErrAlreadyExists
	}
	r.byID[v.ID] = cloneVersion(v)
	return nil
}

func (r *Repo) Save(ctx context.Context, v versionrepo.Version) error {
	_ = ctx
	if v.ID == "" {
		return versionrepo.ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[v.ID] = cloneVersion(v)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.VersionID) (versionrepo.Version, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.byID[id]
	if !ok {
		return versionrepo.Version{}, versionrepo.ErrNotFound
	}
	return cloneVersion(v), nil
}

func (r *Repo) ListByTrip(ctx context.Context, tripID domain.TripID) ([]versionrepo.Version, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]versionrepo.Version, 0)
	for _, v := range r.byID {
		if v.TripID == tripID {
			out = append(out, cloneVersion(v))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return string(out[i].ID) < string(out[j].ID)
	})
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.VersionID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return versionrepo.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *Repo) DeleteByTrip(ctx context.Context, tripID domain.TripID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.byID {
		if v.TripID == tripID {
			delete(r.byID, id)
		}
	}
	return nil
}

func cloneVersion(v versionrepo.Version) versionrepo.Version {
	cp := v
	if v.DiscountLabel != nil {
		s := *v.DiscountLabel
		cp.DiscountLabel = &s
	}
	return cp
}
