package selectionrepo

import (
	"context"
	"sync"
	"time"

	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/selectionrepo"
)

type key struct {
	tripID    domain.TripID
	versionID domain.VersionID
}

// Repo is an in-memory implementation of selectionrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu      sync.RWMutex
	records map[key]domain.SelectionRecord
}

func NewRepo() *Repo {
	return &Repo{
		records: make(map[key]domain.SelectionRecord),
	}
}

func (r *Repo) Get(ctx context.Context, tripID domain.TripID, versionID domain.VersionID) (domain.SelectionRecord, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key{tripID, versionID}]
	if !ok {
		return domain.SelectionRecord{}, selectionrepo.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (r *Repo) Save(ctx context.Context, rec domain.SelectionRecord) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[key{rec.TripID, rec.VersionID}] = cloneRecord(rec)
	return nil
}

func (r *Repo) DeleteByVersion(ctx context.Context, versionID domain.VersionID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.records {
		if k.versionID == versionID {
			delete(r.records, k)
		}
	}
	return nil
}

func (r *Repo) DeleteByTrip(ctx context.Context, tripID domain.TripID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for k := range r.records {
		if k.tripID == tripID {
			delete(r.records, k)
		}
	}
	return nil
}

func cloneRecord(rec domain.SelectionRecord) domain.SelectionRecord {
	cp := rec
	if rec.Choices != nil {
		m := make(map[domain.SegmentID]domain.Choice, len(rec.Choices))
		for id, c := range rec.Choices {
			cc := c
			if c.VariantID != nil {
				v := *c.VariantID
				cc.VariantID = &v
			}
			cc.SubmittedAt = cloneTimePtr(c.SubmittedAt)
			m[id] = cc
		}
		cp.Choices = m
	}
	cp.ApprovedAt = cloneTimePtr(rec.ApprovedAt)
	return cp
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
