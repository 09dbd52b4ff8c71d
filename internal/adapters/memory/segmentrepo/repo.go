package segmentrepo

import (
	"context"
	"sync"
	"time"

	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/segmentrepo"
)

// Repo is an in-memory implementation of segmentrepo.Repository.
// It is safe for concurrent use.
//
// Each version's segments form one explicit ordered id sequence; Create
// appends, Reorder replaces the whole sequence atomically under the lock.
type Repo struct {
	mu sync.RWMutex

	segments map[domain.SegmentID]segmentrepo.Segment
	order    map[domain.VersionID][]domain.SegmentID

	variants          map[domain.VariantID]segmentrepo.Variant
	variantsBySegment map[domain.SegmentID][]domain.VariantID
}

func NewRepo() *Repo {
	return &Repo{
		segments:          make(map[domain.SegmentID]segmentrepo.Segment),
		order:             make(map[domain.VersionID][]domain.SegmentID),
		variants:          make(map[domain.VariantID]segmentrepo.Variant),
		variantsBySegment: make(map[domain.SegmentID][]domain.VariantID),
	}
}

func (r *Repo) Create(ctx context.Context, s segmentrepo.Segment) error {
	_ = ctx
	if s.ID == "" {
		return segmentrepo.ErrAlreadyExists
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.segments[s.ID]; ok {
		return segmentrepo.ErrAlreadyExists
	}
	r.segments[s.ID] = cloneSegment(s)
	r.order[s.VersionID] = append(r.order[s.VersionID], s.ID)
	return nil
}

func (r *Repo) Save(ctx context.Context, s segmentrepo.Segment) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.segments[s.ID]
	if !ok {
		return segmentrepo.ErrNotFound
	}
	// VersionID is immutable; keep the stored ordering intact.
	s.VersionID = existing.VersionID
	r.segments[s.ID] = cloneSegment(s)
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id domain.SegmentID) (segmentrepo.Segment, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.segments[id]
	if !ok {
		return segmentrepo.Segment{}, segmentrepo.ErrNotFound
	}
	return cloneSegment(s), nil
}

func (r *Repo) ListByVersion(ctx context.Context, versionID domain.VersionID) ([]segmentrepo.Segment, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.order[versionID]
	out := make([]segmentrepo.Segment, 0, len(ids))
	for _, id := range ids {
		if s, ok := r.segments[id]; ok {
			out = append(out, cloneSegment(s))
		}
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, id domain.SegmentID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.segments[id]
	if !ok {
		return segmentrepo.ErrNotFound
	}
	delete(r.segments, id)
	r.order[s.VersionID] = removeID(r.order[s.VersionID], id)
	r.dropVariantsLocked(id)
	return nil
}

func (r *Repo) DeleteByVersion(ctx context.Context, versionID domain.VersionID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.order[versionID] {
		delete(r.segments, id)
		r.dropVariantsLocked(id)
	}
	delete(r.order, versionID)
	return nil
}

func (r *Repo) Reorder(ctx context.Context, versionID domain.VersionID, orderedIDs []domain.SegmentID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.order[versionID]
	if len(orderedIDs) != len(current) {
		return segmentrepo.ErrInvalidOrder
	}
	seen := make(map[domain.SegmentID]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		s, ok := r.segments[id]
		if !ok || s.VersionID != versionID || seen[id] {
			return segmentrepo.ErrInvalidOrder
		}
		seen[id] = true
	}

	r.order[versionID] = append([]domain.SegmentID(nil), orderedIDs...)
	return nil
}

func (r *Repo) AddVariant(ctx context.Context, v segmentrepo.Variant) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.segments[v.SegmentID]; !ok {
		return segmentrepo.ErrNotFound
	}
	if _, ok := r.variants[v.ID]; ok {
		return segmentrepo.ErrAlreadyExists
	}
	r.variants[v.ID] = cloneVariant(v)
	r.variantsBySegment[v.SegmentID] = append(r.variantsBySegment[v.SegmentID], v.ID)
	return nil
}

func (r *Repo) SaveVariant(ctx context.Context, v segmentrepo.Variant) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.variants[v.ID]
	if !ok {
		return segmentrepo.ErrVariantNotFound
	}
	v.SegmentID = existing.SegmentID
	r.variants[v.ID] = cloneVariant(v)
	return nil
}

func (r *Repo) GetVariant(ctx context.Context, id domain.VariantID) (segmentrepo.Variant, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.variants[id]
	if !ok {
		return segmentrepo.Variant{}, segmentrepo.ErrVariantNotFound
	}
	return cloneVariant(v), nil
}

func (r *Repo) ListVariants(ctx context.Context, segmentID domain.SegmentID) ([]segmentrepo.Variant, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.variantsBySegment[segmentID]
	out := make([]segmentrepo.Variant, 0, len(ids))
	for _, id := range ids {
		if v, ok := r.variants[id]; ok {
			out = append(out, cloneVariant(v))
		}
	}
	return out, nil
}

func (r *Repo) DeleteVariant(ctx context.Context, id domain.VariantID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.variants[id]
	if !ok {
		return segmentrepo.ErrVariantNotFound
	}
	delete(r.variants, id)
	r.variantsBySegment[v.SegmentID] = removeVariantID(r.variantsBySegment[v.SegmentID], id)
	return nil
}

func (r *Repo) dropVariantsLocked(segmentID domain.SegmentID) {
	for _, vid := range r.variantsBySegment[segmentID] {
		delete(r.variants, vid)
	}
	delete(r.variantsBySegment, segmentID)
}

func removeID(ids []domain.SegmentID, id domain.SegmentID) []domain.SegmentID {
	out := ids[:0]
	for _, cur := range ids {
		if cur != id {
			out = append(out, cur)
		}
	}
	return out
}

func removeVariantID(ids []domain.VariantID, id domain.VariantID) []domain.VariantID {
	out := ids[:0]
	for _, cur := range ids {
		if cur != id {
			out = append(out, cur)
		}
	}
	return out
}

func cloneSegment(s segmentrepo.Segment) segmentrepo.Segment {
	cp := s
	cp.Subtitle = cloneStringPtr(s.Subtitle)
	cp.ConfirmationNumber = cloneStringPtr(s.ConfirmationNumber)
	cp.Notes = cloneStringPtr(s.Notes)
	cp.JourneyID = cloneStringPtr(s.JourneyID)
	cp.PropertyGroupID = cloneStringPtr(s.PropertyGroupID)
	cp.StartTime = cloneTimePtr(s.StartTime)
	cp.EndTime = cloneTimePtr(s.EndTime)
	cp.RefundDeadline = cloneTimePtr(s.RefundDeadline)
	cp.Cost = cloneFloatPtr(s.Cost)
	cp.PricePerUnit = cloneFloatPtr(s.PricePerUnit)
	if s.Metadata != nil {
		m := make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			m[k] = v
		}
		cp.Metadata = m
	}
	return cp
}

func cloneVariant(v segmentrepo.Variant) segmentrepo.Variant {
	cp := v
	cp.Cost = cloneFloatPtr(v.Cost)
	cp.PricePerUnit = cloneFloatPtr(v.PricePerUnit)
	cp.RefundDeadline = cloneTimePtr(v.RefundDeadline)
	return cp
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneFloatPtr(p *float64) *float64 {
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
