package flightstatus

import (
	"context"
	"sync"

	"github.com/meridian-travel/itinerary-api/internal/domain"
	"github.com/meridian-travel/itinerary-api/internal/ports/out/flightstatus"
)

// Store is an in-memory implementation of flightstatus.Store.
// It is safe for concurrent use.
type Store struct {
	mu        sync.RWMutex
	bySegment map[domain.SegmentID]domain.FlightStatusSnapshot
}

func NewStore() *Store {
	return &Store{
		bySegment: make(map[domain.SegmentID]domain.FlightStatusSnapshot),
	}
}

func (s *Store) Get(ctx context.Context, segmentID domain.SegmentID) (domain.FlightStatusSnapshot, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.bySegment[segmentID]
	if !ok {
		return domain.FlightStatusSnapshot{}, flightstatus.ErrNotFound
	}
	return cloneSnapshot(snap), nil
}

func (s *Store) Put(ctx context.Context, snap domain.FlightStatusSnapshot) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bySegment[snap.SegmentID] = cloneSnapshot(snap)
	return nil
}

func (s *Store) DeleteBySegment(ctx context.Context, segmentID domain.SegmentID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.bySegment, segmentID)
	return nil
}

func cloneSnapshot(snap domain.FlightStatusSnapshot) domain.FlightStatusSnapshot {
	cp := snap
	if snap.DelayMinutes != nil {
		v := *snap.DelayMinutes
		cp.DelayMinutes = &v
	}
	if snap.Gate != nil {
		v := *snap.Gate
		cp.Gate = &v
	}
	if snap.Terminal != nil {
		v := *snap.Terminal
		cp.Terminal = &v
	}
	return cp
}
