package domain

import "time"

// PrimaryChoice is the sentinel used when the client keeps a segment's own
// baseline option instead of one of its variants.
const PrimaryChoice = "primary"

// Choice is one client decision for a segment: either a specific variant or
// the segment's primary option (VariantID == nil).
type Choice struct {
	SegmentID SegmentID
	VariantID *VariantID

	SelectedAt time.Time

	// Submitted locks the choice. Locking is segment-scoped: a version may
	// hold a mix of locked and open segments after a partial submission.
	Submitted   bool
	SubmittedAt *time.Time
}

// IsPrimary reports whether the choice keeps the segment's baseline option.
func (c Choice) IsPrimary() bool { return c.VariantID == nil }

// SelectionRecord is the authoritative per-version ledger of client variant
// choices, submissions, and approval. Variant-level isSelected/isSubmitted
// flags are views over this record, never stored redundantly.
type SelectionRecord struct {
	TripID    TripID
	VersionID VersionID

	Choices map[SegmentID]Choice

	ApprovedAt *time.Time
}

// NewSelectionRecord returns an empty ledger for (tripID, versionID).
func NewSelectionRecord(tripID TripID, versionID VersionID) SelectionRecord {
	return SelectionRecord{
		TripID:    tripID,
		VersionID: versionID,
		Choices:   make(map[SegmentID]Choice),
	}
}

// ChoiceFor returns the recorded choice for a segment, if any.
func (r SelectionRecord) ChoiceFor(segmentID SegmentID) (Choice, bool) {
	c, ok := r.Choices[segmentID]
	return c, ok
}

// IsLocked reports whether the segment's choice has been submitted.
func (r SelectionRecord) IsLocked(segmentID SegmentID) bool {
	c, ok := r.Choices[segmentID]
	return ok && c.Submitted
}

// Select records a tentative choice for a segment. It is a no-op once the
// segment's choice is locked.
func (r *SelectionRecord) Select(segmentID SegmentID, variantID *VariantID, now time.Time) {
	if r.IsLocked(segmentID) {
		return
	}
	if r.Choices == nil {
		r.Choices = make(map[SegmentID]Choice)
	}
	r.Choices[segmentID] = Choice{
		SegmentID:  segmentID,
		VariantID:  variantID,
		SelectedAt: now,
	}
}

// SubmitAll locks every segment that currently has a choice and returns the
// ids that transitioned. Already-locked segments are left untouched; segments
// without a choice remain open for a later submission round.
func (r *SelectionRecord) SubmitAll(now time.Time) []SegmentID {
	var locked []SegmentID
	for id, c := range r.Choices {
		if c.Submitted {
			continue
		}
		c.Submitted = true
		t := now
		c.SubmittedAt = &t
		r.Choices[id] = c
		locked = append(locked, id)
	}
	return locked
}

// Reopen clears submission locks so the client can run a new selection round.
// This is the advisor-intervention path; the share channel never unlocks.
func (r *SelectionRecord) Reopen() {
	for id, c := range r.Choices {
		c.Submitted = false
		c.SubmittedAt = nil
		r.Choices[id] = c
	}
}
