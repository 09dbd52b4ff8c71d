package domain_test

import (
	"reflect"
	"testing"

	"github.com/meridian-travel/itinerary-api/internal/domain"
)

func strp(s string) *string { return &s }

func flightLeg(id, journeyID string, legNumber int) domain.Segment {
	return domain.Segment{
		ID:        domain.SegmentID(id),
		Type:      domain.SegmentTypeFlight,
		DayNumber: 1,
		JourneyID: strp(journeyID),
		Metadata:  map[string]any{"legNumber": float64(legNumber)},
	}
}

func hotelRoom(id, groupID string) domain.Segment {
	return domain.Segment{
		ID:              domain.SegmentID(id),
		Type:            domain.SegmentTypeHotel,
		DayNumber:       1,
		PropertyGroupID: strp(groupID),
	}
}

func itemIDs(items []domain.DayItem) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch it.Kind {
		case domain.DayItemJourney:
			out = append(out, "J:"+it.Journey.ID)
		case domain.DayItemPropertyGroup:
			out = append(out, "P:"+it.PropertyGroup.ID)
		default:
			out = append(out, "S:"+string(it.Segment.ID))
		}
	}
	return out
}

func TestGroupDaySegments_PromotesJourneysAndOrdersLegs(t *testing.T) {
	t.Parallel()

	segs := []domain.Segment{
		flightLeg("s2", "j1", 2),
		{ID: "a1", Type: domain.SegmentTypeActivity, DayNumber: 1},
		flightLeg("s1", "j1", 1),
	}

	items := domain.GroupDaySegments(segs)
	got := itemIDs(items)
	want := []string{"J:j1", "S:a1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("items=%v want=%v", got, want)
	}
	legs := items[0].Journey.Legs
	if legs[0].ID != "s1" || legs[1].ID != "s2" {
		t.Fatalf("legs=%v", itemIDs([]domain.DayItem{{Kind: domain.DayItemSegment, Segment: &legs[0]}, {Kind: domain.DayItemSegment, Segment: &legs[1]}}))
	}
}

func TestGroupDaySegments_LoneGroupMemberDegradesToSegment(t *testing.T) {
	t.Parallel()

	segs := []domain.Segment{
		flightLeg("s1", "j1", 1),
		hotelRoom("h1", "pg1"),
	}

	items := domain.GroupDaySegments(segs)
	got := itemIDs(items)
	want := []string{"S:s1", "S:h1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("items=%v want=%v", got, want)
	}
}

func TestGroupDaySegments_PropertyGroupIsHotelOnly(t *testing.T) {
	t.Parallel()

	// A transport segment carrying a propertyGroupId never counts toward the
	// group; only the two hotel rooms merge.
	transport := domain.Segment{ID: "t1", Type: domain.SegmentTypeTransport, DayNumber: 1, PropertyGroupID: strp("pg1")}
	segs := []domain.Segment{
		hotelRoom("h1", "pg1"),
		transport,
		hotelRoom("h2", "pg1"),
	}

	items := domain.GroupDaySegments(segs)
	got := itemIDs(items)
	want := []string{"P:pg1", "S:t1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("items=%v want=%v", got, want)
	}
	if n := len(items[0].PropertyGroup.Rooms); n != 2 {
		t.Fatalf("rooms=%d", n)
	}
}

func TestGroupDaySegments_GroupPositionIsFirstMember(t *testing.T) {
	t.Parallel()

	segs := []domain.Segment{
		{ID: "a1", Type: domain.SegmentTypeActivity, DayNumber: 1},
		flightLeg("s1", "j1", 1),
		{ID: "r1", Type: domain.SegmentTypeRestaurant, DayNumber: 1},
		flightLeg("s2", "j1", 2),
	}

	got := itemIDs(domain.GroupDaySegments(segs))
	want := []string{"S:a1", "J:j1", "S:r1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("items=%v want=%v", got, want)
	}
}

func TestGroupDaySegments_Idempotent(t *testing.T) {
	t.Parallel()

	segs := []domain.Segment{
		flightLeg("s1", "j1", 1),
		flightLeg("s2", "j1", 2),
		hotelRoom("h1", "pg1"),
		hotelRoom("h2", "pg1"),
		{ID: "n1", Type: domain.SegmentTypeNote, DayNumber: 1},
	}

	first := itemIDs(domain.GroupDaySegments(segs))
	second := itemIDs(domain.GroupDaySegments(segs))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("first=%v second=%v", first, second)
	}
	want := []string{"J:j1", "P:pg1", "S:n1"}
	if !reflect.DeepEqual(first, want) {
		t.Fatalf("items=%v want=%v", first, want)
	}
}

func TestGroupDaySegments_LegNumberTiesAreStable(t *testing.T) {
	t.Parallel()

	// Both legs default to legNumber 0 (missing metadata); insertion order wins.
	a := domain.Segment{ID: "s1", Type: domain.SegmentTypeFlight, DayNumber: 1, JourneyID: strp("j1")}
	b := domain.Segment{ID: "s2", Type: domain.SegmentTypeFlight, DayNumber: 1, JourneyID: strp("j1")}

	items := domain.GroupDaySegments([]domain.Segment{a, b})
	if len(items) != 1 || items[0].Kind != domain.DayItemJourney {
		t.Fatalf("items=%v", itemIDs(items))
	}
	legs := items[0].Journey.Legs
	if legs[0].ID != "s1" || legs[1].ID != "s2" {
		t.Fatalf("legs=[%s %s]", legs[0].ID, legs[1].ID)
	}
}

func TestSegment_LegNumberToleratesFormats(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		meta map[string]any
		want int
	}{
		{"missing", nil, 0},
		{"float", map[string]any{"legNumber": float64(3)}, 3},
		{"int", map[string]any{"legNumber": 2}, 2},
		{"string", map[string]any{"legNumber": "4"}, 4},
		{"garbage", map[string]any{"legNumber": "first"}, 0},
	}
	for _, tc := range cases {
		s := domain.Segment{Metadata: tc.meta}
		if got := s.LegNumber(); got != tc.want {
			t.Fatalf("%s: legNumber=%d want=%d", tc.name, got, tc.want)
		}
	}
}
