package domain

import "sort"

type DayItemKind string

const (
	DayItemSegment       DayItemKind = "segment"
	DayItemJourney       DayItemKind = "journey"
	DayItemPropertyGroup DayItemKind = "propertyGroup"
)

// Journey is an ordered chain of >=2 flight legs sharing a journey id,
// rendered and priced as one connecting trip.
type Journey struct {
	ID   string
	Legs []Segment
}

// PropertyGroup is >=2 hotel-room segments for the same stay, rendered and
// priced as one hotel booking.
type PropertyGroup struct {
	ID    string
	Rooms []Segment
}

// DayItem is one render/compute unit of a day: a standalone segment, a
// journey, or a property group. Exactly one of the three fields is set,
// matching Kind.
type DayItem struct {
	Kind DayItemKind

	Segment       *Segment
	Journey       *Journey
	PropertyGroup *PropertyGroup
}

// Segments returns the member segments of the item in render order.
func (it DayItem) Segments() []Segment {
	switch it.Kind {
	case DayItemJourney:
		return it.Journey.Legs
	case DayItemPropertyGroup:
		return it.PropertyGroup.Rooms
	default:
		return []Segment{*it.Segment}
	}
}

// GroupDaySegments derives the render list for one day of one version.
//
// A journey id shared by >=2 flight-like segments becomes a Journey item with
// legs ordered ascending by legNumber (stable on ties). A property group id
// shared by >=2 hotel segments becomes a PropertyGroup item. A lone segment
// carrying a group id, or a group member of the wrong type, degrades to a
// plain segment rather than an error. Each group is emitted once, at the
// position of its first member in the original ordering.
func GroupDaySegments(segs []Segment) []DayItem {
	journeyMembers := make(map[string][]Segment)
	propertyMembers := make(map[string][]Segment)
	for _, s := range segs {
		if s.JourneyID != nil && *s.JourneyID != "" && s.Type.IsFlight() {
			journeyMembers[*s.JourneyID] = append(journeyMembers[*s.JourneyID], s)
		}
		if s.PropertyGroupID != nil && *s.PropertyGroupID != "" && s.Type == SegmentTypeHotel {
			propertyMembers[*s.PropertyGroupID] = append(propertyMembers[*s.PropertyGroupID], s)
		}
	}

	out := make([]DayItem, 0, len(segs))
	emittedJourneys := make(map[string]bool)
	emittedProperties := make(map[string]bool)

	for i := range segs {
		s := segs[i]

		if s.JourneyID != nil && s.Type.IsFlight() {
			if legs := journeyMembers[*s.JourneyID]; len(legs) >= 2 {
				if emittedJourneys[*s.JourneyID] {
					continue
				}
				emittedJourneys[*s.JourneyID] = true
				ordered := append([]Segment(nil), legs...)
				sort.SliceStable(ordered, func(a, b int) bool {
					return ordered[a].LegNumber() < ordered[b].LegNumber()
				})
				out = append(out, DayItem{
					Kind:    DayItemJourney,
					Journey: &Journey{ID: *s.JourneyID, Legs: ordered},
				})
				continue
			}
		}

		if s.PropertyGroupID != nil && s.Type == SegmentTypeHotel {
			if rooms := propertyMembers[*s.PropertyGroupID]; len(rooms) >= 2 {
				if emittedProperties[*s.PropertyGroupID] {
					continue
				}
				emittedProperties[*s.PropertyGroupID] = true
				out = append(out, DayItem{
					Kind:          DayItemPropertyGroup,
					PropertyGroup: &PropertyGroup{ID: *s.PropertyGroupID, Rooms: append([]Segment(nil), rooms...)},
				})
				continue
			}
		}

		seg := s
		out = append(out, DayItem{Kind: DayItemSegment, Segment: &seg})
	}

	return out
}

// SegmentsByDay partitions a version's ordered segment list into per-day
// slices, preserving the version order within each day. Day keys are the
// 1-based day numbers present in the input.
func SegmentsByDay(segs []Segment) map[int][]Segment {
	out := make(map[int][]Segment)
	for _, s := range segs {
		out[s.DayNumber] = append(out[s.DayNumber], s)
	}
	return out
}
