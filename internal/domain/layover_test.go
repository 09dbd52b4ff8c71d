package domain_test

import (
	"testing"
	"time"

	"github.com/meridian-travel/itinerary-api/internal/domain"
)

func timep(t time.Time) *time.Time { return &t }

func legWithTimes(id string, dep, arr time.Time, depAirport, arrAirport string) domain.Segment {
	return domain.Segment{
		ID:        domain.SegmentID(id),
		Type:      domain.SegmentTypeFlight,
		DayNumber: 1,
		StartTime: timep(dep),
		EndTime:   timep(arr),
		Metadata: map[string]any{
			"departureAirport": depAirport,
			"arrivalAirport":   arrAirport,
		},
	}
}

func TestAnalyzeConnection_FlagThresholds(t *testing.T) {
	t.Parallel()

	p := domain.DefaultLayoverPolicy()
	base := time.Date(2026, 3, 10, 14, 50, 0, 0, time.UTC)

	cases := []struct {
		name    string
		layover time.Duration
		want    domain.LayoverFlag
	}{
		{"just under tight threshold", 59 * time.Minute, domain.LayoverTight},
		{"exactly at tight threshold", 60 * time.Minute, domain.LayoverNormal},
		{"between thresholds", 80 * time.Minute, domain.LayoverNormal},
		{"exactly at long threshold", 4 * time.Hour, domain.LayoverNormal},
		{"just over long threshold", 4*time.Hour + time.Minute, domain.LayoverLong},
	}
	for _, tc := range cases {
		a := legWithTimes("a", base.Add(-2*time.Hour), base, "SFO", "JFK")
		b := legWithTimes("b", base.Add(tc.layover), base.Add(tc.layover+6*time.Hour), "JFK", "LHR")
		conn, ok := p.AnalyzeConnection(a, b)
		if !ok {
			t.Fatalf("%s: no connection", tc.name)
		}
		if conn.Flag != tc.want {
			t.Fatalf("%s: flag=%s want=%s", tc.name, conn.Flag, tc.want)
		}
		if conn.Duration != tc.layover {
			t.Fatalf("%s: duration=%s want=%s", tc.name, conn.Duration, tc.layover)
		}
	}
}

func TestAnalyzeConnection_SameAirportNoChange(t *testing.T) {
	t.Parallel()

	// JFK 14:50 arrival -> JFK 16:10 departure: 80m normal, no airport change.
	p := domain.DefaultLayoverPolicy()
	arr := time.Date(2026, 3, 10, 14, 50, 0, 0, time.UTC)
	dep := time.Date(2026, 3, 10, 16, 10, 0, 0, time.UTC)
	a := legWithTimes("a", arr.Add(-5*time.Hour), arr, "SFO", "JFK")
	b := legWithTimes("b", dep, dep.Add(7*time.Hour), "JFK", "LHR")

	conn, ok := p.AnalyzeConnection(a, b)
	if !ok {
		t.Fatalf("no connection")
	}
	if conn.AirportChange {
		t.Fatalf("airportChange=true")
	}
	if conn.Flag != domain.LayoverNormal {
		t.Fatalf("flag=%s", conn.Flag)
	}
	if conn.Label != "1h 20m" {
		t.Fatalf("label=%q", conn.Label)
	}
}

func TestAnalyzeConnection_AirportChange(t *testing.T) {
	t.Parallel()

	p := domain.DefaultLayoverPolicy()
	arr := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := legWithTimes("a", arr.Add(-2*time.Hour), arr, "SFO", "JFK")
	b := legWithTimes("b", arr.Add(3*time.Hour), arr.Add(10*time.Hour), "EWR", "LHR")

	conn, ok := p.AnalyzeConnection(a, b)
	if !ok {
		t.Fatalf("no connection")
	}
	if !conn.AirportChange {
		t.Fatalf("airportChange=false")
	}
}

func TestAnalyzeConnection_MissingTimestamps(t *testing.T) {
	t.Parallel()

	p := domain.DefaultLayoverPolicy()
	arr := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	a := legWithTimes("a", arr.Add(-2*time.Hour), arr, "SFO", "JFK")
	b := legWithTimes("b", arr.Add(2*time.Hour), arr.Add(9*time.Hour), "JFK", "LHR")

	a.EndTime = nil
	if _, ok := p.AnalyzeConnection(a, b); ok {
		t.Fatalf("expected no descriptor without arrival time")
	}

	a.EndTime = timep(arr)
	b.StartTime = nil
	if _, ok := p.AnalyzeConnection(a, b); ok {
		t.Fatalf("expected no descriptor without departure time")
	}
}

func TestJourneyElapsed(t *testing.T) {
	t.Parallel()

	dep := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	legs := []domain.Segment{
		legWithTimes("a", dep, dep.Add(5*time.Hour), "SFO", "JFK"),
		legWithTimes("b", dep.Add(7*time.Hour), dep.Add(14*time.Hour), "JFK", "LHR"),
	}

	d, ok := domain.JourneyElapsed(legs)
	if !ok || d != 14*time.Hour {
		t.Fatalf("elapsed=%s ok=%v", d, ok)
	}

	legs[1].EndTime = nil
	if _, ok := domain.JourneyElapsed(legs); ok {
		t.Fatalf("expected no elapsed without final arrival")
	}
	if _, ok := domain.JourneyElapsed(nil); ok {
		t.Fatalf("expected no elapsed for empty journey")
	}
}

func TestIsRedEye_WindowWrapsMidnight(t *testing.T) {
	t.Parallel()

	p := domain.DefaultLayoverPolicy()
	cases := []struct {
		hour int
		want bool
	}{
		{21, false},
		{22, true},
		{23, true},
		{0, true},
		{5, true},
		{6, false},
		{12, false},
	}
	for _, tc := range cases {
		dep := time.Date(2026, 3, 10, tc.hour, 30, 0, 0, time.UTC)
		leg := legWithTimes("a", dep, dep.Add(6*time.Hour), "SFO", "JFK")
		if got := p.IsRedEye(leg); got != tc.want {
			t.Fatalf("hour=%d redEye=%v want=%v", tc.hour, got, tc.want)
		}
	}

	noTime := domain.Segment{Type: domain.SegmentTypeFlight}
	if p.IsRedEye(noTime) {
		t.Fatalf("redEye without departure time")
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		d    time.Duration
		want string
	}{
		{45 * time.Minute, "45m"},
		{3 * time.Hour, "3h"},
		{2*time.Hour + 15*time.Minute, "2h 15m"},
		{0, "0m"},
	}
	for _, tc := range cases {
		if got := domain.FormatDuration(tc.d); got != tc.want {
			t.Fatalf("FormatDuration(%s)=%q want=%q", tc.d, got, tc.want)
		}
	}
}
