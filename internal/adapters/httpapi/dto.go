package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/meridian-travel/itinerary-api/internal/app/clientshare"
	"github.com/meridian-travel/itinerary-api/internal/app/itinerary"
	"github.com/meridian-travel/itinerary-api/internal/app/trips"
	"github.com/meridian-travel/itinerary-api/internal/domain"
)

// --- request bodies ---

type createTripRequest struct {
	Name         string              `json:"name"`
	Destinations []string            `json:"destinations,omitempty"`
	StartDate    *openapi_types.Date `json:"startDate,omitempty"`
	EndDate      *openapi_types.Date `json:"endDate,omitempty"`
	Budget       *float64            `json:"budget,omitempty"`
	Currency     string              `json:"currency,omitempty"`
	Notes        *string             `json:"notes,omitempty"`
}

type updateTripRequest struct {
	Name         *string                               `json:"name,omitempty"`
	Destinations nullable.Nullable[[]string]           `json:"destinations,omitempty"`
	StartDate    nullable.Nullable[openapi_types.Date] `json:"startDate,omitempty"`
	EndDate      nullable.Nullable[openapi_types.Date] `json:"endDate,omitempty"`
	Budget       nullable.Nullable[float64]            `json:"budget,omitempty"`
	Currency     *string                               `json:"currency,omitempty"`
	Notes        nullable.Nullable[string]             `json:"notes,omitempty"`
}

type setStatusRequest struct {
	Status string `json:"status"`
}

type createVersionRequest struct {
	Name        string  `json:"name,omitempty"`
	DuplicateOf *string `json:"duplicateOf,omitempty"`
}

type updateVersionRequest struct {
	Name          *string                   `json:"name,omitempty"`
	ShowPricing   *bool                     `json:"showPricing,omitempty"`
	Discount      *float64                  `json:"discount,omitempty"`
	DiscountType  *string                   `json:"discountType,omitempty"`
	DiscountLabel nullable.Nullable[string] `json:"discountLabel,omitempty"`
}

type addSegmentRequest struct {
	Type      string `json:"type"`
	DayNumber int    `json:"dayNumber"`

	Title    string  `json:"title"`
	Subtitle *string `json:"subtitle,omitempty"`

	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`

	ConfirmationNumber *string `json:"confirmationNumber,omitempty"`

	Cost         *float64 `json:"cost,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Quantity     int      `json:"quantity,omitempty"`
	PricePerUnit *float64 `json:"pricePerUnit,omitempty"`

	Notes *string `json:"notes,omitempty"`

	Refundability  string     `json:"refundability,omitempty"`
	RefundDeadline *time.Time `json:"refundDeadline,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`

	JourneyID       *string `json:"journeyId,omitempty"`
	PropertyGroupID *string `json:"propertyGroupId,omitempty"`
}

type updateSegmentRequest struct {
	Type      *string `json:"type,omitempty"`
	DayNumber *int    `json:"dayNumber,omitempty"`
	Title     *string `json:"title,omitempty"`

	Subtitle nullable.Nullable[string] `json:"subtitle,omitempty"`

	StartTime nullable.Nullable[time.Time] `json:"startTime,omitempty"`
	EndTime   nullable.Nullable[time.Time] `json:"endTime,omitempty"`

	ConfirmationNumber nullable.Nullable[string] `json:"confirmationNumber,omitempty"`

	Cost         nullable.Nullable[float64] `json:"cost,omitempty"`
	Currency     *string                    `json:"currency,omitempty"`
	Quantity     *int                       `json:"quantity,omitempty"`
	PricePerUnit nullable.Nullable[float64] `json:"pricePerUnit,omitempty"`

	Notes nullable.Nullable[string] `json:"notes,omitempty"`

	Refundability  *string                      `json:"refundability,omitempty"`
	RefundDeadline nullable.Nullable[time.Time] `json:"refundDeadline,omitempty"`

	Metadata nullable.Nullable[map[string]any] `json:"metadata,omitempty"`

	JourneyID       nullable.Nullable[string] `json:"journeyId,omitempty"`
	PropertyGroupID nullable.Nullable[string] `json:"propertyGroupId,omitempty"`
}

type reorderDayRequest struct {
	SegmentIDs []string `json:"segmentIds"`
}

type addVariantRequest struct {
	Label       string `json:"label"`
	VariantType string `json:"variantType"`

	Cost         *float64 `json:"cost,omitempty"`
	Currency     string   `json:"currency,omitempty"`
	Quantity     int      `json:"quantity,omitempty"`
	PricePerUnit *float64 `json:"pricePerUnit,omitempty"`

	Refundability  string     `json:"refundability,omitempty"`
	RefundDeadline *time.Time `json:"refundDeadline,omitempty"`
}

type updateVariantRequest struct {
	Label       *string `json:"label,omitempty"`
	VariantType *string `json:"variantType,omitempty"`

	Cost         nullable.Nullable[float64] `json:"cost,omitempty"`
	Currency     *string                    `json:"currency,omitempty"`
	Quantity     *int                       `json:"quantity,omitempty"`
	PricePerUnit nullable.Nullable[float64] `json:"pricePerUnit,omitempty"`

	Refundability  *string                      `json:"refundability,omitempty"`
	RefundDeadline nullable.Nullable[time.Time] `json:"refundDeadline,omitempty"`
}

type flightStatusRequest struct {
	Status       string  `json:"status"`
	DelayMinutes *int    `json:"delayMinutes,omitempty"`
	Gate         *string `json:"gate,omitempty"`
	Terminal     *string `json:"terminal,omitempty"`
}

type selectVariantRequest struct {
	// VariantID null or absent selects the primary option.
	VariantID nullable.Nullable[string] `json:"variantId,omitempty"`
}

// --- response bodies ---

type tripCreatedDTO struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	PrimaryVersionID string `json:"primaryVersionId"`
}

type tripSummaryDTO struct {
	ID                string              `json:"id"`
	Name              string              `json:"name"`
	Destinations      []string            `json:"destinations"`
	StartDate         *openapi_types.Date `json:"startDate,omitempty"`
	EndDate           *openapi_types.Date `json:"endDate,omitempty"`
	Status            string              `json:"status"`
	Budget            *float64            `json:"budget,omitempty"`
	Currency          string              `json:"currency"`
	ApprovedVersionID *string             `json:"approvedVersionId,omitempty"`
	SharingEnabled    bool                `json:"sharingEnabled"`
}

type tripDetailsDTO struct {
	tripSummaryDTO

	Notes     *string             `json:"notes,omitempty"`
	Versions  []versionSummaryDTO `json:"versions"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
}

type versionSummaryDTO struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	IsPrimary     bool    `json:"isPrimary"`
	ShowPricing   bool    `json:"showPricing"`
	Discount      float64 `json:"discount"`
	DiscountType  string  `json:"discountType"`
	DiscountLabel *string `json:"discountLabel,omitempty"`
	SegmentCount  int     `json:"segmentCount"`
}

type shareStateDTO struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token,omitempty"`
}

type segmentDTO struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	DayNumber int    `json:"dayNumber"`

	Title    string  `json:"title"`
	Subtitle *string `json:"subtitle,omitempty"`

	StartTime *time.Time `json:"startTime,omitempty"`
	EndTime   *time.Time `json:"endTime,omitempty"`

	ConfirmationNumber *string `json:"confirmationNumber,omitempty"`

	Cost         *float64 `json:"cost,omitempty"`
	Currency     string   `json:"currency"`
	Quantity     int      `json:"quantity"`
	PricePerUnit *float64 `json:"pricePerUnit,omitempty"`

	Notes *string `json:"notes,omitempty"`

	Refundability  string     `json:"refundability"`
	RefundDeadline *time.Time `json:"refundDeadline,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`

	HasVariants bool `json:"hasVariants"`

	JourneyID       *string `json:"journeyId,omitempty"`
	PropertyGroupID *string `json:"propertyGroupId,omitempty"`
}

type variantDTO struct {
	ID        string `json:"id"`
	SegmentID string `json:"segmentId"`

	Label       string `json:"label"`
	VariantType string `json:"variantType"`

	Cost         *float64 `json:"cost,omitempty"`
	Currency     string   `json:"currency"`
	Quantity     int      `json:"quantity"`
	PricePerUnit *float64 `json:"pricePerUnit,omitempty"`

	Refundability  string     `json:"refundability"`
	RefundDeadline *time.Time `json:"refundDeadline,omitempty"`
}

type flightStatusDTO struct {
	SegmentID     string    `json:"segmentId"`
	Status        string    `json:"status"`
	DelayMinutes  *int      `json:"delayMinutes,omitempty"`
	Gate          *string   `json:"gate,omitempty"`
	Terminal      *string   `json:"terminal,omitempty"`
	LastCheckedAt time.Time `json:"lastCheckedAt"`
}

type segmentViewDTO struct {
	segmentDTO

	Variants     []variantDTO     `json:"variants,omitempty"`
	UnitPrice    *float64         `json:"unitPrice,omitempty"`
	RedEye       bool             `json:"redEye,omitempty"`
	FlightStatus *flightStatusDTO `json:"flightStatus,omitempty"`
}

type connectionDTO struct {
	DurationMinutes int    `json:"durationMinutes,omitempty"`
	Label           string `json:"label"`
	Flag            string `json:"flag,omitempty"`
	AirportChange   bool   `json:"airportChange,omitempty"`
	Known           bool   `json:"known"`
}

type journeyViewDTO struct {
	ID          string           `json:"id"`
	Legs        []segmentViewDTO `json:"legs"`
	Connections []connectionDTO  `json:"connections"`
	Elapsed     string           `json:"elapsed,omitempty"`
	Subtotal    float64          `json:"subtotal"`
}

type propertyGroupViewDTO struct {
	ID       string           `json:"id"`
	Rooms    []segmentViewDTO `json:"rooms"`
	Subtotal float64          `json:"subtotal"`
}

type dayItemDTO struct {
	Kind          string                `json:"kind"`
	Segment       *segmentViewDTO       `json:"segment,omitempty"`
	Journey       *journeyViewDTO       `json:"journey,omitempty"`
	PropertyGroup *propertyGroupViewDTO `json:"propertyGroup,omitempty"`
}

type dayViewDTO struct {
	DayNumber int          `json:"dayNumber"`
	Items     []dayItemDTO `json:"items"`
	Subtotal  float64      `json:"subtotal"`
}

type pricingDTO struct {
	Subtotal      float64 `json:"subtotal"`
	DiscountValue float64 `json:"discountValue"`
	Total         float64 `json:"total"`
}

type budgetDTO struct {
	Enabled    bool    `json:"enabled"`
	Budget     float64 `json:"budget,omitempty"`
	Total      float64 `json:"total,omitempty"`
	Percentage float64 `json:"percentage,omitempty"`
	Remaining  float64 `json:"remaining,omitempty"`
	Status     string  `json:"status,omitempty"`
}

type versionViewDTO struct {
	ID          string `json:"id"`
	TripID      string `json:"tripId"`
	Name        string `json:"name"`
	IsPrimary   bool   `json:"isPrimary"`
	ShowPricing bool   `json:"showPricing"`

	Days []dayViewDTO `json:"days"`

	Discount      float64 `json:"discount"`
	DiscountType  string  `json:"discountType"`
	DiscountLabel *string `json:"discountLabel,omitempty"`

	Pricing  pricingDTO `json:"pricing"`
	Budget   budgetDTO  `json:"budget"`
	Currency string     `json:"currency"`
}

type selectionDTO struct {
	SegmentID         string     `json:"segmentId"`
	SelectedVariantID *string    `json:"selectedVariantId,omitempty"`
	Submitted         bool       `json:"submitted"`
	SubmittedAt       *time.Time `json:"submittedAt,omitempty"`
}

type shareViewDTO struct {
	TripID       string              `json:"tripId"`
	TripName     string              `json:"tripName"`
	Destinations []string            `json:"destinations"`
	StartDate    *openapi_types.Date `json:"startDate,omitempty"`
	EndDate      *openapi_types.Date `json:"endDate,omitempty"`
	Status       string              `json:"status"`
	Currency     string              `json:"currency"`

	Version    versionViewDTO `json:"version"`
	Selections []selectionDTO `json:"selections"`

	Approved   bool       `json:"approved"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
}

type submitResultDTO struct {
	LockedSegmentIDs []string  `json:"lockedSegmentIds"`
	SubmittedAt      time.Time `json:"submittedAt"`
}

type approvalDTO struct {
	TripID     string    `json:"tripId"`
	VersionID  string    `json:"versionId"`
	ApprovedAt time.Time `json:"approvedAt"`
}

// --- mapping ---

func dateFromTime(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}

func timeFromDate(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time.UTC()
	return &t
}

func optFromNullable[T any](n nullable.Nullable[T]) trips.Optional[T] {
	if !n.IsSpecified() {
		return trips.Unspecified[T]()
	}
	if n.IsNull() {
		return trips.Null[T]()
	}
	return trips.Some(n.MustGet())
}

func optTimeFromNullableDate(n nullable.Nullable[openapi_types.Date]) trips.Optional[time.Time] {
	if !n.IsSpecified() {
		return trips.Unspecified[time.Time]()
	}
	if n.IsNull() {
		return trips.Null[time.Time]()
	}
	return trips.Some(n.MustGet().Time.UTC())
}

func itinOptFromNullable[T any](n nullable.Nullable[T]) itinerary.Optional[T] {
	if !n.IsSpecified() {
		return itinerary.Unspecified[T]()
	}
	if n.IsNull() {
		return itinerary.Null[T]()
	}
	return itinerary.Some(n.MustGet())
}

func tripSummaryDTOFromDomain(t domain.TripSummary) tripSummaryDTO {
	dto := tripSummaryDTO{
		ID:             string(t.ID),
		Name:           t.Name,
		Destinations:   t.Destinations,
		StartDate:      dateFromTime(t.StartDate),
		EndDate:        dateFromTime(t.EndDate),
		Status:         string(t.Status),
		Budget:         t.Budget,
		Currency:       t.Currency,
		SharingEnabled: t.SharingEnabled,
	}
	if dto.Destinations == nil {
		dto.Destinations = []string{}
	}
	if t.ApprovedVersionID != nil {
		v := string(*t.ApprovedVersionID)
		dto.ApprovedVersionID = &v
	}
	return dto
}

func tripDetailsDTOFromDomain(t domain.TripDetails) tripDetailsDTO {
	versions := make([]versionSummaryDTO, 0, len(t.Versions))
	for _, v := range t.Versions {
		versions = append(versions, versionSummaryDTOFromDomain(v))
	}
	return tripDetailsDTO{
		tripSummaryDTO: tripSummaryDTOFromDomain(t.TripSummary),
		Notes:          t.Notes,
		Versions:       versions,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}
}

func versionSummaryDTOFromDomain(v domain.VersionSummary) versionSummaryDTO {
	return versionSummaryDTO{
		ID:            string(v.ID),
		Name:          v.Name,
		IsPrimary:     v.IsPrimary,
		ShowPricing:   v.ShowPricing,
		Discount:      v.Discount,
		DiscountType:  string(v.DiscountType),
		DiscountLabel: v.DiscountLabel,
		SegmentCount:  v.SegmentCount,
	}
}

func segmentDTOFromDomain(s domain.Segment) segmentDTO {
	return segmentDTO{
		ID:                 string(s.ID),
		Type:               string(s.Type),
		DayNumber:          s.DayNumber,
		Title:              s.Title,
		Subtitle:           s.Subtitle,
		StartTime:          s.StartTime,
		EndTime:            s.EndTime,
		ConfirmationNumber: s.ConfirmationNumber,
		Cost:               s.Cost,
		Currency:           s.Currency,
		Quantity:           s.Quantity,
		PricePerUnit:       s.PricePerUnit,
		Notes:              s.Notes,
		Refundability:      string(s.Refundability),
		RefundDeadline:     s.RefundDeadline,
		Metadata:           s.Metadata,
		HasVariants:        s.HasVariants,
		JourneyID:          s.JourneyID,
		PropertyGroupID:    s.PropertyGroupID,
	}
}

func variantDTOFromDomain(v domain.Variant) variantDTO {
	return variantDTO{
		ID:             string(v.ID),
		SegmentID:      string(v.SegmentID),
		Label:          v.Label,
		VariantType:    string(v.VariantType),
		Cost:           v.Cost,
		Currency:       v.Currency,
		Quantity:       v.Quantity,
		PricePerUnit:   v.PricePerUnit,
		Refundability:  string(v.Refundability),
		RefundDeadline: v.RefundDeadline,
	}
}

func flightStatusDTOFromDomain(s domain.FlightStatusSnapshot) flightStatusDTO {
	return flightStatusDTO{
		SegmentID:     string(s.SegmentID),
		Status:        string(s.Status),
		DelayMinutes:  s.DelayMinutes,
		Gate:          s.Gate,
		Terminal:      s.Terminal,
		LastCheckedAt: s.LastCheckedAt,
	}
}

func segmentViewDTOFromApp(sv itinerary.SegmentView) segmentViewDTO {
	dto := segmentViewDTO{
		segmentDTO: segmentDTOFromDomain(sv.Segment),
		UnitPrice:  sv.UnitPrice,
		RedEye:     sv.RedEye,
	}
	if len(sv.Variants) > 0 {
		dto.Variants = make([]variantDTO, 0, len(sv.Variants))
		for _, v := range sv.Variants {
			dto.Variants = append(dto.Variants, variantDTOFromDomain(v))
		}
	}
	if sv.FlightStatus != nil {
		fs := flightStatusDTOFromDomain(*sv.FlightStatus)
		dto.FlightStatus = &fs
	}
	return dto
}

func dayItemDTOFromApp(item itinerary.ItemView) dayItemDTO {
	dto := dayItemDTO{Kind: string(item.Kind)}
	switch item.Kind {
	case domain.DayItemJourney:
		legs := make([]segmentViewDTO, 0, len(item.Journey.Legs))
		for _, leg := range item.Journey.Legs {
			legs = append(legs, segmentViewDTOFromApp(leg))
		}
		conns := make([]connectionDTO, 0, len(item.Journey.Connections))
		for _, c := range item.Journey.Connections {
			conns = append(conns, connectionDTO{
				DurationMinutes: int(c.Duration.Minutes()),
				Label:           c.Label,
				Flag:            string(c.Flag),
				AirportChange:   c.AirportChange,
				Known:           c.Known,
			})
		}
		dto.Journey = &journeyViewDTO{
			ID:          item.Journey.ID,
			Legs:        legs,
			Connections: conns,
			Elapsed:     item.Journey.Elapsed,
			Subtotal:    item.Journey.Subtotal,
		}
	case domain.DayItemPropertyGroup:
		rooms := make([]segmentViewDTO, 0, len(item.PropertyGroup.Rooms))
		for _, room := range item.PropertyGroup.Rooms {
			rooms = append(rooms, segmentViewDTOFromApp(room))
		}
		dto.PropertyGroup = &propertyGroupViewDTO{
			ID:       item.PropertyGroup.ID,
			Rooms:    rooms,
			Subtotal: item.PropertyGroup.Subtotal,
		}
	default:
		sv := segmentViewDTOFromApp(*item.Segment)
		dto.Segment = &sv
	}
	return dto
}

func versionViewDTOFromApp(v itinerary.VersionView) versionViewDTO {
	days := make([]dayViewDTO, 0, len(v.Days))
	for _, day := range v.Days {
		items := make([]dayItemDTO, 0, len(day.Items))
		for _, item := range day.Items {
			items = append(items, dayItemDTOFromApp(item))
		}
		days = append(days, dayViewDTO{
			DayNumber: day.DayNumber,
			Items:     items,
			Subtotal:  day.Subtotal,
		})
	}
	return versionViewDTO{
		ID:            string(v.ID),
		TripID:        string(v.TripID),
		Name:          v.Name,
		IsPrimary:     v.IsPrimary,
		ShowPricing:   v.ShowPricing,
		Days:          days,
		Discount:      v.Discount,
		DiscountType:  string(v.DiscountType),
		DiscountLabel: v.DiscountLabel,
		Pricing: pricingDTO{
			Subtotal:      v.Pricing.Subtotal,
			DiscountValue: v.Pricing.DiscountValue,
			Total:         v.Pricing.Total,
		},
		Budget: budgetDTO{
			Enabled:    v.Budget.Enabled,
			Budget:     v.Budget.Budget,
			Total:      v.Budget.Total,
			Percentage: v.Budget.Percentage,
			Remaining:  v.Budget.Remaining,
			Status:     string(v.Budget.Status),
		},
		Currency: v.Currency,
	}
}

func selectionDTOFromApp(sel clientshare.SelectionView) selectionDTO {
	dto := selectionDTO{
		SegmentID:   string(sel.SegmentID),
		Submitted:   sel.Submitted,
		SubmittedAt: sel.SubmittedAt,
	}
	if sel.SelectedVariantID != nil {
		v := string(*sel.SelectedVariantID)
		dto.SelectedVariantID = &v
	}
	return dto
}

func shareViewDTOFromApp(v clientshare.TripView) shareViewDTO {
	selections := make([]selectionDTO, 0, len(v.Selections))
	for _, sel := range v.Selections {
		selections = append(selections, selectionDTOFromApp(sel))
	}
	dests := v.Destinations
	if dests == nil {
		dests = []string{}
	}
	return shareViewDTO{
		TripID:       string(v.TripID),
		TripName:     v.TripName,
		Destinations: dests,
		StartDate:    dateFromTime(v.StartDate),
		EndDate:      dateFromTime(v.EndDate),
		Status:       string(v.Status),
		Currency:     v.Currency,
		Version:      versionViewDTOFromApp(v.Version),
		Selections:   selections,
		Approved:     v.Approved,
		ApprovedAt:   v.ApprovedAt,
	}
}
