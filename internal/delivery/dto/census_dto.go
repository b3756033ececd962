package dto

import "census-gateway/internal/domain/entity"

// Filter values accepted by the census rows endpoint
const (
	StatusFilterAll        = "all"
	StatusFilterActive     = "active"
	StatusFilterDischarged = "discharged"

	DateRangeAll = "all"
	DateRange24h = "24h"
	DateRange7d  = "7d"
	DateRange30d = "30d"
)

// CensusFilter is the query surface of the census rows endpoint. Zero values
// mean "no filtering" for every field.
type CensusFilter struct {
	Status    string `json:"status" validate:"omitempty,oneof=all active discharged"`
	EventType string `json:"event_type"`
	Search    string `json:"search"`
	DateRange string `json:"date_range" validate:"omitempty,oneof=all 24h 7d 30d"`
}

// CensusRow is one dashboard row: a patient joined with their most recent
// event and an insurance summary. Patient is synthesized from the event when
// the census feed has not caught up with a new arrival.
type CensusRow struct {
	Patient     entity.Patient       `json:"patient"`
	LatestEvent *entity.PatientEvent `json:"latest_event,omitempty"`
	Coverage    *CoverageSummary     `json:"coverage,omitempty"`
	Placeholder bool                 `json:"placeholder,omitempty"`
}

// CensusRowsResponse is the census table payload. HasError reports that one
// of the upstream sources failed and the rows are best-effort.
type CensusRowsResponse struct {
	Rows        []CensusRow `json:"rows"`
	TotalCensus int         `json:"total_census"`
	HasError    bool        `json:"has_error"`
}

// CoverageSummary collapses a coverage record to the payer names the census
// table displays
type CoverageSummary struct {
	Primary   *string `json:"primary,omitempty"`
	Secondary *string `json:"secondary,omitempty"`
	Tertiary  *string `json:"tertiary,omitempty"`
}

// LiveUpdate is one entry on the live-updates feed
type LiveUpdate struct {
	Event       entity.PatientEvent `json:"event"`
	PatientName string              `json:"patient_name"`
	Headline    string              `json:"headline"`
}
