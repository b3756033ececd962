package dto

import "census-gateway/internal/domain/entity"

// PatientDetailResponse joins everything the patient drawer shows: the
// census record, ranked payers, ADT history, and recent events.
type PatientDetailResponse struct {
	Patient      entity.Patient        `json:"patient"`
	Coverage     *entity.Coverage      `json:"coverage,omitempty"`
	Payers       CoverageSummary       `json:"payers"`
	AdtRecords   []entity.AdtRecord    `json:"adt_records"`
	RecentEvents []entity.PatientEvent `json:"recent_events"`
}
