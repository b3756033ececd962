package dto

import "census-gateway/internal/domain/entity"

// Request DTOs

type SelectFacilityRequest struct {
	FacilityID *int `json:"facility_id" validate:"omitempty,gte=1"`
}

// Response DTOs

// FacilitySelectionResponse reports the user's current facility selection.
// A nil SelectedFacility with RequiresSelection false means the user is
// viewing all facilities.
type FacilitySelectionResponse struct {
	SelectedFacility  *int              `json:"selected_facility,omitempty"`
	RequiresSelection bool              `json:"requires_selection"`
	Available         []entity.Facility `json:"available"`
}
