package converter

import (
	"encoding/json"
	"sort"
	"strings"

	"census-gateway/internal/domain/entity"
)

// ParseFacilities decodes a facilities payload. The upstream has shipped
// several shapes over time: a bare array, {"data": [...]}, and
// {"facilities": [...]}. Inactive facilities are dropped and the rest are
// sorted by name for stable dropdown rendering.
func ParseFacilities(raw []byte) []entity.Facility {
	facilities := decodeFacilityPayload(raw)

	active := make([]entity.Facility, 0, len(facilities))
	for _, facility := range facilities {
		if !facility.Active {
			continue
		}
		active = append(active, facility)
	}

	sort.SliceStable(active, func(i, j int) bool {
		return strings.ToLower(active[i].FacilityName) < strings.ToLower(active[j].FacilityName)
	})

	return active
}

func decodeFacilityPayload(raw []byte) []entity.Facility {
	var list []entity.Facility
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var envelope struct {
		Data       []entity.Facility `json:"data"`
		Facilities []entity.Facility `json:"facilities"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}
	if envelope.Data != nil {
		return envelope.Data
	}
	if envelope.Facilities != nil {
		return envelope.Facilities
	}

	// Single-facility deployments answer with one bare object
	var single entity.Facility
	if err := json.Unmarshal(raw, &single); err == nil && single.FacID != 0 {
		return []entity.Facility{single}
	}
	return nil
}
