package converter

import (
	"encoding/json"

	"census-gateway/internal/domain/entity"
)

type dataEnvelope[T any] struct {
	Data []T `json:"data"`
}

// ParsePatients decodes a census patients payload. The upstream wraps the
// list in a {"data": [...]} envelope; anything else reads as an empty census.
func ParsePatients(raw []byte) []entity.Patient {
	var envelope dataEnvelope[entity.Patient]
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Data == nil {
		return []entity.Patient{}
	}
	return envelope.Data
}

// ParsePatient extracts a single patient from a patients payload. The
// upstream answers point lookups with a one-element list.
func ParsePatient(raw []byte) (*entity.Patient, bool) {
	patients := ParsePatients(raw)
	if len(patients) == 0 {
		return nil, false
	}
	return &patients[0], true
}
