package converter

import (
	"encoding/json"
	"sort"
	"time"

	"census-gateway/internal/domain/entity"
)

// ParseAdtRecords decodes an ADT history payload, drops cancelled records,
// and orders the rest by effective date, most recent first.
func ParseAdtRecords(raw []byte) []entity.AdtRecord {
	var envelope dataEnvelope[entity.AdtRecord]
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Data == nil {
		return []entity.AdtRecord{}
	}

	records := make([]entity.AdtRecord, 0, len(envelope.Data))
	for _, record := range envelope.Data {
		if record.IsCancelledRecord {
			continue
		}
		records = append(records, record)
	}

	sort.SliceStable(records, func(i, j int) bool {
		ti, iErr := time.Parse(time.RFC3339, records[i].EffectiveDateTime)
		tj, jErr := time.Parse(time.RFC3339, records[j].EffectiveDateTime)
		if (iErr == nil) != (jErr == nil) {
			return iErr == nil
		}
		if iErr != nil {
			return false
		}
		return ti.After(tj)
	})

	return records
}
