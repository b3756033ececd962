package converter

import (
	"encoding/json"

	"census-gateway/internal/delivery/dto"
	"census-gateway/internal/domain/entity"
)

// ParseCoverage extracts a patient's coverage from a coverage payload.
// An empty data list means the patient genuinely has no coverage on file,
// which callers must treat as a normal answer, not a failure.
func ParseCoverage(raw []byte) *entity.Coverage {
	var envelope dataEnvelope[entity.Coverage]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}
	if len(envelope.Data) == 0 {
		return nil
	}
	return &envelope.Data[0]
}

// CoverageToSummary collapses a coverage record to the ranked payer names
// shown on the census table
func CoverageToSummary(coverage *entity.Coverage) *dto.CoverageSummary {
	if coverage == nil {
		return nil
	}
	summary := &dto.CoverageSummary{}
	if p := coverage.PayerByRank(entity.PayerRankPrimary); p != nil {
		summary.Primary = &p.PayerName
	}
	if p := coverage.PayerByRank(entity.PayerRankSecondary); p != nil {
		summary.Secondary = &p.PayerName
	}
	if p := coverage.PayerByRank(entity.PayerRankTertiary); p != nil {
		summary.Tertiary = &p.PayerName
	}
	return summary
}
