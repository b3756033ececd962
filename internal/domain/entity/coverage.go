package entity

// PayerRank orders a patient's payers
type PayerRank string

const (
	PayerRankPrimary   PayerRank = "Primary"
	PayerRankSecondary PayerRank = "Secondary"
	PayerRankTertiary  PayerRank = "Tertiary"
)

// Payer is one insurance payer on a patient's coverage record
type Payer struct {
	PayerID   *int      `json:"payerId,omitempty"`
	PayerName string    `json:"payerName"`
	PayerCode *string   `json:"payerCode,omitempty"`
	PayerRank PayerRank `json:"payerRank"`
	PayerType *string   `json:"payerType,omitempty"`
}

// Coverage is a patient's insurance coverage as returned by the upstream.
// Absence of coverage is a normal state: the dashboard renders it as
// "no insurance", never as an error.
type Coverage struct {
	CoverageID *int    `json:"coverageId,omitempty"`
	PatientID  int     `json:"patientId"`
	Payers     []Payer `json:"payers"`
}

// PayerByRank returns the first payer carrying the given rank. First match
// wins when the upstream delivers duplicate ranks.
func (c *Coverage) PayerByRank(rank PayerRank) *Payer {
	for i := range c.Payers {
		if c.Payers[i].PayerRank == rank {
			return &c.Payers[i]
		}
	}
	return nil
}
