package entity

// PatientStatus represents the census status delivered by the upstream feed
type PatientStatus string

const (
	PatientStatusNew        PatientStatus = "New"
	PatientStatusCurrent    PatientStatus = "Current"
	PatientStatusDischarged PatientStatus = "Discharged"
)

// Patient is the canonical census patient record. It mirrors the upstream
// census feed and is read-only on this side: the gateway never mutates
// patients, it only re-fetches them.
type Patient struct {
	PatientID      int           `json:"patientId"`
	FirstName      string        `json:"firstName"`
	LastName       string        `json:"lastName"`
	BirthDate      string        `json:"birthDate,omitempty"`
	Gender         string        `json:"gender,omitempty"`
	PatientStatus  PatientStatus `json:"patientStatus"`
	FacilityID     *int          `json:"facId,omitempty"`
	MedicareNumber string        `json:"medicareNumber,omitempty"`
	AdmissionDate  string        `json:"admissionDate,omitempty"`
	RoomID         *int          `json:"roomId,omitempty"`
	RoomDesc       string        `json:"roomDesc,omitempty"`
	BedDesc        string        `json:"bedDesc,omitempty"`
	FloorID        *int          `json:"floorId,omitempty"`
	FloorDesc      string        `json:"floorDesc,omitempty"`
	UnitID         *int          `json:"unitId,omitempty"`
	UnitDesc       string        `json:"unitDesc,omitempty"`
}

// DisplayName renders the "Last, First" form used for search and sorting.
func (p *Patient) DisplayName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	if p.FirstName == "" {
		return p.LastName
	}
	return p.LastName + ", " + p.FirstName
}

// IsDischarged checks if the patient has left the census
func (p *Patient) IsDischarged() bool {
	return p.PatientStatus == PatientStatusDischarged
}
