package entity

// Standard ADT action types. The upstream also sends site-specific codes,
// so the field stays an open string.
const (
	AdtActionAdmission = "Admission"
	AdtActionDischarge = "Discharge"
	AdtActionTransfer  = "Transfer"
)

// AdtRecord is one admission/discharge/transfer history entry for a patient
type AdtRecord struct {
	AdtRecordID        int     `json:"adtRecordId"`
	PatientID          int     `json:"patientId"`
	EnteredBy          string  `json:"enteredBy,omitempty"`
	ActionType         string  `json:"actionType,omitempty"`
	ActionCode         string  `json:"actionCode,omitempty"`
	StandardActionType string  `json:"standardActionType"`
	PayerName          *string `json:"payerName,omitempty"`
	PayerType          *string `json:"payerType,omitempty"`
	PayerCode          *string `json:"payerCode,omitempty"`
	AdmissionType      *string `json:"admissionType,omitempty"`
	AdmissionSource    *string `json:"admissionSource,omitempty"`
	Outpatient         bool    `json:"outpatient"`
	BedID              *int    `json:"bedId,omitempty"`
	BedDesc            *string `json:"bedDesc,omitempty"`
	RoomID             *int    `json:"roomId,omitempty"`
	RoomDesc           *string `json:"roomDesc,omitempty"`
	FloorID            *int    `json:"floorId,omitempty"`
	FloorDesc          *string `json:"floorDesc,omitempty"`
	UnitID             *int    `json:"unitId,omitempty"`
	UnitDesc           *string `json:"unitDesc,omitempty"`
	Origin             *string `json:"origin,omitempty"`
	OriginType         *string `json:"originType,omitempty"`
	Destination        *string `json:"destination,omitempty"`
	DestinationType    *string `json:"destinationType,omitempty"`
	DischargeStatus    *string `json:"dischargeStatus,omitempty"`
	IsCancelledRecord  bool    `json:"isCancelledRecord"`
	ModifiedDateTime   string  `json:"modifiedDateTime,omitempty"`
	EffectiveDateTime  string  `json:"effectiveDateTime"`
	EnteredDate        string  `json:"enteredDate,omitempty"`
}
