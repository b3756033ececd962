package entity

import (
	"strconv"
	"strings"
	"time"
)

// Well-known event types. The set is open: unknown types still flow through
// the pipeline and render generically on the dashboard.
const (
	EventTypeAdmission       = "Admission"
	EventTypeDischarge       = "Discharge"
	EventTypeTransfer        = "Transfer"
	EventTypeHOA             = "HOA"
	EventTypeRoomChange      = "RoomChange"
	EventTypeInsuranceUpdate = "InsuranceUpdate"
	EventTypeDeath           = "Death"
)

// ImportantEventTypes are the types surfaced on the live-updates feed.
var ImportantEventTypes = []string{
	EventTypeRoomChange,
	EventTypeInsuranceUpdate,
	EventTypeDeath,
}

// PatientEvent is the canonical, alias-resolved form of a raw upstream event.
// Instances are immutable once normalized; a new fetch replaces the whole
// working set.
type PatientEvent struct {
	EventID     string `json:"eventId"`
	EventType   string `json:"eventType"`
	PatientID   int    `json:"patientId"`
	PatientName string `json:"patientName"`

	// Timestamp is kept verbatim: the upstream delivers ISO-ish strings that
	// are not always parseable, and the raw value still has display value.
	Timestamp string `json:"timestamp"`

	Room             *string `json:"room,omitempty"`
	PreviousRoom     *string `json:"previousRoom,omitempty"`
	Origin           *string `json:"origin,omitempty"`
	OriginType       *string `json:"originType,omitempty"`
	Destination      *string `json:"destination,omitempty"`
	DestinationType  *string `json:"destinationType,omitempty"`
	Facility         *string `json:"facility,omitempty"`
	PreviousFacility *string `json:"previousFacility,omitempty"`
	PreviousProvider *string `json:"previousProvider,omitempty"`
	CurrentProvider  *string `json:"currentProvider,omitempty"`
}

var eventTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time parses the event timestamp. The second return value reports whether
// the timestamp was parseable; callers must treat false as "unknown time",
// never as an error.
func (e *PatientEvent) Time() (time.Time, bool) {
	ts := strings.TrimSpace(e.Timestamp)
	if ts == "" {
		return time.Time{}, false
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FacilityID coerces the event's own facility field (string or numeric at
// the source) to an integer identifier. Events without a usable facility
// field return false and fall back to the owning patient's facility.
func (e *PatientEvent) FacilityID() (int, bool) {
	if e.Facility == nil {
		return 0, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(*e.Facility))
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsImportant checks membership in the live-updates type set
func (e *PatientEvent) IsImportant() bool {
	for _, t := range ImportantEventTypes {
		if e.EventType == t {
			return true
		}
	}
	return false
}
