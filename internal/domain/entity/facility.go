package entity

// Facility is a long-term-care facility served by the census feed. Facilities
// come from the upstream, not the local database; the gateway only caches a
// user's current selection.
type Facility struct {
	FacID        int    `json:"facId"`
	FacilityName string `json:"facilityName"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	Zip          string `json:"zip,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Fax          string `json:"fax,omitempty"`
	Active       bool   `json:"active"`
	HeadOffice   bool   `json:"headOffice"`
	BedCount     *int   `json:"bedCount,omitempty"`
}
