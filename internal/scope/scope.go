// Package scope narrows upstream requests and in-memory records to a single
// facility. A nil facility means "all facilities" and leaves everything
// untouched.
package scope

import (
	"net/http"
	"net/url"
	"strconv"

	"census-gateway/internal/domain/entity"
)

// ParamName is the query parameter the upstream uses for facility filtering.
const ParamName = "facId"

// Paths that must never receive a facility parameter. Patients, coverage and
// ADT history are fetched unscoped and filtered locally; auth and facility
// listing are facility-agnostic by nature.
var excludedPaths = map[string]bool{
	"/patients":   true,
	"/coverage":   true,
	"/adt":        true,
	"/login":      true,
	"/facilities": true,
}

// Scope is a facility filter. The zero value is unscoped.
type Scope struct {
	FacilityID *int
}

// ForFacility returns a scope pinned to one facility
func ForFacility(facID int) Scope {
	return Scope{FacilityID: &facID}
}

// All returns the unscoped scope
func All() Scope {
	return Scope{}
}

// IsScoped reports whether the scope pins a facility
func (s Scope) IsScoped() bool {
	return s.FacilityID != nil
}

// Apply injects the facility parameter into query params for a GET request.
// It never overwrites a caller-supplied value, never touches non-GET
// requests, and skips excluded paths. Applying the same scope twice is a
// no-op, so callers may layer it defensively.
func (s Scope) Apply(method, path string, params url.Values) {
	if s.FacilityID == nil {
		return
	}
	if method != http.MethodGet {
		return
	}
	if excludedPaths[path] {
		return
	}
	if params.Get(ParamName) != "" {
		return
	}
	params.Set(ParamName, strconv.Itoa(*s.FacilityID))
}

// MatchesPatient reports whether the patient belongs to the scoped facility.
// Patients without a facility id never match a pinned scope.
func (s Scope) MatchesPatient(p *entity.Patient) bool {
	if s.FacilityID == nil {
		return true
	}
	if p.FacilityID == nil {
		return false
	}
	return *p.FacilityID == *s.FacilityID
}

// MatchesEvent reports whether the event belongs to the scoped facility.
// The event's own facility field wins when present; otherwise the owning
// patient decides. An event that names no facility and has no patient on
// file cannot be placed anywhere, so a pinned scope excludes it.
func (s Scope) MatchesEvent(e *entity.PatientEvent, owner *entity.Patient) bool {
	if s.FacilityID == nil {
		return true
	}
	if facID, ok := e.FacilityID(); ok {
		return facID == *s.FacilityID
	}
	if owner != nil {
		return s.MatchesPatient(owner)
	}
	return false
}
