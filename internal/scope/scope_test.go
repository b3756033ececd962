package scope_test

import (
	"net/http"
	"net/url"
	"testing"

	"census-gateway/internal/domain/entity"
	"census-gateway/internal/scope"

	"github.com/stretchr/testify/require"
)

func TestApply_InjectsFacilityParam(t *testing.T) {
	sc := scope.ForFacility(12)
	params := url.Values{}

	sc.Apply(http.MethodGet, "/events", params)

	require.Equal(t, "12", params.Get(scope.ParamName))
}

func TestApply_UnscopedIsNoOp(t *testing.T) {
	sc := scope.All()
	params := url.Values{}

	sc.Apply(http.MethodGet, "/events", params)

	require.Empty(t, params)
}

func TestApply_SkipsNonGetRequests(t *testing.T) {
	sc := scope.ForFacility(12)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		params := url.Values{}
		sc.Apply(method, "/events", params)
		require.Empty(t, params, "method %s", method)
	}
}

func TestApply_SkipsExcludedPaths(t *testing.T) {
	sc := scope.ForFacility(12)

	for _, path := range []string{"/patients", "/coverage", "/adt", "/login", "/facilities"} {
		params := url.Values{}
		sc.Apply(http.MethodGet, path, params)
		require.Empty(t, params, "path %s", path)
	}
}

func TestApply_NeverOverwritesCallerValue(t *testing.T) {
	sc := scope.ForFacility(12)
	params := url.Values{}
	params.Set(scope.ParamName, "99")

	sc.Apply(http.MethodGet, "/events", params)

	require.Equal(t, "99", params.Get(scope.ParamName))
}

func TestApply_Idempotent(t *testing.T) {
	sc := scope.ForFacility(12)
	params := url.Values{}

	sc.Apply(http.MethodGet, "/events", params)
	sc.Apply(http.MethodGet, "/events", params)

	require.Equal(t, []string{"12"}, params[scope.ParamName])
}

func TestIsScoped(t *testing.T) {
	require.True(t, scope.ForFacility(1).IsScoped())
	require.False(t, scope.All().IsScoped())
}

func TestMatchesPatient(t *testing.T) {
	facFive := 5
	facNine := 9
	scoped := scope.ForFacility(5)

	require.True(t, scoped.MatchesPatient(&entity.Patient{FacilityID: &facFive}))
	require.False(t, scoped.MatchesPatient(&entity.Patient{FacilityID: &facNine}))
	require.False(t, scoped.MatchesPatient(&entity.Patient{}))

	require.True(t, scope.All().MatchesPatient(&entity.Patient{}))
	require.True(t, scope.All().MatchesPatient(&entity.Patient{FacilityID: &facNine}))
}

func TestMatchesEvent_EventFacilityWins(t *testing.T) {
	scoped := scope.ForFacility(5)
	five := "5"
	nine := "9"
	facNine := 9

	event := entity.PatientEvent{Facility: &five}
	owner := entity.Patient{FacilityID: &facNine}

	// The event places the patient at facility 5 even though the census
	// still has them at 9
	require.True(t, scoped.MatchesEvent(&event, &owner))

	event.Facility = &nine
	require.False(t, scoped.MatchesEvent(&event, &owner))
}

func TestMatchesEvent_FallsBackToOwner(t *testing.T) {
	scoped := scope.ForFacility(5)
	facFive := 5
	facNine := 9

	event := entity.PatientEvent{}
	require.True(t, scoped.MatchesEvent(&event, &entity.Patient{FacilityID: &facFive}))
	require.False(t, scoped.MatchesEvent(&event, &entity.Patient{FacilityID: &facNine}))
}

func TestMatchesEvent_UnplaceableEventExcludedWhenPinned(t *testing.T) {
	// No facility field and no patient on file: a pinned scope cannot place
	// the event, so it is excluded rather than leaked into every facility
	event := entity.PatientEvent{}
	require.False(t, scope.ForFacility(5).MatchesEvent(&event, nil))
	require.True(t, scope.All().MatchesEvent(&event, nil))
}

func TestMatchesEvent_NonNumericFacilityFallsBack(t *testing.T) {
	scoped := scope.ForFacility(5)
	name := "Willow Creek"
	facFive := 5

	event := entity.PatientEvent{Facility: &name}
	require.True(t, scoped.MatchesEvent(&event, &entity.Patient{FacilityID: &facFive}))
	require.False(t, scoped.MatchesEvent(&event, nil))
}
