package usecase_test

import (
	"context"
	"testing"
	"time"

	"census-gateway/internal/delivery/dto"
	"census-gateway/internal/domain/entity"
	"census-gateway/internal/scope"
	"census-gateway/internal/usecase"

	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func recentTimestamp(age time.Duration) string {
	return time.Now().Add(-age).UTC().Format(time.RFC3339)
}

func newDashboardUsecase(census *fakeCensusService, batcher *fakeCoverageBatcher) usecase.DashboardUsecase {
	if batcher.coverage == nil {
		batcher.coverage = make(map[int]*entity.Coverage)
	}
	return usecase.NewDashboardUsecase(testLogger(), census, batcher, 10)
}

func TestGetCensusRows_OneRowPerPatientInRecencyOrder(t *testing.T) {
	census := &fakeCensusService{
		patients: []entity.Patient{
			{PatientID: 1, FirstName: "John", LastName: "Doe", PatientStatus: entity.PatientStatusCurrent},
			{PatientID: 2, FirstName: "Jane", LastName: "Smith", PatientStatus: entity.PatientStatusCurrent},
		},
		// Events arrive pre-sorted most recent first
		events: []entity.PatientEvent{
			{EventID: "e3", EventType: "Transfer", PatientID: 2, Timestamp: recentTimestamp(time.Hour)},
			{EventID: "e2", EventType: "RoomChange", PatientID: 1, Timestamp: recentTimestamp(2 * time.Hour)},
			{EventID: "e1", EventType: "Admission", PatientID: 2, Timestamp: recentTimestamp(3 * time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	result, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	// Patient 2's latest event is e3, and it outranks patient 1's e2
	require.Equal(t, 2, result.Rows[0].Patient.PatientID)
	require.Equal(t, "e3", result.Rows[0].LatestEvent.EventID)
	require.Equal(t, 1, result.Rows[1].Patient.PatientID)
	require.Equal(t, "e2", result.Rows[1].LatestEvent.EventID)
	require.False(t, result.HasError)
}

func TestGetCensusRows_PatientsWithoutEventsAreHidden(t *testing.T) {
	census := &fakeCensusService{
		patients: []entity.Patient{
			{PatientID: 1, PatientStatus: entity.PatientStatusCurrent},
			{PatientID: 2, PatientStatus: entity.PatientStatusCurrent},
		},
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "Admission", PatientID: 1, Timestamp: recentTimestamp(time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	result, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.Equal(t, 1, result.Rows[0].Patient.PatientID)

	// Patient 2 still counts toward the census total
	require.Equal(t, 2, result.TotalCensus)
}

func TestGetCensusRows_PlaceholderForUnknownPatient(t *testing.T) {
	census := &fakeCensusService{
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "Admission", PatientID: 77, PatientName: "Doe, John", Timestamp: recentTimestamp(time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	result, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)

	row := result.Rows[0]
	require.True(t, row.Placeholder)
	require.Equal(t, 77, row.Patient.PatientID)
	require.Equal(t, "John", row.Patient.FirstName)
	require.Equal(t, "Doe", row.Patient.LastName)
	require.Equal(t, entity.PatientStatusCurrent, row.Patient.PatientStatus)
}

func TestGetCensusRows_PlaceholderNameWithoutComma(t *testing.T) {
	census := &fakeCensusService{
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "Admission", PatientID: 88, PatientName: "Mary Jane Watson", Timestamp: recentTimestamp(time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	result, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.Equal(t, "Mary", result.Rows[0].Patient.FirstName)
	require.Equal(t, "Jane Watson", result.Rows[0].Patient.LastName)
}

func TestGetCensusRows_SkipsEventsWithoutPatientID(t *testing.T) {
	census := &fakeCensusService{
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "Admission", PatientID: 0, Timestamp: recentTimestamp(time.Hour)},
			{EventID: "e2", EventType: "Admission", PatientID: -3, Timestamp: recentTimestamp(time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	result, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{})
	require.NoError(t, err)
	require.Empty(t, result.Rows)
}

func TestGetCensusRows_StatusFilter(t *testing.T) {
	census := &fakeCensusService{
		patients: []entity.Patient{
			{PatientID: 1, PatientStatus: entity.PatientStatusCurrent},
			{PatientID: 2, PatientStatus: entity.PatientStatusDischarged},
		},
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "RoomChange", PatientID: 1, Timestamp: recentTimestamp(time.Hour)},
			{EventID: "e2", EventType: "Discharge", PatientID: 2, Timestamp: recentTimestamp(2 * time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	active, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{Status: dto.StatusFilterActive})
	require.NoError(t, err)
	require.Len(t, active.Rows, 1)
	require.Equal(t, 1, active.Rows[0].Patient.PatientID)

	discharged, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{Status: dto.StatusFilterDischarged})
	require.NoError(t, err)
	require.Len(t, discharged.Rows, 1)
	require.Equal(t, 2, discharged.Rows[0].Patient.PatientID)

	all, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{Status: dto.StatusFilterAll})
	require.NoError(t, err)
	require.Len(t, all.Rows, 2)
}

func TestGetCensusRows_StatusFilterSkipsPlaceholders(t *testing.T) {
	census := &fakeCensusService{
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "Admission", PatientID: 99, PatientName: "New, Arrival", Timestamp: recentTimestamp(time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	// A placeholder's status is synthetic, so the discharged filter must not
	// hide a brand-new arrival
	result, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{Status: dto.StatusFilterDischarged})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.True(t, result.Rows[0].Placeholder)
}

func TestGetCensusRows_EventTypeFilter(t *testing.T) {
	census := &fakeCensusService{
		patients: []entity.Patient{
			{PatientID: 1, PatientStatus: entity.PatientStatusCurrent},
			{PatientID: 2, PatientStatus: entity.PatientStatusCurrent},
		},
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "RoomChange", PatientID: 1, Timestamp: recentTimestamp(time.Hour)},
			{EventID: "e2", EventType: "Admission", PatientID: 2, Timestamp: recentTimestamp(2 * time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	result, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{EventType: "Admission"})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.Equal(t, 2, result.Rows[0].Patient.PatientID)
}

func TestGetCensusRows_SearchByNameAndID(t *testing.T) {
	census := &fakeCensusService{
		patients: []entity.Patient{
			{PatientID: 123, FirstName: "John", LastName: "Doe", PatientStatus: entity.PatientStatusCurrent},
			{PatientID: 456, FirstName: "Jane", LastName: "Smith", PatientStatus: entity.PatientStatusCurrent},
		},
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "Admission", PatientID: 123, Timestamp: recentTimestamp(time.Hour)},
			{EventID: "e2", EventType: "Admission", PatientID: 456, Timestamp: recentTimestamp(2 * time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	byName, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{Search: "doe, j"})
	require.NoError(t, err)
	require.Len(t, byName.Rows, 1)
	require.Equal(t, 123, byName.Rows[0].Patient.PatientID)

	byID, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{Search: "456"})
	require.NoError(t, err)
	require.Len(t, byID.Rows, 1)
	require.Equal(t, 456, byID.Rows[0].Patient.PatientID)

	noMatch, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{Search: "nobody"})
	require.NoError(t, err)
	require.Empty(t, noMatch.Rows)
}

func TestGetCensusRows_DateRangeFilter(t *testing.T) {
	census := &fakeCensusService{
		patients: []entity.Patient{
			{PatientID: 1, PatientStatus: entity.PatientStatusCurrent},
			{PatientID: 2, PatientStatus: entity.PatientStatusCurrent},
			{PatientID: 3, PatientStatus: entity.PatientStatusCurrent},
		},
		events: []entity.PatientEvent{
			{EventID: "fresh", EventType: "Admission", PatientID: 1, Timestamp: recentTimestamp(2 * time.Hour)},
			{EventID: "week", EventType: "Admission", PatientID: 2, Timestamp: recentTimestamp(3 * 24 * time.Hour)},
			{EventID: "undated", EventType: "Admission", PatientID: 3, Timestamp: "not-a-date"},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	day, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{DateRange: dto.DateRange24h})
	require.NoError(t, err)
	require.Len(t, day.Rows, 1)
	require.Equal(t, "fresh", day.Rows[0].LatestEvent.EventID)

	week, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{DateRange: dto.DateRange7d})
	require.NoError(t, err)
	require.Len(t, week.Rows, 2)

	// Unparseable timestamps only survive the unbounded range
	all, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{DateRange: dto.DateRangeAll})
	require.NoError(t, err)
	require.Len(t, all.Rows, 3)
}

func TestGetCensusRows_FacilityScope(t *testing.T) {
	census := &fakeCensusService{
		patients: []entity.Patient{
			{PatientID: 1, PatientStatus: entity.PatientStatusCurrent, FacilityID: intPtr(5)},
			{PatientID: 2, PatientStatus: entity.PatientStatusCurrent, FacilityID: intPtr(9)},
		},
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "Admission", PatientID: 1, Timestamp: recentTimestamp(time.Hour)},
			{EventID: "e2", EventType: "Admission", PatientID: 2, Timestamp: recentTimestamp(2 * time.Hour)},
			{EventID: "e3", EventType: "Admission", PatientID: 33, PatientName: "New, Arrival", Facility: strPtr("5"), Timestamp: recentTimestamp(time.Hour)},
			{EventID: "e4", EventType: "Admission", PatientID: 44, PatientName: "Other, Place", Facility: strPtr("9"), Timestamp: recentTimestamp(time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	result, err := u.GetCensusRows(context.Background(), scope.ForFacility(5), dto.CensusFilter{})
	require.NoError(t, err)
	require.Len(t, result.Rows, 2)

	ids := []int{result.Rows[0].Patient.PatientID, result.Rows[1].Patient.PatientID}
	require.ElementsMatch(t, []int{1, 33}, ids)

	// Only the scoped, non-discharged patient counts
	require.Equal(t, 1, result.TotalCensus)
}

func TestGetCensusRows_ScopeDropsPlaceholdersWithNoFacility(t *testing.T) {
	// An event for a patient the census has never seen, carrying no facility
	// field of its own, cannot be placed anywhere
	census := &fakeCensusService{
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "Admission", PatientID: 77, PatientName: "Doe, John", Timestamp: recentTimestamp(time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	scoped, err := u.GetCensusRows(context.Background(), scope.ForFacility(5), dto.CensusFilter{})
	require.NoError(t, err)
	require.Empty(t, scoped.Rows)

	// The unscoped view still surfaces the arrival as a placeholder
	all, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{})
	require.NoError(t, err)
	require.Len(t, all.Rows, 1)
	require.True(t, all.Rows[0].Placeholder)
}

func TestGetCensusRows_CoverageAttached(t *testing.T) {
	census := &fakeCensusService{
		patients: []entity.Patient{
			{PatientID: 1, PatientStatus: entity.PatientStatusCurrent},
		},
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "Admission", PatientID: 1, Timestamp: recentTimestamp(time.Hour)},
		},
	}
	batcher := &fakeCoverageBatcher{
		coverage: map[int]*entity.Coverage{
			1: {PatientID: 1, Payers: []entity.Payer{{PayerName: "Medicare A", PayerRank: entity.PayerRankPrimary}}},
		},
	}
	u := newDashboardUsecase(census, batcher)

	result, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{})
	require.NoError(t, err)
	require.Len(t, result.Rows, 1)
	require.NotNil(t, result.Rows[0].Coverage)
	require.Equal(t, "Medicare A", *result.Rows[0].Coverage.Primary)
	require.Equal(t, [][]int{{1}}, batcher.fetched)
}

func TestGetCensusRows_DegradesWhenPatientsFeedFails(t *testing.T) {
	census := &fakeCensusService{
		patientsErr: context.DeadlineExceeded,
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "Admission", PatientID: 1, PatientName: "Doe, John", Timestamp: recentTimestamp(time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	result, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{})
	require.NoError(t, err)
	require.True(t, result.HasError)
	require.Len(t, result.Rows, 1)
	require.True(t, result.Rows[0].Placeholder)
	require.Zero(t, result.TotalCensus)
}

func TestGetCensusRows_DegradesWhenEventsFeedFails(t *testing.T) {
	census := &fakeCensusService{
		patients: []entity.Patient{
			{PatientID: 1, PatientStatus: entity.PatientStatusCurrent},
		},
		eventsErr: context.DeadlineExceeded,
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	result, err := u.GetCensusRows(context.Background(), scope.All(), dto.CensusFilter{})
	require.NoError(t, err)
	require.True(t, result.HasError)
	require.Empty(t, result.Rows)
	require.Equal(t, 1, result.TotalCensus)
}

func TestGetLiveUpdates_ImportantEventsForKnownPatients(t *testing.T) {
	census := &fakeCensusService{
		patients: []entity.Patient{
			{PatientID: 1, FirstName: "John", LastName: "Doe", PatientStatus: entity.PatientStatusCurrent},
		},
		events: []entity.PatientEvent{
			{EventID: "e1", EventType: "RoomChange", PatientID: 1, Room: strPtr("101-A"), Timestamp: recentTimestamp(time.Hour)},
			{EventID: "e2", EventType: "Admission", PatientID: 1, Timestamp: recentTimestamp(2 * time.Hour)},
			{EventID: "e3", EventType: "InsuranceUpdate", PatientID: 404, Timestamp: recentTimestamp(3 * time.Hour)},
		},
	}
	u := newDashboardUsecase(census, &fakeCoverageBatcher{})

	updates, err := u.GetLiveUpdates(context.Background(), scope.All())
	require.NoError(t, err)
	require.Len(t, updates, 1)
	require.Equal(t, "e1", updates[0].Event.EventID)
	require.Equal(t, "Doe, John", updates[0].PatientName)
	require.Equal(t, "Doe, John moved to room 101-A", updates[0].Headline)
}

func TestGetLiveUpdates_CappedAtLimit(t *testing.T) {
	census := &fakeCensusService{
		patients: []entity.Patient{
			{PatientID: 1, FirstName: "John", LastName: "Doe", PatientStatus: entity.PatientStatusCurrent},
		},
	}
	for i := 0; i < 20; i++ {
		census.events = append(census.events, entity.PatientEvent{
			EventID:   "e" + string(rune('a'+i)),
			EventType: "InsuranceUpdate",
			PatientID: 1,
			Timestamp: recentTimestamp(time.Duration(i) * time.Hour),
		})
	}
	batcher := &fakeCoverageBatcher{coverage: make(map[int]*entity.Coverage)}
	u := usecase.NewDashboardUsecase(testLogger(), census, batcher, 10)

	updates, err := u.GetLiveUpdates(context.Background(), scope.All())
	require.NoError(t, err)
	require.Len(t, updates, 10)
}

func TestInvalidateCoverage_DelegatesToBatcher(t *testing.T) {
	batcher := &fakeCoverageBatcher{coverage: make(map[int]*entity.Coverage)}
	u := newDashboardUsecase(&fakeCensusService{}, batcher)

	require.NoError(t, u.InvalidateCoverage(context.Background(), 1, 2, 3))
	require.Equal(t, []int{1, 2, 3}, batcher.invalidated)
}
