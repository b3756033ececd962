package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"census-gateway/internal/converter"
	"census-gateway/internal/delivery/dto"
	"census-gateway/internal/domain/entity"
	"census-gateway/internal/scope"
	"census-gateway/internal/service"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DashboardUsecase merges the census, event, and coverage feeds into the
// rows the dashboard renders. The table is events-driven: a patient appears
// only when they have at least one event, and row order follows event
// recency.
type DashboardUsecase interface {
	GetCensusRows(ctx context.Context, sc scope.Scope, filter dto.CensusFilter) (*dto.CensusRowsResponse, error)
	GetLiveUpdates(ctx context.Context, sc scope.Scope) ([]dto.LiveUpdate, error)
	GetCoverageMap(ctx context.Context, patientIDs []int) map[int]*entity.Coverage
	InvalidateCoverage(ctx context.Context, patientIDs ...int) error
}

type dashboardUsecase struct {
	log              *logrus.Logger
	census           service.CensusService
	batcher          service.CoverageBatcher
	liveUpdatesLimit int
}

func NewDashboardUsecase(
	log *logrus.Logger,
	census service.CensusService,
	batcher service.CoverageBatcher,
	liveUpdatesLimit int,
) DashboardUsecase {
	return &dashboardUsecase{
		log:              log,
		census:           census,
		batcher:          batcher,
		liveUpdatesLimit: liveUpdatesLimit,
	}
}

// mergedRow pairs a patient with their latest event before filtering.
// Placeholder rows carry a patient synthesized from the event itself.
type mergedRow struct {
	patient     entity.Patient
	event       entity.PatientEvent
	placeholder bool
}

func (u *dashboardUsecase) GetCensusRows(ctx context.Context, sc scope.Scope, filter dto.CensusFilter) (*dto.CensusRowsResponse, error) {
	patients, events, hasError := u.fetchSources(ctx, sc)

	merged := mergeLatestEvents(patients, events)

	now := time.Now()
	visible := make([]mergedRow, 0, len(merged))
	for _, row := range merged {
		if !u.rowPasses(row, sc, filter, now) {
			continue
		}
		visible = append(visible, row)
	}

	ids := make([]int, 0, len(visible))
	for _, row := range visible {
		ids = append(ids, row.patient.PatientID)
	}
	coverageMap := u.batcher.FetchMany(ctx, ids)

	rows := make([]dto.CensusRow, 0, len(visible))
	for _, row := range visible {
		event := row.event
		rows = append(rows, dto.CensusRow{
			Patient:     row.patient,
			LatestEvent: &event,
			Coverage:    converter.CoverageToSummary(coverageMap[row.patient.PatientID]),
			Placeholder: row.placeholder,
		})
	}

	totalCensus := 0
	for i := range patients {
		if sc.MatchesPatient(&patients[i]) && !patients[i].IsDischarged() {
			totalCensus++
		}
	}

	return &dto.CensusRowsResponse{
		Rows:        rows,
		TotalCensus: totalCensus,
		HasError:    hasError,
	}, nil
}

// GetLiveUpdates surfaces the most recent room changes, insurance updates
// and deaths for known patients.
func (u *dashboardUsecase) GetLiveUpdates(ctx context.Context, sc scope.Scope) ([]dto.LiveUpdate, error) {
	patients, events, _ := u.fetchSources(ctx, sc)

	patientByID := make(map[int]*entity.Patient, len(patients))
	for i := range patients {
		patientByID[patients[i].PatientID] = &patients[i]
	}

	updates := make([]dto.LiveUpdate, 0, u.liveUpdatesLimit)
	for _, event := range events {
		if !event.IsImportant() {
			continue
		}
		patient, known := patientByID[event.PatientID]
		if !known {
			continue
		}
		if !sc.MatchesEvent(&event, patient) {
			continue
		}

		updates = append(updates, dto.LiveUpdate{
			Event:       event,
			PatientName: patient.DisplayName(),
			Headline:    liveUpdateHeadline(&event, patient),
		})
		if len(updates) >= u.liveUpdatesLimit {
			break
		}
	}

	return updates, nil
}

func (u *dashboardUsecase) GetCoverageMap(ctx context.Context, patientIDs []int) map[int]*entity.Coverage {
	return u.batcher.FetchMany(ctx, patientIDs)
}

func (u *dashboardUsecase) InvalidateCoverage(ctx context.Context, patientIDs ...int) error {
	return u.batcher.Invalidate(ctx, patientIDs...)
}

// fetchSources pulls patients and events in parallel. Either source failing
// degrades to an empty list and flips hasError; a dashboard with a banner
// beats a dashboard that is down.
func (u *dashboardUsecase) fetchSources(ctx context.Context, sc scope.Scope) ([]entity.Patient, []entity.PatientEvent, bool) {
	var (
		patients    []entity.Patient
		events      []entity.PatientEvent
		patientsErr error
		eventsErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		patients, patientsErr = u.census.Patients(gctx)
		return nil
	})
	g.Go(func() error {
		events, eventsErr = u.census.Events(gctx, sc)
		return nil
	})
	g.Wait()

	if patientsErr != nil {
		u.log.Warnf("Failed to fetch patients: %+v", patientsErr)
		patients = nil
	}
	if eventsErr != nil {
		u.log.Warnf("Failed to fetch events: %+v", eventsErr)
		events = nil
	}

	return patients, events, patientsErr != nil || eventsErr != nil
}

// mergeLatestEvents reduces the recency-sorted event stream to one row per
// patient. Iteration order of the result follows event recency, which the
// id slice preserves where a plain map would not.
func mergeLatestEvents(patients []entity.Patient, events []entity.PatientEvent) []mergedRow {
	patientByID := make(map[int]*entity.Patient, len(patients))
	for i := range patients {
		patientByID[patients[i].PatientID] = &patients[i]
	}

	order := make([]int, 0, len(events))
	latest := make(map[int]entity.PatientEvent, len(events))
	for _, event := range events {
		if event.PatientID <= 0 {
			continue
		}
		if _, seen := latest[event.PatientID]; seen {
			continue
		}
		latest[event.PatientID] = event
		order = append(order, event.PatientID)
	}

	rows := make([]mergedRow, 0, len(order))
	for _, patientID := range order {
		event := latest[patientID]
		if patient, known := patientByID[patientID]; known {
			rows = append(rows, mergedRow{patient: *patient, event: event})
			continue
		}
		rows = append(rows, mergedRow{
			patient:     placeholderPatient(patientID, &event),
			event:       event,
			placeholder: true,
		})
	}
	return rows
}

// placeholderPatient synthesizes a census entry for an event whose patient
// the census feed has not delivered yet. New arrivals show up in the event
// stream minutes before the census catches up.
func placeholderPatient(patientID int, event *entity.PatientEvent) entity.Patient {
	first, last := splitPatientName(event.PatientName)
	return entity.Patient{
		PatientID:     patientID,
		FirstName:     first,
		LastName:      last,
		PatientStatus: entity.PatientStatusCurrent,
	}
}

// splitPatientName handles both "Last, First" and "First Last" spellings
func splitPatientName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	if idx := strings.Index(name, ","); idx >= 0 {
		return strings.TrimSpace(name[idx+1:]), strings.TrimSpace(name[:idx])
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func (u *dashboardUsecase) rowPasses(row mergedRow, sc scope.Scope, filter dto.CensusFilter, now time.Time) bool {
	// Facility scope: real patients match on their census facility,
	// placeholders on whatever the event itself carries
	if row.placeholder {
		if !sc.MatchesEvent(&row.event, nil) {
			return false
		}
	} else if !sc.MatchesPatient(&row.patient) {
		return false
	}

	// Status filter only applies to real patients; a placeholder's status
	// is synthetic
	if !row.placeholder && filter.Status != "" && filter.Status != dto.StatusFilterAll {
		if filter.Status == dto.StatusFilterActive && row.patient.PatientStatus != entity.PatientStatusCurrent {
			return false
		}
		if filter.Status == dto.StatusFilterDischarged && !row.patient.IsDischarged() {
			return false
		}
	}

	if filter.EventType != "" && filter.EventType != "all" && row.event.EventType != filter.EventType {
		return false
	}

	if search := strings.TrimSpace(filter.Search); search != "" {
		searchLower := strings.ToLower(search)
		name := strings.ToLower(row.patient.LastName + ", " + row.patient.FirstName)
		id := strconv.Itoa(row.patient.PatientID)
		if !strings.Contains(name, searchLower) && !strings.Contains(id, searchLower) {
			return false
		}
	}

	return passesDateRange(&row.event, filter.DateRange, now)
}

// passesDateRange bounds rows by event age. Events with unparseable
// timestamps are excluded from bounded ranges: an unknown age cannot prove
// it falls inside the window.
func passesDateRange(event *entity.PatientEvent, dateRange string, now time.Time) bool {
	if dateRange == "" || dateRange == dto.DateRangeAll {
		return true
	}

	eventTime, ok := event.Time()
	if !ok {
		return false
	}

	age := now.Sub(eventTime)
	switch dateRange {
	case dto.DateRange24h:
		return age <= 24*time.Hour
	case dto.DateRange7d:
		return age <= 7*24*time.Hour
	case dto.DateRange30d:
		return age <= 30*24*time.Hour
	}
	return true
}

func liveUpdateHeadline(event *entity.PatientEvent, patient *entity.Patient) string {
	name := patient.DisplayName()
	switch event.EventType {
	case entity.EventTypeRoomChange:
		if event.Room != nil {
			return name + " moved to room " + *event.Room
		}
		return name + " changed rooms"
	case entity.EventTypeInsuranceUpdate:
		return "Insurance updated for " + name
	case entity.EventTypeDeath:
		return "Death recorded for " + name
	}
	return event.EventType + " for " + name
}
