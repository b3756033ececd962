package usecase

import (
	"context"
	"errors"

	"census-gateway/internal/converter"
	"census-gateway/internal/delivery/dto"
	"census-gateway/internal/domain/entity"
	"census-gateway/internal/scope"
	"census-gateway/internal/service"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrPatientNotFound = errors.New("patient not found")

const recentEventsLimit = 20

// PatientUsecase serves the patient list and the detail drawer
type PatientUsecase interface {
	ListPatients(ctx context.Context, sc scope.Scope) ([]entity.Patient, error)
	GetPatientDetail(ctx context.Context, sc scope.Scope, patientID int) (*dto.PatientDetailResponse, error)
	GetAdtRecords(ctx context.Context, sc scope.Scope, patientID int) ([]entity.AdtRecord, error)
}

type patientUsecase struct {
	log     *logrus.Logger
	census  service.CensusService
	batcher service.CoverageBatcher
}

func NewPatientUsecase(log *logrus.Logger, census service.CensusService, batcher service.CoverageBatcher) PatientUsecase {
	return &patientUsecase{
		log:     log,
		census:  census,
		batcher: batcher,
	}
}

// ListPatients fetches the census and filters it to the caller's scope. The
// upstream patients endpoint cannot filter by facility, so scoping happens
// here.
func (u *patientUsecase) ListPatients(ctx context.Context, sc scope.Scope) ([]entity.Patient, error) {
	patients, err := u.census.Patients(ctx)
	if err != nil {
		u.log.Warnf("Failed to fetch patients: %+v", err)
		return nil, err
	}

	if !sc.IsScoped() {
		return patients, nil
	}

	scoped := make([]entity.Patient, 0, len(patients))
	for i := range patients {
		if sc.MatchesPatient(&patients[i]) {
			scoped = append(scoped, patients[i])
		}
	}
	return scoped, nil
}

// GetPatientDetail joins the patient record with coverage, ADT history and
// recent events, fetched in parallel. Coverage and history failures degrade
// to empty sections; only a missing patient is an error.
func (u *patientUsecase) GetPatientDetail(ctx context.Context, sc scope.Scope, patientID int) (*dto.PatientDetailResponse, error) {
	patient, found, err := u.census.Patient(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to fetch patient %d: %+v", patientID, err)
		return nil, err
	}
	if !found {
		return nil, ErrPatientNotFound
	}
	if !sc.MatchesPatient(patient) {
		return nil, ErrPatientNotFound
	}

	var (
		adtRecords []entity.AdtRecord
		events     []entity.PatientEvent
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := u.census.AdtRecords(gctx, patientID)
		if err != nil {
			u.log.Warnf("Failed to fetch ADT records for patient %d: %+v", patientID, err)
			return nil
		}
		adtRecords = records
		return nil
	})
	g.Go(func() error {
		fetched, err := u.census.PatientEvents(gctx, patientID, recentEventsLimit)
		if err != nil {
			u.log.Warnf("Failed to fetch events for patient %d: %+v", patientID, err)
			return nil
		}
		events = fetched
		return nil
	})
	g.Wait()

	coverageMap := u.batcher.FetchMany(ctx, []int{patientID})
	coverage := coverageMap[patientID]

	summary := converter.CoverageToSummary(coverage)
	if summary == nil {
		summary = &dto.CoverageSummary{}
	}

	if adtRecords == nil {
		adtRecords = []entity.AdtRecord{}
	}
	if events == nil {
		events = []entity.PatientEvent{}
	}

	return &dto.PatientDetailResponse{
		Patient:      *patient,
		Coverage:     coverage,
		Payers:       *summary,
		AdtRecords:   adtRecords,
		RecentEvents: events,
	}, nil
}

func (u *patientUsecase) GetAdtRecords(ctx context.Context, sc scope.Scope, patientID int) ([]entity.AdtRecord, error) {
	patient, found, err := u.census.Patient(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to fetch patient %d: %+v", patientID, err)
		return nil, err
	}
	if !found || !sc.MatchesPatient(patient) {
		return nil, ErrPatientNotFound
	}

	records, err := u.census.AdtRecords(ctx, patientID)
	if err != nil {
		u.log.Warnf("Failed to fetch ADT records for patient %d: %+v", patientID, err)
		return nil, err
	}
	return records, nil
}
