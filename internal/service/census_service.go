package service

import (
	"context"
	"net/url"
	"strconv"

	"census-gateway/internal/converter"
	"census-gateway/internal/domain/entity"
	"census-gateway/internal/infrastructure/upstream"
	"census-gateway/internal/scope"
)

// CensusService fetches and normalizes upstream census data. It owns the
// quirks of the feed (envelopes, key aliasing, unsupported query params) so
// the usecases above it only ever see canonical entities.
type CensusService interface {
	Patients(ctx context.Context) ([]entity.Patient, error)
	Patient(ctx context.Context, patientID int) (*entity.Patient, bool, error)
	Events(ctx context.Context, sc scope.Scope) ([]entity.PatientEvent, error)
	PatientEvents(ctx context.Context, patientID int, limit int) ([]entity.PatientEvent, error)
	Coverage(ctx context.Context, patientID int) (*entity.Coverage, error)
	AdtRecords(ctx context.Context, patientID int) ([]entity.AdtRecord, error)
	Facilities(ctx context.Context) ([]entity.Facility, error)
}

type censusService struct {
	upstream upstream.Client
}

func NewCensusService(client upstream.Client) CensusService {
	return &censusService{upstream: client}
}

// Patients fetches the full census. The patients endpoint does not support
// facility filtering upstream, so scoping happens locally in the usecases.
func (s *censusService) Patients(ctx context.Context) ([]entity.Patient, error) {
	raw, err := s.upstream.GetPatients(ctx, nil)
	if err != nil {
		return nil, err
	}
	return converter.ParsePatients(raw), nil
}

func (s *censusService) Patient(ctx context.Context, patientID int) (*entity.Patient, bool, error) {
	params := url.Values{}
	params.Set("patientId", strconv.Itoa(patientID))
	raw, err := s.upstream.GetPatients(ctx, params)
	if err != nil {
		return nil, false, err
	}
	patient, ok := converter.ParsePatient(raw)
	return patient, ok, nil
}

func (s *censusService) Events(ctx context.Context, sc scope.Scope) ([]entity.PatientEvent, error) {
	raw, err := s.upstream.GetEvents(ctx, sc, nil)
	if err != nil {
		return nil, err
	}
	return converter.NormalizeEvents(raw), nil
}

func (s *censusService) PatientEvents(ctx context.Context, patientID int, limit int) ([]entity.PatientEvent, error) {
	params := url.Values{}
	params.Set("patientId", strconv.Itoa(patientID))
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	raw, err := s.upstream.GetEvents(ctx, scope.All(), params)
	if err != nil {
		return nil, err
	}
	events := converter.NormalizeEvents(raw)
	if limit > 0 && len(events) > limit {
		events = events[:limit]
	}
	return events, nil
}

// Coverage fetches one patient's insurance coverage. A nil result with a nil
// error means the patient has no coverage on file.
func (s *censusService) Coverage(ctx context.Context, patientID int) (*entity.Coverage, error) {
	raw, err := s.upstream.GetCoverage(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return converter.ParseCoverage(raw), nil
}

func (s *censusService) AdtRecords(ctx context.Context, patientID int) ([]entity.AdtRecord, error) {
	raw, err := s.upstream.GetAdtRecords(ctx, patientID)
	if err != nil {
		return nil, err
	}
	return converter.ParseAdtRecords(raw), nil
}

func (s *censusService) Facilities(ctx context.Context) ([]entity.Facility, error) {
	raw, err := s.upstream.GetFacilities(ctx)
	if err != nil {
		return nil, err
	}
	return converter.ParseFacilities(raw), nil
}
