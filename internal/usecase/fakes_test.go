package usecase_test

import (
	"context"
	"io"
	"sync"
	"time"

	"census-gateway/internal/domain/entity"
	"census-gateway/internal/scope"
	"census-gateway/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// fakeCensusService serves canned feeds for unit tests
type fakeCensusService struct {
	patients    []entity.Patient
	patientsErr error
	events      []entity.PatientEvent
	eventsErr   error
	coverage    map[int]*entity.Coverage
	adtRecords  []entity.AdtRecord
	facilities  []entity.Facility
}

func (f *fakeCensusService) Patients(ctx context.Context) ([]entity.Patient, error) {
	return f.patients, f.patientsErr
}

func (f *fakeCensusService) Patient(ctx context.Context, patientID int) (*entity.Patient, bool, error) {
	if f.patientsErr != nil {
		return nil, false, f.patientsErr
	}
	for i := range f.patients {
		if f.patients[i].PatientID == patientID {
			return &f.patients[i], true, nil
		}
	}
	return nil, false, nil
}

func (f *fakeCensusService) Events(ctx context.Context, sc scope.Scope) ([]entity.PatientEvent, error) {
	return f.events, f.eventsErr
}

func (f *fakeCensusService) PatientEvents(ctx context.Context, patientID int, limit int) ([]entity.PatientEvent, error) {
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	matched := make([]entity.PatientEvent, 0)
	for _, event := range f.events {
		if event.PatientID == patientID {
			matched = append(matched, event)
		}
	}
	if limit > 0 && len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeCensusService) Coverage(ctx context.Context, patientID int) (*entity.Coverage, error) {
	return f.coverage[patientID], nil
}

func (f *fakeCensusService) AdtRecords(ctx context.Context, patientID int) ([]entity.AdtRecord, error) {
	return f.adtRecords, nil
}

func (f *fakeCensusService) Facilities(ctx context.Context) ([]entity.Facility, error) {
	return f.facilities, nil
}

// fakeCoverageBatcher answers from a fixed map and records what was asked
type fakeCoverageBatcher struct {
	mu          sync.Mutex
	coverage    map[int]*entity.Coverage
	fetched     [][]int
	invalidated []int
}

func (f *fakeCoverageBatcher) FetchMany(ctx context.Context, patientIDs []int) map[int]*entity.Coverage {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fetched = append(f.fetched, patientIDs)
	result := make(map[int]*entity.Coverage, len(patientIDs))
	for _, id := range patientIDs {
		result[id] = f.coverage[id]
	}
	return result
}

func (f *fakeCoverageBatcher) Invalidate(ctx context.Context, patientIDs ...int) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.invalidated = append(f.invalidated, patientIDs...)
	return nil
}

// fakeAuditService records actions in memory instead of writing rows
type fakeAuditService struct {
	mu     sync.Mutex
	logged []string
}

func (f *fakeAuditService) LogAction(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, metadata entity.JSON) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.logged = append(f.logged, action)
	return nil
}

func (f *fakeAuditService) LogChange(ctx context.Context, tx *gorm.DB, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) error {
	return f.LogAction(ctx, tx, userID, action, nil)
}

func (f *fakeAuditService) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]string(nil), f.logged...)
}

// fakeKV is an in-memory KVStore without TTL handling
type fakeKV struct {
	mu   sync.Mutex
	data map[string]string
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string)}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.data[key]
	if !ok {
		return "", service.ErrCacheMiss
	}
	return value, nil
}

func (f *fakeKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.data[key] = value
	return nil
}

func (f *fakeKV) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.data, key)
	return nil
}

func (f *fakeKV) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.data[key]
	return ok
}
