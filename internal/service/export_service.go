package service

import (
	"bytes"
	"fmt"

	"census-gateway/internal/delivery/dto"

	"github.com/xuri/excelize/v2"
)

// ExportService renders census rows into an xlsx workbook for offline review
type ExportService interface {
	CensusWorkbook(rows []dto.CensusRow) (*bytes.Buffer, error)
}

type exportService struct{}

func NewExportService() ExportService {
	return &exportService{}
}

var censusExportHeaders = []string{
	"Patient ID",
	"Patient Name",
	"Status",
	"Facility",
	"Room",
	"Last Event",
	"Event Time",
	"Primary Payer",
	"Secondary Payer",
}

const censusSheetName = "Census"

func (s *exportService) CensusWorkbook(rows []dto.CensusRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(censusSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, header := range censusExportHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(censusSheetName, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := censusRowValues(row)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(censusSheetName, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf, nil
}

func censusRowValues(row dto.CensusRow) []any {
	facility := ""
	if row.Patient.FacilityID != nil {
		facility = fmt.Sprintf("%d", *row.Patient.FacilityID)
	}

	eventType, eventTime := "", ""
	if row.LatestEvent != nil {
		eventType = row.LatestEvent.EventType
		eventTime = row.LatestEvent.Timestamp
	}

	primary, secondary := "", ""
	if row.Coverage != nil {
		if row.Coverage.Primary != nil {
			primary = *row.Coverage.Primary
		}
		if row.Coverage.Secondary != nil {
			secondary = *row.Coverage.Secondary
		}
	}

	return []any{
		row.Patient.PatientID,
		row.Patient.DisplayName(),
		string(row.Patient.PatientStatus),
		facility,
		row.Patient.RoomDesc,
		eventType,
		eventTime,
		primary,
		secondary,
	}
}
