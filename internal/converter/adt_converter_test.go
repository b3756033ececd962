package converter_test

import (
	"testing"

	"census-gateway/internal/converter"

	"github.com/stretchr/testify/require"
)

func TestParseAdtRecords_DropsCancelled(t *testing.T) {
	raw := []byte(`{"data": [
		{"adtRecordId": 1, "patientId": 9, "standardActionType": "Admission", "effectiveDateTime": "2026-08-01T00:00:00Z"},
		{"adtRecordId": 2, "patientId": 9, "standardActionType": "Transfer", "effectiveDateTime": "2026-08-02T00:00:00Z", "isCancelledRecord": true}
	]}`)

	records := converter.ParseAdtRecords(raw)
	require.Len(t, records, 1)
	require.Equal(t, 1, records[0].AdtRecordID)
}

func TestParseAdtRecords_MostRecentFirst(t *testing.T) {
	raw := []byte(`{"data": [
		{"adtRecordId": 1, "standardActionType": "Admission", "effectiveDateTime": "2026-08-01T00:00:00Z"},
		{"adtRecordId": 3, "standardActionType": "Discharge", "effectiveDateTime": "2026-08-20T00:00:00Z"},
		{"adtRecordId": 2, "standardActionType": "Transfer", "effectiveDateTime": "2026-08-10T00:00:00Z"}
	]}`)

	records := converter.ParseAdtRecords(raw)
	require.Len(t, records, 3)
	require.Equal(t, 3, records[0].AdtRecordID)
	require.Equal(t, 2, records[1].AdtRecordID)
	require.Equal(t, 1, records[2].AdtRecordID)
}

func TestParseAdtRecords_UnparseableDatesLast(t *testing.T) {
	raw := []byte(`{"data": [
		{"adtRecordId": 1, "standardActionType": "Admission", "effectiveDateTime": "bad-date"},
		{"adtRecordId": 2, "standardActionType": "Transfer", "effectiveDateTime": "2026-08-10T00:00:00Z"}
	]}`)

	records := converter.ParseAdtRecords(raw)
	require.Len(t, records, 2)
	require.Equal(t, 2, records[0].AdtRecordID)
	require.Equal(t, 1, records[1].AdtRecordID)
}

func TestParseAdtRecords_BadPayloadIsEmpty(t *testing.T) {
	require.Empty(t, converter.ParseAdtRecords([]byte(`{}`)))
	require.Empty(t, converter.ParseAdtRecords([]byte(`not json`)))
	require.Empty(t, converter.ParseAdtRecords([]byte(`[]`)))
}
