package converter_test

import (
	"testing"

	"census-gateway/internal/converter"
	"census-gateway/internal/domain/entity"

	"github.com/stretchr/testify/require"
)

func TestNormalizeEvents_CamelCaseKeys(t *testing.T) {
	raw := []byte(`[
		{
			"eventId": "evt-1",
			"eventType": "Admission",
			"patientId": 101,
			"patientName": "Doe, John",
			"timestamp": "2026-08-01T10:00:00Z",
			"room": "101-A"
		}
	]`)

	events := converter.NormalizeEvents(raw)
	require.Len(t, events, 1)

	event := events[0]
	require.Equal(t, "evt-1", event.EventID)
	require.Equal(t, "Admission", event.EventType)
	require.Equal(t, 101, event.PatientID)
	require.Equal(t, "Doe, John", event.PatientName)
	require.Equal(t, "2026-08-01T10:00:00Z", event.Timestamp)
	require.NotNil(t, event.Room)
	require.Equal(t, "101-A", *event.Room)
}

func TestNormalizeEvents_PascalCaseKeys(t *testing.T) {
	raw := []byte(`[
		{
			"EventId": "evt-2",
			"EventType": "Transfer",
			"PatientId": 202,
			"PatientName": "Smith, Jane",
			"Timestamp": "2026-08-02T11:30:00Z",
			"Room": "202-B",
			"PreviousRoom": "201-A",
			"Destination": "Mercy Hospital",
			"DestinationType": "Hospital"
		}
	]`)

	events := converter.NormalizeEvents(raw)
	require.Len(t, events, 1)

	event := events[0]
	require.Equal(t, "evt-2", event.EventID)
	require.Equal(t, "Transfer", event.EventType)
	require.Equal(t, 202, event.PatientID)
	require.Equal(t, "202-B", *event.Room)
	require.Equal(t, "201-A", *event.PreviousRoom)
	require.Equal(t, "Mercy Hospital", *event.Destination)
	require.Equal(t, "Hospital", *event.DestinationType)
}

func TestNormalizeEvents_CamelCaseWinsWhenBothCasingsPresent(t *testing.T) {
	raw := []byte(`[
		{
			"eventType": "Admission",
			"EventType": "Transfer",
			"patientId": 11,
			"PatientId": 99,
			"patientName": "Doe, John",
			"PatientName": "Smith, Jane",
			"timestamp": "2026-08-01T10:00:00Z",
			"Timestamp": "2026-08-02T10:00:00Z",
			"eventId": "evt-low",
			"EventId": "evt-cap"
		}
	]`)

	events := converter.NormalizeEvents(raw)
	require.Len(t, events, 1)

	event := events[0]
	require.Equal(t, "evt-low", event.EventID)
	require.Equal(t, "Admission", event.EventType)
	require.Equal(t, 11, event.PatientID)
	require.Equal(t, "Doe, John", event.PatientName)
	require.Equal(t, "2026-08-01T10:00:00Z", event.Timestamp)
}

func TestNormalizeEvents_EventIdOutranksMessageId(t *testing.T) {
	raw := []byte(`[{"eventId": "evt-8", "MessageId": "msg-8", "eventType": "Discharge", "patientId": 8}]`)

	events := converter.NormalizeEvents(raw)
	require.Len(t, events, 1)
	require.Equal(t, "evt-8", events[0].EventID)
}

func TestNormalizeEvents_MessageIdFallback(t *testing.T) {
	raw := []byte(`[{"MessageId": "msg-7", "eventType": "Discharge", "patientId": 7}]`)

	events := converter.NormalizeEvents(raw)
	require.Len(t, events, 1)
	require.Equal(t, "msg-7", events[0].EventID)
}

func TestNormalizeEvents_NumericIdFallback(t *testing.T) {
	raw := []byte(`[{"id": 42, "eventType": "HOA", "patientId": 9}]`)

	events := converter.NormalizeEvents(raw)
	require.Len(t, events, 1)
	require.Equal(t, "42", events[0].EventID)
}

func TestNormalizeEvents_CreatedAtTimestampAlias(t *testing.T) {
	raw := []byte(`[{"eventId": "evt-3", "eventType": "Admission", "patientId": 3, "CreatedAt": "2026-08-03T08:00:00Z"}]`)

	events := converter.NormalizeEvents(raw)
	require.Len(t, events, 1)
	require.Equal(t, "2026-08-03T08:00:00Z", events[0].Timestamp)
}

func TestNormalizeEvents_StringPatientID(t *testing.T) {
	raw := []byte(`[{"eventId": "evt-4", "eventType": "Admission", "patientId": "314"}]`)

	events := converter.NormalizeEvents(raw)
	require.Len(t, events, 1)
	require.Equal(t, 314, events[0].PatientID)
}

func TestNormalizeEvents_NonArrayPayloadIsEmpty(t *testing.T) {
	for _, raw := range []string{
		`{"error": "internal failure"}`,
		`"unexpected"`,
		`not json at all`,
		`null`,
	} {
		events := converter.NormalizeEvents([]byte(raw))
		require.NotNil(t, events, "payload %q", raw)
		require.Empty(t, events, "payload %q", raw)
	}
}

func TestNormalizeEvents_SkipsNonObjectItems(t *testing.T) {
	raw := []byte(`[{"eventId": "evt-5", "eventType": "Admission", "patientId": 5}, "junk", 17]`)

	events := converter.NormalizeEvents(raw)
	require.Len(t, events, 1)
	require.Equal(t, "evt-5", events[0].EventID)
}

func TestNormalizeEvents_MissingOptionalFieldsStayNil(t *testing.T) {
	raw := []byte(`[{"eventId": "evt-6", "eventType": "Admission", "patientId": 6, "timestamp": "2026-08-01T00:00:00Z"}]`)

	events := converter.NormalizeEvents(raw)
	require.Len(t, events, 1)

	event := events[0]
	require.Nil(t, event.Room)
	require.Nil(t, event.PreviousRoom)
	require.Nil(t, event.Origin)
	require.Nil(t, event.Destination)
	require.Nil(t, event.Facility)
	require.Nil(t, event.CurrentProvider)
}

func TestNormalizeEvents_SortedMostRecentFirst(t *testing.T) {
	raw := []byte(`[
		{"eventId": "old", "eventType": "Admission", "patientId": 1, "timestamp": "2026-08-01T00:00:00Z"},
		{"eventId": "new", "eventType": "Transfer", "patientId": 2, "timestamp": "2026-08-10T00:00:00Z"},
		{"eventId": "mid", "eventType": "Discharge", "patientId": 3, "timestamp": "2026-08-05T00:00:00Z"}
	]`)

	events := converter.NormalizeEvents(raw)
	require.Len(t, events, 3)
	require.Equal(t, "new", events[0].EventID)
	require.Equal(t, "mid", events[1].EventID)
	require.Equal(t, "old", events[2].EventID)
}

func TestSortEventsByRecency_UnparseableTimestampsLast(t *testing.T) {
	events := []entity.PatientEvent{
		{EventID: "bad", Timestamp: "not-a-date"},
		{EventID: "dated", Timestamp: "2026-08-01T00:00:00Z"},
		{EventID: "empty"},
	}

	converter.SortEventsByRecency(events)

	require.Equal(t, "dated", events[0].EventID)
	require.Equal(t, "bad", events[1].EventID)
	require.Equal(t, "empty", events[2].EventID)
}

func TestSortEventsByRecency_StableAmongUndated(t *testing.T) {
	events := []entity.PatientEvent{
		{EventID: "a"},
		{EventID: "b"},
		{EventID: "c"},
	}

	converter.SortEventsByRecency(events)

	require.Equal(t, "a", events[0].EventID)
	require.Equal(t, "b", events[1].EventID)
	require.Equal(t, "c", events[2].EventID)
}
