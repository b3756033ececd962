package converter

import (
	"encoding/json"
	"sort"
	"strconv"

	"census-gateway/internal/domain/entity"
)

// optionalEventFields maps each optional event attribute to its accepted key
// spellings, in priority order. The upstream mixes camelCase and PascalCase
// depending on which of its subsystems emitted the event.
var optionalEventFields = []struct {
	keys   []string
	assign func(e *entity.PatientEvent, v *string)
}{
	{[]string{"room", "Room"}, func(e *entity.PatientEvent, v *string) { e.Room = v }},
	{[]string{"previousRoom", "PreviousRoom"}, func(e *entity.PatientEvent, v *string) { e.PreviousRoom = v }},
	{[]string{"origin", "Origin"}, func(e *entity.PatientEvent, v *string) { e.Origin = v }},
	{[]string{"originType", "OriginType"}, func(e *entity.PatientEvent, v *string) { e.OriginType = v }},
	{[]string{"destination", "Destination"}, func(e *entity.PatientEvent, v *string) { e.Destination = v }},
	{[]string{"destinationType", "DestinationType"}, func(e *entity.PatientEvent, v *string) { e.DestinationType = v }},
	{[]string{"facility", "Facility"}, func(e *entity.PatientEvent, v *string) { e.Facility = v }},
	{[]string{"previousFacility", "PreviousFacility"}, func(e *entity.PatientEvent, v *string) { e.PreviousFacility = v }},
	{[]string{"previousProvider", "PreviousProvider"}, func(e *entity.PatientEvent, v *string) { e.PreviousProvider = v }},
	{[]string{"currentProvider", "CurrentProvider"}, func(e *entity.PatientEvent, v *string) { e.CurrentProvider = v }},
}

// NormalizeEvents decodes a raw events payload into canonical PatientEvents,
// sorted most recent first. Anything that is not a JSON array yields an
// empty slice: the events endpoint has been seen returning error objects
// with a 200 status, and those must read as "no events".
func NormalizeEvents(raw []byte) []entity.PatientEvent {
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return []entity.PatientEvent{}
	}
	items, ok := decoded.([]any)
	if !ok {
		return []entity.PatientEvent{}
	}

	events := make([]entity.PatientEvent, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		events = append(events, normalizeEvent(obj))
	}

	SortEventsByRecency(events)
	return events
}

func normalizeEvent(obj map[string]any) entity.PatientEvent {
	event := entity.PatientEvent{
		EventID:     pickString(obj, "eventId", "EventId", "MessageId"),
		EventType:   pickString(obj, "eventType", "EventType"),
		PatientID:   pickInt(obj, "patientId", "PatientId"),
		PatientName: pickString(obj, "patientName", "PatientName"),
		Timestamp:   pickString(obj, "timestamp", "Timestamp", "CreatedAt"),
	}

	// Last-resort id: stringify whatever sits under "id"
	if event.EventID == "" {
		event.EventID = stringify(obj["id"])
	}

	for _, field := range optionalEventFields {
		field.assign(&event, pickOptString(obj, field.keys...))
	}

	return event
}

// SortEventsByRecency orders events newest first. Events whose timestamps
// cannot be parsed sort after every dated event, so a malformed feed never
// pushes stale noise to the top of the dashboard.
func SortEventsByRecency(events []entity.PatientEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		ti, iOK := events[i].Time()
		tj, jOK := events[j].Time()
		if iOK != jOK {
			return iOK
		}
		if !iOK {
			return false
		}
		return ti.After(tj)
	})
}

func pickString(obj map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := obj[key]; ok {
			if s := stringify(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func pickOptString(obj map[string]any, keys ...string) *string {
	for _, key := range keys {
		if v, ok := obj[key]; ok && v != nil {
			if s := stringify(v); s != "" {
				return &s
			}
		}
	}
	return nil
}

func pickInt(obj map[string]any, keys ...string) int {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case float64:
			return int(v)
		case string:
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
	}
	return 0
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; ids are integral in practice
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
