package ingest

import (
	"strconv"
	"strings"
	"time"

	"go-delivery-analytics/internal/model"
)

// Spreadsheet day-count serials are relative to 1899-12-30: serial 25569 is
// 1970-01-01.
const serialEpochOffset = 25569

// fallbackFacilityGroup is used when a facility name is too short to carry
// a 2-character prefix.
const fallbackFacilityGroup = "OT"

// ------------------- Row mapping -------------------

// MapRow converts one validated raw row into a normalized Ticket, or nil
// when the dosing date is missing or unparseable; a ticket without a valid
// date cannot exist. Every other malformed field degrades to zero/empty/
// absent instead of rejecting the row.
func MapRow(r RawRow) *model.Ticket {
	date, ok := parseDay(r.cell(colDosingDate))
	if !ok {
		return nil
	}

	facility := cellString(r.cell(colFacility))
	headerCode := cellString(r.cell(colHeaderCode))
	resistance := cellString(r.cell(colResistance))
	group := headerCode + "-" + resistance

	departure, depOK := parseTimestamp(r.cell(colDeparture))
	arrival, arrOK := parseTimestamp(r.cell(colArrival))
	unloadStart, usOK := parseTimestamp(r.cell(colUnloadStart))
	unloadEnd, ueOK := parseTimestamp(r.cell(colUnloadEnd))
	deadline, dlOK := parseTimestamp(r.cell(colUsageDeadline))

	var travel, unload *float64
	if depOK && arrOK && !arrival.Before(departure) {
		m := arrival.Sub(departure).Minutes()
		travel = &m
	}
	if usOK && ueOK && !unloadEnd.Before(unloadStart) {
		m := unloadEnd.Sub(unloadStart).Minutes()
		unload = &m
	}
	var late *bool
	if ueOK && dlOK {
		l := unloadEnd.After(deadline)
		late = &l
	}

	var exposures []string
	for _, c := range []column{colExposureGeneral, colExposure1, colExposure2, colExposure3} {
		if v := cellString(r.cell(c)); v != "" {
			exposures = append(exposures, v)
		}
	}

	return &model.Ticket{
		ID:               facility + "|" + cellString(r.cell(colTicket)),
		Facility:         facility,
		FacilityGroup:    facilityGroup(facility),
		Group:            group,
		Nomenclature:     group,
		Item:             cellString(r.cell(colItemSize)),
		Quality:          cellString(r.cell(colConsistency)),
		Packaging:        strings.Join(exposures, "+"),
		CustomerID:       cellString(r.cell(colCustomerTaxID)),
		CustomerName:     cellString(r.cell(colCustomerName)),
		Plate:            CleanPlate(cellString(r.cell(colPlate))),
		Carrier:          cellString(r.cell(colCarrier)),
		Date:             date,
		Quantity:         parseNumber(r.cell(colVolume)),
		WaterCementRatio: parseNumber(r.cell(colWaterCementRatio)),
		CementContent:    parseNumber(r.cell(colCementContent)),
		TravelMinutes:    travel,
		UnloadMinutes:    unload,
		LateUnload:       late,
	}
}

// facilityGroup derives the uppercase 2-character prefix of the facility
// name, with a literal fallback for degenerate names.
func facilityGroup(facility string) string {
	runes := []rune(facility)
	if len(runes) < 2 {
		return fallbackFacilityGroup
	}
	return strings.ToUpper(string(runes[:2]))
}

// CleanPlate normalizes a vehicle plate: strip every non-alphanumeric
// character, uppercase the remainder.
func CleanPlate(plate string) string {
	var b strings.Builder
	b.Grow(len(plate))
	for _, ch := range plate {
		switch {
		case ch >= '0' && ch <= '9':
			b.WriteRune(ch)
		case ch >= 'A' && ch <= 'Z':
			b.WriteRune(ch)
		case ch >= 'a' && ch <= 'z':
			b.WriteRune(ch - ('a' - 'A'))
		}
	}
	return b.String()
}

// ------------------- Scalar parsing -------------------

// cellString renders a scalar cell as text. Numeric ticket numbers and codes
// come back from spreadsheet decoding as numbers; they format without an
// exponent.
func cellString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}

// absent mirrors the upstream falsy check: nil, empty string and numeric
// zero all count as "no value".
func absent(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case int:
		return val == 0
	case float64:
		return val == 0
	}
	return false
}

// parseDay parses a date-bearing cell down to an ISO YYYY-MM-DD string.
// Accepts a native date, a day-count serial, "DD/MM/YYYY" (an optional
// trailing time is ignored) or any generically parseable date string.
func parseDay(v any) (string, bool) {
	t, ok := parseDateValue(v, false)
	if !ok {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

// parseTimestamp parses a combined date+time cell. String forms must carry a
// well-formed "DD/MM/YYYY HH:MM:SS"; malformed timestamps report absent.
func parseTimestamp(v any) (time.Time, bool) {
	return parseDateValue(v, true)
}

func parseDateValue(v any, needTime bool) (time.Time, bool) {
	if absent(v) {
		return time.Time{}, false
	}
	switch val := v.(type) {
	case time.Time:
		return val, true
	case int:
		return serialToTime(float64(val)), true
	case float64:
		return serialToTime(val), true
	case string:
		if needTime {
			return parseDateTimeString(val)
		}
		return parseDateString(val)
	}
	return time.Time{}, false
}

// serialToTime converts a spreadsheet day-count serial (with an optional
// fractional time-of-day part) to a UTC time.
func serialToTime(serial float64) time.Time {
	ms := int64((serial - serialEpochOffset) * 86400 * 1000)
	return time.UnixMilli(ms).UTC()
}

// genericDateLayouts are tried for date strings that are not in DD/MM/YYYY
// form.
var genericDateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseDateString(s string) (time.Time, bool) {
	datePart, _, _ := strings.Cut(s, " ")
	if datePart != "" {
		if d, m, y, ok := splitDMY(datePart); ok {
			return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC), true
		}
	}
	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

func parseDateTimeString(s string) (time.Time, bool) {
	datePart, timePart, found := strings.Cut(s, " ")
	if !found {
		return time.Time{}, false
	}
	d, m, y, ok := splitDMY(datePart)
	if !ok {
		return time.Time{}, false
	}
	tp := strings.Split(timePart, ":")
	if len(tp) != 3 {
		return time.Time{}, false
	}
	hh, err1 := strconv.Atoi(tp[0])
	mm, err2 := strconv.Atoi(tp[1])
	ss, err3 := strconv.Atoi(tp[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), d, hh, mm, ss, 0, time.UTC), true
}

func splitDMY(s string) (day, month, year int, ok bool) {
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return 0, 0, 0, false
	}
	d, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	y, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return d, m, y, true
}

// parseNumber coerces a numeric cell, degrading to zero for absent or
// unparseable input. String input keeps its longest leading numeric prefix,
// matching how the upstream dashboard read these fields.
func parseNumber(v any) float64 {
	switch val := v.(type) {
	case nil:
		return 0
	case int:
		return float64(val)
	case float64:
		return val
	case string:
		return prefixFloat(strings.TrimSpace(val))
	}
	return 0
}

func prefixFloat(s string) float64 {
	end := 0
	seenDigit := false
	seenDot := false
	seenExp := false
	for i, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
			seenDigit = true
		case (ch == '+' || ch == '-') && i == 0:
		case ch == '.' && !seenDot && !seenExp:
			seenDot = true
		case (ch == 'e' || ch == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			goto done
		}
		end = i + 1
	}
done:
	if !seenDigit {
		return 0
	}
	f, err := strconv.ParseFloat(strings.TrimRight(s[:end], "eE+-."), 64)
	if err != nil {
		return 0
	}
	return f
}
