package emissions

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Fields is a flat mapping of field name to value as returned by a record
// store. Values may be strings, numbers, booleans or times.
type Fields map[string]any

// Field names shared by every record regardless of method.
const (
	FieldID      = "name"
	FieldCompany = "company"
	FieldDate    = "date"
	FieldMethod  = "method"
)

//nolint:gochecknoglobals // Accepted date layouts, tried in order.
var dateLayouts = []string{
	time.DateOnly,
	time.RFC3339,
	time.RFC3339Nano,
	time.DateTime,
	"2006-01-02T15:04:05",
	"02-01-2006",
}

// ParseDate parses a record date. It returns the zero time and
// ErrInvalidDate when the value is empty or in no recognised layout.
func ParseDate(v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return time.Time{}, ErrInvalidDate
		}
		return d, nil
	case *time.Time:
		if d == nil || d.IsZero() {
			return time.Time{}, ErrInvalidDate
		}
		return *d, nil
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return time.Time{}, ErrInvalidDate
		}
		for _, layout := range dateLayouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	default:
		return time.Time{}, ErrInvalidDate
	}
}

// Float reads a numeric field. Missing or unparsable values read as zero,
// matching how the data-entry forms coerce blank inputs.
func (f Fields) Float(key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case int32:
		return float64(v)
	case uint:
		return float64(v)
	case uint64:
		return float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0
		}
		return n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Text reads a textual field. Non-string values are formatted with %v.
func (f Fields) Text(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// DecodeRecord builds an ActivityRecord from a flat field map. The method is
// taken from the argument, or from the "method" field when the argument is
// MethodUnknown. An unparsable date is not an error: the record keeps a zero
// Date so that it is excluded from time bucketing only.
func DecodeRecord(method Method, fields Fields) (ActivityRecord, error) {
	if method == MethodUnknown {
		parsed, err := ParseMethod(fields.Text(FieldMethod))
		if err != nil {
			return ActivityRecord{}, err
		}
		method = parsed
	}

	input, err := decodeInput(method, fields)
	if err != nil {
		return ActivityRecord{}, err
	}

	date, _ := ParseDate(fields[FieldDate])

	return ActivityRecord{
		ID:      fields.Text(FieldID),
		Company: fields.Text(FieldCompany),
		Date:    date,
		Method:  method,
		Input:   input,
	}, nil
}

// refrigerantUnit reads the fugitive unit selector. Refrigerant quantities
// are entered in kg unless stated otherwise.
func refrigerantUnit(f Fields) Unit {
	if u := ParseUnit(f.Text("unit_selection")); u != "" {
		return u
	}
	return UnitKg
}

func decodeInput(method Method, f Fields) (Input, error) {
	switch method {
	case MethodStationary:
		return StationaryInput{
			FuelType:     f.Text("fuel_type"),
			FuelName:     f.Text("fuel_selection"),
			ActivityType: f.Text("activity_types"),
			ActivityData: f.Float("activity_data"),
			Unit:         ParseUnit(f.Text("unit_selection")),
		}, nil
	case MethodMobileFuel:
		return MobileFuelInput{
			VehicleNo: f.Text("vehicle_no"),
			FuelType:  f.Text("fuel_selection"),
			FuelUsed:  f.Float("fuel_used"),
			Unit:      ParseUnit(f.Text("unit_selection")),
		}, nil
	case MethodMobileDistance:
		return MobileDistanceInput{
			VehicleNo:       f.Text("vehicle_no"),
			VehicleCategory: f.Text("transportation_type"),
			Distance:        f.Float("distance_traveled"),
			Unit:            ParseUnit(f.Text("unit_selection")),
		}, nil
	case MethodFugitiveScaleBase:
		return FugitiveScaleBaseInput{
			GasType:           f.Text("gas_type"),
			Unit:              refrigerantUnit(f),
			InventoryStart:    f.Float("inventory_start"),
			InventoryClose:    f.Float("inventory_close"),
			Purchase:          f.Float("purchase"),
			ReturnedUser:      f.Float("returned_user"),
			ReturnedRecycling: f.Float("returned_recycling"),
			ChargedEquipment:  f.Float("charged_equipment"),
			DeliveredUser:     f.Float("delivered_user"),
			ReturnedProducer:  f.Float("returned_producer"),
			SentOffsite:       f.Float("sent_offsite"),
			SentDestruction:   f.Float("sent_destruction"),
		}, nil
	case MethodFugitiveScreening:
		return FugitiveScreeningInput{
			Equipment:      f.Text("equipment_selection"),
			GasType:        f.Text("type_refrigeration"),
			GWP:            f.Float("gwp_refrigeration"),
			Units:          f.Float("no_of_units"),
			OriginalCharge: f.Float("original_charge"),
			AssemblyFactor: f.Float("assembly_ef"),
			Unit:           refrigerantUnit(f),
		}, nil
	case MethodFugitiveSimple:
		return FugitiveSimpleInput{
			GasType:         f.Text("type_refrigeration"),
			AmountPurchased: f.Float("amount_purchased"),
			Units:           f.Float("no_of_units"),
			GWP:             f.Float("gwp"),
			Unit:            refrigerantUnit(f),
		}, nil
	case MethodElectricity:
		unit := ParseUnit(f.Text("unit_selection"))
		if unit == "" {
			unit = UnitKWh
		}
		return ElectricityInput{
			ActivityType: f.Text("activity_types"),
			ActivityData: f.Float("activity_data"),
			Unit:         unit,
		}, nil
	case MethodTravelFuel:
		return TravelFuelInput{
			Description:    f.Text("description"),
			FuelType:       f.Text("fuel_type"),
			FuelConsumed:   f.Float("fuel_consumed"),
			Unit:           f.Text("unit"),
			EmissionFactor: f.Float("emission_factor"),
		}, nil
	case MethodTravelDistance:
		return TravelDistanceInput{
			Description:    f.Text("description"),
			TransportMode:  f.Text("transport_mode"),
			Distance:       f.Float("distance_traveled"),
			Unit:           f.Text("unit"),
			EmissionFactor: f.Float("emission_factor"),
		}, nil
	case MethodTravelSpend:
		return TravelSpendInput{
			Description: f.Text("description"),
			AmountSpent: f.Float("amount_spent"),
			Currency:    f.Text("currency"),
			EEIOFactor:  f.Float("eeio_ef"),
		}, nil
	case MethodUnknown:
		return nil, ErrUnknownMethod
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMethod, int(method))
	}
}

// EncodeRecord flattens a record back into a field map. Dates are written as
// YYYY-MM-DD; a zero date is omitted.
func EncodeRecord(r ActivityRecord) (Fields, error) {
	out := Fields{}
	if r.Input != nil {
		raw, err := json.Marshal(r.Input)
		if err != nil {
			return nil, fmt.Errorf("encoding %s input: %w", r.Method, err)
		}
		if err = json.Unmarshal(raw, &out); err != nil {
			return nil, fmt.Errorf("flattening %s input: %w", r.Method, err)
		}
	}
	out[FieldID] = r.ID
	out[FieldMethod] = r.Method.String()
	if r.Company != "" {
		out[FieldCompany] = r.Company
	}
	if r.HasDate() {
		out[FieldDate] = r.Date.Format(time.DateOnly)
	}
	return out, nil
}
