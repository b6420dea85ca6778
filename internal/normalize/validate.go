package normalize

import "github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/model"

// Range is an inclusive clamp range for a column class.
type Range struct {
	Min, Max float64
}

// Declared ranges. The decimal ranges mirror DECIMAL(5,3) and DECIMAL(6,3)
// storage bounds in the downstream store.
var (
	RangeUnit      = Range{Min: 0, Max: 1}
	RangeDecimal53 = Range{Min: -99.999, Max: 99.999}
	RangeDecimal63 = Range{Min: -999.999, Max: 999.999}
)

// defaultRanges maps canonical column names to their declared range.
// Control inputs are normalized pedal positions; tire pressures are bounded
// decimal fields.
var defaultRanges = map[string]Range{
	"throttle":          RangeUnit,
	"brake":             RangeUnit,
	"clutch":            RangeUnit,
	"throttle_position": RangeUnit,
	"brake_position":    RangeUnit,
	"clutch_position":   RangeUnit,
	"tire_pressure_fl":  RangeDecimal63,
	"tire_pressure_fr":  RangeDecimal63,
	"tire_pressure_rl":  RangeDecimal63,
	"tire_pressure_rr":  RangeDecimal63,
}

// RangeFor returns the declared range for a canonical column name.
func RangeFor(name string) (Range, bool) {
	r, ok := defaultRanges[name]
	return r, ok
}

// Clamp saturates a value into the range. Out-of-range sensor noise is
// tolerated, not rejected; missing stays missing.
func Clamp(v model.Value, r Range) model.Value {
	if v.Missing() {
		return v
	}
	if v.F > r.Max {
		return model.Num(r.Max)
	}
	if v.F < r.Min {
		return model.Num(r.Min)
	}
	return v
}

// ClampTable applies declared ranges to every matching column in place.
func ClampTable(t *model.Table) {
	for i, col := range t.Schema {
		r, ok := RangeFor(col.Name)
		if !ok {
			continue
		}
		for _, row := range t.Rows {
			row[i] = Clamp(row[i], r)
		}
	}
}
