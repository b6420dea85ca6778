package normalize

import (
	"strconv"
	"strings"

	"github.com/Sanghyeon-Jo/sim-racing-telemetry-pipeline/internal/model"
)

// Conversion factors to the canonical speed unit (km/h).
const (
	msToKmh  = 3.6
	mphToKmh = 1.60934
)

// CoerceCell strips everything that cannot be part of a float literal
// (stray unit suffixes, thousands separators, quoting artifacts) and parses
// the remainder. Unparseable cells become missing, never an error.
func CoerceCell(s string) model.Value {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '+' || r == 'e' || r == 'E':
			b.WriteRune(r)
		}
	}
	f, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return model.Value{}
	}
	return model.Num(f)
}

// IsSpeedColumn infers the speed role from a canonical column name.
func IsSpeedColumn(name string) bool {
	return strings.Contains(name, "speed") ||
		strings.Contains(name, "velocity") ||
		strings.Contains(name, "vel")
}

// IsTimeColumn infers the time role from a canonical column name.
func IsTimeColumn(name string) bool {
	return strings.Contains(name, "time")
}

// Converter rescales one cell into the canonical unit for its column.
type Converter func(model.Value) model.Value

func identity(v model.Value) model.Value { return v }

func scale(factor float64) Converter {
	return func(v model.Value) model.Value {
		if v.Missing() {
			return v
		}
		return model.Num(v.F * factor)
	}
}

func millisToSeconds(v model.Value) model.Value {
	if v.Missing() {
		return v
	}
	return model.Num(v.F / 1000.0)
}

// ConverterFor picks the unit conversion for a column from its inferred role
// and resolved unit: speed columns go to km/h, time columns to seconds.
// Columns already canonical, columns with opaque units, and columns with no
// recognized role are left unchanged. Missing cells always stay missing.
func ConverterFor(name, unit string) Converter {
	switch {
	case IsSpeedColumn(name):
		switch unit {
		case UnitMs:
			return scale(msToKmh)
		case UnitMph:
			return scale(mphToKmh)
		}
	case IsTimeColumn(name):
		if unit == UnitMil {
			return millisToSeconds
		}
	}
	return identity
}
