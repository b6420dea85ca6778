package normalize

// Canonical unit spellings. Anything outside this vocabulary passes through
// unchanged as an opaque unit with no conversion attached.
const (
	UnitKmh = "km/h"
	UnitMs  = "m/s"
	UnitMph = "mph"
	UnitSec = "s"
	UnitMil = "ms"
)

var unitAliases = map[string]string{
	"km/h":         UnitKmh,
	"kph":          UnitKmh,
	"kmh":          UnitKmh,
	"m/s":          UnitMs,
	"mps":          UnitMs,
	"mph":          UnitMph,
	"mi/h":         UnitMph,
	"s":            UnitSec,
	"sec":          UnitSec,
	"second":       UnitSec,
	"seconds":      UnitSec,
	"ms":           UnitMil,
	"millisecond":  UnitMil,
	"milliseconds": UnitMil,
}

// ResolveUnit maps a free-text unit token to its canonical form. Empty tokens
// resolve to "" (no unit); unrecognized tokens are returned lower-cased but
// otherwise untouched.
func ResolveUnit(raw string) string {
	u := Canonical(raw)
	if u == "" {
		return ""
	}
	if canon, ok := unitAliases[u]; ok {
		return canon
	}
	return u
}
