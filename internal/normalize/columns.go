// Package normalize canonicalizes column names, resolves unit annotations,
// coerces dirty cell text to numbers, and clamps values into declared ranges.
// Every transform here is deterministic and idempotent.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	camelPairRe  = regexp.MustCompile(`([a-z0-9])([A-Z][a-z]+)`)
	lowerUpperRe = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// Canonical is the raw-lowercase transform used on the units-detection path:
// trim and lower-case, nothing else.
func Canonical(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// SnakeCase converts a field name to snake_case: camel-case boundaries get an
// underscore inserted, then everything is lower-cased and spaces/hyphens
// become underscores. Running it twice yields the same result.
func SnakeCase(name string) string {
	s := camelPairRe.ReplaceAllString(name, `${1}_${2}`)
	s = lowerUpperRe.ReplaceAllString(s, `${1}_${2}`)
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "-", "_")
}

// DedupeNames resolves column-name collisions left to right: the first
// occurrence keeps its name, the Nth repeat gets an _N suffix. Deterministic
// for a given input order.
func DedupeNames(names []string) []string {
	seen := make(map[string]int, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		n, dup := seen[name]
		if dup {
			seen[name] = n + 1
			out = append(out, fmt.Sprintf("%s_%d", name, n+1))
			continue
		}
		seen[name] = 0
		out = append(out, name)
	}
	return out
}
