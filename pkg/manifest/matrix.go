package manifest

import (
	"fmt"
	"sort"
	"strings"
)

// ExpandMatrix returns one parameter set per combination of the strategy's
// matrix values (cartesian product), in a stable order. A nil strategy (or
// empty matrix) yields a single empty set: the job runs once.
func ExpandMatrix(s *Strategy) []map[string]string {
	if s == nil || len(s.Matrix) == 0 {
		return []map[string]string{{}}
	}

	params := make([]string, 0, len(s.Matrix))
	for p := range s.Matrix {
		params = append(params, p)
	}
	sort.Strings(params)

	sets := []map[string]string{{}}
	for _, param := range params {
		next := make([]map[string]string, 0, len(sets)*len(s.Matrix[param]))
		for _, base := range sets {
			for _, val := range s.Matrix[param] {
				set := make(map[string]string, len(base)+1)
				for k, v := range base {
					set[k] = v
				}
				set[param] = val
				next = append(next, set)
			}
		}
		sets = next
	}

	return sets
}

// InstanceName renders the display name for one matrix instance of a job,
// eg. "test (go=1.22, os=linux)". Without params it is just the key.
func InstanceName(key string, params map[string]string) string {
	if len(params) == 0 {
		return key
	}
	names := make([]string, 0, len(params))
	for p := range params {
		names = append(names, p)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, p := range names {
		parts = append(parts, fmt.Sprintf("%s=%s", p, params[p]))
	}
	return fmt.Sprintf("%s (%s)", key, strings.Join(parts, ", "))
}

// Interpolate substitutes {{matrix.param}} references with the instance's
// parameter values.
func Interpolate(in string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(in, "{{") {
		return in
	}
	out := in
	for param, val := range params {
		out = strings.ReplaceAll(out, fmt.Sprintf("{{matrix.%s}}", param), val)
		out = strings.ReplaceAll(out, fmt.Sprintf("{{ matrix.%s }}", param), val)
	}
	return out
}

// InterpolateMap applies Interpolate to every value of the given map.
func InterpolateMap(in map[string]string, params map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = Interpolate(v, params)
	}
	return out
}
