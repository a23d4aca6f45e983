package manifest

import (
	"path"

	"github.com/ventrath/gantry/pkg/structs"
)

// Predicate is a job's run condition, evaluated against the triggering
// event. All set fields must match (conjunction); within a field, any listed
// value may match. A nil predicate always matches.
type Predicate struct {
	// Event types that satisfy the predicate, eg. [push, release].
	Event []string `yaml:"event"`

	// Branch globs, matched against the event branch.
	Branch []string `yaml:"branch"`

	// Tag globs, matched against the event tag.
	Tag []string `yaml:"tag"`

	// Actions, matched exactly against the event action (eg. "published").
	Action []string `yaml:"action"`
}

// Matches evaluates the predicate against an event.
func (p *Predicate) Matches(ev structs.Event) bool {
	if p == nil {
		return true
	}
	if len(p.Event) > 0 && !matchAnyExact(p.Event, string(ev.Type)) {
		return false
	}
	if len(p.Branch) > 0 && !matchAnyGlob(p.Branch, ev.Branch) {
		return false
	}
	if len(p.Tag) > 0 && !matchAnyGlob(p.Tag, ev.Tag) {
		return false
	}
	if len(p.Action) > 0 && !matchAnyExact(p.Action, ev.Action) {
		return false
	}
	return true
}

// matchAnyGlob returns true when the value matches any pattern, or when no
// patterns are given (no filter).
func matchAnyGlob(patterns []string, value string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pat := range patterns {
		if pat == value {
			return true
		}
		if ok, err := path.Match(pat, value); err == nil && ok {
			return true
		}
	}
	return false
}

func matchAnyExact(values []string, value string) bool {
	if len(values) == 0 {
		return true
	}
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
