package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ventrath/gantry/pkg/errors"
)

func TestFromDeps(t *testing.T) {
	cases := []struct {
		Name      string
		Given     map[string][]string
		Expect    []string // topological order
		ExpectErr error
	}{
		{
			Name:   "Empty",
			Given:  map[string][]string{},
			Expect: []string{},
		},
		{
			Name:   "NoEdges",
			Given:  map[string][]string{"b": nil, "a": nil},
			Expect: []string{"a", "b"},
		},
		{
			Name:   "Chain",
			Given:  map[string][]string{"a": nil, "b": {"a"}, "c": {"b"}},
			Expect: []string{"a", "b", "c"},
		},
		{
			Name:   "Diamond",
			Given:  map[string][]string{"a": nil, "b": {"a"}, "c": {"a"}, "d": {"b", "c"}},
			Expect: []string{"a", "b", "c", "d"},
		},
		{
			Name:      "SelfCycle",
			Given:     map[string][]string{"a": {"a"}},
			ExpectErr: errors.ErrCycleDetected,
		},
		{
			Name:      "TwoNodeCycle",
			Given:     map[string][]string{"a": {"b"}, "b": {"a"}},
			ExpectErr: errors.ErrCycleDetected,
		},
		{
			Name:      "CycleBehindRoot",
			Given:     map[string][]string{"a": nil, "b": {"a", "c"}, "c": {"b"}},
			ExpectErr: errors.ErrCycleDetected,
		},
		{
			Name:      "UnknownDep",
			Given:     map[string][]string{"a": {"nope"}},
			ExpectErr: errors.ErrUnknownDep,
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			g, err := FromDeps(c.Given)
			if c.ExpectErr != nil {
				assert.ErrorIs(t, err, c.ExpectErr)
				return
			}
			assert.Nil(t, err)

			order, err := g.Sort()
			assert.Nil(t, err)
			assert.Equal(t, c.Expect, order)
		})
	}
}

func TestDuplicateEdgesIgnored(t *testing.T) {
	g := New()
	g.AddNode("a")
	g.AddNode("b")

	assert.Nil(t, g.AddEdge("a", "b"))
	assert.Nil(t, g.AddEdge("a", "b"))

	assert.Equal(t, []string{"b"}, g.Dependents("a"))
	assert.Equal(t, []string{"a"}, g.Dependencies("b"))
}

func TestTransitiveDependents(t *testing.T) {
	g, err := FromDeps(map[string][]string{
		"a": nil,
		"b": {"a"},
		"c": {"b"},
		"d": {"c"},
		"x": {"a"},
	})
	assert.Nil(t, err)

	cases := []struct {
		Name   string
		Given  string
		Expect []string
	}{
		{"FromRoot", "a", []string{"b", "c", "d", "x"}},
		{"MidChain", "b", []string{"c", "d"}},
		{"Leaf", "d", []string{}},
		{"IndependentBranchUnaffected", "x", []string{}},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, g.TransitiveDependents(c.Given))
		})
	}
}

func TestReady(t *testing.T) {
	g, err := FromDeps(map[string][]string{
		"a": nil,
		"b": {"a"},
		"c": {"a"},
		"d": {"b", "c"},
	})
	assert.Nil(t, err)

	cases := []struct {
		Name   string
		Done   map[string]bool
		Active map[string]bool
		Expect []string
	}{
		{
			Name:   "NothingDone",
			Expect: []string{"a"},
		},
		{
			Name:   "RootDone",
			Done:   map[string]bool{"a": true},
			Expect: []string{"b", "c"},
		},
		{
			Name:   "RootDoneBranchActive",
			Done:   map[string]bool{"a": true},
			Active: map[string]bool{"b": true},
			Expect: []string{"c"},
		},
		{
			Name:   "JoinNotReadyUntilBothDone",
			Done:   map[string]bool{"a": true, "b": true},
			Expect: []string{"c"},
		},
		{
			Name:   "JoinReady",
			Done:   map[string]bool{"a": true, "b": true, "c": true},
			Expect: []string{"d"},
		},
		{
			Name:   "AllDone",
			Done:   map[string]bool{"a": true, "b": true, "c": true, "d": true},
			Expect: []string{},
		},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, g.Ready(c.Done, c.Active))
		})
	}
}
