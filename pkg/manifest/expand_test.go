package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnv(t *testing.T) {
	env := map[string]string{
		"FOO":   "foo",
		"EMPTY": "",
		"MEM":   "1g",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cases := []struct {
		Name   string
		Given  string
		Expect string
	}{
		{"NoVars", "image: postgres:13", "image: postgres:13"},
		{"Plain", "x: $FOO", "x: foo"},
		{"PlainUnset", "x: $NOPE", "x: "},
		{"Braced", "x: ${FOO}", "x: foo"},
		{"BracedUnset", "x: ${NOPE}", "x: "},
		{"DefaultUnset", "mem_limit: ${NOPE:-512m}", "mem_limit: 512m"},
		{"DefaultEmpty", "mem_limit: ${EMPTY:-512m}", "mem_limit: 512m"},
		{"DefaultNotUsed", "mem_limit: ${MEM:-512m}", "mem_limit: 1g"},
		{"EscapedDollar", "cmd: echo $$FOO", "cmd: echo $FOO"},
		{"TrailingDollar", "x: $", "x: $"},
		{"AdjacentText", "x: ${FOO}bar", "x: foobar"},
		{"NonVarChar", "price: $5", "price: $5"},
		{"UnclosedBrace", "x: ${FOO", "x: ${FOO"},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, string(ExpandEnv([]byte(c.Given), lookup)))
		})
	}
}
