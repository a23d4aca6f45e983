package manifest

import (
	"os"
	"strings"
)

// LookupFunc resolves a variable name; the bool reports whether it is set.
type LookupFunc func(key string) (string, bool)

// OSLookup resolves variables from the process environment.
func OSLookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

// ExpandEnv substitutes environment variables into raw manifest bytes before
// they're parsed. Supported forms:
//
//	$VAR            plain reference; unset expands to ""
//	${VAR}          braced reference; unset expands to ""
//	${VAR:-default} braced reference with default when unset or empty
//	$$              a literal dollar sign
func ExpandEnv(in []byte, lookup LookupFunc) []byte {
	if lookup == nil {
		lookup = OSLookup
	}

	var b strings.Builder
	b.Grow(len(in))

	s := string(in)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '$' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			b.WriteByte(c)
			break
		}

		next := s[i+1]
		if next == '$' { // $$ escape
			b.WriteByte('$')
			i++
			continue
		}

		if next == '{' {
			end := strings.IndexByte(s[i+2:], '}')
			if end < 0 {
				b.WriteByte(c)
				continue
			}
			expr := s[i+2 : i+2+end]
			i += 2 + end

			name, def, hasDef := strings.Cut(expr, ":-")
			val, ok := lookup(name)
			if hasDef && (!ok || val == "") {
				val = def
			}
			b.WriteString(val)
			continue
		}

		if !isVarStart(next) {
			b.WriteByte(c)
			continue
		}

		j := i + 1
		for j < len(s) && isVarChar(s[j]) {
			j++
		}
		val, _ := lookup(s[i+1 : j])
		b.WriteString(val)
		i = j - 1
	}

	return []byte(b.String())
}

func isVarStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isVarChar(c byte) bool {
	return isVarStart(c) || (c >= '0' && c <= '9')
}
