package selection

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/showstore/pkg/types"
)

// rewrite validates a WHERE or ORDER BY fragment and qualifies the bare
// column names in it. String literals pass through untouched.
func (b *Builder) rewrite(fragment string) (string, error) {
	var out strings.Builder
	n := len(fragment)
	for i := 0; i < n; {
		c := fragment[i]
		switch {
		case c == ';':
			return "", unsafe(fragment)
		case c == '-' && i+1 < n && fragment[i+1] == '-':
			return "", unsafe(fragment)
		case c == '/' && i+1 < n && fragment[i+1] == '*':
			return "", unsafe(fragment)
		case c == '\'':
			j := skipQuoted(fragment, i, '\'')
			if j < 0 {
				return "", unsafe(fragment)
			}
			out.WriteString(fragment[i:j])
			i = j
		case c == '"' || c == '`':
			j := skipQuoted(fragment, i, c)
			if j < 0 {
				return "", unsafe(fragment)
			}
			word := strings.ReplaceAll(fragment[i+1:j-1], string([]byte{c, c}), string(c))
			res, err := b.resolve(word, fragment[i:j], prevByte(fragment, i), nextByte(fragment, j))
			if err != nil {
				return "", err
			}
			out.WriteString(res)
			i = j
		case isIdentStart(c):
			j := i
			for j < n && isIdentPart(fragment[j]) {
				j++
			}
			word := fragment[i:j]
			if i > 0 && isParamPrefix(fragment[i-1]) {
				out.WriteString(word)
			} else {
				res, err := b.resolve(word, word, prevByte(fragment, i), nextByte(fragment, j))
				if err != nil {
					return "", err
				}
				out.WriteString(res)
			}
			i = j
		case c >= '0' && c <= '9':
			j := i
			for j < n && (isIdentPart(fragment[j]) || fragment[j] == '.') {
				j++
			}
			out.WriteString(fragment[i:j])
			i = j
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String(), nil
}

// resolve maps one identifier of a fragment. raw is the identifier as
// written, quotes included.
func (b *Builder) resolve(word, raw string, prev, next byte) (string, error) {
	if prev == '.' || next == '.' || next == '(' {
		return raw, nil
	}
	key := strings.ToLower(word)
	if m, ok := b.mapped[key]; ok && len(m.args) == 0 {
		if isQualified(m.expr) {
			return m.expr, nil
		}
		return "(" + m.expr + ")", nil
	}
	owners := b.owners(key)
	switch len(owners) {
	case 0:
		return raw, nil
	case 1:
		if len(b.sources) > 1 {
			return owners[0] + "." + key, nil
		}
		return raw, nil
	default:
		return "", fmt.Errorf("%w: %s is in %s", types.ErrAmbiguousColumn, word, strings.Join(owners, ", "))
	}
}

func unsafe(fragment string) error {
	return fmt.Errorf("%w: %q", types.ErrUnsafeFragment, fragment)
}

// skipQuoted returns the index just past the quoted run starting at i, or
// -1 when it is not terminated. A doubled quote is an escaped quote.
func skipQuoted(s string, i int, q byte) int {
	for j := i + 1; j < len(s); j++ {
		if s[j] != q {
			continue
		}
		if j+1 < len(s) && s[j+1] == q {
			j++
			continue
		}
		return j + 1
	}
	return -1
}

func prevByte(s string, i int) byte {
	for j := i - 1; j >= 0; j-- {
		if s[j] != ' ' && s[j] != '\t' && s[j] != '\n' {
			return s[j]
		}
	}
	return 0
}

func nextByte(s string, i int) byte {
	for j := i; j < len(s); j++ {
		if s[j] != ' ' && s[j] != '\t' && s[j] != '\n' {
			return s[j]
		}
	}
	return 0
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func isParamPrefix(c byte) bool {
	return c == ':' || c == '@' || c == '$'
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentPart(s[i]) {
			return false
		}
	}
	return true
}

// isQualified reports whether s is a plain or table-qualified identifier.
func isQualified(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return false
	}
	for _, p := range parts {
		if !isIdent(p) {
			return false
		}
	}
	return true
}
