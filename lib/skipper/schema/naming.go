package schema

import (
	"go/token"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RawIdentifierPrefix is stripped from field names before an alias is derived.
const RawIdentifierPrefix = "r#"

// TrimRawIdentifier removes every leading raw-identifier escape from name.
func TrimRawIdentifier(name string) string {
	for strings.HasPrefix(name, RawIdentifierPrefix) {
		name = strings.TrimPrefix(name, RawIdentifierPrefix)
	}
	return name
}

// EscapeKeyword appends "_" to identifiers that collide with a Go keyword.
func EscapeKeyword(name string) string {
	if name == "" || name == "_" {
		return "_" + name
	}
	if token.IsKeyword(name) {
		return name + "_"
	}
	return name
}

// UpperCamelCase joins the words of s, upper-casing the first rune of each.
// Existing upper-case runs are kept, so "ID" stays "ID" and "user_id" becomes "UserId".
func UpperCamelCase(s string) string {
	caser := cases.Title(language.Und, cases.NoLower)
	var b strings.Builder
	for _, word := range splitWords(s) {
		b.WriteString(caser.String(word))
	}
	return b.String()
}

// LowerCamelCase is UpperCamelCase with the leading upper-case run lowered.
// "HTTPServer" becomes "httpServer", "ID" becomes "id".
func LowerCamelCase(s string) string {
	runes := []rune(UpperCamelCase(s))
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	switch {
	case n == 0:
	case n == 1 || n == len(runes):
		for i := 0; i < n; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	default:
		for i := 0; i < n-1; i++ {
			runes[i] = unicode.ToLower(runes[i])
		}
	}
	return string(runes)
}

// splitWords 按分隔符以及小写到大写的边界拆分单词
func splitWords(s string) []string {
	var words []string
	var cur []rune
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	runes := []rune(s)
	for i, r := range runes {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case i > 0 && unicode.IsUpper(r) && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
	}
	flush()
	return words
}

// ColumnAlias returns the alias used to key a field in predicates and in
// Get/Set: the enum_name override verbatim, or the escaped upper-camel field name.
func ColumnAlias(f FieldDescriptor) string {
	if alias, ok := f.Alias.Get(); ok {
		return alias
	}
	return EscapeKeyword(UpperCamelCase(TrimRawIdentifier(f.Name)))
}

// ParamName returns the constructor parameter identifier for a field.
func ParamName(f FieldDescriptor) string {
	return EscapeKeyword(LowerCamelCase(TrimRawIdentifier(f.Name)))
}

// uniqueNames hands out identifiers, suffixing a counter on collision.
type uniqueNames map[string]struct{}

func (u uniqueNames) get(name string) string {
	candidate := name
	for i := 2; ; i++ {
		if _, ok := u[candidate]; !ok {
			u[candidate] = struct{}{}
			return candidate
		}
		candidate = name + strconv.Itoa(i)
	}
}
