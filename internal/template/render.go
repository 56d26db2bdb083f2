package template

import "strings"

// Lookup resolves placeholder keys. ok is false for keys that are not defined.
type Lookup interface {
	Lookup(key string) (value string, ok bool, err error)
}

// Render substitutes every ${key} token in format. A key the lookup does not
// define fails the render; nothing is passed through silently.
func Render(format string, values Lookup) (string, error) {
	var b strings.Builder
	b.Grow(len(format))

	for _, tok := range NewLexer(format).Tokenize() {
		switch tok.Type {
		case TokenText:
			b.WriteString(tok.Value)
		case TokenKey:
			v, ok, err := values.Lookup(tok.Value)
			if err != nil {
				return "", WrapRenderError(tok.Pos, tok.Value, err)
			}
			if !ok {
				return "", NewUnresolvedKeyError(tok.Pos, format, tok.Value)
			}
			b.WriteString(v)
		}
	}

	return b.String(), nil
}

// RenderVersion renders a version format and slugifies the result.
func RenderVersion(format string, values Lookup) (string, error) {
	s, err := Render(format, values)
	if err != nil {
		return "", err
	}
	return Slugify(s), nil
}

// Keys returns the placeholder keys referenced by format, in order of appearance.
func Keys(format string) []string {
	var keys []string
	for _, tok := range NewLexer(format).Tokenize() {
		if tok.Type == TokenKey {
			keys = append(keys, tok.Value)
		}
	}
	return keys
}
