package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// Path is a parsed dot-path such as $post.tags.0.
// Root is the variable name looked up in the scope chain; Keys are navigated
// through nested objects and arrays.
type Path struct {
	Root string
	Keys []string
}

// ParsePath parses a dot-path. The leading '$' is optional.
func ParsePath(s string) (Path, error) {
	s = strings.TrimPrefix(s, "$")
	if s == "" {
		return Path{}, ErrInvalidPath.With(slog.String("path", s))
	}

	segs := strings.Split(s, ".")
	for _, seg := range segs {
		if !isSegment(seg) {
			return Path{}, ErrInvalidPath.With(slog.String("path", "$"+s))
		}
	}

	if !isIdentifierStart(segs[0][0]) {
		return Path{}, ErrInvalidPath.With(slog.String("path", "$"+s))
	}

	return Path{Root: segs[0], Keys: segs[1:]}, nil
}

func isSegment(seg string) bool {
	if seg == "" {
		return false
	}

	for i := range len(seg) {
		if !isIdentifierContinue(seg[i]) {
			return false
		}
	}

	return true
}

// String returns the path in its $-prefixed source form.
func (p Path) String() string {
	if len(p.Keys) == 0 {
		return "$" + p.Root
	}

	return "$" + p.Root + "." + strings.Join(p.Keys, ".")
}

// IsZero reports whether p is the zero Path.
func (p Path) IsZero() bool { return p.Root == "" }

// Tail returns the path made of p's keys, rooted at the first key.
// It returns the zero Path when p has no keys.
func (p Path) Tail() Path {
	if len(p.Keys) == 0 {
		return Path{}
	}

	return Path{Root: p.Keys[0], Keys: p.Keys[1:]}
}

// Lookup navigates keys through v. Numeric keys index into arrays.
// It reports false when any segment is missing or an intermediate value is
// not navigable.
func Lookup(v Value, keys ...string) (Value, bool) {
	for _, key := range keys {
		switch v.Kind() {
		case KindObject:
			f, ok := v.Field(key)
			if !ok {
				return Value{}, false
			}

			v = f

		case KindArray:
			i, err := strconv.Atoi(key)
			if err != nil {
				return Value{}, false
			}

			e, ok := v.Index(i)
			if !ok {
				return Value{}, false
			}

			v = e

		default:
			return Value{}, false
		}
	}

	return v, true
}
