package manifest

// Structural scanning for source-embedded manifests. The scanner
// classifies every byte as code, string, or comment in one forward pass,
// then property lookup and value consumption only consider code bytes.
// This keeps brace counting honest for values that are themselves objects
// or arrays and for braces that appear inside strings or comments.

const (
	classCode    = byte(0)
	classString  = byte('s')
	classComment = byte('c')
)

// classify marks each byte of src as code, string content (quotes
// included), or comment content. Handles single, double, and backtick
// strings with backslash escapes, line comments, and block comments.
func classify(src []byte) []byte {
	class := make([]byte, len(src))
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '\'' || c == '"' || c == '`':
			quote := c
			class[i] = classString
			i++
			for i < len(src) {
				class[i] = classString
				if src[i] == '\\' && i+1 < len(src) {
					class[i+1] = classString
					i += 2
					continue
				}
				if src[i] == quote {
					i++
					break
				}
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				class[i] = classComment
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			class[i], class[i+1] = classComment, classComment
			i += 2
			for i < len(src) {
				class[i] = classComment
				if src[i] == '*' && i+1 < len(src) && src[i+1] == '/' {
					class[i+1] = classComment
					i += 2
					break
				}
				i++
			}
		default:
			i++
		}
	}
	return class
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// nextSignificant returns the index of the first code byte at or after i
// that is not whitespace, or len(src).
func nextSignificant(src, class []byte, i int) int {
	for ; i < len(src); i++ {
		if class[i] == classCode && !isSpace(src[i]) {
			return i
		}
	}
	return len(src)
}

// prevSignificant returns the index of the last code byte before i that
// is not whitespace, or -1.
func prevSignificant(src, class []byte, i int) int {
	for i--; i >= 0; i-- {
		if class[i] == classCode && !isSpace(src[i]) {
			return i
		}
	}
	return -1
}

// findProperty locates the next property named key at any object depth:
// the name (bare or quoted) must be preceded by '{' or ',' and followed
// by ':'. Returns the name start index and the index just past the ':',
// or -1.
func findProperty(src, class []byte, key string) (nameStart, afterColon int) {
	for p := 0; p+len(key) <= len(src); p++ {
		if string(src[p:p+len(key)]) != key {
			continue
		}

		start, end := p, p+len(key)
		quoted := p > 0 && end < len(src) &&
			(src[p-1] == '"' || src[p-1] == '\'') && src[end] == src[p-1] &&
			class[p-1] == classString
		if quoted {
			start, end = p-1, end+1
			// the quote must open the string: otherwise key is a substring
			// of a longer literal
			if start > 0 && class[start-1] == classString {
				continue
			}
		} else {
			if class[p] != classCode {
				continue
			}
			if p > 0 && isIdentChar(src[p-1]) {
				continue
			}
			if end < len(src) && isIdentChar(src[end]) {
				continue
			}
		}

		colon := nextSignificant(src, class, end)
		if colon >= len(src) || src[colon] != ':' {
			continue
		}

		prev := prevSignificant(src, class, start)
		if prev < 0 || (src[prev] != '{' && src[prev] != ',') {
			continue
		}

		return start, colon + 1
	}
	return -1, -1
}

// valueEnd consumes one value starting at the first significant byte at
// or after i and returns the index just past it: the position of the
// separating comma, the enclosing '}' or ']', or len(src). Nested
// braces, brackets, and parens are balanced; string and comment bytes
// are skipped wholesale.
func valueEnd(src, class []byte, i int) int {
	depth := 0
	for j := nextSignificant(src, class, i); j < len(src); j++ {
		if class[j] != classCode {
			continue
		}
		switch src[j] {
		case '{', '[', '(':
			depth++
		case '}', ']', ')':
			if depth == 0 {
				return j
			}
			depth--
		case ',':
			if depth == 0 {
				return j
			}
		}
	}
	return len(src)
}

// removeProperty removes every property named key from src, together
// with one adjacent comma: the leading comma when there is one, else the
// trailing comma, else nothing.
func removeProperty(src []byte, key string) ([]byte, bool) {
	removed := false
	for {
		class := classify(src)
		nameStart, afterColon := findProperty(src, class, key)
		if nameStart < 0 {
			break
		}

		end := valueEnd(src, class, afterColon)
		start := nameStart

		if prev := prevSignificant(src, class, nameStart); prev >= 0 && src[prev] == ',' {
			start = prev
		} else if end < len(src) && src[end] == ',' {
			end++
		}

		out := make([]byte, 0, len(src)-(end-start))
		out = append(out, src[:start]...)
		out = append(out, src[end:]...)
		src = out
		removed = true
	}
	return src, removed
}

// cleanupSeparators drops commas that removal left dangling: a comma
// directly before ',', '}', or ']', and a comma directly after '{' or
// '['. Only code bytes are considered.
func cleanupSeparators(src []byte) []byte {
	class := classify(src)
	drop := make([]bool, len(src))

	for i := 0; i < len(src); i++ {
		if class[i] != classCode || src[i] != ',' {
			continue
		}
		if next := nextSignificant(src, class, i+1); next < len(src) &&
			(src[next] == ',' || src[next] == '}' || src[next] == ']') {
			drop[i] = true
			continue
		}
		if prev := prevSignificant(src, class, i); prev >= 0 &&
			(src[prev] == '{' || src[prev] == '[') {
			drop[i] = true
		}
	}

	out := make([]byte, 0, len(src))
	for i, c := range src {
		if !drop[i] {
			out = append(out, c)
		}
	}
	return out
}
