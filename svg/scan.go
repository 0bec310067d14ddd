// Package svg edits and renders halo SVG documents as text. Only the root
// element is ever parsed; everything else is treated as opaque text.
package svg

import (
	"strings"
)

// RootTag locates the root <svg> element of a document.
type RootTag struct {
	Start       int  // index of '<'
	AttrPoint   int  // just after the tag name, where root attributes go
	ChildPoint  int  // just after the closing '>', where child elements go
	SelfClosing bool // the root ends with "/>"
}

// Attributes returns the text between the tag name and the closing bracket.
func (r RootTag) Attributes(doc string) string {
	end := r.ChildPoint - 1
	if r.SelfClosing {
		end--
	}
	return doc[r.AttrPoint:end]
}

// Scan finds the root element. It skips the XML prolog, comments, doctype
// and processing instructions, matches the tag name case-insensitively and
// ignores '>' inside quoted attribute values.
func Scan(doc string) (RootTag, bool) {
	i := 0
	for i < len(doc) {
		lt := strings.IndexByte(doc[i:], '<')
		if lt < 0 {
			return RootTag{}, false
		}
		i += lt
		rest := doc[i:]
		switch {
		case strings.HasPrefix(rest, "<!--"):
			end := strings.Index(rest, "-->")
			if end < 0 {
				return RootTag{}, false
			}
			i += end + 3
			continue
		case strings.HasPrefix(rest, "<?"), strings.HasPrefix(rest, "<!"):
			end := strings.IndexByte(rest, '>')
			if end < 0 {
				return RootTag{}, false
			}
			i += end + 1
			continue
		}
		if len(rest) >= 4 && strings.EqualFold(rest[1:4], "svg") && (len(rest) == 4 || isNameEnd(rest[4])) {
			return scanTag(doc, i)
		}
		i++
	}
	return RootTag{}, false
}

func isNameEnd(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '>' || c == '/'
}

func scanTag(doc string, start int) (RootTag, bool) {
	r := RootTag{Start: start, AttrPoint: start + 4}
	var quote byte
	for j := r.AttrPoint; j < len(doc); j++ {
		c := doc[j]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '>':
			r.ChildPoint = j + 1
			r.SelfClosing = j > r.AttrPoint && doc[j-1] == '/'
			return r, true
		}
	}
	return RootTag{}, false
}

// attrs splits the attribute text of a tag into key/value pairs. Keys are
// lowercased; values keep their case.
func attrs(s string) map[string]string {
	m := make(map[string]string)
	i := 0
	for i < len(s) {
		eq := strings.IndexByte(s[i:], '=')
		if eq < 0 {
			break
		}
		eq += i
		key := strings.TrimSpace(s[i:eq])
		if sp := strings.LastIndexAny(key, " \t\r\n"); sp >= 0 {
			key = key[sp+1:]
		}

		j := eq + 1
		for j < len(s) && (s[j] == ' ' || s[j] == '\t' || s[j] == '\n' || s[j] == '\r') {
			j++
		}
		if j >= len(s) || (s[j] != '"' && s[j] != '\'') {
			i = j
			continue
		}
		q := s[j]
		end := strings.IndexByte(s[j+1:], q)
		if end < 0 {
			break
		}
		if key != "" {
			m[strings.ToLower(key)] = s[j+1 : j+1+end]
		}
		i = j + 1 + end + 1
	}
	return m
}
