package memdom

import "strings"

// selector is a parsed compound simple selector.
type selector struct {
	tag    string
	id     string
	labels []string
	attrs  []attrCond
}

type attrCond struct {
	name     string
	value    string
	hasValue bool
}

// parseSelector splits a compound simple selector into its conditions.
// An empty string parses to a selector matching nothing.
func parseSelector(s string) selector {
	var sel selector
	s = strings.TrimSpace(s)
	i := 0
	for i < len(s) {
		switch s[i] {
		case '#':
			j := tokenEnd(s, i+1)
			sel.id = s[i+1 : j]
			i = j
		case '.':
			j := tokenEnd(s, i+1)
			sel.labels = append(sel.labels, s[i+1:j])
			i = j
		case '[':
			j := strings.IndexByte(s[i:], ']')
			if j < 0 {
				// Unterminated attribute condition: treat the rest as the body.
				j = len(s) - i
			}
			body := s[i+1 : i+j]
			if eq := strings.IndexByte(body, '='); eq >= 0 {
				sel.attrs = append(sel.attrs, attrCond{
					name:     strings.TrimSpace(body[:eq]),
					value:    strings.Trim(strings.TrimSpace(body[eq+1:]), `"'`),
					hasValue: true,
				})
			} else {
				sel.attrs = append(sel.attrs, attrCond{name: strings.TrimSpace(body)})
			}
			i += j + 1
		default:
			j := tokenEnd(s, i)
			sel.tag = s[i:j]
			i = j
		}
	}
	return sel
}

// tokenEnd returns the index just past a name token starting at i.
func tokenEnd(s string, i int) int {
	for i < len(s) && s[i] != '#' && s[i] != '.' && s[i] != '[' {
		i++
	}
	return i
}

// empty reports whether the selector has no conditions at all.
func (sel selector) empty() bool {
	return sel.tag == "" && sel.id == "" && len(sel.labels) == 0 && len(sel.attrs) == 0
}

// matches reports whether a node satisfies every condition.
func (sel selector) matches(n *Node) bool {
	if sel.empty() {
		return false
	}
	if sel.tag != "" && sel.tag != n.tag {
		return false
	}
	if sel.id != "" && sel.id != n.id {
		return false
	}
	for _, l := range sel.labels {
		if !n.HasLabel(l) {
			return false
		}
	}
	for _, a := range sel.attrs {
		v, ok := n.Attr(a.name)
		if !ok {
			return false
		}
		if a.hasValue && v != a.value {
			return false
		}
	}
	return true
}
