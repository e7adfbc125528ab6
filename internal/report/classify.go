package report

// classify.go partitions WBS codes into summary codes (those with at least
// one child in the working set) and leaf codes. A child is the parent code
// plus a dash and exactly two digits: NL-C-001 is the parent of NL-C-001-01
// but not of NL-C-0010 or NL-C-001-1.

import "strings"

// Classify partitions the given codes. Input order is preserved after
// de-duplication; blank entries are dropped. The function is total: any
// finite input yields a valid partition, and an empty input yields two
// empty partitions.
//
// The scan is linear: instead of probing every code for every possible
// child, each code is checked for the two-digit child suffix shape and, if
// it has one, its stripped parent is looked up in the set.
func Classify(codes []string) Classification {
	unique := make([]string, 0, len(codes))
	seen := make(map[string]bool, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" || seen[code] {
			continue
		}
		seen[code] = true
		unique = append(unique, code)
	}

	parents := make(map[string]bool)
	for _, code := range unique {
		if parent, ok := childParent(code); ok && seen[parent] {
			parents[parent] = true
		}
	}

	var c Classification
	for _, code := range unique {
		if parents[code] {
			c.Summary = append(c.Summary, code)
		} else {
			c.Leaf = append(c.Leaf, code)
		}
	}
	return c
}

// childParent strips a trailing "-DD" suffix (dash plus exactly two digits)
// and reports whether the code had that shape. The returned parent is only
// meaningful when ok is true.
func childParent(code string) (parent string, ok bool) {
	if len(code) < 4 {
		return "", false
	}
	tail := code[len(code)-3:]
	if tail[0] != '-' || !isDigit(tail[1]) || !isDigit(tail[2]) {
		return "", false
	}
	return code[:len(code)-3], true
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
