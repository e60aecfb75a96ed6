// Package version parses and orders dotted numeric version strings such as
// the ones published by app catalogs ("3.2.0", "1.0.12.4").
//
// Ordering walks the segments both versions share, left to right. When every
// shared segment is equal the versions compare equal, even if one of them has
// more segments: "1.2" and "1.2.5" are Equal.
package version

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	apperrors "storecheck/internal/errors"
)

// Ordering is the outcome of Compare.
type Ordering int

const (
	Less    Ordering = -1
	Equal   Ordering = 0
	Greater Ordering = 1
)

// String returns the lower-case name of the ordering.
func (o Ordering) String() string {
	switch o {
	case Less:
		return "less"
	case Greater:
		return "greater"
	default:
		return "equal"
	}
}

// Number is a parsed dotted version. The zero value has no segments and is
// not a valid version; use Parse.
type Number struct {
	segments []int
	Raw      string
}

// segmentRegex matches a single non-negative decimal segment.
var segmentRegex = regexp.MustCompile(`^[0-9]+$`)

// Parse splits s on "." and parses every segment as a non-negative integer.
// Surrounding whitespace is ignored. Any segment that is empty, signed,
// non-numeric or out of range yields an invalid_segment error.
func Parse(s string) (Number, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return Number{}, invalidSegment(s, "empty version string")
	}

	parts := strings.Split(trimmed, ".")
	segments := make([]int, 0, len(parts))
	for i, part := range parts {
		if !segmentRegex.MatchString(part) {
			return Number{}, invalidSegment(s, fmt.Sprintf("segment %d (%q) is not a non-negative integer", i+1, part))
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return Number{}, apperrors.New(apperrors.CodeInvalidSegment,
				fmt.Sprintf("invalid version %q: segment %d out of range", s, i+1), err)
		}
		segments = append(segments, n)
	}

	return Number{segments: segments, Raw: s}, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Number {
	n, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return n
}

func invalidSegment(raw, detail string) error {
	return apperrors.New(apperrors.CodeInvalidSegment, fmt.Sprintf("invalid version %q: %s", raw, detail), nil)
}

// Segments returns a copy of the parsed segments.
func (n Number) Segments() []int {
	out := make([]int, len(n.segments))
	copy(out, n.segments)
	return out
}

// Len returns the number of segments.
func (n Number) Len() int {
	return len(n.segments)
}

// String returns the canonical dotted form ("01.2" becomes "1.2").
func (n Number) String() string {
	parts := make([]string, len(n.segments))
	for i, s := range n.segments {
		parts[i] = strconv.Itoa(s)
	}
	return strings.Join(parts, ".")
}

// Compare orders a against b over the segments both share.
func Compare(a, b Number) Ordering {
	shared := len(a.segments)
	if len(b.segments) < shared {
		shared = len(b.segments)
	}
	for i := 0; i < shared; i++ {
		if a.segments[i] < b.segments[i] {
			return Less
		}
		if a.segments[i] > b.segments[i] {
			return Greater
		}
	}
	return Equal
}

// Compare orders n against other. See the package-level Compare.
func (n Number) Compare(other Number) Ordering {
	return Compare(n, other)
}

// LessThan returns true if n < other.
func (n Number) LessThan(other Number) bool {
	return Compare(n, other) == Less
}

// GreaterThan returns true if n > other.
func (n Number) GreaterThan(other Number) bool {
	return Compare(n, other) == Greater
}

// Equal returns true if n and other compare equal.
func (n Number) Equal(other Number) bool {
	return Compare(n, other) == Equal
}

// IsNewer parses both strings and reports whether candidate orders after
// current. Parse failures are returned as invalid_segment errors.
func IsNewer(current, candidate string) (bool, error) {
	cur, err := Parse(current)
	if err != nil {
		return false, fmt.Errorf("parse current version: %w", err)
	}
	next, err := Parse(candidate)
	if err != nil {
		return false, fmt.Errorf("parse candidate version: %w", err)
	}
	return next.GreaterThan(cur), nil
}
