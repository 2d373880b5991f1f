package core

import (
	"fmt"
	"strconv"
	"strings"
)

// BumpKind selects how the next version number is derived.
type BumpKind string

const (
	BumpMinor BumpKind = "minor"
	BumpMajor BumpKind = "major"
)

// Valid reports whether the bump kind is one of the known values.
func (b BumpKind) Valid() bool {
	return b == BumpMinor || b == BumpMajor
}

// ParseVersionNumber parses a "<major>.<minor>" version number with
// non-negative integer components.
func ParseVersionNumber(s string) (major, minor int, err error) {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidVersionNumber, s)
	}
	major, err = strconv.Atoi(s[:dot])
	if err != nil || major < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidVersionNumber, s)
	}
	minor, err = strconv.Atoi(s[dot+1:])
	if err != nil || minor < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidVersionNumber, s)
	}
	return major, minor, nil
}

// FormatVersionNumber renders major and minor as "<major>.<minor>".
func FormatVersionNumber(major, minor int) string {
	return strconv.Itoa(major) + "." + strconv.Itoa(minor)
}

// NextVersionNumber derives the next version number from the version
// designated as current, not from the most recently created one (the two
// differ after a restore). A minor bump of "M.N" yields "M.N+1"; a major
// bump yields "M+1.0". If the current version cannot be found or its number
// does not parse, the result falls back to the base for the bump kind.
// Pure function; it does not inspect history for taken numbers. The store
// layer resolves collisions against the full version list.
func NextVersionNumber(versions []*PromptVersion, currentVersionID string, bump BumpKind) string {
	var cur *PromptVersion
	for _, v := range versions {
		if v.ID == currentVersionID {
			cur = v
			break
		}
	}
	if cur == nil {
		return baseFor(bump)
	}
	major, minor, err := ParseVersionNumber(cur.VersionNumber)
	if err != nil {
		return baseFor(bump)
	}
	if bump == BumpMajor {
		return FormatVersionNumber(major+1, 0)
	}
	return FormatVersionNumber(major, minor+1)
}

// baseFor is the fallback when no current version is available:
// "1.1" for a minor bump, "2.0" for a major bump, "1.0" otherwise.
func baseFor(bump BumpKind) string {
	switch bump {
	case BumpMajor:
		return "2.0"
	case BumpMinor:
		return "1.1"
	default:
		return "1.0"
	}
}
