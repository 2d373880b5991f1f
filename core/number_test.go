package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersionNumber(t *testing.T) {
	major, minor, err := ParseVersionNumber("3.14")
	require.NoError(t, err)
	assert.Equal(t, 3, major)
	assert.Equal(t, 14, minor)

	_, _, err = ParseVersionNumber("3")
	assert.ErrorIs(t, err, ErrInvalidVersionNumber)
	_, _, err = ParseVersionNumber("a.b")
	assert.ErrorIs(t, err, ErrInvalidVersionNumber)
	_, _, err = ParseVersionNumber("-1.0")
	assert.ErrorIs(t, err, ErrInvalidVersionNumber)
}

func TestNextVersionNumber_Minor(t *testing.T) {
	vs := []*PromptVersion{
		{ID: "a", VersionNumber: "1.0"},
		{ID: "b", VersionNumber: "1.4"},
	}
	assert.Equal(t, "1.5", NextVersionNumber(vs, "b", BumpMinor))
}

func TestNextVersionNumber_Major(t *testing.T) {
	vs := []*PromptVersion{
		{ID: "a", VersionNumber: "1.0"},
		{ID: "b", VersionNumber: "1.4"},
	}
	assert.Equal(t, "2.0", NextVersionNumber(vs, "b", BumpMajor))
}

func TestNextVersionNumber_RelativeToCurrentNotNewest(t *testing.T) {
	// After a restore the current version can be older than the newest
	// entry; the bump must follow the current one.
	vs := []*PromptVersion{
		{ID: "old", VersionNumber: "1.0"},
		{ID: "new", VersionNumber: "1.1"},
	}
	assert.Equal(t, "1.1", NextVersionNumber(vs, "old", BumpMinor))
	assert.Equal(t, "2.0", NextVersionNumber(vs, "old", BumpMajor))
}

func TestNextVersionNumber_Fallbacks(t *testing.T) {
	vs := []*PromptVersion{{ID: "a", VersionNumber: "1.0"}}
	assert.Equal(t, "1.1", NextVersionNumber(vs, "missing", BumpMinor))
	assert.Equal(t, "2.0", NextVersionNumber(vs, "missing", BumpMajor))
	assert.Equal(t, "1.0", NextVersionNumber(vs, "missing", BumpKind("bogus")))

	bad := []*PromptVersion{{ID: "a", VersionNumber: "not-a-number"}}
	assert.Equal(t, "1.1", NextVersionNumber(bad, "a", BumpMinor))
}
