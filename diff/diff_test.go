package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{""}, SplitLines(""))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\nb\n"))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb\r\n"))
}

func TestCompute_ChangedLine(t *testing.T) {
	res := Compute("a\nb\nc", "a\nx\nc")
	require.Len(t, res.Lines, 4)
	assert.Equal(t, Line{OpSame, "a"}, res.Lines[0])
	assert.Equal(t, Line{OpRemoved, "b"}, res.Lines[1])
	assert.Equal(t, Line{OpAdded, "x"}, res.Lines[2])
	assert.Equal(t, Line{OpSame, "c"}, res.Lines[3])
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 1, res.Removed)
}

func TestCompute_Identity(t *testing.T) {
	text := "line one\nline two\n\nline four"
	res := Compute(text, text)
	assert.Equal(t, 0, res.Added)
	assert.Equal(t, 0, res.Removed)
	require.Len(t, res.Lines, 4)
	for _, l := range res.Lines {
		assert.Equal(t, OpSame, l.Op)
	}
}

func TestCompute_EmptyBoth(t *testing.T) {
	res := Compute("", "")
	require.Len(t, res.Lines, 1)
	assert.Equal(t, Line{OpSame, ""}, res.Lines[0])
	assert.Zero(t, res.Added)
	assert.Zero(t, res.Removed)
}

func TestCompute_AllAddedAllRemoved(t *testing.T) {
	res := Compute("", "a\nb")
	// The empty side still contributes one empty line, which is removed.
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, 1, res.Removed)

	res = Compute("a\nb", "")
	assert.Equal(t, 1, res.Added)
	assert.Equal(t, 2, res.Removed)
}

func TestCompute_Symmetry(t *testing.T) {
	a := "one\ntwo\nthree\nfour"
	b := "one\n2\nthree\nfive\nsix"
	ab := Compute(a, b)
	ba := Compute(b, a)
	assert.Equal(t, ab.Added, ba.Removed)
	assert.Equal(t, ab.Removed, ba.Added)
}

func TestSideBySide(t *testing.T) {
	oldPane, newPane := SideBySide("a\nb\nc", "a\nx\nc")
	require.Len(t, oldPane, 3)
	require.Len(t, newPane, 3)

	assert.Equal(t, PaneLine{1, "a", false}, oldPane[0])
	assert.Equal(t, PaneLine{2, "b", true}, oldPane[1])
	assert.Equal(t, PaneLine{3, "c", false}, oldPane[2])

	assert.Equal(t, PaneLine{1, "a", false}, newPane[0])
	assert.Equal(t, PaneLine{2, "x", true}, newPane[1])
	assert.Equal(t, PaneLine{3, "c", false}, newPane[2])
}

func TestSideBySide_PanesHoldFullTexts(t *testing.T) {
	oldText := "a\nb\nc"
	newText := "b\nc\nd\ne"
	oldPane, newPane := SideBySide(oldText, newText)
	assert.Len(t, oldPane, len(SplitLines(oldText)))
	assert.Len(t, newPane, len(SplitLines(newText)))
}
