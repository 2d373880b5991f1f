// Package diff computes line-level comparisons between two prompt content
// snapshots for change statistics and side-by-side rendering.
package diff

import "strings"

// Op classifies a line in a diff.
type Op int

const (
	OpSame Op = iota
	OpAdded
	OpRemoved
)

// String returns "same", "added", or "removed".
func (o Op) String() string {
	switch o {
	case OpAdded:
		return "added"
	case OpRemoved:
		return "removed"
	default:
		return "same"
	}
}

// Line is one annotated line of a diff.
type Line struct {
	Op   Op     `json:"op"`
	Text string `json:"text"`
}

// Result is an ordered line diff plus derived add/remove counts. A changed
// line appears as a removed line followed by an added line; there is no
// in-place "modified" type.
type Result struct {
	Lines   []Line `json:"lines"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
}

// SplitLines normalizes a text blob into lines for diffing. Nil/empty input
// becomes a single empty line, so two empty texts diff to one unchanged
// line rather than zero. A trailing empty line produced by a final newline
// is dropped. CRLF endings are tolerated.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// Compute returns the line diff between two text blobs using a longest
// common subsequence alignment.
func Compute(oldText, newText string) Result {
	a := SplitLines(oldText)
	b := SplitLines(newText)

	// lcs[i][j] = LCS length of a[i:] and b[j:]
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else if lcs[i+1][j] >= lcs[i][j+1] {
				lcs[i][j] = lcs[i+1][j]
			} else {
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	var res Result
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] == b[j]:
			res.Lines = append(res.Lines, Line{Op: OpSame, Text: a[i]})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			res.Lines = append(res.Lines, Line{Op: OpRemoved, Text: a[i]})
			res.Removed++
			i++
		default:
			res.Lines = append(res.Lines, Line{Op: OpAdded, Text: b[j]})
			res.Added++
			j++
		}
	}
	for ; i < len(a); i++ {
		res.Lines = append(res.Lines, Line{Op: OpRemoved, Text: a[i]})
		res.Removed++
	}
	for ; j < len(b); j++ {
		res.Lines = append(res.Lines, Line{Op: OpAdded, Text: b[j]})
		res.Added++
	}
	return res
}
