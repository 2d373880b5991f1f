package diff

// PaneLine is one line of a side-by-side pane. Number is the 1-based line
// number within that pane's text. Highlight marks lines removed relative to
// the target (old pane) or added relative to the baseline (new pane).
type PaneLine struct {
	Number    int    `json:"number"`
	Text      string `json:"text"`
	Highlight bool   `json:"highlight"`
}

// SideBySide renders a diff as two panes: the old pane holds every line of
// the baseline text with removed lines highlighted, the new pane holds every
// line of the target text with added lines highlighted. Unchanged lines
// appear in both panes at their natural positions; no re-flow alignment is
// attempted beyond what the line diff provides.
func SideBySide(oldText, newText string) (oldPane, newPane []PaneLine) {
	res := Compute(oldText, newText)
	var oldN, newN int
	for _, l := range res.Lines {
		switch l.Op {
		case OpSame:
			oldN++
			newN++
			oldPane = append(oldPane, PaneLine{Number: oldN, Text: l.Text})
			newPane = append(newPane, PaneLine{Number: newN, Text: l.Text})
		case OpRemoved:
			oldN++
			oldPane = append(oldPane, PaneLine{Number: oldN, Text: l.Text, Highlight: true})
		case OpAdded:
			newN++
			newPane = append(newPane, PaneLine{Number: newN, Text: l.Text, Highlight: true})
		}
	}
	return oldPane, newPane
}
