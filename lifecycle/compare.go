package lifecycle

import (
	"context"

	"github.com/weftlabs/weft/core"
	"github.com/weftlabs/weft/diff"
)

// VersionDiff is the structural comparison of two versions' content, one
// line diff per text field. Baseline is nil when the target is the oldest
// active version; the diffs are then computed against empty text.
type VersionDiff struct {
	Baseline *core.PromptVersion `json:"baseline,omitempty"`
	Target   *core.PromptVersion `json:"target"`
	System   diff.Result         `json:"system"`
	Template diff.Result         `json:"template"`
}

// Added returns the total added-line count across fields.
func (d *VersionDiff) Added() int { return d.System.Added + d.Template.Added }

// Removed returns the total removed-line count across fields.
func (d *VersionDiff) Removed() int { return d.System.Removed + d.Template.Removed }

// Compare diffs a version against an explicit baseline. Pass an empty
// baselineID to use the version's natural baseline: the next older entry in
// the active display order.
func (m *Manager) Compare(ctx context.Context, promptID, baselineID, versionID string) (*VersionDiff, error) {
	p, err := m.Get(ctx, promptID)
	if err != nil {
		return nil, err
	}
	target := p.Version(versionID)
	if target == nil {
		return nil, m.fail(core.ErrNotFound)
	}
	var baseline *core.PromptVersion
	if baselineID != "" {
		if baseline = p.Version(baselineID); baseline == nil {
			return nil, m.fail(core.ErrNotFound)
		}
	} else {
		baseline = core.BaselineFor(p.ActiveSorted(), versionID)
	}
	var oldSnap core.Snapshot
	if baseline != nil {
		oldSnap = baseline.Snapshot
	}
	return &VersionDiff{
		Baseline: baseline,
		Target:   target,
		System:   diff.Compute(oldSnap.SystemPrompt, target.Snapshot.SystemPrompt),
		Template: diff.Compute(oldSnap.UserTemplate, target.Snapshot.UserTemplate),
	}, nil
}
