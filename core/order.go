package core

import "sort"

// CompareVersions orders two versions for display: newest CreatedAt first,
// then major/minor descending when timestamps tie or fail to parse, then
// ID descending as a final tie-break so the order is total.
// Returns a negative value when a sorts before b.
func CompareVersions(a, b *PromptVersion) int {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		if a.CreatedAt.After(b.CreatedAt) {
			return -1
		}
		return 1
	}
	amaj, amin, aerr := ParseVersionNumber(a.VersionNumber)
	bmaj, bmin, berr := ParseVersionNumber(b.VersionNumber)
	if aerr == nil && berr == nil {
		if amaj != bmaj {
			if amaj > bmaj {
				return -1
			}
			return 1
		}
		if amin != bmin {
			if amin > bmin {
				return -1
			}
			return 1
		}
	}
	if a.ID > b.ID {
		return -1
	}
	if a.ID < b.ID {
		return 1
	}
	return 0
}

// SortVersions sorts versions in place using CompareVersions.
func SortVersions(vs []*PromptVersion) {
	sort.SliceStable(vs, func(i, j int) bool {
		return CompareVersions(vs[i], vs[j]) < 0
	})
}

// ActiveSorted returns the prompt's active versions in display order.
// The active and soft-deleted subsets are ordered separately and never
// interleaved.
func (p *Prompt) ActiveSorted() []*PromptVersion {
	vs := p.ActiveVersions()
	SortVersions(vs)
	return vs
}

// DeletedSorted returns the prompt's soft-deleted versions in display order.
func (p *Prompt) DeletedSorted() []*PromptVersion {
	vs := p.DeletedVersions()
	SortVersions(vs)
	return vs
}

// BaselineFor returns the diff baseline for the given version: the next
// older entry in the active display order, or nil when the version is the
// oldest active one (or not in the active list at all).
func BaselineFor(active []*PromptVersion, versionID string) *PromptVersion {
	for i, v := range active {
		if v.ID == versionID {
			if i+1 < len(active) {
				return active[i+1]
			}
			return nil
		}
	}
	return nil
}
