// Package weft manages prompt version history: every edit to a prompt's
// content is captured as an immutable numbered version, any version can be
// restored as current, and versions move through a soft-delete trash with a
// thirty day retention window before permanent removal.
//
// Quick start:
//
//	mgr := weft.NewManager(store.NewMemory())
//	prompt := weft.New("support-triage").
//		WithTitle("Support triage").
//		WithSystem("You are a support triage assistant.").
//		WithTemplate("Classify this ticket: {{.ticket}}").
//		WithModel("gpt-4o", 0.2, 1024).
//		Build()
//
//	_ = mgr.SavePrompt(context.Background(), prompt)
//	prompt, _ = mgr.CreateVersion(context.Background(), prompt.ID,
//		store.CreateVersionRequest{ChangeNote: "tighten tone", Bump: weft.BumpMinor})
package weft

import (
	"time"

	"github.com/weftlabs/weft/core"
	"github.com/weftlabs/weft/lifecycle"
	"github.com/weftlabs/weft/store"
)

// Builder constructs a Prompt with its initial version via a fluent API.
type Builder struct {
	id          string
	title       string
	description string
	tags        []string
	snap        core.Snapshot
	createdBy   string
	now         func() time.Time
}

// New starts a new prompt builder with the given id. An empty id gets a
// generated one at Build time.
func New(id string) *Builder {
	return &Builder{
		id:   id,
		snap: core.Snapshot{Status: core.StatusActive},
		now:  time.Now,
	}
}

// WithTitle sets the human-readable title.
func (b *Builder) WithTitle(title string) *Builder {
	b.title = title
	return b
}

// WithDescription sets the description.
func (b *Builder) WithDescription(desc string) *Builder {
	b.description = desc
	return b
}

// WithTags sets the prompt's tags.
func (b *Builder) WithTags(tags ...string) *Builder {
	b.tags = append([]string(nil), tags...)
	return b
}

// WithSystem sets the system prompt text.
func (b *Builder) WithSystem(system string) *Builder {
	b.snap.SystemPrompt = system
	return b
}

// WithTemplate sets the user message template.
func (b *Builder) WithTemplate(tpl string) *Builder {
	b.snap.UserTemplate = tpl
	return b
}

// WithModel sets the model parameters.
func (b *Builder) WithModel(model string, temperature float64, maxTokens int) *Builder {
	b.snap.Model = model
	b.snap.Temperature = temperature
	b.snap.MaxTokens = maxTokens
	return b
}

// WithStatus overrides the snapshot status (default "active").
func (b *Builder) WithStatus(status string) *Builder {
	b.snap.Status = status
	return b
}

// WithCreatedBy records the author on the initial version.
func (b *Builder) WithCreatedBy(author string) *Builder {
	b.createdBy = author
	return b
}

// WithClock overrides the time source; used in tests.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// Build produces the Prompt with its initial version numbered "1.0",
// current and mirrored into the prompt's snapshot.
func (b *Builder) Build() *core.Prompt {
	id := b.id
	if id == "" {
		id = core.NewID()
	}
	now := b.now()
	v := &core.PromptVersion{
		ID:            core.NewID(),
		PromptID:      id,
		VersionNumber: "1.0",
		Snapshot:      b.snap,
		ChangeNote:    "initial version",
		CreatedAt:     now,
		CreatedBy:     b.createdBy,
	}
	return &core.Prompt{
		ID:               id,
		Title:            b.title,
		Description:      b.description,
		Tags:             append([]string(nil), b.tags...),
		CurrentVersionID: v.ID,
		Snapshot:         b.snap,
		Versions:         []*core.PromptVersion{v},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// NewManager wraps a store in a lifecycle manager.
func NewManager(s store.Store) *lifecycle.Manager {
	return lifecycle.NewManager(s)
}

// Re-export core types for convenience.
type (
	// Prompt is a prompt aggregate with its version history.
	Prompt = core.Prompt
	// PromptVersion is one immutable entry in a prompt's history.
	PromptVersion = core.PromptVersion
	// Snapshot is the content captured by a version.
	Snapshot = core.Snapshot
	// BumpKind selects how the next version number is derived.
	BumpKind = core.BumpKind
)

// Bump kinds (re-export from core).
const (
	BumpMinor = core.BumpMinor
	BumpMajor = core.BumpMajor
)
