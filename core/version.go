package core

import (
	"time"

	"github.com/google/uuid"
)

// Snapshot status values.
const (
	StatusActive = "active"
	StatusDraft  = "draft"
)

// Snapshot is the content of a prompt at a point in time. It is stored
// immutably on each version and mirrored onto the owning prompt for the
// version currently in effect.
type Snapshot struct {
	SystemPrompt string  `json:"system_prompt"`
	UserTemplate string  `json:"user_template"`
	Model        string  `json:"model"`
	Temperature  float64 `json:"temperature"`
	MaxTokens    int     `json:"max_tokens"`
	Status       string  `json:"status"`
}

// PromptVersion is one entry in a prompt's content history. Content fields
// are immutable once created; only the soft-delete flags may change.
type PromptVersion struct {
	ID            string     `json:"id"`
	PromptID      string     `json:"prompt_id"`
	VersionNumber string     `json:"version_number"`
	Snapshot      Snapshot   `json:"snapshot"`
	ChangeNote    string     `json:"change_note"`
	CreatedAt     time.Time  `json:"created_at"`
	CreatedBy     string     `json:"created_by"`
	Deleted       bool       `json:"deleted"`
	DeletedAt     *time.Time `json:"deleted_at,omitempty"`
}

// Copy returns a deep copy of the version.
func (v *PromptVersion) Copy() *PromptVersion {
	w := *v
	if v.DeletedAt != nil {
		t := *v.DeletedAt
		w.DeletedAt = &t
	}
	return &w
}

// MarkDeleted flips the version into the soft-deleted state at the given time.
func (v *PromptVersion) MarkDeleted(at time.Time) {
	v.Deleted = true
	v.DeletedAt = &at
}

// Undelete clears the soft-delete flags. Content fields are untouched.
func (v *PromptVersion) Undelete() {
	v.Deleted = false
	v.DeletedAt = nil
}

// NewID returns a fresh opaque identifier for prompts and versions.
func NewID() string {
	return uuid.NewString()
}
