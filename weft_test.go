package weft

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weftlabs/weft/store"
)

func TestBuilder_Build(t *testing.T) {
	p := New("triage").
		WithTitle("Support triage").
		WithTags("support", "prod").
		WithSystem("You are a support triage assistant.").
		WithTemplate("Classify: {{.ticket}}").
		WithModel("gpt-4o", 0.2, 1024).
		WithCreatedBy("ops").
		Build()

	require.NoError(t, p.Validate())
	require.Len(t, p.Versions, 1)
	v := p.CurrentVersion()
	require.NotNil(t, v)
	assert.Equal(t, "1.0", v.VersionNumber)
	assert.Equal(t, "ops", v.CreatedBy)
	assert.Equal(t, p.Snapshot, v.Snapshot)
	assert.Equal(t, "gpt-4o", p.Snapshot.Model)
}

func TestBuilder_GeneratedID(t *testing.T) {
	p := New("").WithTitle("anon").Build()
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, p.ID, p.Versions[0].PromptID)
}

func TestEndToEnd(t *testing.T) {
	ctx := context.Background()
	mgr := NewManager(store.NewMemory())

	p := New("triage").WithSystem("be helpful").Build()
	require.NoError(t, mgr.SavePrompt(ctx, p))

	p, err := mgr.CreateVersion(ctx, "triage", store.CreateVersionRequest{ChangeNote: "tighten", Bump: BumpMinor})
	require.NoError(t, err)
	assert.Equal(t, "1.1", p.CurrentVersion().VersionNumber)

	first := p.Versions[0]
	p, err = mgr.RestoreVersion(ctx, "triage", first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, p.CurrentVersionID)
	assert.Equal(t, first.Snapshot, p.Snapshot)
}
