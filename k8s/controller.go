// Package k8s provides a Kubernetes controller that syncs Prompt CRs into a
// weft store. A new CR creates a prompt with an initial 1.0 version; content
// edits on the CR become new numbered versions.
package k8s

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	"sigs.k8s.io/controller-runtime/pkg/log"

	weft "github.com/weftlabs/weft"
	"github.com/weftlabs/weft/core"
	v1 "github.com/weftlabs/weft/k8s/api/v1"
	"github.com/weftlabs/weft/lifecycle"
	"github.com/weftlabs/weft/store"
)

// PromptReconciler reconciles Prompt CRs against a lifecycle manager.
type PromptReconciler struct {
	client.Client
	Scheme  *runtime.Scheme
	Manager *lifecycle.Manager
}

// Reconcile syncs one Prompt CR: missing prompts are created with an initial
// version, content changes create a new version, and everything else only
// touches the prompt's metadata fields.
func (r *PromptReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	logger := log.FromContext(ctx)
	cr := &v1.Prompt{}
	if err := r.Get(ctx, req.NamespacedName, cr); err != nil {
		return ctrl.Result{}, client.IgnoreNotFound(err)
	}

	id := cr.Spec.ID
	if id == "" {
		id = req.Name
	}
	desired := specSnapshot(&cr.Spec)

	p, err := r.sync(ctx, id, cr, desired)
	if err != nil {
		logger.Error(err, "failed to sync prompt", "id", id)
		cr.Status.Synced = false
		cr.Status.Message = err.Error()
		_ = r.Status().Update(ctx, cr)
		return ctrl.Result{}, err
	}

	cr.Status.Synced = true
	cr.Status.Message = ""
	cr.Status.LastSyncTime = time.Now().UTC().Format(time.RFC3339)
	cr.Status.VersionCount = len(p.Versions)
	if cur := p.CurrentVersion(); cur != nil {
		cr.Status.CurrentVersion = cur.VersionNumber
	}
	if err := r.Status().Update(ctx, cr); err != nil {
		return ctrl.Result{}, err
	}
	logger.Info("synced prompt", "id", p.ID, "version", cr.Status.CurrentVersion)
	return ctrl.Result{}, nil
}

func (r *PromptReconciler) sync(ctx context.Context, id string, cr *v1.Prompt, desired core.Snapshot) (*core.Prompt, error) {
	p, err := r.Manager.Refresh(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		p = weft.New(id).
			WithTitle(cr.Spec.Title).
			WithDescription(cr.Spec.Description).
			WithTags(cr.Spec.Tags...).
			WithSystem(desired.SystemPrompt).
			WithTemplate(desired.UserTemplate).
			WithModel(desired.Model, desired.Temperature, desired.MaxTokens).
			WithCreatedBy("k8s/" + cr.Namespace).
			Build()
		if err := r.Manager.SavePrompt(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}
	if err != nil {
		return nil, err
	}

	if p.Snapshot != desired {
		bump := core.BumpKind(cr.Spec.Bump)
		if !bump.Valid() {
			bump = core.BumpMinor
		}
		return r.Manager.CreateVersion(ctx, id, store.CreateVersionRequest{
			ChangeNote: "synced from " + cr.Namespace + "/" + cr.Name,
			Bump:       bump,
			CreatedBy:  "k8s/" + cr.Namespace,
			Content:    &desired,
		})
	}

	// Metadata edits never create versions.
	if p.Title != cr.Spec.Title || p.Description != cr.Spec.Description || !equalTags(p.Tags, cr.Spec.Tags) {
		p.Title = cr.Spec.Title
		p.Description = cr.Spec.Description
		p.Tags = append([]string(nil), cr.Spec.Tags...)
		if err := r.Manager.SavePrompt(ctx, p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func specSnapshot(spec *v1.PromptSpec) core.Snapshot {
	temp, _ := strconv.ParseFloat(spec.Temperature, 64)
	return core.Snapshot{
		SystemPrompt: spec.System,
		UserTemplate: spec.Template,
		Model:        spec.Model,
		Temperature:  temp,
		MaxTokens:    spec.MaxTokens,
		Status:       core.StatusActive,
	}
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// SetupWithManager registers the reconciler with the manager.
func (r *PromptReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&v1.Prompt{}).
		Complete(r)
}

// NewScheme returns a scheme with weft types registered.
func NewScheme() (*runtime.Scheme, error) {
	scheme := runtime.NewScheme()
	if err := v1.AddToScheme(scheme); err != nil {
		return nil, fmt.Errorf("add weft scheme: %w", err)
	}
	return scheme, nil
}
