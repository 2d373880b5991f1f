// Package v1 contains the Prompt CRD types.
package v1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Namespaced

// Prompt is the Schema for the prompts API. Each CR maps to one prompt in
// the weft store; content edits on the CR become new numbered versions.
type Prompt struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`
	Spec              PromptSpec   `json:"spec,omitempty"`
	Status            PromptStatus `json:"status,omitempty"`
}

// PromptSpec defines the desired prompt content. Temperature is a string
// to keep the CRD schema free of floating point fields.
type PromptSpec struct {
	ID          string   `json:"id,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	System      string   `json:"system,omitempty"`
	Template    string   `json:"template,omitempty"`
	Model       string   `json:"model,omitempty"`
	Temperature string   `json:"temperature,omitempty"`
	MaxTokens   int      `json:"maxTokens,omitempty"`
	// Bump selects how the version number advances when the content
	// changes: "minor" (default) or "major".
	Bump string `json:"bump,omitempty"`
}

// PromptStatus defines the observed state of Prompt.
type PromptStatus struct {
	Synced         bool   `json:"synced"`
	CurrentVersion string `json:"currentVersion,omitempty"`
	VersionCount   int    `json:"versionCount,omitempty"`
	LastSyncTime   string `json:"lastSyncTime,omitempty"`
	Message        string `json:"message,omitempty"`
}

// +kubebuilder:object:root=true

// PromptList contains a list of Prompt.
type PromptList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []Prompt `json:"items"`
}

// DeepCopyObject implements runtime.Object.
func (p *Prompt) DeepCopyObject() runtime.Object {
	if p == nil {
		return nil
	}
	out := &Prompt{}
	p.DeepCopyInto(out)
	return out
}

// DeepCopyInto copies the receiver into out.
func (p *Prompt) DeepCopyInto(out *Prompt) {
	*out = *p
	out.TypeMeta = p.TypeMeta
	p.ObjectMeta.DeepCopyInto(&out.ObjectMeta)
	p.Spec.DeepCopyInto(&out.Spec)
	p.Status.DeepCopyInto(&out.Status)
}

// DeepCopyInto copies PromptSpec.
func (s *PromptSpec) DeepCopyInto(out *PromptSpec) {
	*out = *s
	if s.Tags != nil {
		out.Tags = make([]string, len(s.Tags))
		copy(out.Tags, s.Tags)
	}
}

// DeepCopyInto copies PromptStatus.
func (s *PromptStatus) DeepCopyInto(out *PromptStatus) {
	*out = *s
}

// DeepCopyObject implements runtime.Object for PromptList.
func (p *PromptList) DeepCopyObject() runtime.Object {
	if p == nil {
		return nil
	}
	out := &PromptList{}
	p.DeepCopyInto(out)
	return out
}

// DeepCopyInto copies the list into out.
func (p *PromptList) DeepCopyInto(out *PromptList) {
	*out = *p
	out.TypeMeta = p.TypeMeta
	p.ListMeta.DeepCopyInto(&out.ListMeta)
	if p.Items != nil {
		out.Items = make([]Prompt, len(p.Items))
		for i := range p.Items {
			p.Items[i].DeepCopyInto(&out.Items[i])
		}
	}
}
