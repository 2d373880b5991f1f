package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/weftlabs/weft/core"
)

// Remote implements Store against a weft server over HTTP/JSON. Version
// numbering and invariant enforcement happen server-side through the same
// lifecycle rules, so local and remote mode behave identically.
type Remote struct {
	base   string
	client *http.Client
}

// NewRemote creates a remote store for the given base URL
// (e.g. "http://localhost:8080").
func NewRemote(base string, client *http.Client) *Remote {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Remote{base: strings.TrimRight(base, "/"), client: client}
}

// do issues a request and decodes the response into out (when non-nil).
// Non-2xx responses are decoded as WireError so typed failures round-trip.
func (r *Remote) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	} else {
		buf = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.base+path, buf)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreFailure, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var we WireError
		if err := json.NewDecoder(resp.Body).Decode(&we); err != nil || we.Message == "" {
			return fmt.Errorf("%w: %s %s: status %d", core.ErrStoreFailure, method, path, resp.StatusCode)
		}
		return we.Err()
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", core.ErrStoreFailure, err)
	}
	return nil
}

// GetPrompt implements Store.
func (r *Remote) GetPrompt(ctx context.Context, id string) (*core.Prompt, error) {
	var p core.Prompt
	if err := r.do(ctx, http.MethodGet, "/prompts/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPrompts implements Store.
func (r *Remote) ListPrompts(ctx context.Context, filter Filter) ([]*core.Prompt, error) {
	q := url.Values{}
	for _, id := range filter.IDs {
		q.Add("id", id)
	}
	for _, tag := range filter.Tags {
		q.Add("tag", tag)
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	if filter.Offset > 0 {
		q.Set("offset", strconv.Itoa(filter.Offset))
	}
	path := "/prompts"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out struct {
		Prompts []*core.Prompt `json:"prompts"`
	}
	if err := r.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Prompts, nil
}

// PutPrompt implements Store.
func (r *Remote) PutPrompt(ctx context.Context, p *core.Prompt) error {
	return r.do(ctx, http.MethodPut, "/prompts/"+url.PathEscape(p.ID), p, nil)
}

// DeletePrompt implements Store.
func (r *Remote) DeletePrompt(ctx context.Context, id string) error {
	return r.do(ctx, http.MethodDelete, "/prompts/"+url.PathEscape(id), nil, nil)
}

// CreateVersion implements Store.
func (r *Remote) CreateVersion(ctx context.Context, promptID string, req CreateVersionRequest) (*core.Prompt, error) {
	var p core.Prompt
	path := "/prompts/" + url.PathEscape(promptID) + "/versions"
	if err := r.do(ctx, http.MethodPost, path, req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RestoreVersion implements Store.
func (r *Remote) RestoreVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error) {
	var p core.Prompt
	path := "/prompts/" + url.PathEscape(promptID) + "/versions/" + url.PathEscape(versionID) + "/restore"
	if err := r.do(ctx, http.MethodPost, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// SoftDeleteVersion implements Store.
func (r *Remote) SoftDeleteVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error) {
	var p core.Prompt
	path := "/prompts/" + url.PathEscape(promptID) + "/versions/" + url.PathEscape(versionID)
	if err := r.do(ctx, http.MethodDelete, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// RestoreSoftDeletedVersion implements Store.
func (r *Remote) RestoreSoftDeletedVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error) {
	var p core.Prompt
	path := "/prompts/" + url.PathEscape(promptID) + "/versions/" + url.PathEscape(versionID) + "/restore-deleted"
	if err := r.do(ctx, http.MethodPost, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// HardDeleteVersion implements Store.
func (r *Remote) HardDeleteVersion(ctx context.Context, promptID, versionID string) (*core.Prompt, error) {
	var p core.Prompt
	path := "/prompts/" + url.PathEscape(promptID) + "/versions/" + url.PathEscape(versionID) + "/purge"
	if err := r.do(ctx, http.MethodDelete, path, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

var _ Store = (*Remote)(nil)
