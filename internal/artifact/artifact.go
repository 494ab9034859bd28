package artifact

import "time"

// Artifact is the persisted result of one stage invocation. It carries the
// stage's input so a cached load reproduces the invocation exactly, and its
// fingerprint is the cache key.
type Artifact struct {
	// Key identifies the pipeline position, e.g. "guide.md|md|split".
	Key string `json:"key"`

	// Fingerprint is the content hash covering input fragments, resolved
	// extensions and stage identity. Empty until extensions are resolved.
	Fingerprint string `json:"fingerprint"`

	// Ext is the resolved output extension. Always concrete (never the
	// wildcard) once negotiation has completed.
	Ext string `json:"ext"`

	// NextHandler is an optional hint naming the downstream stage.
	NextHandler string `json:"next_handler,omitempty"`

	Input  Data `json:"input"`
	Output Data `json:"output"`

	CreatedAt time.Time `json:"created_at"`
}

// InputText concatenates the input fragments in order.
func (a *Artifact) InputText() string { return a.Input.Text() }

// OutputText concatenates the output fragments in order.
func (a *Artifact) OutputText() string { return a.Output.Text() }
