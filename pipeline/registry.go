// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"encoding/json"
	"sort"
	"sync"

	"github.com/gogpu/framegraph"
)

// IO carries the resolved resource bindings of one pass declaration into
// its setup callback. Inputs, Targets, Descs, and OutputNames are filled
// by the Builder before setup runs; Outputs is filled by setup (usually
// through DeclareOutput) and read back by the Builder to resolve later
// passes' inputs.
type IO struct {
	// Inputs are the resolved handles of the declared inputs, in
	// declaration order.
	Inputs []framegraph.Handle

	// Targets holds, per declared output, the already-existing handle to
	// write into (imported resources, or outputs an earlier pass already
	// produced), or framegraph.InvalidHandle when the pass must create
	// the output as a transient.
	Targets []framegraph.Handle

	// Descs holds, per declared output, the texture descriptor to create
	// it with, derived from the asset's resource declarations.
	Descs []framegraph.TextureDesc

	// OutputNames are the declared output names, for diagnostics.
	OutputNames []string

	// Outputs is filled during setup with the handle actually produced
	// for each output slot.
	Outputs []framegraph.Handle
}

// DeclareOutput binds output slot i: an existing target is recorded as a
// write, otherwise a transient is created from the slot's descriptor.
// The resulting handle lands in Outputs[i] and is returned.
func (io *IO) DeclareOutput(b *framegraph.Builder, i int) framegraph.Handle {
	h := io.Targets[i]
	if h.Valid() {
		b.Write(h)
	} else {
		h = b.Create(io.OutputNames[i], io.Descs[i])
	}
	io.Outputs[i] = h
	return h
}

// ReadInputs records every resolved input as a read and returns them.
func (io *IO) ReadInputs(b *framegraph.Builder) []framegraph.Handle {
	for _, h := range io.Inputs {
		b.Read(h)
	}
	return io.Inputs
}

// Pass is one constructed pass instance, produced by a Factory and wired
// into the frame graph by the Builder. Exactly one encode callback —
// matching Kind — must be non-nil.
type Pass struct {
	// Name is the instance name from the pass declaration.
	Name string

	// Kind selects which encode callback the graph invokes.
	Kind framegraph.PassKind

	// Setup declares the pass's resources through the frame-graph
	// Builder. Called once per graph build.
	Setup func(b *framegraph.Builder, io *IO)

	// Render, Compute, and Blit are the kind-specific encode callbacks.
	Render  framegraph.RenderFunc
	Compute framegraph.ComputeFunc
	Blit    framegraph.BlitFunc

	// MinInputs and MinOutputs are the binding counts Setup requires.
	// The builder rejects a declaration providing fewer, so Setup may
	// index its IO slices without checking.
	MinInputs  int
	MinOutputs int

	// BeginFrame, when non-nil, runs once per frame before the graph
	// executes — the place to upload per-frame uniforms.
	BeginFrame func(fc *FrameContext)
}

// Factory constructs a pass instance from its opaque asset configuration.
// width and height are the current target dimensions.
type Factory func(cfg json.RawMessage, rc *RenderContext, width, height uint32) (*Pass, error)

// Meta describes a registered pass type to editor tooling.
type Meta struct {
	// DisplayName is the human-readable name shown in editors.
	DisplayName string

	// Category groups pass types in editor menus, e.g. "Lighting".
	Category string

	// Kind is the pass kind instances of this type produce.
	Kind framegraph.PassKind

	// DefaultInputs and DefaultOutputs seed a freshly placed node's
	// bindings in the graph editor.
	DefaultInputs  []string
	DefaultOutputs []string

	// ConfigSchema optionally carries a JSON schema for the pass config.
	ConfigSchema json.RawMessage
}

// Registry maps pass type names to factories. It is an explicit object,
// constructed at startup and passed to every component that instantiates
// passes, so tests can substitute their own.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
	metas     map[string]Meta
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		metas:     make(map[string]Meta),
	}
}

// Register binds a pass type name to its factory and editor metadata.
// Registering an existing name replaces the previous binding.
func (r *Registry) Register(name string, f Factory, meta Meta) {
	if name == "" {
		panic("pipeline: Register with empty type name")
	}
	if f == nil {
		panic("pipeline: Register with nil factory for " + name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
	r.metas[name] = meta
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

// Meta returns the editor metadata registered under name.
func (r *Registry) Meta(name string) (Meta, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.metas[name]
	return m, ok
}

// Types returns all registered type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
