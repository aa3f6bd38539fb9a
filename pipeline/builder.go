// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/asset"
	"github.com/gogpu/framegraph/device"
)

// importEntry is an externally supplied texture registered before Build.
type importEntry struct {
	tex  device.Texture
	desc device.TextureDesc
}

// Builder turns validated pipeline assets into executable frame graphs.
// Build failures never destroy working state: the previously built graph
// stays active and the failure is retrievable through LastError, so
// editor tooling can display it without crashing the render loop.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	registry *Registry
	rc       *RenderContext

	imports   map[string]importEntry
	graph     *framegraph.Graph
	passes    []*Pass
	lastError string
}

// NewBuilder creates a builder over the given registry and render
// context.
func NewBuilder(reg *Registry, rc *RenderContext) *Builder {
	return &Builder{
		registry: reg,
		rc:       rc,
		imports:  make(map[string]importEntry),
	}
}

// ImportTexture registers an externally owned texture to be imported
// into every graph this builder builds — the swap-chain image under
// "$backbuffer", precomputed lookup tables under their declared names.
// Call again with the same name to swap the texture before a rebuild.
func (b *Builder) ImportTexture(name string, tex device.Texture, desc device.TextureDesc) {
	b.imports[name] = importEntry{tex: tex, desc: desc}
}

// LastError returns the message of the most recent Build failure, or ""
// after a successful build.
func (b *Builder) LastError() string { return b.lastError }

// Graph returns the most recently built graph, or nil.
func (b *Builder) Graph() *framegraph.Graph { return b.graph }

// Passes returns the constructed pass instances of the current graph in
// execution order, for per-frame context injection and debug UI.
func (b *Builder) Passes() []*Pass { return b.passes }

// BeginFrame resets the frame scratch and runs every pass's per-frame
// hook. Call once per frame before Graph().Execute.
func (b *Builder) BeginFrame(fc *FrameContext) {
	if b.rc.Scratch != nil {
		b.rc.Scratch.Reset()
	}
	for _, p := range b.passes {
		if p.BeginFrame != nil {
			p.BeginFrame(fc)
		}
	}
}

func (b *Builder) fail(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	b.lastError = err.Error()
	framegraph.Logger().Warn("pipeline: build failed", "error", err)
	return err
}

// Build constructs a frame graph from the asset at the given target
// size: validate, import external resources, then instantiate enabled
// passes in topological order, resolving each declared input to a
// previously produced or imported handle. Any failure aborts the whole
// build — a graph is never partially constructed — and leaves the
// previous graph in place.
func (b *Builder) Build(p *asset.Pipeline, width, height uint32) (*framegraph.Graph, error) {
	if err := p.Validate(); err != nil {
		return nil, b.fail("pipeline %q: %w", p.Name, err)
	}
	order, err := p.TopologicalSort()
	if err != nil {
		return nil, b.fail("pipeline %q: %w", p.Name, err)
	}

	log := framegraph.Logger()
	g := framegraph.New()

	produced := make(map[string]framegraph.Handle)
	for name, imp := range b.imports {
		produced[name] = g.Import(name, imp.tex, imp.desc)
	}

	passes := make([]*Pass, 0, len(order))
	for _, idx := range order {
		decl := &p.Passes[idx]
		if !decl.Enabled {
			log.Debug("pipeline: pass disabled", "pass", decl.Name)
			continue
		}

		factory, ok := b.registry.Lookup(decl.Type)
		if !ok {
			return nil, b.fail("pipeline %q: pass %q: unknown pass type %q", p.Name, decl.Name, decl.Type)
		}

		io := &IO{
			Inputs:      make([]framegraph.Handle, len(decl.Inputs)),
			Targets:     make([]framegraph.Handle, len(decl.Outputs)),
			Descs:       make([]framegraph.TextureDesc, len(decl.Outputs)),
			OutputNames: append([]string(nil), decl.Outputs...),
			Outputs:     make([]framegraph.Handle, len(decl.Outputs)),
		}
		for i, in := range decl.Inputs {
			h, ok := produced[in]
			if !ok {
				return nil, b.fail("pipeline %q: pass %q: unresolved input %q", p.Name, decl.Name, in)
			}
			io.Inputs[i] = h
		}
		for i, out := range decl.Outputs {
			if h, ok := produced[out]; ok {
				io.Targets[i] = h
			} else {
				io.Targets[i] = framegraph.InvalidHandle
			}
			io.Descs[i] = b.outputDesc(p, out, width, height)
		}

		inst, err := factory(decl.Config, b.rc, width, height)
		if err != nil {
			return nil, b.fail("pipeline %q: pass %q (%s): %w", p.Name, decl.Name, decl.Type, err)
		}
		inst.Name = decl.Name

		if len(decl.Inputs) < inst.MinInputs {
			return nil, b.fail("pipeline %q: pass %q (%s): %d inputs declared, needs %d",
				p.Name, decl.Name, decl.Type, len(decl.Inputs), inst.MinInputs)
		}
		if len(decl.Outputs) < inst.MinOutputs {
			return nil, b.fail("pipeline %q: pass %q (%s): %d outputs declared, needs %d",
				p.Name, decl.Name, decl.Type, len(decl.Outputs), inst.MinOutputs)
		}

		setup := func(fb *framegraph.Builder) {
			inst.Setup(fb, io)
			if decl.SideEffect {
				fb.SetSideEffect()
			}
		}
		switch inst.Kind {
		case framegraph.KindRender:
			g.AddRenderPass(decl.Name, setup, inst.Render)
		case framegraph.KindCompute:
			g.AddComputePass(decl.Name, setup, inst.Compute)
		case framegraph.KindBlit:
			g.AddBlitPass(decl.Name, setup, inst.Blit)
		default:
			return nil, b.fail("pipeline %q: pass %q: invalid kind %v", p.Name, decl.Name, inst.Kind)
		}

		// Setup has run; record what the pass actually produced so later
		// passes resolve against it.
		for i, out := range decl.Outputs {
			if io.Outputs[i].Valid() {
				produced[out] = io.Outputs[i]
			}
		}
		passes = append(passes, inst)
	}

	g.Compile()
	b.graph = g
	b.passes = passes
	b.lastError = ""
	log.Info("pipeline: built", "pipeline", p.Name, "passes", len(passes), "width", width, "height", height)
	return g, nil
}

// outputDesc derives the transient descriptor for an output name from
// its resource declaration, defaulting to a screen-sized RGBA8 render
// target when the name is undeclared.
func (b *Builder) outputDesc(p *asset.Pipeline, name string, width, height uint32) framegraph.TextureDesc {
	desc := framegraph.TextureDesc{
		Label:  name,
		Width:  width,
		Height: height,
		Format: gputypes.TextureFormatRGBA8Unorm,
		Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
	}
	decl := p.Resource(name)
	if decl == nil {
		return desc
	}
	desc.Format = asset.ParseFormat(decl.Format)
	desc.Width, desc.Height = asset.ParseSize(decl.Size, width, height)
	if !asset.IsDepthFormat(desc.Format) && desc.Format != gputypes.TextureFormatBGRA8Unorm {
		// Color targets double as compute storage; BGRA8 and depth
		// formats cannot bind as storage.
		desc.Usage |= gputypes.TextureUsageStorageBinding
	}
	return desc
}
