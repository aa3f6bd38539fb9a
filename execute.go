// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"fmt"
	"time"

	"github.com/loov/hrtime"

	"github.com/gogpu/framegraph/device"
)

// PassTiming is the executor's record of one pass in the last frame.
type PassTiming struct {
	// Name is the pass name.
	Name string

	// Duration is the CPU time spent encoding the pass.
	Duration time.Duration

	// Skipped reports whether the pass was culled (refCount == 0).
	Skipped bool
}

// FrameStats summarizes the last Execute call.
type FrameStats struct {
	// Passes holds one entry per declared pass, dead ones included.
	Passes []PassTiming

	// Allocated is the number of transient textures allocated.
	Allocated int

	// Released is the number of transient textures released.
	Released int

	// Total is the CPU time spent encoding the whole frame.
	Total time.Duration
}

// Stats returns the statistics of the last Execute call.
func (g *Graph) Stats() FrameStats { return g.stats }

// Execute runs the compiled graph once: passes execute in declaration
// order, dead passes are skipped, every transient texture is allocated
// just before its producing pass and released immediately after its last
// user. The whole frame is one linear command stream, submitted at the
// end; a submit failure is fatal to the frame and never retried, since a
// fully encoded command buffer represents already-committed GPU work.
//
// Execute compiles the graph first if needed.
func (g *Graph) Execute(dev device.Device) error {
	if !g.compiled {
		g.Compile()
	}
	if g.executing {
		panic("framegraph: recursive Execute")
	}
	g.executing = true
	defer func() { g.executing = false }()

	frameStart := hrtime.Now()
	enc, err := dev.BeginFrame("framegraph")
	if err != nil {
		return fmt.Errorf("framegraph: begin frame: %w", err)
	}

	g.stats = FrameStats{Passes: make([]PassTiming, len(g.passes))}

	for i, p := range g.passes {
		g.stats.Passes[i] = PassTiming{Name: p.name, Skipped: p.refCount == 0}
		if p.refCount == 0 {
			continue
		}

		if err := g.allocateFor(dev, int32(i)); err != nil {
			g.releaseAll(dev)
			enc.Discard()
			return err
		}

		start := hrtime.Now()
		ctx := &PassContext{graph: g, index: i}
		switch p.kind {
		case KindRender:
			rp := enc.BeginRenderPass(g.renderPassDesc(p))
			p.render(ctx, rp)
			rp.End()
		case KindCompute:
			cp := enc.BeginComputePass(p.name)
			p.compute(ctx, cp)
			cp.End()
		case KindBlit:
			bp := enc.BeginBlitPass(p.name)
			p.blit(ctx, bp)
			bp.End()
		}
		g.stats.Passes[i].Duration = hrtime.Since(start)

		g.releaseAfter(dev, int32(i))
	}

	g.stats.Total = hrtime.Since(frameStart)
	if err := enc.Submit(); err != nil {
		return fmt.Errorf("framegraph: submit: %w", err)
	}
	return nil
}

// allocateFor lazily allocates every transient produced by the pass at
// index i that has no backing yet.
func (g *Graph) allocateFor(dev device.Device, i int32) error {
	var failed error
	g.eachResource(func(_ int32, r *resource) {
		if failed != nil || r.imported || r.producer != i || r.texture != nil {
			return
		}
		tex, err := dev.CreateTexture(r.desc)
		if err != nil {
			failed = fmt.Errorf("framegraph: allocate %q for pass %q: %w", r.name, g.passes[i].name, err)
			return
		}
		r.texture = tex
		g.stats.Allocated++
	})
	return failed
}

// releaseAfter frees every transient whose last user is the pass at
// index i and nulls its backing so the next frame re-allocates.
func (g *Graph) releaseAfter(dev device.Device, i int32) {
	g.eachResource(func(_ int32, r *resource) {
		if r.imported || r.lastUser != i || r.texture == nil {
			return
		}
		dev.DestroyTexture(r.texture)
		r.texture = nil
		g.stats.Released++
	})
}

// releaseAll frees every allocated transient. Used on mid-frame failure
// so an abandoned frame never leaks GPU memory.
func (g *Graph) releaseAll(dev device.Device) {
	g.eachResource(func(_ int32, r *resource) {
		if r.imported || r.texture == nil {
			return
		}
		dev.DestroyTexture(r.texture)
		r.texture = nil
	})
}

// renderPassDesc assembles the device-level pass description from the
// pass's bound attachments. Every bound slot must be set; a gap means the
// setup callback bound slots sparsely, which is a contract violation.
func (g *Graph) renderPassDesc(p *pass) *device.RenderPassDesc {
	desc := &device.RenderPassDesc{Label: p.name}
	for slot, ca := range p.colors {
		if !ca.set {
			panic(fmt.Sprintf("framegraph: pass %q color attachment slot %d unset", p.name, slot))
		}
		desc.Colors = append(desc.Colors, device.ColorAttachment{
			View:    g.resources[ca.target.index].texture,
			LoadOp:  ca.loadOp,
			StoreOp: ca.storeOp,
			Clear:   ca.clear,
		})
	}
	if p.hasDepth {
		desc.Depth = &device.DepthAttachment{
			View:       g.resources[p.depth.target.index].texture,
			LoadOp:     p.depth.loadOp,
			StoreOp:    p.depth.storeOp,
			ClearDepth: p.depth.clearDepth,
		}
	}
	return desc
}
