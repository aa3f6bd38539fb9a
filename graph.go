// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

// Graph is the frame graph: a registry of resources and a list of passes
// in declaration order. Declaration order is execution order — the graph
// culls and tracks lifetimes but never reorders, so passes must be added
// in an order consistent with their declared reads and writes (the asset
// layer's topological sort produces such an order).
//
// A Graph is not safe for concurrent use. The intended cycle is:
//
//	build (AddPass/Import) → Compile → Execute per frame
//	                                   (ResetTransients between frames
//	                                   only if a frame was abandoned)
//	Reset → rebuild on topology change (e.g. resolution change)
type Graph struct {
	passes    []*pass
	resources []*resource
	compiled  bool
	executing bool
	stats     FrameStats
}

// New creates an empty frame graph.
func New() *Graph {
	return &Graph{}
}

// addPass appends p and immediately runs its setup callback through a
// Builder scoped to the new pass.
func (g *Graph) addPass(p *pass, setup func(*Builder)) int {
	g.compiled = false
	idx := len(g.passes)
	g.passes = append(g.passes, p)
	b := &Builder{graph: g, pass: idx, active: true}
	setup(b)
	b.active = false
	return idx
}

// AddRenderPass declares a raster pass. The setup callback declares the
// pass's resources and attachments through the Builder and runs before
// AddRenderPass returns; encode runs once per frame while the pass is
// live. Returns the pass index.
func (g *Graph) AddRenderPass(name string, setup func(*Builder), encode RenderFunc) int {
	return g.addPass(&pass{name: name, kind: KindRender, render: encode}, setup)
}

// AddComputePass declares a compute pass.
func (g *Graph) AddComputePass(name string, setup func(*Builder), encode ComputeFunc) int {
	return g.addPass(&pass{name: name, kind: KindCompute, compute: encode}, setup)
}

// AddBlitPass declares a transfer pass.
func (g *Graph) AddBlitPass(name string, setup func(*Builder), encode BlitFunc) int {
	return g.addPass(&pass{name: name, kind: KindBlit, blit: encode}, setup)
}

// PassCount returns the number of declared passes, dead ones included.
func (g *Graph) PassCount() int { return len(g.passes) }

// ResourceCount returns the number of registered resources.
func (g *Graph) ResourceCount() int {
	if len(g.resources) == 0 {
		return 0
	}
	return len(g.resources) - 1 // slot 0 is reserved
}

// Pass returns a snapshot of the pass at index i.
func (g *Graph) Pass(i int) PassInfo {
	p := g.passes[i]
	return PassInfo{
		Name:       p.name,
		Kind:       p.kind,
		SideEffect: p.sideEffect,
		RefCount:   int(p.refCount),
		Reads:      append([]Handle(nil), p.reads...),
		Writes:     append([]Handle(nil), p.writes...),
	}
}

// eachResource visits every registered resource, skipping the reserved
// zero slot.
func (g *Graph) eachResource(fn func(index int32, r *resource)) {
	for i := 1; i < len(g.resources); i++ {
		fn(int32(i), g.resources[i])
	}
}

// Reset clears all passes, resources, and callbacks so the graph can be
// rebuilt from scratch, e.g. after a resolution change. Transient
// textures must already have been released by Execute; imported textures
// are simply forgotten, never freed.
func (g *Graph) Reset() {
	g.passes = g.passes[:0]
	g.resources = g.resources[:0]
	g.compiled = false
	g.stats = FrameStats{}
}

// ResetTransients nulls out the backing of every transient resource
// without touching graph structure, so an already-compiled graph can be
// re-executed after a frame was abandoned mid-build. A completed Execute
// releases every transient itself, making this a no-op in the steady
// state.
func (g *Graph) ResetTransients() {
	g.eachResource(func(_ int32, r *resource) {
		if !r.imported {
			r.texture = nil
		}
	})
}
