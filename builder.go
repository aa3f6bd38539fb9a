// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// Builder is the declaration API handed to a pass's setup callback. All
// methods mutate the graph on behalf of that one pass and are valid only
// while the setup callback runs; using a Builder outside its window, or
// passing an invalid handle, is a programmer error and panics.
type Builder struct {
	graph  *Graph
	pass   int
	active bool
}

func (b *Builder) check() {
	if !b.active {
		panic("framegraph: Builder used outside its pass's setup callback")
	}
}

func (b *Builder) current() *pass { return b.graph.passes[b.pass] }

// Create registers a new transient texture produced by the current pass
// and records it as a write. Allocation is deferred: no GPU memory exists
// until the executor reaches the producing pass.
func (b *Builder) Create(name string, desc TextureDesc) Handle {
	b.check()
	if desc.Label == "" {
		desc.Label = name
	}
	h := b.graph.newResource(&resource{
		name:     name,
		desc:     desc,
		producer: int32(b.pass),
		lastUser: none,
	})
	b.addWrite(h)
	return h
}

// Read records the current pass as a reader of an existing resource,
// transient or imported. Returns h for chaining.
func (b *Builder) Read(h Handle) Handle {
	b.check()
	b.graph.resourceAt(h) // panics on invalid handle
	p := b.current()
	for _, r := range p.reads {
		if r == h {
			return h
		}
	}
	p.reads = append(p.reads, h)
	return h
}

// Write records the current pass as a writer of an existing resource
// without creating it — e.g. ping-pong reuse or a later-stage mutation of
// an imported target. Returns h for chaining.
func (b *Builder) Write(h Handle) Handle {
	b.check()
	b.graph.resourceAt(h)
	b.addWrite(h)
	return h
}

func (b *Builder) addWrite(h Handle) {
	p := b.current()
	for _, w := range p.writes {
		if w == h {
			return
		}
	}
	p.writes = append(p.writes, h)
}

// SetColorAttachment binds a render target at the given slot with its
// load/store actions and clear color, implicitly recording a write. Slot
// must be in [0, MaxColorAttachments).
func (b *Builder) SetColorAttachment(slot int, h Handle, load gputypes.LoadOp, store gputypes.StoreOp, clear gputypes.Color) {
	b.check()
	if slot < 0 || slot >= MaxColorAttachments {
		panic(fmt.Sprintf("framegraph: color attachment slot %d out of range [0, %d)", slot, MaxColorAttachments))
	}
	p := b.current()
	if p.kind != KindRender {
		panic("framegraph: color attachment on non-render pass " + p.name)
	}
	for len(p.colors) <= slot {
		p.colors = append(p.colors, colorAttachment{})
	}
	p.colors[slot] = colorAttachment{target: h, loadOp: load, storeOp: store, clear: clear, set: true}
	b.Write(h)
}

// SetDepthAttachment binds the single depth attachment, implicitly
// recording a write.
func (b *Builder) SetDepthAttachment(h Handle, load gputypes.LoadOp, store gputypes.StoreOp, clearDepth float32) {
	b.check()
	p := b.current()
	if p.kind != KindRender {
		panic("framegraph: depth attachment on non-render pass " + p.name)
	}
	p.depth = depthAttachment{target: h, loadOp: load, storeOp: store, clearDepth: clearDepth}
	p.hasDepth = true
	b.Write(h)
}

// SetSideEffect marks the pass as externally observable (e.g. it writes
// the presented image), pinning it live through compilation even when
// nothing reads its outputs.
func (b *Builder) SetSideEffect() {
	b.check()
	b.current().sideEffect = true
}
