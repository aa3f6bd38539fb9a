// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"fmt"

	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/gputypes"
)

// MaxColorAttachments is the number of color attachment slots a render
// pass can bind, matching the WebGPU limit.
const MaxColorAttachments = 8

// PassKind discriminates the three kinds of GPU work a pass can encode.
// Each kind carries exactly one encode callback; the executor selects the
// encoding scope from the kind, so a pass can never be invoked through
// the wrong entry point.
type PassKind uint8

const (
	// KindRender is a raster pass with color/depth attachments.
	KindRender PassKind = iota

	// KindCompute is a compute dispatch pass.
	KindCompute

	// KindBlit is a transfer pass (texture copies).
	KindBlit
)

// String returns a human-readable name for the kind.
func (k PassKind) String() string {
	switch k {
	case KindRender:
		return "render"
	case KindCompute:
		return "compute"
	case KindBlit:
		return "blit"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// RenderFunc encodes a render pass. The encoding scope is begun and ended
// by the executor; the callback only records commands and must not retain
// rp past its return.
type RenderFunc func(ctx *PassContext, rp device.RenderPass)

// ComputeFunc encodes a compute pass.
type ComputeFunc func(ctx *PassContext, cp device.ComputePass)

// BlitFunc encodes a blit pass.
type BlitFunc func(ctx *PassContext, bp device.BlitPass)

// colorAttachment is one bound color target of a render pass.
type colorAttachment struct {
	target  Handle
	loadOp  gputypes.LoadOp
	storeOp gputypes.StoreOp
	clear   gputypes.Color
	set     bool
}

// depthAttachment is the bound depth target of a render pass.
type depthAttachment struct {
	target     Handle
	loadOp     gputypes.LoadOp
	storeOp    gputypes.StoreOp
	clearDepth float32
}

// pass is one unit of GPU work in declaration order. Dead passes
// (refCount == 0 after Compile) stay in the slice so indices remain
// stable; the executor skips them.
type pass struct {
	name       string
	kind       PassKind
	reads      []Handle
	writes     []Handle
	colors     []colorAttachment // slot-indexed, len == highest bound slot + 1
	depth      depthAttachment
	hasDepth   bool
	sideEffect bool
	refCount   int32

	render  RenderFunc
	compute ComputeFunc
	blit    BlitFunc
}

// PassInfo is a read-only snapshot of one pass, for tests and tooling.
type PassInfo struct {
	// Name is the pass name.
	Name string

	// Kind is the pass kind.
	Kind PassKind

	// SideEffect reports whether the pass is pinned live.
	SideEffect bool

	// RefCount is the liveness count after Compile. Zero means culled.
	RefCount int

	// Reads and Writes are the declared resource handles in order.
	Reads  []Handle
	Writes []Handle
}

// PassContext is handed to encode callbacks while their pass runs. It
// resolves graph handles to live device textures.
type PassContext struct {
	graph *Graph
	index int
}

// Name returns the running pass's name.
func (c *PassContext) Name() string { return c.graph.passes[c.index].name }

// Texture resolves a handle to its current backing texture. For every
// resource the pass declared via Read or Write the backing is non-nil
// while the pass runs.
func (c *PassContext) Texture(h Handle) device.Texture {
	return c.graph.Texture(h)
}
