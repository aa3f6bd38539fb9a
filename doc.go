// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package framegraph provides a per-frame render-graph scheduler for the
// GoGPU ecosystem.
//
// # Overview
//
// A frame graph is a dependency graph of GPU passes and the resources
// flowing between them. Passes declare their reads, writes, and
// attachments up front through a Builder; the graph then compiles
// reference counts to cull passes nobody observes, computes each
// transient resource's lifetime, and executes the live passes in
// declaration order — allocating every transient texture just before its
// producing pass and releasing it right after its last consumer.
//
//	g := framegraph.New()
//
//	var gbuffer framegraph.Handle
//	g.AddRenderPass("gbuffer", func(b *framegraph.Builder) {
//	    gbuffer = b.Create("gbuffer", device.TextureDesc{
//	        Width: 1920, Height: 1080,
//	        Format: gputypes.TextureFormatRGBA16Float,
//	        Usage:  gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding,
//	    })
//	    b.SetColorAttachment(0, gbuffer, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{})
//	}, drawScene)
//
//	g.AddRenderPass("present", func(b *framegraph.Builder) {
//	    b.Read(gbuffer)
//	    b.SetColorAttachment(0, backbuffer, gputypes.LoadOpLoad, gputypes.StoreOpStore, gputypes.Color{})
//	    b.SetSideEffect()
//	}, compose)
//
//	g.Compile()
//	if err := g.Execute(dev); err != nil { ... }
//
// # Architecture
//
// The module is organized into:
//   - framegraph (this package): resource registry, pass graph, builder,
//     compiler, executor
//   - device: the narrow GPU interface the executor drives, with a
//     recording NullDevice for tests
//   - device/wgpu: real GPU execution via gogpu/wgpu
//   - asset: the declarative JSON pipeline description with validation
//     and topological ordering
//   - pipeline: pass registry, pipeline builder, and hot reload
//   - passes: built-in pass types (clear, geometry, sky, tonemap, blit)
//
// # Liveness
//
// Pass culling is reference-counting based and propagates liveness one
// hop through producer edges: a pass survives if it has a side effect or
// if any pass reads one of its outputs, regardless of whether that
// reader itself survives culling. This is intentional — render graphs
// are shallow and the single linear scan keeps compilation trivially
// cheap — but it means a chain feeding only dead passes is retained.
// See Graph.Compile.
//
// # Concurrency
//
// Execution is single-threaded and cooperative: one linear command
// stream per frame, each encode callback running to completion before
// the next pass begins. The graph guarantees submission order and
// resource lifetime; GPU-side overlap between passes belongs to the
// underlying API.
package framegraph
