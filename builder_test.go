// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph/device"
)

func TestBuilderCreateRecordsWrite(t *testing.T) {
	g := New()

	var tex Handle
	g.AddRenderPass("p", func(b *Builder) {
		tex = b.Create("t", testDesc("t"))
	}, noopRender)

	info := g.Pass(0)
	if len(info.Writes) != 1 || info.Writes[0] != tex {
		t.Errorf("writes = %v, want [%v]", info.Writes, tex)
	}
	if got := g.Resource(tex).Producer; got != 0 {
		t.Errorf("producer = %d, want 0", got)
	}
}

func TestBuilderCreateDefaultsLabel(t *testing.T) {
	g := New()

	var tex Handle
	g.AddRenderPass("p", func(b *Builder) {
		tex = b.Create("shadow_map", TextureDesc{
			Width:  1024,
			Height: 1024,
			Format: gputypes.TextureFormatDepth32Float,
		})
	}, noopRender)

	if got := g.Resource(tex).Desc.Label; got != "shadow_map" {
		t.Errorf("desc label = %q, want %q", got, "shadow_map")
	}
}

func TestBuilderDeduplicatesDeclarations(t *testing.T) {
	g := New()

	var tex Handle
	g.AddRenderPass("a", func(b *Builder) {
		tex = b.Create("t", testDesc("t"))
	}, noopRender)
	g.AddRenderPass("b", func(b *Builder) {
		b.Read(tex)
		b.Read(tex)
		b.Write(tex)
		b.Write(tex)
	}, noopRender)

	info := g.Pass(1)
	if len(info.Reads) != 1 {
		t.Errorf("reads = %v, want one entry", info.Reads)
	}
	if len(info.Writes) != 1 {
		t.Errorf("writes = %v, want one entry", info.Writes)
	}
}

func TestBuilderPanics(t *testing.T) {
	mustPanic := func(t *testing.T, name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s did not panic", name)
			}
		}()
		fn()
	}

	t.Run("escaped builder", func(t *testing.T) {
		g := New()
		var escaped *Builder
		g.AddRenderPass("p", func(b *Builder) { escaped = b }, noopRender)
		mustPanic(t, "escaped Create", func() {
			escaped.Create("late", testDesc("late"))
		})
	})

	t.Run("invalid handle", func(t *testing.T) {
		g := New()
		g.AddRenderPass("p", func(b *Builder) {
			mustPanic(t, "Read(zero handle)", func() { b.Read(Handle{}) })
			mustPanic(t, "Read(InvalidHandle)", func() { b.Read(InvalidHandle) })
		}, noopRender)
	})

	t.Run("attachment slot out of range", func(t *testing.T) {
		g := New()
		g.AddRenderPass("p", func(b *Builder) {
			tex := b.Create("t", testDesc("t"))
			mustPanic(t, "slot -1", func() {
				b.SetColorAttachment(-1, tex, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{})
			})
			mustPanic(t, "slot 8", func() {
				b.SetColorAttachment(MaxColorAttachments, tex, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{})
			})
		}, noopRender)
	})

	t.Run("attachment on compute pass", func(t *testing.T) {
		g := New()
		var tex Handle
		g.AddRenderPass("p", func(b *Builder) {
			tex = b.Create("t", testDesc("t"))
		}, noopRender)
		g.AddComputePass("c", func(b *Builder) {
			mustPanic(t, "color on compute", func() {
				b.SetColorAttachment(0, tex, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{})
			})
			mustPanic(t, "depth on compute", func() {
				b.SetDepthAttachment(tex, gputypes.LoadOpClear, gputypes.StoreOpStore, 1)
			})
		}, func(*PassContext, device.ComputePass) {})
	})
}

func TestBuilderAttachmentsImplyWrites(t *testing.T) {
	g := New()

	var color, depth Handle
	g.AddRenderPass("p", func(b *Builder) {
		color = b.Create("color", testDesc("color"))
		depth = b.Create("depth", TextureDesc{
			Label: "depth", Width: 256, Height: 256,
			Format: gputypes.TextureFormatDepth32Float,
		})
		b.SetColorAttachment(0, color, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{})
		b.SetDepthAttachment(depth, gputypes.LoadOpClear, gputypes.StoreOpStore, 1)
	}, noopRender)

	writes := g.Pass(0).Writes
	if len(writes) != 2 {
		t.Fatalf("writes = %v, want color and depth only (no duplicates)", writes)
	}
	if writes[0] != color || writes[1] != depth {
		t.Errorf("writes = %v, want [%v %v]", writes, color, depth)
	}
}
