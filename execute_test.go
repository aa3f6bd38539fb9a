// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framegraph

import (
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/framegraph/device"
)

// eventOps extracts the op sequence for events whose label matches, or
// all ops when label is empty.
func eventOps(events []device.Event, label string) []string {
	var ops []string
	for _, e := range events {
		if label == "" || e.Label == label {
			ops = append(ops, e.Op)
		}
	}
	return ops
}

func TestExecuteSkipsCulledPasses(t *testing.T) {
	dev := device.NewNullDevice()
	g := New()

	var tex Handle
	g.AddRenderPass("dead", func(b *Builder) {
		tex = b.Create("dead_out", testDesc("dead_out"))
	}, func(*PassContext, device.RenderPass) {
		t.Error("culled pass encode callback ran")
	})
	g.AddRenderPass("live", func(b *Builder) {
		b.Create("live_out", testDesc("live_out"))
		b.SetSideEffect()
	}, noopRender)

	if err := g.Execute(dev); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	_ = tex

	stats := g.Stats()
	if !stats.Passes[0].Skipped {
		t.Error("dead pass not marked skipped")
	}
	if stats.Passes[1].Skipped {
		t.Error("live pass marked skipped")
	}
	for _, e := range dev.Events() {
		if e.Label == "dead_out" {
			t.Errorf("culled pass's transient touched the device: %s", e)
		}
	}
}

func TestExecuteTransientLifetimeWindow(t *testing.T) {
	dev := device.NewNullDevice()
	g := New()

	var mid Handle
	g.AddRenderPass("produce", func(b *Builder) {
		mid = b.Create("mid", testDesc("mid"))
	}, func(ctx *PassContext, _ device.RenderPass) {
		if ctx.Texture(mid) == nil {
			t.Error("mid not allocated while producer runs")
		}
	})
	g.AddRenderPass("consume", func(b *Builder) {
		b.Read(mid)
		b.SetSideEffect()
	}, func(ctx *PassContext, _ device.RenderPass) {
		if ctx.Texture(mid) == nil {
			t.Error("mid released before its last user ran")
		}
	})
	g.AddRenderPass("after", func(b *Builder) {
		b.SetSideEffect()
	}, func(ctx *PassContext, _ device.RenderPass) {
		if g.Resource(mid).Allocated {
			t.Error("mid still allocated after its last user")
		}
	})

	if err := g.Execute(dev); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	got := eventOps(dev.Events(), "mid")
	want := []string{"create_texture", "destroy_texture"}
	if len(got) != len(want) {
		t.Fatalf("mid device ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("mid device ops = %v, want %v", got, want)
		}
	}
	if n := dev.AliveTextures(); n != 0 {
		t.Errorf("%d textures leaked after frame", n)
	}
}

func TestExecuteNeverTouchesImports(t *testing.T) {
	dev := device.NewNullDevice()
	g := New()

	tex, err := dev.CreateTexture(testDesc("swapchain"))
	if err != nil {
		t.Fatal(err)
	}
	dev.Reset() // drop the setup event, watch the frame only

	back := g.Import("$backbuffer", tex, testDesc("swapchain"))
	g.AddRenderPass("draw", func(b *Builder) {
		b.Write(back)
		b.SetSideEffect()
	}, noopRender)

	if err := g.Execute(dev); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	for _, e := range dev.Events() {
		if e.Op == "create_texture" || e.Op == "destroy_texture" {
			t.Errorf("graph allocated or freed during a frame with only imports: %s", e)
		}
	}
	if tex.(*device.NullTexture).Destroyed() {
		t.Error("imported texture destroyed by the graph")
	}
}

func TestExecutePassKindScopes(t *testing.T) {
	dev := device.NewNullDevice()
	g := New()

	var tex Handle
	g.AddRenderPass("raster", func(b *Builder) {
		tex = b.Create("color", testDesc("color"))
		b.SetColorAttachment(0, tex, gputypes.LoadOpClear, gputypes.StoreOpStore, gputypes.Color{})
	}, noopRender)
	g.AddComputePass("post", func(b *Builder) {
		b.Read(tex)
		b.SetSideEffect()
	}, func(*PassContext, device.ComputePass) {})
	g.AddBlitPass("resolve", func(b *Builder) {
		b.Read(tex)
		b.SetSideEffect()
	}, func(*PassContext, device.BlitPass) {})

	if err := g.Execute(dev); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var scopes []string
	for _, e := range dev.Events() {
		if strings.HasPrefix(e.Op, "begin_") || e.Op == "submit" {
			scopes = append(scopes, e.String())
		}
	}
	want := []string{
		"begin_frame(framegraph)",
		"begin_render(raster)",
		"begin_compute(post)",
		"begin_blit(resolve)",
		"submit(framegraph)",
	}
	if len(scopes) != len(want) {
		t.Fatalf("frame scopes = %v, want %v", scopes, want)
	}
	for i := range want {
		if scopes[i] != want[i] {
			t.Fatalf("frame scopes = %v, want %v", scopes, want)
		}
	}
}

func TestExecuteCompilesLazily(t *testing.T) {
	dev := device.NewNullDevice()
	g := New()
	g.AddRenderPass("only", func(b *Builder) {
		b.Create("out", testDesc("out"))
		b.SetSideEffect()
	}, noopRender)

	// No explicit Compile.
	if err := g.Execute(dev); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if g.Stats().Passes[0].Skipped {
		t.Error("pass skipped; lazy compile did not run")
	}
}

func TestExecuteStats(t *testing.T) {
	dev := device.NewNullDevice()
	g := New()

	var a Handle
	g.AddRenderPass("gbuffer", func(b *Builder) {
		a = b.Create("albedo", testDesc("albedo"))
	}, noopRender)
	g.AddRenderPass("shade", func(b *Builder) {
		b.Read(a)
		b.Create("unread", testDesc("unread"))
		b.SetSideEffect()
	}, noopRender)

	if err := g.Execute(dev); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	stats := g.Stats()
	if len(stats.Passes) != 2 {
		t.Fatalf("len(stats.Passes) = %d, want 2", len(stats.Passes))
	}
	if stats.Allocated != 2 {
		t.Errorf("stats.Allocated = %d, want 2", stats.Allocated)
	}
	if stats.Released != 2 {
		t.Errorf("stats.Released = %d, want 2", stats.Released)
	}
	if stats.Passes[0].Name != "gbuffer" || stats.Passes[1].Name != "shade" {
		t.Errorf("stats pass names = %q, %q", stats.Passes[0].Name, stats.Passes[1].Name)
	}
}

func TestExecuteReleasesLeftoversNextFrame(t *testing.T) {
	dev := device.NewNullDevice()
	g := New()

	var tex Handle
	g.AddRenderPass("produce", func(b *Builder) {
		tex = b.Create("t", testDesc("t"))
		b.SetSideEffect()
	}, noopRender)
	g.AddRenderPass("consume", func(b *Builder) {
		b.Read(tex)
		b.SetSideEffect()
	}, noopRender)

	for frame := 0; frame < 3; frame++ {
		if err := g.Execute(dev); err != nil {
			t.Fatalf("frame %d: %v", frame, err)
		}
		if n := dev.AliveTextures(); n != 0 {
			t.Fatalf("frame %d: %d textures alive after Execute", frame, n)
		}
	}
}
