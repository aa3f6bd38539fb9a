// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package pipeline

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/framegraph/asset"
	"github.com/gogpu/framegraph/device"
	"github.com/gogpu/framegraph/internal/shadercache"
)

// passthrough builds a pass of the given kind that reads every input and
// declares every output.
func passthrough(kind framegraph.PassKind) Factory {
	return func(cfg json.RawMessage, rc *RenderContext, w, h uint32) (*Pass, error) {
		p := &Pass{Kind: kind}
		p.Setup = func(b *framegraph.Builder, io *IO) {
			io.ReadInputs(b)
			for i := range io.OutputNames {
				io.DeclareOutput(b, i)
			}
		}
		switch kind {
		case framegraph.KindRender:
			p.Render = func(*framegraph.PassContext, device.RenderPass) {}
		case framegraph.KindCompute:
			p.Compute = func(*framegraph.PassContext, device.ComputePass) {}
		case framegraph.KindBlit:
			p.Blit = func(*framegraph.PassContext, device.BlitPass) {}
		}
		return p, nil
	}
}

func testContext(dev device.Device) *RenderContext {
	return &RenderContext{
		Device:  dev,
		Host:    device.NullHandle{},
		Shaders: shadercache.New(),
		Camera:  NewCamera(),
		Scratch: NewFrameScratch(),
		Width:   640,
		Height:  480,
	}
}

func testRegistry() *Registry {
	reg := NewRegistry()
	reg.Register("render", passthrough(framegraph.KindRender), Meta{Kind: framegraph.KindRender})
	reg.Register("compute", passthrough(framegraph.KindCompute), Meta{Kind: framegraph.KindCompute})
	reg.Register("blit", passthrough(framegraph.KindBlit), Meta{Kind: framegraph.KindBlit})
	return reg
}

func TestBuildLinearChain(t *testing.T) {
	dev := device.NewNullDevice()
	b := NewBuilder(testRegistry(), testContext(dev))

	back, _ := dev.CreateTexture(device.TextureDesc{Label: "swapchain", Width: 640, Height: 480})
	b.ImportTexture("$backbuffer", back, device.TextureDesc{Label: "swapchain", Width: 640, Height: 480})

	p := &asset.Pipeline{
		Name: "chain",
		Passes: []asset.PassDecl{
			{Name: "A", Type: "render", Outputs: []string{"x"}, Enabled: true},
			{Name: "B", Type: "render", Inputs: []string{"x"}, Outputs: []string{"$backbuffer"}, SideEffect: true, Enabled: true},
		},
	}

	g, err := b.Build(p, 640, 480)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if b.LastError() != "" {
		t.Errorf("LastError = %q after success", b.LastError())
	}
	if g.PassCount() != 2 {
		t.Fatalf("PassCount = %d, want 2", g.PassCount())
	}
	// B side-effecting keeps A live through x.
	for i := 0; i < 2; i++ {
		if g.Pass(i).RefCount == 0 {
			t.Errorf("pass %q culled", g.Pass(i).Name)
		}
	}

	if err := g.Execute(dev); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if n := dev.AliveTextures(); n != 1 { // only the imported swap-chain image
		t.Errorf("AliveTextures = %d, want 1", n)
	}
}

func TestBuildSkipsDisabledPass(t *testing.T) {
	dev := device.NewNullDevice()
	b := NewBuilder(testRegistry(), testContext(dev))

	p := &asset.Pipeline{
		Name: "chain",
		Passes: []asset.PassDecl{
			{Name: "A", Type: "render", Outputs: []string{"x"}, Enabled: true},
			{Name: "B", Type: "render", Inputs: []string{"x"}, Outputs: []string{"$backbuffer"}, SideEffect: true, Enabled: false},
		},
	}

	g, err := b.Build(p, 640, 480)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if g.PassCount() != 1 {
		t.Fatalf("PassCount = %d, want 1 (disabled pass must not be added)", g.PassCount())
	}
	if got := g.Pass(0).Name; got != "A" {
		t.Errorf("remaining pass = %q, want A", got)
	}
	if len(b.Passes()) != 1 {
		t.Errorf("Passes() = %d instances, want 1", len(b.Passes()))
	}
}

func TestBuildFailures(t *testing.T) {
	tests := []struct {
		name    string
		p       asset.Pipeline
		wantSub []string
	}{
		{
			name: "unknown pass type",
			p: asset.Pipeline{Name: "bad", Passes: []asset.PassDecl{
				{Name: "mystery", Type: "no_such_type", Outputs: []string{"$backbuffer"}, Enabled: true},
			}},
			wantSub: []string{"mystery", "no_such_type"},
		},
		{
			name: "validation failure",
			p: asset.Pipeline{Name: "bad", Passes: []asset.PassDecl{
				{Name: "C", Type: "render", Inputs: []string{"missing"}, Outputs: []string{"$backbuffer"}, Enabled: true},
			}},
			wantSub: []string{"C", "missing"},
		},
		{
			name: "unresolved reserved input",
			p: asset.Pipeline{Name: "bad", Passes: []asset.PassDecl{
				{Name: "sky", Type: "render", Inputs: []string{"$environment"}, Outputs: []string{"$backbuffer"}, Enabled: true},
			}},
			wantSub: []string{"sky", "$environment"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(testRegistry(), testContext(device.NewNullDevice()))
			g, err := b.Build(&tt.p, 640, 480)
			if err == nil {
				t.Fatal("Build succeeded")
			}
			if g != nil {
				t.Error("failed Build returned a graph")
			}
			for _, sub := range tt.wantSub {
				if !strings.Contains(b.LastError(), sub) {
					t.Errorf("LastError %q does not mention %q", b.LastError(), sub)
				}
			}
		})
	}
}

func TestBuildFailureKeepsPreviousGraph(t *testing.T) {
	dev := device.NewNullDevice()
	b := NewBuilder(testRegistry(), testContext(dev))

	good := &asset.Pipeline{Name: "good", Passes: []asset.PassDecl{
		{Name: "A", Type: "render", Outputs: []string{"$backbuffer"}, SideEffect: true, Enabled: true},
	}}
	first, err := b.Build(good, 640, 480)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	bad := &asset.Pipeline{Name: "bad", Passes: []asset.PassDecl{
		{Name: "A", Type: "nope", Outputs: []string{"$backbuffer"}, Enabled: true},
	}}
	if _, err := b.Build(bad, 640, 480); err == nil {
		t.Fatal("bad Build succeeded")
	}

	if b.Graph() != first {
		t.Error("failed Build replaced the working graph")
	}
	if b.LastError() == "" {
		t.Error("LastError empty after failure")
	}
}

func TestBuildResourceDeclarationsShapeTransients(t *testing.T) {
	dev := device.NewNullDevice()
	b := NewBuilder(testRegistry(), testContext(dev))

	p := &asset.Pipeline{
		Name: "declared",
		Resources: []asset.ResourceDecl{
			{Name: "shadow", Type: "texture", Format: "Depth16", Size: "2048x2048"},
			{Name: "hdr", Type: "texture", Format: "RGBA16Float", Size: "screen"},
		},
		Passes: []asset.PassDecl{
			{Name: "shadowmap", Type: "render", Outputs: []string{"shadow"}, Enabled: true},
			{Name: "shade", Type: "render", Inputs: []string{"shadow"}, Outputs: []string{"hdr"}, SideEffect: true, Enabled: true},
		},
	}

	g, err := b.Build(p, 1280, 720)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := g.Execute(dev); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	var sawShadow, sawHDR bool
	for _, e := range dev.Events() {
		if e.Op != "create_texture" {
			continue
		}
		switch e.Label {
		case "shadow":
			sawShadow = true
		case "hdr":
			sawHDR = true
		}
	}
	if !sawShadow || !sawHDR {
		t.Errorf("expected shadow and hdr allocations, events: %v", dev.Events())
	}
}

func TestBeginFrameRunsHooksAndResetsScratch(t *testing.T) {
	rc := testContext(device.NewNullDevice())
	b := NewBuilder(testRegistry(), rc)

	var hooked []uint64
	reg := testRegistry()
	reg.Register("hooked", func(cfg json.RawMessage, rc *RenderContext, w, h uint32) (*Pass, error) {
		return &Pass{
			Kind: framegraph.KindRender,
			Setup: func(fb *framegraph.Builder, io *IO) {
				for i := range io.OutputNames {
					io.DeclareOutput(fb, i)
				}
			},
			Render:     func(*framegraph.PassContext, device.RenderPass) {},
			BeginFrame: func(fc *FrameContext) { hooked = append(hooked, fc.FrameIndex) },
		}, nil
	}, Meta{})
	b.registry = reg

	p := &asset.Pipeline{Name: "hooks", Passes: []asset.PassDecl{
		{Name: "A", Type: "hooked", Outputs: []string{"$backbuffer"}, SideEffect: true, Enabled: true},
	}}
	if _, err := b.Build(p, 640, 480); err != nil {
		t.Fatalf("Build: %v", err)
	}

	rc.Scratch.PublishCount("stale", 99)
	b.BeginFrame(&FrameContext{FrameIndex: 7})

	if len(hooked) != 1 || hooked[0] != 7 {
		t.Errorf("hooks = %v, want [7]", hooked)
	}
	if _, ok := rc.Scratch.Count("stale"); ok {
		t.Error("BeginFrame did not reset scratch")
	}
}

func TestBuildEnforcesMinimumBindings(t *testing.T) {
	reg := testRegistry()
	reg.Register("needs_io", func(cfg json.RawMessage, rc *RenderContext, w, h uint32) (*Pass, error) {
		return &Pass{
			Kind:       framegraph.KindRender,
			MinInputs:  1,
			MinOutputs: 1,
			Setup: func(b *framegraph.Builder, io *IO) {
				b.Read(io.Inputs[0])
				io.DeclareOutput(b, 0)
			},
			Render: func(*framegraph.PassContext, device.RenderPass) {},
		}, nil
	}, Meta{Kind: framegraph.KindRender})

	tests := []struct {
		name    string
		decl    asset.PassDecl
		wantSub string
	}{
		{
			name:    "too few inputs",
			decl:    asset.PassDecl{Name: "p", Type: "needs_io", Outputs: []string{"$backbuffer"}, Enabled: true},
			wantSub: "0 inputs declared, needs 1",
		},
		{
			name:    "too few outputs",
			decl:    asset.PassDecl{Name: "p", Type: "needs_io", Inputs: []string{"$src"}, Enabled: true},
			wantSub: "0 outputs declared, needs 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := device.NewNullDevice()
			b := NewBuilder(reg, testContext(dev))
			src, _ := dev.CreateTexture(device.TextureDesc{Label: "src", Width: 640, Height: 480})
			b.ImportTexture("$src", src, device.TextureDesc{Label: "src", Width: 640, Height: 480})
			back, _ := dev.CreateTexture(device.TextureDesc{Label: "back", Width: 640, Height: 480})
			b.ImportTexture("$backbuffer", back, device.TextureDesc{Label: "back", Width: 640, Height: 480})

			p := &asset.Pipeline{Name: "short", Passes: []asset.PassDecl{tt.decl}}
			if _, err := b.Build(p, 640, 480); err == nil {
				t.Fatal("Build accepted a declaration below the pass's minimum bindings")
			}
			if !strings.Contains(b.LastError(), tt.wantSub) {
				t.Errorf("LastError %q does not contain %q", b.LastError(), tt.wantSub)
			}
		})
	}
}

func TestBuildFactoryErrorAborts(t *testing.T) {
	reg := testRegistry()
	wantErr := errors.New("shader compile failed")
	reg.Register("broken", func(json.RawMessage, *RenderContext, uint32, uint32) (*Pass, error) {
		return nil, wantErr
	}, Meta{})

	b := NewBuilder(reg, testContext(device.NewNullDevice()))
	p := &asset.Pipeline{Name: "bad", Passes: []asset.PassDecl{
		{Name: "A", Type: "broken", Outputs: []string{"$backbuffer"}, Enabled: true},
	}}

	_, err := b.Build(p, 640, 480)
	if !errors.Is(err, wantErr) {
		t.Errorf("err = %v, want wrapped %v", err, wantErr)
	}
}
